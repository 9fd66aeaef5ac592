package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clubtix/internal/model"
)

type FriendRepo interface {
	GetFriendBetween(ctx context.Context, userA, userB int64) (*model.Friend, error)
	CreateFriend(ctx context.Context, senderID, receiverID int64) (*model.Friend, error)
	AcceptFriend(ctx context.Context, id int64) error
	DeleteFriend(ctx context.Context, id int64) error
	AreFriends(ctx context.Context, userA, userB int64) (bool, error)
	ListFriends(ctx context.Context, userID int64, accepted bool) ([]FriendUserRow, error)
	ListCommonFriends(ctx context.Context, userA, userB int64, exclude []int64) ([]FriendUserRow, error)
}

// FriendUserRow is a user joined with the profile fields shown in
// friend listings.
type FriendUserRow struct {
	ID             int64
	Username       string
	FirstName      string
	LastName       string
	ProfilePicture *string
	Verified       bool
}

func (r *repository) GetFriendBetween(ctx context.Context, userA, userB int64) (*model.Friend, error) {
	var f model.Friend
	err := r.db.QueryRowContext(ctx, `
		SELECT id, sender_id, receiver_id, status, created_at
		FROM friends
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
	`, userA, userB).Scan(&f.ID, &f.SenderID, &f.ReceiverID, &f.Status, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFriendNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get friendship: %w", err)
	}
	return &f, nil
}

func (r *repository) CreateFriend(ctx context.Context, senderID, receiverID int64) (*model.Friend, error) {
	var f model.Friend
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO friends (sender_id, receiver_id, status, created_at)
		VALUES ($1, $2, FALSE, NOW())
		RETURNING id, sender_id, receiver_id, status, created_at
	`, senderID, receiverID).Scan(&f.ID, &f.SenderID, &f.ReceiverID, &f.Status, &f.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}
	return &f, nil
}

func (r *repository) AcceptFriend(ctx context.Context, id int64) error {
	// created_at moves from request time to acceptance time.
	res, err := r.db.ExecContext(ctx, `
		UPDATE friends SET status = TRUE, created_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to accept friend request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFriendNotFound
	}
	return nil
}

func (r *repository) DeleteFriend(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM friends WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete friendship: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFriendNotFound
	}
	return nil
}

func (r *repository) AreFriends(ctx context.Context, userA, userB int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM friends
			WHERE status = TRUE
			  AND ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
		)
	`, userA, userB).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return exists, nil
}

func (r *repository) ListFriends(ctx context.Context, userID int64, accepted bool) ([]FriendUserRow, error) {
	var query string
	if accepted {
		query = `
			SELECT u.id, u.username, u.first_name, u.last_name, p.profile_picture, p.verified
			FROM friends f
			JOIN users u ON u.id = CASE WHEN f.sender_id = $1 THEN f.receiver_id ELSE f.sender_id END
			JOIN profiles p ON p.user_id = u.id
			WHERE f.status = TRUE AND (f.sender_id = $1 OR f.receiver_id = $1)
			ORDER BY u.username
		`
	} else {
		query = `
			SELECT u.id, u.username, u.first_name, u.last_name, p.profile_picture, p.verified
			FROM friends f
			JOIN users u ON u.id = f.sender_id
			JOIN profiles p ON p.user_id = u.id
			WHERE f.status = FALSE AND f.receiver_id = $1
			ORDER BY f.created_at DESC
		`
	}

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	var friends []FriendUserRow
	for rows.Next() {
		var f FriendUserRow
		if err := rows.Scan(&f.ID, &f.Username, &f.FirstName, &f.LastName, &f.ProfilePicture, &f.Verified); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, f)
	}
	return friends, rows.Err()
}

func (r *repository) ListCommonFriends(ctx context.Context, userA, userB int64, exclude []int64) ([]FriendUserRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		WITH friends_of AS (
			SELECT CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END AS friend_id
			FROM friends WHERE status = TRUE AND (sender_id = $1 OR receiver_id = $1)
			INTERSECT
			SELECT CASE WHEN sender_id = $2 THEN receiver_id ELSE sender_id END
			FROM friends WHERE status = TRUE AND (sender_id = $2 OR receiver_id = $2)
		)
		SELECT u.id, u.username, u.first_name, u.last_name, p.profile_picture, p.verified
		FROM friends_of fo
		JOIN users u ON u.id = fo.friend_id
		JOIN profiles p ON p.user_id = u.id
		WHERE u.id <> ALL($3::bigint[])
		ORDER BY u.username
	`, userA, userB, int64Array(exclude))
	if err != nil {
		return nil, fmt.Errorf("failed to list common friends: %w", err)
	}
	defer rows.Close()

	var friends []FriendUserRow
	for rows.Next() {
		var f FriendUserRow
		if err := rows.Scan(&f.ID, &f.Username, &f.FirstName, &f.LastName, &f.ProfilePicture, &f.Verified); err != nil {
			return nil, fmt.Errorf("failed to scan common friend: %w", err)
		}
		friends = append(friends, f)
	}
	return friends, rows.Err()
}
