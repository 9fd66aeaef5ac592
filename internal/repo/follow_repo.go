package repo

import (
	"context"
	"fmt"

	"clubtix/internal/model"
)

type FollowRepo interface {
	CreateFollow(ctx context.Context, userID, clubID int64) (int64, error)
	DeleteFollow(ctx context.Context, userID, clubID int64) error
	IsFollowing(ctx context.Context, userID, clubID int64) (bool, error)
	ListFollowedClubs(ctx context.Context, userID int64) ([]model.Club, error)
	ListCommonClubs(ctx context.Context, userA, userB int64) ([]model.Club, error)
}

func (r *repository) CreateFollow(ctx context.Context, userID, clubID int64) (int64, error) {
	exists, err := r.IsFollowing(ctx, userID, clubID)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrDuplicateFollow
	}

	var id int64
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO follows (user_id, club_id) VALUES ($1, $2) RETURNING id
	`, userID, clubID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create follow: %w", err)
	}
	return id, nil
}

func (r *repository) DeleteFollow(ctx context.Context, userID, clubID int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM follows WHERE user_id = $1 AND club_id = $2
	`, userID, clubID)
	if err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFollowNotFound
	}
	return nil
}

func (r *repository) IsFollowing(ctx context.Context, userID, clubID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM follows WHERE user_id = $1 AND club_id = $2)
	`, userID, clubID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return exists, nil
}

func (r *repository) ListFollowedClubs(ctx context.Context, userID int64) ([]model.Club, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.description, c.email, c.logo, c.cover, c.website, c.content, c.payment_account_id
		FROM follows f
		JOIN clubs c ON c.id = f.club_id
		WHERE f.user_id = $1
		ORDER BY c.name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list followed clubs: %w", err)
	}
	defer rows.Close()
	return collectClubs(rows)
}

func (r *repository) ListCommonClubs(ctx context.Context, userA, userB int64) ([]model.Club, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.description, c.email, c.logo, c.cover, c.website, c.content, c.payment_account_id
		FROM clubs c
		WHERE c.id IN (SELECT club_id FROM follows WHERE user_id = $1)
		  AND c.id IN (SELECT club_id FROM follows WHERE user_id = $2)
		ORDER BY c.name
	`, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("failed to list common clubs: %w", err)
	}
	defer rows.Close()
	return collectClubs(rows)
}
