package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clubtix/internal/model"
)

type ClubRepo interface {
	CreateClub(ctx context.Context, c *model.Club) (int64, error)
	GetClubByID(ctx context.Context, id int64) (*model.Club, error)
	ListClubs(ctx context.Context) ([]model.Club, error)
	UpdateClub(ctx context.Context, c *model.Club) error
	SetClubLogo(ctx context.Context, clubID int64, path string) error
	SetClubCover(ctx context.Context, clubID int64, path string) error

	IsClubAdmin(ctx context.Context, userID, clubID int64) (bool, error)
	AddClubAdmin(ctx context.Context, clubID, userID int64) error
	RemoveClubAdmin(ctx context.Context, clubID, userID int64) (bool, error)
	ListClubAdmins(ctx context.Context, clubID int64) ([]AdminUserRow, error)
	ListClubsAdminedBy(ctx context.Context, userID int64) ([]model.Club, error)
}

// AdminUserRow is a club admin joined with the profile fields shown in
// admin listings.
type AdminUserRow struct {
	ID             int64
	Username       string
	FirstName      string
	LastName       string
	ProfilePicture *string
	Course         string
	Year           int
	Verified       bool
	Description    *string
}

const clubColumns = `id, name, description, email, logo, cover, website, content, payment_account_id`

func scanClub(scan func(dest ...any) error) (*model.Club, error) {
	var c model.Club
	err := scan(&c.ID, &c.Name, &c.Description, &c.Email, &c.Logo, &c.Cover,
		&c.Website, &c.Content, &c.PaymentAccountID)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) CreateClub(ctx context.Context, c *model.Club) (int64, error) {
	var existing int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clubs WHERE email = $1`, c.Email).Scan(&existing)
	if err != nil {
		return 0, fmt.Errorf("failed to check club email: %w", err)
	}
	if existing > 0 {
		return 0, ErrClubEmailTaken
	}

	var id int64
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO clubs (name, description, email, website, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, c.Name, c.Description, c.Email, c.Website, c.Content).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert club: %w", err)
	}
	return id, nil
}

func (r *repository) GetClubByID(ctx context.Context, id int64) (*model.Club, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+clubColumns+` FROM clubs WHERE id = $1`, id)
	c, err := scanClub(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClubNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get club: %w", err)
	}
	return c, nil
}

func (r *repository) ListClubs(ctx context.Context) ([]model.Club, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+clubColumns+` FROM clubs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clubs: %w", err)
	}
	defer rows.Close()
	return collectClubs(rows)
}

func collectClubs(rows *sql.Rows) ([]model.Club, error) {
	var clubs []model.Club
	for rows.Next() {
		c, err := scanClub(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan club: %w", err)
		}
		clubs = append(clubs, *c)
	}
	return clubs, rows.Err()
}

func (r *repository) UpdateClub(ctx context.Context, c *model.Club) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE clubs
		SET name = $1, description = $2, email = $3, website = $4, content = $5
		WHERE id = $6
	`, c.Name, c.Description, c.Email, c.Website, c.Content, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update club: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrClubNotFound
	}
	return nil
}

func (r *repository) SetClubLogo(ctx context.Context, clubID int64, path string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE clubs SET logo = $1 WHERE id = $2`, path, clubID)
	if err != nil {
		return fmt.Errorf("failed to set club logo: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrClubNotFound
	}
	return nil
}

func (r *repository) SetClubCover(ctx context.Context, clubID int64, path string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE clubs SET cover = $1 WHERE id = $2`, path, clubID)
	if err != nil {
		return fmt.Errorf("failed to set club cover: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrClubNotFound
	}
	return nil
}

func (r *repository) IsClubAdmin(ctx context.Context, userID, clubID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM club_admins WHERE club_id = $1 AND user_id = $2)
	`, clubID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check club admin: %w", err)
	}
	return exists, nil
}

func (r *repository) AddClubAdmin(ctx context.Context, clubID, userID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO club_admins (club_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (club_id, user_id) DO NOTHING
	`, clubID, userID)
	if err != nil {
		return fmt.Errorf("failed to add club admin: %w", err)
	}
	return nil
}

func (r *repository) RemoveClubAdmin(ctx context.Context, clubID, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM club_admins WHERE club_id = $1 AND user_id = $2
	`, clubID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to remove club admin: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repository) ListClubAdmins(ctx context.Context, clubID int64) ([]AdminUserRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.username, u.first_name, u.last_name,
		       p.profile_picture, p.course, p.year, p.verified, p.description
		FROM club_admins ca
		JOIN users u ON u.id = ca.user_id
		JOIN profiles p ON p.user_id = u.id
		WHERE ca.club_id = $1
		ORDER BY u.username
	`, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to list club admins: %w", err)
	}
	defer rows.Close()

	var admins []AdminUserRow
	for rows.Next() {
		var a AdminUserRow
		if err := rows.Scan(&a.ID, &a.Username, &a.FirstName, &a.LastName,
			&a.ProfilePicture, &a.Course, &a.Year, &a.Verified, &a.Description); err != nil {
			return nil, fmt.Errorf("failed to scan club admin: %w", err)
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

func (r *repository) ListClubsAdminedBy(ctx context.Context, userID int64) ([]model.Club, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.description, c.email, c.logo, c.cover, c.website, c.content, c.payment_account_id
		FROM club_admins ca
		JOIN clubs c ON c.id = ca.club_id
		WHERE ca.user_id = $1
		ORDER BY c.name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list adminned clubs: %w", err)
	}
	defer rows.Close()
	return collectClubs(rows)
}
