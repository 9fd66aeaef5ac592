package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clubtix/internal/model"
)

type UserRepo interface {
	CreateUserWithProfileTx(ctx context.Context, u *model.User, p *model.Profile) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsernames(ctx context.Context, filter string) ([]model.User, error)
	UpdateAccountType(ctx context.Context, userID int64, accountType string) error
	SetUserPassword(ctx context.Context, userID int64, passwordHash string) error
	DeleteUser(ctx context.Context, id int64) error

	GetProfileByUserID(ctx context.Context, userID int64) (*model.Profile, error)
	UpdateProfile(ctx context.Context, p *model.Profile) error
	SetProfilePicture(ctx context.Context, userID int64, path string) error

	CreateScannerUser(ctx context.Context, u *model.User) (int64, error)
	ListEventScanners(ctx context.Context, eventID int64) ([]ScannerUserRow, error)
}

// ScannerUserRow joins a scanner account with the username of the club
// admin who provisioned it.
type ScannerUserRow struct {
	model.User
	CreatedByUsername *string
}

const userColumns = `id, username, email, student_id, first_name, last_name, password,
       user_type, account_type, event_id, created_by, is_active, created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.StudentID, &u.FirstName, &u.LastName, &u.Password,
		&u.UserType, &u.AccountType, &u.EventID, &u.CreatedBy, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) CreateUserWithProfileTx(ctx context.Context, u *model.User, p *model.Profile) (int64, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if pnc := recover(); pnc != nil {
			_ = tx.Rollback()
			panic(pnc)
		}
	}()

	var existing int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users WHERE username = $1 OR email = $2
	`, u.Username, u.Email).Scan(&existing)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to check duplicate user: %w", err)
	}
	if existing > 0 {
		_ = tx.Rollback()
		return 0, ErrDuplicateUser
	}

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (username, email, student_id, first_name, last_name, password,
		                   user_type, account_type, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, NOW(), NOW())
		RETURNING id
	`, u.Username, u.Email, u.StudentID, u.FirstName, u.LastName, u.Password,
		model.UserTypeRegular, model.AccountPublic).Scan(&id)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}

	// Profile rows exist only for regular users; scanner accounts go
	// through CreateScannerUser.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (user_id, course, year, description, verified)
		VALUES ($1, $2, $3, $4, FALSE)
	`, id, p.Course, p.Year, p.Description)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to insert profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return id, nil
}

func (r *repository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *repository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *repository) ListUsernames(ctx context.Context, filter string) ([]model.User, error) {
	query := `
		SELECT id, username, first_name, last_name
		FROM users
		WHERE user_type = $1
	`
	args := []any{model.UserTypeRegular}
	if filter != "" {
		query += ` AND username ILIKE '%' || $2 || '%'`
		args = append(args, filter)
	}
	query += ` ORDER BY username`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list usernames: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *repository) UpdateAccountType(ctx context.Context, userID int64, accountType string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET account_type = $1, updated_at = NOW() WHERE id = $2
	`, accountType, userID)
	if err != nil {
		return fmt.Errorf("failed to update account type: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) SetUserPassword(ctx context.Context, userID int64, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET password = $1, updated_at = NOW() WHERE id = $2
	`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) DeleteUser(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) GetProfileByUserID(ctx context.Context, userID int64) (*model.Profile, error) {
	var p model.Profile
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, profile_picture, birthday, course, year, description, verified, payment_account_id
		FROM profiles WHERE user_id = $1
	`, userID).Scan(
		&p.ID, &p.UserID, &p.ProfilePicture, &p.Birthday, &p.Course, &p.Year,
		&p.Description, &p.Verified, &p.PaymentAccountID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

func (r *repository) UpdateProfile(ctx context.Context, p *model.Profile) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE profiles
		SET birthday = $1, course = $2, year = $3, description = $4
		WHERE user_id = $5
	`, p.Birthday, p.Course, p.Year, p.Description, p.UserID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *repository) SetProfilePicture(ctx context.Context, userID int64, path string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE profiles SET profile_picture = $1 WHERE user_id = $2
	`, path, userID)
	if err != nil {
		return fmt.Errorf("failed to set profile picture: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *repository) CreateScannerUser(ctx context.Context, u *model.User) (int64, error) {
	var existing int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users WHERE username = $1 OR email = $2
	`, u.Username, u.Email).Scan(&existing)
	if err != nil {
		return 0, fmt.Errorf("failed to check duplicate scanner: %w", err)
	}
	if existing > 0 {
		return 0, ErrDuplicateUser
	}

	var id int64
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, first_name, last_name, password,
		                   user_type, account_type, event_id, created_by, is_active, created_at, updated_at)
		VALUES ($1, $2, '', '', $3, $4, $5, $6, $7, TRUE, NOW(), NOW())
		RETURNING id
	`, u.Username, u.Email, u.Password, model.UserTypeScanner, model.AccountPublic,
		u.EventID, u.CreatedBy).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert scanner user: %w", err)
	}
	return id, nil
}

func (r *repository) ListEventScanners(ctx context.Context, eventID int64) ([]ScannerUserRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.username, u.event_id, c.username
		FROM users u
		LEFT JOIN users c ON c.id = u.created_by
		WHERE u.user_type = $1 AND u.event_id = $2
		ORDER BY u.id
	`, model.UserTypeScanner, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scanners: %w", err)
	}
	defer rows.Close()

	var scanners []ScannerUserRow
	for rows.Next() {
		var s ScannerUserRow
		if err := rows.Scan(&s.ID, &s.Username, &s.EventID, &s.CreatedByUsername); err != nil {
			return nil, fmt.Errorf("failed to scan scanner user: %w", err)
		}
		scanners = append(scanners, s)
	}
	return scanners, rows.Err()
}
