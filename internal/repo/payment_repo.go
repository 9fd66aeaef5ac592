package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clubtix/internal/model"
)

type PaymentRepo interface {
	CreatePaymentAccount(ctx context.Context, stripeID string) (int64, error)
	GetPaymentAccount(ctx context.Context, id int64) (*model.PaymentAccount, error)
	SetAccountComplete(ctx context.Context, id int64) error
	AttachAccountToClub(ctx context.Context, clubID, accountID int64) error
	AttachAccountToProfile(ctx context.Context, userID, accountID int64) error
	GetClubPaymentAccount(ctx context.Context, clubID int64) (*model.PaymentAccount, error)
	GetUserPaymentAccount(ctx context.Context, userID int64) (*model.PaymentAccount, error)
}

func (r *repository) CreatePaymentAccount(ctx context.Context, stripeID string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO payment_accounts (stripe_id, connected, complete)
		VALUES ($1, TRUE, FALSE)
		RETURNING id
	`, stripeID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert payment account: %w", err)
	}
	return id, nil
}

func (r *repository) GetPaymentAccount(ctx context.Context, id int64) (*model.PaymentAccount, error) {
	var a model.PaymentAccount
	err := r.db.QueryRowContext(ctx, `
		SELECT id, stripe_id, connected, complete FROM payment_accounts WHERE id = $1
	`, id).Scan(&a.ID, &a.StripeID, &a.Connected, &a.Complete)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment account: %w", err)
	}
	return &a, nil
}

func (r *repository) SetAccountComplete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE payment_accounts SET complete = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark account complete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *repository) AttachAccountToClub(ctx context.Context, clubID, accountID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE clubs SET payment_account_id = $1 WHERE id = $2
	`, accountID, clubID)
	if err != nil {
		return fmt.Errorf("failed to attach account to club: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrClubNotFound
	}
	return nil
}

func (r *repository) AttachAccountToProfile(ctx context.Context, userID, accountID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE profiles SET payment_account_id = $1 WHERE user_id = $2
	`, accountID, userID)
	if err != nil {
		return fmt.Errorf("failed to attach account to profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *repository) GetClubPaymentAccount(ctx context.Context, clubID int64) (*model.PaymentAccount, error) {
	var a model.PaymentAccount
	err := r.db.QueryRowContext(ctx, `
		SELECT p.id, p.stripe_id, p.connected, p.complete
		FROM payment_accounts p
		JOIN clubs c ON c.payment_account_id = p.id
		WHERE c.id = $1
	`, clubID).Scan(&a.ID, &a.StripeID, &a.Connected, &a.Complete)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get club payment account: %w", err)
	}
	return &a, nil
}

func (r *repository) GetUserPaymentAccount(ctx context.Context, userID int64) (*model.PaymentAccount, error) {
	var a model.PaymentAccount
	err := r.db.QueryRowContext(ctx, `
		SELECT p.id, p.stripe_id, p.connected, p.complete
		FROM payment_accounts p
		JOIN profiles pr ON pr.payment_account_id = p.id
		WHERE pr.user_id = $1
	`, userID).Scan(&a.ID, &a.StripeID, &a.Connected, &a.Complete)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user payment account: %w", err)
	}
	return &a, nil
}
