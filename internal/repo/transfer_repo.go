package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"clubtix/internal/model"
)

type TransferRepo interface {
	CreateTransfer(ctx context.Context, senderID, receiverID, ticketID int64) (int64, error)
	GetTransferByID(ctx context.Context, id int64) (*model.TransferRequest, error)
	ListSentTransfers(ctx context.Context, senderID int64) ([]TransferRow, error)
	ListReceivedTransfers(ctx context.Context, receiverID int64) ([]TransferRow, error)
	CountPendingReceived(ctx context.Context, receiverID int64) (int, error)
	AcceptTransferTx(ctx context.Context, requestID, receiverID int64, code string, qrGen func(ticketID int64) (string, error)) (int64, error)
	DeclineTransfer(ctx context.Context, requestID, receiverID int64) error
}

// TransferRow is a transfer request joined with everything the transfer
/// screens render: party usernames, the ticket summary and the event art.
type TransferRow struct {
	model.TransferRequest
	SenderUsername   string
	ReceiverUsername string
	SenderPicture    *string
	TicketTitle      string
	TicketPrice      decimal.Decimal
	ClubName         string
	EventCover       *string
	EventID          int64
}

func (r *repository) CreateTransfer(ctx context.Context, senderID, receiverID, ticketID int64) (int64, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM transfer_requests WHERE sender_id = $1 AND ticket_id = $2)
	`, senderID, ticketID).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to check transfer: %w", err)
	}
	if exists {
		return 0, ErrDuplicateTransfer
	}

	var id int64
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO transfer_requests (sender_id, receiver_id, ticket_id, status, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id
	`, senderID, receiverID, ticketID, model.TransferPending).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transfer: %w", err)
	}
	return id, nil
}

func (r *repository) GetTransferByID(ctx context.Context, id int64) (*model.TransferRequest, error) {
	var t model.TransferRequest
	err := r.db.QueryRowContext(ctx, `
		SELECT id, sender_id, receiver_id, ticket_id, status, created_at
		FROM transfer_requests WHERE id = $1
	`, id).Scan(&t.ID, &t.SenderID, &t.ReceiverID, &t.TicketID, &t.Status, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransferNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	return &t, nil
}

const transferColumns = `tr.id, tr.sender_id, tr.receiver_id, tr.ticket_id, tr.status, tr.created_at,
       su.username, ru.username, sp.profile_picture,
       t.title, t.price, c.name, e.cover, e.id`

const transferJoins = `
		FROM transfer_requests tr
		JOIN users su ON su.id = tr.sender_id
		JOIN users ru ON ru.id = tr.receiver_id
		LEFT JOIN profiles sp ON sp.user_id = tr.sender_id
		JOIN tickets t ON t.id = tr.ticket_id
		JOIN events e ON e.id = t.event_id
		JOIN clubs c ON c.id = e.club_id`

func collectTransferRows(rows *sql.Rows) ([]TransferRow, error) {
	var transfers []TransferRow
	for rows.Next() {
		var t TransferRow
		err := rows.Scan(
			&t.ID, &t.SenderID, &t.ReceiverID, &t.TicketID, &t.Status, &t.CreatedAt,
			&t.SenderUsername, &t.ReceiverUsername, &t.SenderPicture,
			&t.TicketTitle, &t.TicketPrice, &t.ClubName, &t.EventCover, &t.EventID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

func (r *repository) ListSentTransfers(ctx context.Context, senderID int64) ([]TransferRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transferColumns+transferJoins+`
		WHERE tr.sender_id = $1
		ORDER BY tr.created_at DESC
	`, senderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sent transfers: %w", err)
	}
	defer rows.Close()
	return collectTransferRows(rows)
}

func (r *repository) ListReceivedTransfers(ctx context.Context, receiverID int64) ([]TransferRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transferColumns+transferJoins+`
		WHERE tr.receiver_id = $1 AND tr.status = $2
		ORDER BY tr.created_at DESC
	`, receiverID, model.TransferPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list received transfers: %w", err)
	}
	defer rows.Close()
	return collectTransferRows(rows)
}

func (r *repository) CountPendingReceived(ctx context.Context, receiverID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM transfer_requests WHERE receiver_id = $1 AND status = $2
	`, receiverID, model.TransferPending).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending transfers: %w", err)
	}
	return count, nil
}

// AcceptTransferTx swaps ticket ownership atomically: the old ticket is
// locked, a fresh ticket with a new code is issued to the receiver, and the
// old ticket and the request are removed. The receiver must not already
// hold a ticket for the event.
func (r *repository) AcceptTransferTx(ctx context.Context, requestID, receiverID int64, code string, qrGen func(ticketID int64) (string, error)) (int64, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	var (
		status   string
		reqRecv  int64
		ticketID int64
	)
	err = tx.QueryRowContext(ctx, `
		SELECT status, receiver_id, ticket_id FROM transfer_requests WHERE id = $1 FOR UPDATE
	`, requestID).Scan(&status, &reqRecv, &ticketID)
	if errors.Is(err, sql.ErrNoRows) {
		tx.Rollback()
		return 0, ErrTransferNotFound
	}
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to lock transfer: %w", err)
	}
	if reqRecv != receiverID {
		tx.Rollback()
		return 0, ErrTransferNotFound
	}
	if status != model.TransferPending {
		tx.Rollback()
		return 0, ErrTransferNotPending
	}

	var old model.Ticket
	row := tx.QueryRowContext(ctx, `
		SELECT `+ticketColumns+` FROM tickets t WHERE t.id = $1 FOR UPDATE
	`, ticketID)
	err = scanTicket(row.Scan, &old)
	if errors.Is(err, sql.ErrNoRows) {
		tx.Rollback()
		return 0, ErrTicketNotFound
	}
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to lock ticket: %w", err)
	}
	if old.Status != model.TicketActive {
		tx.Rollback()
		return 0, ErrTicketNotActive
	}

	var taken bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM tickets WHERE user_id = $1 AND event_id = $2)
	`, receiverID, old.EventID).Scan(&taken)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to check receiver ticket: %w", err)
	}
	if taken {
		tx.Rollback()
		return 0, ErrReceiverHasTicket
	}

	var newID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO tickets (title, code, price, order_date, status, user_id, event_id)
		VALUES ($1, $2, $3, NOW(), $4, $5, $6)
		RETURNING id
	`, old.Title, code, old.Price, model.TicketActive, receiverID, old.EventID).Scan(&newID)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to insert replacement ticket: %w", err)
	}

	qrPath, err := qrGen(newID)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to generate qr code: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE tickets SET qr_code = $1 WHERE id = $2`, qrPath, newID); err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to attach qr code: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM transfer_requests WHERE id = $1`, requestID); err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to delete transfer: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tickets WHERE id = $1`, ticketID); err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to delete old ticket: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transfer: %w", err)
	}
	return newID, nil
}

func (r *repository) DeclineTransfer(ctx context.Context, requestID, receiverID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transfer_requests SET status = $1
		WHERE id = $2 AND receiver_id = $3 AND status = $4
	`, model.TransferDeclined, requestID, receiverID, model.TransferPending)
	if err != nil {
		return fmt.Errorf("failed to decline transfer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTransferNotFound
	}
	return nil
}
