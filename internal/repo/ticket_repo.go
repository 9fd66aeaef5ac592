package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"clubtix/internal/model"
)

type TicketRepo interface {
	IssueTicketTx(ctx context.Context, t *model.Ticket, qrGen func(ticketID int64) (string, error)) (int64, error)
	GetTicketByID(ctx context.Context, id int64) (*model.Ticket, error)
	ListUserTickets(ctx context.Context, userID int64, status string) ([]TicketRow, error)
	UserHasTicket(ctx context.Context, userID, eventID int64) (bool, error)
	ListAvailableToTransfer(ctx context.Context, userID int64) ([]TicketRow, error)
	ListEventTickets(ctx context.Context, eventID int64) ([]ScannedTicketRow, error)
	ScanTicketTx(ctx context.Context, ticketID, scannerID, scannerEventID int64, grace time.Duration) (*ScanResult, error)
}

// TicketRow is a ticket joined with its event's club name and cover.
type TicketRow struct {
	model.Ticket
	ClubName   string
	EventCover *string
}

// ScannedTicketRow carries scanner-facing holder details for a ticket.
type ScannedTicketRow struct {
	model.Ticket
	HolderUsername string
	ScannedByName  *string
}

// Scan outcomes for a validated ticket.
const (
	ScanValidated = "validated"
	ScanRepeat    = "repeat"
	ScanAlready   = "already"
	ScanNotActive = "notactive"
)

// ScanResult is the outcome of a scan attempt with the holder details
// the scanner screen shows.
type ScanResult struct {
	Outcome    string
	FirstName  string
	LastName   string
	StudentID  *string
	Status     string
	ScannedAgo time.Duration
}

const ticketColumns = `t.id, t.title, t.code, t.price, t.order_date, t.status, t.qr_code,
       t.user_id, t.event_id, t.scanned_at, t.scanned_by`

func scanTicket(scan func(dest ...any) error, t *model.Ticket) error {
	return scan(
		&t.ID, &t.Title, &t.Code, &t.Price, &t.OrderDate, &t.Status, &t.QRCode,
		&t.UserID, &t.EventID, &t.ScannedAt, &t.ScannedBy,
	)
}

// IssueTicketTx creates a ticket inside a single transaction. The event row
// is locked so concurrent purchases cannot oversell: the capacity check,
// duplicate check, insert and QR generation all happen under the lock.
// When the event is at capacity the sold_out flag is persisted before
// ErrEventSoldOut is returned.
func (r *repository) IssueTicketTx(ctx context.Context, t *model.Ticket, qrGen func(ticketID int64) (string, error)) (int64, error) {
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

	var capacity int
	var soldOut bool
	err = tx.QueryRowContext(ctx, `
		SELECT capacity, sold_out FROM events WHERE id = $1 FOR UPDATE
	`, t.EventID).Scan(&capacity, &soldOut)
	if errors.Is(err, sql.ErrNoRows) {
		tx.Rollback()
		return 0, ErrEventNotFound
	}
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to lock event: %w", err)
	}

	var existing int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tickets WHERE user_id = $1 AND event_id = $2
	`, t.UserID, t.EventID).Scan(&existing)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to check existing ticket: %w", err)
	}
	if existing > 0 {
		tx.Rollback()
		return 0, ErrDuplicateTicket
	}

	var issued int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tickets WHERE event_id = $1
	`, t.EventID).Scan(&issued)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to count issued tickets: %w", err)
	}
	if soldOut || issued >= capacity {
		if _, err := tx.ExecContext(ctx, `UPDATE events SET sold_out = TRUE WHERE id = $1`, t.EventID); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to mark event sold out: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("failed to commit sold out flag: %w", err)
		}
		return 0, ErrEventSoldOut
	}

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO tickets (title, code, price, order_date, status, user_id, event_id)
		VALUES ($1, $2, $3, NOW(), $4, $5, $6)
		RETURNING id
	`, t.Title, t.Code, t.Price, model.TicketActive, t.UserID, t.EventID).Scan(&id)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to insert ticket: %w", err)
	}

	qrPath, err := qrGen(id)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to generate qr code: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE tickets SET qr_code = $1 WHERE id = $2`, qrPath, id); err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to attach qr code: %w", err)
	}

	// the last seat taken flips the flag for everyone after this buyer
	if issued+1 >= capacity {
		if _, err := tx.ExecContext(ctx, `UPDATE events SET sold_out = TRUE WHERE id = $1`, t.EventID); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to mark event sold out: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit ticket: %w", err)
	}
	return id, nil
}

func (r *repository) GetTicketByID(ctx context.Context, id int64) (*model.Ticket, error) {
	var t model.Ticket
	row := r.db.QueryRowContext(ctx, `
		SELECT `+ticketColumns+` FROM tickets t WHERE t.id = $1
	`, id)
	err := scanTicket(row.Scan, &t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return &t, nil
}

func (r *repository) ListUserTickets(ctx context.Context, userID int64, status string) ([]TicketRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+ticketColumns+`, c.name, e.cover
		FROM tickets t
		JOIN events e ON e.id = t.event_id
		JOIN clubs c ON c.id = e.club_id
		WHERE t.user_id = $1 AND t.status = $2
		ORDER BY t.order_date DESC
	`, userID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list user tickets: %w", err)
	}
	defer rows.Close()
	return collectTicketRows(rows)
}

func (r *repository) UserHasTicket(ctx context.Context, userID, eventID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM tickets WHERE user_id = $1 AND event_id = $2)
	`, userID, eventID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check ticket: %w", err)
	}
	return exists, nil
}

// ListAvailableToTransfer returns the caller's active tickets that are not
// already tied to a transfer request.
func (r *repository) ListAvailableToTransfer(ctx context.Context, userID int64) ([]TicketRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+ticketColumns+`, c.name, e.cover
		FROM tickets t
		JOIN events e ON e.id = t.event_id
		JOIN clubs c ON c.id = e.club_id
		WHERE t.user_id = $1 AND t.status = $2
		  AND t.id NOT IN (SELECT ticket_id FROM transfer_requests)
		ORDER BY t.order_date DESC
	`, userID, model.TicketActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list transferable tickets: %w", err)
	}
	defer rows.Close()
	return collectTicketRows(rows)
}

func collectTicketRows(rows *sql.Rows) ([]TicketRow, error) {
	var tickets []TicketRow
	for rows.Next() {
		var t TicketRow
		err := rows.Scan(
			&t.ID, &t.Title, &t.Code, &t.Price, &t.OrderDate, &t.Status, &t.QRCode,
			&t.UserID, &t.EventID, &t.ScannedAt, &t.ScannedBy,
			&t.ClubName, &t.EventCover,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (r *repository) ListEventTickets(ctx context.Context, eventID int64) ([]ScannedTicketRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+ticketColumns+`, u.username, s.username
		FROM tickets t
		JOIN users u ON u.id = t.user_id
		LEFT JOIN users s ON s.id = t.scanned_by
		WHERE t.event_id = $1
		ORDER BY t.order_date DESC
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list event tickets: %w", err)
	}
	defer rows.Close()

	var tickets []ScannedTicketRow
	for rows.Next() {
		var t ScannedTicketRow
		err := rows.Scan(
			&t.ID, &t.Title, &t.Code, &t.Price, &t.OrderDate, &t.Status, &t.QRCode,
			&t.UserID, &t.EventID, &t.ScannedAt, &t.ScannedBy,
			&t.HolderUsername, &t.ScannedByName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// ScanTicketTx validates a ticket at the door. The ticket row is locked so
// two scanners cannot both mark it used. A used ticket scanned again within
// the grace window reports a repeat success, which lets a flaky scanner
// retry without flagging the holder.
func (r *repository) ScanTicketTx(ctx context.Context, ticketID, scannerID, scannerEventID int64, grace time.Duration) (*ScanResult, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	var (
		status    string
		eventID   int64
		scannedAt *time.Time
		firstName string
		lastName  string
		studentID *string
	)
	err = tx.QueryRowContext(ctx, `
		SELECT t.status, t.event_id, t.scanned_at, u.first_name, u.last_name, u.student_id
		FROM tickets t
		JOIN users u ON u.id = t.user_id
		WHERE t.id = $1
		FOR UPDATE OF t
	`, ticketID).Scan(&status, &eventID, &scannedAt, &firstName, &lastName, &studentID)
	if errors.Is(err, sql.ErrNoRows) {
		tx.Rollback()
		return nil, ErrTicketNotFound
	}
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to lock ticket: %w", err)
	}

	if eventID != scannerEventID {
		tx.Rollback()
		return nil, ErrWrongEvent
	}

	res := &ScanResult{
		FirstName: firstName,
		LastName:  lastName,
		StudentID: studentID,
		Status:    status,
	}

	switch status {
	case model.TicketActive:
		_, err = tx.ExecContext(ctx, `
			UPDATE tickets SET status = $1, scanned_at = NOW(), scanned_by = $2 WHERE id = $3
		`, model.TicketUsed, scannerID, ticketID)
		if err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to mark ticket used: %w", err)
		}
		res.Outcome = ScanValidated
		res.Status = model.TicketUsed
	case model.TicketUsed:
		ago := time.Duration(0)
		if scannedAt != nil {
			ago = time.Since(*scannedAt)
		}
		res.ScannedAgo = ago
		if scannedAt != nil && ago <= grace {
			res.Outcome = ScanRepeat
		} else {
			res.Outcome = ScanAlready
		}
	default:
		res.Outcome = ScanNotActive
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit scan: %w", err)
	}
	return res, nil
}
