package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clubtix/internal/model"
)

type EventRepo interface {
	CreateEvent(ctx context.Context, e *model.Event) (int64, error)
	GetEventByID(ctx context.Context, id int64) (*EventRow, error)
	UpdateEvent(ctx context.Context, e *model.Event) error
	DeleteEvent(ctx context.Context, id int64) error
	SetEventCover(ctx context.Context, eventID int64, path string) error

	ListEvents(ctx context.Context) ([]EventRow, error)
	ListEventsPage(ctx context.Context, limit, offset int) ([]EventRow, int, error)
	ListClubEvents(ctx context.Context, clubID int64) ([]EventRow, error)
	ListFollowedEvents(ctx context.Context, userID int64, limit, offset int) ([]EventRow, int, error)
	ListUserEventsByTicketStatus(ctx context.Context, userID int64, ticketStatus string) ([]EventRow, error)
	CountEventTickets(ctx context.Context, eventID int64) (int, error)
}

// EventRow is an event joined with the hosting club's name and logo,
// which every event listing in the API carries.
type EventRow struct {
	model.Event
	ClubName string
	ClubLogo *string
}

const eventColumns = `e.id, e.club_id, e.title, e.description, e.price, e.starts_at, e.location,
       e.capacity, e.sold_out, e.event_type, e.cover, e.created_at, e.updated_at,
       c.name, c.logo`

func scanEventRow(scan func(dest ...any) error) (*EventRow, error) {
	var e EventRow
	err := scan(
		&e.ID, &e.ClubID, &e.Title, &e.Description, &e.Price, &e.StartsAt, &e.Location,
		&e.Capacity, &e.SoldOut, &e.EventType, &e.Cover, &e.CreatedAt, &e.UpdatedAt,
		&e.ClubName, &e.ClubLogo,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func collectEventRows(rows *sql.Rows) ([]EventRow, error) {
	var events []EventRow
	for rows.Next() {
		e, err := scanEventRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *repository) CreateEvent(ctx context.Context, e *model.Event) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO events (club_id, title, description, price, starts_at, location,
		                    capacity, sold_out, event_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8, NOW(), NOW())
		RETURNING id
	`, e.ClubID, e.Title, e.Description, e.Price, e.StartsAt, e.Location,
		e.Capacity, e.EventType).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}
	return id, nil
}

func (r *repository) GetEventByID(ctx context.Context, id int64) (*EventRow, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+eventColumns+`
		FROM events e JOIN clubs c ON c.id = e.club_id
		WHERE e.id = $1
	`, id)
	e, err := scanEventRow(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return e, nil
}

func (r *repository) UpdateEvent(ctx context.Context, e *model.Event) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE events
		SET title = $1, description = $2, price = $3, starts_at = $4, location = $5,
		    capacity = $6, event_type = $7, updated_at = NOW()
		WHERE id = $8
	`, e.Title, e.Description, e.Price, e.StartsAt, e.Location, e.Capacity, e.EventType, e.ID)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *repository) DeleteEvent(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *repository) SetEventCover(ctx context.Context, eventID int64, path string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE events SET cover = $1, updated_at = NOW() WHERE id = $2`, path, eventID)
	if err != nil {
		return fmt.Errorf("failed to set event cover: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *repository) ListEvents(ctx context.Context) ([]EventRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM events e JOIN clubs c ON c.id = e.club_id
		ORDER BY e.starts_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()
	return collectEventRows(rows)
}

func (r *repository) ListEventsPage(ctx context.Context, limit, offset int) ([]EventRow, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM events e JOIN clubs c ON c.id = e.club_id
		ORDER BY e.starts_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events page: %w", err)
	}
	defer rows.Close()

	events, err := collectEventRows(rows)
	return events, total, err
}

func (r *repository) ListClubEvents(ctx context.Context, clubID int64) ([]EventRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM events e JOIN clubs c ON c.id = e.club_id
		WHERE e.club_id = $1
		ORDER BY e.starts_at DESC
	`, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to list club events: %w", err)
	}
	defer rows.Close()
	return collectEventRows(rows)
}

func (r *repository) ListFollowedEvents(ctx context.Context, userID int64, limit, offset int) ([]EventRow, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM events e
		WHERE e.club_id IN (SELECT club_id FROM follows WHERE user_id = $1)
	`, userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count followed events: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM events e JOIN clubs c ON c.id = e.club_id
		WHERE e.club_id IN (SELECT club_id FROM follows WHERE user_id = $1)
		ORDER BY e.starts_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list followed events: %w", err)
	}
	defer rows.Close()

	events, err := collectEventRows(rows)
	return events, total, err
}

func (r *repository) ListUserEventsByTicketStatus(ctx context.Context, userID int64, ticketStatus string) ([]EventRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM tickets t
		JOIN events e ON e.id = t.event_id
		JOIN clubs c ON c.id = e.club_id
		WHERE t.user_id = $1 AND t.status = $2
		ORDER BY e.starts_at DESC
	`, userID, ticketStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to list user events: %w", err)
	}
	defer rows.Close()
	return collectEventRows(rows)
}

func (r *repository) CountEventTickets(ctx context.Context, eventID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tickets WHERE event_id = $1
	`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}
	return count, nil
}
