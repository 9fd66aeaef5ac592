package repo

import (
	"context"
	"fmt"

	"clubtix/internal/model"
)

type StatsRepo interface {
	EventYearStats(ctx context.Context, clubID int64) ([]model.EventYearStats, error)
	ClubFollowerStats(ctx context.Context, clubID int64) (*model.ClubFollowerStats, error)
}

// EventYearStats breaks down ticket holders per event of the club by the
// study year on their profiles.
func (r *repository) EventYearStats(ctx context.Context, clubID int64) ([]model.EventYearStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT e.id, e.title, p.year, COUNT(*)
		FROM events e
		JOIN tickets t ON t.event_id = e.id
		JOIN profiles p ON p.user_id = t.user_id
		WHERE e.club_id = $1
		GROUP BY e.id, e.title, p.year
		ORDER BY e.id, p.year
	`, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to query event year stats: %w", err)
	}
	defer rows.Close()

	var (
		stats  []model.EventYearStats
		lastID int64 = -1
	)
	for rows.Next() {
		var (
			eventID int64
			title   string
			year    string
			count   int
		)
		if err := rows.Scan(&eventID, &title, &year, &count); err != nil {
			return nil, fmt.Errorf("failed to scan event year stats: %w", err)
		}
		if eventID != lastID {
			stats = append(stats, model.EventYearStats{EventTitle: title, YearData: map[string]int{}})
			lastID = eventID
		}
		stats[len(stats)-1].YearData[year] = count
	}
	return stats, rows.Err()
}

// ClubFollowerStats breaks the club's followers down by study year and by
// course.
func (r *repository) ClubFollowerStats(ctx context.Context, clubID int64) (*model.ClubFollowerStats, error) {
	stats := &model.ClubFollowerStats{
		YearData:   map[string]int{},
		CourseData: map[string]int{},
	}

	err := r.db.QueryRowContext(ctx, `SELECT name FROM clubs WHERE id = $1`, clubID).Scan(&stats.ClubName)
	if err != nil {
		return nil, ErrClubNotFound
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT p.year, COUNT(*)
		FROM follows f
		JOIN profiles p ON p.user_id = f.user_id
		WHERE f.club_id = $1
		GROUP BY p.year
	`, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to query follower year stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			year  string
			count int
		)
		if err := rows.Scan(&year, &count); err != nil {
			return nil, fmt.Errorf("failed to scan follower year stats: %w", err)
		}
		stats.YearData[year] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	courseRows, err := r.db.QueryContext(ctx, `
		SELECT p.course, COUNT(*)
		FROM follows f
		JOIN profiles p ON p.user_id = f.user_id
		WHERE f.club_id = $1
		GROUP BY p.course
	`, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to query follower course stats: %w", err)
	}
	defer courseRows.Close()
	for courseRows.Next() {
		var (
			course string
			count  int
		)
		if err := courseRows.Scan(&course, &count); err != nil {
			return nil, fmt.Errorf("failed to scan follower course stats: %w", err)
		}
		stats.CourseData[course] = count
	}
	return stats, courseRows.Err()
}
