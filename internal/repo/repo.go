package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrDuplicateUser    = errors.New("username or email already taken")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrClubNotFound     = errors.New("club not found")
	ErrClubEmailTaken   = errors.New("club email already taken")
	ErrEventNotFound    = errors.New("event not found")
	ErrEventSoldOut     = errors.New("event is sold out")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrDuplicateTicket  = errors.New("ticket already exists for this user and event")
	ErrTicketNotActive  = errors.New("ticket is not active")
	ErrWrongEvent       = errors.New("ticket belongs to another event")
	ErrTransferNotFound = errors.New("transfer request not found")
	ErrDuplicateTransfer = errors.New("transfer request already exists")
	ErrTransferNotPending = errors.New("transfer request is not pending")
	ErrReceiverHasTicket  = errors.New("receiver already holds a ticket for this event")
	ErrFriendNotFound     = errors.New("friendship not found")
	ErrDuplicateFriend    = errors.New("friend request already exists")
	ErrFollowNotFound     = errors.New("follow not found")
	ErrDuplicateFollow    = errors.New("user already follows this club")
	ErrAccountNotFound    = errors.New("payment account not found")
)

// Repository is the full persistence surface. Services depend on the
// narrow sub-interfaces, which keeps their test fakes small.
type Repository interface {
	UserRepo
	FriendRepo
	ClubRepo
	FollowRepo
	EventRepo
	TicketRepo
	TransferRepo
	PaymentRepo
	StatsRepo

	MigrateUp(migrationsDir string) error
	MigrateDown(migrationsDir string) error
}

type repository struct {
	db  *dbpg.DB
	log *zerolog.Logger
}

func NewRepository(db *dbpg.DB, log *zerolog.Logger) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := db.Master.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return &repository{db: db, log: log}, nil
}

func (r *repository) MigrateUp(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Migrations applied successfully from %s", migrationsDir)
	return nil
}

func (r *repository) MigrateDown(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.down.sql"))
	if err != nil {
		return fmt.Errorf("failed to read rollback files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read rollback file %s: %w", file, err)
		}

		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to rollback migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Migrations rolled back successfully from %s", migrationsDir)
	return nil
}
