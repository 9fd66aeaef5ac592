package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	UserTypeRegular = "user"
	UserTypeScanner = "ticket_scanner"
)

const (
	AccountPublic  = "PUB"
	AccountPrivate = "PRI"
	AccountClosed  = "CLO"
)

const (
	TicketActive    = "A"
	TicketCancelled = "C"
	TicketRefunded  = "R"
	TicketUsed      = "U"
)

const (
	TransferPending  = "pending"
	TransferAccepted = "accepted"
	TransferDeclined = "declined"
)

type User struct {
	ID          int64     `db:"id" json:"id"`
	Username    string    `db:"username" json:"username"`
	Email       string    `db:"email" json:"email"`
	StudentID   *string   `db:"student_id" json:"student_id,omitempty"`
	FirstName   string    `db:"first_name" json:"first_name"`
	LastName    string    `db:"last_name" json:"last_name"`
	Password    string    `db:"password" json:"-"`
	UserType    string    `db:"user_type" json:"user_type"`
	AccountType string    `db:"account_type" json:"account_type"`
	EventID     *int64    `db:"event_id" json:"event_id,omitempty"`
	CreatedBy   *int64    `db:"created_by" json:"created_by,omitempty"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type Profile struct {
	ID               int64      `db:"id" json:"id"`
	UserID           int64      `db:"user_id" json:"user_id"`
	ProfilePicture   *string    `db:"profile_picture" json:"profile_picture,omitempty"`
	Birthday         *time.Time `db:"birthday" json:"birthday,omitempty"`
	Course           string     `db:"course" json:"course"`
	Year             int        `db:"year" json:"year"`
	Description      *string    `db:"description" json:"description,omitempty"`
	Verified         bool       `db:"verified" json:"verified"`
	PaymentAccountID *int64     `db:"payment_account_id" json:"payment_account_id,omitempty"`
}

type PaymentAccount struct {
	ID        int64  `db:"id" json:"id"`
	StripeID  string `db:"stripe_id" json:"stripe_id"`
	Connected bool   `db:"connected" json:"stripe_connected"`
	Complete  bool   `db:"complete" json:"stripe_complete"`
}

type Club struct {
	ID               int64   `db:"id" json:"id"`
	Name             string  `db:"name" json:"name"`
	Description      string  `db:"description" json:"description"`
	Email            string  `db:"email" json:"email"`
	Logo             *string `db:"logo" json:"club_logo,omitempty"`
	Cover            *string `db:"cover" json:"club_cover,omitempty"`
	Website          *string `db:"website" json:"website,omitempty"`
	Content          string  `db:"content" json:"content"`
	PaymentAccountID *int64  `db:"payment_account_id" json:"payment_account_id,omitempty"`
}

type Event struct {
	ID          int64           `db:"id" json:"id"`
	ClubID      int64           `db:"club_id" json:"club_id"`
	Title       string          `db:"title" json:"title"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	StartsAt    time.Time       `db:"starts_at" json:"starts_at"`
	Location    string          `db:"location" json:"location"`
	Capacity    int             `db:"capacity" json:"capacity"`
	SoldOut     bool            `db:"sold_out" json:"sold_out"`
	EventType   string          `db:"event_type" json:"event_type"`
	Cover       *string         `db:"cover" json:"event_cover,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

type Ticket struct {
	ID        int64           `db:"id" json:"id"`
	Title     string          `db:"title" json:"title"`
	Code      string          `db:"code" json:"code"`
	Price     decimal.Decimal `db:"price" json:"price"`
	OrderDate time.Time       `db:"order_date" json:"order_date"`
	Status    string          `db:"status" json:"status"`
	QRCode    *string         `db:"qr_code" json:"qr_code,omitempty"`
	UserID    int64           `db:"user_id" json:"user_id"`
	EventID   int64           `db:"event_id" json:"event_id"`
	ScannedAt *time.Time      `db:"scanned_at" json:"scanned_at,omitempty"`
	ScannedBy *int64          `db:"scanned_by" json:"scanned_by,omitempty"`
}

type TransferRequest struct {
	ID         int64     `db:"id" json:"id"`
	SenderID   int64     `db:"sender_id" json:"sender_id"`
	ReceiverID int64     `db:"receiver_id" json:"receiver_id"`
	TicketID   int64     `db:"ticket_id" json:"ticket_id"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type Friend struct {
	ID         int64     `db:"id" json:"id"`
	SenderID   int64     `db:"sender_id" json:"sender_id"`
	ReceiverID int64     `db:"receiver_id" json:"receiver_id"`
	Status     bool      `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type Follow struct {
	ID     int64 `db:"id" json:"id"`
	UserID int64 `db:"user_id" json:"user_id"`
	ClubID int64 `db:"club_id" json:"club_id"`
}

// EventYearStats is one row of the per-event attendee breakdown used by
// the club dashboard.
type EventYearStats struct {
	EventTitle string         `json:"event_title"`
	YearData   map[string]int `json:"year_data"`
}

// ClubFollowerStats aggregates a club's followers by study year and course.
type ClubFollowerStats struct {
	ClubName   string         `json:"club_name"`
	YearData   map[string]int `json:"year_data"`
	CourseData map[string]int `json:"course_data"`
}
