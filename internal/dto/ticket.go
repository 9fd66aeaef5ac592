package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type IssueTicketRequest struct {
	Username string `json:"user" validate:"required"`
	EventID  int64  `json:"event" validate:"required,gt=0"`
}

type TicketResponse struct {
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	Code      string          `json:"code"`
	Price     decimal.Decimal `json:"price"`
	OrderDate time.Time       `json:"order_date"`
	Status    string          `json:"status"`
	QRCode    string          `json:"qr_code"`
	UserID    int64           `json:"user_id"`
	EventID   int64           `json:"event_id"`
}

type HasTicketResponse struct {
	HasTicket bool `json:"has_ticket"`
}

type ValidateTicketResponse struct {
	Detail       string  `json:"detail"`
	FirstName    string  `json:"first_name,omitempty"`
	LastName     string  `json:"last_name,omitempty"`
	StudentID    *string `json:"student_id,omitempty"`
	TicketStatus string  `json:"ticket_status"`
	ScannedAgo   string  `json:"scanned_ago,omitempty"`
}

// ScannerTicketResponse is the door-display view of a ticket: holder
// identity plus a short scanned-at string (time only when today).
type ScannerTicketResponse struct {
	ID        int64        `json:"id"`
	Status    string       `json:"status"`
	ScannedAt *string      `json:"scanned_at"`
	ScannedBy *string      `json:"scanned_by"`
	User      UserResponse `json:"user"`
}

type EventTicketsResponse struct {
	ActiveTickets    []ScannerTicketResponse `json:"active_tickets"`
	UsedTickets      []ScannerTicketResponse `json:"used_tickets"`
	CancelledTickets []ScannerTicketResponse `json:"cancelled_tickets"`
	RefundedTickets  []ScannerTicketResponse `json:"refunded_tickets"`
}

type CreateScannerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
	Email    string `json:"email" validate:"required,email"`
	EventID  int64  `json:"event_id" validate:"required,gt=0"`
}

type ScannerUserResponse struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	EventID   int64   `json:"event"`
	CreatedBy *string `json:"created_by"`
}

type ResetScannerPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}
