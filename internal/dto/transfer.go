package dto

import "github.com/shopspring/decimal"

type CreateTransferRequest struct {
	Receiver string `json:"receiver" validate:"required"`
	TicketID int64  `json:"ticket_id" validate:"required,gt=0"`
}

// TransferTicketResponse deliberately omits the ticket code and QR so a
// pending transfer never leaks a scannable ticket to the receiver.
type TransferTicketResponse struct {
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
}

type TransferResponse struct {
	ID                   int64                  `json:"id"`
	Sender               string                 `json:"sender"`
	Receiver             string                 `json:"receiver"`
	Ticket               TransferTicketResponse `json:"ticket"`
	Status               string                 `json:"status"`
	CreatedAt            string                 `json:"created_at"`
	SenderProfilePicture *string                `json:"sender_profile_picture"`
	ClubName             string                 `json:"club_name"`
	EventCover           *string                `json:"event_cover"`
}

type SentTransfersResponse struct {
	Pending  []TransferResponse `json:"pending_transfer_requests"`
	Accepted []TransferResponse `json:"accepted_transfer_requests"`
	Declined []TransferResponse `json:"declined_transfer_requests"`
}

type PendingTransfersResponse struct {
	NumOfTransfers int `json:"num_of_transfers"`
}

type CanAcceptTransferResponse struct {
	CanAcceptTransfer bool `json:"can_accept_transfer"`
}
