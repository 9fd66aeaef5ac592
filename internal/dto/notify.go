package dto

// Notification kinds published to RabbitMQ for the mail worker.
const (
	NotifyTicketIssued     = "ticket_issued"
	NotifyTransferCreated  = "transfer_created"
	NotifyTransferAccepted = "transfer_accepted"
)

type NotificationMessage struct {
	Kind       string `json:"kind"`
	Email      string `json:"email"`
	EventTitle string `json:"event_title"`
	FromUser   string `json:"from_user,omitempty"`
}
