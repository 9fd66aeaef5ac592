package service

import (
	"errors"
	"fmt"

	"github.com/wb-go/wbf/ginext"

	"clubtix/internal/dto"
	"clubtix/internal/model"
	"clubtix/internal/monitoring"
	"clubtix/internal/repo"
	"clubtix/internal/ticketcode"
	"clubtix/pkg/validator"
)

func (s *service) CreateTransfer(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}

	var req dto.CreateTransferRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	receiver, err := s.repo.GetUserByUsername(ctx.Request.Context(), req.Receiver)
	if err != nil {
		dto.UserNotFoundError(ctx)
		return
	}
	if receiver.ID == userID {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Cannot transfer a ticket to yourself")
		return
	}

	ticket, err := s.repo.GetTicketByID(ctx.Request.Context(), req.TicketID)
	if err != nil {
		dto.TicketNotFoundError(ctx)
		return
	}
	if ticket.UserID != userID {
		dto.PermissionDeniedError(ctx)
		return
	}
	if ticket.Status != model.TicketActive {
		dto.BadResponseError(ctx, dto.TicketNotActive, "Only active tickets can be transferred")
		return
	}

	id, err := s.repo.CreateTransfer(ctx.Request.Context(), userID, receiver.ID, req.TicketID)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateTransfer) {
			dto.BadResponseError(ctx, dto.TransferDuplicate, "This ticket is already in a transfer request")
			return
		}
		s.log.Error().Err(err).Msg("failed to create transfer request")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int64("transfer_id", id).Int64("ticket_id", req.TicketID).Msg("transfer request created")

	sender, err := s.repo.GetUserByID(ctx.Request.Context(), userID)
	if err == nil {
		s.publishNotification(dto.NotificationMessage{
			Kind:       dto.NotifyTransferCreated,
			Email:      receiver.Email,
			EventTitle: ticket.Title,
			FromUser:   sender.Username,
		})
	}

	dto.SuccessCreatedResponse(ctx, dto.DetailResponse{Detail: "Transfer request sent"})
}

// ListSentTransfers returns the caller's outgoing requests bucketed by
// status.
func (s *service) ListSentTransfers(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}

	rows, err := s.repo.ListSentTransfers(ctx.Request.Context(), userID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list sent transfers")
		dto.InternalServerError(ctx)
		return
	}

	resp := dto.SentTransfersResponse{
		Pending:  []dto.TransferResponse{},
		Accepted: []dto.TransferResponse{},
		Declined: []dto.TransferResponse{},
	}
	for i := range rows {
		item := s.transferResponse(&rows[i])
		switch rows[i].Status {
		case model.TransferPending:
			resp.Pending = append(resp.Pending, item)
		case model.TransferAccepted:
			resp.Accepted = append(resp.Accepted, item)
		case model.TransferDeclined:
			resp.Declined = append(resp.Declined, item)
		}
	}
	dto.SuccessResponse(ctx, resp)
}

func (s *service) ListReceivedTransfers(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}

	rows, err := s.repo.ListReceivedTransfers(ctx.Request.Context(), userID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list received transfers")
		dto.InternalServerError(ctx)
		return
	}

	resp := make([]dto.TransferResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, s.transferResponse(&rows[i]))
	}
	dto.SuccessResponse(ctx, resp)
}

func (s *service) CountPendingTransfers(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}

	count, err := s.repo.CountPendingReceived(ctx.Request.Context(), userID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to count pending transfers")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, dto.PendingTransfersResponse{NumOfTransfers: count})
}

// CanAcceptTransfer reports whether accepting would violate the one
// ticket per event rule for the receiver.
func (s *service) CanAcceptTransfer(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}
	requestID, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	transfer, err := s.repo.GetTransferByID(ctx.Request.Context(), requestID)
	if err != nil || transfer.ReceiverID != userID {
		dto.NotFoundError(ctx, dto.TransferNotFound, "Transfer request not found")
		return
	}

	ticket, err := s.repo.GetTicketByID(ctx.Request.Context(), transfer.TicketID)
	if err != nil {
		dto.TicketNotFoundError(ctx)
		return
	}

	has, err := s.repo.UserHasTicket(ctx.Request.Context(), userID, ticket.EventID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to check receiver ticket")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, dto.CanAcceptTransferResponse{CanAcceptTransfer: !has})
}

// AcceptTransfer reissues the ticket to the receiver. The old ticket and
// its QR become invalid the moment the swap commits.
func (s *service) AcceptTransfer(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}
	requestID, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	code, err := ticketcode.NewCode()
	if err != nil {
		s.log.Error().Err(err).Msg("failed to generate ticket code")
		dto.InternalServerError(ctx)
		return
	}

	transfer, err := s.repo.GetTransferByID(ctx.Request.Context(), requestID)
	if err != nil {
		dto.NotFoundError(ctx, dto.TransferNotFound, "Transfer request not found")
		return
	}

	newID, err := s.repo.AcceptTransferTx(ctx.Request.Context(), requestID, userID, code, s.qrGenerator())
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrTransferNotFound):
			dto.NotFoundError(ctx, dto.TransferNotFound, "Transfer request not found")
		case errors.Is(err, repo.ErrTransferNotPending):
			dto.BadResponseError(ctx, dto.FieldIncorrect, "Transfer request is no longer pending")
		case errors.Is(err, repo.ErrTicketNotActive):
			dto.BadResponseError(ctx, dto.TicketNotActive, "Ticket is no longer active")
		case errors.Is(err, repo.ErrReceiverHasTicket):
			dto.BadResponseError(ctx, dto.TicketDuplicate, "You already have a ticket for this event")
		default:
			s.log.Error().Err(err).Msg("failed to accept transfer")
			dto.InternalServerError(ctx)
		}
		return
	}

	s.log.Info().Int64("transfer_id", requestID).Int64("new_ticket_id", newID).Msg("transfer accepted")
	monitoring.TransfersAccepted.Inc()
	monitoring.TicketsIssued.Inc()

	sender, serr := s.repo.GetUserByID(ctx.Request.Context(), transfer.SenderID)
	receiver, rerr := s.repo.GetUserByID(ctx.Request.Context(), userID)
	if serr == nil && rerr == nil {
		ticket, terr := s.repo.GetTicketByID(ctx.Request.Context(), newID)
		if terr == nil {
			s.publishNotification(dto.NotificationMessage{
				Kind:       dto.NotifyTransferAccepted,
				Email:      sender.Email,
				EventTitle: ticket.Title,
				FromUser:   receiver.Username,
			})
		}
	}

	ticket, err := s.repo.GetTicketByID(ctx.Request.Context(), newID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to reload transferred ticket")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, s.ticketResponse(ticket))
}

func (s *service) DeclineTransfer(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}
	requestID, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	if err := s.repo.DeclineTransfer(ctx.Request.Context(), requestID, userID); err != nil {
		if errors.Is(err, repo.ErrTransferNotFound) {
			dto.NotFoundError(ctx, dto.TransferNotFound, "Transfer request not found")
			return
		}
		s.log.Error().Err(err).Msg("failed to decline transfer")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, dto.DetailResponse{Detail: "Transfer request declined"})
}

func (s *service) transferResponse(row *repo.TransferRow) dto.TransferResponse {
	var picture *string
	if row.SenderPicture != nil {
		url := s.media.URL(row.SenderPicture, "")
		picture = &url
	}
	var cover *string
	if row.EventCover != nil {
		url := s.media.URL(row.EventCover, "")
		cover = &url
	}
	return dto.TransferResponse{
		ID:       row.ID,
		Sender:   row.SenderUsername,
		Receiver: row.ReceiverUsername,
		Ticket: dto.TransferTicketResponse{
			Title: row.TicketTitle,
			Price: row.TicketPrice,
		},
		Status:               row.Status,
		CreatedAt:            row.CreatedAt.Format("02 Jan 2006"),
		SenderProfilePicture: picture,
		ClubName:             row.ClubName,
		EventCover:           cover,
	}
}
