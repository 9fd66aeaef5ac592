package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/wb-go/wbf/ginext"

	"clubtix/internal/auth"
	"clubtix/internal/dto"
	"clubtix/internal/model"
	"clubtix/internal/monitoring"
	"clubtix/internal/repo"
	"clubtix/internal/ticketcode"
	"clubtix/pkg/validator"
)

const qrImageSize = 256

// qrGenerator returns the in-transaction callback that renders and stores
// a ticket's QR image. A failure rolls the whole ticket insert back.
func (s *service) qrGenerator() func(ticketID int64) (string, error) {
	return func(ticketID int64) (string, error) {
		png, err := ticketcode.QRPNG(s.opts.BaseURL, ticketID, qrImageSize)
		if err != nil {
			return "", err
		}
		return s.media.SaveBytes("qr", fmt.Sprintf("ticket_%d.png", ticketID), png)
	}
}

func (s *service) IssueTicket(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}

	var req dto.IssueTicketRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	holder, err := s.repo.GetUserByUsername(ctx.Request.Context(), req.Username)
	if err != nil {
		dto.UserNotFoundError(ctx)
		return
	}
	if holder.ID != userID {
		dto.PermissionDeniedError(ctx)
		return
	}

	event, err := s.repo.GetEventByID(ctx.Request.Context(), req.EventID)
	if err != nil {
		dto.EventNotFoundError(ctx)
		return
	}

	code, err := ticketcode.NewCode()
	if err != nil {
		s.log.Error().Err(err).Msg("failed to generate ticket code")
		dto.InternalServerError(ctx)
		return
	}

	ticket := &model.Ticket{
		Title:   event.Title,
		Code:    code,
		Price:   event.Price,
		UserID:  holder.ID,
		EventID: event.ID,
	}

	id, err := s.repo.IssueTicketTx(ctx.Request.Context(), ticket, s.qrGenerator())
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrEventNotFound):
			dto.EventNotFoundError(ctx)
		case errors.Is(err, repo.ErrEventSoldOut):
			dto.BadResponseError(ctx, dto.EventSoldOut, "Event is sold out")
		case errors.Is(err, repo.ErrDuplicateTicket):
			dto.BadResponseError(ctx, dto.TicketDuplicate, "You already have a ticket for this event")
		default:
			s.log.Error().Err(err).Msg("failed to issue ticket")
			dto.InternalServerError(ctx)
		}
		return
	}

	s.log.Info().Int64("ticket_id", id).Int64("event_id", event.ID).Msg("ticket issued")
	monitoring.TicketsIssued.Inc()

	s.publishNotification(dto.NotificationMessage{
		Kind:       dto.NotifyTicketIssued,
		Email:      holder.Email,
		EventTitle: event.Title,
	})

	issued, err := s.repo.GetTicketByID(ctx.Request.Context(), id)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to reload issued ticket")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessCreatedResponse(ctx, s.ticketResponse(issued))
}

func (s *service) GetTicket(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}
	ticketID, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	ticket, err := s.repo.GetTicketByID(ctx.Request.Context(), ticketID)
	if err != nil {
		dto.TicketNotFoundError(ctx)
		return
	}
	if ticket.UserID != userID {
		dto.PermissionDeniedError(ctx)
		return
	}
	dto.SuccessResponse(ctx, s.ticketResponse(ticket))
}

func (s *service) ListMyTickets(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}

	status := ctx.DefaultQuery("status", model.TicketActive)
	rows, err := s.repo.ListUserTickets(ctx.Request.Context(), userID, status)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list tickets")
		dto.InternalServerError(ctx)
		return
	}

	resp := make([]dto.TicketResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, s.ticketResponse(&rows[i].Ticket))
	}
	dto.SuccessResponse(ctx, resp)
}

func (s *service) HasTicket(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}
	eventID, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	has, err := s.repo.UserHasTicket(ctx.Request.Context(), userID, eventID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to check ticket")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, dto.HasTicketResponse{HasTicket: has})
}

func (s *service) ListTransferableTickets(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}

	rows, err := s.repo.ListAvailableToTransfer(ctx.Request.Context(), userID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list transferable tickets")
		dto.InternalServerError(ctx)
		return
	}

	resp := make([]dto.TicketResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, s.ticketResponse(&rows[i].Ticket))
	}
	dto.SuccessResponse(ctx, resp)
}

// ValidateTicket is the door scan. The scanner account is bound to a
// single event and can only validate tickets for it.
func (s *service) ValidateTicket(ctx *ginext.Context) {
	claims, ok := s.claims(ctx)
	if !ok {
		return
	}
	if claims.UserType != model.UserTypeScanner || claims.EventID == nil {
		dto.PermissionDeniedError(ctx)
		return
	}
	scannerID, err := claims.UserID()
	if err != nil {
		dto.UnauthorizedError(ctx)
		return
	}
	ticketID, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	result, err := s.repo.ScanTicketTx(ctx.Request.Context(), ticketID, scannerID, *claims.EventID, s.opts.ScanGrace)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrTicketNotFound):
			dto.TicketNotFoundError(ctx)
		case errors.Is(err, repo.ErrWrongEvent):
			monitoring.TicketScans.WithLabelValues("wrong_event").Inc()
			dto.PermissionDeniedError(ctx)
		default:
			s.log.Error().Err(err).Msg("failed to scan ticket")
			dto.InternalServerError(ctx)
		}
		return
	}

	monitoring.TicketScans.WithLabelValues(result.Outcome).Inc()

	resp := dto.ValidateTicketResponse{
		FirstName:    result.FirstName,
		LastName:     result.LastName,
		StudentID:    result.StudentID,
		TicketStatus: result.Status,
	}
	switch result.Outcome {
	case repo.ScanValidated, repo.ScanRepeat:
		resp.Detail = "Ticket validated"
		dto.SuccessResponse(ctx, resp)
	case repo.ScanAlready:
		resp.Detail = "Ticket already scanned"
		resp.ScannedAgo = formatAgo(result.ScannedAgo)
		dto.BadResponseError(ctx, dto.TicketNotActive, resp.Detail)
	default:
		resp.Detail = "Ticket is not active"
		dto.BadResponseError(ctx, dto.TicketNotActive, resp.Detail)
	}
}

// ListEventTickets serves the door display with every ticket for the
// event, bucketed by status. Club admins and the event's scanners may see
// it.
func (s *service) ListEventTickets(ctx *ginext.Context) {
	claims, ok := s.claims(ctx)
	if !ok {
		return
	}
	eventID, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	if !s.canViewEventTickets(ctx, claims, eventID) {
		return
	}

	rows, err := s.repo.ListEventTickets(ctx.Request.Context(), eventID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list event tickets")
		dto.InternalServerError(ctx)
		return
	}

	var resp dto.EventTicketsResponse
	for i := range rows {
		item := scannerTicketResponse(&rows[i])
		switch rows[i].Status {
		case model.TicketActive:
			resp.ActiveTickets = append(resp.ActiveTickets, item)
		case model.TicketUsed:
			resp.UsedTickets = append(resp.UsedTickets, item)
		case model.TicketCancelled:
			resp.CancelledTickets = append(resp.CancelledTickets, item)
		case model.TicketRefunded:
			resp.RefundedTickets = append(resp.RefundedTickets, item)
		}
	}
	dto.SuccessResponse(ctx, resp)
}

func (s *service) canViewEventTickets(ctx *ginext.Context, claims *auth.Claims, eventID int64) bool {
	if claims.UserType == model.UserTypeScanner {
		if claims.EventID != nil && *claims.EventID == eventID {
			return true
		}
		dto.PermissionDeniedError(ctx)
		return false
	}

	row, err := s.repo.GetEventByID(ctx.Request.Context(), eventID)
	if err != nil {
		dto.EventNotFoundError(ctx)
		return false
	}
	_, ok := s.requireClubAdmin(ctx, row.ClubID)
	return ok
}

func (s *service) CreateScanner(ctx *ginext.Context) {
	var req dto.CreateScannerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	event, err := s.repo.GetEventByID(ctx.Request.Context(), req.EventID)
	if err != nil {
		dto.EventNotFoundError(ctx)
		return
	}
	adminID, ok := s.requireClubAdmin(ctx, event.ClubID)
	if !ok {
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to hash scanner password")
		dto.InternalServerError(ctx)
		return
	}

	scanner := &model.User{
		Username:    req.Username,
		Email:       req.Email,
		Password:    hash,
		UserType:    model.UserTypeScanner,
		AccountType: model.AccountClosed,
		EventID:     &req.EventID,
		CreatedBy:   &adminID,
		IsActive:    true,
	}

	id, err := s.repo.CreateScannerUser(ctx.Request.Context(), scanner)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateUser) {
			dto.BadResponseError(ctx, dto.FieldIncorrect, "Username or email already taken")
			return
		}
		s.log.Error().Err(err).Msg("failed to create scanner")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int64("scanner_id", id).Int64("event_id", req.EventID).Msg("scanner account created")
	dto.SuccessCreatedResponse(ctx, dto.ScannerUserResponse{
		ID:       id,
		Username: req.Username,
		EventID:  req.EventID,
	})
}

func (s *service) ListEventScanners(ctx *ginext.Context) {
	eventID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	event, err := s.repo.GetEventByID(ctx.Request.Context(), eventID)
	if err != nil {
		dto.EventNotFoundError(ctx)
		return
	}
	if _, ok := s.requireClubAdmin(ctx, event.ClubID); !ok {
		return
	}

	rows, err := s.repo.ListEventScanners(ctx.Request.Context(), eventID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list scanners")
		dto.InternalServerError(ctx)
		return
	}

	resp := make([]dto.ScannerUserResponse, 0, len(rows))
	for _, row := range rows {
		item := dto.ScannerUserResponse{
			ID:        row.ID,
			Username:  row.Username,
			CreatedBy: row.CreatedByUsername,
		}
		if row.EventID != nil {
			item.EventID = *row.EventID
		}
		resp = append(resp, item)
	}
	dto.SuccessResponse(ctx, resp)
}

func (s *service) ResetScannerPassword(ctx *ginext.Context) {
	scanner, ok := s.requireManagedScanner(ctx)
	if !ok {
		return
	}

	var req dto.ResetScannerPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to hash scanner password")
		dto.InternalServerError(ctx)
		return
	}
	if err := s.repo.SetUserPassword(ctx.Request.Context(), scanner.ID, hash); err != nil {
		s.log.Error().Err(err).Msg("failed to reset scanner password")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, dto.DetailResponse{Detail: "Password updated"})
}

func (s *service) DeleteScanner(ctx *ginext.Context) {
	scanner, ok := s.requireManagedScanner(ctx)
	if !ok {
		return
	}

	if err := s.repo.DeleteUser(ctx.Request.Context(), scanner.ID); err != nil {
		s.log.Error().Err(err).Msg("failed to delete scanner")
		dto.InternalServerError(ctx)
		return
	}
	dto.NoContentResponse(ctx)
}

// requireManagedScanner loads the scanner account in the id param and
// verifies the caller administers the club behind the scanner's event.
func (s *service) requireManagedScanner(ctx *ginext.Context) (*model.User, bool) {
	scannerID, ok := paramID(ctx, "id")
	if !ok {
		return nil, false
	}

	scanner, err := s.repo.GetUserByID(ctx.Request.Context(), scannerID)
	if err != nil || scanner.UserType != model.UserTypeScanner || scanner.EventID == nil {
		dto.UserNotFoundError(ctx)
		return nil, false
	}

	event, err := s.repo.GetEventByID(ctx.Request.Context(), *scanner.EventID)
	if err != nil {
		dto.EventNotFoundError(ctx)
		return nil, false
	}
	if _, ok := s.requireClubAdmin(ctx, event.ClubID); !ok {
		return nil, false
	}
	return scanner, true
}

func (s *service) ticketResponse(t *model.Ticket) dto.TicketResponse {
	resp := dto.TicketResponse{
		ID:        t.ID,
		Title:     t.Title,
		Code:      t.Code,
		Price:     t.Price,
		OrderDate: t.OrderDate,
		Status:    t.Status,
		UserID:    t.UserID,
		EventID:   t.EventID,
	}
	if t.QRCode != nil {
		resp.QRCode = s.media.URL(t.QRCode, "")
	}
	return resp
}

func scannerTicketResponse(row *repo.ScannedTicketRow) dto.ScannerTicketResponse {
	item := dto.ScannerTicketResponse{
		ID:        row.ID,
		Status:    row.Status,
		ScannedBy: row.ScannedByName,
		User:      dto.UserResponse{ID: row.UserID, Username: row.HolderUsername},
	}
	if row.ScannedAt != nil {
		formatted := formatScannedAt(*row.ScannedAt)
		item.ScannedAt = &formatted
	}
	return item
}

// formatScannedAt shows just the time for today's scans and a full
// timestamp otherwise.
func formatScannedAt(t time.Time) string {
	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("2006-01-02 15:04")
}

func formatAgo(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%d seconds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	}
}
