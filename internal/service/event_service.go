package service

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/wb-go/wbf/ginext"

	"clubtix/internal/dto"
	"clubtix/internal/model"
	"clubtix/internal/repo"
	"clubtix/pkg/validator"
)

func (s *service) CreateEvent(ctx *ginext.Context) {
	var req dto.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		s.log.Error().Err(err).Msg("failed to parse create event request")
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	if _, ok := s.requireClubAdmin(ctx, req.ClubID); !ok {
		return
	}

	if req.Price.IsNegative() {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Price cannot be negative")
		return
	}

	event := &model.Event{
		ClubID:      req.ClubID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		StartsAt:    req.StartsAt,
		Location:    req.Location,
		Capacity:    req.Capacity,
		EventType:   req.EventType,
	}

	id, err := s.repo.CreateEvent(ctx.Request.Context(), event)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create event in DB")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int64("event_id", id).Msg("event created successfully")

	row, err := s.repo.GetEventByID(ctx.Request.Context(), id)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to reload created event")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessCreatedResponse(ctx, s.eventResponse(row))
}

func (s *service) GetEvent(ctx *ginext.Context) {
	eventID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	row, err := s.repo.GetEventByID(ctx.Request.Context(), eventID)
	if err != nil {
		dto.EventNotFoundError(ctx)
		return
	}
	dto.SuccessResponse(ctx, s.eventResponse(row))
}

func (s *service) UpdateEvent(ctx *ginext.Context) {
	eventID, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	row, err := s.repo.GetEventByID(ctx.Request.Context(), eventID)
	if err != nil {
		dto.EventNotFoundError(ctx)
		return
	}
	if _, ok := s.requireClubAdmin(ctx, row.ClubID); !ok {
		return
	}

	var req dto.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	event := &row.Event
	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			dto.BadResponseError(ctx, dto.FieldIncorrect, "Price cannot be negative")
			return
		}
		event.Price = *req.Price
	}
	if req.StartsAt != nil {
		event.StartsAt = *req.StartsAt
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.Capacity != nil {
		event.Capacity = *req.Capacity
	}
	if req.EventType != nil {
		event.EventType = *req.EventType
	}

	if err := s.repo.UpdateEvent(ctx.Request.Context(), event); err != nil {
		s.log.Error().Err(err).Msg("failed to update event")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, s.eventResponse(row))
}

func (s *service) DeleteEvent(ctx *ginext.Context) {
	eventID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	row, err := s.repo.GetEventByID(ctx.Request.Context(), eventID)
	if err != nil {
		dto.EventNotFoundError(ctx)
		return
	}
	if _, ok := s.requireClubAdmin(ctx, row.ClubID); !ok {
		return
	}

	if err := s.repo.DeleteEvent(ctx.Request.Context(), eventID); err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to delete event")
		dto.InternalServerError(ctx)
		return
	}
	dto.NoContentResponse(ctx)
}

func (s *service) UploadEventCover(ctx *ginext.Context) {
	eventID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	row, err := s.repo.GetEventByID(ctx.Request.Context(), eventID)
	if err != nil {
		dto.EventNotFoundError(ctx)
		return
	}
	if _, ok := s.requireClubAdmin(ctx, row.ClubID); !ok {
		return
	}

	fh, err := ctx.FormFile("event_cover")
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Missing event_cover file")
		return
	}

	rel, err := s.media.SaveUpload("events", fh)
	if err != nil {
		s.uploadError(ctx, err)
		return
	}
	s.media.Remove(derefString(row.Cover))

	if err := s.repo.SetEventCover(ctx.Request.Context(), eventID, rel); err != nil {
		s.log.Error().Err(err).Msg("failed to save event cover")
		dto.InternalServerError(ctx)
		return
	}
	row.Cover = &rel
	dto.SuccessResponse(ctx, s.eventResponse(row))
}

func (s *service) ListEvents(ctx *ginext.Context) {
	page := queryPage(ctx)
	rows, total, err := s.repo.ListEventsPage(ctx.Request.Context(), s.opts.PageSize, (page-1)*s.opts.PageSize)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list events")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, dto.PaginatedEventsResponse{
		Count:    total,
		Page:     page,
		PageSize: s.opts.PageSize,
		Results:  s.eventResponses(rows),
	})
}

func (s *service) ListClubEvents(ctx *ginext.Context) {
	clubID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	rows, err := s.repo.ListClubEvents(ctx.Request.Context(), clubID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list club events")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, s.eventResponses(rows))
}

func (s *service) ListFollowedEvents(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}
	page := queryPage(ctx)

	rows, total, err := s.repo.ListFollowedEvents(ctx.Request.Context(), userID, s.opts.PageSize, (page-1)*s.opts.PageSize)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list followed events")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, dto.PaginatedEventsResponse{
		Count:    total,
		Page:     page,
		PageSize: s.opts.PageSize,
		Results:  s.eventResponses(rows),
	})
}

// ListUserEvents returns the events the caller holds tickets for, split
// into upcoming (active ticket) and attended (used ticket).
func (s *service) ListUserEvents(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}

	active, err := s.repo.ListUserEventsByTicketStatus(ctx.Request.Context(), userID, model.TicketActive)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list active user events")
		dto.InternalServerError(ctx)
		return
	}
	used, err := s.repo.ListUserEventsByTicketStatus(ctx.Request.Context(), userID, model.TicketUsed)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list used user events")
		dto.InternalServerError(ctx)
		return
	}

	dto.SuccessResponse(ctx, dto.UserEventsResponse{
		Active: s.eventResponses(active),
		Used:   s.eventResponses(used),
	})
}

func (s *service) EventSoldOut(ctx *ginext.Context) {
	eventID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	row, err := s.repo.GetEventByID(ctx.Request.Context(), eventID)
	if err != nil {
		dto.EventNotFoundError(ctx)
		return
	}

	soldOut := row.SoldOut
	if !soldOut {
		count, err := s.repo.CountEventTickets(ctx.Request.Context(), eventID)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to count event tickets")
			dto.InternalServerError(ctx)
			return
		}
		soldOut = count >= row.Capacity
	}
	dto.SuccessResponse(ctx, dto.SoldOutResponse{SoldOut: soldOut})
}

func queryPage(ctx *ginext.Context) int {
	page, err := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
