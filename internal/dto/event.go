package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateEventRequest struct {
	ClubID      int64           `json:"club_id" validate:"required,gt=0"`
	Title       string          `json:"title" validate:"required,max=50"`
	Description string          `json:"description" validate:"max=1000"`
	Price       decimal.Decimal `json:"price"`
	StartsAt    time.Time       `json:"starts_at" validate:"required"`
	Location    string          `json:"location" validate:"required,max=50"`
	Capacity    int             `json:"capacity" validate:"required,gt=0"`
	EventType   string          `json:"event_type" validate:"required,eventtype"`
}

type UpdateEventRequest struct {
	Title       *string          `json:"title" validate:"omitempty,max=50"`
	Description *string          `json:"description" validate:"omitempty,max=1000"`
	Price       *decimal.Decimal `json:"price"`
	StartsAt    *time.Time       `json:"starts_at"`
	Location    *string          `json:"location" validate:"omitempty,max=50"`
	Capacity    *int             `json:"capacity" validate:"omitempty,gt=0"`
	EventType   *string          `json:"event_type" validate:"omitempty,eventtype"`
}

type EventResponse struct {
	ID          int64           `json:"id"`
	ClubID      int64           `json:"club_id"`
	ClubName    string          `json:"club_name"`
	ClubLogo    string          `json:"club_logo"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	StartsAt    time.Time       `json:"starts_at"`
	Location    string          `json:"location"`
	Capacity    int             `json:"capacity"`
	SoldOut     bool            `json:"sold_out"`
	EventType   string          `json:"event_type"`
	EventCover  string          `json:"event_cover"`
}

type PaginatedEventsResponse struct {
	Count    int             `json:"count"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	Results  []EventResponse `json:"results"`
}

type UserEventsResponse struct {
	Active []EventResponse `json:"active"`
	Used   []EventResponse `json:"used"`
}

type SoldOutResponse struct {
	SoldOut bool `json:"sold_out"`
}
