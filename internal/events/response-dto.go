package events

import (
	"time"

	"github.com/shopspring/decimal"

	"seatmap/internal/layout"
	"seatmap/internal/seats"
)

type EventResponse struct {
	ID        string    `json:"id"`
	VenueID   string    `json:"venue_id"`
	Name      string    `json:"name"`
	StartsAt  time.Time `json:"starts_at"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PaginatedEvents struct {
	Events     []EventResponse `json:"events"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// SeatMapSeat is everything a renderer needs to redraw one seat.
type SeatMapSeat struct {
	SeatID       string           `json:"seatId"`
	RowID        string           `json:"rowId"`
	Name         string           `json:"name,omitempty"`
	SeatNumber   int              `json:"seatNumber,omitempty"`
	Status       seats.SeatStatus `json:"status"`
	TicketTypeID string           `json:"ticketTypeId,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	Bookable     bool             `json:"bookable"`
}

type SeatMapResponse struct {
	EventID    string                   `json:"eventId"`
	VenueID    string                   `json:"venueId"`
	LayoutType layout.LayoutType        `json:"layoutType"`
	Version    uint64                   `json:"version"`
	Seats      []SeatMapSeat            `json:"seats"`
	Summary    map[seats.SeatStatus]int `json:"summary"`
}

func (e *Event) ToResponse() EventResponse {
	return EventResponse{
		ID:        e.ID,
		VenueID:   e.VenueID,
		Name:      e.Name,
		StartsAt:  e.StartsAt,
		Status:    e.Status,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
