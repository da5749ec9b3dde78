package events

import "time"

type CreateEventRequest struct {
	ID       string    `json:"id" binding:"omitempty,max=128"`
	VenueID  string    `json:"venue_id" binding:"required,max=128"`
	Name     string    `json:"name" binding:"required,min=3,max=255"`
	StartsAt time.Time `json:"starts_at" binding:"required"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required,oneof=UPCOMING ACTIVE ENDED"`
}

type EventListQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search"`
	VenueID  string `form:"venue_id"`
	Status   string `form:"status" binding:"omitempty,oneof=UPCOMING ACTIVE ENDED"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
}

type SeatMapQuery struct {
	SessionID string `form:"session_id" binding:"omitempty,max=128"`
}
