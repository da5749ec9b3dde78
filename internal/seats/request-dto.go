package seats

// HoldRequest asks for an all-or-nothing hold on seats of one event.
// TTLSeconds falls back to the configured default and is capped at the
// configured maximum.
type HoldRequest struct {
	EventID    string   `json:"eventId" binding:"required,max=128" validate:"required,max=128"`
	SessionID  string   `json:"sessionId" binding:"required,max=128" validate:"required,max=128"`
	SeatIDs    []string `json:"seatIds" binding:"required,min=1,dive,required,max=128" validate:"required,min=1,dive,required,max=128"`
	TTLSeconds int      `json:"ttlSeconds" binding:"omitempty,min=1" validate:"omitempty,min=1"`
}

type SeatListRequest struct {
	SeatIDs []string `json:"seatIds" binding:"required,min=1,dive,required,max=128"`
}

type AvailabilityRequest struct {
	SessionID string   `json:"sessionId" binding:"omitempty,max=128"`
	SeatIDs   []string `json:"seatIds" binding:"required,min=1,dive,required,max=128"`
}
