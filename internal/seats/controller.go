package seats

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"seatmap/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// respondError maps hold errors to HTTP codes. Unavailable seats answer 409
// with the conflicting seat ids as data.
func respondError(ctx *gin.Context, message string, err error) {
	var unavailable *SeatUnavailableError
	switch {
	case errors.As(err, &unavailable):
		response.RespondJSON(ctx, "error", http.StatusConflict, "Seats are not available", UnavailableResponse{SeatIDs: unavailable.SeatIDs}, err.Error())
	case errors.Is(err, ErrHoldExpired):
		response.RespondJSON(ctx, "error", http.StatusGone, message, nil, err.Error())
	case errors.Is(err, ErrHoldNotFound), errors.Is(err, ErrEventNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, message, nil, err.Error())
	case errors.Is(err, ErrInvalidRequest):
		response.RespondJSON(ctx, "error", http.StatusBadRequest, message, nil, err.Error())
	default:
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, message, nil, err.Error())
	}
}

// HOLDS

func (c *Controller) HoldSeats(ctx *gin.Context) {
	var req HoldRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	hold, err := c.service.RequestHold(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, "Failed to hold seats", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Seats held successfully", hold, nil)
}

func (c *Controller) GetHold(ctx *gin.Context) {
	hold, err := c.service.GetHold(ctx.Request.Context(), ctx.Param("holdId"))
	if err != nil {
		respondError(ctx, "Failed to get hold", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Hold retrieved successfully", hold, nil)
}

func (c *Controller) ReleaseHold(ctx *gin.Context) {
	if err := c.service.ReleaseHold(ctx.Request.Context(), ctx.Param("holdId")); err != nil {
		respondError(ctx, "Failed to release hold", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Hold released successfully", nil, nil)
}

func (c *Controller) ConfirmHold(ctx *gin.Context) {
	booking, err := c.service.ConfirmBooking(ctx.Request.Context(), ctx.Param("holdId"))
	if err != nil {
		respondError(ctx, "Failed to confirm booking", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Booking confirmed successfully", booking, nil)
}

func (c *Controller) GetSessionHolds(ctx *gin.Context) {
	sessionID := ctx.Param("sessionId")
	holds, err := c.service.SessionHolds(ctx.Request.Context(), sessionID)
	if err != nil {
		respondError(ctx, "Failed to get session holds", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Holds retrieved successfully", SessionHoldsResponse{SessionID: sessionID, Holds: holds}, nil)
}

// AVAILABILITY

func (c *Controller) CheckAvailability(ctx *gin.Context) {
	var req AvailabilityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	eventID := ctx.Param("eventId")
	seats, err := c.service.Availability(ctx.Request.Context(), eventID, req.SessionID, req.SeatIDs)
	if err != nil {
		respondError(ctx, "Failed to check availability", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Availability retrieved successfully", AvailabilityResponse{EventID: eventID, Seats: seats}, nil)
}

// ADMIN

func (c *Controller) DisableSeats(ctx *gin.Context) {
	var req SeatListRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	if err := c.service.DisableSeats(ctx.Request.Context(), ctx.Param("eventId"), req.SeatIDs); err != nil {
		respondError(ctx, "Failed to disable seats", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seats disabled successfully", nil, nil)
}

func (c *Controller) EnableSeats(ctx *gin.Context) {
	var req SeatListRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	if err := c.service.EnableSeats(ctx.Request.Context(), ctx.Param("eventId"), req.SeatIDs); err != nil {
		respondError(ctx, "Failed to enable seats", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seats enabled successfully", nil, nil)
}
