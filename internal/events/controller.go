package events

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"seatmap/internal/layout"
	"seatmap/internal/seats"
	"seatmap/internal/shared/utils/response"
)

type Controller interface {
	CreateEvent(c *gin.Context)
	GetEvent(c *gin.Context)
	GetAllEvents(c *gin.Context)
	UpdateStatus(c *gin.Context)
	GetSeatMap(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrEventNotFound), errors.Is(err, layout.ErrVenueNotFound):
		return http.StatusNotFound
	case errors.Is(err, seats.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (ctrl *controller) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	event, err := ctrl.service.CreateEvent(c.Request.Context(), req)
	if err != nil {
		response.RespondJSON(c, "error", statusFor(err), "Failed to create event", nil, err.Error())
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Event created successfully", event, nil)
}

func (ctrl *controller) GetEvent(c *gin.Context) {
	event, err := ctrl.service.GetEvent(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		response.RespondJSON(c, "error", statusFor(err), "Failed to get event", nil, err.Error())
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Event retrieved successfully", event, nil)
}

func (ctrl *controller) GetAllEvents(c *gin.Context) {
	var query EventListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	events, err := ctrl.service.GetAllEvents(c.Request.Context(), query)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to get events", nil, err.Error())
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Events retrieved successfully", events, nil)
}

func (ctrl *controller) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	event, err := ctrl.service.UpdateStatus(c.Request.Context(), c.Param("eventId"), req.Status)
	if err != nil {
		response.RespondJSON(c, "error", statusFor(err), "Failed to update event status", nil, err.Error())
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Event status updated successfully", event, nil)
}

func (ctrl *controller) GetSeatMap(c *gin.Context) {
	var query SeatMapQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	seatMap, err := ctrl.service.GetSeatMap(c.Request.Context(), c.Param("eventId"), query.SessionID)
	if err != nil {
		response.RespondJSON(c, "error", statusFor(err), "Failed to build seat map", nil, err.Error())
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Seat map retrieved successfully", seatMap, nil)
}
