package tickets

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"seatmap/internal/layout"
	"seatmap/internal/shared/utils/response"
)

type Controller interface {
	AssignTicket(c *gin.Context)
	UnassignTicket(c *gin.Context)
	ListAssignments(c *gin.Context)
	GetEffectiveTicket(c *gin.Context)
	GetEffectiveTickets(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, layout.ErrVenueNotFound),
		errors.Is(err, layout.ErrNodeNotFound),
		errors.Is(err, ErrAssignmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidPrice), errors.Is(err, ErrInvalidAssignment):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (ctrl *controller) AssignTicket(c *gin.Context) {
	var req AssignTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	resp, err := ctrl.service.Assign(c.Request.Context(), c.Param("venueId"), c.Param("nodeId"), req)
	if err != nil {
		response.RespondJSON(c, "error", statusFor(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Ticket assigned successfully", resp, nil)
}

func (ctrl *controller) UnassignTicket(c *gin.Context) {
	if err := ctrl.service.Unassign(c.Request.Context(), c.Param("venueId"), c.Param("nodeId")); err != nil {
		response.RespondJSON(c, "error", statusFor(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Ticket assignment removed", nil, nil)
}

func (ctrl *controller) ListAssignments(c *gin.Context) {
	list, err := ctrl.service.ListAssignments(c.Request.Context(), c.Param("venueId"))
	if err != nil {
		response.RespondJSON(c, "error", statusFor(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Ticket assignments retrieved successfully", list, nil)
}

func (ctrl *controller) GetEffectiveTicket(c *gin.Context) {
	e, err := ctrl.service.Effective(c.Request.Context(), c.Param("venueId"), c.Param("seatId"))
	if err != nil {
		response.RespondJSON(c, "error", statusFor(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Effective ticket resolved", e, nil)
}

func (ctrl *controller) GetEffectiveTickets(c *gin.Context) {
	m, err := ctrl.service.EffectiveAll(c.Request.Context(), c.Param("venueId"))
	if err != nil {
		response.RespondJSON(c, "error", statusFor(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Effective tickets resolved", m, nil)
}
