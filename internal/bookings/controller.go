package bookings

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

func (c *Controller) GetBooking(ctx *gin.Context) {
	booking, err := c.service.GetBooking(ctx.Request.Context(), ctx.Param("bookingId"))
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrBookingNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(ctx, "error", statusCode, "Failed to get booking", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking retrieved successfully", booking, nil)
}

func (c *Controller) GetSessionBookings(ctx *gin.Context) {
	var query BookingListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	bookings, err := c.service.GetSessionBookings(ctx.Request.Context(), ctx.Param("sessionId"), query)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get bookings", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Bookings retrieved successfully", bookings, nil)
}
