package bookings

import (
	"github.com/gin-gonic/gin"
)

func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.GET("/bookings/:bookingId", controller.GetBooking)                  // GET /api/v1/bookings/:bookingId
	rg.GET("/sessions/:sessionId/bookings", controller.GetSessionBookings) // GET /api/v1/sessions/:sessionId/bookings?page=1&limit=10
}
