package events

import (
	"github.com/gin-gonic/gin"

	"seatmap/internal/shared/middleware"
)

func SetupEventRoutes(router *gin.RouterGroup, controller Controller) {
	// Public routes - anyone can browse events and their seat maps
	publicEvents := router.Group("/events")
	{
		publicEvents.GET("", controller.GetAllEvents)                 // GET /api/v1/events - Browse events
		publicEvents.GET("/:eventId", controller.GetEvent)            // GET /api/v1/events/:eventId - Event details
		publicEvents.GET("/:eventId/seat-map", controller.GetSeatMap) // GET /api/v1/events/:eventId/seat-map?session_id= - Seats with live status
	}

	// Event management
	adminEvents := router.Group("/events")
	adminEvents.Use(middleware.RequireAdmin())
	{
		adminEvents.POST("", controller.CreateEvent)                   // POST /api/v1/events - Bind an event to a venue
		adminEvents.PATCH("/:eventId/status", controller.UpdateStatus) // PATCH /api/v1/events/:eventId/status
	}
}
