package seats

import (
	"seatmap/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupSeatRoutes(rg *gin.RouterGroup, controller *Controller) {

	// HOLD FLOW

	holds := rg.Group("/seats/holds")
	{
		holds.POST("", controller.HoldSeats)                   // POST /api/v1/seats/holds
		holds.GET("/:holdId", controller.GetHold)              // GET /api/v1/seats/holds/:holdId
		holds.DELETE("/:holdId", controller.ReleaseHold)       // DELETE /api/v1/seats/holds/:holdId
		holds.POST("/:holdId/confirm", controller.ConfirmHold) // POST /api/v1/seats/holds/:holdId/confirm
	}

	rg.GET("/sessions/:sessionId/holds", controller.GetSessionHolds)       // GET /api/v1/sessions/:sessionId/holds
	rg.POST("/events/:eventId/availability", controller.CheckAvailability) // POST /api/v1/events/:eventId/availability

	// ADMIN SEAT OPERATIONS

	admin := rg.Group("/admin/events/:eventId/seats")
	admin.Use(middleware.RequireAdmin())
	{
		admin.POST("/disable", controller.DisableSeats) // POST /api/v1/admin/events/:eventId/seats/disable
		admin.POST("/enable", controller.EnableSeats)   // POST /api/v1/admin/events/:eventId/seats/enable
	}
}
