package tickets

import "github.com/gin-gonic/gin"

func SetupTicketRoutes(router *gin.RouterGroup, controller Controller) {
	venueTickets := router.Group("/venues/:venueId/tickets")
	{
		venueTickets.GET("", controller.ListAssignments)                      // GET /api/v1/venues/:venueId/tickets - Stored assignments
		venueTickets.GET("/effective", controller.GetEffectiveTickets)        // GET /api/v1/venues/:venueId/tickets/effective - Every seat
		venueTickets.GET("/effective/:seatId", controller.GetEffectiveTicket) // GET /api/v1/venues/:venueId/tickets/effective/:seatId - One seat
		venueTickets.PUT("/:nodeId", controller.AssignTicket)                 // PUT /api/v1/venues/:venueId/tickets/:nodeId - Assign or replace
		venueTickets.DELETE("/:nodeId", controller.UnassignTicket)            // DELETE /api/v1/venues/:venueId/tickets/:nodeId - Remove
	}
}
