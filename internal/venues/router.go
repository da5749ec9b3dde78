package venues

import (
	"github.com/gin-gonic/gin"

	"seatmap/internal/shared/middleware"
)

func SetupVenueRoutes(rg *gin.RouterGroup, controller *Controller) {
	venues := rg.Group("/venues")
	{
		venues.GET("/:venueId", controller.GetVenue)                           // GET /api/v1/venues/:venueId
		venues.GET("/:venueId/nodes/:nodeId/children", controller.GetChildren) // GET /api/v1/venues/:venueId/nodes/:nodeId/children
		venues.GET("/:venueId/geometry", controller.GetGeometry)               // GET /api/v1/venues/:venueId/geometry?width=800&height=600&padding=16
		venues.POST("/:venueId/hit-test", controller.HitTest)                  // POST /api/v1/venues/:venueId/hit-test
	}

	// Layout editing
	editor := rg.Group("/venues")
	editor.Use(middleware.RequireAdmin())
	{
		editor.POST("/import", controller.ImportVenue)                       // POST /api/v1/venues/import
		editor.POST("/:venueId/nodes", controller.AddNode)                   // POST /api/v1/venues/:venueId/nodes
		editor.DELETE("/:venueId/nodes/:nodeId", controller.RemoveNode)      // DELETE /api/v1/venues/:venueId/nodes/:nodeId
		editor.PATCH("/:venueId/nodes/:nodeId/weight", controller.SetWeight) // PATCH /api/v1/venues/:venueId/nodes/:nodeId/weight
		editor.PATCH("/:venueId/nodes/:nodeId/status", controller.SetStatus) // PATCH /api/v1/venues/:venueId/nodes/:nodeId/status
		editor.PATCH("/:venueId/nodes/:nodeId/parent", controller.MoveNode)  // PATCH /api/v1/venues/:venueId/nodes/:nodeId/parent
	}
}
