package venues

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"seatmap/internal/geometry"
	"seatmap/internal/layout"
	"seatmap/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, layout.ErrVenueNotFound), errors.Is(err, layout.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, layout.ErrDuplicateNode):
		return http.StatusConflict
	case errors.Is(err, layout.ErrInvalidParent),
		errors.Is(err, layout.ErrCycleDetected),
		errors.Is(err, layout.ErrInvalidWeight),
		errors.Is(err, layout.ErrInvalidNode),
		errors.Is(err, layout.ErrRootImmutable),
		errors.Is(err, geometry.ErrInvalidViewport):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func fail(ctx *gin.Context, message string, err error) {
	response.RespondJSON(ctx, "error", statusFor(err), message, nil, err.Error())
}

//  LAYOUT

func (c *Controller) ImportVenue(ctx *gin.Context) {
	var req ImportVenueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	result, err := c.service.ImportVenue(ctx.Request.Context(), req)
	if err != nil {
		fail(ctx, "Failed to import venue", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Venue imported successfully", result, nil)
}

func (c *Controller) GetVenue(ctx *gin.Context) {
	venue, err := c.service.GetVenue(ctx.Request.Context(), ctx.Param("venueId"))
	if err != nil {
		fail(ctx, "Failed to get venue", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Venue retrieved successfully", venue, nil)
}

//  NODES

func (c *Controller) AddNode(ctx *gin.Context) {
	var req AddNodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	node, err := c.service.AddNode(ctx.Request.Context(), ctx.Param("venueId"), req)
	if err != nil {
		fail(ctx, "Failed to add node", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Node added successfully", node, nil)
}

func (c *Controller) RemoveNode(ctx *gin.Context) {
	result, err := c.service.RemoveNode(ctx.Request.Context(), ctx.Param("venueId"), ctx.Param("nodeId"))
	if err != nil {
		fail(ctx, "Failed to remove node", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Node removed successfully", result, nil)
}

func (c *Controller) SetWeight(ctx *gin.Context) {
	var req SetWeightRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	node, err := c.service.SetWeight(ctx.Request.Context(), ctx.Param("venueId"), ctx.Param("nodeId"), *req.VisualWeight)
	if err != nil {
		fail(ctx, "Failed to update weight", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Weight updated successfully", node, nil)
}

func (c *Controller) SetStatus(ctx *gin.Context) {
	var req SetStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	node, err := c.service.SetStatus(ctx.Request.Context(), ctx.Param("venueId"), ctx.Param("nodeId"), req.Status)
	if err != nil {
		fail(ctx, "Failed to update status", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Status updated successfully", node, nil)
}

func (c *Controller) MoveNode(ctx *gin.Context) {
	var req MoveNodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	node, err := c.service.MoveNode(ctx.Request.Context(), ctx.Param("venueId"), ctx.Param("nodeId"), req.ParentID)
	if err != nil {
		fail(ctx, "Failed to move node", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Node moved successfully", node, nil)
}

func (c *Controller) GetChildren(ctx *gin.Context) {
	children, err := c.service.GetChildren(ctx.Request.Context(), ctx.Param("venueId"), ctx.Param("nodeId"))
	if err != nil {
		fail(ctx, "Failed to get children", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Children retrieved successfully", children, nil)
}

//  RENDERING

func (c *Controller) GetGeometry(ctx *gin.Context) {
	var vp geometry.Viewport
	if err := ctx.ShouldBindQuery(&vp); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	g, err := c.service.Geometry(ctx.Request.Context(), ctx.Param("venueId"), vp)
	if err != nil {
		fail(ctx, "Failed to compute geometry", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Geometry computed successfully", g, nil)
}

func (c *Controller) HitTest(ctx *gin.Context) {
	var req HitTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	hit, err := c.service.HitTest(ctx.Request.Context(), ctx.Param("venueId"), req)
	if err != nil {
		fail(ctx, "Failed to run hit test", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Hit test completed", hit, nil)
}
