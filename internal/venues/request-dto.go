package venues

import (
	"seatmap/internal/layout"
	"seatmap/internal/tickets"
)

// ImportVenueRequest is the full layout payload: the nested node tree plus
// flat ticket assignments and per-seat statuses.
type ImportVenueRequest struct {
	LayoutType        layout.LayoutType        `json:"layoutType" binding:"omitempty,oneof=STADIUM THEATRE"`
	Root              layout.TreeNode          `json:"root"`
	TicketAssignments []tickets.Assignment     `json:"ticketAssignments"`
	SeatStatuses      map[string]layout.Status `json:"seatStatuses"`
}

type AddNodeRequest struct {
	ID           string            `json:"id" binding:"omitempty,max=128"`
	ParentID     string            `json:"parentId" binding:"required,max=128"`
	Kind         layout.Kind       `json:"kind" binding:"required,oneof=STAND TIER SECTION ROW SEAT"`
	Name         string            `json:"name" binding:"max=255"`
	VisualWeight float64           `json:"visualWeight"`
	Status       layout.Status     `json:"status" binding:"omitempty,oneof=ACTIVE BLOCKED"`
	Style        layout.Style      `json:"style"`
	SeatNumber   int               `json:"seatNumber" binding:"gte=0"`
	Placement    *layout.Placement `json:"placement"`
	Curve        float64           `json:"curve"`
}

type SetWeightRequest struct {
	VisualWeight *float64 `json:"visualWeight" binding:"required"`
}

type MoveNodeRequest struct {
	ParentID string `json:"parentId" binding:"required,max=128"`
}

type SetStatusRequest struct {
	Status layout.Status `json:"status" binding:"required,oneof=ACTIVE BLOCKED"`
}

// HitTestRequest locates the node drawn under (X, Y) in the given viewport.
// Depth 0 means the deepest node.
type HitTestRequest struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width" binding:"required,gt=0"`
	Height  float64 `json:"height" binding:"required,gt=0"`
	Padding float64 `json:"padding" binding:"gte=0"`
	Depth   int     `json:"depth" binding:"gte=0"`
}
