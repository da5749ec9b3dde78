package venues

import (
	"seatmap/internal/layout"
)

type ImportVenueResponse struct {
	VenueID     string         `json:"venueId"`
	Version     uint64         `json:"version"`
	Nodes       int            `json:"nodes"`
	Seats       int            `json:"seats"`
	Assignments int            `json:"assignments"`
	Issues      []layout.Issue `json:"issues"`
}

type VenueResponse struct {
	VenueID    string            `json:"venueId"`
	Name       string            `json:"name"`
	LayoutType layout.LayoutType `json:"layoutType"`
	Version    uint64            `json:"version"`
	Seats      int               `json:"seats"`
	Root       layout.TreeNode   `json:"root"`
}

type NodeResponse struct {
	Node    layout.Node `json:"node"`
	Version uint64      `json:"version"`
}

type RemoveNodeResponse struct {
	Removed []string `json:"removed"`
	Version uint64   `json:"version"`
}

type ChildrenResponse struct {
	ParentID string        `json:"parentId"`
	Children []layout.Node `json:"children"`
}

type HitTestResponse struct {
	Hit    bool        `json:"hit"`
	NodeID string      `json:"nodeId,omitempty"`
	Kind   layout.Kind `json:"kind,omitempty"`
	Name   string      `json:"name,omitempty"`
	Depth  int         `json:"depth,omitempty"`
	Path   []string    `json:"path,omitempty"`
}
