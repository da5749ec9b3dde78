package tickets

type AssignmentResponse struct {
	Assignment
	// ShadowedBy names the ancestor override hiding this assignment, if any
	ShadowedBy string `json:"shadowedBy,omitempty"`
}

type EffectiveMapResponse struct {
	VenueID string               `json:"venueId"`
	Version uint64               `json:"version"`
	Seats   map[string]Effective `json:"seats"`
}
