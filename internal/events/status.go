package events

type Status string

const (
	StatusUpcoming Status = "UPCOMING"
	StatusActive   Status = "ACTIVE"
	StatusEnded    Status = "ENDED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusUpcoming, StatusActive, StatusEnded:
		return true
	}
	return false
}

// OnSale reports whether seats of the event can still be held.
func (s Status) OnSale() bool {
	return s != StatusEnded
}
