package bookings

type Status string

const (
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

// IsValid checks if the booking status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// IsActive reports whether the booking still owns its seats
func (s Status) IsActive() bool {
	return s == StatusConfirmed
}
