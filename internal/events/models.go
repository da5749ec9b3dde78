package events

import (
	"time"

	"seatmap/internal/seats"
)

// ErrEventNotFound is shared with the hold manager so a missing event reads
// the same on every path.
var ErrEventNotFound = seats.ErrEventNotFound

// Event is one performance at a venue. Seat availability is kept per event,
// the layout and prices per venue.
type Event struct {
	ID        string    `json:"id" gorm:"primaryKey;size:128"`
	VenueID   string    `json:"venue_id" gorm:"not null;size:128;index"`
	Name      string    `json:"name" gorm:"not null;size:255"`
	StartsAt  time.Time `json:"starts_at" gorm:"not null"`
	Status    Status    `json:"status" gorm:"type:varchar(20);default:'UPCOMING'"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return "events"
}
