package database

import (
	"gorm.io/gorm"

	"seatmap/internal/bookings"
	"seatmap/internal/events"
	"seatmap/internal/tickets"
	"seatmap/internal/venues"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&venues.Venue{},
		&venues.VenueNode{},
		&tickets.TicketAssignment{},
		&events.Event{},
		&bookings.Booking{},
		&bookings.SeatBooking{},
	); err != nil {
		return err
	}
	return MigrateConstraints(db)
}
