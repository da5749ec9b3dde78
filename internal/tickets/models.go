package tickets

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPrice       = errors.New("price must not be negative")
	ErrInvalidAssignment  = errors.New("ticket type id is required")
	ErrAssignmentNotFound = errors.New("ticket assignment not found")
)

// Assignment binds a ticket type and price to a layout node. At most one
// assignment exists per node.
type Assignment struct {
	NodeID            string          `json:"nodeId"`
	TicketTypeID      string          `json:"ticketTypeId"`
	Price             decimal.Decimal `json:"price"`
	OverridesChildren bool            `json:"overridesChildren"`
}

func (a Assignment) validate() error {
	if a.NodeID == "" || a.TicketTypeID == "" {
		return ErrInvalidAssignment
	}
	if a.Price.IsNegative() {
		return ErrInvalidPrice
	}
	return nil
}

// Effective is the ticket a seat actually sells under. A seat with no
// assignment anywhere on its path resolves to NoTicket: a valid answer,
// but the seat cannot be booked.
type Effective struct {
	SeatID       string          `json:"seatId"`
	TicketTypeID string          `json:"ticketTypeId,omitempty"`
	Price        decimal.Decimal `json:"price"`
	SourceNodeID string          `json:"sourceNodeId,omitempty"`
	NoTicket     bool            `json:"noTicket"`
}

// TicketAssignment is the persisted form of an Assignment.
type TicketAssignment struct {
	VenueID           string          `gorm:"primaryKey;size:128"`
	NodeID            string          `gorm:"primaryKey;size:128"`
	TicketTypeID      string          `gorm:"not null;size:128"`
	Price             decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	OverridesChildren bool            `gorm:"not null;default:false"`
	CreatedAt         time.Time       `gorm:"autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime"`
}

func (TicketAssignment) TableName() string {
	return "ticket_assignments"
}

func (t TicketAssignment) toAssignment() Assignment {
	return Assignment{
		NodeID:            t.NodeID,
		TicketTypeID:      t.TicketTypeID,
		Price:             t.Price,
		OverridesChildren: t.OverridesChildren,
	}
}

func fromAssignment(venueID string, a Assignment) TicketAssignment {
	return TicketAssignment{
		VenueID:           venueID,
		NodeID:            a.NodeID,
		TicketTypeID:      a.TicketTypeID,
		Price:             a.Price,
		OverridesChildren: a.OverridesChildren,
	}
}
