package events

import (
	"context"

	"seatmap/internal/layout"
	"seatmap/internal/seats"
	"seatmap/internal/tickets"
)

// Offers prices the requested seats from the event's venue layout. A seat is
// bookable only if it exists, nothing on its path is blocked, it resolves to
// a ticket and the event is still on sale.
func (s *service) Offers(ctx context.Context, eventID string, seatIDs []string) (map[string]seats.Offer, error) {
	event, err := s.event(ctx, eventID)
	if err != nil {
		return nil, err
	}
	snap, err := s.layouts.Snapshot(ctx, event.VenueID)
	if err != nil {
		return nil, err
	}
	effective, err := s.tickets.Resolve(ctx, snap, seatIDs)
	if err != nil {
		return nil, err
	}

	out := make(map[string]seats.Offer, len(seatIDs))
	for _, id := range seatIDs {
		out[id] = offer(snap, event, id, effective)
	}
	return out, nil
}

func offer(snap *layout.Snapshot, event *Event, seatID string, effective map[string]tickets.Effective) seats.Offer {
	o := seats.Offer{SeatID: seatID}
	n, ok := snap.Node(seatID)
	switch {
	case !ok || n.Kind != layout.KindSeat:
		o.Reason = seats.ReasonUnknownSeat
		return o
	case snap.Blocked(seatID):
		o.Reason = seats.ReasonBlocked
		return o
	}

	e, ok := effective[seatID]
	if !ok || e.NoTicket {
		o.Reason = seats.ReasonNoTicket
		return o
	}
	o.TicketTypeID = e.TicketTypeID
	o.Price = e.Price

	if !event.Status.OnSale() {
		o.Reason = seats.ReasonEventEnded
		return o
	}
	o.Bookable = true
	return o
}
