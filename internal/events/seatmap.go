package events

import (
	"context"
	"fmt"

	"seatmap/internal/layout"
	"seatmap/internal/seats"
	"seatmap/internal/tickets"
)

func (s *service) GetSeatMap(ctx context.Context, eventID, sessionID string) (*SeatMapResponse, error) {
	event, err := s.event(ctx, eventID)
	if err != nil {
		return nil, err
	}
	snap, err := s.layouts.Snapshot(ctx, event.VenueID)
	if err != nil {
		return nil, err
	}

	nodes := snap.Seats()
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	effective, err := s.tickets.Resolve(ctx, snap, ids)
	if err != nil {
		return nil, err
	}
	statuses, err := s.seats.Availability(ctx, eventID, sessionID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to read seat availability: %w", err)
	}

	resp := &SeatMapResponse{
		EventID:    eventID,
		VenueID:    event.VenueID,
		LayoutType: snap.LayoutType(),
		Version:    snap.Version(),
		Seats:      make([]SeatMapSeat, 0, len(nodes)),
		Summary:    make(map[seats.SeatStatus]int),
	}
	for _, n := range nodes {
		seat := mapSeat(snap, event, n, effective, statuses)
		resp.Seats = append(resp.Seats, seat)
		resp.Summary[seat.Status]++
	}
	return resp, nil
}

// mapSeat folds a blocked layout node into DISABLED; a seat that is free in
// the store but cannot be sold is still drawn as not bookable.
func mapSeat(snap *layout.Snapshot, event *Event, n layout.Node, effective map[string]tickets.Effective, statuses map[string]seats.SeatStatus) SeatMapSeat {
	o := offer(snap, event, n.ID, effective)
	status, ok := statuses[n.ID]
	if !ok {
		status = seats.StatusAvailable
	}
	if o.Reason == seats.ReasonBlocked && status == seats.StatusAvailable {
		status = seats.StatusDisabled
	}

	seat := SeatMapSeat{
		SeatID:       n.ID,
		RowID:        n.ParentID,
		Name:         n.Name,
		SeatNumber:   n.SeatNumber,
		Status:       status,
		TicketTypeID: o.TicketTypeID,
		Bookable:     o.Bookable && (status == seats.StatusAvailable || status == seats.StatusSelected),
	}
	if o.TicketTypeID != "" {
		price := o.Price
		seat.Price = &price
	}
	return seat
}
