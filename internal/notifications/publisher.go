package notifications

import (
	"context"
)

// Publisher delivers seat events to a broker. Publishing is best effort:
// callers log failures and carry on, the seat state is already committed.
type Publisher interface {
	Publish(ctx context.Context, event *SeatEvent) error
	Close() error
}

type noopPublisher struct{}

// NewNoopPublisher returns a Publisher that drops every event
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, *SeatEvent) error {
	return nil
}

func (noopPublisher) Close() error {
	return nil
}
