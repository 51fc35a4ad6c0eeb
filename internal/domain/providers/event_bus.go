package providers

import (
	"context"

	"github.com/velora/vehicle-discovery/internal/domain/entities"
)

// SearchEventsChannel is the pub/sub channel carrying search analytics.
const SearchEventsChannel = "search.events"

// EventBus publishes search analytics events to interested consumers.
type EventBus interface {
	// Publish publishes an event to all subscribers of the channel
	Publish(ctx context.Context, channel string, event *entities.SearchEvent) error

	// Subscribe returns a channel receiving events published on the channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.SearchEvent, error)

	// Close shuts down the bus and all subscriptions
	Close() error
}
