package event

import "context"

// Store persists and retrieves events.
type Store interface {
	// Append persists one or more events atomically.
	Append(ctx context.Context, events ...Event) error
	// Load returns all events for an aggregate, ordered by version.
	Load(ctx context.Context, aggregateID string) ([]Event, error)
	// LoadByType returns events filtered by type.
	LoadByType(ctx context.Context, eventType Type) ([]Event, error)
}

// NopStore discards everything. Used by store drivers without an event
// table (the CSV driver) and in tests.
type NopStore struct{}

func (NopStore) Append(context.Context, ...Event) error           { return nil }
func (NopStore) Load(context.Context, string) ([]Event, error)    { return nil, nil }
func (NopStore) LoadByType(context.Context, Type) ([]Event, error) { return nil, nil }
