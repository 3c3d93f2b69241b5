package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sreeharimv/auction-platform/internal/clock"
	"github.com/sreeharimv/auction-platform/internal/event"
)

// EventRepo implements event.Store with sqlx.
type EventRepo struct {
	db    *sqlx.DB
	clock clock.Clock
}

// NewEventRepo returns a new EventRepo.
func NewEventRepo(db *sqlx.DB, clk clock.Clock) *EventRepo {
	return &EventRepo{db: db, clock: clk}
}

func (r *EventRepo) Append(ctx context.Context, events ...event.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning event tx: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO events (aggregate_id, type, data, version, created_at)
	           VALUES ($1, $2, $3, $4, $5)`
	now := r.clock.Now().UTC()
	for _, e := range events {
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		if _, err := tx.ExecContext(ctx, query, e.AggregateID, e.Type, []byte(e.Data), e.Version, e.CreatedAt); err != nil {
			return fmt.Errorf("inserting event %s: %w", e.Type, err)
		}
	}
	return tx.Commit()
}

func (r *EventRepo) Load(ctx context.Context, aggregateID string) ([]event.Event, error) {
	var events []event.Event
	err := r.db.SelectContext(ctx, &events,
		`SELECT * FROM events WHERE aggregate_id = $1 ORDER BY version ASC`, aggregateID)
	if err != nil {
		return nil, fmt.Errorf("loading events: %w", err)
	}
	return events, nil
}

func (r *EventRepo) LoadByType(ctx context.Context, eventType event.Type) ([]event.Event, error) {
	var events []event.Event
	err := r.db.SelectContext(ctx, &events,
		`SELECT * FROM events WHERE type = $1 ORDER BY created_at ASC`, eventType)
	if err != nil {
		return nil, fmt.Errorf("loading events by type: %w", err)
	}
	return events, nil
}
