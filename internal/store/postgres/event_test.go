package postgres_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sreeharimv/auction-platform/internal/clock"
	"github.com/sreeharimv/auction-platform/internal/event"
	"github.com/sreeharimv/auction-platform/internal/store/postgres"
)

func TestEventRepo_AppendAndLoad(t *testing.T) {
	db := newTestDB(t)
	clk := &clock.Mock{T: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)}
	repo := postgres.NewEventRepo(db, clk)
	ctx := context.Background()

	events := []event.Event{
		{
			AggregateID: "lot-1",
			Type:        event.LotStarted,
			Data:        json.RawMessage(`{"player_id":1,"base_price":500000}`),
			Version:     1,
		},
		{
			AggregateID: "lot-1",
			Type:        event.BidPlaced,
			Data:        json.RawMessage(`{"team":"Palace Titans","amount":500000}`),
			Version:     2,
		},
		{
			AggregateID: "lot-2",
			Type:        event.LotStarted,
			Data:        json.RawMessage(`{"player_id":2,"base_price":500000}`),
			Version:     1,
		},
	}
	if err := repo.Append(ctx, events...); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := repo.Load(ctx, "lot-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Load returned %d events, want 2", len(got))
	}
	if got[0].Version != 1 || got[1].Version != 2 {
		t.Errorf("events out of version order: %d, %d", got[0].Version, got[1].Version)
	}
	if got[0].Type != event.LotStarted {
		t.Errorf("first event type = %q", got[0].Type)
	}
	// The append stamps missing timestamps from the clock.
	if !got[0].CreatedAt.UTC().Equal(clk.T) {
		t.Errorf("CreatedAt = %v, want %v", got[0].CreatedAt, clk.T)
	}

	byType, err := repo.LoadByType(ctx, event.LotStarted)
	if err != nil {
		t.Fatalf("LoadByType: %v", err)
	}
	if len(byType) != 2 {
		t.Errorf("LoadByType returned %d events, want 2", len(byType))
	}
}

func TestEventRepo_AppendNothing(t *testing.T) {
	db := newTestDB(t)
	repo := postgres.NewEventRepo(db, clock.Real{})

	if err := repo.Append(context.Background()); err != nil {
		t.Errorf("Append() with no events error = %v", err)
	}
}
