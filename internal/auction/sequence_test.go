package auction_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sreeharimv/auction-platform/internal/auction"
	"github.com/sreeharimv/auction-platform/internal/event"
	"github.com/sreeharimv/auction-platform/internal/store"
)

func TestEngine_StartSequential(t *testing.T) {
	repo := newMockPlayerRepo(unsold(1, "Virat"), unsold(2, "Rohit"), unsold(3, "Jasprit"))
	eng, _, _ := newTestEngine(t, repo)
	ctx := context.Background()

	if err := eng.Advance(ctx); !errors.Is(err, auction.ErrInvalidState) {
		t.Errorf("Advance(no sequence) error = %v, want ErrInvalidState", err)
	}

	if err := eng.StartSequential(ctx, nil); err != nil {
		t.Fatalf("StartSequential() error = %v", err)
	}

	snap := eng.Snapshot(ctx)
	if snap.Status != auction.LotBidding {
		t.Fatalf("Status = %q, want bidding on the first queued player", snap.Status)
	}
	if snap.Player == nil || snap.Player.ID != 1 {
		t.Errorf("Player = %+v, want id 1 first", snap.Player)
	}
	if snap.RoundProgress == nil || snap.RoundProgress.Current != 1 || snap.RoundProgress.Total != 3 {
		t.Errorf("RoundProgress = %+v, want 1/3", snap.RoundProgress)
	}
	if snap.StartingTeam == "" {
		t.Error("expected a starting team during a sequential auction")
	}

	if err := eng.StartSequential(ctx, nil); !errors.Is(err, auction.ErrInvalidState) {
		t.Errorf("StartSequential(again) error = %v, want ErrInvalidState", err)
	}
}

func TestEngine_StartSequential_CustomOrder(t *testing.T) {
	repo := newMockPlayerRepo(
		unsold(1, "Virat"), unsold(2, "Rohit"), unsold(3, "Jasprit"),
		soldPlayer(4, "Palace Titans", 1_000_000),
	)
	eng, _, _ := newTestEngine(t, repo)
	ctx := context.Background()

	// Unknown and already-sold names are dropped, not fatal.
	err := eng.StartSequential(ctx, []string{"Rohit", "Nobody", "P", "Virat"})
	if err != nil {
		t.Fatalf("StartSequential() error = %v", err)
	}

	snap := eng.Snapshot(ctx)
	if snap.Player == nil || snap.Player.Name != "Rohit" {
		t.Errorf("first player = %+v, want Rohit", snap.Player)
	}
	if snap.RoundProgress == nil || snap.RoundProgress.Total != 2 {
		t.Errorf("RoundProgress = %+v, want total 2 after drops", snap.RoundProgress)
	}
}

func TestEngine_StartSequential_EmptyQueue(t *testing.T) {
	repo := newMockPlayerRepo(soldPlayer(1, "Palace Titans", 1_000_000))
	eng, _, _ := newTestEngine(t, repo)

	err := eng.StartSequential(context.Background(), nil)
	if !errors.Is(err, auction.ErrEmptyQueue) {
		t.Errorf("StartSequential() error = %v, want ErrEmptyQueue", err)
	}
}

func TestEngine_SequentialAutoAdvanceOnSale(t *testing.T) {
	repo := newMockPlayerRepo(unsold(1, "Virat"), unsold(2, "Rohit"))
	eng, _, _ := newTestEngine(t, repo)
	ctx := context.Background()

	if err := eng.StartSequential(ctx, nil); err != nil {
		t.Fatalf("StartSequential() error = %v", err)
	}
	mustBid(t, eng, "Palace Titans", 500_000)
	if err := eng.MarkSold(ctx); err != nil {
		t.Fatalf("MarkSold() error = %v", err)
	}

	// The sale pulls the next queued player onto the block.
	snap := eng.Snapshot(ctx)
	if snap.Status != auction.LotBidding {
		t.Fatalf("Status = %q, want bidding on the next player", snap.Status)
	}
	if snap.Player == nil || snap.Player.ID != 2 {
		t.Errorf("Player = %+v, want id 2 after the sale", snap.Player)
	}
	if snap.Announcement == "" {
		t.Error("the sold announcement should survive the auto-advance")
	}
}

func TestEngine_SequentialSkipsPlayersSoldOutOfBand(t *testing.T) {
	repo := newMockPlayerRepo(unsold(1, "Virat"), unsold(2, "Rohit"), unsold(3, "Jasprit"))
	eng, _, _ := newTestEngine(t, repo)
	ctx := context.Background()

	if err := eng.StartSequential(ctx, nil); err != nil {
		t.Fatalf("StartSequential() error = %v", err)
	}

	// Player 2 is sold outside the queue while player 1 is on the block.
	if err := repo.Update(ctx, 2, store.Changes{
		Team:      store.Str("Palace Tuskers"),
		Status:    store.Stat(store.StatusSold),
		SoldPrice: store.Int64(500_000),
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if err := eng.Advance(ctx); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	snap := eng.Snapshot(ctx)
	if snap.Player == nil || snap.Player.ID != 3 {
		t.Errorf("Player = %+v, want id 3 (id 2 skipped)", snap.Player)
	}
}

func TestEngine_SequentialRoundRollover(t *testing.T) {
	repo := newMockPlayerRepo(unsold(1, "Virat"), unsold(2, "Rohit"))
	eng, _, _ := newTestEngine(t, repo)
	ctx := context.Background()

	if err := eng.StartSequential(ctx, nil); err != nil {
		t.Fatalf("StartSequential() error = %v", err)
	}

	// Sell the first, pass on the second.
	mustBid(t, eng, "Palace Titans", 500_000)
	if err := eng.MarkSold(ctx); err != nil {
		t.Fatalf("MarkSold() error = %v", err)
	}
	if err := eng.Advance(ctx); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}

	// The queue is exhausted; the passed player seeds round two.
	snap := eng.Snapshot(ctx)
	if snap.Status != auction.LotBidding {
		t.Fatalf("Status = %q, want bidding in round two", snap.Status)
	}
	if snap.Player == nil || snap.Player.ID != 2 {
		t.Errorf("Player = %+v, want the unsold id 2 back on the block", snap.Player)
	}
	if snap.RoundProgress == nil || snap.RoundProgress.Total != 1 {
		t.Errorf("RoundProgress = %+v, want a one-player round", snap.RoundProgress)
	}
}

func TestEngine_SequentialEndsWhenPoolIsSold(t *testing.T) {
	repo := newMockPlayerRepo(unsold(1, "Virat"))
	eng, _, _ := newTestEngine(t, repo)
	ctx := context.Background()

	if err := eng.StartSequential(ctx, nil); err != nil {
		t.Fatalf("StartSequential() error = %v", err)
	}
	mustBid(t, eng, "Palace Titans", 500_000)
	if err := eng.MarkSold(ctx); err != nil {
		t.Fatalf("MarkSold() error = %v", err)
	}

	snap := eng.Snapshot(ctx)
	if snap.Status != auction.LotWaiting {
		t.Errorf("Status = %q, want waiting after the pool sells out", snap.Status)
	}
	if snap.RoundProgress != nil {
		t.Error("RoundProgress should be cleared once the sequence ends")
	}
}

func TestEngine_EndSequential(t *testing.T) {
	repo := newMockPlayerRepo(unsold(1, "Virat"), unsold(2, "Rohit"))
	eng, _, _ := newTestEngine(t, repo)
	ctx := context.Background()

	if err := eng.EndSequential(ctx); !errors.Is(err, auction.ErrInvalidState) {
		t.Errorf("EndSequential(no sequence) error = %v, want ErrInvalidState", err)
	}

	if err := eng.StartSequential(ctx, nil); err != nil {
		t.Fatalf("StartSequential() error = %v", err)
	}
	if err := eng.EndSequential(ctx); err != nil {
		t.Fatalf("EndSequential() error = %v", err)
	}

	// The open lot survives and can still be finished by hand.
	snap := eng.Snapshot(ctx)
	if snap.Status != auction.LotBidding {
		t.Errorf("Status = %q, want the open lot to survive", snap.Status)
	}
	if snap.RoundProgress != nil {
		t.Error("RoundProgress should be cleared after EndSequential")
	}
}

func TestSequence_RoundEventsUseOwnAggregate(t *testing.T) {
	repo := newMockPlayerRepo(unsold(1, "Virat"))
	eng, es, _ := newTestEngine(t, repo)
	ctx := context.Background()

	if err := eng.StartSequential(ctx, nil); err != nil {
		t.Fatalf("StartSequential() error = %v", err)
	}
	if err := eng.EndSequential(ctx); err != nil {
		t.Fatalf("EndSequential() error = %v", err)
	}

	rounds, err := es.Load(ctx, "sequence")
	if err != nil {
		t.Fatalf("Load(sequence) error = %v", err)
	}
	wantTypes := []event.Type{event.RoundStarted, event.RoundEnded}
	if len(rounds) != len(wantTypes) {
		t.Fatalf("len(sequence events) = %d, want %d", len(rounds), len(wantTypes))
	}
	for i, ev := range rounds {
		if ev.Type != wantTypes[i] {
			t.Errorf("sequence event %d type = %s, want %s", i, ev.Type, wantTypes[i])
		}
		if ev.Version != i+1 {
			t.Errorf("sequence event %d version = %d, want %d", i, ev.Version, i+1)
		}
	}

	lotEvents, err := es.Load(ctx, "lot-1")
	if err != nil {
		t.Fatalf("Load(lot-1) error = %v", err)
	}
	if len(lotEvents) == 0 {
		t.Fatal("no events recorded for the opened lot")
	}
	for _, ev := range lotEvents {
		if ev.Type == event.RoundStarted || ev.Type == event.RoundEnded {
			t.Errorf("round event %s recorded under the lot aggregate", ev.Type)
		}
	}
}
