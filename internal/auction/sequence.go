package auction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sreeharimv/auction-platform/internal/config"
	"github.com/sreeharimv/auction-platform/internal/event"
	"github.com/sreeharimv/auction-platform/internal/store"
)

// sequence tracks the sequential auction queue: the ordered player ids of
// the current round and the cursor into them. When a round is exhausted the
// unsold remainder seeds the next round automatically.
type sequence struct {
	active bool
	ids    []int64
	index  int
	round  int
}

// startingTeam is the team whose turn it is to open bidding, rotating
// through the configured team order by queue position.
func (s *sequence) startingTeam(rules config.Rules) string {
	if !s.active || len(rules.TeamNames) == 0 || s.index < 0 {
		return ""
	}
	return rules.TeamNames[s.index%len(rules.TeamNames)]
}

// StartSequential begins a sequential auction. With a custom order the
// names are resolved against the player pool and unknown or already-sold
// names are dropped; without one the queue is every unsold player in
// repository order. The first lot opens immediately.
func (e *Engine) StartSequential(ctx context.Context, customOrder []string) error {
	ctx, span := e.tracer.Start(ctx, "Engine.StartSequential",
		trace.WithAttributes(attribute.Int("order.len", len(customOrder))),
	)
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.seq.active {
		return fmt.Errorf("sequential auction already running: %w", ErrInvalidState)
	}
	if e.lot.status == LotBidding {
		return fmt.Errorf("lot already active for player %d: %w", e.lot.playerID, ErrInvalidState)
	}

	ids, err := e.resolveQueueLocked(ctx, customOrder)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return ErrEmptyQueue
	}

	e.seq = sequence{active: true, ids: ids, index: -1, round: 1}
	e.recordRoundEventLocked(ctx, event.RoundStarted, event.RoundStartedData{
		Round:   e.seq.round,
		Players: len(ids),
	})
	if err := e.advanceLocked(ctx); err != nil {
		e.seq = sequence{}
		return err
	}
	e.commitLocked(ctx)

	e.logger.InfoContext(ctx, "sequential auction started",
		slog.Int("players", len(ids)),
		slog.Bool("custom_order", len(customOrder) > 0),
	)
	return nil
}

// Advance moves to the next player in the queue, abandoning the current lot
// if one is still open.
func (e *Engine) Advance(ctx context.Context) error {
	ctx, span := e.tracer.Start(ctx, "Engine.Advance")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.seq.active {
		return fmt.Errorf("no sequential auction running: %w", ErrInvalidState)
	}
	if err := e.advanceLocked(ctx); err != nil {
		return err
	}
	e.commitLocked(ctx)
	return nil
}

// EndSequential stops the sequential auction. An open lot stays open and
// can still be finished manually.
func (e *Engine) EndSequential(ctx context.Context) error {
	ctx, span := e.tracer.Start(ctx, "Engine.EndSequential")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.seq.active {
		return fmt.Errorf("no sequential auction running: %w", ErrInvalidState)
	}
	round := e.seq.round
	e.seq = sequence{}
	e.recordRoundEventLocked(ctx, event.RoundEnded, json.RawMessage(fmt.Sprintf(`{"round":%d}`, round)))
	e.commitLocked(ctx)

	e.logger.InfoContext(ctx, "sequential auction ended", slog.Int("round", round))
	return nil
}

// resolveQueueLocked builds the ordered id queue for a new sequential run.
func (e *Engine) resolveQueueLocked(ctx context.Context, customOrder []string) ([]int64, error) {
	if len(customOrder) == 0 {
		return e.unsoldIDsLocked(ctx)
	}
	ids := make([]int64, 0, len(customOrder))
	for _, name := range customOrder {
		p, err := e.repo.GetByName(ctx, name)
		if err != nil {
			// unknown names are dropped, not fatal
			e.logger.WarnContext(ctx, "custom order name not found", slog.String("name", name))
			continue
		}
		if p.Status != store.StatusUnsold {
			continue
		}
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func (e *Engine) unsoldIDsLocked(ctx context.Context) ([]int64, error) {
	players, err := e.repo.ListByStatus(ctx, store.StatusUnsold)
	if err != nil {
		return nil, fmt.Errorf("loading unsold players: %w", err)
	}
	ids := make([]int64, 0, len(players))
	for _, p := range players {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// advanceLocked opens the next still-unsold lot in the queue. Players sold
// out of band since the queue was built are skipped. An exhausted queue
// rolls over into a fresh round of whatever remains unsold; with nothing
// left, the sequential auction ends and the engine returns to waiting.
func (e *Engine) advanceLocked(ctx context.Context) error {
	for {
		e.seq.index++
		if e.seq.index >= len(e.seq.ids) {
			remaining, err := e.unsoldIDsLocked(ctx)
			if err != nil {
				return err
			}
			if len(remaining) == 0 {
				e.recordRoundEventLocked(ctx, event.RoundEnded, json.RawMessage(fmt.Sprintf(`{"round":%d}`, e.seq.round)))
				e.seq = sequence{}
				e.lot = lot{status: LotWaiting}
				e.announcement = "Auction complete"
				e.logger.InfoContext(ctx, "sequential auction complete")
				return nil
			}
			e.seq.ids = remaining
			e.seq.index = 0
			e.seq.round++
			e.recordRoundEventLocked(ctx, event.RoundStarted, event.RoundStartedData{
				Round:   e.seq.round,
				Players: len(remaining),
			})
			e.logger.InfoContext(ctx, "next round started",
				slog.Int("round", e.seq.round),
				slog.Int("players", len(remaining)),
			)
		}

		id := e.seq.ids[e.seq.index]
		err := e.openLotLocked(ctx, id)
		if err == nil {
			return nil
		}
		// entries deleted or sold out of band are skipped silently
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, ErrInvalidState) {
			continue
		}
		return err
	}
}
