package auction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sreeharimv/auction-platform/internal/clock"
	"github.com/sreeharimv/auction-platform/internal/config"
	"github.com/sreeharimv/auction-platform/internal/currency"
	"github.com/sreeharimv/auction-platform/internal/event"
	"github.com/sreeharimv/auction-platform/internal/store"
)

// LotStatus is the lifecycle state of the single active lot.
type LotStatus string

const (
	// LotWaiting means no lot is open.
	LotWaiting LotStatus = "waiting"
	// LotBidding means a lot is open and accepting bids.
	LotBidding LotStatus = "bidding"
	// LotSoldOut means the lot was finalized and persisted.
	LotSoldOut LotStatus = "sold"
)

// Bid is one accepted raise on the active lot.
type Bid struct {
	Team   string    `json:"team"`
	Amount int64     `json:"amount"`
	At     time.Time `json:"at"`
}

// lot is the transient, in-memory state of the player currently under the
// hammer. It is never persisted; the authoritative sale is written to the
// repository on markSold.
type lot struct {
	playerID   int64
	playerName string
	playerRole string
	basePrice  int64
	currentBid int64
	leading    string
	status     LotStatus
	history    []Bid
	rules      config.Rules
	evVersion  int
}

// Broadcaster receives one snapshot per committed mutation.
type Broadcaster interface {
	Publish(Snapshot)
}

// Engine is the auction state machine. It owns the single active lot and
// the sequential queue; every mutation is serialized behind one mutex so
// concurrent admin actions observe each other's commits.
type Engine struct {
	mu  sync.Mutex
	lot lot
	seq sequence

	version      uint64
	seqEvents    int
	announcement string

	repo   store.PlayerRepository
	events event.Store
	rules  func() config.Rules
	clock  clock.Clock
	logger *slog.Logger
	tracer trace.Tracer
	sink   Broadcaster
}

// New creates an Engine. events may be nil when no audit log is configured;
// sink may be nil when nothing subscribes to live state.
func New(repo store.PlayerRepository, events event.Store, rules func() config.Rules, clk clock.Clock, logger *slog.Logger, tp trace.TracerProvider, sink Broadcaster) *Engine {
	if events == nil {
		events = event.NopStore{}
	}
	return &Engine{
		lot:    lot{status: LotWaiting},
		repo:   repo,
		events: events,
		rules:  rules,
		clock:  clk,
		logger: logger,
		tracer: tp.Tracer("github.com/sreeharimv/auction-platform/internal/auction"),
		sink:   sink,
	}
}

// StartLot opens bidding for a player at its base price.
func (e *Engine) StartLot(ctx context.Context, playerID int64) error {
	ctx, span := e.tracer.Start(ctx, "Engine.StartLot",
		trace.WithAttributes(attribute.Int64("player.id", playerID)),
	)
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lot.status == LotBidding {
		return fmt.Errorf("lot already active for player %d: %w", e.lot.playerID, ErrInvalidState)
	}
	if err := e.openLotLocked(ctx, playerID); err != nil {
		return err
	}
	e.commitLocked(ctx)

	e.logger.InfoContext(ctx, "lot started",
		slog.Int64("player_id", playerID),
		slog.Int64("base_price", e.lot.basePrice),
	)
	return nil
}

// openLotLocked loads the player and opens a fresh lot for it. The player
// must still be unsold.
func (e *Engine) openLotLocked(ctx context.Context, playerID int64) error {
	p, err := e.repo.Get(ctx, playerID)
	if err != nil {
		return err
	}
	if p.Status != store.StatusUnsold {
		return fmt.Errorf("player %d has status %q: %w", playerID, p.Status, ErrInvalidState)
	}

	e.lot = lot{
		playerID:   p.ID,
		playerName: p.Name,
		playerRole: p.Role,
		basePrice:  p.BasePrice,
		currentBid: p.BasePrice,
		status:     LotBidding,
		rules:      e.rules(),
	}
	e.recordEventLocked(ctx, event.LotStarted, event.LotStartedData{
		PlayerID:  p.ID,
		Name:      p.Name,
		BasePrice: p.BasePrice,
	})
	return nil
}

// PlaceBid applies a raise for a team. The amount must equal the required
// next ladder value exactly (the base price for the opening bid), and the
// team must be able to afford it under the reserve-slot rule. A stale
// amount, computed against a bid that has since moved, is rejected with
// ErrInvalidBid carrying the expected value.
func (e *Engine) PlaceBid(ctx context.Context, team string, amount int64) error {
	ctx, span := e.tracer.Start(ctx, "Engine.PlaceBid",
		trace.WithAttributes(
			attribute.String("team", team),
			attribute.Int64("bid.amount", amount),
		),
	)
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lot.status != LotBidding {
		return ErrNoActiveLot
	}
	if !e.lot.rules.HasTeam(team) {
		return fmt.Errorf("team %q: %w", team, ErrUnknownTeam)
	}

	limits, err := e.limitsLocked(ctx)
	if err != nil {
		return err
	}
	if amount != limits.MinNextBid {
		return &BidError{Amount: amount, Expected: limits.MinNextBid, Current: e.lot.currentBid}
	}
	tl, _ := limits.Team(team)
	if !tl.CanBidNow || amount > tl.MaxLegalBid {
		return &EligibilityError{
			Team:         team,
			Amount:       amount,
			MaxLegalBid:  tl.MaxLegalBid,
			Remaining:    tl.Remaining,
			ReserveSlots: tl.ReserveSlots,
			ReserveCost:  int64(tl.ReserveSlots) * e.lot.rules.BasePrice,
		}
	}

	e.lot.history = append(e.lot.history, Bid{Team: team, Amount: amount, At: e.clock.Now().UTC()})
	e.lot.currentBid = amount
	e.lot.leading = team
	e.recordEventLocked(ctx, event.BidPlaced, event.BidPlacedData{Team: team, Amount: amount})
	e.commitLocked(ctx)

	e.logger.InfoContext(ctx, "bid placed",
		slog.Int64("player_id", e.lot.playerID),
		slog.String("team", team),
		slog.Int64("amount", amount),
	)
	return nil
}

// Undo removes the most recent bid. With no bids left it degrades to a
// reset: current bid back to base price, no leading team. It never errors
// on an empty history; repeated calls converge to the same state.
func (e *Engine) Undo(ctx context.Context) error {
	ctx, span := e.tracer.Start(ctx, "Engine.Undo")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lot.status != LotBidding {
		return ErrNoActiveLot
	}

	if n := len(e.lot.history); n > 0 {
		e.lot.history = e.lot.history[:n-1]
	}
	if n := len(e.lot.history); n > 0 {
		last := e.lot.history[n-1]
		e.lot.currentBid = last.Amount
		e.lot.leading = last.Team
	} else {
		e.lot.currentBid = e.lot.basePrice
		e.lot.leading = ""
	}
	e.recordEventLocked(ctx, event.BidUndone, event.BidPlacedData{Team: e.lot.leading, Amount: e.lot.currentBid})
	e.commitLocked(ctx)

	e.logger.InfoContext(ctx, "bid undone",
		slog.Int64("player_id", e.lot.playerID),
		slog.Int64("current_bid", e.lot.currentBid),
	)
	return nil
}

// MarkSold finalizes the lot for the leading team at the current bid. The
// leading team's eligibility is re-validated at commit time: budgets may
// have shifted since the bid was accepted, and the sale is rejected with
// the lot left open if the re-check fails. Requires a leading team; a
// no-bid lot is assigned through ForceAssign instead.
func (e *Engine) MarkSold(ctx context.Context) error {
	ctx, span := e.tracer.Start(ctx, "Engine.MarkSold")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lot.status != LotBidding {
		return ErrNoActiveLot
	}
	if e.lot.leading == "" {
		return ErrNoLeadingTeam
	}
	return e.sellLocked(ctx, e.lot.leading, e.lot.currentBid, false)
}

// ForceAssign finalizes the lot for an explicitly named team, regardless of
// who (if anyone) is leading. With no bids placed the sale price is the
// base price. The same commit-time eligibility check as MarkSold applies.
func (e *Engine) ForceAssign(ctx context.Context, team string) error {
	ctx, span := e.tracer.Start(ctx, "Engine.ForceAssign",
		trace.WithAttributes(attribute.String("team", team)),
	)
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lot.status != LotBidding {
		return ErrNoActiveLot
	}
	if !e.lot.rules.HasTeam(team) {
		return fmt.Errorf("team %q: %w", team, ErrUnknownTeam)
	}
	return e.sellLocked(ctx, team, e.lot.currentBid, true)
}

// sellLocked persists the sale and advances the sequential auction when one
// is active.
func (e *Engine) sellLocked(ctx context.Context, team string, price int64, forced bool) error {
	limits, err := e.limitsLocked(ctx)
	if err != nil {
		return err
	}
	tl, _ := limits.Team(team)
	if tl.MaxLegalBid < price {
		return &EligibilityError{
			Team:         team,
			Amount:       price,
			MaxLegalBid:  tl.MaxLegalBid,
			Remaining:    tl.Remaining,
			ReserveSlots: tl.ReserveSlots,
			ReserveCost:  int64(tl.ReserveSlots) * e.lot.rules.BasePrice,
		}
	}

	now := e.clock.Now().UTC()
	err = e.repo.Update(ctx, e.lot.playerID, store.Changes{
		Team:      store.Str(team),
		Status:    store.Stat(store.StatusSold),
		SoldPrice: store.Int64(price),
		SoldAt:    &now,
	})
	if err != nil {
		return fmt.Errorf("persisting sale of player %d: %w", e.lot.playerID, err)
	}

	e.lot.status = LotSoldOut
	e.lot.currentBid = price
	e.lot.leading = team
	e.announcement = fmt.Sprintf("SOLD! %s to %s for %s%s",
		e.lot.playerName, team, e.lot.rules.Currency, currency.Format(price))
	e.recordEventLocked(ctx, event.LotSold, event.LotSoldData{
		PlayerID: e.lot.playerID,
		Team:     team,
		Amount:   price,
		Forced:   forced,
	})

	e.logger.InfoContext(ctx, "lot sold",
		slog.Int64("player_id", e.lot.playerID),
		slog.String("team", team),
		slog.Int64("price", price),
		slog.Bool("forced", forced),
	)

	if e.seq.active {
		// the sale itself succeeded; a failed auto-advance leaves the
		// queue where it is and the admin can advance manually
		if err := e.advanceLocked(ctx); err != nil {
			e.logger.ErrorContext(ctx, "auto-advance after sale failed", slog.Any("error", err))
		}
	}
	e.commitLocked(ctx)
	return nil
}

// ResetLot abandons the active lot and returns to waiting. Always succeeds.
func (e *Engine) ResetLot(ctx context.Context) error {
	ctx, span := e.tracer.Start(ctx, "Engine.ResetLot")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.recordEventLocked(ctx, event.LotReset, nil)
	e.lot = lot{status: LotWaiting}
	e.announcement = ""
	e.commitLocked(ctx)
	return nil
}

// RevertSale returns a sold player to the unsold pool, clearing its team,
// price and timestamp. If the player is on the active lot, the lot is reset
// too.
func (e *Engine) RevertSale(ctx context.Context, playerID int64) error {
	ctx, span := e.tracer.Start(ctx, "Engine.RevertSale",
		trace.WithAttributes(attribute.Int64("player.id", playerID)),
	)
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.repo.Get(ctx, playerID)
	if err != nil {
		return err
	}
	err = e.repo.Update(ctx, playerID, store.Changes{
		Team:        store.Str(""),
		Status:      store.Stat(store.StatusUnsold),
		SoldPrice:   store.Int64(0),
		ClearSoldAt: true,
	})
	if err != nil {
		return fmt.Errorf("reverting sale of player %d: %w", playerID, err)
	}

	if e.lot.playerID == playerID && e.lot.status != LotWaiting {
		e.lot = lot{status: LotWaiting}
	}
	e.announcement = fmt.Sprintf("Sale reverted for %s", p.Name)
	e.recordEventLocked(ctx, event.SaleReverted, event.SaleRevertedData{PlayerID: playerID})
	e.commitLocked(ctx)

	e.logger.InfoContext(ctx, "sale reverted", slog.Int64("player_id", playerID))
	return nil
}

// Snapshot returns the current live state.
func (e *Engine) Snapshot(ctx context.Context) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked(ctx)
}

// Limits returns the affordability computation for the current lot state.
// With no active lot the computation is relative to the configured base
// price, which is what eligibility means between lots.
func (e *Engine) Limits(ctx context.Context) (*Limits, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.limitsLocked(ctx)
}

// SyncPlayers republishes live state after player records change outside
// the lot flow. Eligibility in the snapshot is derived from the repository
// at publish time, so roster edits, captain assignments and bulk resets
// reach subscribers without waiting for the next auction action.
func (e *Engine) SyncPlayers(ctx context.Context) Snapshot {
	ctx, span := e.tracer.Start(ctx, "Engine.SyncPlayers")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.commitLocked(ctx)
	return e.snapshotLocked(ctx)
}

func (e *Engine) limitsLocked(ctx context.Context) (*Limits, error) {
	rules, base, current, leading := e.lotFrameLocked()
	players, err := e.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading players: %w", err)
	}
	return ComputeLimits(rules, Standings(rules, players), base, current, leading), nil
}

// lotFrameLocked returns the rules and price frame limits are computed
// against: the active lot when there is one, otherwise the configured base
// price with no leader.
func (e *Engine) lotFrameLocked() (rules config.Rules, base, current int64, leading string) {
	if e.lot.status != LotWaiting {
		return e.lot.rules, e.lot.basePrice, e.lot.currentBid, e.lot.leading
	}
	rules = e.rules()
	return rules, rules.BasePrice, 0, ""
}

// commitLocked versions the mutation and fans the fresh snapshot out.
func (e *Engine) commitLocked(ctx context.Context) {
	e.version++
	if e.sink != nil {
		e.sink.Publish(e.snapshotLocked(ctx))
	}
}

func (e *Engine) snapshotLocked(ctx context.Context) Snapshot {
	snap := Snapshot{
		Version:      e.version,
		Status:       e.lot.status,
		Announcement: e.announcement,
	}

	rules, base, current, leading := e.lotFrameLocked()
	if e.lot.status != LotWaiting {
		snap.CurrentBid = e.lot.currentBid
		snap.LeadingTeam = e.lot.leading
		snap.Player = &PlayerSummary{
			ID:        e.lot.playerID,
			Name:      e.lot.playerName,
			Role:      e.lot.playerRole,
			BasePrice: e.lot.basePrice,
		}
	}
	if e.seq.active {
		snap.StartingTeam = e.seq.startingTeam(rules)
		snap.RoundProgress = &RoundProgress{Current: e.seq.index + 1, Total: len(e.seq.ids)}
	}

	players, err := e.repo.List(ctx)
	if err != nil {
		e.logger.ErrorContext(ctx, "snapshot: loading players failed", slog.Any("error", err))
		return snap
	}
	limits := ComputeLimits(rules, Standings(rules, players), base, current, leading)
	snap.NextBid = limits.MinNextBid
	for _, tl := range limits.Teams() {
		if !tl.CanBidNow {
			continue
		}
		snap.EligibleTeams = append(snap.EligibleTeams, TeamLimitView{
			Team:               tl.Team,
			MaxValidBid:        tl.MaxLegalBid,
			Remaining:          tl.Remaining,
			PlayersWithCaptain: tl.HeadcountWithCaptain,
			NearLimit:          tl.NearLimit,
		})
	}
	return snap
}

// recordEventLocked writes a lot event under the active lot's aggregate.
func (e *Engine) recordEventLocked(ctx context.Context, t event.Type, data any) {
	e.lot.evVersion++
	e.appendEventLocked(ctx, fmt.Sprintf("lot-%d", e.lot.playerID), e.lot.evVersion, t, data)
}

// recordRoundEventLocked writes a scheduler event. Round lifecycle events
// get their own aggregate, with a counter that outlives individual runs,
// so they never attach to whichever lot happens to be open.
func (e *Engine) recordRoundEventLocked(ctx context.Context, t event.Type, data any) {
	e.seqEvents++
	e.appendEventLocked(ctx, "sequence", e.seqEvents, t, data)
}

// appendEventLocked appends to the audit log best-effort: a failed append
// is logged and never blocks the auction.
func (e *Engine) appendEventLocked(ctx context.Context, aggregateID string, version int, t event.Type, data any) {
	payload := json.RawMessage(`{}`)
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			payload = b
		}
	}
	ev := event.Event{
		AggregateID: aggregateID,
		Type:        t,
		Data:        payload,
		Version:     version,
		CreatedAt:   e.clock.Now().UTC(),
	}
	if err := e.events.Append(ctx, ev); err != nil && !errors.Is(err, context.Canceled) {
		e.logger.ErrorContext(ctx, "failed to persist auction event",
			slog.String("type", string(t)),
			slog.Any("error", err),
		)
	}
}
