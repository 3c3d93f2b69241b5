package event

import (
	"encoding/json"
	"time"
)

// Type identifies an event kind.
type Type string

const (
	LotStarted   Type = "lot.started"
	BidPlaced    Type = "lot.bid_placed"
	BidUndone    Type = "lot.bid_undone"
	LotSold      Type = "lot.sold"
	LotReset     Type = "lot.reset"
	SaleReverted Type = "player.sale_reverted"
	RoundStarted Type = "round.started"
	RoundEnded   Type = "round.ended"
)

// Event represents a single domain event in the auction audit log.
type Event struct {
	ID          string          `json:"id" db:"id"`
	AggregateID string          `json:"aggregate_id" db:"aggregate_id"`
	Type        Type            `json:"type" db:"type"`
	Data        json.RawMessage `json:"data" db:"data"`
	Version     int             `json:"version" db:"version"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// LotStartedData is the payload for LotStarted events.
type LotStartedData struct {
	PlayerID  int64  `json:"player_id"`
	Name      string `json:"name"`
	BasePrice int64  `json:"base_price"`
}

// BidPlacedData is the payload for BidPlaced events.
type BidPlacedData struct {
	Team   string `json:"team"`
	Amount int64  `json:"amount"`
}

// LotSoldData is the payload for LotSold events.
type LotSoldData struct {
	PlayerID int64  `json:"player_id"`
	Team     string `json:"team"`
	Amount   int64  `json:"amount"`
	Forced   bool   `json:"forced,omitempty"`
}

// SaleRevertedData is the payload for SaleReverted events.
type SaleRevertedData struct {
	PlayerID int64 `json:"player_id"`
}

// RoundStartedData is the payload for RoundStarted events.
type RoundStartedData struct {
	Round   int `json:"round"`
	Players int `json:"players"`
}
