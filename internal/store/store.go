package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a player id or name does not exist.
var ErrNotFound = errors.New("player not found")

// Status is a player's squad lifecycle state.
type Status string

const (
	// StatusUnsold marks a player still available for auction.
	StatusUnsold Status = "unsold"
	// StatusSold marks a player bought by a team.
	StatusSold Status = "sold"
	// StatusCaptain marks a player pre-assigned to a team at zero cost.
	StatusCaptain Status = "captain"
)

// Player represents one auctionable player.
type Player struct {
	ID           int64      `db:"player_id"`
	Name         string     `db:"name"`
	Age          string     `db:"age"`
	Role         string     `db:"role"`
	BattingStyle string     `db:"batting_style"`
	BowlingStyle string     `db:"bowling_style"`
	BasePrice    int64      `db:"base_price"`
	Team         string     `db:"team"`
	Status       Status     `db:"status"`
	SoldPrice    int64      `db:"sold_price"`
	SoldAt       *time.Time `db:"sold_at"`
	Photo        string     `db:"photo"`
}

// Changes describes a partial update to a player record. Nil fields are
// left untouched.
type Changes struct {
	Name         *string
	Age          *string
	Role         *string
	BattingStyle *string
	BowlingStyle *string
	BasePrice    *int64
	Team         *string
	Status       *Status
	SoldPrice    *int64
	SoldAt       *time.Time
	// ClearSoldAt nulls the sold_at timestamp (used when reverting a sale).
	ClearSoldAt bool
	Photo       *string
}

// Empty reports whether the change set would modify nothing.
func (c Changes) Empty() bool {
	return c.Name == nil && c.Age == nil && c.Role == nil &&
		c.BattingStyle == nil && c.BowlingStyle == nil && c.BasePrice == nil &&
		c.Team == nil && c.Status == nil && c.SoldPrice == nil &&
		c.SoldAt == nil && !c.ClearSoldAt && c.Photo == nil
}

// PlayerRepository defines player persistence operations. Updates must be
// visible to the next Get/List call (read-your-writes, single process).
type PlayerRepository interface {
	Get(ctx context.Context, id int64) (*Player, error)
	GetByName(ctx context.Context, name string) (*Player, error)
	List(ctx context.Context) ([]Player, error)
	ListByStatus(ctx context.Context, status Status) ([]Player, error)
	Create(ctx context.Context, p *Player) error
	Update(ctx context.Context, id int64, ch Changes) error
	Delete(ctx context.Context, id int64) error
	// ReplaceAll swaps the entire player pool (CSV import).
	ReplaceAll(ctx context.Context, players []Player) error
}

// Helpers for building Changes literals.

// Str returns a pointer to s.
func Str(s string) *string { return &s }

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }

// Stat returns a pointer to s.
func Stat(s Status) *Status { return &s }
