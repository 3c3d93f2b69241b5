package auction

import (
	"errors"
	"fmt"
)

// Errors returned by auction operations. Every rejection leaves the
// auction state unchanged.
var (
	// ErrInvalidState means the operation is not valid in the current lot
	// state (e.g. starting a lot while one is active).
	ErrInvalidState = errors.New("operation not valid in current auction state")
	// ErrNoActiveLot means a bid-phase operation arrived with no lot open.
	ErrNoActiveLot = errors.New("no active lot")
	// ErrInvalidBid means the amount is not the required next ladder value.
	ErrInvalidBid = errors.New("bid is not the required next increment")
	// ErrIneligible means the team's budget or squad constraints forbid the
	// transaction.
	ErrIneligible = errors.New("team is not eligible for this bid")
	// ErrNoLeadingTeam means markSold was called with no bids on the lot.
	ErrNoLeadingTeam = errors.New("no leading team on the active lot")
	// ErrEmptyQueue means a sequential auction was started with no unsold
	// players.
	ErrEmptyQueue = errors.New("no unsold players to auction")
	// ErrUnknownTeam means the team name is not in the configured roster.
	ErrUnknownTeam = errors.New("unknown team")
)

// BidError rejects a bid amount that is not the required next ladder value.
// Expected is the amount the caller should have sent.
type BidError struct {
	Amount   int64
	Expected int64
	Current  int64
}

func (e *BidError) Error() string {
	return fmt.Sprintf("invalid bid %d: next valid bid from %d is %d", e.Amount, e.Current, e.Expected)
}

func (e *BidError) Unwrap() error { return ErrInvalidBid }

// EligibilityError rejects a bid or sale a team cannot afford. ReserveSlots
// and ReserveCost explain how much budget is held back for mandatory squad
// slots, so callers can present an actionable message.
type EligibilityError struct {
	Team         string
	Amount       int64
	MaxLegalBid  int64
	Remaining    int64
	ReserveSlots int
	ReserveCost  int64
}

func (e *EligibilityError) Error() string {
	if e.ReserveSlots > 0 {
		return fmt.Sprintf("%s cannot pay %d: max legal bid is %d (%d remaining, %d reserved for %d more players)",
			e.Team, e.Amount, e.MaxLegalBid, e.Remaining, e.ReserveCost, e.ReserveSlots)
	}
	return fmt.Sprintf("%s cannot pay %d: max legal bid is %d (%d remaining)",
		e.Team, e.Amount, e.MaxLegalBid, e.Remaining)
}

func (e *EligibilityError) Unwrap() error { return ErrIneligible }
