package auction

// Snapshot is the complete, self-consistent live state delivered to every
// viewer. A consumer that has seen version v and receives v+k may safely
// discard anything in between; snapshots are never deltas.
type Snapshot struct {
	Version       uint64          `json:"version"`
	Status        LotStatus       `json:"status"`
	CurrentBid    int64           `json:"current_bid"`
	LeadingTeam   string          `json:"leading_team,omitempty"`
	NextBid       int64           `json:"next_bid"`
	Player        *PlayerSummary  `json:"player"`
	EligibleTeams []TeamLimitView `json:"eligible_teams"`
	StartingTeam  string          `json:"starting_team,omitempty"`
	RoundProgress *RoundProgress  `json:"round_progress"`
	Announcement  string          `json:"announcement,omitempty"`
}

// PlayerSummary is the viewer-facing slice of the active player record.
type PlayerSummary struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	BasePrice int64  `json:"base_price"`
}

// TeamLimitView is the per-team affordability summary shown to viewers.
type TeamLimitView struct {
	Team               string `json:"team"`
	MaxValidBid        int64  `json:"max_valid_bid"`
	Remaining          int64  `json:"remaining"`
	PlayersWithCaptain int    `json:"players_with_captain"`
	NearLimit          bool   `json:"near_limit"`
}

// RoundProgress reports position within the active sequential round.
type RoundProgress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}
