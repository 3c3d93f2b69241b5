package auction

import (
	"sort"

	"github.com/sreeharimv/auction-platform/internal/config"
	"github.com/sreeharimv/auction-platform/internal/store"
)

// reachableBidSteps bounds the highest-reachable-bid walk so it always
// terminates.
const reachableBidSteps = 200

// TeamStanding holds the aggregates derived from the player records for one
// team: money spent on sold players and squad headcount including the
// captain.
type TeamStanding struct {
	Name                 string
	Spent                int64
	HeadcountWithCaptain int
}

// Standings recomputes every configured team's aggregates from the player
// pool. Players assigned to unconfigured teams are ignored.
func Standings(rules config.Rules, players []store.Player) []TeamStanding {
	byName := make(map[string]*TeamStanding, len(rules.TeamNames))
	out := make([]TeamStanding, len(rules.TeamNames))
	for i, name := range rules.TeamNames {
		out[i] = TeamStanding{Name: name}
		byName[name] = &out[i]
	}
	for _, p := range players {
		ts, ok := byName[p.Team]
		if !ok {
			continue
		}
		switch p.Status {
		case store.StatusSold:
			ts.Spent += p.SoldPrice
			ts.HeadcountWithCaptain++
		case store.StatusCaptain:
			ts.HeadcountWithCaptain++
		}
	}
	return out
}

// anyTeamOneFromFull reports whether some team's combined sold+captain
// headcount is exactly one below the squad ceiling. When true, the ladder
// collapses to the smallest increment for everyone (the last-slot override;
// it applies globally so the displayed ladder and the required next bid
// never disagree between teams at different slot counts).
func anyTeamOneFromFull(rules config.Rules, standings []TeamStanding) bool {
	for _, ts := range standings {
		if ts.HeadcountWithCaptain == rules.MaxSquadSize-1 {
			return true
		}
	}
	return false
}

// TeamLimit is the affordability verdict for one team against the current
// lot.
type TeamLimit struct {
	Team                 string
	Remaining            int64
	MaxLegalBid          int64
	HighestReachableBid  int64
	CanBidNow            bool
	NearLimit            bool
	HeadcountWithCaptain int
	ReserveSlots         int
}

// Limits is the full affordability computation for one lot state.
type Limits struct {
	// MinNextBid is the amount the next bid must equal, for every team.
	MinNextBid int64
	// Ladder is the ladder the computation used (override already applied).
	Ladder Ladder
	byTeam map[string]TeamLimit
	teams  []TeamLimit
}

// Team returns the limit for a team. Unknown names yield a zero value and
// ok=false, never an error: affordability is advisory input to validation.
func (l *Limits) Team(name string) (TeamLimit, bool) {
	tl, ok := l.byTeam[name]
	return tl, ok
}

// Teams returns all team limits ordered by highest max legal bid, ties
// broken by name.
func (l *Limits) Teams() []TeamLimit {
	return l.teams
}

// ComputeLimits derives, for every configured team, the remaining budget,
// the maximum legal bid under the reserve-slot rule, the highest
// increment-aligned bid it can reach, and eligibility flags.
//
// The reserve-slot rule: after a hypothetical purchase the team must still
// be able to fill each remaining mandatory slot at base price, so
// maxLegalBid = remaining − reserveSlots × basePrice, clamped at zero.
func ComputeLimits(rules config.Rules, standings []TeamStanding, basePrice, currentBid int64, leadingTeam string) *Limits {
	ladder := NewLadder(rules, anyTeamOneFromFull(rules, standings))

	minNext := basePrice
	if leadingTeam != "" || currentBid > basePrice {
		minNext = ladder.NextAbove(currentBid)
	}

	l := &Limits{
		MinNextBid: minNext,
		Ladder:     ladder,
		byTeam:     make(map[string]TeamLimit, len(standings)),
	}

	for _, ts := range standings {
		tl := TeamLimit{
			Team:                 ts.Name,
			Remaining:            rules.TeamBudget - ts.Spent,
			HeadcountWithCaptain: ts.HeadcountWithCaptain,
		}

		if ts.HeadcountWithCaptain >= rules.MaxSquadSize {
			// Squad full: the team cannot transact at all.
			l.byTeam[ts.Name] = tl
			l.teams = append(l.teams, tl)
			continue
		}

		tl.ReserveSlots = rules.MaxSquadSize - ts.HeadcountWithCaptain - 1
		if tl.ReserveSlots < 0 {
			tl.ReserveSlots = 0
		}
		tl.MaxLegalBid = tl.Remaining - int64(tl.ReserveSlots)*rules.BasePrice
		if tl.MaxLegalBid < 0 {
			tl.MaxLegalBid = 0
		}

		tl.CanBidNow = tl.MaxLegalBid >= minNext
		if tl.CanBidNow {
			tl.HighestReachableBid = highestReachable(ladder, minNext, tl.MaxLegalBid)
			tl.NearLimit = ladder.NextAbove(minNext) > tl.MaxLegalBid
		}

		l.byTeam[ts.Name] = tl
		l.teams = append(l.teams, tl)
	}

	sort.SliceStable(l.teams, func(i, j int) bool {
		if l.teams[i].MaxLegalBid != l.teams[j].MaxLegalBid {
			return l.teams[i].MaxLegalBid > l.teams[j].MaxLegalBid
		}
		return l.teams[i].Team < l.teams[j].Team
	})
	return l
}

// highestReachable walks the ladder from minNext upward while each candidate
// fits under maxLegal, returning the last value that fits.
func highestReachable(ladder Ladder, minNext, maxLegal int64) int64 {
	reachable := int64(0)
	price := minNext
	for i := 0; i < reachableBidSteps && price <= maxLegal; i++ {
		reachable = price
		price = ladder.NextAbove(price)
	}
	return reachable
}
