package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sreeharimv/auction-platform/internal/auction"
	"github.com/sreeharimv/auction-platform/internal/store"
	"github.com/sreeharimv/auction-platform/internal/store/csvstore"
)

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	var (
		players []store.Player
		err     error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		players, err = s.repo.ListByStatus(r.Context(), store.Status(status))
	} else {
		players, err = s.repo.List(r.Context())
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if players == nil {
		players = []store.Player{}
	}
	writeJSON(w, http.StatusOK, players)
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := s.repo.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type playerRequest struct {
	Name         *string `json:"name"`
	Age          *string `json:"age"`
	Role         *string `json:"role"`
	BattingStyle *string `json:"batting_style"`
	BowlingStyle *string `json:"bowling_style"`
	BasePrice    *int64  `json:"base_price"`
	Photo        *string `json:"photo"`
}

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == nil || *req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	p := store.Player{
		Name:      *req.Name,
		BasePrice: s.cfg.Auction.BasePrice,
		Status:    store.StatusUnsold,
	}
	if req.Age != nil {
		p.Age = *req.Age
	}
	if req.Role != nil {
		p.Role = *req.Role
	}
	if req.BattingStyle != nil {
		p.BattingStyle = *req.BattingStyle
	}
	if req.BowlingStyle != nil {
		p.BowlingStyle = *req.BowlingStyle
	}
	if req.BasePrice != nil {
		p.BasePrice = *req.BasePrice
	}
	if req.Photo != nil {
		p.Photo = *req.Photo
	}

	if err := s.repo.Create(r.Context(), &p); err != nil {
		writeDomainError(w, err)
		return
	}
	s.syncLive(r)
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdatePlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req playerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ch := store.Changes{
		Name:         req.Name,
		Age:          req.Age,
		Role:         req.Role,
		BattingStyle: req.BattingStyle,
		BowlingStyle: req.BowlingStyle,
		BasePrice:    req.BasePrice,
		Photo:        req.Photo,
	}
	if ch.Empty() {
		writeError(w, http.StatusBadRequest, "no fields to update")
		return
	}
	if err := s.repo.Update(r.Context(), id, ch); err != nil {
		writeDomainError(w, err)
		return
	}
	p, err := s.repo.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.syncLive(r)
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.repo.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	s.syncLive(r)
	w.WriteHeader(http.StatusNoContent)
}

// handleImportPlayers replaces the whole pool from an uploaded CSV. The
// upload uses the same column layout as the export, so a tournament sheet
// round-trips cleanly.
func (s *Server) handleImportPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := csvstore.ReadPlayers(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid csv: %v", err))
		return
	}
	if len(players) == 0 {
		writeError(w, http.StatusBadRequest, "csv contains no players")
		return
	}
	if err := s.repo.ReplaceAll(r.Context(), players); err != nil {
		writeDomainError(w, err)
		return
	}
	s.syncLive(r)
	writeJSON(w, http.StatusOK, map[string]int{"imported": len(players)})
}

func (s *Server) handleExportPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.repo.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="players.csv"`)
	if err := csvstore.WritePlayers(w, players); err != nil {
		s.logger.ErrorContext(r.Context(), "csv export failed", "error", err)
	}
}

// handleTeams reports per-team standings: budget position, roster and the
// current bid ceiling.
func (s *Server) handleTeams(w http.ResponseWriter, r *http.Request) {
	players, err := s.repo.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	limits, err := s.engine.Limits(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	type teamView struct {
		Name        string         `json:"name"`
		Budget      int64          `json:"budget"`
		Spent       int64          `json:"spent"`
		Remaining   int64          `json:"remaining"`
		MaxValidBid int64          `json:"max_valid_bid"`
		CanBid      bool           `json:"can_bid"`
		NearLimit   bool           `json:"near_limit"`
		Players     []store.Player `json:"players"`
	}

	rules := s.cfg.Rules()
	out := make([]teamView, 0, len(rules.TeamNames))
	for _, name := range rules.TeamNames {
		tv := teamView{Name: name, Budget: rules.TeamBudget, Players: []store.Player{}}
		for _, p := range players {
			if p.Team == name && p.Status != store.StatusUnsold {
				tv.Players = append(tv.Players, p)
				tv.Spent += p.SoldPrice
			}
		}
		tv.Remaining = rules.TeamBudget - tv.Spent
		if tl, ok := limits.Team(name); ok {
			tv.MaxValidBid = tl.MaxLegalBid
			tv.CanBid = tl.CanBidNow
			tv.NearLimit = tl.NearLimit
		}
		out = append(out, tv)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSetCaptain pre-assigns a player to a team as its captain. Captains
// occupy a squad slot but cost nothing against the budget.
func (s *Server) handleSetCaptain(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Team string `json:"team"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if !s.cfg.Rules().HasTeam(req.Team) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown team %q", req.Team))
		return
	}

	p, err := s.repo.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if p.Status == store.StatusSold {
		writeError(w, http.StatusConflict, "player is already sold; revert the sale first")
		return
	}
	err = s.repo.Update(r.Context(), id, store.Changes{
		Team:        store.Str(req.Team),
		Status:      store.Stat(store.StatusCaptain),
		SoldPrice:   store.Int64(0),
		ClearSoldAt: true,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.syncLive(r)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleResetCaptains(w http.ResponseWriter, r *http.Request) {
	if err := s.resetByStatus(r, store.StatusCaptain); err != nil {
		writeDomainError(w, err)
		return
	}
	s.syncLive(r)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleResetAuction reverts every sale but keeps captain assignments, so
// an auction can be re-run on the same pool.
func (s *Server) handleResetAuction(w http.ResponseWriter, r *http.Request) {
	s.stopAuction(r)
	if err := s.resetByStatus(r, store.StatusSold); err != nil {
		writeDomainError(w, err)
		return
	}
	s.syncLive(r)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleResetAll returns the pool to a clean slate: sales reverted and
// captains cleared.
func (s *Server) handleResetAll(w http.ResponseWriter, r *http.Request) {
	s.stopAuction(r)
	for _, status := range []store.Status{store.StatusSold, store.StatusCaptain} {
		if err := s.resetByStatus(r, status); err != nil {
			writeDomainError(w, err)
			return
		}
	}
	s.syncLive(r)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) resetByStatus(r *http.Request, status store.Status) error {
	players, err := s.repo.ListByStatus(r.Context(), status)
	if err != nil {
		return err
	}
	for _, p := range players {
		err := s.repo.Update(r.Context(), p.ID, store.Changes{
			Team:        store.Str(""),
			Status:      store.Stat(store.StatusUnsold),
			SoldPrice:   store.Int64(0),
			ClearSoldAt: true,
		})
		if err != nil {
			return fmt.Errorf("resetting player %d: %w", p.ID, err)
		}
	}
	return nil
}

// stopAuction halts any running sequence and abandons the active lot before
// a bulk reset.
func (s *Server) stopAuction(r *http.Request) {
	if err := s.engine.EndSequential(r.Context()); err != nil && !errors.Is(err, auction.ErrInvalidState) {
		s.logger.WarnContext(r.Context(), "ending sequence before reset failed", "error", err)
	}
	if err := s.engine.ResetLot(r.Context()); err != nil {
		s.logger.WarnContext(r.Context(), "resetting lot before reset failed", "error", err)
	}
}

// syncLive republishes the live snapshot after a roster write. Player
// records feed team eligibility, so viewers must see the change without
// waiting for the next auction action.
func (s *Server) syncLive(r *http.Request) {
	s.engine.SyncPlayers(r.Context())
}
