package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleStartLot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID int64 `json:"player_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.engine.StartLot(r.Context(), req.PlayerID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Snapshot(r.Context()))
}

func (s *Server) handlePlaceBid(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Team   string `json:"team"`
		Amount int64  `json:"amount"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.engine.PlaceBid(r.Context(), req.Team, req.Amount); err != nil {
		writeDomainError(w, err)
		return
	}
	s.metrics.BidsPlaced.Add(r.Context(), 1)
	writeJSON(w, http.StatusOK, s.engine.Snapshot(r.Context()))
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Undo(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Snapshot(r.Context()))
}

func (s *Server) handleMarkSold(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot(r.Context())
	if err := s.engine.MarkSold(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	s.metrics.LotsSold.Add(r.Context(), 1)
	s.metrics.SalePrice.Record(r.Context(), snap.CurrentBid)
	writeJSON(w, http.StatusOK, s.engine.Snapshot(r.Context()))
}

func (s *Server) handleForceAssign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Team string `json:"team"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	snap := s.engine.Snapshot(r.Context())
	if err := s.engine.ForceAssign(r.Context(), req.Team); err != nil {
		writeDomainError(w, err)
		return
	}
	s.metrics.LotsSold.Add(r.Context(), 1)
	s.metrics.SalePrice.Record(r.Context(), snap.CurrentBid)
	writeJSON(w, http.StatusOK, s.engine.Snapshot(r.Context()))
}

func (s *Server) handleResetLot(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.ResetLot(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Snapshot(r.Context()))
}

func (s *Server) handleStartSequential(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Order []string `json:"order"`
	}
	// an empty body means queue every unsold player
	if r.ContentLength > 0 && !decodeBody(w, r, &req) {
		return
	}
	if err := s.engine.StartSequential(r.Context(), req.Order); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Snapshot(r.Context()))
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Advance(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Snapshot(r.Context()))
}

func (s *Server) handleEndSequential(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.EndSequential(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Snapshot(r.Context()))
}

func (s *Server) handleRevertSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.engine.RevertSale(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Snapshot(r.Context()))
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return 0, false
	}
	return id, true
}
