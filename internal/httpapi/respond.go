package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sreeharimv/auction-platform/internal/auction"
	"github.com/sreeharimv/auction-platform/internal/store"
)

type errorBody struct {
	Error       string `json:"error"`
	ExpectedBid int64  `json:"expected_bid,omitempty"`
	MaxValidBid int64  `json:"max_valid_bid,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorBody{Error: msg})
}

// writeDomainError maps auction and store errors onto HTTP status codes.
// Bid rejections carry the corrective detail (the expected amount or the
// team's ceiling) so the console can show the operator what would succeed.
func writeDomainError(w http.ResponseWriter, err error) {
	var bidErr *auction.BidError
	if errors.As(err, &bidErr) {
		writeJSON(w, http.StatusConflict, errorBody{
			Error:       bidErr.Error(),
			ExpectedBid: bidErr.Expected,
		})
		return
	}
	var eligErr *auction.EligibilityError
	if errors.As(err, &eligErr) {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error:       eligErr.Error(),
			MaxValidBid: eligErr.MaxLegalBid,
		})
		return
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, auction.ErrUnknownTeam):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auction.ErrInvalidState),
		errors.Is(err, auction.ErrNoActiveLot),
		errors.Is(err, auction.ErrNoLeadingTeam),
		errors.Is(err, auction.ErrEmptyQueue):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
