// Package httpapi exposes the auction over HTTP: a public live view (JSON
// and WebSocket), public player and team listings, and a JWT-gated admin
// console for running the auction.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sreeharimv/auction-platform/internal/auction"
	"github.com/sreeharimv/auction-platform/internal/broadcast"
	"github.com/sreeharimv/auction-platform/internal/config"
	"github.com/sreeharimv/auction-platform/internal/health"
	"github.com/sreeharimv/auction-platform/internal/store"
	"github.com/sreeharimv/auction-platform/internal/telemetry"
)

// Server wires the auction engine and its surroundings into an HTTP API.
type Server struct {
	engine  *auction.Engine
	hub     *broadcast.Hub
	repo    store.PlayerRepository
	auth    *Auth
	health  *health.Handler
	cfg     *config.Config
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

func NewServer(
	engine *auction.Engine,
	hub *broadcast.Hub,
	repo store.PlayerRepository,
	auth *Auth,
	healthHandler *health.Handler,
	cfg *config.Config,
	metrics *telemetry.Metrics,
	logger *slog.Logger,
) *Server {
	return &Server{
		engine:  engine,
		hub:     hub,
		repo:    repo,
		auth:    auth,
		health:  healthHandler,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}
}

// Routes builds the full router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.health.LivenessHandler())
	r.Get("/readyz", s.health.ReadinessHandler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/tournament", s.handleTournament)
		r.Get("/live", s.handleLive)
		r.Get("/live/ws", s.handleLiveWS)

		r.Get("/players", s.handleListPlayers)
		r.Get("/players/export", s.handleExportPlayers)
		r.Get("/players/{id}", s.handleGetPlayer)
		r.Get("/teams", s.handleTeams)

		r.Post("/admin/login", s.handleLogin)

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.auth.RequireAdmin)

			r.Post("/lots/start", s.handleStartLot)
			r.Post("/lots/bid", s.handlePlaceBid)
			r.Post("/lots/undo", s.handleUndo)
			r.Post("/lots/sold", s.handleMarkSold)
			r.Post("/lots/assign", s.handleForceAssign)
			r.Post("/lots/reset", s.handleResetLot)

			r.Post("/sequence/start", s.handleStartSequential)
			r.Post("/sequence/advance", s.handleAdvance)
			r.Post("/sequence/end", s.handleEndSequential)

			r.Post("/players", s.handleCreatePlayer)
			r.Put("/players/{id}", s.handleUpdatePlayer)
			r.Delete("/players/{id}", s.handleDeletePlayer)
			r.Post("/players/import", s.handleImportPlayers)
			r.Post("/players/{id}/revert-sale", s.handleRevertSale)
			r.Post("/players/{id}/captain", s.handleSetCaptain)

			r.Post("/captains/reset", s.handleResetCaptains)
			r.Post("/reset-auction", s.handleResetAuction)
			r.Post("/reset-all", s.handleResetAll)
		})
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.InfoContext(r.Context(), "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) handleTournament(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":     s.cfg.Tournament.Name,
		"logo":     s.cfg.Tournament.Logo,
		"currency": s.cfg.Auction.Currency,
		"teams":    s.cfg.Teams.Names,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	token, err := s.auth.Login(req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
