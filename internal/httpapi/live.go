package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// heartbeatInterval keeps intermediaries from reaping idle viewer
// connections between auction mutations.
const heartbeatInterval = 12 * time.Second

const writeTimeout = 5 * time.Second

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Snapshot(r.Context()))
}

// handleLiveWS streams auction snapshots to a viewer. Every committed
// mutation produces one full snapshot; the client never has to reconcile
// deltas. The read side is drained only to notice disconnects.
func (s *Server) handleLiveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusInternalError, "closing")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	id, updates := s.hub.Subscribe()
	defer s.hub.Unsubscribe(id)

	s.metrics.LiveViewers.Add(ctx, 1)
	defer s.metrics.LiveViewers.Add(ctx, -1)
	s.logger.InfoContext(ctx, "viewer connected", "subscriber", id)

	// reads are discarded; a read error means the viewer is gone
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	// push the current state so the viewer renders immediately
	if err := writeSnapshot(ctx, conn, s.engine.Snapshot(ctx)); err != nil {
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case snap, ok := <-updates:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "shutting down")
				return
			}
			if err := writeSnapshot(ctx, conn, snap); err != nil {
				s.logger.InfoContext(ctx, "viewer write failed, dropping", "subscriber", id)
				return
			}
		case <-heartbeat.C:
			pingCtx, pingCancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pingCtx)
			pingCancel()
			if err != nil {
				return
			}
		}
	}
}

func writeSnapshot(ctx context.Context, conn *websocket.Conn, v any) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, v)
}
