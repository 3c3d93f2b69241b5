// Package broadcast fans auction snapshots out to live viewers.
package broadcast

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/sreeharimv/auction-platform/internal/auction"
)

// subscriberBuffer bounds each subscriber channel. A slow consumer never
// blocks the auction; stale snapshots are dropped in favor of the latest.
const subscriberBuffer = 8

// Hub delivers every committed snapshot to all subscribers. Each subscriber
// gets its own bounded channel; when the channel is full the oldest queued
// snapshot is discarded so the newest always gets through.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]chan auction.Snapshot
	last   auction.Snapshot
	hasAny bool
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]chan auction.Snapshot),
		logger: logger,
	}
}

// Subscribe registers a new viewer. The most recent snapshot, if any, is
// queued immediately so a fresh viewer does not wait for the next mutation.
// The returned id is passed to Unsubscribe when the viewer disconnects.
func (h *Hub) Subscribe() (string, <-chan auction.Snapshot) {
	id := uuid.NewString()
	ch := make(chan auction.Snapshot, subscriberBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[id] = ch
	if h.hasAny {
		ch <- h.last
	}
	return id, ch
}

// Unsubscribe removes a viewer and closes its channel. Unknown ids are
// ignored so disconnect paths can call it unconditionally.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Publish fans a snapshot out to every subscriber without blocking. Full
// channels drop their oldest entry first; only the latest state matters to
// a viewer.
func (h *Hub) Publish(snap auction.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = snap
	h.hasAny = true
	for id, ch := range h.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
				h.logger.Warn("dropping snapshot for slow subscriber", slog.String("subscriber", id))
			}
		}
	}
}

// Len reports the current subscriber count.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
