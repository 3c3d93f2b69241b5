// Package csvstore implements the player repository on top of a local CSV
// file, matching the players.csv layout used by the tournament organizers.
// The whole pool is held in memory and flushed to disk on every mutation,
// so reads always observe the latest committed write.
package csvstore

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/sreeharimv/auction-platform/internal/clock"
	"github.com/sreeharimv/auction-platform/internal/config"
	"github.com/sreeharimv/auction-platform/internal/currency"
	"github.com/sreeharimv/auction-platform/internal/event"
	"github.com/sreeharimv/auction-platform/internal/store"
)

const soldAtLayout = "2006-01-02 15:04:05"

var columns = []string{
	"player_id", "name", "age", "role", "batting_style", "bowling_style",
	"base_price", "team", "status", "sold_price", "sold_at", "photo",
}

func init() {
	store.Register("csv", func(ctx context.Context, cfg config.DatabaseConfig, clk clock.Clock) (*store.Repositories, error) {
		repo, err := Open(cfg.CSVPath)
		if err != nil {
			return nil, err
		}
		return &store.Repositories{
			Players: repo,
			Events:  event.NopStore{},
			Closer:  repo,
			Ping:    repo.ping,
		}, nil
	})
}

// Repo is a CSV-file-backed store.PlayerRepository.
type Repo struct {
	mu      sync.RWMutex
	path    string
	players map[int64]store.Player
}

// Open loads the CSV file at path, creating an empty one if it does not
// exist.
func Open(path string) (*Repo, error) {
	r := &Repo{path: filepath.Clean(path), players: make(map[int64]store.Player)}

	f, err := os.Open(r.path)
	if os.IsNotExist(err) {
		return r, r.flushLocked()
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", r.path, err)
	}
	defer f.Close()

	players, err := ReadPlayers(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", r.path, err)
	}
	for _, p := range players {
		r.players[p.ID] = p
	}
	return r, nil
}

// ReadPlayers decodes a full player pool from CSV. The first row must be a
// header naming the columns; column order is free. Price columns accept
// plain integers or the short notation used in the UI ("50L", "2.5Cr").
func ReadPlayers(rd io.Reader) ([]store.Player, error) {
	rows, err := csv.NewReader(rd).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	idx := make(map[string]int, len(rows[0]))
	for i, col := range rows[0] {
		idx[col] = i
	}
	if _, ok := idx["player_id"]; !ok {
		return nil, fmt.Errorf("missing player_id column")
	}

	players := make([]store.Player, 0, len(rows)-1)
	for n, row := range rows[1:] {
		p, err := decodeRow(row, idx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		players = append(players, p)
	}
	return players, nil
}

// WritePlayers encodes the player pool as CSV with the canonical header.
func WritePlayers(wr io.Writer, players []store.Player) error {
	w := csv.NewWriter(wr)
	if err := w.Write(columns); err != nil {
		return err
	}
	for _, p := range players {
		if err := w.Write(encodeRow(p)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (r *Repo) Get(_ context.Context, id int64) (*store.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[id]
	if !ok {
		return nil, fmt.Errorf("player %d: %w", id, store.ErrNotFound)
	}
	return &p, nil
}

func (r *Repo) GetByName(_ context.Context, name string) (*store.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.players {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("player %q: %w", name, store.ErrNotFound)
}

func (r *Repo) List(_ context.Context) ([]store.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedLocked(), nil
}

func (r *Repo) ListByStatus(_ context.Context, status store.Status) ([]store.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []store.Player
	for _, p := range r.sortedLocked() {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *Repo) Create(_ context.Context, p *store.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == 0 {
		var max int64
		for id := range r.players {
			if id > max {
				max = id
			}
		}
		p.ID = max + 1
	} else if _, exists := r.players[p.ID]; exists {
		return fmt.Errorf("player %d already exists", p.ID)
	}
	if p.Status == "" {
		p.Status = store.StatusUnsold
	}
	r.players[p.ID] = *p
	return r.flushLocked()
}

func (r *Repo) Update(_ context.Context, id int64, ch store.Changes) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return fmt.Errorf("player %d: %w", id, store.ErrNotFound)
	}
	applyChanges(&p, ch)
	r.players[id] = p
	return r.flushLocked()
}

func (r *Repo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[id]; !ok {
		return fmt.Errorf("player %d: %w", id, store.ErrNotFound)
	}
	delete(r.players, id)
	return r.flushLocked()
}

func (r *Repo) ReplaceAll(_ context.Context, players []store.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := make(map[int64]store.Player, len(players))
	var max int64
	for _, p := range players {
		if p.ID > max {
			max = p.ID
		}
	}
	for i := range players {
		p := players[i]
		if p.ID == 0 {
			max++
			p.ID = max
		}
		if p.Status == "" {
			p.Status = store.StatusUnsold
		}
		next[p.ID] = p
	}
	r.players = next
	return r.flushLocked()
}

// Close flushes any pending state. The file is rewritten on every mutation,
// so this is a no-op kept for the store.Repositories contract.
func (r *Repo) Close() error { return nil }

func (r *Repo) ping(context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, err := os.Stat(r.path)
	return err
}

func (r *Repo) sortedLocked() []store.Player {
	out := make([]store.Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Repo) flushLocked() error {
	tmp := r.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}

	if err := WritePlayers(f, r.sortedLocked()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

func applyChanges(p *store.Player, ch store.Changes) {
	if ch.Name != nil {
		p.Name = *ch.Name
	}
	if ch.Age != nil {
		p.Age = *ch.Age
	}
	if ch.Role != nil {
		p.Role = *ch.Role
	}
	if ch.BattingStyle != nil {
		p.BattingStyle = *ch.BattingStyle
	}
	if ch.BowlingStyle != nil {
		p.BowlingStyle = *ch.BowlingStyle
	}
	if ch.BasePrice != nil {
		p.BasePrice = *ch.BasePrice
	}
	if ch.Team != nil {
		p.Team = *ch.Team
	}
	if ch.Status != nil {
		p.Status = *ch.Status
	}
	if ch.SoldPrice != nil {
		p.SoldPrice = *ch.SoldPrice
	}
	if ch.SoldAt != nil {
		t := *ch.SoldAt
		p.SoldAt = &t
	}
	if ch.ClearSoldAt {
		p.SoldAt = nil
	}
	if ch.Photo != nil {
		p.Photo = *ch.Photo
	}
}

func decodeRow(row []string, idx map[string]int) (store.Player, error) {
	get := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	id, err := strconv.ParseInt(get("player_id"), 10, 64)
	if err != nil {
		return store.Player{}, fmt.Errorf("bad player_id %q", get("player_id"))
	}
	// Organizer sheets carry prices either as plain integers or in the
	// short notation the UI shows ("50L", "2.5Cr").
	if get("base_price") == "" {
		return store.Player{}, fmt.Errorf("bad base_price %q", get("base_price"))
	}
	basePrice, err := currency.Parse(get("base_price"))
	if err != nil {
		return store.Player{}, fmt.Errorf("bad base_price %q", get("base_price"))
	}
	soldPrice := int64(0)
	if s := get("sold_price"); s != "" {
		if soldPrice, err = currency.Parse(s); err != nil {
			return store.Player{}, fmt.Errorf("bad sold_price %q", s)
		}
	}

	p := store.Player{
		ID:           id,
		Name:         get("name"),
		Age:          get("age"),
		Role:         get("role"),
		BattingStyle: get("batting_style"),
		BowlingStyle: get("bowling_style"),
		BasePrice:    basePrice,
		Team:         get("team"),
		Status:       store.Status(get("status")),
		SoldPrice:    soldPrice,
		Photo:        get("photo"),
	}
	if p.Status == "" {
		p.Status = store.StatusUnsold
	}
	if s := get("sold_at"); s != "" {
		t, err := time.Parse(soldAtLayout, s)
		if err != nil {
			return store.Player{}, fmt.Errorf("bad sold_at %q", s)
		}
		p.SoldAt = &t
	}
	return p, nil
}

func encodeRow(p store.Player) []string {
	soldAt := ""
	if p.SoldAt != nil {
		soldAt = p.SoldAt.Format(soldAtLayout)
	}
	return []string{
		strconv.FormatInt(p.ID, 10),
		p.Name,
		p.Age,
		p.Role,
		p.BattingStyle,
		p.BowlingStyle,
		strconv.FormatInt(p.BasePrice, 10),
		p.Team,
		string(p.Status),
		strconv.FormatInt(p.SoldPrice, 10),
		soldAt,
		p.Photo,
	}
}
