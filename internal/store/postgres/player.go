package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/sreeharimv/auction-platform/internal/store"
)

// PlayerRepo implements store.PlayerRepository with sqlx.
type PlayerRepo struct {
	db *sqlx.DB
}

// NewPlayerRepo returns a new PlayerRepo.
func NewPlayerRepo(db *sqlx.DB) *PlayerRepo {
	return &PlayerRepo{db: db}
}

func (r *PlayerRepo) Get(ctx context.Context, id int64) (*store.Player, error) {
	var p store.Player
	err := r.db.GetContext(ctx, &p, `SELECT * FROM players WHERE player_id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player %d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting player by id: %w", err)
	}
	return &p, nil
}

func (r *PlayerRepo) GetByName(ctx context.Context, name string) (*store.Player, error) {
	var p store.Player
	err := r.db.GetContext(ctx, &p, `SELECT * FROM players WHERE name = $1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player %q: %w", name, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting player by name: %w", err)
	}
	return &p, nil
}

func (r *PlayerRepo) List(ctx context.Context) ([]store.Player, error) {
	var players []store.Player
	err := r.db.SelectContext(ctx, &players, `SELECT * FROM players ORDER BY player_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	return players, nil
}

func (r *PlayerRepo) ListByStatus(ctx context.Context, status store.Status) ([]store.Player, error) {
	var players []store.Player
	err := r.db.SelectContext(ctx, &players,
		`SELECT * FROM players WHERE status = $1 ORDER BY player_id ASC`, status)
	if err != nil {
		return nil, fmt.Errorf("listing players by status: %w", err)
	}
	return players, nil
}

func (r *PlayerRepo) Create(ctx context.Context, p *store.Player) error {
	if p.Status == "" {
		p.Status = store.StatusUnsold
	}
	query := `INSERT INTO players (name, age, role, batting_style, bowling_style, base_price, team, status, sold_price, sold_at, photo)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	           RETURNING player_id`
	return r.db.QueryRowContext(ctx, query,
		p.Name, p.Age, p.Role, p.BattingStyle, p.BowlingStyle,
		p.BasePrice, p.Team, p.Status, p.SoldPrice, p.SoldAt, p.Photo,
	).Scan(&p.ID)
}

// Update applies a partial update. Only the columns named in ch are touched,
// so concurrent updates to disjoint fields never clobber each other.
func (r *PlayerRepo) Update(ctx context.Context, id int64, ch store.Changes) error {
	if ch.Empty() {
		return nil
	}

	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if ch.Name != nil {
		add("name", *ch.Name)
	}
	if ch.Age != nil {
		add("age", *ch.Age)
	}
	if ch.Role != nil {
		add("role", *ch.Role)
	}
	if ch.BattingStyle != nil {
		add("batting_style", *ch.BattingStyle)
	}
	if ch.BowlingStyle != nil {
		add("bowling_style", *ch.BowlingStyle)
	}
	if ch.BasePrice != nil {
		add("base_price", *ch.BasePrice)
	}
	if ch.Team != nil {
		add("team", *ch.Team)
	}
	if ch.Status != nil {
		add("status", *ch.Status)
	}
	if ch.SoldPrice != nil {
		add("sold_price", *ch.SoldPrice)
	}
	if ch.SoldAt != nil {
		add("sold_at", *ch.SoldAt)
	} else if ch.ClearSoldAt {
		sets = append(sets, "sold_at = NULL")
	}
	if ch.Photo != nil {
		add("photo", *ch.Photo)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE players SET %s WHERE player_id = $%d`,
		strings.Join(sets, ", "), len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating player: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("player %d: %w", id, store.ErrNotFound)
	}
	return nil
}

func (r *PlayerRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE player_id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting player: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("player %d: %w", id, store.ErrNotFound)
	}
	return nil
}

func (r *PlayerRepo) ReplaceAll(ctx context.Context, players []store.Player) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning import tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM players`); err != nil {
		return fmt.Errorf("clearing players: %w", err)
	}
	for i := range players {
		p := &players[i]
		if p.Status == "" {
			p.Status = store.StatusUnsold
		}
		if p.ID != 0 {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO players (player_id, name, age, role, batting_style, bowling_style, base_price, team, status, sold_price, sold_at, photo)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
				p.ID, p.Name, p.Age, p.Role, p.BattingStyle, p.BowlingStyle,
				p.BasePrice, p.Team, p.Status, p.SoldPrice, p.SoldAt, p.Photo)
		} else {
			err = tx.QueryRowContext(ctx,
				`INSERT INTO players (name, age, role, batting_style, bowling_style, base_price, team, status, sold_price, sold_at, photo)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
				 RETURNING player_id`,
				p.Name, p.Age, p.Role, p.BattingStyle, p.BowlingStyle,
				p.BasePrice, p.Team, p.Status, p.SoldPrice, p.SoldAt, p.Photo,
			).Scan(&p.ID)
		}
		if err != nil {
			return fmt.Errorf("importing player %q: %w", p.Name, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`SELECT setval('players_player_id_seq', (SELECT COALESCE(MAX(player_id), 1) FROM players))`); err != nil {
		return fmt.Errorf("resetting id sequence: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing import: %w", err)
	}
	return nil
}
