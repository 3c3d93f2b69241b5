package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sreeharimv/auction-platform/internal/store"
	"github.com/sreeharimv/auction-platform/internal/store/postgres"
)

func TestPlayerRepo_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := postgres.NewPlayerRepo(db)
	ctx := context.Background()

	p := &store.Player{
		Name:         "Virat",
		Age:          "30",
		Role:         "Batsman",
		BattingStyle: "RHB",
		BasePrice:    500_000,
	}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("expected ID to be set after Create")
	}
	if p.Status != store.StatusUnsold {
		t.Errorf("Status = %q, want unsold default", p.Status)
	}

	got, err := repo.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Virat" || got.Role != "Batsman" {
		t.Errorf("Get = %+v", got)
	}

	got2, err := repo.GetByName(ctx, "Virat")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if got2.ID != p.ID {
		t.Errorf("GetByName id = %d, want %d", got2.ID, p.ID)
	}

	if _, err := repo.Get(ctx, 99_999); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get(unknown) error = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetByName(ctx, "Nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetByName(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestPlayerRepo_ListByStatus(t *testing.T) {
	db := newTestDB(t)
	repo := postgres.NewPlayerRepo(db)
	ctx := context.Background()

	for _, name := range []string{"Alpha", "Bravo", "Charlie"} {
		if err := repo.Create(ctx, &store.Player{Name: name, BasePrice: 500_000}); err != nil {
			t.Fatalf("Create(%s): %v", name, err)
		}
	}
	bravo, _ := repo.GetByName(ctx, "Bravo")
	if err := repo.Update(ctx, bravo.ID, store.Changes{
		Team:   store.Str("Palace Titans"),
		Status: store.Stat(store.StatusCaptain),
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	unsold, err := repo.ListByStatus(ctx, store.StatusUnsold)
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(unsold) != 2 {
		t.Errorf("unsold count = %d, want 2", len(unsold))
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("List count = %d, want 3", len(all))
	}
	// Ordered by id ascending.
	if all[0].Name != "Alpha" {
		t.Errorf("first player = %q, want Alpha", all[0].Name)
	}
}

func TestPlayerRepo_UpdateSaleFields(t *testing.T) {
	db := newTestDB(t)
	repo := postgres.NewPlayerRepo(db)
	ctx := context.Background()

	p := &store.Player{Name: "Rohit", BasePrice: 500_000}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	soldAt := time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)
	err := repo.Update(ctx, p.ID, store.Changes{
		Team:      store.Str("Palace Tuskers"),
		Status:    store.Stat(store.StatusSold),
		SoldPrice: store.Int64(1_250_000),
		SoldAt:    &soldAt,
	})
	if err != nil {
		t.Fatalf("Update(sale): %v", err)
	}

	got, _ := repo.Get(ctx, p.ID)
	if got.Status != store.StatusSold || got.Team != "Palace Tuskers" || got.SoldPrice != 1_250_000 {
		t.Errorf("after sale: %+v", got)
	}
	if got.SoldAt == nil || !got.SoldAt.UTC().Equal(soldAt) {
		t.Errorf("SoldAt = %v, want %v", got.SoldAt, soldAt)
	}
	// Untouched columns survive the partial update.
	if got.Name != "Rohit" || got.BasePrice != 500_000 {
		t.Errorf("partial update clobbered other fields: %+v", got)
	}

	// Reverting clears the timestamp back to NULL.
	err = repo.Update(ctx, p.ID, store.Changes{
		Team:        store.Str(""),
		Status:      store.Stat(store.StatusUnsold),
		SoldPrice:   store.Int64(0),
		ClearSoldAt: true,
	})
	if err != nil {
		t.Fatalf("Update(revert): %v", err)
	}
	got, _ = repo.Get(ctx, p.ID)
	if got.SoldAt != nil {
		t.Errorf("SoldAt = %v, want nil after revert", got.SoldAt)
	}

	if err := repo.Update(ctx, 99_999, store.Changes{SoldPrice: store.Int64(1)}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Update(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestPlayerRepo_DeleteAndReplaceAll(t *testing.T) {
	db := newTestDB(t)
	repo := postgres.NewPlayerRepo(db)
	ctx := context.Background()

	p := &store.Player{Name: "Temp", BasePrice: 500_000}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, p.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Delete(again) error = %v, want ErrNotFound", err)
	}

	err := repo.ReplaceAll(ctx, []store.Player{
		{ID: 100, Name: "Fixed", BasePrice: 500_000},
		{Name: "Fresh", BasePrice: 500_000},
	})
	if err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	all, _ := repo.List(ctx)
	if len(all) != 2 {
		t.Fatalf("after ReplaceAll: %d players, want 2", len(all))
	}

	// The sequence is bumped past imported ids so new inserts do not
	// collide.
	next := &store.Player{Name: "After", BasePrice: 500_000}
	if err := repo.Create(ctx, next); err != nil {
		t.Fatalf("Create after import: %v", err)
	}
	if next.ID <= 100 {
		t.Errorf("new id = %d, want above the imported ids", next.ID)
	}
}
