package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"dotmini-mcx/domain/history"
)

func TestMemoryRunRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRunRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		run := &history.Run{ID: id, StartedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := repo.Insert(ctx, run); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	got, err := repo.FindByID(ctx, "b")
	if err != nil || got == nil || got.ID != "b" {
		t.Fatalf("FindByID(b) = %v, %v", got, err)
	}

	missing, err := repo.FindByID(ctx, "zzz")
	if err != nil || missing != nil {
		t.Errorf("FindByID(missing) = %v, %v, want nil, nil", missing, err)
	}

	recent, err := repo.FindRecent(ctx, 2)
	if err != nil {
		t.Fatalf("FindRecent() error = %v", err)
	}
	if len(recent) != 2 || recent[0].ID != "c" || recent[1].ID != "b" {
		t.Errorf("FindRecent(2) = %v", recent)
	}

	if err := repo.Delete(ctx, "a"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, "a"); !errors.Is(err, history.ErrRunNotFound) {
		t.Errorf("Delete() twice error = %v, want %v", err, history.ErrRunNotFound)
	}
}

func TestMemoryRunRepository_StoresCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRunRepository()

	run := &history.Run{ID: "a", ClassCounts: map[string]int{"cat": 1}}
	_ = repo.Insert(ctx, run)
	run.ClassCounts["cat"] = 100

	got, _ := repo.FindByID(ctx, "a")
	if got.ClassCounts["cat"] != 1 {
		t.Errorf("stored run was mutated through caller's pointer")
	}
}
