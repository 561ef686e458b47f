package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/okian/fishery/internal/domain/model"
)

func coelacanth() model.FishRecord {
	return model.FishRecord{Name: "Coelacanth", Sell: 15000, Shadow: "huge", Where: "sea (raining)"}
}

func TestMemoryStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", list)
	}

	if err := store.Create(ctx, coelacanth()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list, _ = store.List(ctx)
	if len(list) != 1 {
		t.Fatalf("expected 1 record, got %d", len(list))
	}
	got := list[0]
	if got.ID == 0 {
		t.Error("expected store-assigned id")
	}
	if got.Name != "Coelacanth" || got.Sell != 15000 || got.Shadow != "huge" || got.Where != "sea (raining)" {
		t.Errorf("unexpected record %#v", got)
	}

	got.Sell = 12000
	if err := store.Update(ctx, got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list, _ = store.List(ctx)
	if list[0].Sell != 12000 || list[0].ID != got.ID {
		t.Errorf("expected updated sell 12000 with same id, got %#v", list[0])
	}

	if err := store.Delete(ctx, got.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}
}

func TestMemoryStore_IgnoresClientID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	rec := coelacanth()
	rec.ID = 999
	if err := store.Create(ctx, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Create(ctx, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list, _ := store.List(ctx)
	if len(list) != 2 {
		t.Fatalf("expected 2 records, got %d", len(list))
	}
	if list[0].ID == 999 || list[1].ID == 999 || list[0].ID == list[1].ID {
		t.Errorf("expected distinct store-assigned ids, got %d and %d", list[0].ID, list[1].ID)
	}
}

func TestMemoryStore_UnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(WithSeed(coelacanth()))

	if err := store.Update(ctx, model.FishRecord{ID: 42, Name: "Ghost", Sell: 1, Shadow: "tiny", Where: "nowhere"}); err != nil {
		t.Fatalf("update of unknown id should succeed, got %v", err)
	}
	if err := store.Delete(ctx, 42); err != nil {
		t.Fatalf("delete of unknown id should succeed, got %v", err)
	}

	list, _ := store.List(ctx)
	if len(list) != 1 || list[0].Name != "Coelacanth" {
		t.Errorf("store should be unchanged, got %#v", list)
	}
}

func TestMemoryStore_OrderedByName(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	names := []string{"Tuna", "Bitterling", "Arowana", "Koi", "Sea bass", "Barreleye", "Dab", "Goldfish", "Bass"}
	rng := rand.New(rand.NewSource(7))
	rng.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })

	for i, name := range names {
		rec := model.FishRecord{Name: name, Sell: int64(100 + i), Shadow: "medium", Where: "river"}
		if err := store.Create(ctx, rec); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	list, _ := store.List(ctx)
	if len(list) != len(names) {
		t.Fatalf("expected %d records, got %d", len(names), len(list))
	}
	if !sort.SliceIsSorted(list, func(i, j int) bool { return model.Less(list[i], list[j]) }) {
		t.Errorf("list is not ordered by name: %v", list)
	}
}

func TestMemoryStore_RenameMovesRecord(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(
		WithSeed(
			model.FishRecord{Name: "Angelfish", Sell: 3000, Shadow: "small", Where: "river"},
			model.FishRecord{Name: "Carp", Sell: 300, Shadow: "large", Where: "pond"},
		),
	)

	list, _ := store.List(ctx)
	first := list[0]
	first.Name = "Zebra turkeyfish"
	if err := store.Update(ctx, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list, _ = store.List(ctx)
	if list[0].Name != "Carp" || list[1].Name != "Zebra turkeyfish" {
		t.Errorf("renamed record should move to the end, got %v", list)
	}
	if list[1].ID != first.ID {
		t.Errorf("id must not change on update, got %d want %d", list[1].ID, first.ID)
	}
	if store.Count(ctx) != 2 {
		t.Errorf("expected count 2, got %d", store.Count(ctx))
	}
}

func TestMemoryStore_DuplicateNames(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for i := 0; i < 5; i++ {
		if err := store.Create(ctx, model.FishRecord{Name: "Bass", Sell: int64(400 + i), Shadow: "large", Where: "sea"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	list, _ := store.List(ctx)
	if err := store.Delete(ctx, list[2].ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list, _ = store.List(ctx)
	if len(list) != 4 {
		t.Fatalf("expected 4 records, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].ID >= list[i].ID {
			t.Errorf("equal names must be ordered by id, got %v", list)
		}
	}
}

func TestMemoryStore_Closed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := store.List(ctx)
	if !errors.Is(err, ErrClosed) || !errors.Is(err, ErrStore) {
		t.Fatalf("expected ErrClosed and ErrStore, got %v", err)
	}
	var se *StoreError
	if !errors.As(err, &se) || se.Op != "list" {
		t.Fatalf("expected *StoreError for list, got %#v", err)
	}
	if err := store.Create(ctx, coelacanth()); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed on create, got %v", err)
	}
	if err := store.Ping(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed on ping, got %v", err)
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				rec := model.FishRecord{Name: fmt.Sprintf("fish-%02d-%02d", i, w), Sell: 1, Shadow: "tiny", Where: "pond"}
				if err := store.Create(ctx, rec); err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				if _, err := store.List(ctx); err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	list, _ := store.List(ctx)
	if len(list) != 400 {
		t.Fatalf("expected 400 records, got %d", len(list))
	}
	seen := make(map[int64]bool, len(list))
	for _, rec := range list {
		if seen[rec.ID] {
			t.Fatalf("duplicate id %d", rec.ID)
		}
		seen[rec.ID] = true
	}
}

func BenchmarkMemoryStore_Create(b *testing.B) {
	ctx := context.Background()
	store := NewMemoryStore()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.Create(ctx, model.FishRecord{Name: fmt.Sprintf("fish-%d", i), Sell: 1, Shadow: "tiny", Where: "pond"})
	}
}

func BenchmarkMemoryStore_List(b *testing.B) {
	ctx := context.Background()
	store := NewMemoryStore()
	for i := 0; i < 1000; i++ {
		_ = store.Create(ctx, model.FishRecord{Name: fmt.Sprintf("fish-%d", i), Sell: 1, Shadow: "tiny", Where: "pond"})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.List(ctx)
	}
}
