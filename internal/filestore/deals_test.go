package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"agrimarket/internal/filestore"
)

func TestDeals_AddIdempotent(t *testing.T) {
	ctx := context.Background()
	s := filestore.NewDeals(t.TempDir())

	if err := s.Add(ctx, 42); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(ctx, 42); err != nil {
		t.Fatalf("re-adding must be a no-op success, got %v", err)
	}
	ids, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != 42 {
		t.Fatalf("want [42], got %v", ids)
	}
}

func TestDeals_RemoveAbsent(t *testing.T) {
	ctx := context.Background()
	s := filestore.NewDeals(t.TempDir())

	if err := s.Add(ctx, 7); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(ctx, 999); err != nil {
		t.Fatalf("removing an absent id must be a no-op success, got %v", err)
	}
	if ids, _ := s.List(ctx); len(ids) != 1 || ids[0] != 7 {
		t.Fatalf("allow-list changed by absent remove: %v", ids)
	}

	if err := s.Remove(ctx, 7); err != nil {
		t.Fatal(err)
	}
	if ids, _ := s.List(ctx); len(ids) != 0 {
		t.Fatalf("want empty, got %v", ids)
	}
}

func TestDeals_LegacyStringIDs(t *testing.T) {
	dir := t.TempDir()
	// hand-edited files sometimes quote the ids
	doc := `[1700000000000, "1700000000001", "junk"]`
	if err := os.WriteFile(filepath.Join(dir, "today_deals.json"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	ids, err := filestore.NewDeals(dir).List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != 1700000000000 || ids[1] != 1700000000001 {
		t.Fatalf("want the two numeric ids, got %v", ids)
	}
}
