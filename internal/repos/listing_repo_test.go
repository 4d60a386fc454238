package repos_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"agrimarket/internal/domain"
	"agrimarket/internal/repos"
	"agrimarket/internal/store"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sell(id int64, product string, qty float64) domain.Listing {
	return domain.Listing{
		ID: id, User: "seller@farm.test", Type: domain.TypeSell,
		Product: product, Quantity: qty, Price: 20,
		Timestamp: domain.FromMillis(id),
	}
}

func TestListingRepo_ConsumeQuantity(t *testing.T) {
	ctx := context.Background()
	r := repos.NewListingRepo(memdb(t))

	if err := r.Insert(ctx, sell(1, "Tomato", 10)); err != nil {
		t.Fatal(err)
	}

	res, err := r.ConsumeQuantity(ctx, 1, 4)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Adjusted || res.Removed || res.Remaining != 6 {
		t.Fatalf("want adjusted to 6, got %+v", res)
	}
	if l, err := r.Get(ctx, 1); err != nil || l.Quantity != 6 {
		t.Fatalf("want quantity 6, got %+v err=%v", l, err)
	}

	// exact sell-out removes the listing
	res, err = r.ConsumeQuantity(ctx, 1, 6)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Removed || res.Remaining != 0 {
		t.Fatalf("want removed, got %+v", res)
	}
	if _, err := r.Get(ctx, 1); err != store.ErrNotFound {
		t.Fatalf("want ErrNotFound after sell-out, got %v", err)
	}
}

func TestListingRepo_ConsumeQuantity_NeverNegative(t *testing.T) {
	ctx := context.Background()
	r := repos.NewListingRepo(memdb(t))

	if err := r.Insert(ctx, sell(2, "Onion", 5)); err != nil {
		t.Fatal(err)
	}
	res, err := r.ConsumeQuantity(ctx, 2, 8)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Removed || res.Remaining != 0 {
		t.Fatalf("over-purchase must remove, never go negative: %+v", res)
	}
}

func TestListingRepo_ConsumeQuantity_TolerantMisses(t *testing.T) {
	ctx := context.Background()
	r := repos.NewListingRepo(memdb(t))

	// missing listing: no error, nothing adjusted
	res, err := r.ConsumeQuantity(ctx, 404, 3)
	if err != nil {
		t.Fatal(err)
	}
	if res.Adjusted {
		t.Fatalf("missing listing must not adjust: %+v", res)
	}

	// buy records are never consumed
	buy := sell(3, "Tomato", 2)
	buy.Type = domain.TypeBuy
	if err := r.Insert(ctx, buy); err != nil {
		t.Fatal(err)
	}
	res, err = r.ConsumeQuantity(ctx, 3, 1)
	if err != nil {
		t.Fatal(err)
	}
	if res.Adjusted {
		t.Fatalf("buy record must not be adjusted: %+v", res)
	}
	if l, _ := r.Get(ctx, 3); l.Quantity != 2 {
		t.Fatalf("buy quantity must be untouched, got %v", l.Quantity)
	}
}

func TestListingRepo_Update(t *testing.T) {
	ctx := context.Background()
	r := repos.NewListingRepo(memdb(t))

	if err := r.Insert(ctx, sell(4, "Wheat", 50)); err != nil {
		t.Fatal(err)
	}

	status := "CONFIRMED"
	price := 25.5
	if err := r.Update(ctx, 4, domain.ListingUpdate{Status: &status, Price: &price}); err != nil {
		t.Fatal(err)
	}
	l, err := r.Get(ctx, 4)
	if err != nil {
		t.Fatal(err)
	}
	if l.Status != "CONFIRMED" || l.Price != 25.5 || l.Quantity != 50 {
		t.Fatalf("unexpected record after update: %+v", l)
	}

	if err := r.Update(ctx, 999, domain.ListingUpdate{Status: &status}); err != store.ErrNotFound {
		t.Fatalf("want ErrNotFound for missing id, got %v", err)
	}
	if err := r.Update(ctx, 4, domain.ListingUpdate{}); err != nil {
		t.Fatalf("empty update should be a no-op, got %v", err)
	}
}

func TestListingRepo_TimestampRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := repos.NewListingRepo(memdb(t))

	l := sell(5, "Potato", 7)
	if err := r.Insert(ctx, l); err != nil {
		t.Fatal(err)
	}
	got, err := r.Get(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Timestamp.Known() || got.Timestamp.Seconds() != l.Timestamp.Seconds() {
		t.Fatalf("timestamp lost in round trip: %+v", got.Timestamp)
	}

	// absent timestamp survives as unknown and When() falls back to the id
	noTS := domain.Listing{ID: 1700000000000, Type: domain.TypeSell, Product: "Relic", Quantity: 1}
	if err := r.Insert(ctx, noTS); err != nil {
		t.Fatal(err)
	}
	got, err = r.Get(ctx, 1700000000000)
	if err != nil {
		t.Fatal(err)
	}
	if got.Timestamp.Known() {
		t.Fatal("timestamp should be unknown")
	}
	if _, ok := got.When(); !ok {
		t.Fatal("When should fall back to the id")
	}
}
