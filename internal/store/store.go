// Package store defines the storage ports the marketplace logic runs
// against. Two interchangeable adapter sets exist: internal/repos (SQLite)
// and internal/filestore (flat JSON documents). The services never know which
// backend is active.
package store

import (
	"context"
	"errors"

	"agrimarket/internal/domain"
)

var ErrNotFound = errors.New("record not found")

// ConsumeResult reports the outcome of consuming quantity from a listing.
// Adjusted=false with a nil error means the listing could not be located or
// carried no usable quantity; callers treat that as a tolerated miss, not a
// failure.
type ConsumeResult struct {
	Adjusted  bool
	Removed   bool
	Remaining float64
}

// ListingStore is the shared order/listing collection. ConsumeQuantity must
// be atomic within the backend: two concurrent purchases of the same listing
// may never both observe the pre-decrement quantity.
type ListingStore interface {
	List(ctx context.Context) ([]domain.Listing, error)
	Get(ctx context.Context, id int64) (domain.Listing, error)
	Insert(ctx context.Context, l domain.Listing) error
	Delete(ctx context.Context, id int64) error
	Update(ctx context.Context, id int64, upd domain.ListingUpdate) error

	// ConsumeQuantity decrements a sell listing's quantity by amount,
	// deleting the listing when it reaches zero. Buy records, missing
	// records and records without a numeric quantity are left untouched.
	ConsumeQuantity(ctx context.Context, id int64, amount float64) (ConsumeResult, error)
}

// ProductStore is the catalog consulted by the product-name fallback path.
type ProductStore interface {
	List(ctx context.Context) ([]domain.Product, error)
	ListAvailable(ctx context.Context) ([]domain.Product, error)
	Upsert(ctx context.Context, p domain.Product) error

	// ConsumeByName decrements the first recognized stock field of the
	// product matching name case-insensitively, clamping at zero. Returns
	// false when no product matched or the match has no numeric stock
	// field (in which case nothing is written).
	ConsumeByName(ctx context.Context, name string, amount float64) (bool, error)
}

// DealStore holds the admin-curated allow-list of listing ids pinned into the
// today's-deals view. Add is idempotent; Remove of an absent id is a no-op.
type DealStore interface {
	List(ctx context.Context) ([]int64, error)
	Add(ctx context.Context, id int64) error
	Remove(ctx context.Context, id int64) error
}

type UserStore interface {
	ByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u domain.User) error
}
