package services

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"agrimarket/internal/domain"
	"agrimarket/internal/store"
)

// DealsQuery is the reserved marketplace query that switches to the
// today's-deals view, same as the today flag.
const DealsQuery = "deals"

var ErrBadListing = errors.New("product, quantity and price required")

type MarketService struct {
	Listings store.ListingStore
	Deals    store.DealStore
	Now      func() time.Time
}

func NewMarketService(listings store.ListingStore, deals store.DealStore) *MarketService {
	return &MarketService{Listings: listings, Deals: deals, Now: time.Now}
}

// Browse produces the public marketplace view. Pipeline order matters:
// substring filter, then the today/deals narrowing (sourced from the full
// unfiltered set so pinned ids are always considered), then the unconditional
// buy exclusion, then the redacted projection. Store failures degrade to an
// empty view.
func (s *MarketService) Browse(ctx context.Context, q string, today bool) []domain.PublicListing {
	all, err := s.Listings.List(ctx)
	if err != nil {
		log.Printf("[market] browse: list failed: %v", err)
		return []domain.PublicListing{}
	}

	q = strings.ToLower(strings.TrimSpace(q))
	filtered := all
	if q != "" {
		filtered = filtered[:0:0]
		for _, l := range all {
			if strings.Contains(strings.ToLower(l.Product), q) {
				filtered = append(filtered, l)
			}
		}
	}

	if q == DealsQuery || today {
		filtered = s.todays(ctx, all)
	}

	out := make([]domain.PublicListing, 0, len(filtered))
	for _, l := range filtered {
		if l.IsBuy() {
			continue
		}
		out = append(out, l.Public())
	}
	return out
}

// todays narrows to records dated today (server-local) or pinned by an admin,
// deduplicated by id in first-seen order. Records with no derivable timestamp
// and no pin are left out.
func (s *MarketService) todays(ctx context.Context, all []domain.Listing) []domain.Listing {
	marked := map[int64]bool{}
	ids, err := s.Deals.List(ctx)
	if err != nil {
		log.Printf("[market] todays: deals list failed: %v", err)
	}
	for _, id := range ids {
		marked[id] = true
	}

	now := s.Now()
	seen := map[int64]bool{}
	out := []domain.Listing{}
	for _, l := range all {
		when, ok := l.When()
		include := (ok && domain.SameLocalDay(when, now)) || marked[l.ID]
		if !include || seen[l.ID] {
			continue
		}
		seen[l.ID] = true
		out = append(out, l)
	}
	return out
}

type CreateListingInput struct {
	Product  string
	Quantity float64
	Price    float64
	Contact  string
	Icon     string
	Location string
	Notes    string
}

// CreateListing persists a new sell listing. The seller identity is the
// logged-in user when present, else the supplied contact, else anonymous.
func (s *MarketService) CreateListing(ctx context.Context, user string, in CreateListingInput) (domain.Listing, error) {
	in.Product = strings.TrimSpace(in.Product)
	if in.Product == "" || in.Quantity <= 0 || in.Price <= 0 {
		return domain.Listing{}, ErrBadListing
	}

	seller := user
	if seller == "" {
		seller = strings.TrimSpace(in.Contact)
	}
	if seller == "" {
		seller = "anon"
	}

	now := s.Now()
	l := domain.Listing{
		ID:        now.UnixMilli(),
		User:      seller,
		Type:      domain.TypeSell,
		Product:   in.Product,
		Quantity:  in.Quantity,
		Price:     in.Price,
		Timestamp: domain.FromTime(now),
		Icon:      in.Icon,
		Location:  in.Location,
		Notes:     in.Notes,
	}
	l.Normalize()
	if err := s.Listings.Insert(ctx, l); err != nil {
		return domain.Listing{}, err
	}
	return l, nil
}

// ListForUser returns the caller's own records. Non-admins never see their
// buy records; purchases are admin-visible only.
func (s *MarketService) ListForUser(ctx context.Context, user string, admin bool) []domain.Listing {
	all, err := s.Listings.List(ctx)
	if err != nil {
		log.Printf("[market] user orders: list failed: %v", err)
		return []domain.Listing{}
	}
	out := []domain.Listing{}
	for _, l := range all {
		if l.User != user {
			continue
		}
		if !admin && l.IsBuy() {
			continue
		}
		out = append(out, l)
	}
	return out
}

// ListAll is the admin view: optional type filter, newest first by derived
// timestamp (id/1000 when absent), optional limit.
func (s *MarketService) ListAll(ctx context.Context, typ string, limit int) []domain.Listing {
	all, err := s.Listings.List(ctx)
	if err != nil {
		log.Printf("[market] admin orders: list failed: %v", err)
		return []domain.Listing{}
	}

	typ = strings.ToLower(strings.TrimSpace(typ))
	out := all
	if typ == domain.TypeSell || typ == domain.TypeBuy {
		out = out[:0:0]
		for _, l := range all {
			if strings.ToLower(l.Type) == typ {
				out = append(out, l)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].SortKey() > out[j].SortKey() })

	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}
