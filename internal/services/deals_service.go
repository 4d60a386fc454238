package services

import (
	"context"
	"log"

	"agrimarket/internal/domain"
	"agrimarket/internal/store"
)

// DealsService maintains the admin-curated allow-list of listing ids pinned
// into the today's-deals view.
type DealsService struct {
	Deals    store.DealStore
	Listings store.ListingStore
}

func NewDealsService(deals store.DealStore, listings store.ListingStore) *DealsService {
	return &DealsService{Deals: deals, Listings: listings}
}

// DealItem is the denormalized listing info returned alongside the id list.
type DealItem struct {
	ID        int64          `json:"id"`
	Product   string         `json:"product"`
	Quantity  float64        `json:"quantity"`
	Price     float64        `json:"price"`
	Timestamp domain.Instant `json:"timestamp"`
	Type      string         `json:"type"`
}

// List returns the current ids plus info for those that still resolve to a
// listing. Stale ids pointing at deleted listings are filtered here, never
// cleaned up eagerly.
func (s *DealsService) List(ctx context.Context) ([]int64, []DealItem, error) {
	ids, err := s.Deals.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	marked := map[int64]bool{}
	for _, id := range ids {
		marked[id] = true
	}

	items := []DealItem{}
	listings, err := s.Listings.List(ctx)
	if err != nil {
		// the id list is still useful on its own
		log.Printf("[deals] denormalize: list failed: %v", err)
		return ids, items, nil
	}
	for _, l := range listings {
		if !marked[l.ID] {
			continue
		}
		items = append(items, DealItem{
			ID:        l.ID,
			Product:   l.Product,
			Quantity:  l.Quantity,
			Price:     l.Price,
			Timestamp: l.Timestamp,
			Type:      l.Type,
		})
	}
	return ids, items, nil
}

// Add pins a listing id; already-pinned ids are a no-op success.
func (s *DealsService) Add(ctx context.Context, id int64) ([]int64, error) {
	if err := s.Deals.Add(ctx, id); err != nil {
		return nil, err
	}
	return s.Deals.List(ctx)
}

// Remove unpins an id; absent ids are a no-op success.
func (s *DealsService) Remove(ctx context.Context, id int64) ([]int64, error) {
	if err := s.Deals.Remove(ctx, id); err != nil {
		return nil, err
	}
	return s.Deals.List(ctx)
}
