package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"agrimarket/internal/domain"
	"agrimarket/internal/store"
)

var ErrMissingFields = errors.New("missing required order fields")

type OrderService struct {
	Listings store.ListingStore
	Products store.ProductStore
	Now      func() time.Time
}

func NewOrderService(listings store.ListingStore, products store.ProductStore) *OrderService {
	return &OrderService{Listings: listings, Products: products, Now: time.Now}
}

// PlaceOrderInput mirrors the order payload; pointer fields distinguish
// absent from zero so presence validation matches the wire contract.
type PlaceOrderInput struct {
	Type      string
	Product   string
	Quantity  *float64
	Price     *float64
	ListingID int64 // optional; 0 means not supplied
}

// Place persists a new order for the caller and, for buys, reconciles
// inventory afterwards. The adjustment is best-effort: any failure is logged
// and swallowed, and the already-persisted order is returned regardless.
func (s *OrderService) Place(ctx context.Context, user string, in PlaceOrderInput) (domain.Listing, error) {
	if strings.TrimSpace(in.Type) == "" || strings.TrimSpace(in.Product) == "" ||
		in.Quantity == nil || in.Price == nil {
		return domain.Listing{}, ErrMissingFields
	}

	now := s.Now()
	order := domain.Listing{
		ID:        now.UnixMilli(),
		User:      user,
		Type:      in.Type,
		Product:   in.Product,
		Quantity:  *in.Quantity,
		Price:     *in.Price,
		Timestamp: domain.FromTime(now),
	}
	order.Normalize()
	if order.Type != domain.TypeSell && order.Type != domain.TypeBuy {
		return domain.Listing{}, fmt.Errorf("unknown order type %q", in.Type)
	}

	if err := s.Listings.Insert(ctx, order); err != nil {
		return domain.Listing{}, err
	}

	if order.IsBuy() {
		s.adjust(ctx, order, in.ListingID)
	}
	return order, nil
}

// adjust runs the two resolution paths: listing-targeted when a listing id
// was supplied, else the catalog product-name fallback. Never fails the
// order.
func (s *OrderService) adjust(ctx context.Context, order domain.Listing, listingID int64) {
	qty := order.Quantity
	if qty <= 0 {
		return
	}

	if listingID != 0 {
		res, err := s.Listings.ConsumeQuantity(ctx, listingID, qty)
		if err != nil {
			log.Printf("[order] adjust listing %d: %v", listingID, err)
			return
		}
		switch {
		case res.Removed:
			log.Printf("[market] listing %d sold out and removed (bought %g)", listingID, qty)
		case res.Adjusted:
			log.Printf("[market] listing %d quantity reduced by %g -> %g", listingID, qty, res.Remaining)
		default:
			log.Printf("[market] listing %d not adjustable; order %d kept without inventory effect", listingID, order.ID)
		}
		return
	}

	ok, err := s.Products.ConsumeByName(ctx, order.Product, qty)
	if err != nil {
		log.Printf("[order] adjust product %q: %v", order.Product, err)
		return
	}
	if ok {
		log.Printf("[stock] adjusted product %q by -%g", order.Product, qty)
	} else {
		// both resolution paths came up empty; accepted, but visible in logs
		log.Printf("[order] adjust miss: no listing or catalog match for %q (order %d)", order.Product, order.ID)
	}
}
