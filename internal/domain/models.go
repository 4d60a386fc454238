package domain

import (
	"strings"
	"time"
)

const (
	TypeSell = "sell"
	TypeBuy  = "buy"
)

// Listing is the single record shape of the shared order/listing store: a
// sell-type record offers a quantity of a product, a buy-type record is an
// immutable purchase. The id is the creation time in epoch milliseconds and
// doubles as a timestamp fallback for legacy records.
type Listing struct {
	ID        int64   `json:"id"`
	User      string  `json:"user"`
	Type      string  `json:"type"`
	Product   string  `json:"product"`
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price"`
	Timestamp Instant `json:"timestamp"`
	Status    string  `json:"status,omitempty"`
	Icon      string  `json:"icon,omitempty"`
	Location  string  `json:"location,omitempty"`
	Notes     string  `json:"notes,omitempty"`
}

// Normalize makes the implicit defaults explicit at the ingestion boundary:
// absent type means sell.
func (l *Listing) Normalize() {
	l.Type = strings.ToLower(strings.TrimSpace(l.Type))
	if l.Type == "" {
		l.Type = TypeSell
	}
	l.Product = strings.TrimSpace(l.Product)
}

func (l Listing) IsBuy() bool { return strings.ToLower(l.Type) == TypeBuy }

// When resolves the record's point in time: the tagged timestamp if known,
// else the ms-epoch id.
func (l Listing) When() (time.Time, bool) {
	if l.Timestamp.Known() {
		return l.Timestamp.Time(), true
	}
	if l.ID > 0 {
		return CoerceEpoch(float64(l.ID)).Time(), true
	}
	return time.Time{}, false
}

// SortKey orders records newest-first in admin views: timestamp seconds,
// falling back to id/1000 when the timestamp is absent.
func (l Listing) SortKey() float64 {
	if l.Timestamp.Known() {
		return l.Timestamp.Seconds()
	}
	if l.ID > 0 {
		return float64(l.ID) / 1000.0
	}
	return 0
}

// ListingUpdate carries the admin-editable fields; nil means leave unchanged.
type ListingUpdate struct {
	Status   *string
	Price    *float64
	Quantity *float64
}

func (u ListingUpdate) Empty() bool {
	return u.Status == nil && u.Price == nil && u.Quantity == nil
}

// PublicListing is the redacted projection exposed on the public marketplace.
type PublicListing struct {
	ID        int64   `json:"id"`
	Type      string  `json:"type"`
	Product   string  `json:"product"`
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price"`
	Timestamp Instant `json:"timestamp"`
	Seller    string  `json:"seller"`
	Icon      string  `json:"icon,omitempty"`
}

// Public projects the listing to its public shape. Seller identities that
// look like emails keep only the local part, with an ellipsis marker so the
// redaction is visible.
func (l Listing) Public() PublicListing {
	seller := l.User
	if at := strings.Index(seller, "@"); at >= 0 {
		seller = seller[:at] + "@…"
	}
	return PublicListing{
		ID:        l.ID,
		Type:      l.Type,
		Product:   l.Product,
		Quantity:  l.Quantity,
		Price:     l.Price,
		Timestamp: l.Timestamp,
		Seller:    seller,
		Icon:      l.Icon,
	}
}

// Product is a catalog entry used by the product-name fallback path of
// inventory adjustment. The three recognized quantity fields mirror what the
// historical data actually contains; first present wins.
type Product struct {
	Name      string   `json:"name"`
	Available bool     `json:"available"`
	Price     float64  `json:"price,omitempty"`
	Icon      string   `json:"icon,omitempty"`
	Quantity  *float64 `json:"quantity,omitempty"`
	Stock     *float64 `json:"stock,omitempty"`
	Qty       *float64 `json:"qty,omitempty"`
}

// StockField returns the first recognized numeric quantity field and its
// value, or ok=false when the product carries none.
func (p *Product) StockField() (name string, val float64, ok bool) {
	switch {
	case p.Quantity != nil:
		return "quantity", *p.Quantity, true
	case p.Stock != nil:
		return "stock", *p.Stock, true
	case p.Qty != nil:
		return "qty", *p.Qty, true
	}
	return "", 0, false
}

// SetStock writes back to whichever recognized field is present. No-op when
// the product has no numeric stock field.
func (p *Product) SetStock(v float64) {
	switch {
	case p.Quantity != nil:
		p.Quantity = &v
	case p.Stock != nil:
		p.Stock = &v
	case p.Qty != nil:
		p.Qty = &v
	}
}
