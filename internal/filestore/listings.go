package filestore

import (
	"context"
	"path/filepath"
	"sync"

	"agrimarket/internal/domain"
	"agrimarket/internal/store"
)

// Listings adapts orders.json to store.ListingStore. All mutations run under
// one lock, which is what makes ConsumeQuantity's read-modify-write safe in
// this backend.
type Listings struct {
	path string
	mu   sync.Mutex
}

func NewListings(dir string) *Listings {
	return &Listings{path: filepath.Join(dir, "orders.json")}
}

func (s *Listings) load() ([]map[string]any, error) {
	var recs []map[string]any
	if err := readDoc(s.path, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// decode maps a loose record onto the typed model. The timestamp chain tries
// the fields legacy records actually carry: timestamp, ts, created_at.
func decode(m map[string]any) domain.Listing {
	l := domain.Listing{
		User:     asString(m["user"]),
		Type:     asString(m["type"]),
		Product:  asString(m["product"]),
		Status:   asString(m["status"]),
		Icon:     asString(m["icon"]),
		Location: asString(m["location"]),
		Notes:    asString(m["notes"]),
	}
	if id, ok := asID(m["id"]); ok {
		l.ID = id
	}
	if q, ok := asFloat(m["quantity"]); ok {
		l.Quantity = q
	}
	if p, ok := asFloat(m["price"]); ok {
		l.Price = p
	}
	for _, key := range []string{"timestamp", "ts", "created_at"} {
		if raw, ok := asFloat(m[key]); ok {
			l.Timestamp = domain.CoerceEpoch(raw)
			break
		}
	}
	l.Normalize()
	return l
}

func encode(l domain.Listing) map[string]any {
	m := map[string]any{
		"id":       l.ID,
		"user":     l.User,
		"type":     l.Type,
		"product":  l.Product,
		"quantity": l.Quantity,
		"price":    l.Price,
	}
	if l.Timestamp.Known() {
		m["timestamp"] = l.Timestamp.Seconds()
	}
	if l.Status != "" {
		m["status"] = l.Status
	}
	if l.Icon != "" {
		m["icon"] = l.Icon
	}
	if l.Location != "" {
		m["location"] = l.Location
	}
	if l.Notes != "" {
		m["notes"] = l.Notes
	}
	return m
}

func (s *Listings) List(ctx context.Context) ([]domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Listing, 0, len(recs))
	for _, m := range recs {
		out = append(out, decode(m))
	}
	return out, nil
}

func (s *Listings) Get(ctx context.Context, id int64) (domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs, err := s.load()
	if err != nil {
		return domain.Listing{}, err
	}
	for _, m := range recs {
		if rid, ok := asID(m["id"]); ok && rid == id {
			return decode(m), nil
		}
	}
	return domain.Listing{}, store.ErrNotFound
}

func (s *Listings) Insert(ctx context.Context, l domain.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs, err := s.load()
	if err != nil {
		return err
	}
	recs = append(recs, encode(l))
	return writeDoc(s.path, recs)
}

func (s *Listings) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs, err := s.load()
	if err != nil {
		return err
	}
	kept := recs[:0]
	for _, m := range recs {
		if rid, ok := asID(m["id"]); ok && rid == id {
			continue
		}
		kept = append(kept, m)
	}
	return writeDoc(s.path, kept)
}

func (s *Listings) Update(ctx context.Context, id int64, upd domain.ListingUpdate) error {
	if upd.Empty() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	recs, err := s.load()
	if err != nil {
		return err
	}
	for _, m := range recs {
		rid, ok := asID(m["id"])
		if !ok || rid != id {
			continue
		}
		if upd.Status != nil {
			m["status"] = *upd.Status
		}
		if upd.Price != nil {
			m["price"] = *upd.Price
		}
		if upd.Quantity != nil {
			m["quantity"] = *upd.Quantity
		}
		return writeDoc(s.path, recs)
	}
	return store.ErrNotFound
}

func (s *Listings) ConsumeQuantity(ctx context.Context, id int64, amount float64) (store.ConsumeResult, error) {
	if amount <= 0 {
		return store.ConsumeResult{}, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	recs, err := s.load()
	if err != nil {
		return store.ConsumeResult{}, err
	}
	for i, m := range recs {
		rid, ok := asID(m["id"])
		if !ok || rid != id {
			continue
		}
		if l := decode(m); l.IsBuy() {
			return store.ConsumeResult{}, nil
		}
		cur, ok := asFloat(m["quantity"])
		if !ok {
			// no numeric quantity to reduce; leave the record alone
			return store.ConsumeResult{}, nil
		}
		next := cur - amount
		if next <= 0 {
			recs = append(recs[:i], recs[i+1:]...)
			return store.ConsumeResult{Adjusted: true, Removed: true}, writeDoc(s.path, recs)
		}
		m["quantity"] = next
		return store.ConsumeResult{Adjusted: true, Remaining: next}, writeDoc(s.path, recs)
	}
	return store.ConsumeResult{}, nil
}
