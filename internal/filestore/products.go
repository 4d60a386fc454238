package filestore

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"agrimarket/internal/domain"
)

// stockFields are the recognized quantity field names, in priority order.
var stockFields = []string{"quantity", "stock", "qty"}

// Products adapts products.json ({"products":[...]}) to store.ProductStore.
type Products struct {
	path string
	mu   sync.Mutex
}

func NewProducts(dir string) *Products {
	return &Products{path: filepath.Join(dir, "products.json")}
}

type productsDoc struct {
	Products []map[string]any `json:"products"`
}

func (s *Products) load() (productsDoc, error) {
	var doc productsDoc
	err := readDoc(s.path, &doc)
	return doc, err
}

// productName reads the entry's display name; some legacy entries use
// "product" instead of "name".
func productName(m map[string]any) string {
	if n := asString(m["name"]); n != "" {
		return n
	}
	return asString(m["product"])
}

func decodeProduct(m map[string]any) domain.Product {
	p := domain.Product{
		Name: productName(m),
		Icon: asString(m["icon"]),
	}
	if b, ok := m["available"].(bool); ok {
		p.Available = b
	}
	if v, ok := asFloat(m["price"]); ok {
		p.Price = v
	}
	if v, ok := asFloat(m["quantity"]); ok {
		p.Quantity = &v
	}
	if v, ok := asFloat(m["stock"]); ok {
		p.Stock = &v
	}
	if v, ok := asFloat(m["qty"]); ok {
		p.Qty = &v
	}
	return p
}

func (s *Products) List(ctx context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(doc.Products))
	for _, m := range doc.Products {
		out = append(out, decodeProduct(m))
	}
	return out, nil
}

func (s *Products) ListAvailable(ctx context.Context) ([]domain.Product, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	avail := all[:0]
	for _, p := range all {
		if p.Available {
			avail = append(avail, p)
		}
	}
	return avail, nil
}

func (s *Products) Upsert(ctx context.Context, p domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	entry := map[string]any{
		"name":      p.Name,
		"available": p.Available,
		"price":     p.Price,
	}
	if p.Icon != "" {
		entry["icon"] = p.Icon
	}
	if p.Quantity != nil {
		entry["quantity"] = *p.Quantity
	}
	if p.Stock != nil {
		entry["stock"] = *p.Stock
	}
	if p.Qty != nil {
		entry["qty"] = *p.Qty
	}
	for i, m := range doc.Products {
		if strings.EqualFold(productName(m), p.Name) {
			doc.Products[i] = entry
			return writeDoc(s.path, doc)
		}
	}
	doc.Products = append(doc.Products, entry)
	return writeDoc(s.path, doc)
}

func (s *Products) ConsumeByName(ctx context.Context, name string, amount float64) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" || amount <= 0 {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return false, err
	}
	for _, m := range doc.Products {
		if !strings.EqualFold(productName(m), name) {
			continue
		}
		for _, field := range stockFields {
			cur, ok := asFloat(m[field])
			if !ok {
				continue
			}
			next := cur - amount
			if next < 0 {
				next = 0
			}
			m[field] = next
			return true, writeDoc(s.path, doc)
		}
		// matched by name but no numeric stock field: skip rather than
		// fabricate a value from absent data
		return false, nil
	}
	return false, nil
}
