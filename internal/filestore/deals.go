package filestore

import (
	"context"
	"path/filepath"
	"sync"
)

// Deals adapts today_deals.json (a bare array of listing ids) to
// store.DealStore.
type Deals struct {
	path string
	mu   sync.Mutex
}

func NewDeals(dir string) *Deals {
	return &Deals{path: filepath.Join(dir, "today_deals.json")}
}

func (s *Deals) load() ([]int64, error) {
	var raw []any
	if err := readDoc(s.path, &raw); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(raw))
	for _, v := range raw {
		if id, ok := asID(v); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *Deals) List(ctx context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Deals) Add(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids, err := s.load()
	if err != nil {
		return err
	}
	for _, x := range ids {
		if x == id {
			return nil
		}
	}
	return writeDoc(s.path, append(ids, id))
}

func (s *Deals) Remove(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids, err := s.load()
	if err != nil {
		return err
	}
	kept := ids[:0]
	for _, x := range ids {
		if x != id {
			kept = append(kept, x)
		}
	}
	return writeDoc(s.path, kept)
}
