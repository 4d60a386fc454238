package filestore

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"agrimarket/internal/domain"
	"agrimarket/internal/store"
)

// Users adapts users.json ({"users":[...]}) to store.UserStore.
type Users struct {
	path string
	mu   sync.Mutex
}

func NewUsers(dir string) *Users {
	return &Users{path: filepath.Join(dir, "users.json")}
}

type usersDoc struct {
	Users []domain.User `json:"users"`
}

func (s *Users) load() (usersDoc, error) {
	var doc usersDoc
	err := readDoc(s.path, &doc)
	return doc, err
}

func (s *Users) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range doc.Users {
		if strings.EqualFold(doc.Users[i].Email, email) {
			u := doc.Users[i]
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Users) Create(ctx context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	for i := range doc.Users {
		if strings.EqualFold(doc.Users[i].Email, u.Email) {
			return fmt.Errorf("user %s already exists", u.Email)
		}
	}
	doc.Users = append(doc.Users, u)
	return writeDoc(s.path, doc)
}
