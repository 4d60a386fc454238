package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"agrimarket/internal/domain"
	"agrimarket/internal/store"
)

var (
	ErrBadCreds   = errors.New("invalid email or password")
	ErrUserExists = errors.New("account already exists")
)

// AuthService provides the identity/role boundary the marketplace consumes:
// bcrypt accounts over the UserStore port, sessions in an in-process map.
type AuthService struct {
	Users store.UserStore

	mu       sync.Mutex
	sessions map[string]string // sid -> email
}

func NewAuthService(users store.UserStore) *AuthService {
	return &AuthService{Users: users, sessions: map[string]string{}}
}

func (s *AuthService) Register(ctx context.Context, email, name, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if existing, err := s.Users.ByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrUserExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, err
	}
	u := domain.User{Email: email, Name: name, Hash: string(hash), Role: "USER"}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login verifies credentials and opens a session, returning the new sid.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	u, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		return "", nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return "", nil, ErrBadCreds
	}
	sid := uuid.NewString()
	s.mu.Lock()
	s.sessions[sid] = u.Email
	s.mu.Unlock()
	return sid, u, nil
}

func (s *AuthService) Logout(sid string) {
	s.mu.Lock()
	delete(s.sessions, sid)
	s.mu.Unlock()
}

// CurrentUser resolves a session to its account; the role is re-read from
// the store so admin changes apply to live sessions.
func (s *AuthService) CurrentUser(ctx context.Context, sid string) (*domain.User, error) {
	s.mu.Lock()
	email, ok := s.sessions[sid]
	s.mu.Unlock()
	if !ok {
		return nil, store.ErrNotFound
	}
	return s.Users.ByEmail(ctx, email)
}
