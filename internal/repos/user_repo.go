package repos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"agrimarket/internal/domain"
	"agrimarket/internal/store"
)

type UserRepo struct{ db *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `
		SELECT email, name, password_hash, role
		FROM users WHERE LOWER(email) = LOWER(?)
	`, email)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users(email, name, password_hash, role)
		VALUES (?, ?, ?, ?)
	`, u.Email, u.Name, u.Hash, u.Role)
	return err
}
