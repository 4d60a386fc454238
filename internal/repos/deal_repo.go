package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// DealRepo holds the today's-deals allow-list in its own table.
type DealRepo struct{ db *sqlx.DB }

func NewDealRepo(db *sqlx.DB) *DealRepo { return &DealRepo{db: db} }

func (r *DealRepo) List(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, `SELECT id FROM today_deals ORDER BY id`)
	return ids, err
}

// Add is idempotent: marking an already-marked id is a no-op success.
func (r *DealRepo) Add(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO today_deals(id) VALUES (?)
		ON CONFLICT(id) DO NOTHING
	`, id)
	return err
}

// Remove of an absent id is a no-op success, not an error.
func (r *DealRepo) Remove(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM today_deals WHERE id = ?`, id)
	return err
}
