package repos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"

	"agrimarket/internal/domain"
	"agrimarket/internal/store"
)

// ListingRepo is the SQLite adapter for store.ListingStore.
type ListingRepo struct{ db *sqlx.DB }

func NewListingRepo(db *sqlx.DB) *ListingRepo { return &ListingRepo{db: db} }

type listingRow struct {
	ID       int64           `db:"id"`
	User     string          `db:"user_email"`
	Type     string          `db:"type"`
	Product  string          `db:"product"`
	Quantity float64         `db:"quantity"`
	Price    float64         `db:"price"`
	TS       sql.NullFloat64 `db:"ts_seconds"`
	Status   string          `db:"status"`
	Icon     string          `db:"icon"`
	Location string          `db:"location"`
	Notes    string          `db:"notes"`
}

func (r listingRow) toDomain() domain.Listing {
	l := domain.Listing{
		ID:       r.ID,
		User:     r.User,
		Type:     r.Type,
		Product:  r.Product,
		Quantity: r.Quantity,
		Price:    r.Price,
		Status:   r.Status,
		Icon:     r.Icon,
		Location: r.Location,
		Notes:    r.Notes,
	}
	if r.TS.Valid {
		l.Timestamp = domain.FromSeconds(r.TS.Float64)
	}
	return l
}

const listingCols = `id, user_email, type, product, quantity, price, ts_seconds, status, icon, location, notes`

func (r *ListingRepo) List(ctx context.Context) ([]domain.Listing, error) {
	var rows []listingRow
	err := r.db.SelectContext(ctx, &rows, `SELECT `+listingCols+` FROM listings ORDER BY id`)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Listing, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ListingRepo) Get(ctx context.Context, id int64) (domain.Listing, error) {
	var row listingRow
	err := r.db.GetContext(ctx, &row, `SELECT `+listingCols+` FROM listings WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return domain.Listing{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Listing{}, err
	}
	return row.toDomain(), nil
}

func (r *ListingRepo) Insert(ctx context.Context, l domain.Listing) error {
	ts := sql.NullFloat64{}
	if l.Timestamp.Known() {
		ts = sql.NullFloat64{Float64: l.Timestamp.Seconds(), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO listings(`+listingCols+`)
	  VALUES(?,?,?,?,?,?,?,?,?,?,?)
	`, l.ID, l.User, l.Type, l.Product, l.Quantity, l.Price, ts, l.Status, l.Icon, l.Location, l.Notes)
	return err
}

func (r *ListingRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id)
	return err
}

func (r *ListingRepo) Update(ctx context.Context, id int64, upd domain.ListingUpdate) error {
	if upd.Empty() {
		return nil
	}
	sets := []string{}
	args := []any{}
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *upd.Status)
	}
	if upd.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, *upd.Price)
	}
	if upd.Quantity != nil {
		sets = append(sets, "quantity = ?")
		args = append(args, *upd.Quantity)
	}
	args = append(args, id)
	res, err := r.db.ExecContext(ctx, `UPDATE listings SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ConsumeQuantity decrements a sell listing atomically: a conditional UPDATE
// followed by delete-at-zero inside one transaction, so two concurrent
// purchases can never both observe the pre-decrement quantity.
func (r *ListingRepo) ConsumeQuantity(ctx context.Context, id int64, amount float64) (store.ConsumeResult, error) {
	if amount <= 0 {
		return store.ConsumeResult{}, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return store.ConsumeResult{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE listings
		SET quantity = MAX(0, quantity - ?)
		WHERE id = ? AND type = 'sell'
	`, amount, id)
	if err != nil {
		return store.ConsumeResult{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// No such sell listing; the purchase stands, inventory untouched.
		return store.ConsumeResult{}, tx.Commit()
	}

	var remaining float64
	if err := tx.GetContext(ctx, &remaining, `SELECT quantity FROM listings WHERE id = ?`, id); err != nil {
		return store.ConsumeResult{}, err
	}

	out := store.ConsumeResult{Adjusted: true, Remaining: remaining}
	if remaining <= 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id); err != nil {
			return store.ConsumeResult{}, err
		}
		out.Removed = true
		out.Remaining = 0
	}
	return out, tx.Commit()
}
