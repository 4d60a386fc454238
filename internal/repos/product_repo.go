package repos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"agrimarket/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

type productRow struct {
	Name      string          `db:"name"`
	Available bool            `db:"available"`
	Price     float64         `db:"price"`
	Icon      string          `db:"icon"`
	Quantity  sql.NullFloat64 `db:"quantity"`
	Stock     sql.NullFloat64 `db:"stock"`
	Qty       sql.NullFloat64 `db:"qty"`
}

func (r productRow) toDomain() domain.Product {
	p := domain.Product{Name: r.Name, Available: r.Available, Price: r.Price, Icon: r.Icon}
	if r.Quantity.Valid {
		v := r.Quantity.Float64
		p.Quantity = &v
	}
	if r.Stock.Valid {
		v := r.Stock.Float64
		p.Stock = &v
	}
	if r.Qty.Valid {
		v := r.Qty.Float64
		p.Qty = &v
	}
	return p
}

const productCols = `name, available, price, icon, quantity, stock, qty`

func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	return r.list(ctx, `SELECT `+productCols+` FROM products ORDER BY LOWER(name)`)
}

func (r *ProductRepo) ListAvailable(ctx context.Context) ([]domain.Product, error) {
	return r.list(ctx, `SELECT `+productCols+` FROM products WHERE available = 1 ORDER BY LOWER(name)`)
}

func (r *ProductRepo) list(ctx context.Context, q string) ([]domain.Product, error) {
	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ProductRepo) Upsert(ctx context.Context, p domain.Product) error {
	toNull := func(v *float64) sql.NullFloat64 {
		if v == nil {
			return sql.NullFloat64{}
		}
		return sql.NullFloat64{Float64: *v, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products(name, available, price, icon, quantity, stock, qty)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
		  available = excluded.available,
		  price     = excluded.price,
		  icon      = excluded.icon,
		  quantity  = excluded.quantity,
		  stock     = excluded.stock,
		  qty       = excluded.qty
	`, p.Name, p.Available, p.Price, p.Icon, toNull(p.Quantity), toNull(p.Stock), toNull(p.Qty))
	return err
}

// ConsumeByName decrements the first recognized stock field of the matching
// product. Products without a numeric stock field are left alone so we never
// fabricate a quantity from absent data.
func (r *ProductRepo) ConsumeByName(ctx context.Context, name string, amount float64) (bool, error) {
	if amount <= 0 {
		return false, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	var row productRow
	err = tx.GetContext(ctx, &row, `SELECT `+productCols+` FROM products WHERE LOWER(name) = LOWER(?)`, name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	p := row.toDomain()
	field, cur, ok := (&p).StockField()
	if !ok {
		return false, nil
	}
	next := cur - amount
	if next < 0 {
		next = 0
	}
	// field is one of the three fixed column names, never user input
	if _, err := tx.ExecContext(ctx, `UPDATE products SET `+field+` = ? WHERE name = ?`, next, row.Name); err != nil {
		return false, err
	}
	return true, tx.Commit()
}
