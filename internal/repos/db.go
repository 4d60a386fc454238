package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed baseline catalog and accounts (idempotent; safe to run every start)
	if err := seedProducts(db); err != nil {
		return nil, err
	}
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Listings & orders share one table: type distinguishes them.
-- id is the creation time in epoch milliseconds.
CREATE TABLE IF NOT EXISTS listings(
  id INTEGER PRIMARY KEY,
  user_email TEXT NOT NULL DEFAULT 'anon',
  type TEXT NOT NULL DEFAULT 'sell' CHECK (type IN ('sell','buy')),
  product TEXT NOT NULL,
  quantity REAL NOT NULL DEFAULT 0 CHECK (quantity >= 0),
  price REAL NOT NULL DEFAULT 0,
  ts_seconds REAL,
  status TEXT NOT NULL DEFAULT '',
  icon TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  notes TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_listings_product ON listings(LOWER(product));
CREATE INDEX IF NOT EXISTS idx_listings_type    ON listings(type);

-- Admin-curated today's-deals allow-list
CREATE TABLE IF NOT EXISTS today_deals(
  id INTEGER PRIMARY KEY
);

-- Catalog consulted by the product-name fallback adjustment.
-- Historical data stores stock under one of three field names; each gets a
-- nullable column and the first non-null wins.
CREATE TABLE IF NOT EXISTS products(
  name TEXT PRIMARY KEY,
  available INTEGER NOT NULL DEFAULT 0,
  price REAL NOT NULL DEFAULT 0,
  icon TEXT NOT NULL DEFAULT '',
  quantity REAL,
  stock REAL,
  qty REAL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_products_name_nocase ON products(LOWER(name));

-- Users
CREATE TABLE IF NOT EXISTS users(
  email TEXT PRIMARY KEY,
  name TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN'))
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_nocase ON users(LOWER(email));
`
	_, err := db.Exec(schema)
	return err
}

// seedProducts inserts a small starter catalog if none exists.
func seedProducts(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting starter catalog")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO products(name, available, price, icon, quantity) VALUES
	  ('Tomato', 1, 24.0, '/icons/tomato.png', 100),
	  ('Onion',  1, 18.5, '/icons/onion.png',  250),
	  ('Wheat',  1, 21.0, '/icons/wheat.png',  500)`)
	tx.MustExec(`INSERT INTO products(name, available, price, icon, stock) VALUES
	  ('Potato', 1, 15.0, '/icons/potato.png', 300)`)

	return tx.Commit()
}

// seedUsers ensures one farmer account and one admin exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		Email, Name, Role, Hash string
	}
	mk := func(email, name, role, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{Email: email, Name: name, Role: role, Hash: string(h)}
	}

	users := []u{
		mk("farmer@agrimarket.test", "Demo Farmer", "USER", "Passw0rd!"),
		mk("admin@agrimarket.test", "Admin", "ADMIN", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(email,name,password_hash,role)
			VALUES(?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.Email, x.Name, x.Hash, x.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}
