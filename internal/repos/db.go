package repos

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// OpenDB opens the analytics database and applies the schema.
func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one connection keeps ":memory:" databases shared and serialises writers
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("analytics schema: %w", err)
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA busy_timeout = 5000;

-- Running counters (purchase_clicks)
CREATE TABLE IF NOT EXISTS analytics_totals(
  name  TEXT PRIMARY KEY,
  value INTEGER NOT NULL DEFAULT 0 CHECK (value >= 0)
);

-- Per-product view counters, keyed "<id>_<name>"
CREATE TABLE IF NOT EXISTS product_views(
  view_key   TEXT PRIMARY KEY,
  product_id INTEGER NOT NULL,
  views      INTEGER NOT NULL DEFAULT 0 CHECK (views >= 0),
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_product_views_views   ON product_views(views DESC);
CREATE INDEX IF NOT EXISTS idx_product_views_product ON product_views(product_id);

-- One row per UTC day
CREATE TABLE IF NOT EXISTS daily_stats(
  day       TEXT PRIMARY KEY,
  purchases INTEGER NOT NULL DEFAULT 0,
  views     INTEGER NOT NULL DEFAULT 0
);
`
	_, err := db.Exec(schema)
	return err
}
