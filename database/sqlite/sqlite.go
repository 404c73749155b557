package sqlite

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS kv_store (
		store_key  TEXT PRIMARY KEY,
		blob_value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)
`

// New opens the local store at SQLITE_PATH (default ./storage/avril.db).
func New() (*sqlx.DB, error) {
	path := os.Getenv("SQLITE_PATH")
	if path == "" {
		path = "./storage/avril.db"
	}
	return Open(path)
}

func Open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}

	// One writer keeps ":memory:" databases shared and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	return db, nil
}
