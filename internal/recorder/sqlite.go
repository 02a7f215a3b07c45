package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists executed trades to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and ensures the
// schema exists.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS trades (
		id          TEXT PRIMARY KEY,
		symbol      TEXT NOT NULL,
		action      TEXT NOT NULL,
		quantity    INTEGER NOT NULL,
		price       REAL NOT NULL,
		total_value REAL NOT NULL,
		executed_at INTEGER NOT NULL
	)`)
	return err
}

// Record inserts one executed trade.
func (r *SQLiteRecorder) Record(rec *TradeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(
		`INSERT INTO trades (id, symbol, action, quantity, price, total_value, executed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Symbol, rec.Action, rec.Quantity, rec.Price, rec.TotalValue, rec.ExecutedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// Recent returns up to n trades, newest first.
func (r *SQLiteRecorder) Recent(n int) ([]TradeRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(
		`SELECT id, symbol, action, quantity, price, total_value, executed_at
		 FROM trades ORDER BY executed_at DESC, id DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		var ts int64
		if err := rows.Scan(&rec.ID, &rec.Symbol, &rec.Action, &rec.Quantity, &rec.Price, &rec.TotalValue, &ts); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		rec.ExecutedAt = time.Unix(ts, 0).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
