// Package ledger records which spooled events have been delivered, so the
// relay never forwards the same event id twice.
package ledger

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // CGO-free SQLite
)

// Delivery is one recorded forward of a spooled event.
type Delivery struct {
	EventID     string
	Target      string
	DeliveredAt time.Time
}

// Ledger is a sqlite-backed delivery record.
type Ledger struct {
	db *sql.DB
}

// Open opens (creating if needed) the ledger database at path.
func Open(path string) (*Ledger, error) {
	// WAL + busy timeout to avoid "database is locked"
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	if _, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS deliveries(
	  event_id     TEXT PRIMARY KEY,
	  target       TEXT NOT NULL,
	  delivered_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_deliveries_at ON deliveries(delivered_at);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create ledger tables: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Delivered reports whether an event id was already forwarded.
func (l *Ledger) Delivered(eventID string) (bool, error) {
	var one int
	err := l.db.QueryRow(`SELECT 1 FROM deliveries WHERE event_id = ?`, eventID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkDelivered records a successful forward. Recording the same event id
// twice is a no-op.
func (l *Ledger) MarkDelivered(eventID, target string) error {
	_, err := l.db.Exec(
		`INSERT OR IGNORE INTO deliveries(event_id, target, delivered_at) VALUES(?,?,?)`,
		eventID, target, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}
	return nil
}

// Recent returns the most recent deliveries, newest first.
func (l *Ledger) Recent(limit int) ([]Delivery, error) {
	rows, err := l.db.Query(
		`SELECT event_id, target, delivered_at FROM deliveries ORDER BY delivered_at DESC, event_id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Delivery
	for rows.Next() {
		var d Delivery
		var at string
		if err := rows.Scan(&d.EventID, &d.Target, &at); err != nil {
			return nil, err
		}
		d.DeliveredAt, _ = time.Parse(time.RFC3339, at)
		out = append(out, d)
	}
	return out, rows.Err()
}
