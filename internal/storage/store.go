// Package storage persists trade feeds and simulation results in SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/lehajam/cpamm/internal/sim"
)

// SimStore holds trade feeds and the execution records of completed runs.
type SimStore struct {
	db *sql.DB
}

// NewSimStore opens (or creates) the database at dbPath with WAL mode
// enabled and the schema in place.
func NewSimStore(dbPath string) (*SimStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA cache_size=-2000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS trade_events (
			feed TEXT NOT NULL,
			seq INTEGER NOT NULL,
			trade_date INTEGER NOT NULL,
			price REAL NOT NULL,
			quantity REAL NOT NULL,
			PRIMARY KEY (feed, seq)
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create trade_events table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS exec_records (
			run TEXT NOT NULL,
			seq INTEGER NOT NULL,
			trade_date INTEGER NOT NULL,
			side TEXT NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (run, seq)
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create exec_records table: %w", err)
	}

	return &SimStore{db: db}, nil
}

// SaveEvents stores a trade feed under the given name, replacing any
// feed previously stored under it. One transaction: all rows or none.
func (s *SimStore) SaveEvents(ctx context.Context, feed string, events []sim.TradeEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM trade_events WHERE feed = ?", feed); err != nil {
		return fmt.Errorf("failed to clear feed %s: %w", feed, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO trade_events (feed, seq, trade_date, price, quantity) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, ev := range events {
		if _, err := stmt.ExecContext(ctx, feed, i, ev.TradeDate.UnixMilli(), ev.Price, ev.Quantity); err != nil {
			return fmt.Errorf("failed to insert event %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// LoadEvents returns the feed in its stored order.
func (s *SimStore) LoadEvents(ctx context.Context, feed string) ([]sim.TradeEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT trade_date, price, quantity FROM trade_events WHERE feed = ? ORDER BY seq", feed)
	if err != nil {
		return nil, fmt.Errorf("failed to query feed %s: %w", feed, err)
	}
	defer rows.Close()

	var events []sim.TradeEvent
	for rows.Next() {
		var ms int64
		var ev sim.TradeEvent
		if err := rows.Scan(&ms, &ev.Price, &ev.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.TradeDate = time.UnixMilli(ms).UTC()
		events = append(events, ev)
	}
	return events, rows.Err()
}

// SaveRecords stores the execution trail of a run. Records are written
// in order; the full record goes into the payload as JSON so schema
// changes never lose fields.
func (s *SimStore) SaveRecords(ctx context.Context, run string, records []sim.ExecRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO exec_records (run, seq, trade_date, side, payload) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal record %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, run, i, r.TradeDate.UnixMilli(), string(r.Side), payload); err != nil {
			return fmt.Errorf("failed to insert record %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// LoadRecords returns a run's execution trail in its stored order.
func (s *SimStore) LoadRecords(ctx context.Context, run string) ([]sim.ExecRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT payload FROM exec_records WHERE run = ? ORDER BY seq", run)
	if err != nil {
		return nil, fmt.Errorf("failed to query run %s: %w", run, err)
	}
	defer rows.Close()

	var records []sim.ExecRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		var r sim.ExecRecord
		if err := json.Unmarshal(payload, &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (s *SimStore) Close() error {
	return s.db.Close()
}
