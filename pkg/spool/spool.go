// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

// Package spool buffers readings that could not be delivered to the
// archiver, so a flaky network link loses no samples; a later successful
// run drains the backlog.
package spool

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/stanley"
)

// Spool is a SQLite-backed reading buffer.  Use ":memory:" as the path for
// an in-memory spool in tests.
type Spool struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if needed) a spool database.
func Open(path string) (*Spool, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open spool database: %w", err)
	}

	spool := &Spool{db: db}
	if err := spool.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize spool schema: %w", err)
	}
	return spool, nil
}

func (s *Spool) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		series TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		value REAL
	);
	CREATE INDEX IF NOT EXISTS idx_series ON readings(series);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Spool) Close() error {
	return s.db.Close()
}

// Add appends readings to the spool.  NaN values are stored as NULL, since
// SQLite has no NaN.
func (s *Spool) Add(ctx context.Context, readings map[string][]stanley.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("spool add: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for series, seriesReadings := range readings {
		for _, reading := range seriesReadings {
			var value any = reading.Value
			if math.IsNaN(reading.Value) {
				value = nil
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO readings (series, timestamp, value) VALUES (?, ?, ?)",
				series, reading.Time.UnixNano(), value,
			)
			if err != nil {
				return fmt.Errorf("spool add: %w", err)
			}
		}
	}
	return tx.Commit()
}

// Count returns the number of spooled readings.
func (s *Spool) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM readings").Scan(&n)
	return n, err
}

// Drain hands every spooled reading to post and, if post succeeds, removes
// the handed-over rows.  Readings added concurrently with the drain are
// kept for the next one.  Returns the number of drained readings.
func (s *Spool) Drain(
	ctx context.Context,
	post func(context.Context, map[string][]stanley.Reading) error,
) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, series, timestamp, value FROM readings ORDER BY id")
	if err != nil {
		return 0, fmt.Errorf("spool drain: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	readings := make(map[string][]stanley.Reading)
	count := 0
	maxID := int64(0)
	for rows.Next() {
		var id, timestamp int64
		var series string
		var value sql.NullFloat64
		if err := rows.Scan(&id, &series, &timestamp, &value); err != nil {
			return 0, fmt.Errorf("spool drain: %w", err)
		}
		reading := stanley.Reading{
			Time:  time.Unix(0, timestamp),
			Value: math.NaN(),
		}
		if value.Valid {
			reading.Value = value.Float64
		}
		readings[series] = append(readings[series], reading)
		count++
		maxID = id
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("spool drain: %w", err)
	}
	if count == 0 {
		return 0, nil
	}

	if err := post(ctx, readings); err != nil {
		return 0, err
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM readings WHERE id <= ?", maxID); err != nil {
		return 0, fmt.Errorf("spool drain: %w", err)
	}
	return count, nil
}
