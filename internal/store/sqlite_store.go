// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ManuGH/sportsdvr/internal/model"
	"github.com/ManuGH/sportsdvr/internal/persistence/sqlite"
)

var migrations = []sqlite.Migration{
	func(tx *sql.Tx) error {
		_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS owned_timers (
			timer_id TEXT PRIMARY KEY,
			program_id TEXT NOT NULL,
			subscription_id TEXT NOT NULL,
			channel_id TEXT NOT NULL,
			start_ms INTEGER NOT NULL,
			end_ms INTEGER NOT NULL,
			created_at_ms INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_owned_start ON owned_timers(start_ms);

		CREATE TABLE IF NOT EXISTS timers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			channel_id TEXT NOT NULL,
			start_ms INTEGER NOT NULL,
			end_ms INTEGER NOT NULL,
			overview TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_timers_start ON timers(start_ms);
		`)
		return err
	},
}

// SqliteStore implements Store using SQLite.
type SqliteStore struct {
	DB *sql.DB
}

// NewSqliteStore opens (and migrates) a SQLite store at dbPath.
func NewSqliteStore(dbPath string) (*SqliteStore, error) {
	db, err := sqlite.Open(dbPath, sqlite.DefaultConfig())
	if err != nil {
		return nil, err
	}
	if err := sqlite.Migrate(db, migrations); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migration failed: %w", err)
	}
	return &SqliteStore{DB: db}, nil
}

func (s *SqliteStore) Close() error {
	return s.DB.Close()
}

func (s *SqliteStore) MarkOwned(ctx context.Context, t OwnedTimer) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO owned_timers (timer_id, program_id, subscription_id, channel_id, start_ms, end_ms, created_at_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(timer_id) DO UPDATE SET
			program_id = excluded.program_id,
			subscription_id = excluded.subscription_id,
			channel_id = excluded.channel_id,
			start_ms = excluded.start_ms,
			end_ms = excluded.end_ms,
			created_at_ms = excluded.created_at_ms`,
		t.TimerID, t.ProgramID, t.SubscriptionID, t.ChannelID,
		t.Start.UnixMilli(), t.End.UnixMilli(), t.CreatedAt.UnixMilli())
	return err
}

func (s *SqliteStore) Owned(ctx context.Context, timerID string) (bool, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(1) FROM owned_timers WHERE timer_id = ?`, timerID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SqliteStore) ListOwned(ctx context.Context) ([]OwnedTimer, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT timer_id, program_id, subscription_id, channel_id, start_ms, end_ms, created_at_ms
		FROM owned_timers ORDER BY start_ms, timer_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OwnedTimer
	for rows.Next() {
		var t OwnedTimer
		var start, end, created int64
		if err := rows.Scan(&t.TimerID, &t.ProgramID, &t.SubscriptionID, &t.ChannelID, &start, &end, &created); err != nil {
			return nil, err
		}
		t.Start, t.End, t.CreatedAt = fromMillis(start), fromMillis(end), fromMillis(created)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SqliteStore) Forget(ctx context.Context, timerID string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM owned_timers WHERE timer_id = ?`, timerID)
	return err
}

func (s *SqliteStore) PutTimer(ctx context.Context, t model.ExistingTimer) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO timers (id, name, channel_id, start_ms, end_ms, overview)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			channel_id = excluded.channel_id,
			start_ms = excluded.start_ms,
			end_ms = excluded.end_ms,
			overview = excluded.overview`,
		t.ID, t.Name, t.ChannelID, t.Start.UnixMilli(), t.End.UnixMilli(), t.Overview)
	return err
}

func (s *SqliteStore) ListTimers(ctx context.Context) ([]model.ExistingTimer, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, channel_id, start_ms, end_ms, overview
		FROM timers ORDER BY start_ms, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ExistingTimer
	for rows.Next() {
		var t model.ExistingTimer
		var start, end int64
		if err := rows.Scan(&t.ID, &t.Name, &t.ChannelID, &start, &end, &t.Overview); err != nil {
			return nil, err
		}
		t.Start, t.End = fromMillis(start), fromMillis(end)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SqliteStore) DeleteTimer(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM timers WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
