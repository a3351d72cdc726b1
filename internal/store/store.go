// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package store persists the owned-timer ledger and the local timer book.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/sportsdvr/internal/model"
)

// ErrNotFound is returned when a timer does not exist in the book.
var ErrNotFound = errors.New("store: not found")

// OwnedTimer records a host timer created by a scan.
type OwnedTimer struct {
	TimerID        string    `json:"timer_id"`
	ProgramID      string    `json:"program_id"`
	SubscriptionID string    `json:"subscription_id"`
	ChannelID      string    `json:"channel_id"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	CreatedAt      time.Time `json:"created_at"`
}

// Ledger tracks which host timers belong to this service.
type Ledger interface {
	MarkOwned(ctx context.Context, t OwnedTimer) error
	Owned(ctx context.Context, timerID string) (bool, error)
	ListOwned(ctx context.Context) ([]OwnedTimer, error)
	Forget(ctx context.Context, timerID string) error
}

// TimerBook stores timers for hosts without their own timer list.
type TimerBook interface {
	PutTimer(ctx context.Context, t model.ExistingTimer) error
	ListTimers(ctx context.Context) ([]model.ExistingTimer, error)
	DeleteTimer(ctx context.Context, id string) error
}

// Store combines both concerns behind one backend.
type Store interface {
	Ledger
	TimerBook
	Close() error
}

// Backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Open creates a Store for the configured backend.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case "", BackendSQLite:
		if path == "" {
			return nil, fmt.Errorf("store: sqlite backend requires a path")
		}
		s, err := NewSqliteStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendBadger:
		if path == "" {
			return nil, fmt.Errorf("store: badger backend requires a path")
		}
		s, err := OpenBadgerStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", backend)
	}
}
