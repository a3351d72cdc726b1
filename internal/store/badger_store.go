// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/ManuGH/sportsdvr/internal/model"
)

// BadgerStore keeps both collections in one Badger keyspace:
//   - ledger: key = "own:<timer id>" (JSON OwnedTimer)
//   - timer book: key = "tmr:<timer id>" (JSON ExistingTimer)
type BadgerStore struct {
	db *badger.DB
}

const (
	prefixOwned = "own:"
	prefixTimer = "tmr:"
)

// OpenBadgerStore opens a Badger store in directory path.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error { return s.db.Close() }

func (s *BadgerStore) put(key string, v any) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), buf)
	})
}

func (s *BadgerStore) scan(ctx context.Context, prefix string, fn func(val []byte) error) error {
	p := []byte(prefix)
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := it.Item().Value(fn); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BadgerStore) MarkOwned(_ context.Context, t OwnedTimer) error {
	return s.put(prefixOwned+t.TimerID, t)
}

func (s *BadgerStore) Owned(_ context.Context, timerID string) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(prefixOwned + timerID))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *BadgerStore) ListOwned(ctx context.Context) ([]OwnedTimer, error) {
	var out []OwnedTimer
	err := s.scan(ctx, prefixOwned, func(val []byte) error {
		var t OwnedTimer
		if err := json.Unmarshal(val, &t); err != nil {
			return err
		}
		out = append(out, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortOwned(out)
	return out, nil
}

func (s *BadgerStore) Forget(_ context.Context, timerID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(prefixOwned + timerID))
	})
}

func (s *BadgerStore) PutTimer(_ context.Context, t model.ExistingTimer) error {
	return s.put(prefixTimer+t.ID, t)
}

func (s *BadgerStore) ListTimers(ctx context.Context) ([]model.ExistingTimer, error) {
	var out []model.ExistingTimer
	err := s.scan(ctx, prefixTimer, func(val []byte) error {
		var t model.ExistingTimer
		if err := json.Unmarshal(val, &t); err != nil {
			return err
		}
		out = append(out, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortTimers(out)
	return out, nil
}

func (s *BadgerStore) DeleteTimer(_ context.Context, id string) error {
	key := []byte(prefixTimer + id)
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Delete(key)
	})
}
