// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/ManuGH/sportsdvr/internal/model"
)

// MemoryStore implements Store using maps (thread-safe).
type MemoryStore struct {
	mu     sync.RWMutex
	owned  map[string]OwnedTimer
	timers map[string]model.ExistingTimer
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		owned:  make(map[string]OwnedTimer),
		timers: make(map[string]model.ExistingTimer),
	}
}

func (s *MemoryStore) MarkOwned(_ context.Context, t OwnedTimer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owned[t.TimerID] = t
	return nil
}

func (s *MemoryStore) Owned(_ context.Context, timerID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.owned[timerID]
	return ok, nil
}

func (s *MemoryStore) ListOwned(_ context.Context) ([]OwnedTimer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]OwnedTimer, 0, len(s.owned))
	for _, t := range s.owned {
		out = append(out, t)
	}
	sortOwned(out)
	return out, nil
}

func (s *MemoryStore) Forget(_ context.Context, timerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.owned, timerID)
	return nil
}

func (s *MemoryStore) PutTimer(_ context.Context, t model.ExistingTimer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers[t.ID] = t
	return nil
}

func (s *MemoryStore) ListTimers(_ context.Context) ([]model.ExistingTimer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ExistingTimer, 0, len(s.timers))
	for _, t := range s.timers {
		out = append(out, t)
	}
	sortTimers(out)
	return out, nil
}

func (s *MemoryStore) DeleteTimer(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.timers[id]; !ok {
		return ErrNotFound
	}
	delete(s.timers, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func sortOwned(ts []OwnedTimer) {
	sort.Slice(ts, func(i, j int) bool {
		if !ts[i].Start.Equal(ts[j].Start) {
			return ts[i].Start.Before(ts[j].Start)
		}
		return ts[i].TimerID < ts[j].TimerID
	})
}

func sortTimers(ts []model.ExistingTimer) {
	sort.Slice(ts, func(i, j int) bool {
		if !ts[i].Start.Equal(ts[j].Start) {
			return ts[i].Start.Before(ts[j].Start)
		}
		return ts[i].ID < ts[j].ID
	})
}
