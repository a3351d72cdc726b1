// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dvr

import (
	"sync"
	"time"

	"github.com/ManuGH/sportsdvr/internal/alias"
	"github.com/ManuGH/sportsdvr/internal/config"
	"github.com/ManuGH/sportsdvr/internal/dedup"
	"github.com/ManuGH/sportsdvr/internal/log"
	"github.com/ManuGH/sportsdvr/internal/schedule"
	"github.com/ManuGH/sportsdvr/internal/sports"
	"github.com/ManuGH/sportsdvr/internal/subscription"
)

// Settings are the scan parameters taken from configuration.
type Settings struct {
	Enabled       bool
	Lookahead     time.Duration
	MaxConcurrent int
	Strategy      schedule.Strategy
	Mode          string
	StartPadding  time.Duration
	EndPadding    time.Duration
}

// Snapshot is an immutable view of everything a scan needs besides the host.
// A scan holds one snapshot for its whole duration.
type Snapshot struct {
	Settings
	Subscriptions []subscription.Subscription
	Tables        *sports.Tables
	Resolver      *alias.Resolver
	Matcher       *subscription.Matcher
	Dedup         *dedup.Deduplicator

	// Problems lists subscription expressions that failed to compile. Those
	// subscriptions are kept and never match.
	Problems []string
}

// Catalog holds the current snapshot and swaps it on configuration changes.
type Catalog struct {
	mu     sync.RWMutex
	tables *sports.Tables
	snap   *Snapshot
}

// NewCatalog returns a catalog over the given tables holding the default
// configuration, which has no subscriptions. A nil tables value uses
// sports.Default.
func NewCatalog(tables *sports.Tables) *Catalog {
	if tables == nil {
		tables = sports.Default()
	}
	c := &Catalog{tables: tables}
	c.snap = c.build(config.Defaults(), schedule.Tiered, nil, nil, nil)
	return c
}

// Apply compiles cfg into a new snapshot and installs it. On error the
// previous snapshot stays in place.
func (c *Catalog) Apply(cfg config.Config) error {
	strategy, err := schedule.ParseStrategy(cfg.Scan.Strategy)
	if err != nil {
		return err
	}
	live, err := subscription.CompileLiveRules(cfg.LiveRules)
	if err != nil {
		return err
	}

	subs, errs := subscription.CompileAll(cfg.Subscriptions)
	problems := make([]string, 0, len(errs))
	for _, e := range errs {
		problems = append(problems, e.Error())
	}

	snap := c.build(cfg, strategy, live, subs, problems)

	logger := log.WithComponent("dvr.catalog")
	for _, p := range problems {
		logger.Warn().Str("problem", p).Msg("subscription expression never matches")
	}

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()

	logger.Info().
		Int("subscriptions", len(snap.Subscriptions)).
		Int("aliases", len(cfg.Aliases)).
		Int("live_rules", len(cfg.LiveRules)).
		Str(log.FieldMode, snap.Mode).
		Str("strategy", string(snap.Strategy)).
		Msg("catalog updated")
	return nil
}

// Snapshot returns the current snapshot.
func (c *Catalog) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

func (c *Catalog) build(cfg config.Config, strategy schedule.Strategy, live *subscription.LiveHeuristic, subs []subscription.Subscription, problems []string) *Snapshot {
	resolver := alias.New(c.tables.TeamAliases(), cfg.Aliases)
	snap := &Snapshot{
		Settings: Settings{
			Enabled:       cfg.Scan.Enabled,
			Lookahead:     cfg.Scan.Lookahead,
			MaxConcurrent: cfg.Scan.MaxConcurrent,
			Strategy:      strategy,
			Mode:          cfg.Scan.Mode,
			StartPadding:  cfg.Host.DefaultStartPadding,
			EndPadding:    cfg.Host.DefaultEndPadding,
		},
		Subscriptions: subscription.Ordered(subs),
		Tables:        c.tables,
		Resolver:      resolver,
		Matcher:       subscription.NewMatcher(resolver, c.tables, subscription.WithLiveHeuristic(live)),
		Dedup:         dedup.New(resolver, c.tables),
		Problems:      problems,
	}
	if snap.Mode == "" {
		snap.Mode = config.ModeIncremental
	}
	if snap.Lookahead <= 0 {
		snap.Lookahead = config.Defaults().Scan.Lookahead
	}
	if snap.MaxConcurrent < config.MinConcurrent {
		snap.MaxConcurrent = config.MinConcurrent
	}
	return snap
}
