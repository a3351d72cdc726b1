// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package alias resolves free-text team names to canonical names.
package alias

import (
	"sort"
)

// Resolver maps names to canonical names using a static table plus custom pairs.
// It is immutable after New and safe for concurrent use.
type Resolver struct {
	index   map[string]string   // key -> canonical display name
	aliases map[string][]string // canonical display name -> aliases
}

// New builds a resolver. Custom entries are indexed before the static table so
// they win on conflicting keys.
func New(static map[string][]string, custom map[string][]string) *Resolver {
	r := &Resolver{
		index:   make(map[string]string),
		aliases: make(map[string][]string),
	}
	tables := []map[string][]string{custom, static}

	// Canonical names first so that every canonical key resolves to itself.
	for _, table := range tables {
		for _, canonical := range sortedKeys(table) {
			k := Key(canonical)
			if k == "" {
				continue
			}
			if _, ok := r.index[k]; !ok {
				r.index[k] = canonical
			}
		}
	}
	for _, table := range tables {
		for _, canonical := range sortedKeys(table) {
			k := Key(canonical)
			if k == "" {
				continue
			}
			winner := r.index[k]
			r.addKey(Strip(k), winner)
			for _, a := range table[canonical] {
				ak := Key(a)
				if ak == "" {
					continue
				}
				r.addKey(ak, winner)
				r.addKey(Strip(ak), winner)
				r.aliases[winner] = appendUnique(r.aliases[winner], a)
			}
			if canonical != winner {
				r.aliases[winner] = appendUnique(r.aliases[winner], canonical)
			}
		}
	}
	return r
}

func (r *Resolver) addKey(k, canonical string) {
	if k == "" {
		return
	}
	if _, ok := r.index[k]; !ok {
		r.index[k] = canonical
	}
}

func (r *Resolver) lookup(name string) (string, bool) {
	k := Key(name)
	if c, ok := r.index[k]; ok {
		return c, true
	}
	if c, ok := r.index[Strip(k)]; ok {
		return c, true
	}
	return "", false
}

// Canonical returns the canonical name for name. Unknown names come back in
// their normalized, stripped form. Canonical(Canonical(x)) == Canonical(x).
func (r *Resolver) Canonical(name string) string {
	if c, ok := r.lookup(name); ok {
		return c
	}
	return Strip(Key(name))
}

// Known reports whether name resolves through the alias table.
func (r *Resolver) Known(name string) bool {
	_, ok := r.lookup(name)
	return ok
}

// Aliases returns the canonical name, its aliases and name itself.
func (r *Resolver) Aliases(name string) []string {
	out := []string{}
	if name != "" {
		out = append(out, name)
	}
	c, ok := r.lookup(name)
	if !ok {
		return out
	}
	out = appendUnique(out, c)
	for _, a := range r.aliases[c] {
		out = appendUnique(out, a)
	}
	return out
}

// Equivalent reports whether two names resolve to the same canonical name.
func (r *Resolver) Equivalent(a, b string) bool {
	return Key(r.Canonical(a)) == Key(r.Canonical(b))
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if Key(x) == Key(v) {
			return list
		}
	}
	return append(list, v)
}
