package core

import "github.com/JonMunkholm/bulkbridge/internal/store"

// registry.go holds the classification table from raw outcome type to
// Strategy. The table is a package-level literal, read-only after process
// start, so it is safe to share across concurrent callers without locking.
//
// Supporting a new raw outcome shape means adding one Strategy
// implementation and one entry here; nothing else changes.

// registration pairs a shape test with the strategy that handles it.
type registration struct {
	matches  func(raw any) bool
	strategy Strategy
}

// strategyTable is checked in order; the first match wins. Precedence:
// save, upsert, delete. The generic fallback is not listed — resolve
// returns it when nothing matches, which makes resolution total.
var strategyTable = []registration{
	{matchesSave, saveStrategy{}},
	{matchesUpsert, upsertStrategy{}},
	{matchesDelete, deleteStrategy{}},
}

// resolve returns the strategy for a raw outcome. It never fails: outcomes
// of unrecognized shape resolve to the generic fallback.
func resolve(raw any) Strategy {
	for _, reg := range strategyTable {
		if reg.matches(raw) {
			return reg.strategy
		}
	}
	return genericStrategy{}
}

func matchesSave(raw any) bool {
	switch raw.(type) {
	case store.SaveOutcome, *store.SaveOutcome:
		return true
	}
	return false
}

func matchesUpsert(raw any) bool {
	switch raw.(type) {
	case store.UpsertOutcome, *store.UpsertOutcome:
		return true
	}
	return false
}

func matchesDelete(raw any) bool {
	switch raw.(type) {
	case store.DeleteOutcome, *store.DeleteOutcome:
		return true
	}
	return false
}
