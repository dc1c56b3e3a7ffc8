// internal/storage/snapshot.go
package storage

import (
	"github.com/hvmai/mongolens/internal/config"
)

// Snapshot is everything loaded from disk at startup: merged config,
// saved specs and a FIFO queue of warnings produced while loading.
type Snapshot struct {
	Config       *config.Config
	Queries      []SavedQuery
	Aggregations []SavedAggregation
	Warnings     []string
}

// Load builds the startup snapshot. Per-file spec failures become queued
// warnings (already redacted); only config errors abort the load.
func Load(paths config.Paths) (*Snapshot, error) {
	cfg, err := config.Load(paths)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Config: cfg}

	queries, warns, err := LoadSavedQueries(paths.QueriesDir)
	if err != nil {
		snap.PushWarning(config.Redact("saved queries unavailable: " + err.Error()))
	}
	snap.Queries = queries
	for _, w := range warns {
		snap.PushWarning(config.Redact(w))
	}

	aggs, warns, err := LoadSavedAggregations(paths.AggregationsDir)
	if err != nil {
		snap.PushWarning(config.Redact("saved aggregations unavailable: " + err.Error()))
	}
	snap.Aggregations = aggs
	for _, w := range warns {
		snap.PushWarning(config.Redact(w))
	}

	return snap, nil
}

// PushWarning appends a warning to the queue.
func (s *Snapshot) PushWarning(msg string) {
	if msg == "" {
		return
	}
	s.Warnings = append(s.Warnings, msg)
}

// PeekWarning returns the oldest queued warning, if any.
func (s *Snapshot) PeekWarning() (string, bool) {
	if len(s.Warnings) == 0 {
		return "", false
	}
	return s.Warnings[0], true
}

// PopWarning discards the oldest queued warning.
func (s *Snapshot) PopWarning() {
	if len(s.Warnings) > 0 {
		s.Warnings = s.Warnings[1:]
	}
}

// UpsertQuery updates the in-memory registry after a successful write.
func (s *Snapshot) UpsertQuery(q SavedQuery) {
	s.Queries = UpsertSavedQuery(s.Queries, q)
}

// UpsertAggregation updates the in-memory registry after a successful
// write.
func (s *Snapshot) UpsertAggregation(a SavedAggregation) {
	s.Aggregations = UpsertSavedAggregation(s.Aggregations, a)
}
