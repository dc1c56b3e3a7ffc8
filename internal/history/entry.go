// internal/history/entry.go
package history

import "time"

// Entry is one executed query or aggregation.
type Entry struct {
	ID         int64
	Connection string
	Target     string // database.collection
	Kind       string // "query", "aggregation", "saved-query", "saved-aggregation"
	Spec       string // the spec text as edited or loaded
	ExecutedAt time.Time
	DurationMs int64
	DocCount   int
	Status     string // "success" or "error"
	Error      string
}
