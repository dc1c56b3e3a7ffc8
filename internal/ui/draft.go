// internal/ui/draft.go
package ui

import "github.com/hvmai/mongolens/internal/storage"

// inlineDraft is an unsaved ad-hoc query or aggregation. The raw text
// always reflects the last editor round-trip, even when parsing failed,
// so the user can reopen the editor and fix it without losing edits.
type inlineDraft struct {
	text   string
	parsed bool

	// query payload, valid when parsed and kind is query
	fields storage.QueryFields
	// pipeline payload, valid when parsed and kind is aggregation
	pipeline []byte
}

func (d inlineDraft) empty() bool { return d.text == "" }
