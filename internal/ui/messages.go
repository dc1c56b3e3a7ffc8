// internal/ui/messages.go
package ui

import (
	"go.mongodb.org/mongo-driver/bson"
)

// resultSource tags the origin of the currently displayed document set.
type resultSource int

const (
	sourceCollection resultSource = iota
	sourceSavedQuery
	sourceSavedAggregation
	sourceInlineQuery
	sourceInlineAggregation
)

func (s resultSource) applied() bool { return s != sourceCollection }

// loadResultMsg carries the outcome of one dispatched background read.
// kind+id drive reconciliation; the payload fields are populated per
// kind. Documents loads additionally echo back their request parameters
// so backtracking and selection restoration can act on them.
type loadResultMsg struct {
	kind loadKind
	id   uint64

	databases   []string
	collections []string

	docs         []bson.M
	total        int64
	page         int64
	pendingSel   int // requested selection to restore; -1 for none
	explicitPage bool

	source   resultSource
	sourceID string

	err error
}

// editorFinishedMsg is sent when the external editor subprocess exits
// and the temp file has been read back and removed.
type editorFinishedMsg struct {
	action  pendingEditorAction
	initial string
	content string
	err     error
}
