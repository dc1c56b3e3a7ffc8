// internal/ui/reconcile.go
// Result reconciliation: a message is applied only when its id matches
// the expected id for its kind, so the displayed state always reflects
// the most recently dispatched request regardless of completion order.
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/hvmai/mongolens/internal/config"
)

func (m Model) handleLoadResult(msg loadResultMsg) (Model, tea.Cmd) {
	if m.expected[msg.kind] != msg.id {
		m.log.Debug("stale result dropped",
			zap.Stringer("kind", msg.kind),
			zap.Uint64("id", msg.id),
			zap.Uint64("expected", m.expected[msg.kind]))
		return m, nil
	}
	m.expected[msg.kind] = 0

	if msg.err != nil {
		m.loads[msg.kind] = loadStatus{state: loadFailed, err: config.RedactError(msg.err)}
		// Inline drafts survive execution failure so the user can reopen
		// the editor and correct them.
		return m, nil
	}
	m.loads[msg.kind] = loadStatus{state: loadIdle}

	switch msg.kind {
	case loadDatabases:
		m.databases = msg.databases
		m.sel[ScreenDatabases] = restoreSelection(-1, len(msg.databases))

	case loadCollections:
		m.collections = msg.collections
		m.sel[ScreenCollections] = restoreSelection(-1, len(msg.collections))

	case loadDocuments:
		if len(msg.docs) == 0 && msg.page > 0 {
			// Ran off the end of the collection: back up one page and
			// reload it, carrying the requested selection forward.
			var cmd tea.Cmd
			m, cmd = m.dispatchDocuments(msg.page-1, msg.pendingSel, false)
			if msg.explicitPage {
				m.status = "no more documents"
			}
			return m, cmd
		}
		m.docs = msg.docs
		m.total = msg.total
		m.page = msg.page
		m.source = sourceCollection
		m.sourceID = ""
		m.sel[ScreenDocuments] = restoreSelection(msg.pendingSel, len(msg.docs))

	default:
		// Query and aggregation executions replace the document set and
		// land on the Documents screen tagged with their provenance.
		m.docs = msg.docs
		m.total = int64(len(msg.docs))
		m.page = 0
		m.source = msg.source
		m.sourceID = msg.sourceID
		m.sel[ScreenDocuments] = restoreSelection(-1, len(msg.docs))
		m.screen = ScreenDocuments
	}
	return m, nil
}

// restoreSelection clamps a requested selection into range, defaulting
// to the first row. -1 means nothing selected.
func restoreSelection(pending, n int) int {
	if n == 0 {
		return -1
	}
	if pending < 0 {
		return 0
	}
	if pending >= n {
		return n - 1
	}
	return pending
}
