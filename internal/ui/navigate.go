// internal/ui/navigate.go
// Normal-mode key handling: list movement, the screen hierarchy and the
// per-screen action keys.
package ui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hvmai/mongolens/internal/config"
	"github.com/hvmai/mongolens/internal/db"
	"github.com/hvmai/mongolens/internal/storage"
	"github.com/hvmai/mongolens/internal/ui/highlight"
)

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	// The first normal keypress acknowledges the oldest queued warning
	// instead of acting.
	if _, ok := m.snapshot.PeekWarning(); ok {
		m.snapshot.PopWarning()
		return m, nil
	}

	// gg chord: a second g jumps to the top; anything else disarms
	// without side effect.
	if m.chord == chordAwaitingSecondPress {
		m.chord = chordIdle
		if key == "g" {
			return m.goTop(), nil
		}
		return m, nil
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "?":
		m.showHelp = true
		return m, nil
	case "j", "down":
		return m.moveSelection(1), nil
	case "k", "up":
		return m.moveSelection(-1), nil
	case "g":
		m.chord = chordAwaitingSecondPress
		return m, nil
	case "G":
		return m.goBottom(), nil
	case "h", "esc":
		return m.goBack(), nil
	case "l", "enter":
		return m.goForward()
	case "pgdown":
		return m.pageForward()
	case "pgup":
		return m.pageBack()
	}

	return m.handleActionKey(key)
}

// handleActionKey covers the mutation and side-screen keys, all of which
// are screen specific.
func (m Model) handleActionKey(key string) (Model, tea.Cmd) {
	switch m.screen {
	case ScreenConnections:
		if key == "n" {
			m.sel[ScreenAddConnectionScope] = 0
			m.screen = ScreenAddConnectionScope
		}
		return m, nil

	case ScreenDocuments:
		switch key {
		case "i":
			if m.curColl == "" {
				m.status = "no collection selected"
				return m, nil
			}
			if err := m.writeGuard(); err != nil {
				m.status = config.RedactError(err)
				return m, nil
			}
			return m.startEditorAction(insertAction{database: m.curDB, collection: m.curColl})
		case "e":
			doc, ok := m.selectedDocument()
			if !ok {
				m.status = "no document selected"
				return m, nil
			}
			if err := m.writeGuard(); err != nil {
				m.status = config.RedactError(err)
				return m, nil
			}
			return m.startEditorAction(editAction{database: m.curDB, collection: m.curColl, doc: doc})
		case "d":
			doc, ok := m.selectedDocument()
			if !ok {
				m.status = "no document selected"
				return m, nil
			}
			if err := m.writeGuard(); err != nil {
				m.status = config.RedactError(err)
				return m, nil
			}
			m.overlay = confirmOverlay{
				prompt: "delete the selected document?",
				phrase: "Delete",
				action: deleteDocumentAction{id: doc["_id"]},
			}
			return m, nil
		case "Q":
			m.sel[ScreenSaveQueryScope] = 0
			m.screen = ScreenSaveQueryScope
			return m, nil
		case "A":
			m.sel[ScreenSaveAggregationScope] = 0
			m.screen = ScreenSaveAggregationScope
			return m, nil
		case "r":
			m.sel[ScreenSavedQueries] = restoreSelection(-1, len(m.snapshot.Queries))
			m.screen = ScreenSavedQueries
			return m, nil
		case "a":
			m.sel[ScreenSavedAggregations] = restoreSelection(-1, len(m.snapshot.Aggregations))
			m.screen = ScreenSavedAggregations
			return m, nil
		case "c":
			if m.source.applied() {
				return m.dispatchDocuments(0, -1, false)
			}
			return m, nil
		case "/":
			if m.curColl == "" {
				m.status = "no collection selected"
				return m, nil
			}
			return m.startEditorAction(runInlineQueryAction{})
		case "p":
			if m.curColl == "" {
				m.status = "no collection selected"
				return m, nil
			}
			return m.startEditorAction(runInlineAggregationAction{})
		case "E":
			m.overlay = textPromptOverlay{prompt: "export to", purpose: promptExportPath}
			return m, nil
		}
	}
	return m, nil
}

// goForward acts on the current selection: descend the hierarchy, run a
// saved spec, open a scope prompt or view a document.
func (m Model) goForward() (Model, tea.Cmd) {
	switch m.screen {
	case ScreenConnections:
		idx := m.sel[ScreenConnections]
		if idx < 0 || idx >= len(m.snapshot.Config.Connections) {
			m.status = "no connection selected"
			return m, nil
		}
		entry := m.snapshot.Config.Connections[idx]
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		conn, err := db.ResolveEntry(ctx, &entry, m.snapshot.Config.ReadOnly, m.log)
		if err != nil {
			m.status = config.RedactError(err)
			return m, nil
		}
		if m.conn != nil {
			old := m.conn
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				old.Close(ctx)
			}()
		}
		m.conn = conn
		m.curDB, m.curColl = "", ""
		m.screen = ScreenDatabases
		return m.dispatchDatabases()

	case ScreenDatabases:
		idx := m.sel[ScreenDatabases]
		if idx < 0 || idx >= len(m.databases) {
			m.status = "no database selected"
			return m, nil
		}
		m.curDB = m.databases[idx]
		m.screen = ScreenCollections
		return m.dispatchCollections(m.curDB)

	case ScreenCollections:
		idx := m.sel[ScreenCollections]
		if idx < 0 || idx >= len(m.collections) {
			m.status = "no collection selected"
			return m, nil
		}
		m.curColl = m.collections[idx]
		m.screen = ScreenDocuments
		return m.dispatchDocuments(0, -1, false)

	case ScreenDocuments:
		doc, ok := m.selectedDocument()
		if !ok {
			m.status = "no document selected"
			return m, nil
		}
		text, err := db.FormatDocumentJSON(doc)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.docView.SetContent(highlight.JSON(text))
		m.docView.GotoTop()
		m.screen = ScreenDocumentView
		return m, nil

	case ScreenSavedQueries:
		idx := m.sel[ScreenSavedQueries]
		if idx < 0 || idx >= len(m.snapshot.Queries) {
			m.status = "no saved query selected"
			return m, nil
		}
		return m.dispatchSavedQuery(m.snapshot.Queries[idx])

	case ScreenSavedAggregations:
		idx := m.sel[ScreenSavedAggregations]
		if idx < 0 || idx >= len(m.snapshot.Aggregations) {
			m.status = "no saved aggregation selected"
			return m, nil
		}
		return m.dispatchSavedAggregation(m.snapshot.Aggregations[idx])

	case ScreenSaveQueryScope:
		m.overlay = textPromptOverlay{
			prompt:  "query name",
			purpose: promptQueryName,
			scope:   m.selectedScope(),
		}
		return m, nil

	case ScreenSaveAggregationScope:
		m.overlay = textPromptOverlay{
			prompt:  "aggregation name",
			purpose: promptAggregationName,
			scope:   m.selectedScope(),
		}
		return m, nil

	case ScreenAddConnectionScope:
		return m.startEditorAction(addConnectionAction{global: m.sel[ScreenAddConnectionScope] == 1})
	}
	return m, nil
}

// goBack pops to the parent screen. Side screens leave with their own
// selection reset.
func (m Model) goBack() Model {
	if m.screen == ScreenConnections {
		return m
	}
	if m.screen.sideScreen() {
		m.sel[m.screen] = 0
	}
	m.screen = m.screen.parent()
	return m
}

func (m Model) goTop() Model {
	if m.screen == ScreenDocumentView {
		m.docView.GotoTop()
		return m
	}
	if m.listLen(m.screen) > 0 {
		m.sel[m.screen] = 0
	}
	return m
}

func (m Model) goBottom() Model {
	if m.screen == ScreenDocumentView {
		m.docView.GotoBottom()
		return m
	}
	if n := m.listLen(m.screen); n > 0 {
		m.sel[m.screen] = n - 1
	}
	return m
}

func (m Model) moveSelection(delta int) Model {
	if m.screen == ScreenDocumentView {
		if delta > 0 {
			m.docView.ScrollDown(1)
		} else {
			m.docView.ScrollUp(1)
		}
		return m
	}
	n := m.listLen(m.screen)
	if n == 0 {
		m.sel[m.screen] = -1
		return m
	}
	idx := m.sel[m.screen] + delta
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	m.sel[m.screen] = idx
	return m
}

// pageForward requests the next collection page. Applied result sets are
// a single page; paging only makes sense on the plain listing.
func (m Model) pageForward() (Model, tea.Cmd) {
	if m.screen != ScreenDocuments || m.source.applied() {
		return m, nil
	}
	return m.dispatchDocuments(m.page+1, -1, true)
}

func (m Model) pageBack() (Model, tea.Cmd) {
	if m.screen != ScreenDocuments || m.source.applied() || m.page == 0 {
		return m, nil
	}
	return m.dispatchDocuments(m.page-1, -1, true)
}

// writeGuard re-checks the read-only guard at the UI call site before
// any mutation workflow starts.
func (m Model) writeGuard() error {
	if m.conn == nil {
		return fmt.Errorf("no connection")
	}
	return m.conn.CheckWrite()
}

// listLen is the item count of the list a screen renders.
func (m Model) listLen(s Screen) int {
	switch s {
	case ScreenConnections:
		return len(m.snapshot.Config.Connections)
	case ScreenDatabases:
		return len(m.databases)
	case ScreenCollections:
		return len(m.collections)
	case ScreenDocuments:
		return len(m.docs)
	case ScreenSavedQueries:
		return len(m.snapshot.Queries)
	case ScreenSavedAggregations:
		return len(m.snapshot.Aggregations)
	case ScreenSaveQueryScope, ScreenSaveAggregationScope, ScreenAddConnectionScope:
		return 2
	}
	return 0
}

func (m Model) selectedDocument() (map[string]interface{}, bool) {
	idx := m.sel[ScreenDocuments]
	if idx < 0 || idx >= len(m.docs) {
		return nil, false
	}
	return m.docs[idx], true
}

// selectedScope maps the scope-select row to a spec scope: row 0 is
// shared, row 1 binds the current database and collection.
func (m Model) selectedScope() storage.Scope {
	if m.sel[m.screen] == 1 {
		return storage.CollectionScope(m.curDB, m.curColl)
	}
	return storage.SharedScope()
}
