// internal/ui/app.go
// Root Bubble Tea model, constructor, Init and Update.
package ui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/hvmai/mongolens/internal/config"
	"github.com/hvmai/mongolens/internal/db"
	"github.com/hvmai/mongolens/internal/history"
	"github.com/hvmai/mongolens/internal/storage"
)

// Model is the root session state: one screen, one optional overlay, one
// connection, and the reconciliation bookkeeping for background loads.
type Model struct {
	snapshot     *storage.Snapshot
	paths        config.Paths
	historyStore *history.Store
	log          *zap.Logger

	width, height int

	screen   Screen
	chord    chordState
	showHelp bool

	// Per-screen selection index; -1 means nothing selected.
	sel [numScreens]int

	conn    *db.Connection
	curDB   string
	curColl string

	databases   []string
	collections []string

	// Currently displayed document page and its provenance.
	docs     []bson.M
	total    int64
	page     int64
	source   resultSource
	sourceID string

	// Load bookkeeping: per-kind state, per-kind expected request id
	// (0 = none in flight) and the id counter.
	loads    [numLoadKinds]loadStatus
	expected [numLoadKinds]uint64
	nextID   uint64

	overlay overlay

	// Session-cached editor command line.
	editorCmd string

	queryDraft inlineDraft
	aggDraft   inlineDraft

	status string

	docView viewport.Model
}

// NewModel builds the initial session on the Connections screen.
func NewModel(snap *storage.Snapshot, paths config.Paths, store *history.Store, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	m := Model{
		snapshot:     snap,
		paths:        paths,
		historyStore: store,
		log:          log,
		screen:       ScreenConnections,
		docView:      viewport.New(80, 20),
	}
	for i := range m.sel {
		m.sel[i] = -1
	}
	m.sel[ScreenConnections] = restoreSelection(-1, len(snap.Config.Connections))
	for i := range m.sel {
		if Screen(i).sideScreen() {
			m.sel[i] = 0
		}
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.docView.Width = msg.Width
		m.docView.Height = msg.Height - 3
		if m.docView.Height < 1 {
			m.docView.Height = 1
		}
		return m, nil

	case loadResultMsg:
		return m.handleLoadResult(msg)

	case editorFinishedMsg:
		return m.handleEditorFinished(msg)

	case tea.KeyMsg:
		if m.showHelp {
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "?", "esc":
				m.showHelp = false
			}
			return m, nil
		}
		if m.overlay != nil {
			return m.handleOverlayKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}
