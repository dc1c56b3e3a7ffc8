// internal/ui/loader.go
// Load dispatch: every background read is tagged with a monotonically
// increasing request id so the reconciler can drop superseded results.
// Nothing is ever cancelled; an overwritten expected id is the whole
// mechanism.
package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/hvmai/mongolens/internal/config"
	"github.com/hvmai/mongolens/internal/db"
	"github.com/hvmai/mongolens/internal/history"
	"github.com/hvmai/mongolens/internal/storage"
)

const loadTimeout = 30 * time.Second

// loadKind is an asynchronous read-resource category.
type loadKind int

const (
	loadDatabases loadKind = iota
	loadCollections
	loadDocuments
	loadSavedQueryExec
	loadSavedAggregationExec
	loadInlineQueryExec
	loadInlineAggregationExec
	numLoadKinds
)

func (k loadKind) String() string {
	switch k {
	case loadDatabases:
		return "databases"
	case loadCollections:
		return "collections"
	case loadDocuments:
		return "documents"
	case loadSavedQueryExec:
		return "saved query"
	case loadSavedAggregationExec:
		return "saved aggregation"
	case loadInlineQueryExec:
		return "inline query"
	case loadInlineAggregationExec:
		return "inline aggregation"
	default:
		return "unknown"
	}
}

type loadState int

const (
	loadIdle loadState = iota
	loadLoading
	loadFailed
)

// loadStatus is the per-kind state driving placeholder rendering.
type loadStatus struct {
	state loadState
	err   string
}

// dispatch allocates the next request id for kind, marks it loading and
// returns the command that runs the read in the background. Overwriting
// the expected id invalidates any prior in-flight request for the same
// kind; the old task still runs to completion and is dropped on arrival.
func (m Model) dispatch(kind loadKind, run func(context.Context) loadResultMsg) (Model, tea.Cmd) {
	m.nextID++
	id := m.nextID
	m.expected[kind] = id
	m.status = ""
	m = m.clearKindData(kind)
	m.loads[kind] = loadStatus{state: loadLoading}

	log := m.log
	cmd := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		msg := run(ctx)
		msg.kind = kind
		msg.id = id
		if msg.err != nil {
			log.Debug("load failed",
				zap.Stringer("kind", kind),
				zap.Uint64("id", id),
				zap.String("error", config.RedactError(msg.err)))
		}
		return msg
	}
	return m, cmd
}

// clearKindData wipes the displayed data a fresh dispatch replaces.
func (m Model) clearKindData(kind loadKind) Model {
	switch kind {
	case loadDatabases:
		m.databases = nil
		m.sel[ScreenDatabases] = -1
	case loadCollections:
		m.collections = nil
		m.sel[ScreenCollections] = -1
	default:
		// The document-bearing kinds share one display slot; a fresh
		// dispatch retires the others' statuses along with the data so
		// an old failure cannot outlive the result that replaces it.
		for k := loadDocuments; k < numLoadKinds; k++ {
			m.loads[k] = loadStatus{}
		}
		m.docs = nil
		m.total = 0
		m.sel[ScreenDocuments] = -1
	}
	return m
}

func (m Model) dispatchDatabases() (Model, tea.Cmd) {
	conn := m.conn
	return m.dispatch(loadDatabases, func(ctx context.Context) loadResultMsg {
		names, err := conn.ListDatabases(ctx)
		return loadResultMsg{databases: names, err: err}
	})
}

func (m Model) dispatchCollections(database string) (Model, tea.Cmd) {
	conn := m.conn
	return m.dispatch(loadCollections, func(ctx context.Context) loadResultMsg {
		names, err := conn.ListCollections(ctx, database)
		return loadResultMsg{collections: names, err: err}
	})
}

// dispatchDocuments loads one collection page. pendingSel is a selection
// index to restore after the load (-1 for none); explicitPage marks
// user-initiated paging so the backtrack path knows whether to announce
// the end of the collection.
func (m Model) dispatchDocuments(page int64, pendingSel int, explicitPage bool) (Model, tea.Cmd) {
	conn := m.conn
	database, collection := m.curDB, m.curColl
	pageSize := m.pageSize()
	return m.dispatch(loadDocuments, func(ctx context.Context) loadResultMsg {
		res, err := conn.ListDocuments(ctx, database, collection, page, pageSize)
		return loadResultMsg{
			docs:         res.Docs,
			total:        res.Total,
			page:         page,
			pendingSel:   pendingSel,
			explicitPage: explicitPage,
			err:          err,
		}
	})
}

func (m Model) dispatchSavedQuery(q storage.SavedQuery) (Model, tea.Cmd) {
	conn := m.conn
	database, collection := m.specTarget(q.Scope)
	store := m.historyStore
	return m.dispatch(loadSavedQueryExec, func(ctx context.Context) loadResultMsg {
		spec, err := db.ParseQuerySpec(q.Filter, q.Projection, q.Sort, q.Limit)
		if err != nil {
			return loadResultMsg{err: err}
		}
		start := time.Now()
		docs, err := conn.ExecuteQuery(ctx, database, collection, spec)
		recordHistory(store, conn.Name(), database+"."+collection, "query", q.ID, start, len(docs), err)
		return loadResultMsg{docs: docs, source: sourceSavedQuery, sourceID: q.ID, err: err}
	})
}

func (m Model) dispatchSavedAggregation(a storage.SavedAggregation) (Model, tea.Cmd) {
	conn := m.conn
	database, collection := m.specTarget(a.Scope)
	store := m.historyStore
	return m.dispatch(loadSavedAggregationExec, func(ctx context.Context) loadResultMsg {
		pipeline, err := db.ParsePipeline(a.Pipeline)
		if err != nil {
			return loadResultMsg{err: err}
		}
		start := time.Now()
		docs, err := conn.ExecuteAggregation(ctx, database, collection, pipeline)
		recordHistory(store, conn.Name(), database+"."+collection, "aggregation", a.ID, start, len(docs), err)
		return loadResultMsg{docs: docs, source: sourceSavedAggregation, sourceID: a.ID, err: err}
	})
}

func (m Model) dispatchInlineQuery() (Model, tea.Cmd) {
	conn := m.conn
	database, collection := m.curDB, m.curColl
	fields := m.queryDraft.fields
	text := m.queryDraft.text
	store := m.historyStore
	return m.dispatch(loadInlineQueryExec, func(ctx context.Context) loadResultMsg {
		spec, err := db.ParseQuerySpec(fields.Filter, fields.Projection, fields.Sort, fields.Limit)
		if err != nil {
			return loadResultMsg{err: err}
		}
		start := time.Now()
		docs, err := conn.ExecuteQuery(ctx, database, collection, spec)
		recordHistory(store, conn.Name(), database+"."+collection, "query", text, start, len(docs), err)
		return loadResultMsg{docs: docs, source: sourceInlineQuery, err: err}
	})
}

func (m Model) dispatchInlineAggregation() (Model, tea.Cmd) {
	conn := m.conn
	database, collection := m.curDB, m.curColl
	raw := m.aggDraft.pipeline
	text := m.aggDraft.text
	store := m.historyStore
	return m.dispatch(loadInlineAggregationExec, func(ctx context.Context) loadResultMsg {
		pipeline, err := db.ParsePipeline(raw)
		if err != nil {
			return loadResultMsg{err: err}
		}
		start := time.Now()
		docs, err := conn.ExecuteAggregation(ctx, database, collection, pipeline)
		recordHistory(store, conn.Name(), database+"."+collection, "aggregation", text, start, len(docs), err)
		return loadResultMsg{docs: docs, source: sourceInlineAggregation, err: err}
	})
}

// specTarget resolves the database and collection a saved spec runs
// against: scoped specs carry their own, shared ones use the current
// navigation position.
func (m Model) specTarget(scope storage.Scope) (string, string) {
	if scope.Kind == storage.ScopeCollection {
		return scope.Database, scope.Collection
	}
	return m.curDB, m.curColl
}

func (m Model) pageSize() int64 {
	if m.snapshot != nil && m.snapshot.Config != nil && m.snapshot.Config.PageSize > 0 {
		return m.snapshot.Config.PageSize
	}
	return 50
}

func recordHistory(store *history.Store, connection, target, kind, spec string, start time.Time, count int, execErr error) {
	if store == nil {
		return
	}
	entry := &history.Entry{
		Connection: connection,
		Target:     target,
		Kind:       kind,
		Spec:       spec,
		ExecutedAt: start,
		DurationMs: time.Since(start).Milliseconds(),
		DocCount:   count,
		Status:     "success",
	}
	if execErr != nil {
		entry.Status = "error"
		entry.Error = config.RedactError(execErr)
	}
	// Best effort; history must never break the session.
	_ = store.Add(entry)
}
