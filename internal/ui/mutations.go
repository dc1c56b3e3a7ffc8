// internal/ui/mutations.go
// Post-edit appliers and blocking mutations. Writes run synchronously on
// the UI thread; reads that follow them go back through dispatch.
package ui

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/BurntSushi/toml"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hvmai/mongolens/internal/config"
	"github.com/hvmai/mongolens/internal/db"
	"github.com/hvmai/mongolens/internal/storage"
)

const mutateTimeout = 10 * time.Second

// applyInsert parses the edited document and inserts it.
func (m Model) applyInsert(a insertAction, content string) (Model, tea.Cmd) {
	doc, err := db.ParseDocumentJSON([]byte(content))
	if err != nil {
		m.status = "invalid document: " + err.Error()
		return m, nil
	}
	if err := m.conn.CheckWrite(); err != nil {
		m.status = config.RedactError(err)
		return m, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), mutateTimeout)
	defer cancel()
	if err := m.conn.InsertDocument(ctx, a.database, a.collection, doc); err != nil {
		m.status = config.RedactError(err)
		return m, nil
	}
	m.status = "document inserted"
	return m.refreshDocuments()
}

// applyEdit parses the edited document and replaces the original. The
// original identifier always wins: a changed or removed _id is restored
// and the user is told.
func (m Model) applyEdit(a editAction, content string) (Model, tea.Cmd) {
	doc, err := db.ParseDocumentJSON([]byte(content))
	if err != nil {
		m.status = "invalid document: " + err.Error()
		return m, nil
	}
	origID, ok := a.doc["_id"]
	if !ok {
		m.status = "document has no _id, cannot replace"
		return m, nil
	}
	restored := false
	if cur, present := doc["_id"]; !present || !reflect.DeepEqual(cur, origID) {
		doc["_id"] = origID
		restored = true
	}
	if err := m.conn.CheckWrite(); err != nil {
		m.status = config.RedactError(err)
		return m, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), mutateTimeout)
	defer cancel()
	if err := m.conn.ReplaceDocument(ctx, a.database, a.collection, origID, doc); err != nil {
		m.status = config.RedactError(err)
		return m, nil
	}
	m.status = "document replaced"
	if restored {
		m.status = "document replaced (original _id restored)"
	}
	return m.refreshDocuments()
}

// executeDelete removes the document with the given identifier after the
// typed confirmation has passed.
func (m Model) executeDelete(id interface{}) (Model, tea.Cmd) {
	if m.conn == nil {
		m.status = "no connection"
		return m, nil
	}
	if err := m.conn.CheckWrite(); err != nil {
		m.status = config.RedactError(err)
		return m, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), mutateTimeout)
	defer cancel()
	if err := m.conn.DeleteDocument(ctx, m.curDB, m.curColl, id); err != nil {
		m.status = config.RedactError(err)
		return m, nil
	}
	m.status = "document deleted"
	return m.refreshDocuments()
}

// refreshDocuments reloads the current collection page after a mutation,
// keeping the selection. The refresh is not explicit paging, so an empty
// tail page backtracks silently.
func (m Model) refreshDocuments() (Model, tea.Cmd) {
	pending := m.sel[ScreenDocuments]
	var cmd tea.Cmd
	m, cmd = m.dispatchDocuments(m.page, pending, false)
	return m, cmd
}

// applySaveQuery validates the edited payload against the chosen id and
// writes it, pausing in a confirmation when the file already exists.
func (m Model) applySaveQuery(id, content string) Model {
	q, err := storage.ParseQueryPayload(id, []byte(content))
	if err != nil {
		m.status = err.Error()
		return m
	}
	if storage.SpecExists(m.paths.QueriesDir, id) {
		m.overlay = confirmOverlay{
			prompt: fmt.Sprintf("overwrite saved query %q?", id),
			action: overwriteQueryAction{query: q},
		}
		return m
	}
	return m.writeQuerySpec(q, false)
}

func (m Model) writeQuerySpec(q storage.SavedQuery, overwrite bool) Model {
	if err := storage.WriteSavedQuery(m.paths.QueriesDir, q, overwrite); err != nil {
		m.status = config.Redact(err.Error())
		return m
	}
	m.snapshot.UpsertQuery(q)
	m.status = fmt.Sprintf("saved query %q", q.ID)
	return m
}

// applySaveAggregation mirrors applySaveQuery for pipelines.
func (m Model) applySaveAggregation(id, content string) Model {
	a, err := storage.ParseAggregationPayload(id, []byte(content))
	if err != nil {
		m.status = err.Error()
		return m
	}
	if storage.SpecExists(m.paths.AggregationsDir, id) {
		m.overlay = confirmOverlay{
			prompt: fmt.Sprintf("overwrite saved aggregation %q?", id),
			action: overwriteAggregationAction{agg: a},
		}
		return m
	}
	return m.writeAggregationSpec(a, false)
}

func (m Model) writeAggregationSpec(a storage.SavedAggregation, overwrite bool) Model {
	if err := storage.WriteSavedAggregation(m.paths.AggregationsDir, a, overwrite); err != nil {
		m.status = config.Redact(err.Error())
		return m
	}
	m.snapshot.UpsertAggregation(a)
	m.status = fmt.Sprintf("saved aggregation %q", a.ID)
	return m
}

// applyInlineQuery stores the edited text as the draft and runs it. The
// draft keeps the raw text even when parsing fails, so reopening the
// editor resumes from the broken version instead of discarding it.
func (m Model) applyInlineQuery(content string) (Model, tea.Cmd) {
	m.queryDraft.text = content
	fields, err := storage.ParseQueryFields([]byte(content))
	if err != nil {
		m.queryDraft.parsed = false
		m.status = err.Error()
		return m, nil
	}
	m.queryDraft.fields = fields
	m.queryDraft.parsed = true
	return m.dispatchInlineQuery()
}

// applyInlineAggregation mirrors applyInlineQuery for pipelines.
func (m Model) applyInlineAggregation(content string) (Model, tea.Cmd) {
	m.aggDraft.text = content
	pipeline, err := storage.NormalizePipeline([]byte(content))
	if err != nil {
		m.aggDraft.parsed = false
		m.status = err.Error()
		return m, nil
	}
	m.aggDraft.pipeline = pipeline
	m.aggDraft.parsed = true
	return m.dispatchInlineAggregation()
}

// applyAddConnection decodes the edited TOML, moves an embedded password
// into the keyring and appends the connection to the chosen config file.
func (m Model) applyAddConnection(a addConnectionAction, content string) Model {
	var conn config.Connection
	if err := toml.Unmarshal([]byte(content), &conn); err != nil {
		m.status = "invalid connection: " + config.Redact(err.Error())
		return m
	}

	stripped, password := config.StripPassword(conn.URI)
	if password != "" {
		if err := config.SavePassword(conn.Name, password); err != nil {
			m.status = "keyring write failed: " + err.Error()
			return m
		}
		conn.URI = stripped
	}

	persist := config.AppendConnectionToProjectConfig
	if a.global {
		persist = config.AppendConnectionToGlobalConfig
	}
	path, err := persist(m.paths, conn)
	if err != nil {
		m.status = config.Redact(err.Error())
		return m
	}

	m.snapshot.Config.Connections = append(m.snapshot.Config.Connections, conn)
	m.status = fmt.Sprintf("connection %q added to %s", conn.Name, path)
	return m
}
