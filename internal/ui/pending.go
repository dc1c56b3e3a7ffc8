// internal/ui/pending.go
// Pending editor actions: the context needed to resume a workflow once
// an editor command is known. One union, one dispatcher.
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/hvmai/mongolens/internal/storage"
)

type pendingEditorAction interface {
	label() string
}

type insertAction struct {
	database   string
	collection string
}

type editAction struct {
	database   string
	collection string
	doc        bson.M
}

type saveQueryAction struct {
	id    string
	scope storage.Scope
}

type saveAggregationAction struct {
	id    string
	scope storage.Scope
}

type runInlineQueryAction struct{}

type runInlineAggregationAction struct{}

type saveInlineQueryAction struct {
	id    string
	scope storage.Scope
}

type saveInlineAggregationAction struct {
	id    string
	scope storage.Scope
}

type addConnectionAction struct {
	global bool
}

func (insertAction) label() string               { return "insert document" }
func (editAction) label() string                 { return "edit document" }
func (saveQueryAction) label() string            { return "save query" }
func (saveAggregationAction) label() string      { return "save aggregation" }
func (runInlineQueryAction) label() string       { return "query" }
func (runInlineAggregationAction) label() string { return "aggregation" }
func (saveInlineQueryAction) label() string      { return "save query" }
func (saveInlineAggregationAction) label() string {
	return "save aggregation"
}
func (addConnectionAction) label() string { return "add connection" }

const (
	queryTemplate = `{
  "filter": {}
}
`
	pipelineTemplate = `[
  { "$match": {} }
]
`
	documentTemplate = `{

}
`
	connectionTemplate = `name = ""
uri = "mongodb://localhost:27017"
`
)

// editorSeed returns the initial buffer for an action's editor session.
func (m Model) editorSeed(action pendingEditorAction) (string, error) {
	switch a := action.(type) {
	case insertAction:
		return documentTemplate, nil
	case editAction:
		return formatDocument(a.doc)
	case saveQueryAction:
		return queryTemplate, nil
	case saveAggregationAction:
		return pipelineTemplate, nil
	case runInlineQueryAction, saveInlineQueryAction:
		if !m.queryDraft.empty() {
			return m.queryDraft.text, nil
		}
		return queryTemplate, nil
	case runInlineAggregationAction, saveInlineAggregationAction:
		if !m.aggDraft.empty() {
			return m.aggDraft.text, nil
		}
		return pipelineTemplate, nil
	case addConnectionAction:
		return connectionTemplate, nil
	}
	return "", nil
}

// tempFilePattern picks the temp-file suffix the editor sees, so syntax
// highlighting in the user's editor matches the payload.
func tempFilePattern(action pendingEditorAction) string {
	if _, ok := action.(addConnectionAction); ok {
		return "mongolens-*.toml"
	}
	return "mongolens-*.json"
}

// startEditorAction resolves an editor command and opens it seeded for
// the action; with no resolvable command the action parks behind an
// editor prompt overlay and resumes transparently after submission.
func (m Model) startEditorAction(action pendingEditorAction) (Model, tea.Cmd) {
	var ok bool
	m, ok = m.ensureEditorCommand(action)
	if !ok {
		return m, nil
	}
	seed, err := m.editorSeed(action)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	return m, m.openEditor(action, seed)
}
