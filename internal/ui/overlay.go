// internal/ui/overlay.go
// Modal overlays. At most one is active; it intercepts every keystroke
// until resolved.
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hvmai/mongolens/internal/storage"
)

type overlay interface {
	overlayMarker()
}

// confirmOverlay gates a destructive action. With an empty phrase it is
// a plain y/n prompt; otherwise Enter only fires once the trimmed buffer
// matches the phrase case-insensitively.
type confirmOverlay struct {
	prompt string
	phrase string
	input  string
	errMsg string
	action confirmAction
}

// editorPromptOverlay collects an editor command when none could be
// resolved; the pending action resumes once a command is submitted.
type editorPromptOverlay struct {
	input  string
	action pendingEditorAction
}

type textPromptPurpose int

const (
	promptExportPath textPromptPurpose = iota
	promptQueryName
	promptAggregationName
)

// textPromptOverlay is a generic free-text prompt; purpose selects the
// completion handler.
type textPromptOverlay struct {
	prompt  string
	input   string
	purpose textPromptPurpose
	scope   storage.Scope
}

func (confirmOverlay) overlayMarker()      {}
func (editorPromptOverlay) overlayMarker() {}
func (textPromptOverlay) overlayMarker()   {}

type confirmAction interface {
	confirmMarker()
}

type deleteDocumentAction struct {
	id interface{}
}

type overwriteQueryAction struct {
	query storage.SavedQuery
}

type overwriteAggregationAction struct {
	agg storage.SavedAggregation
}

func (deleteDocumentAction) confirmMarker()       {}
func (overwriteQueryAction) confirmMarker()       {}
func (overwriteAggregationAction) confirmMarker() {}

// handleOverlayKey routes a keystroke to the single active overlay.
func (m Model) handleOverlayKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch ov := m.overlay.(type) {
	case editorPromptOverlay:
		return m.handleEditorPromptKey(ov, msg)
	case textPromptOverlay:
		return m.handleTextPromptKey(ov, msg)
	case confirmOverlay:
		return m.handleConfirmKey(ov, msg)
	}
	return m, nil
}

func (m Model) handleConfirmKey(ov confirmOverlay, msg tea.KeyMsg) (Model, tea.Cmd) {
	if ov.phrase == "" {
		switch msg.String() {
		case "y", "Y":
			m.overlay = nil
			return m.executeConfirm(ov.action)
		case "n", "N", "q", "esc":
			m.overlay = nil
			m.status = "cancelled"
		}
		// Anything else is ignored; the prompt persists.
		return m, nil
	}

	switch msg.String() {
	case "esc", "q":
		m.overlay = nil
		m.status = "cancelled"
		return m, nil
	case "enter":
		if strings.EqualFold(strings.TrimSpace(ov.input), ov.phrase) {
			m.overlay = nil
			return m.executeConfirm(ov.action)
		}
		ov.errMsg = fmt.Sprintf("must type '%s'", ov.phrase)
		m.overlay = ov
		return m, nil
	case "backspace":
		if len(ov.input) > 0 {
			ov.input = ov.input[:len(ov.input)-1]
		}
		m.overlay = ov
		return m, nil
	}
	if msg.Type == tea.KeyRunes {
		ov.input += string(msg.Runes)
		m.overlay = ov
	}
	return m, nil
}

func (m Model) handleEditorPromptKey(ov editorPromptOverlay, msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.overlay = nil
		m.status = "cancelled"
		return m, nil
	case "enter":
		cmdline := strings.TrimSpace(ov.input)
		if cmdline == "" {
			return m, nil
		}
		m.overlay = nil
		m.editorCmd = cmdline
		return m.startEditorAction(ov.action)
	case "backspace":
		if len(ov.input) > 0 {
			ov.input = ov.input[:len(ov.input)-1]
		}
		m.overlay = ov
		return m, nil
	}
	if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
		ov.input += keyText(msg)
		m.overlay = ov
	}
	return m, nil
}

func (m Model) handleTextPromptKey(ov textPromptOverlay, msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.overlay = nil
		m.status = "cancelled"
		return m, nil
	case "enter":
		value := strings.TrimSpace(ov.input)
		if value == "" {
			return m, nil
		}
		m.overlay = nil
		return m.completeTextPrompt(ov, value)
	case "backspace":
		if len(ov.input) > 0 {
			ov.input = ov.input[:len(ov.input)-1]
		}
		m.overlay = ov
		return m, nil
	}
	if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
		ov.input += keyText(msg)
		m.overlay = ov
	}
	return m, nil
}

func keyText(msg tea.KeyMsg) string {
	if msg.Type == tea.KeySpace {
		return " "
	}
	return string(msg.Runes)
}

// completeTextPrompt finishes a free-text prompt once a non-empty value
// has been submitted.
func (m Model) completeTextPrompt(ov textPromptOverlay, value string) (Model, tea.Cmd) {
	switch ov.purpose {
	case promptExportPath:
		return m.exportDocuments(value), nil
	case promptQueryName:
		id, err := specIDForName(ov.scope, value)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		if m.source == sourceInlineQuery && !m.queryDraft.empty() {
			return m.startEditorAction(saveInlineQueryAction{id: id, scope: ov.scope})
		}
		return m.startEditorAction(saveQueryAction{id: id, scope: ov.scope})
	case promptAggregationName:
		id, err := specIDForName(ov.scope, value)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		if m.source == sourceInlineAggregation && !m.aggDraft.empty() {
			return m.startEditorAction(saveInlineAggregationAction{id: id, scope: ov.scope})
		}
		return m.startEditorAction(saveAggregationAction{id: id, scope: ov.scope})
	}
	return m, nil
}

// specIDForName builds the saved-spec id from a chosen scope and name.
// The name itself must not contain dots; those belong to the scope.
func specIDForName(scope storage.Scope, name string) (string, error) {
	if strings.Contains(name, ".") {
		return "", fmt.Errorf("name must not contain dots")
	}
	if scope.Kind == storage.ScopeCollection {
		return scope.Database + "." + scope.Collection + "." + name, nil
	}
	return name, nil
}

// executeConfirm runs a confirmed action. Document deletion and spec
// overwrites are blocking calls from the UI thread.
func (m Model) executeConfirm(action confirmAction) (Model, tea.Cmd) {
	switch a := action.(type) {
	case deleteDocumentAction:
		return m.executeDelete(a.id)
	case overwriteQueryAction:
		return m.writeQuerySpec(a.query, true), nil
	case overwriteAggregationAction:
		return m.writeAggregationSpec(a.agg, true), nil
	}
	return m, nil
}
