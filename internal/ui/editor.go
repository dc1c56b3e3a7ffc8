// internal/ui/editor.go
// External editor round trip: temp file, terminal suspend/resume, trim
// comparison for cancellation.
package ui

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hvmai/mongolens/internal/config"
	"github.com/hvmai/mongolens/internal/db"
)

const (
	editorEnvPrimary  = "VISUAL"
	editorEnvFallback = "EDITOR"
)

// ensureEditorCommand resolves the editor command, caching it for the
// session: configured editor first, then $VISUAL, then $EDITOR. When
// nothing resolves the action parks behind an editor prompt overlay and
// ok is false.
func (m Model) ensureEditorCommand(action pendingEditorAction) (Model, bool) {
	if m.editorCmd != "" {
		return m, true
	}
	if m.snapshot != nil && m.snapshot.Config != nil {
		if v := strings.TrimSpace(m.snapshot.Config.Editor); v != "" {
			m.editorCmd = v
			return m, true
		}
	}
	if v := strings.TrimSpace(os.Getenv(editorEnvPrimary)); v != "" {
		m.editorCmd = v
		return m, true
	}
	if v := strings.TrimSpace(os.Getenv(editorEnvFallback)); v != "" {
		m.editorCmd = v
		return m, true
	}
	m.overlay = editorPromptOverlay{action: action}
	return m, false
}

// openEditor writes the seed to an owner-only temp file, suspends the
// terminal UI for the editor subprocess and reads the file back when it
// exits. The UI resumes unconditionally; the temp file never survives
// the round trip.
func (m Model) openEditor(action pendingEditorAction, initial string) tea.Cmd {
	parts := strings.Fields(m.editorCmd)
	if len(parts) == 0 {
		return func() tea.Msg {
			return editorFinishedMsg{action: action, err: fmt.Errorf("editor command is empty")}
		}
	}

	tmp, err := os.CreateTemp("", tempFilePattern(action))
	if err != nil {
		return func() tea.Msg {
			return editorFinishedMsg{action: action, err: err}
		}
	}
	if _, err := tmp.WriteString(initial); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return func() tea.Msg {
			return editorFinishedMsg{action: action, err: err}
		}
	}
	tmp.Close()
	path := tmp.Name()

	args := append(parts[1:], path)
	c := exec.Command(parts[0], args...)
	return tea.ExecProcess(c, func(execErr error) tea.Msg {
		content, readErr := os.ReadFile(path)
		os.Remove(path)
		err := execErr
		if err == nil {
			err = readErr
		}
		return editorFinishedMsg{
			action:  action,
			initial: initial,
			content: string(content),
			err:     err,
		}
	})
}

// handleEditorFinished applies the edited content to the pending action.
// Content that trims empty or equal to the seed cancels the whole
// workflow without touching anything.
func (m Model) handleEditorFinished(msg editorFinishedMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		m.status = "editor failed: " + config.RedactError(msg.err)
		return m, nil
	}

	content := strings.TrimSpace(msg.content)
	if content == "" || content == strings.TrimSpace(msg.initial) {
		m.status = "cancelled"
		return m, nil
	}

	switch a := msg.action.(type) {
	case insertAction:
		return m.applyInsert(a, content)
	case editAction:
		return m.applyEdit(a, content)
	case saveQueryAction:
		return m.applySaveQuery(a.id, content), nil
	case saveInlineQueryAction:
		return m.applySaveQuery(a.id, content), nil
	case saveAggregationAction:
		return m.applySaveAggregation(a.id, content), nil
	case saveInlineAggregationAction:
		return m.applySaveAggregation(a.id, content), nil
	case runInlineQueryAction:
		return m.applyInlineQuery(content)
	case runInlineAggregationAction:
		return m.applyInlineAggregation(content)
	case addConnectionAction:
		return m.applyAddConnection(a, content), nil
	}
	return m, nil
}

func formatDocument(doc interface{}) (string, error) {
	out, err := db.FormatDocumentJSON(doc)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out, nil
}
