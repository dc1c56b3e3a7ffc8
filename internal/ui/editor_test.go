package ui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEditorUnchangedContentCancels(t *testing.T) {
	m := newTestModel(t)
	initial := "{\n  \"a\": 1\n}\n"

	m, cmd := m.handleEditorFinished(editorFinishedMsg{
		action:  insertAction{database: "app", collection: "orders"},
		initial: initial,
		content: initial + "   \n",
	})
	require.Nil(t, cmd)
	require.Equal(t, "cancelled", m.status)
}

func TestEditorEmptyContentCancels(t *testing.T) {
	m := newTestModel(t)

	m, cmd := m.handleEditorFinished(editorFinishedMsg{
		action:  editAction{database: "app", collection: "orders"},
		initial: "{}\n",
		content: "  \n\t\n",
	})
	require.Nil(t, cmd)
	require.Equal(t, "cancelled", m.status)
}

func TestEditorErrorSurfaces(t *testing.T) {
	m := newTestModel(t)

	m, _ = m.handleEditorFinished(editorFinishedMsg{
		action: insertAction{},
		err:    errors.New("exec: no such file"),
	})
	require.Contains(t, m.status, "editor failed")
}

func TestEditorPromptParksAndResumesAction(t *testing.T) {
	t.Setenv(editorEnvPrimary, "")
	t.Setenv(editorEnvFallback, "")

	m := newTestModel(t)
	m.curDB, m.curColl = "app", "orders"

	m, cmd := m.startEditorAction(insertAction{database: "app", collection: "orders"})
	require.Nil(t, cmd)
	ov, ok := m.overlay.(editorPromptOverlay)
	require.True(t, ok, "missing editor must open the prompt overlay")
	require.IsType(t, insertAction{}, ov.action)

	// Empty submission is ignored.
	m, _ = m.handleOverlayKey(keyMsg("enter"))
	require.NotNil(t, m.overlay)

	m = typeString(t, m, "vi")
	m, cmd = m.handleOverlayKey(keyMsg("enter"))
	require.Nil(t, m.overlay)
	require.Equal(t, "vi", m.editorCmd, "submitted command is cached for the session")
	require.NotNil(t, cmd, "parked action resumes once a command is known")
}

func TestWhitespaceEditorCandidatesAreSkipped(t *testing.T) {
	t.Setenv(editorEnvPrimary, "   ")
	t.Setenv(editorEnvFallback, "\t")

	m := newTestModel(t)
	m.snapshot.Config.Editor = "  "
	m, ok := m.ensureEditorCommand(insertAction{})
	require.False(t, ok, "blank candidates must fall through to the prompt")
	require.IsType(t, editorPromptOverlay{}, m.overlay)
}

func TestOpenEditorRejectsEmptyCommand(t *testing.T) {
	m := newTestModel(t)
	m.editorCmd = "   "

	cmd := m.openEditor(insertAction{}, "{}\n")
	require.NotNil(t, cmd)
	msg, ok := cmd().(editorFinishedMsg)
	require.True(t, ok)
	require.Error(t, msg.err)
}

func TestEditorCommandResolutionOrder(t *testing.T) {
	t.Setenv(editorEnvPrimary, "visual-editor")
	t.Setenv(editorEnvFallback, "fallback-editor")

	m := newTestModel(t)
	m, ok := m.ensureEditorCommand(insertAction{})
	require.True(t, ok)
	require.Equal(t, "visual-editor", m.editorCmd)

	t.Setenv(editorEnvPrimary, "")
	m = newTestModel(t)
	m, ok = m.ensureEditorCommand(insertAction{})
	require.True(t, ok)
	require.Equal(t, "fallback-editor", m.editorCmd)

	// A configured editor wins over the environment.
	m = newTestModel(t)
	m.snapshot.Config.Editor = "configured-editor"
	m, ok = m.ensureEditorCommand(insertAction{})
	require.True(t, ok)
	require.Equal(t, "configured-editor", m.editorCmd)
}
