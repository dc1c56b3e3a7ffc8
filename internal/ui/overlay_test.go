package ui

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hvmai/mongolens/internal/storage"
)

func TestTypedPhraseWrongInputKeepsBuffer(t *testing.T) {
	m := newTestModel(t)
	m.overlay = confirmOverlay{
		prompt: "delete the selected document?",
		phrase: "Delete",
		action: deleteDocumentAction{id: "x"},
	}

	m = typeString(t, m, "nope")
	m, _ = m.handleOverlayKey(keyMsg("enter"))

	ov, ok := m.overlay.(confirmOverlay)
	require.True(t, ok, "confirmation must stay open")
	require.Equal(t, "nope", ov.input, "buffer must survive a failed attempt")
	require.Equal(t, "must type 'Delete'", ov.errMsg)
}

func TestTypedPhraseMatchExecutes(t *testing.T) {
	m := newTestModel(t)
	m.overlay = confirmOverlay{
		prompt: "delete the selected document?",
		phrase: "Delete",
		action: deleteDocumentAction{id: "x"},
	}

	// Case-insensitive, whitespace-trimmed match.
	m = typeString(t, m, " delete ")
	m, _ = m.handleOverlayKey(keyMsg("enter"))

	require.Nil(t, m.overlay, "matching phrase resolves the confirmation")
	// No connection in the fixture, so the delete aborts at the guard
	// rather than during the confirmation.
	require.Equal(t, "no connection", m.status)
}

func TestTypedPhraseEscapeCancels(t *testing.T) {
	m := newTestModel(t)
	m.overlay = confirmOverlay{phrase: "Delete", action: deleteDocumentAction{id: "x"}}

	m, _ = m.handleOverlayKey(keyMsg("esc"))
	require.Nil(t, m.overlay)
	require.Equal(t, "cancelled", m.status)
}

func TestYesNoIgnoresOtherKeys(t *testing.T) {
	m := newTestModel(t)
	m.overlay = confirmOverlay{
		prompt: "overwrite?",
		action: overwriteQueryAction{query: storage.SavedQuery{ID: "recent", Scope: storage.SharedScope()}},
	}

	m, _ = m.handleOverlayKey(keyMsg("x"))
	require.NotNil(t, m.overlay, "unrecognized key leaves the prompt open")

	m, _ = m.handleOverlayKey(keyMsg("n"))
	require.Nil(t, m.overlay)
	require.Equal(t, "cancelled", m.status)
}

func TestYesConfirmOverwritesSpec(t *testing.T) {
	m := newTestModel(t)

	q := storage.SavedQuery{ID: "recent", Scope: storage.SharedScope(), Filter: []byte(`{"a":1}`)}
	require.NoError(t, storage.WriteSavedQuery(m.paths.QueriesDir, q, false))

	updated := storage.SavedQuery{ID: "recent", Scope: storage.SharedScope(), Filter: []byte(`{"a":2}`)}
	m.overlay = confirmOverlay{prompt: "overwrite?", action: overwriteQueryAction{query: updated}}

	m, _ = m.handleOverlayKey(keyMsg("y"))
	require.Nil(t, m.overlay)
	require.Contains(t, m.status, `saved query "recent"`)

	queries, warns, err := storage.LoadSavedQueries(m.paths.QueriesDir)
	require.NoError(t, err)
	require.Empty(t, warns)
	require.Len(t, queries, 1)
	require.JSONEq(t, `{"a":2}`, string(queries[0].Filter))
}

func TestTextPromptSubmitRequiresValue(t *testing.T) {
	m := newTestModel(t)
	m.overlay = textPromptOverlay{prompt: "export to", purpose: promptExportPath}

	m, _ = m.handleOverlayKey(keyMsg("enter"))
	require.NotNil(t, m.overlay, "empty submission keeps the prompt open")

	m, _ = m.handleOverlayKey(keyMsg("esc"))
	require.Nil(t, m.overlay)
}

func TestSpecIDForName(t *testing.T) {
	id, err := specIDForName(storage.SharedScope(), "recent")
	require.NoError(t, err)
	require.Equal(t, "recent", id)

	id, err = specIDForName(storage.CollectionScope("app", "orders"), "recent")
	require.NoError(t, err)
	require.Equal(t, "app.orders.recent", id)

	_, err = specIDForName(storage.SharedScope(), "bad.name")
	require.Error(t, err)
}
