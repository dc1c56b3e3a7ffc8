package ui

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/hvmai/mongolens/internal/storage"
)

func TestChordSecondPressJumpsToTop(t *testing.T) {
	m := newTestModel(t)
	m.sel[ScreenConnections] = 1

	m, _ = m.handleKey(keyMsg("g"))
	require.Equal(t, chordAwaitingSecondPress, m.chord)
	require.Equal(t, 1, m.sel[ScreenConnections], "arming must not navigate")

	m, _ = m.handleKey(keyMsg("g"))
	require.Equal(t, chordIdle, m.chord)
	require.Equal(t, 0, m.sel[ScreenConnections])
}

func TestChordOtherKeyDisarmsWithoutSideEffect(t *testing.T) {
	m := newTestModel(t)
	m.sel[ScreenConnections] = 0

	m, _ = m.handleKey(keyMsg("g"))
	m, _ = m.handleKey(keyMsg("j"))
	require.Equal(t, chordIdle, m.chord)
	require.Equal(t, 0, m.sel[ScreenConnections], "disarming key is swallowed")
}

func TestMovementClamps(t *testing.T) {
	m := newTestModel(t) // two connections

	m, _ = m.handleKey(keyMsg("k"))
	require.Equal(t, 0, m.sel[ScreenConnections])

	m, _ = m.handleKey(keyMsg("j"))
	m, _ = m.handleKey(keyMsg("j"))
	m, _ = m.handleKey(keyMsg("j"))
	require.Equal(t, 1, m.sel[ScreenConnections])

	m, _ = m.handleKey(keyMsg("G"))
	require.Equal(t, 1, m.sel[ScreenConnections])
}

func TestFirstKeypressPopsWarning(t *testing.T) {
	m := newTestModel(t)
	m.snapshot.PushWarning("broken spec skipped")
	m.sel[ScreenConnections] = 0

	m, _ = m.handleKey(keyMsg("j"))
	_, ok := m.snapshot.PeekWarning()
	require.False(t, ok, "warning is acknowledged")
	require.Equal(t, 0, m.sel[ScreenConnections], "acknowledging key is swallowed")

	m, _ = m.handleKey(keyMsg("j"))
	require.Equal(t, 1, m.sel[ScreenConnections])
}

func TestBackResetsSideScreenSelection(t *testing.T) {
	m := newTestModel(t)
	m.snapshot.Queries = []storage.SavedQuery{
		{ID: "a", Scope: storage.SharedScope()},
		{ID: "b", Scope: storage.SharedScope()},
	}
	m.screen = ScreenSavedQueries
	m.sel[ScreenSavedQueries] = 1

	m = m.goBack()
	require.Equal(t, ScreenDocuments, m.screen)
	require.Equal(t, 0, m.sel[ScreenSavedQueries])
}

func TestBackFromConnectionsIsNoop(t *testing.T) {
	m := newTestModel(t)
	m = m.goBack()
	require.Equal(t, ScreenConnections, m.screen)
}

func TestScreenParents(t *testing.T) {
	require.Equal(t, ScreenConnections, ScreenDatabases.parent())
	require.Equal(t, ScreenDatabases, ScreenCollections.parent())
	require.Equal(t, ScreenCollections, ScreenDocuments.parent())
	require.Equal(t, ScreenDocuments, ScreenDocumentView.parent())
	require.Equal(t, ScreenDocuments, ScreenSavedQueries.parent())
	require.Equal(t, ScreenDocuments, ScreenSaveQueryScope.parent())
	require.Equal(t, ScreenConnections, ScreenAddConnectionScope.parent())
}

func TestForwardWithoutSelectionAborts(t *testing.T) {
	m := newTestModel(t)
	m.screen = ScreenDatabases
	m.sel[ScreenDatabases] = -1

	m, cmd := m.goForward()
	require.Nil(t, cmd)
	require.Equal(t, ScreenDatabases, m.screen)
	require.Equal(t, "no database selected", m.status)
}

func TestScopeSelectOpensNamePrompt(t *testing.T) {
	m := newTestModel(t)
	m.curDB, m.curColl = "app", "orders"
	m.screen = ScreenSaveQueryScope
	m.sel[ScreenSaveQueryScope] = 1

	m, _ = m.goForward()
	ov, ok := m.overlay.(textPromptOverlay)
	require.True(t, ok)
	require.Equal(t, promptQueryName, ov.purpose)
	require.Equal(t, storage.CollectionScope("app", "orders"), ov.scope)
}

func TestPagingOnlyOnPlainListing(t *testing.T) {
	m := newTestModel(t)
	m.screen = ScreenDocuments
	m.curDB, m.curColl = "app", "orders"
	m.docs = []bson.M{{"_id": 1}}
	m.source = sourceSavedQuery

	m, cmd := m.pageForward()
	require.Nil(t, cmd, "applied result sets do not page")

	m.source = sourceCollection
	m, cmd = m.pageForward()
	require.NotNil(t, cmd)
	require.NotZero(t, m.expected[loadDocuments])
}

func TestClearAppliedResultsReloadsCollection(t *testing.T) {
	m := newTestModel(t)
	m.screen = ScreenDocuments
	m.curDB, m.curColl = "app", "orders"
	m.source = sourceInlineQuery

	m, cmd := m.handleKey(keyMsg("c"))
	require.NotNil(t, cmd)
	require.NotZero(t, m.expected[loadDocuments])
}

func TestDeleteBlockedWithoutConnection(t *testing.T) {
	m := newTestModel(t)
	m.screen = ScreenDocuments
	m.curDB, m.curColl = "app", "orders"
	m.docs = []bson.M{{"_id": "doc-1"}}
	m.sel[ScreenDocuments] = 0

	// No connection configured in the fixture, so the write guard stops
	// the workflow before any overlay opens.
	m, _ = m.handleKey(keyMsg("d"))
	require.Nil(t, m.overlay)
	require.Equal(t, "no connection", m.status)
}
