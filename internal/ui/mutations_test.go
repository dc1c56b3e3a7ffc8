package ui

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/hvmai/mongolens/internal/config"
	"github.com/hvmai/mongolens/internal/storage"
)

func TestInlineDraftSurvivesParseFailure(t *testing.T) {
	m := newTestModel(t)
	m.curDB, m.curColl = "app", "orders"

	m, cmd := m.applyInlineQuery(`{"filter": `)
	require.Nil(t, cmd, "broken draft must not dispatch")
	require.False(t, m.queryDraft.parsed)
	require.Equal(t, `{"filter": `, m.queryDraft.text, "raw text survives the failure")
	require.NotEmpty(t, m.status)

	m, cmd = m.applyInlineQuery(`{"filter": {"done": false}, "limit": 3}`)
	require.NotNil(t, cmd)
	require.True(t, m.queryDraft.parsed)
	require.NotZero(t, m.expected[loadInlineQueryExec])
}

func TestInlineDraftSurvivesExecFailure(t *testing.T) {
	m := newTestModel(t)
	m.curDB, m.curColl = "app", "orders"

	m, _ = m.applyInlineQuery(`{"filter": {}}`)
	id := m.expected[loadInlineQueryExec]

	m, _ = m.handleLoadResult(loadResultMsg{kind: loadInlineQueryExec, id: id, err: errors.New("boom")})
	require.Equal(t, loadFailed, m.loads[loadInlineQueryExec].state)
	require.True(t, m.queryDraft.parsed, "draft stays usable after a failed run")
	require.Equal(t, `{"filter": {}}`, m.queryDraft.text)
}

func TestInlineAggregationRejectsObjectPayload(t *testing.T) {
	m := newTestModel(t)
	m.curDB, m.curColl = "app", "orders"

	m, cmd := m.applyInlineAggregation(`{"$match": {}}`)
	require.Nil(t, cmd)
	require.False(t, m.aggDraft.parsed)

	m, cmd = m.applyInlineAggregation(`[{"$match": {}}]`)
	require.NotNil(t, cmd)
	require.True(t, m.aggDraft.parsed)
}

func TestSaveQueryNewSpec(t *testing.T) {
	m := newTestModel(t)

	m = m.applySaveQuery("recent", `{"filter": {"done": false}}`)
	require.Nil(t, m.overlay)
	require.Contains(t, m.status, `saved query "recent"`)
	require.Len(t, m.snapshot.Queries, 1)
	require.True(t, storage.SpecExists(m.paths.QueriesDir, "recent"))
}

func TestSaveQueryExistingPausesForConfirmation(t *testing.T) {
	m := newTestModel(t)
	m = m.applySaveQuery("recent", `{"filter": {}}`)

	m = m.applySaveQuery("recent", `{"filter": {"a": 1}}`)
	ov, ok := m.overlay.(confirmOverlay)
	require.True(t, ok, "existing file pauses in a confirmation")
	require.IsType(t, overwriteQueryAction{}, ov.action)
	require.Len(t, m.snapshot.Queries, 1, "nothing written before confirmation")
}

func TestSaveQueryRejectsUnknownField(t *testing.T) {
	m := newTestModel(t)

	m = m.applySaveQuery("recent", `{"filter": {}, "fitler": {}}`)
	require.Contains(t, m.status, "unknown field")
	require.Empty(t, m.snapshot.Queries)
	require.False(t, storage.SpecExists(m.paths.QueriesDir, "recent"))
}

func TestSaveQueryRejectsTwoSegmentID(t *testing.T) {
	m := newTestModel(t)

	m = m.applySaveQuery("app.users", `{"filter": {}}`)
	require.NotEmpty(t, m.status)
	require.False(t, storage.SpecExists(m.paths.QueriesDir, "app.users"))
}

func TestSaveAggregationUpsertsInMemory(t *testing.T) {
	m := newTestModel(t)
	m.snapshot.Aggregations = []storage.SavedAggregation{
		{ID: "first", Scope: storage.SharedScope(), Pipeline: []byte(`[]`)},
	}

	m = m.applySaveAggregation("totals", `[{"$group": {"_id": null}}]`)
	require.Len(t, m.snapshot.Aggregations, 2)
	require.Equal(t, "first", m.snapshot.Aggregations[0].ID, "existing order preserved")
	require.Equal(t, "totals", m.snapshot.Aggregations[1].ID)
}

func TestAddConnectionPersistsAndUpdatesConfig(t *testing.T) {
	m := newTestModel(t)

	content := "name = \"dev\"\nuri = \"mongodb://dev:27017\"\n"
	m = m.applyAddConnection(addConnectionAction{global: false}, content)
	require.Contains(t, m.status, `connection "dev" added`)
	require.Len(t, m.snapshot.Config.Connections, 3)

	// The file round-trips through the config loader.
	cfg, err := config.Load(config.Paths{
		GlobalConfig:  m.paths.GlobalConfig,
		ProjectConfig: m.paths.ProjectConfig,
	})
	require.NoError(t, err)
	conn, err := cfg.GetConnection("dev")
	require.NoError(t, err)
	require.Equal(t, "mongodb://dev:27017", conn.URI)
}

func TestAddConnectionDuplicateNameRejected(t *testing.T) {
	m := newTestModel(t)
	content := "name = \"dev\"\nuri = \"mongodb://dev:27017\"\n"

	m = m.applyAddConnection(addConnectionAction{global: false}, content)
	before := len(m.snapshot.Config.Connections)

	m = m.applyAddConnection(addConnectionAction{global: false}, content)
	require.Contains(t, m.status, "already exists")
	require.Len(t, m.snapshot.Config.Connections, before)
}

func TestAddConnectionInvalidTOML(t *testing.T) {
	m := newTestModel(t)

	m = m.applyAddConnection(addConnectionAction{global: false}, "name = ")
	require.Contains(t, m.status, "invalid connection")
	_, err := os.Stat(m.paths.ProjectConfig)
	require.True(t, os.IsNotExist(err), "nothing persisted")
}

func TestExportDocuments(t *testing.T) {
	m := newTestModel(t)
	m.docs = []bson.M{{"_id": "a", "n": int32(1)}, {"_id": "b", "n": int32(2)}}

	path := t.TempDir() + "/out.json"
	m = m.exportDocuments(path)
	require.Contains(t, m.status, "exported 2 documents")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"a"`)
	require.Contains(t, string(data), `"b"`)
}

func TestExportNothing(t *testing.T) {
	m := newTestModel(t)
	m = m.exportDocuments(t.TempDir() + "/out.json")
	require.Equal(t, "nothing to export", m.status)
}
