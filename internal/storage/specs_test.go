package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveScope(t *testing.T) {
	scope, err := DeriveScope("orders_by_user")
	require.NoError(t, err)
	assert.Equal(t, SharedScope(), scope)

	scope, err = DeriveScope("app.orders.recent")
	require.NoError(t, err)
	assert.Equal(t, CollectionScope("app", "orders"), scope)

	// Collection names may themselves contain dots.
	scope, err = DeriveScope("app.foo.bar.users.active")
	require.NoError(t, err)
	assert.Equal(t, CollectionScope("app", "foo.bar.users"), scope)

	_, err = DeriveScope("app.users")
	assert.ErrorContains(t, err, "ambiguous")

	_, err = DeriveScope("")
	assert.Error(t, err)

	_, err = DeriveScope("app..users.x")
	assert.ErrorContains(t, err, "empty segment")
}

func TestSpecName(t *testing.T) {
	assert.Equal(t, "orders_by_user", SpecName("orders_by_user"))
	assert.Equal(t, "recent", SpecName("app.orders.recent"))
	assert.Equal(t, "active", SpecName("app.foo.bar.users.active"))
}

func TestParseQueryPayload(t *testing.T) {
	q, err := ParseQueryPayload("app.orders.recent", []byte(`{
		"filter": {"status": "open"},
		"sort": {"created": -1},
		"limit": 20
	}`))
	require.NoError(t, err)
	assert.Equal(t, CollectionScope("app", "orders"), q.Scope)
	assert.JSONEq(t, `{"status":"open"}`, string(q.Filter))
	require.NotNil(t, q.Limit)
	assert.Equal(t, int64(20), *q.Limit)
	assert.Nil(t, q.Projection)
}

func TestParseQueryPayloadRejectsUnknownField(t *testing.T) {
	_, err := ParseQueryPayload("orders_by_user", []byte(`{"filter": {}, "hint": {}}`))
	assert.ErrorContains(t, err, `unknown field "hint"`)
}

func TestParseQueryPayloadRejectsNonObject(t *testing.T) {
	_, err := ParseQueryPayload("orders_by_user", []byte(`[1, 2]`))
	assert.ErrorContains(t, err, "JSON object")

	_, err = ParseQueryPayload("orders_by_user", []byte(`{"limit": "ten"}`))
	assert.ErrorContains(t, err, "integer")

	_, err = ParseQueryPayload("orders_by_user", []byte(`{"limit": -1}`))
	assert.ErrorContains(t, err, "negative")
}

func TestParseAggregationPayload(t *testing.T) {
	a, err := ParseAggregationPayload("app.orders.by_user", []byte(`[
		{"$match": {"status": "open"}},
		{"$group": {"_id": "$user", "n": {"$sum": 1}}}
	]`))
	require.NoError(t, err)
	assert.Equal(t, CollectionScope("app", "orders"), a.Scope)

	_, err = ParseAggregationPayload("x", []byte(`{"$match": {}}`))
	assert.ErrorContains(t, err, "JSON array")
}

func TestWriteRejectsScopeMismatchBeforeDisk(t *testing.T) {
	dir := t.TempDir()

	err := WriteSavedAggregation(dir, SavedAggregation{
		ID:       "orders_by_user",
		Scope:    CollectionScope("app", "orders"),
		Pipeline: []byte(`[]`),
	}, false)
	assert.ErrorContains(t, err, "does not match")

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "nothing may be written on a scope mismatch")
}

func TestWriteAndOverwrite(t *testing.T) {
	dir := t.TempDir()
	q := SavedQuery{
		ID:     "app.orders.recent",
		Scope:  CollectionScope("app", "orders"),
		Filter: []byte(`{"status":"open"}`),
	}

	require.NoError(t, WriteSavedQuery(dir, q, false))
	assert.True(t, SpecExists(dir, q.ID))

	// Second write without the overwrite flag is rejected.
	err := WriteSavedQuery(dir, q, false)
	assert.ErrorContains(t, err, "already exists")

	q.Filter = []byte(`{"status":"closed"}`)
	require.NoError(t, WriteSavedQuery(dir, q, true))

	loaded, warns, err := LoadSavedQueries(dir)
	require.NoError(t, err)
	assert.Empty(t, warns)
	require.Len(t, loaded, 1)
	assert.JSONEq(t, `{"status":"closed"}`, string(loaded[0].Filter))
}

func TestScanSkipsBrokenFilesWithWarnings(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteSavedQuery(dir, SavedQuery{ID: "good", Scope: SharedScope()}, false))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{not json`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "two.segments.json"), []byte(`{}`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(`ignored`), 0600))

	queries, warns, err := LoadSavedQueries(dir)
	require.NoError(t, err)
	require.Len(t, queries, 1)
	assert.Equal(t, "good", queries[0].ID)
	assert.Len(t, warns, 2)
}

func TestScanMissingDirIsEmpty(t *testing.T) {
	queries, warns, err := LoadSavedQueries(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, queries)
	assert.Empty(t, warns)
}

func TestUpsertPreservesOrder(t *testing.T) {
	list := []SavedQuery{
		{ID: "a"}, {ID: "b"}, {ID: "c"},
	}
	list = UpsertSavedQuery(list, SavedQuery{ID: "b", Filter: []byte(`{}`)})
	require.Len(t, list, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.NotNil(t, list[1].Filter)

	list = UpsertSavedQuery(list, SavedQuery{ID: "d"})
	require.Len(t, list, 4)
	assert.Equal(t, "d", list[3].ID)
}
