package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAddAndList(t *testing.T) {
	store, err := NewStoreAt(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	first := &Entry{
		Connection: "local",
		Target:     "app.orders",
		Kind:       "query",
		Spec:       `{"filter": {"status": "open"}}`,
		ExecutedAt: time.Now().Add(-time.Minute),
		DurationMs: 12,
		DocCount:   3,
		Status:     "success",
	}
	require.NoError(t, store.Add(first))
	assert.NotZero(t, first.ID)

	second := &Entry{
		Connection: "local",
		Target:     "app.orders",
		Kind:       "aggregation",
		Spec:       `[{"$match": {}}]`,
		ExecutedAt: time.Now(),
		Status:     "error",
		Error:      "query failed: timeout",
	}
	require.NoError(t, store.Add(second))

	entries, err := store.List("local", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Newest first.
	assert.Equal(t, "aggregation", entries[0].Kind)
	assert.Equal(t, "query failed: timeout", entries[0].Error)
	assert.Equal(t, "query", entries[1].Kind)

	entries, err = store.List("other", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
