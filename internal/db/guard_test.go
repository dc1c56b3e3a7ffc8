package db

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func readOnlyConn() *Connection {
	return &Connection{name: "test", readOnly: true, log: zap.NewNop()}
}

func TestCheckWriteBlocksReadOnly(t *testing.T) {
	conn := readOnlyConn()
	assert.ErrorIs(t, conn.CheckWrite(), ErrReadOnly)

	// The guard short-circuits before any network use, so mutations on a
	// connection without a live client must fail cleanly.
	err := conn.InsertDocument(context.Background(), "app", "orders", bson.M{"a": 1})
	assert.ErrorIs(t, err, ErrReadOnly)
	err = conn.ReplaceDocument(context.Background(), "app", "orders", 1, bson.M{"a": 1})
	assert.ErrorIs(t, err, ErrReadOnly)
	err = conn.DeleteDocument(context.Background(), "app", "orders", 1)
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestCheckPipelineRejectsWriteStages(t *testing.T) {
	conn := readOnlyConn()

	ok := bson.A{
		bson.D{{Key: "$match", Value: bson.D{}}},
		bson.D{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$user"}}}},
	}
	assert.NoError(t, conn.CheckPipeline(ok))

	out := bson.A{
		bson.D{{Key: "$match", Value: bson.D{}}},
		bson.D{{Key: "$out", Value: "target"}},
	}
	assert.ErrorIs(t, conn.CheckPipeline(out), ErrReadOnly)

	merge := bson.A{bson.M{"$merge": bson.M{"into": "target"}}}
	assert.ErrorIs(t, conn.CheckPipeline(merge), ErrReadOnly)
}

func TestCheckPipelineAllowsWritesWhenNotReadOnly(t *testing.T) {
	conn := &Connection{name: "test", log: zap.NewNop()}
	pipe := bson.A{bson.D{{Key: "$out", Value: "target"}}}
	assert.NoError(t, conn.CheckPipeline(pipe))
}

func TestParseQuerySpec(t *testing.T) {
	limit := int64(5)
	q, err := ParseQuerySpec(
		json.RawMessage(`{"status": "open"}`),
		json.RawMessage(`{"name": 1}`),
		json.RawMessage(`{"created": -1}`),
		&limit,
	)
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "status", Value: "open"}}, q.Filter)
	assert.Equal(t, int64(5), q.Limit)

	_, err = ParseQuerySpec(json.RawMessage(`{broken`), nil, nil, nil)
	assert.Error(t, err)
}

func TestParsePipeline(t *testing.T) {
	pipe, err := ParsePipeline(json.RawMessage(`[{"$match": {"a": 1}}, {"$limit": 3}]`))
	require.NoError(t, err)
	require.Len(t, pipe, 2)

	pipe, err = ParsePipeline(nil)
	require.NoError(t, err)
	assert.Empty(t, pipe)

	_, err = ParsePipeline(json.RawMessage(`{"$match": {}}`))
	assert.Error(t, err)
}

func TestDocumentJSONRoundTrip(t *testing.T) {
	doc, err := ParseDocumentJSON([]byte(`{"name": "ada", "n": 3}`))
	require.NoError(t, err)
	assert.Equal(t, "ada", doc["name"])

	text, err := FormatDocumentJSON(doc)
	require.NoError(t, err)
	again, err := ParseDocumentJSON([]byte(text))
	require.NoError(t, err)
	assert.Equal(t, doc["name"], again["name"])
}

func TestErrorWrappersUnwrap(t *testing.T) {
	base := errors.New("boom")
	assert.ErrorIs(t, WrapQueryError(base), base)
	assert.ErrorIs(t, WrapWriteError(base), base)
	assert.ErrorIs(t, WrapConnectionError(base), base)
}
