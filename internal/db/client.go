// internal/db/client.go
// Database collaborator: connection resolution and read operations over
// the official driver.
package db

import (
	"context"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/hvmai/mongolens/internal/config"
)

// Connection is an established client bound to one configured
// connection entry.
type Connection struct {
	name     string
	client   *mongo.Client
	readOnly bool
	log      *zap.Logger
}

// Query is a decoded find specification ready for execution.
type Query struct {
	Filter     bson.D
	Projection bson.D
	Sort       bson.D
	Limit      int64
}

// Page is one page of documents plus the total count for the filter.
type Page struct {
	Docs  []bson.M
	Total int64
}

// Resolve connects the named configuration entry (or the default one
// when name is empty). The driver connects lazily, so errors from an
// unreachable server surface on the first read, not here. A username
// without a password triggers a keyring lookup.
func Resolve(ctx context.Context, cfg *config.Config, name string, log *zap.Logger) (*Connection, error) {
	entry, err := cfg.GetConnection(name)
	if err != nil {
		return nil, err
	}
	return ResolveEntry(ctx, entry, cfg.ReadOnly, log)
}

// ResolveEntry connects a specific configuration entry.
func ResolveEntry(ctx context.Context, entry *config.Connection, readOnly bool, log *zap.Logger) (*Connection, error) {
	if log == nil {
		log = zap.NewNop()
	}
	uri := entry.URI
	if config.NeedsPassword(uri) {
		// The password was moved into the keyring when the connection
		// was added.
		if pw, ok := config.LookupPassword(entry.Name); ok {
			uri = config.WithPassword(uri, pw)
		}
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, WrapConnectionError(err)
	}
	log.Debug("connection resolved",
		zap.String("connection", entry.Name),
		zap.Bool("read_only", readOnly))
	return &Connection{
		name:     entry.Name,
		client:   client,
		readOnly: readOnly,
		log:      log,
	}, nil
}

// Name returns the configured connection name.
func (c *Connection) Name() string { return c.name }

// ReadOnly reports whether mutations are blocked.
func (c *Connection) ReadOnly() bool { return c.readOnly }

// Close disconnects the underlying client.
func (c *Connection) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// ListDatabases returns database names.
func (c *Connection) ListDatabases(ctx context.Context) ([]string, error) {
	names, err := c.client.ListDatabaseNames(ctx, bson.D{})
	if err != nil {
		return nil, WrapQueryError(err)
	}
	return names, nil
}

// ListCollections returns collection names within a database.
func (c *Connection) ListCollections(ctx context.Context, database string) ([]string, error) {
	names, err := c.client.Database(database).ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, WrapQueryError(err)
	}
	return names, nil
}

// ListDocuments returns one page of a collection plus the total count.
func (c *Connection) ListDocuments(ctx context.Context, database, collection string, page, pageSize int64) (Page, error) {
	coll := c.client.Database(database).Collection(collection)

	total, err := coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return Page{}, WrapQueryError(err)
	}

	opts := options.Find().
		SetSkip(page * pageSize).
		SetLimit(pageSize)
	cursor, err := coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return Page{}, WrapQueryError(err)
	}
	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return Page{}, WrapQueryError(err)
	}
	return Page{Docs: docs, Total: total}, nil
}

// ExecuteQuery runs a find with the decoded specification.
func (c *Connection) ExecuteQuery(ctx context.Context, database, collection string, q Query) ([]bson.M, error) {
	opts := options.Find()
	if q.Projection != nil {
		opts = opts.SetProjection(q.Projection)
	}
	if q.Sort != nil {
		opts = opts.SetSort(q.Sort)
	}
	if q.Limit > 0 {
		opts = opts.SetLimit(q.Limit)
	}
	filter := q.Filter
	if filter == nil {
		filter = bson.D{}
	}

	cursor, err := c.client.Database(database).Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, WrapQueryError(err)
	}
	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, WrapQueryError(err)
	}
	return docs, nil
}

// ExecuteAggregation runs a pipeline. The write-stage guard applies even
// for this read entry point, since $out/$merge mutate through the back
// door.
func (c *Connection) ExecuteAggregation(ctx context.Context, database, collection string, pipeline bson.A) ([]bson.M, error) {
	if err := c.CheckPipeline(pipeline); err != nil {
		return nil, err
	}
	cursor, err := c.client.Database(database).Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, WrapQueryError(err)
	}
	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, WrapQueryError(err)
	}
	return docs, nil
}

// ParseQuerySpec converts raw JSON fragments (extended-JSON syntax) into
// an executable Query. Nil fragments stay nil.
func ParseQuerySpec(filter, projection, sort json.RawMessage, limit *int64) (Query, error) {
	var q Query
	var err error
	if q.Filter, err = parseDocument("filter", filter); err != nil {
		return Query{}, err
	}
	if q.Projection, err = parseDocument("projection", projection); err != nil {
		return Query{}, err
	}
	if q.Sort, err = parseDocument("sort", sort); err != nil {
		return Query{}, err
	}
	if limit != nil {
		q.Limit = *limit
	}
	return q, nil
}

func parseDocument(field string, raw json.RawMessage) (bson.D, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var doc bson.D
	if err := bson.UnmarshalExtJSON(raw, false, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return doc, nil
}

// ParsePipeline converts a raw JSON array into a driver pipeline. The
// ext-JSON decoder wants a document at the top level, so the array goes
// through a wrapper document.
func ParsePipeline(raw json.RawMessage) (bson.A, error) {
	if len(raw) == 0 {
		return bson.A{}, nil
	}
	wrapped := append(append([]byte(`{"pipeline":`), raw...), '}')
	var holder struct {
		Pipeline bson.A `bson:"pipeline"`
	}
	if err := bson.UnmarshalExtJSON(wrapped, false, &holder); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	return holder.Pipeline, nil
}

// ParseDocumentJSON decodes a single extended-JSON object, as produced by
// the editor workflow.
func ParseDocumentJSON(data []byte) (bson.M, error) {
	var doc bson.M
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// FormatDocumentJSON renders a document as indented extended JSON for
// editing and display.
func FormatDocumentJSON(doc interface{}) (string, error) {
	out, err := bson.MarshalExtJSONIndent(doc, false, false, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
