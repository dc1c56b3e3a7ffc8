// internal/db/mutate.go
// Mutation operations. These are called synchronously from the UI
// thread; the read-only guard runs before any network traffic.
package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// writeStages are pipeline stages that mutate despite running through
// the aggregation entry point.
var writeStages = map[string]bool{
	"$out":   true,
	"$merge": true,
}

// CheckWrite is the read-only guard shared by every mutation path. The
// UI re-checks it at each call site as defense in depth.
func (c *Connection) CheckWrite() error {
	if c.readOnly {
		return ErrReadOnly
	}
	return nil
}

// CheckPipeline rejects write stages when the connection is read-only.
func (c *Connection) CheckPipeline(pipeline bson.A) error {
	if !c.readOnly {
		return nil
	}
	for _, stage := range pipeline {
		switch s := stage.(type) {
		case bson.D:
			for _, elem := range s {
				if writeStages[elem.Key] {
					return fmt.Errorf("%w: pipeline stage %s writes to a collection", ErrReadOnly, elem.Key)
				}
			}
		case bson.M:
			for key := range s {
				if writeStages[key] {
					return fmt.Errorf("%w: pipeline stage %s writes to a collection", ErrReadOnly, key)
				}
			}
		}
	}
	return nil
}

// InsertDocument inserts a single document.
func (c *Connection) InsertDocument(ctx context.Context, database, collection string, doc bson.M) error {
	if err := c.CheckWrite(); err != nil {
		return err
	}
	_, err := c.client.Database(database).Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return WrapWriteError(err)
	}
	c.log.Debug("document inserted",
		zap.String("database", database),
		zap.String("collection", collection))
	return nil
}

// ReplaceDocument replaces the document with the given identifier.
func (c *Connection) ReplaceDocument(ctx context.Context, database, collection string, id interface{}, doc bson.M) error {
	if err := c.CheckWrite(); err != nil {
		return err
	}
	res, err := c.client.Database(database).Collection(collection).ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, doc)
	if err != nil {
		return WrapWriteError(err)
	}
	if res.MatchedCount == 0 {
		return WrapWriteError(fmt.Errorf("no document matched _id %v", id))
	}
	c.log.Debug("document replaced",
		zap.String("database", database),
		zap.String("collection", collection))
	return nil
}

// DeleteDocument deletes the document with the given identifier.
func (c *Connection) DeleteDocument(ctx context.Context, database, collection string, id interface{}) error {
	if err := c.CheckWrite(); err != nil {
		return err
	}
	res, err := c.client.Database(database).Collection(collection).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return WrapWriteError(err)
	}
	if res.DeletedCount == 0 {
		return WrapWriteError(fmt.Errorf("no document matched _id %v", id))
	}
	c.log.Debug("document deleted",
		zap.String("database", database),
		zap.String("collection", collection))
	return nil
}
