package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pagepack/pagepack/pkg/doc"
	"github.com/pagepack/pagepack/pkg/docio"
	"github.com/pagepack/pagepack/pkg/observability"
)

// MongoStore keeps documents in a MongoDB collection. Unlike the blob
// backends, documents are stored as structured bson, so deployments can
// index and query page data directly.
type MongoStore struct {
	coll *mongo.Collection
}

// mongoRecord is the collection schema: one record per document ID.
type mongoRecord struct {
	ID       string         `bson:"_id"`
	Document docio.Document `bson:"document"`
}

// NewMongoStore creates a store over the given collection. The caller
// keeps ownership of the underlying client; Close is a no-op.
func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

// Get retrieves a document by ID.
func (s *MongoStore) Get(ctx context.Context, id string) (d *doc.Document, err error) {
	defer func() { observability.Store().OnLoad(ctx, "mongo", id, err == nil, err) }()

	if err = ValidateID(id); err != nil {
		return nil, err
	}

	var rec mongoRecord
	findErr := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if findErr == mongo.ErrNoDocuments {
		err = ErrNotFound
		return nil, err
	}
	if findErr != nil {
		err = fmt.Errorf("mongo find: %w", findErr)
		return nil, err
	}

	d, err = rec.Document.ToDocument()
	if err != nil {
		return nil, fmt.Errorf("parse document %s: %w", id, err)
	}
	return d, nil
}

// Put stores a document under the given ID.
func (s *MongoStore) Put(ctx context.Context, id string, d *doc.Document) (err error) {
	defer func() { observability.Store().OnSave(ctx, "mongo", id, err) }()

	if err = ValidateID(id); err != nil {
		return err
	}

	rec := mongoRecord{ID: id, Document: docio.FromDocument(d)}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": id}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo replace: %w", err)
	}
	return nil
}

// Delete removes a document. Deleting a missing ID is not an error.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	return nil
}

// List returns the IDs of all stored documents.
func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	raw, err := s.coll.Distinct(ctx, "_id", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongo distinct: %w", err)
	}
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Close does nothing; the mongo client is owned by the caller.
func (s *MongoStore) Close() error { return nil }

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
