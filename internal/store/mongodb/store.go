// Package mongodb implements the document store contract on MongoDB.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/agrovex/campoflow/internal/store"
)

// Store is a MongoDB-backed implementation of store.Store. Document ids are
// stored as hex strings so domain models stay free of driver types.
type Store struct {
	client *mongo.Client
	dbName string
}

// Connect dials MongoDB, verifies the connection and returns a Store.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{client: client, dbName: dbName}, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) coll(name string) *mongo.Collection {
	return s.client.Database(s.dbName).Collection(name)
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, collection, id string, out any) error {
	err := s.coll(collection).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if err == mongo.ErrNoDocuments {
		return store.ErrNoDocument
	}
	if err != nil {
		return fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return nil
}

// Query implements store.Store.
func (s *Store) Query(ctx context.Context, collection string, filters []store.Filter, out any) error {
	query := bson.M{}
	for _, f := range filters {
		query[f.Field] = f.Value
	}

	cursor, err := s.coll(collection).Find(ctx, query)
	if err != nil {
		return fmt.Errorf("query %s: %w", collection, err)
	}

	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s query results: %w", collection, err)
	}
	return nil
}

// Insert implements store.Store.
func (s *Store) Insert(ctx context.Context, collection string, doc any) (string, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode %s document: %w", collection, err)
	}

	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return "", fmt.Errorf("encode %s document: %w", collection, err)
	}

	id, _ := fields["_id"].(string)
	if id == "" {
		id = primitive.NewObjectID().Hex()
	}
	fields["_id"] = id
	fields["version"] = int64(1)

	if _, err := s.coll(collection).InsertOne(ctx, fields); err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	return id, nil
}

// Update implements store.Store.
func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	update := bson.M{"$set": bson.M(fields), "$inc": bson.M{"version": 1}}

	result, err := s.coll(collection).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if result.MatchedCount == 0 {
		return store.ErrNoDocument
	}
	return nil
}

// UpdateVersioned implements store.Store.
func (s *Store) UpdateVersioned(ctx context.Context, collection, id string, version int64, fields map[string]any) error {
	update := bson.M{"$set": bson.M(fields), "$inc": bson.M{"version": 1}}

	result, err := s.coll(collection).UpdateOne(ctx, bson.M{"_id": id, "version": version}, update)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if result.MatchedCount == 0 {
		count, err := s.coll(collection).CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("update %s/%s: %w", collection, id, err)
		}
		if count == 0 {
			return store.ErrNoDocument
		}
		return store.ErrConflict
	}
	return nil
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	result, err := s.coll(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if result.DeletedCount == 0 {
		return store.ErrNoDocument
	}
	return nil
}
