// Package memory implements the document store contract in process memory.
// It mirrors the MongoDB backend closely enough (bson round-trips included)
// to back the test suite and offline runs.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/agrovex/campoflow/internal/store"
)

type collection struct {
	docs  map[string]bson.M
	order []string
}

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{collections: make(map[string]*collection)}
}

func (s *Store) coll(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{docs: make(map[string]bson.M)}
		s.collections[name] = c
	}
	return c
}

func encode(doc any) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func decode(fields bson.M, out any) error {
	raw, err := bson.Marshal(fields)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, collectionName, id string, out any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collectionName]
	if !ok {
		return store.ErrNoDocument
	}
	doc, ok := c.docs[id]
	if !ok {
		return store.ErrNoDocument
	}

	if err := decode(doc, out); err != nil {
		return fmt.Errorf("decode %s/%s: %w", collectionName, id, err)
	}
	return nil
}

// Query implements store.Store. Results come back in insertion order.
func (s *Store) Query(ctx context.Context, collectionName string, filters []store.Filter, out any) error {
	outValue := reflect.ValueOf(out)
	if outValue.Kind() != reflect.Pointer || outValue.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("query %s: out must be a pointer to a slice", collectionName)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	slice := outValue.Elem()
	slice.SetLen(0)
	elemType := slice.Type().Elem()

	c, ok := s.collections[collectionName]
	if !ok {
		return nil
	}

	for _, id := range c.order {
		doc, ok := c.docs[id]
		if !ok {
			continue
		}
		if !matches(doc, filters) {
			continue
		}

		elem := reflect.New(elemType)
		if err := decode(doc, elem.Interface()); err != nil {
			return fmt.Errorf("decode %s/%s: %w", collectionName, id, err)
		}
		slice = reflect.Append(slice, elem.Elem())
	}

	outValue.Elem().Set(slice)
	return nil
}

// Insert implements store.Store.
func (s *Store) Insert(ctx context.Context, collectionName string, doc any) (string, error) {
	fields, err := encode(doc)
	if err != nil {
		return "", fmt.Errorf("encode %s document: %w", collectionName, err)
	}

	id, _ := fields["_id"].(string)
	if id == "" {
		id = primitive.NewObjectID().Hex()
	}
	fields["_id"] = id
	fields["version"] = int64(1)

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(collectionName)
	c.docs[id] = fields
	c.order = append(c.order, id)

	return id, nil
}

// Update implements store.Store.
func (s *Store) Update(ctx context.Context, collectionName, id string, fields map[string]any) error {
	return s.update(collectionName, id, -1, fields)
}

// UpdateVersioned implements store.Store.
func (s *Store) UpdateVersioned(ctx context.Context, collectionName, id string, version int64, fields map[string]any) error {
	return s.update(collectionName, id, version, fields)
}

func (s *Store) update(collectionName, id string, expectedVersion int64, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collectionName]
	if !ok {
		return store.ErrNoDocument
	}
	doc, ok := c.docs[id]
	if !ok {
		return store.ErrNoDocument
	}

	current := asInt64(doc["version"])
	if expectedVersion >= 0 && current != expectedVersion {
		return store.ErrConflict
	}

	// Normalize assigned values the same way a bson round-trip would.
	patch, err := encode(bson.M(fields))
	if err != nil {
		return fmt.Errorf("encode %s/%s update: %w", collectionName, id, err)
	}
	for key, value := range patch {
		doc[key] = value
	}
	doc["version"] = current + 1

	return nil
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, collectionName, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collectionName]
	if !ok {
		return store.ErrNoDocument
	}
	if _, ok := c.docs[id]; !ok {
		return store.ErrNoDocument
	}

	delete(c.docs, id)
	for i, docID := range c.order {
		if docID == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func matches(doc bson.M, filters []store.Filter) bool {
	for _, f := range filters {
		value, ok := doc[f.Field]
		if !ok {
			return false
		}
		if !looselyEqual(value, f.Value) {
			return false
		}
	}
	return true
}

// looselyEqual compares a stored bson value against a caller-supplied filter
// value, tolerating the type shifts a bson round-trip introduces.
func looselyEqual(stored, requested any) bool {
	if reflect.DeepEqual(stored, requested) {
		return true
	}
	return fmt.Sprint(stored) == fmt.Sprint(requested)
}

func asInt64(value any) int64 {
	switch v := value.(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}
