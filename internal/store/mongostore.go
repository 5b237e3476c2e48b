package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoStore is the MongoDB-backed DocumentStore, used for self-hosted
// deployments. The server timestamp is stamped at this layer, since Mongo has
// no write-time sentinel equivalent.
type MongoStore struct {
	db *mongo.Database
}

// NewMongoStore wraps a connected Mongo database handle.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

// Query returns all documents in the collection whose field equals the value.
func (s *MongoStore) Query(ctx context.Context, collection, field string, equals any) ([]Document, error) {
	cursor, err := s.db.Collection(collection).Find(ctx, bson.M{field: equals})
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var out []Document
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode document in %q: %w", collection, err)
		}
		out = append(out, fromBSON(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("query %q: %w", collection, err)
	}
	return out, nil
}

// Get returns the document with the given id, or (nil, nil) when absent.
func (s *MongoStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid document ID format: %w", err)
	}

	var raw bson.M
	err = s.db.Collection(collection).FindOne(ctx, bson.M{"_id": objID}).Decode(&raw)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %q/%s: %w", collection, id, err)
	}
	doc := fromBSON(raw)
	return &doc, nil
}

// Add persists a new document and returns its assigned id.
func (s *MongoStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	objID := primitive.NewObjectID()
	insert := bson.M{"_id": objID}
	for k, v := range resolveMongoTimestamps(data) {
		insert[k] = v
	}
	if _, err := s.db.Collection(collection).InsertOne(ctx, insert); err != nil {
		return "", fmt.Errorf("add to %q: %w", collection, err)
	}
	return objID.Hex(), nil
}

// Update merges the partial field map into an existing document.
func (s *MongoStore) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid document ID format: %w", err)
	}

	res, err := s.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": objID},
		bson.M{"$set": bson.M(resolveMongoTimestamps(partial))})
	if err != nil {
		return fmt.Errorf("update %q/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateIf merges the partial field map only when the guard field currently
// equals the given value, using a filtered single-document update.
func (s *MongoStore) UpdateIf(ctx context.Context, collection, id, field string, equals any, partial map[string]any) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("invalid document ID format: %w", err)
	}

	res, err := s.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": objID, field: equals},
		bson.M{"$set": bson.M(resolveMongoTimestamps(partial))})
	if err != nil {
		return false, fmt.Errorf("conditional update %q/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		// Distinguish a missing document from a failed guard.
		exists, err := s.db.Collection(collection).CountDocuments(ctx, bson.M{"_id": objID})
		if err != nil {
			return false, fmt.Errorf("conditional update %q/%s: %w", collection, id, err)
		}
		if exists == 0 {
			return false, ErrNotFound
		}
		return false, nil
	}
	return true, nil
}

// Delete removes the document with the given id.
func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid document ID format: %w", err)
	}

	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("delete %q/%s: %w", collection, id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func resolveMongoTimestamps(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if _, ok := v.(serverTimestamp); ok {
			out[k] = time.Now().UTC()
			continue
		}
		out[k] = v
	}
	return out
}

// fromBSON converts a decoded bson document into the backend-neutral shape:
// string-keyed maps, plain slices, and time.Time timestamps.
func fromBSON(raw bson.M) Document {
	doc := Document{Data: make(map[string]any, len(raw))}
	for k, v := range raw {
		if k == "_id" {
			if objID, ok := v.(primitive.ObjectID); ok {
				doc.ID = objID.Hex()
			} else {
				doc.ID = fmt.Sprint(v)
			}
			continue
		}
		doc.Data[k] = normalizeBSON(v)
	}
	return doc
}

func normalizeBSON(v any) any {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.ObjectID:
		return t.Hex()
	case bson.M:
		m := make(map[string]any, len(t))
		for k, el := range t {
			m[k] = normalizeBSON(el)
		}
		return m
	case bson.D:
		m := make(map[string]any, len(t))
		for _, el := range t {
			m[el.Key] = normalizeBSON(el.Value)
		}
		return m
	case primitive.A:
		list := make([]any, len(t))
		for i, el := range t {
			list[i] = normalizeBSON(el)
		}
		return list
	case int32:
		return int(t)
	case int64:
		return int(t)
	}
	return v
}
