package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore is the Firestore-backed DocumentStore. This is the backend
// the mobile clients share, so collection and field names line up with the
// documents they already write.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore wraps an initialized Firestore client.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// Query returns all documents in the collection whose field equals the value.
func (s *FirestoreStore) Query(ctx context.Context, collection, field string, equals any) ([]Document, error) {
	iter := s.client.Collection(collection).Where(field, "==", equals).Documents(ctx)
	defer iter.Stop()

	var out []Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", collection, err)
		}
		out = append(out, Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return out, nil
}

// Get returns the document with the given id, or (nil, nil) when absent.
func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %q/%s: %w", collection, id, err)
	}
	return &Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

// Add persists a new document and returns its server-assigned id.
func (s *FirestoreStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, resolveFirestoreTimestamps(data))
	if err != nil {
		return "", fmt.Errorf("add to %q: %w", collection, err)
	}
	return ref.ID, nil
}

// Update merges the partial field map into an existing document. Built on
// DocumentRef.Update rather than Set with MergeAll: Set would create a
// missing document instead of failing, breaking the ErrNotFound contract the
// other backends honor.
func (s *FirestoreStore) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	ref := s.client.Collection(collection).Doc(id)
	if _, err := ref.Update(ctx, updatesFromPartial(partial)); err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("update %q/%s: %w", collection, id, err)
	}
	return nil
}

// UpdateIf merges the partial field map in a transaction, only when the guard
// field currently equals the given value.
func (s *FirestoreStore) UpdateIf(ctx context.Context, collection, id, field string, equals any, partial map[string]any) (bool, error) {
	ref := s.client.Collection(collection).Doc(id)
	applied := false
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if snap.Data()[field] != equals {
			return nil
		}
		applied = true
		return tx.Set(ref, resolveFirestoreTimestamps(partial), firestore.MergeAll)
	})
	if err != nil {
		if err == ErrNotFound {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("conditional update %q/%s: %w", collection, id, err)
	}
	return applied, nil
}

// Delete removes the document with the given id. The Exists precondition
// turns Firestore's silent delete-of-nothing into ErrNotFound.
func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx, firestore.Exists); err != nil {
		switch status.Code(err) {
		case codes.NotFound, codes.FailedPrecondition:
			return ErrNotFound
		}
		return fmt.Errorf("delete %q/%s: %w", collection, id, err)
	}
	return nil
}

// updatesFromPartial converts a partial field map into field updates,
// translating ServerTimestamp sentinels.
func updatesFromPartial(partial map[string]any) []firestore.Update {
	updates := make([]firestore.Update, 0, len(partial))
	for k, v := range partial {
		if _, ok := v.(serverTimestamp); ok {
			v = firestore.ServerTimestamp
		}
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	return updates
}

func resolveFirestoreTimestamps(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if _, ok := v.(serverTimestamp); ok {
			out[k] = firestore.ServerTimestamp
			continue
		}
		out[k] = v
	}
	return out
}
