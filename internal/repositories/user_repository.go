package repositories

import (
	"context"
	"fmt"

	"github.com/rahat-dev/sharebite/backend/internal/models"
	"github.com/rahat-dev/sharebite/backend/internal/store"
)

// UserRepository defines the interface for actor profile lookups.
type UserRepository interface {
	// GetProfile returns the profile for the given actor id, or (nil, nil)
	// when no profile document exists yet.
	GetProfile(ctx context.Context, actorID string) (*models.ActorProfile, error)
}

// StoreUserRepository implements UserRepository over the document store.
type StoreUserRepository struct {
	store store.DocumentStore
}

// NewStoreUserRepository creates a new StoreUserRepository.
func NewStoreUserRepository(s store.DocumentStore) *StoreUserRepository {
	return &StoreUserRepository{store: s}
}

// GetProfile performs a point lookup against the users collection.
func (r *StoreUserRepository) GetProfile(ctx context.Context, actorID string) (*models.ActorProfile, error) {
	doc, err := r.store.Get(ctx, store.UsersCollection, actorID)
	if err != nil {
		return nil, fmt.Errorf("fetch profile %s: %w", actorID, err)
	}
	if doc == nil {
		return nil, nil
	}
	profile := models.DecodeProfile(doc.ID, doc.Data)
	return &profile, nil
}
