package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/rahat-dev/sharebite/backend/internal/models"
	"github.com/rahat-dev/sharebite/backend/internal/repositories"
)

// ProfileCache memoizes resolved actor profiles for the lifetime of the
// process. There is no TTL and no eviction; per-process actor counts stay
// small. The mutex makes the cache safe to share across request handlers.
type ProfileCache struct {
	mu sync.RWMutex
	m  map[string]*models.ActorProfile
}

// NewProfileCache creates an empty ProfileCache.
func NewProfileCache() *ProfileCache {
	return &ProfileCache{m: make(map[string]*models.ActorProfile)}
}

func (c *ProfileCache) get(id string) (*models.ActorProfile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.m[id]
	return p, ok
}

func (c *ProfileCache) put(id string, p *models.ActorProfile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[id] = p
}

// Resolver resolves opaque actor ids to display profiles through the cache.
type Resolver struct {
	users repositories.UserRepository
	cache *ProfileCache
}

// NewResolver creates a Resolver over the given repository and cache. The
// cache is injected so tests can use a fresh one per case.
func NewResolver(users repositories.UserRepository, cache *ProfileCache) *Resolver {
	return &Resolver{users: users, cache: cache}
}

// Resolve returns the profile for the actor id, or nil when no profile
// exists. Hits come from the cache; a store miss is not cached, so a profile
// created after the first lookup is found on the next call. Lookup errors
// propagate and leave the cache untouched.
func (r *Resolver) Resolve(ctx context.Context, actorID string) (*models.ActorProfile, error) {
	if actorID == "" {
		return nil, fmt.Errorf("actor id is required")
	}
	if p, ok := r.cache.get(actorID); ok {
		return p, nil
	}

	p, err := r.users.GetProfile(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	r.cache.put(actorID, p)
	return p, nil
}
