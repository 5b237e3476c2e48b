package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rahat-dev/sharebite/backend/internal/models"
	"github.com/rahat-dev/sharebite/backend/internal/store"
)

var (
	// ErrRequestNotFound is returned when the wishlist request does not exist.
	ErrRequestNotFound = errors.New("wishlist request not found")
	// ErrNotPending is returned when an edit targets a request that has
	// already been fulfilled.
	ErrNotPending = errors.New("wishlist request is no longer pending")
	// ErrAlreadyFulfilled is returned by FulfillCAS when another donor won.
	ErrAlreadyFulfilled = errors.New("wishlist request already fulfilled")
)

// WishlistRepository owns the wishlist request lifecycle: created pending,
// fulfilled exactly once by a donor, editable and deletable by its owner
// while pending.
type WishlistRepository interface {
	Create(ctx context.Context, req *models.WishlistRequest) (*models.WishlistRequest, error)
	GetByID(ctx context.Context, id string) (*models.WishlistRequest, error)
	ListPending(ctx context.Context) ([]models.WishlistRequest, error)
	ListByRecipient(ctx context.Context, recipientID string) ([]models.WishlistRequest, error)
	Edit(ctx context.Context, id string, fields models.UpdateWishlistRequest) error
	// Fulfill marks the request fulfilled with last-write-wins semantics:
	// two concurrent donors both succeed and the later write lands. This
	// mirrors the behavior of the deployed clients.
	Fulfill(ctx context.Context, id, donorID string) error
	// FulfillCAS is the guarded variant: the status transition only applies
	// while the request is still pending, and a lost race returns
	// ErrAlreadyFulfilled.
	FulfillCAS(ctx context.Context, id, donorID string) error
	Delete(ctx context.Context, id string) error
}

// StoreWishlistRepository implements WishlistRepository over the document
// store.
type StoreWishlistRepository struct {
	store store.DocumentStore
	log   zerolog.Logger
}

// NewStoreWishlistRepository creates a new StoreWishlistRepository.
func NewStoreWishlistRepository(s store.DocumentStore, log zerolog.Logger) *StoreWishlistRepository {
	return &StoreWishlistRepository{
		store: s,
		log:   log.With().Str("component", "wishlist").Logger(),
	}
}

// Create persists a new request; the status always starts pending regardless
// of what the caller set.
func (r *StoreWishlistRepository) Create(ctx context.Context, req *models.WishlistRequest) (*models.WishlistRequest, error) {
	req.Status = models.StatusPending
	id, err := r.store.Add(ctx, store.WishlistCollection, req.ToDocument())
	if err != nil {
		return nil, fmt.Errorf("create wishlist request: %w", err)
	}
	req.ID = id
	return req, nil
}

// GetByID returns the request, or (nil, nil) when absent.
func (r *StoreWishlistRepository) GetByID(ctx context.Context, id string) (*models.WishlistRequest, error) {
	doc, err := r.store.Get(ctx, store.WishlistCollection, id)
	if err != nil {
		return nil, fmt.Errorf("fetch wishlist request %s: %w", id, err)
	}
	if doc == nil {
		return nil, nil
	}
	req := r.decode(doc.ID, doc.Data)
	return &req, nil
}

// ListPending returns all requests still waiting for a donor.
func (r *StoreWishlistRepository) ListPending(ctx context.Context) ([]models.WishlistRequest, error) {
	docs, err := r.store.Query(ctx, store.WishlistCollection, "status", string(models.StatusPending))
	if err != nil {
		return nil, fmt.Errorf("list pending wishlist requests: %w", err)
	}
	out := make([]models.WishlistRequest, 0, len(docs))
	for _, doc := range docs {
		out = append(out, r.decode(doc.ID, doc.Data))
	}
	return out, nil
}

// ListByRecipient returns all requests posted by one recipient.
func (r *StoreWishlistRepository) ListByRecipient(ctx context.Context, recipientID string) ([]models.WishlistRequest, error) {
	docs, err := r.store.Query(ctx, store.WishlistCollection, "recipientId", recipientID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist requests for %s: %w", recipientID, err)
	}
	out := make([]models.WishlistRequest, 0, len(docs))
	for _, doc := range docs {
		out = append(out, r.decode(doc.ID, doc.Data))
	}
	return out, nil
}

// Edit rewrites the descriptive fields of a pending request. The pending
// check is a read-then-write; the store itself does not enforce it.
func (r *StoreWishlistRepository) Edit(ctx context.Context, id string, fields models.UpdateWishlistRequest) error {
	req, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if req == nil {
		return ErrRequestNotFound
	}
	if req.Status != models.StatusPending {
		return ErrNotPending
	}

	partial := map[string]any{}
	if fields.Name != nil {
		partial["name"] = *fields.Name
	}
	if fields.Category != nil {
		partial["category"] = string(*fields.Category)
	}
	if fields.Description != nil {
		partial["description"] = *fields.Description
	}
	if fields.Requester != nil {
		partial["requester"] = *fields.Requester
	}
	if len(partial) == 0 {
		return nil
	}
	if err := r.store.Update(ctx, store.WishlistCollection, id, partial); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("edit wishlist request %s: %w", id, err)
	}
	return nil
}

// Fulfill transitions the request to fulfilled, stamping the donor and a
// store-assigned fulfillment time. No guard: concurrent donors both succeed
// and the last write wins.
func (r *StoreWishlistRepository) Fulfill(ctx context.Context, id, donorID string) error {
	err := r.store.Update(ctx, store.WishlistCollection, id, fulfillFields(donorID))
	if errors.Is(err, store.ErrNotFound) {
		return ErrRequestNotFound
	}
	if err != nil {
		return fmt.Errorf("fulfill wishlist request %s: %w", id, err)
	}
	return nil
}

// FulfillCAS transitions the request to fulfilled only while it is still
// pending.
func (r *StoreWishlistRepository) FulfillCAS(ctx context.Context, id, donorID string) error {
	guarded, ok := r.store.(store.ConditionalUpdater)
	if !ok {
		return fmt.Errorf("fulfill wishlist request %s: store backend does not support conditional updates", id)
	}
	applied, err := guarded.UpdateIf(ctx, store.WishlistCollection, id,
		"status", string(models.StatusPending), fulfillFields(donorID))
	if errors.Is(err, store.ErrNotFound) {
		return ErrRequestNotFound
	}
	if err != nil {
		return fmt.Errorf("fulfill wishlist request %s: %w", id, err)
	}
	if !applied {
		return ErrAlreadyFulfilled
	}
	return nil
}

// Delete removes the request. Ownership is checked by the caller, matching
// the original client-side-only enforcement.
func (r *StoreWishlistRepository) Delete(ctx context.Context, id string) error {
	err := r.store.Delete(ctx, store.WishlistCollection, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrRequestNotFound
	}
	if err != nil {
		return fmt.Errorf("delete wishlist request %s: %w", id, err)
	}
	return nil
}

func (r *StoreWishlistRepository) decode(id string, data map[string]any) models.WishlistRequest {
	req, known := models.DecodeWishlist(id, data)
	if !known {
		r.log.Warn().Str("request_id", id).Str("status", fmt.Sprint(data["status"])).
			Msg("unrecognized wishlist status, treating as pending")
	}
	return req
}

func fulfillFields(donorID string) map[string]any {
	return map[string]any{
		"status":      string(models.StatusFulfilled),
		"donorId":     donorID,
		"fulfilledAt": store.ServerTimestamp,
	}
}
