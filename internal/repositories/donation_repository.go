package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rahat-dev/sharebite/backend/internal/models"
	"github.com/rahat-dev/sharebite/backend/internal/store"
)

// ErrValidation marks a donation rejected before any store call. Handlers
// map it to a 400 response.
var ErrValidation = errors.New("invalid donation")

// DonationRepository defines the interface for donation reads and writes.
type DonationRepository interface {
	// Scan queries every category collection for records where the actor
	// appears in the given role. A single failing collection is skipped so
	// history views can still render partial data; only a total failure
	// returns an error.
	Scan(ctx context.Context, actorID string, role models.Role) ([]models.DonationRecord, error)
	// Record validates and persists a new donation into the collection
	// backing its category, with a store-assigned creation timestamp.
	Record(ctx context.Context, rec *models.DonationRecord) (*models.DonationRecord, error)
}

// StoreDonationRepository implements DonationRepository over the document
// store.
type StoreDonationRepository struct {
	store store.DocumentStore
	log   zerolog.Logger
}

// NewStoreDonationRepository creates a new StoreDonationRepository.
func NewStoreDonationRepository(s store.DocumentStore, log zerolog.Logger) *StoreDonationRepository {
	return &StoreDonationRepository{
		store: s,
		log:   log.With().Str("component", "donations").Logger(),
	}
}

// Scan iterates the category collections in their fixed order and
// concatenates the matching records. Each record's category label is derived
// from the collection it came from; the document body is not trusted for it.
func (r *StoreDonationRepository) Scan(ctx context.Context, actorID string, role models.Role) ([]models.DonationRecord, error) {
	var (
		records []models.DonationRecord
		errs    []error
	)
	for _, cat := range store.ScanOrder {
		collection, _ := store.CollectionFor(cat)
		docs, err := r.store.Query(ctx, collection, role.FilterField(), actorID)
		if err != nil {
			r.log.Warn().Err(err).Str("collection", collection).
				Msg("category scan failed, continuing with remaining collections")
			errs = append(errs, fmt.Errorf("scan %q: %w", collection, err))
			continue
		}
		for _, doc := range docs {
			records = append(records, models.DecodeDonation(cat, doc.ID, doc.Data))
		}
	}
	if len(errs) == len(store.ScanOrder) {
		return nil, errors.Join(errs...)
	}
	return records, nil
}

// Record validates the donation and writes it to its category collection.
// Write failures propagate un-swallowed; there is no partial tolerance on
// this path.
func (r *StoreDonationRepository) Record(ctx context.Context, rec *models.DonationRecord) (*models.DonationRecord, error) {
	if err := ValidateDonation(rec); err != nil {
		return nil, err
	}

	collection, _ := store.CollectionFor(rec.Category)
	doc := rec.ToDocument()
	doc["createdAt"] = store.ServerTimestamp

	id, err := r.store.Add(ctx, collection, doc)
	if err != nil {
		return nil, fmt.Errorf("record donation in %q: %w", collection, err)
	}
	rec.ID = id
	return rec, nil
}

// ValidateDonation checks a donation before any store call: item categories
// need at least one item with a positive quantity (and an address when a
// pickup slot is set), Monetary needs a positive amount, and the two payload
// shapes are mutually exclusive.
func ValidateDonation(rec *models.DonationRecord) error {
	if !rec.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, rec.Category)
	}
	if rec.DonorID == "" {
		return fmt.Errorf("%w: donor id is required", ErrValidation)
	}

	if rec.Category == models.CategoryMonetary {
		if len(rec.Items) > 0 {
			return fmt.Errorf("%w: monetary donations cannot carry items", ErrValidation)
		}
		if rec.Amount <= 0 {
			return fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
		}
		return nil
	}

	if rec.Amount != 0 {
		return fmt.Errorf("%w: %s donations cannot carry an amount", ErrValidation, rec.Category)
	}
	anyQuantity := false
	for _, it := range rec.Items {
		if it.Quantity > 0 {
			anyQuantity = true
			break
		}
	}
	if !anyQuantity {
		return fmt.Errorf("%w: at least one item with quantity greater than zero is required", ErrValidation)
	}
	if rec.TimeSlot != "" && rec.PickupAddress == "" {
		return fmt.Errorf("%w: pickup address is required when a time slot is set", ErrValidation)
	}
	return nil
}
