package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rahat-dev/sharebite/backend/internal/models"
	"github.com/rahat-dev/sharebite/backend/internal/reconcile"
	"github.com/rahat-dev/sharebite/backend/internal/repositories"
)

// AuditSink receives one row per saga run. The reconcile package provides the
// Postgres-backed implementation; a nil sink disables auditing.
type AuditSink interface {
	Append(ctx context.Context, row *reconcile.SagaAudit) error
}

// SagaResult reports the outcome of one fulfillment saga run.
type SagaResult struct {
	SagaID           string                  `json:"sagaId"`
	Request          *models.WishlistRequest `json:"request,omitempty"`
	Donation         *models.DonationRecord  `json:"donation,omitempty"`
	RequestFulfilled bool                    `json:"requestFulfilled"`
	DonationRecorded bool                    `json:"donationRecorded"`
}

// FulfillmentService runs the two-step fulfillment saga: mark the wishlist
// request fulfilled, then record the fulfilling donation. The two writes are
// independent with no enclosing transaction; when one lands and the other
// fails, the divergence is logged and flagged to the audit sink, never
// silently repaired.
type FulfillmentService struct {
	wishlist  repositories.WishlistRepository
	donations repositories.DonationRepository
	audit     AuditSink
	log       zerolog.Logger
}

// NewFulfillmentService creates a FulfillmentService. audit may be nil.
func NewFulfillmentService(wishlist repositories.WishlistRepository, donations repositories.DonationRepository, audit AuditSink, log zerolog.Logger) *FulfillmentService {
	return &FulfillmentService{
		wishlist:  wishlist,
		donations: donations,
		audit:     audit,
		log:       log.With().Str("component", "fulfillment").Logger(),
	}
}

// Fulfill runs the saga for one request. With useCAS false the status write
// is last-write-wins, so two concurrent donors both succeed; with useCAS true
// a lost race surfaces as repositories.ErrAlreadyFulfilled before any write
// from the loser lands.
func (s *FulfillmentService) Fulfill(ctx context.Context, requestID, donorID string, payload models.FulfillWishlistRequest, useCAS bool) (*SagaResult, error) {
	req, err := s.wishlist.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, repositories.ErrRequestNotFound
	}

	donation := &models.DonationRecord{
		Category:      payload.Category,
		DonorID:       donorID,
		RecipientID:   req.RecipientID,
		Items:         payload.Items,
		Amount:        payload.Amount,
		PickupAddress: payload.PickupAddress,
		TimeSlot:      payload.TimeSlot,
	}
	// Reject bad payloads before the first write: a validation failure after
	// the status transition would manufacture a divergence for free.
	if err := repositories.ValidateDonation(donation); err != nil {
		return nil, err
	}

	result := &SagaResult{SagaID: uuid.NewString(), Request: req}

	if useCAS {
		err = s.wishlist.FulfillCAS(ctx, requestID, donorID)
	} else {
		err = s.wishlist.Fulfill(ctx, requestID, donorID)
	}
	if err != nil {
		s.record(ctx, result, requestID, donorID, err)
		return nil, err
	}
	result.RequestFulfilled = true

	recorded, err := s.donations.Record(ctx, donation)
	if err != nil {
		s.log.Error().Err(err).
			Str("saga_id", result.SagaID).
			Str("request_id", requestID).
			Str("donor_id", donorID).
			Msg("request marked fulfilled but donation write failed; stores have diverged")
		s.record(ctx, result, requestID, donorID, err)
		return result, fmt.Errorf("request %s fulfilled but donation not recorded: %w", requestID, err)
	}
	result.Donation = recorded
	result.DonationRecorded = true

	s.record(ctx, result, requestID, donorID, nil)
	return result, nil
}

func (s *FulfillmentService) record(ctx context.Context, result *SagaResult, requestID, donorID string, stepErr error) {
	if s.audit == nil {
		return
	}
	row := &reconcile.SagaAudit{
		SagaID:    result.SagaID,
		RequestID: requestID,
		DonorID:   donorID,
		FulfillOK: result.RequestFulfilled,
		RecordOK:  result.DonationRecorded,
	}
	if result.Donation != nil {
		row.DonationID = result.Donation.ID
	}
	if stepErr != nil {
		row.Detail = stepErr.Error()
	}
	if err := s.audit.Append(ctx, row); err != nil {
		s.log.Error().Err(err).Str("saga_id", result.SagaID).Msg("saga audit write failed")
	}
}
