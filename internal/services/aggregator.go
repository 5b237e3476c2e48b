package services

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/rahat-dev/sharebite/backend/internal/models"
	"github.com/rahat-dev/sharebite/backend/internal/repositories"
)

// Totals summarizes one actor's donation history across all categories.
type Totals struct {
	Count            int                     `json:"count"`
	MonetarySum      float64                 `json:"monetarySum"`
	PerCategoryCount map[models.Category]int `json:"perCategoryCount"`
}

// Aggregation is the merged, ordered view of one actor's donation history.
type Aggregation struct {
	Records []models.DonationRecord `json:"records"`
	Totals  Totals                  `json:"totals"`
}

// Aggregator fans out over the category collections for one actor, resolves
// the counterpart of each record to a display name, and merges the results
// into a single time-ordered summary.
type Aggregator struct {
	donations repositories.DonationRepository
	resolver  *Resolver
	log       zerolog.Logger
}

// NewAggregator creates a new Aggregator.
func NewAggregator(donations repositories.DonationRepository, resolver *Resolver, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		donations: donations,
		resolver:  resolver,
		log:       log.With().Str("component", "aggregator").Logger(),
	}
}

// Aggregate scans all category collections for the actor in the given role.
// Records are sorted newest first; records without a resolved timestamp sort
// after everything that has one, so they never dominate recent-activity
// views. The monetary sum covers only Monetary records.
func (a *Aggregator) Aggregate(ctx context.Context, actorID string, role models.Role) (*Aggregation, error) {
	records, err := a.donations.Scan(ctx, actorID, role)
	if err != nil {
		return nil, err
	}

	for i := range records {
		counterpart := records[i].RecipientID
		if role == models.RoleRecipient {
			counterpart = records[i].DonorID
		}
		if counterpart == "" {
			continue
		}
		profile, err := a.resolver.Resolve(ctx, counterpart)
		if err != nil {
			// Best-effort on the read path: the record still renders, just
			// without a display name.
			a.log.Warn().Err(err).Str("actor_id", counterpart).Msg("profile resolution failed")
			continue
		}
		if profile != nil {
			records[i].CounterpartName = profile.DisplayName
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		ti, tj := records[i].CreatedAt, records[j].CreatedAt
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})

	totals := Totals{
		Count:            len(records),
		PerCategoryCount: make(map[models.Category]int),
	}
	for _, rec := range records {
		totals.PerCategoryCount[rec.Category]++
		if rec.Category == models.CategoryMonetary {
			totals.MonetarySum += rec.Amount
		}
	}

	return &Aggregation{Records: records, Totals: totals}, nil
}
