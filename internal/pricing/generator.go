package pricing

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"rakuda/internal/marketplace"
	"rakuda/internal/models"
	"rakuda/internal/repository"
)

// Generator walks active listings and refreshes their pending price
// recommendations. Regeneration is idempotent: each listing's pending row is
// replaced in a transaction, decided rows are never touched.
type Generator struct {
	Repo      repository.Repository
	Logger    *zap.Logger
	BatchSize int
}

// GenerateAll evaluates every active listing and returns the number of
// pending recommendations written.
func (g *Generator) GenerateAll(ctx context.Context) (int, error) {
	if g == nil || g.Repo == nil {
		return 0, nil
	}
	batchSize := g.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	written := 0
	var afterID uint64
	now := time.Now().UTC()
	for {
		listings, err := g.Repo.ListActiveListings(ctx, batchSize, afterID)
		if err != nil {
			return written, err
		}
		if len(listings) == 0 {
			return written, nil
		}
		for _, listing := range listings {
			afterID = listing.ID
			ok, err := g.generateOne(ctx, listing, now)
			if err != nil {
				if g.Logger != nil {
					g.Logger.Warn("recommendation generation skipped",
						zap.Uint64("listing_id", listing.ID),
						zap.Error(err))
				}
				continue
			}
			if ok {
				written++
			}
		}
	}
}

func (g *Generator) generateOne(ctx context.Context, listing models.Listing, now time.Time) (bool, error) {
	metrics := marketplace.Metrics{
		ExternalID:   listing.ExternalID,
		DaysListed:   listing.DaysListed(now),
		Views:        listing.Views,
		Watchers:     listing.Watchers,
		CTR:          listing.CTR,
		CurrentPrice: listing.CurrentPrice,
		CostPrice:    listing.CostPrice,
	}
	proposal, err := Evaluate(metrics)
	if err != nil {
		return false, err
	}
	if proposal == nil {
		return false, nil
	}
	item := &models.PriceRecommendation{
		ListingID:        listing.ID,
		CurrentPrice:     listing.CurrentPrice,
		RecommendedPrice: proposal.RecommendedPrice,
		ReasonCode:       proposal.ReasonCode,
		Magnitude:        proposal.Magnitude,
		Reason:           proposal.Reason,
	}
	err = g.Repo.InTx(ctx, func(tx *gorm.DB) error {
		return g.Repo.ReplacePendingRecommendationTx(ctx, tx, item)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
