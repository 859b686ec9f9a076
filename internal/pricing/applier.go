package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rakuda/internal/models"
	"rakuda/internal/repository"
)

// ApplyItem is one entry of a bulk approval request.
type ApplyItem struct {
	RecommendationID uint64
	NewPrice         *decimal.Decimal
}

// ApplyFailure records why one item of a batch was skipped.
type ApplyFailure struct {
	RecommendationID uint64 `json:"recommendation_id"`
	Reason           string `json:"reason"`
}

// ApplySummary is the outcome of a batch, successes and skips together.
type ApplySummary struct {
	AppliedCount int            `json:"applied_count"`
	SkippedCount int            `json:"skipped_count"`
	Failures     []ApplyFailure `json:"failures"`
}

// Applier approves or rejects recommendations and applies approved prices to
// their listings.
type Applier struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

// Approve flips one pending recommendation to APPROVED, updates the listing
// price and writes a change log entry, all in one transaction. The pending
// check is an atomic conditional update, so only one of two racing approvals
// can win.
func (a *Applier) Approve(ctx context.Context, id uint64, newPrice *decimal.Decimal, decidedBy string) (*models.PriceRecommendation, error) {
	if a == nil || a.Repo == nil {
		return nil, ErrRecommendationNotFound
	}
	if newPrice != nil && newPrice.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPrice, newPrice)
	}
	rec, err := a.Repo.GetRecommendationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrRecommendationNotFound
	}
	applied := rec.RecommendedPrice
	if newPrice != nil {
		applied = *newPrice
	}

	err = a.Repo.InTx(ctx, func(tx *gorm.DB) error {
		won, err := a.Repo.DecideRecommendationTx(ctx, tx, id, models.RecommendationApproved, newPrice, decidedBy)
		if err != nil {
			return err
		}
		if !won {
			return ErrNotPending
		}
		if err := a.Repo.UpdateListingPriceTx(ctx, tx, rec.ListingID, applied); err != nil {
			return err
		}
		recID := rec.ID
		return a.Repo.InsertPriceChangeLogTx(ctx, tx, &models.PriceChangeLog{
			ListingID:        rec.ListingID,
			OldPrice:         rec.CurrentPrice,
			NewPrice:         applied,
			Reason:           rec.Reason,
			ChangedBy:        decidedBy,
			RecommendationID: &recID,
		})
	})
	if err != nil {
		return nil, err
	}
	rec.Status = models.RecommendationApproved
	rec.RecommendedPrice = applied
	return rec, nil
}

// Reject flips one pending recommendation to REJECTED. Nothing else changes.
func (a *Applier) Reject(ctx context.Context, id uint64, reason, decidedBy string) error {
	if a == nil || a.Repo == nil {
		return ErrRecommendationNotFound
	}
	rec, err := a.Repo.GetRecommendationByID(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrRecommendationNotFound
	}
	return a.Repo.InTx(ctx, func(tx *gorm.DB) error {
		won, err := a.Repo.DecideRecommendationTx(ctx, tx, id, models.RecommendationRejected, nil, decidedBy)
		if err != nil {
			return err
		}
		if !won {
			return ErrNotPending
		}
		return nil
	})
}

// ApplyBatch approves a list of recommendations one by one. Every item gets
// its own transaction: a failed precondition skips that item and the batch
// moves on. The summary always reports both sides.
func (a *Applier) ApplyBatch(ctx context.Context, items []ApplyItem, decidedBy string) ApplySummary {
	summary := ApplySummary{Failures: []ApplyFailure{}}
	if a == nil || a.Repo == nil {
		return summary
	}
	for _, item := range items {
		if _, err := a.Approve(ctx, item.RecommendationID, item.NewPrice, decidedBy); err != nil {
			summary.SkippedCount++
			summary.Failures = append(summary.Failures, ApplyFailure{
				RecommendationID: item.RecommendationID,
				Reason:           err.Error(),
			})
			if a.Logger != nil {
				a.Logger.Debug("bulk approve item skipped",
					zap.Uint64("recommendation_id", item.RecommendationID),
					zap.Error(err))
			}
			continue
		}
		summary.AppliedCount++
	}
	return summary
}
