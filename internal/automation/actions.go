package automation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"rakuda/internal/models"
	"rakuda/internal/repository"
)

// minPrice is the floor for automated price adjustments.
var minPrice = decimal.NewFromFloat(0.01)

type adjustPriceConfig struct {
	AdjustmentPercent float64 `json:"adjustment_percent"`
}

// applyAction performs the rule's action on one listing and returns a short
// human-readable detail for the execution results blob.
func applyAction(ctx context.Context, repo repository.Repository, rule *models.AutomationRule, listing models.Listing, executionID uint64) (string, error) {
	switch rule.Action {
	case models.ActionAdjustPrice:
		return applyPriceAdjustment(ctx, repo, rule, listing, executionID)
	case models.ActionPauseListing:
		if err := repo.UpdateListingStatus(ctx, listing.ID, models.ListingStatusPaused); err != nil {
			return "", err
		}
		return "paused", nil
	case models.ActionEndListing:
		if err := repo.UpdateListingStatus(ctx, listing.ID, models.ListingStatusEnded); err != nil {
			return "", err
		}
		return "ended", nil
	case models.ActionRelist:
		if err := repo.ResetListingListedAt(ctx, listing.ID, time.Now().UTC()); err != nil {
			return "", err
		}
		return "relisted", nil
	case models.ActionNotify:
		// Notification only: the executor publishes the event after the run.
		return "notified", nil
	default:
		return "", fmt.Errorf("unknown action %q", rule.Action)
	}
}

func applyPriceAdjustment(ctx context.Context, repo repository.Repository, rule *models.AutomationRule, listing models.Listing, executionID uint64) (string, error) {
	cfg, err := decodeAdjustConfig(rule.ActionConfig)
	if err != nil {
		return "", err
	}
	factor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(cfg.AdjustmentPercent / 100))
	newPrice := listing.CurrentPrice.Mul(factor).Round(2)
	if newPrice.LessThan(minPrice) {
		newPrice = minPrice
	}
	err = repo.InTx(ctx, func(tx *gorm.DB) error {
		if err := repo.UpdateListingPriceTx(ctx, tx, listing.ID, newPrice); err != nil {
			return err
		}
		execID := executionID
		return repo.InsertPriceChangeLogTx(ctx, tx, &models.PriceChangeLog{
			ListingID:   listing.ID,
			OldPrice:    listing.CurrentPrice,
			NewPrice:    newPrice,
			Reason:      fmt.Sprintf("rule %q", rule.Name),
			ChangedBy:   "automation",
			ExecutionID: &execID,
		})
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("price %s -> %s", listing.CurrentPrice, newPrice), nil
}

// projectAction describes what a dry run would have done, without touching
// anything.
func projectAction(rule *models.AutomationRule, listing models.Listing) (string, error) {
	switch rule.Action {
	case models.ActionAdjustPrice:
		cfg, err := decodeAdjustConfig(rule.ActionConfig)
		if err != nil {
			return "", err
		}
		factor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(cfg.AdjustmentPercent / 100))
		newPrice := listing.CurrentPrice.Mul(factor).Round(2)
		if newPrice.LessThan(minPrice) {
			newPrice = minPrice
		}
		return fmt.Sprintf("would set price %s -> %s", listing.CurrentPrice, newPrice), nil
	case models.ActionPauseListing:
		return "would pause", nil
	case models.ActionEndListing:
		return "would end", nil
	case models.ActionRelist:
		return "would relist", nil
	case models.ActionNotify:
		return "would notify", nil
	default:
		return "", fmt.Errorf("unknown action %q", rule.Action)
	}
}

func decodeAdjustConfig(raw datatypes.JSON) (adjustPriceConfig, error) {
	var cfg adjustPriceConfig
	if len(raw) == 0 {
		return cfg, fmt.Errorf("action config missing adjustment_percent")
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("decode action config: %w", err)
	}
	if cfg.AdjustmentPercent == 0 {
		return cfg, fmt.Errorf("action config missing adjustment_percent")
	}
	return cfg, nil
}
