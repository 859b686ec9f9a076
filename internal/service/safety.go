package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"rakuda/internal/automation"
	"rakuda/internal/models"
	"rakuda/internal/repository"
)

// SafetyService owns the singleton safety settings row and the emergency
// stop cascade.
type SafetyService struct {
	Repo   repository.Repository
	Logger *zap.Logger
	Events automation.EventPublisher
}

// UpdateSafetyParams carries a partial update; nil fields are left alone.
type UpdateSafetyParams struct {
	MaxConcurrentExecutions *int
	MaxDailyExecutions      *int
	RequireApprovalAbove    *decimal.Decimal
	ExcludedCategories      datatypes.JSON
}

// Get returns the settings row, creating defaults on first read.
func (s *SafetyService) Get(ctx context.Context) (*models.SafetySettings, error) {
	settings, err := s.Repo.GetSafetySettings(ctx)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		return settings, nil
	}
	settings = &models.SafetySettings{
		MaxConcurrentExecutions: 3,
		MaxDailyExecutions:      50,
		RequireApprovalAbove:    decimal.NewFromInt(50),
	}
	if err := s.Repo.SaveSafetySettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *SafetyService) Update(ctx context.Context, params UpdateSafetyParams) (*models.SafetySettings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if params.MaxConcurrentExecutions != nil {
		settings.MaxConcurrentExecutions = *params.MaxConcurrentExecutions
	}
	if params.MaxDailyExecutions != nil {
		settings.MaxDailyExecutions = *params.MaxDailyExecutions
	}
	if params.RequireApprovalAbove != nil {
		settings.RequireApprovalAbove = *params.RequireApprovalAbove
	}
	if params.ExcludedCategories != nil {
		settings.ExcludedCategories = params.ExcludedCategories
	}
	if err := s.Repo.SaveSafetySettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// SetEmergencyStop toggles the stop flag. Enabling also deactivates every
// active rule in the same transaction, so a crash cannot leave the flag set
// with rules still running. Returns the number of rules deactivated.
func (s *SafetyService) SetEmergencyStop(ctx context.Context, enable bool) (*models.SafetySettings, int64, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, 0, err
	}

	var deactivated int64
	now := time.Now().UTC()
	err = s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		settings.EmergencyStopEnabled = enable
		if enable {
			settings.EmergencyStopAt = &now
			count, err := s.Repo.DeactivateAllRulesTx(ctx, tx)
			if err != nil {
				return err
			}
			deactivated = count
		} else {
			settings.EmergencyStopAt = nil
		}
		return s.Repo.SaveSafetySettingsTx(ctx, tx, settings)
	})
	if err != nil {
		return nil, 0, err
	}

	if s.Logger != nil {
		s.Logger.Warn("emergency stop toggled",
			zap.Bool("enabled", enable),
			zap.Int64("rules_deactivated", deactivated))
	}
	if s.Events != nil {
		s.Events.Publish("safety.emergency_stop", map[string]any{
			"enabled":           enable,
			"rules_deactivated": deactivated,
		})
	}
	return settings, deactivated, nil
}

// ToggleRule flips a rule's active flag. Activation is refused while the
// emergency stop is on.
func (s *SafetyService) ToggleRule(ctx context.Context, ruleID uint64) (*models.AutomationRule, error) {
	rule, err := s.Repo.GetAutomationRuleByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, automation.ErrRuleNotFound
	}
	if !rule.IsActive {
		settings, err := s.Get(ctx)
		if err != nil {
			return nil, err
		}
		if settings.EmergencyStopEnabled {
			return nil, automation.ErrEmergencyStop
		}
	}
	next := !rule.IsActive
	if err := s.Repo.SetAutomationRuleActive(ctx, ruleID, next); err != nil {
		return nil, err
	}
	rule.IsActive = next
	return rule, nil
}
