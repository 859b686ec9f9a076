package automation

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"rakuda/internal/models"
	"rakuda/internal/repository"
)

// EventPublisher receives executor lifecycle events. The websocket hub
// implements it; tests can leave it nil.
type EventPublisher interface {
	Publish(event string, payload any)
}

// Options control one execution request.
type Options struct {
	DryRun      bool
	Force       bool
	TriggeredBy string
	Reason      string
}

// Executor runs automation rules synchronously: guards, target selection,
// per-target action, terminal status. A call returns only when the execution
// row has reached a terminal state.
type Executor struct {
	Repo   repository.Repository
	Logger *zap.Logger
	Events EventPublisher
}

// Execute runs one rule. Guard failures return a policy error before any
// execution row exists. Force bypasses the emergency stop only; the daily
// quota and cooldown always hold.
func (e *Executor) Execute(ctx context.Context, ruleID uint64, opts Options) (*models.AutomationExecution, error) {
	rule, err := e.Repo.GetAutomationRuleByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, ErrRuleNotFound
	}

	// One settings read governs the whole run.
	settings, err := e.Repo.GetSafetySettings(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if !opts.DryRun {
		if settings != nil && settings.EmergencyStopEnabled && !opts.Force {
			return nil, ErrEmergencyStop
		}
		if !rule.IsActive {
			return nil, ErrRuleDisabled
		}
		if rule.MaxExecutionsPerDay > 0 {
			dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
			count, err := e.Repo.CountRuleExecutionsSince(ctx, rule.ID, dayStart, false)
			if err != nil {
				return nil, err
			}
			if count >= int64(rule.MaxExecutionsPerDay) {
				return nil, ErrQuotaExceeded
			}
		}
	}
	if rule.CooldownMinutes > 0 && rule.LastExecutedAt != nil {
		if now.Sub(*rule.LastExecutedAt) < time.Duration(rule.CooldownMinutes)*time.Minute {
			return nil, ErrCooldownActive
		}
	}

	execution := &models.AutomationExecution{
		RuleID:        rule.ID,
		Status:        models.ExecutionRunning,
		TriggeredBy:   opts.TriggeredBy,
		TriggerReason: opts.Reason,
		IsDryRun:      opts.DryRun,
		StartedAt:     now,
	}
	if err := e.Repo.InsertExecution(ctx, execution); err != nil {
		return nil, err
	}

	execution, runErr := e.run(ctx, rule, execution, opts.DryRun)
	if runErr != nil {
		e.finishFailed(ctx, rule, execution, runErr, opts.DryRun)
		return execution, runErr
	}
	if e.Events != nil {
		e.Events.Publish("execution.finished", execution)
	}
	return execution, nil
}

func (e *Executor) run(ctx context.Context, rule *models.AutomationRule, execution *models.AutomationExecution, dryRun bool) (*models.AutomationExecution, error) {
	conditions, err := ParseConditions(rule.Conditions)
	if err != nil {
		return execution, err
	}

	now := time.Now().UTC()
	targets, err := e.selectTargets(ctx, conditions, rule.ConditionLogic, now)
	if err != nil {
		return execution, err
	}

	results := make([]models.ExecutionResult, 0, len(targets))
	succeeded, failed := 0, 0
	for _, listing := range targets {
		var detail string
		var actErr error
		if dryRun {
			detail, actErr = projectAction(rule, listing)
		} else {
			detail, actErr = applyAction(ctx, e.Repo, rule, listing, execution.ID)
		}
		result := models.ExecutionResult{ListingID: listing.ID, Success: actErr == nil, Detail: detail}
		if actErr != nil {
			result.Error = actErr.Error()
			failed++
			if e.Logger != nil {
				e.Logger.Warn("rule action failed",
					zap.Uint64("rule_id", rule.ID),
					zap.Uint64("listing_id", listing.ID),
					zap.Error(actErr))
			}
		} else {
			succeeded++
		}
		results = append(results, result)
	}

	status := models.ExecutionCompleted
	if dryRun {
		status = models.ExecutionDryRunCompleted
	}
	completedAt := time.Now().UTC()
	blob, err := json.Marshal(results)
	if err != nil {
		return execution, err
	}
	if err := e.Repo.FinishExecution(ctx, execution.ID, map[string]any{
		"status":          status,
		"target_count":    len(targets),
		"processed_count": len(results),
		"success_count":   succeeded,
		"failed_count":    failed,
		"results":         blob,
		"completed_at":    completedAt,
		"duration_ms":     completedAt.Sub(execution.StartedAt).Milliseconds(),
	}); err != nil {
		return execution, err
	}

	// Counters move on real runs only.
	if !dryRun {
		if err := e.Repo.BumpRuleCounters(ctx, rule.ID, succeeded, failed, completedAt); err != nil {
			return execution, err
		}
	}

	execution.Status = status
	execution.TargetCount = len(targets)
	execution.ProcessedCount = len(results)
	execution.SuccessCount = succeeded
	execution.FailedCount = failed
	execution.Results = blob
	execution.CompletedAt = &completedAt
	execution.DurationMs = completedAt.Sub(execution.StartedAt).Milliseconds()
	return execution, nil
}

func (e *Executor) selectTargets(ctx context.Context, conditions []models.RuleCondition, logic string, now time.Time) ([]models.Listing, error) {
	var targets []models.Listing
	var afterID uint64
	for {
		listings, err := e.Repo.ListActiveListings(ctx, 200, afterID)
		if err != nil {
			return nil, err
		}
		if len(listings) == 0 {
			return targets, nil
		}
		for _, listing := range listings {
			afterID = listing.ID
			matched, err := MatchListing(listing, conditions, logic, now)
			if err != nil {
				return nil, err
			}
			if matched {
				targets = append(targets, listing)
			}
		}
	}
}

func (e *Executor) finishFailed(ctx context.Context, rule *models.AutomationRule, execution *models.AutomationExecution, cause error, dryRun bool) {
	completedAt := time.Now().UTC()
	err := e.Repo.FinishExecution(ctx, execution.ID, map[string]any{
		"status":       models.ExecutionFailed,
		"error":        cause.Error(),
		"completed_at": completedAt,
		"duration_ms":  completedAt.Sub(execution.StartedAt).Milliseconds(),
	})
	if err != nil && e.Logger != nil {
		e.Logger.Error("failed to mark execution as failed",
			zap.Uint64("execution_id", execution.ID),
			zap.Error(err))
	}
	if !dryRun {
		if err := e.Repo.BumpRuleCounters(ctx, rule.ID, 0, 1, completedAt); err != nil && e.Logger != nil {
			e.Logger.Error("failed to bump rule counters", zap.Uint64("rule_id", rule.ID), zap.Error(err))
		}
	}
	execution.Status = models.ExecutionFailed
	execution.Error = cause.Error()
	execution.CompletedAt = &completedAt
}
