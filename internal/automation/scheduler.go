package automation

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"rakuda/internal/models"
	"rakuda/internal/repository"
)

// Scheduler runs cron-scheduled rules. Guard rejections are logged and
// skipped; a rule in cooldown or over quota simply waits for its next slot.
type Scheduler struct {
	Repo     repository.Repository
	Executor *Executor
	Logger   *zap.Logger
	Interval time.Duration
}

func (s *Scheduler) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	active := true
	rules, err := s.Repo.ListAutomationRules(ctx, repository.ListAutomationRulesParams{
		IsActive: &active,
		Limit:    500,
	})
	if err != nil {
		if s.Logger != nil {
			s.Logger.Error("scheduler rule listing failed", zap.Error(err))
		}
		return
	}

	now := time.Now().UTC()
	for _, rule := range rules {
		if rule.ScheduleType != models.ScheduleScheduled || rule.CronExpression == "" {
			continue
		}
		due, err := ruleDue(rule, now)
		if err != nil {
			if s.Logger != nil {
				s.Logger.Warn("bad cron expression",
					zap.Uint64("rule_id", rule.ID),
					zap.String("expr", rule.CronExpression),
					zap.Error(err))
			}
			continue
		}
		if !due {
			continue
		}
		_, err = s.Executor.Execute(ctx, rule.ID, Options{
			TriggeredBy: "scheduler",
			Reason:      "cron schedule",
		})
		if err != nil {
			if isPolicyError(err) {
				if s.Logger != nil {
					s.Logger.Info("scheduled run skipped",
						zap.Uint64("rule_id", rule.ID),
						zap.String("reason", err.Error()))
				}
				continue
			}
			if s.Logger != nil {
				s.Logger.Error("scheduled run failed",
					zap.Uint64("rule_id", rule.ID),
					zap.Error(err))
			}
		}
	}
}

func ruleDue(rule models.AutomationRule, now time.Time) (bool, error) {
	schedule, err := cron.ParseStandard(rule.CronExpression)
	if err != nil {
		return false, err
	}
	last := rule.CreatedAt
	if rule.LastExecutedAt != nil {
		last = *rule.LastExecutedAt
	}
	next := schedule.Next(last)
	return !next.After(now), nil
}

func isPolicyError(err error) bool {
	return errors.Is(err, ErrEmergencyStop) ||
		errors.Is(err, ErrQuotaExceeded) ||
		errors.Is(err, ErrCooldownActive) ||
		errors.Is(err, ErrRuleDisabled) ||
		errors.Is(err, ErrRuleNotFound)
}
