package automation

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"rakuda/internal/models"
	"rakuda/internal/repository"
)

// stubRepo is a test-only in-memory implementation of repository.Repository.
// Rules, executions, listings and safety settings carry real behavior; the
// pricing paths are no-ops.
type stubRepo struct {
	listings   map[uint64]*models.Listing
	rules      map[uint64]*models.AutomationRule
	executions map[uint64]*models.AutomationExecution
	settings   *models.SafetySettings
	logs       []models.PriceChangeLog
	nextExecID uint64
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		listings:   map[uint64]*models.Listing{},
		rules:      map[uint64]*models.AutomationRule{},
		executions: map[uint64]*models.AutomationExecution{},
	}
}

func (s *stubRepo) addListing(l models.Listing) {
	cp := l
	s.listings[l.ID] = &cp
}

func (s *stubRepo) addRule(r models.AutomationRule) {
	cp := r
	s.rules[r.ID] = &cp
}

func (s *stubRepo) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

func (s *stubRepo) UpsertListingsTx(ctx context.Context, tx *gorm.DB, items []models.Listing) error {
	return nil
}

func (s *stubRepo) GetListingByID(ctx context.Context, id uint64) (*models.Listing, error) {
	if l, ok := s.listings[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, nil
}

func (s *stubRepo) GetListingByExternalID(ctx context.Context, externalID string) (*models.Listing, error) {
	return nil, nil
}

func (s *stubRepo) ListListings(ctx context.Context, params repository.ListListingsParams) ([]models.Listing, error) {
	return nil, nil
}

func (s *stubRepo) CountListings(ctx context.Context, params repository.ListListingsParams) (int64, error) {
	return 0, nil
}

func (s *stubRepo) ListActiveListings(ctx context.Context, batchSize int, afterID uint64) ([]models.Listing, error) {
	var ids []uint64
	for id, l := range s.listings {
		if l.Status == models.ListingStatusActive && id > afterID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if batchSize > 0 && len(ids) > batchSize {
		ids = ids[:batchSize]
	}
	out := make([]models.Listing, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.listings[id])
	}
	return out, nil
}

func (s *stubRepo) UpdateListingMetrics(ctx context.Context, id uint64, views, watchers int, ctr float64) error {
	return nil
}

func (s *stubRepo) UpdateListingPriceTx(ctx context.Context, tx *gorm.DB, id uint64, price decimal.Decimal) error {
	if l, ok := s.listings[id]; ok {
		l.CurrentPrice = price
	}
	return nil
}

func (s *stubRepo) UpdateListingStatus(ctx context.Context, id uint64, status string) error {
	if l, ok := s.listings[id]; ok {
		l.Status = status
	}
	return nil
}

func (s *stubRepo) ResetListingListedAt(ctx context.Context, id uint64, at time.Time) error {
	if l, ok := s.listings[id]; ok {
		l.ListedAt = at
		l.Status = models.ListingStatusActive
	}
	return nil
}

func (s *stubRepo) ReplacePendingRecommendationTx(ctx context.Context, tx *gorm.DB, item *models.PriceRecommendation) error {
	return nil
}

func (s *stubRepo) GetRecommendationByID(ctx context.Context, id uint64) (*models.PriceRecommendation, error) {
	return nil, nil
}

func (s *stubRepo) ListRecommendations(ctx context.Context, params repository.ListRecommendationsParams) ([]models.PriceRecommendation, error) {
	return nil, nil
}

func (s *stubRepo) CountRecommendations(ctx context.Context, params repository.ListRecommendationsParams) (int64, error) {
	return 0, nil
}

func (s *stubRepo) DecideRecommendationTx(ctx context.Context, tx *gorm.DB, id uint64, status string, price *decimal.Decimal, decidedBy string) (bool, error) {
	return false, nil
}

func (s *stubRepo) PendingRecommendationStats(ctx context.Context) (repository.RecommendationStats, error) {
	return repository.RecommendationStats{ByReason: map[string]int64{}}, nil
}

func (s *stubRepo) InsertPriceChangeLogTx(ctx context.Context, tx *gorm.DB, item *models.PriceChangeLog) error {
	s.logs = append(s.logs, *item)
	return nil
}

func (s *stubRepo) ListPriceChangeLogs(ctx context.Context, params repository.ListPriceChangeLogsParams) ([]models.PriceChangeLog, error) {
	return s.logs, nil
}

func (s *stubRepo) CountPriceChangeLogs(ctx context.Context, params repository.ListPriceChangeLogsParams) (int64, error) {
	return int64(len(s.logs)), nil
}

func (s *stubRepo) InsertAutomationRule(ctx context.Context, item *models.AutomationRule) error {
	cp := *item
	s.rules[item.ID] = &cp
	return nil
}

func (s *stubRepo) GetAutomationRuleByID(ctx context.Context, id uint64) (*models.AutomationRule, error) {
	if r, ok := s.rules[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (s *stubRepo) ListAutomationRules(ctx context.Context, params repository.ListAutomationRulesParams) ([]models.AutomationRule, error) {
	var out []models.AutomationRule
	for _, r := range s.rules {
		if params.IsActive != nil && r.IsActive != *params.IsActive {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubRepo) CountAutomationRules(ctx context.Context, params repository.ListAutomationRulesParams) (int64, error) {
	items, _ := s.ListAutomationRules(ctx, params)
	return int64(len(items)), nil
}

func (s *stubRepo) UpdateAutomationRule(ctx context.Context, id uint64, updates map[string]any) error {
	return nil
}

func (s *stubRepo) DeleteAutomationRule(ctx context.Context, id uint64) error {
	delete(s.rules, id)
	return nil
}

func (s *stubRepo) SetAutomationRuleActive(ctx context.Context, id uint64, active bool) error {
	if r, ok := s.rules[id]; ok {
		r.IsActive = active
	}
	return nil
}

func (s *stubRepo) DeactivateAllRulesTx(ctx context.Context, tx *gorm.DB) (int64, error) {
	var n int64
	for _, r := range s.rules {
		if r.IsActive {
			r.IsActive = false
			n++
		}
	}
	return n, nil
}

func (s *stubRepo) BumpRuleCounters(ctx context.Context, id uint64, success, failed int, executedAt time.Time) error {
	if r, ok := s.rules[id]; ok {
		r.ExecutionCount++
		r.SuccessCount += success
		r.FailureCount += failed
		at := executedAt
		r.LastExecutedAt = &at
	}
	return nil
}

func (s *stubRepo) InsertExecution(ctx context.Context, item *models.AutomationExecution) error {
	s.nextExecID++
	item.ID = s.nextExecID
	cp := *item
	s.executions[item.ID] = &cp
	return nil
}

func (s *stubRepo) GetExecutionByID(ctx context.Context, id uint64) (*models.AutomationExecution, error) {
	if e, ok := s.executions[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, nil
}

func (s *stubRepo) ListExecutions(ctx context.Context, params repository.ListExecutionsParams) ([]models.AutomationExecution, error) {
	var out []models.AutomationExecution
	for _, e := range s.executions {
		if params.RuleID != nil && e.RuleID != *params.RuleID {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubRepo) CountExecutions(ctx context.Context, params repository.ListExecutionsParams) (int64, error) {
	items, _ := s.ListExecutions(ctx, params)
	return int64(len(items)), nil
}

func (s *stubRepo) FinishExecution(ctx context.Context, id uint64, updates map[string]any) error {
	e, ok := s.executions[id]
	if !ok {
		return nil
	}
	if v, ok := updates["status"].(string); ok {
		e.Status = v
	}
	if v, ok := updates["target_count"].(int); ok {
		e.TargetCount = v
	}
	if v, ok := updates["processed_count"].(int); ok {
		e.ProcessedCount = v
	}
	if v, ok := updates["success_count"].(int); ok {
		e.SuccessCount = v
	}
	if v, ok := updates["failed_count"].(int); ok {
		e.FailedCount = v
	}
	if v, ok := updates["error"].(string); ok {
		e.Error = v
	}
	if v, ok := updates["results"].([]byte); ok {
		e.Results = v
	}
	if v, ok := updates["completed_at"].(time.Time); ok {
		at := v
		e.CompletedAt = &at
	}
	if v, ok := updates["duration_ms"].(int64); ok {
		e.DurationMs = v
	}
	return nil
}

func (s *stubRepo) CountRuleExecutionsSince(ctx context.Context, ruleID uint64, since time.Time, includeDryRuns bool) (int64, error) {
	var n int64
	for _, e := range s.executions {
		if e.RuleID != ruleID || e.StartedAt.Before(since) {
			continue
		}
		if e.IsDryRun && !includeDryRuns {
			continue
		}
		n++
	}
	return n, nil
}

func (s *stubRepo) CountRunningExecutions(ctx context.Context) (int64, error) {
	var n int64
	for _, e := range s.executions {
		if e.Status == models.ExecutionRunning {
			n++
		}
	}
	return n, nil
}

func (s *stubRepo) DeleteExecutionsBefore(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func (s *stubRepo) AutomationStats(ctx context.Context, dayStart time.Time) (repository.AutomationStats, error) {
	return repository.AutomationStats{}, nil
}

func (s *stubRepo) GetSafetySettings(ctx context.Context) (*models.SafetySettings, error) {
	if s.settings == nil {
		return nil, nil
	}
	cp := *s.settings
	return &cp, nil
}

func (s *stubRepo) SaveSafetySettings(ctx context.Context, item *models.SafetySettings) error {
	cp := *item
	s.settings = &cp
	return nil
}

func (s *stubRepo) SaveSafetySettingsTx(ctx context.Context, tx *gorm.DB, item *models.SafetySettings) error {
	return s.SaveSafetySettings(ctx, item)
}

var _ repository.Repository = (*stubRepo)(nil)
