package pricing

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
// It implements the full interface but only the listing and recommendation
// paths carry real behavior.
type stubRepo struct {
	listings   map[uint64]*models.Listing
	recos      map[uint64]*models.PriceRecommendation
	logs       []models.PriceChangeLog
	nextRecoID uint64
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		listings: map[uint64]*models.Listing{},
		recos:    map[uint64]*models.PriceRecommendation{},
	}
}

func (s *stubRepo) addListing(l models.Listing) {
	cp := l
	s.listings[l.ID] = &cp
}

func (s *stubRepo) pendingFor(listingID uint64) []*models.PriceRecommendation {
	var out []*models.PriceRecommendation
	for _, rec := range s.recos {
		if rec.ListingID == listingID && rec.Status == models.RecommendationPending {
			out = append(out, rec)
		}
	}
	return out
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
	return nil
}

func (s *stubRepo) ReplacePendingRecommendationTx(ctx context.Context, tx *gorm.DB, item *models.PriceRecommendation) error {
	for id, rec := range s.recos {
		if rec.ListingID == item.ListingID && rec.Status == models.RecommendationPending {
			delete(s.recos, id)
		}
	}
	s.nextRecoID++
	item.ID = s.nextRecoID
	item.Status = models.RecommendationPending
	cp := *item
	s.recos[item.ID] = &cp
	return nil
}

func (s *stubRepo) GetRecommendationByID(ctx context.Context, id uint64) (*models.PriceRecommendation, error) {
	if rec, ok := s.recos[id]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, nil
}

func (s *stubRepo) ListRecommendations(ctx context.Context, params repository.ListRecommendationsParams) ([]models.PriceRecommendation, error) {
	return nil, nil
}

func (s *stubRepo) CountRecommendations(ctx context.Context, params repository.ListRecommendationsParams) (int64, error) {
	return 0, nil
}

func (s *stubRepo) DecideRecommendationTx(ctx context.Context, tx *gorm.DB, id uint64, status string, price *decimal.Decimal, decidedBy string) (bool, error) {
	rec, ok := s.recos[id]
	if !ok || rec.Status != models.RecommendationPending {
		return false, nil
	}
	rec.Status = status
	rec.DecidedBy = decidedBy
	now := time.Now().UTC()
	rec.DecidedAt = &now
	if price != nil {
		rec.RecommendedPrice = *price
	}
	return true, nil
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
	return nil
}

func (s *stubRepo) GetAutomationRuleByID(ctx context.Context, id uint64) (*models.AutomationRule, error) {
	return nil, nil
}

func (s *stubRepo) ListAutomationRules(ctx context.Context, params repository.ListAutomationRulesParams) ([]models.AutomationRule, error) {
	return nil, nil
}

func (s *stubRepo) CountAutomationRules(ctx context.Context, params repository.ListAutomationRulesParams) (int64, error) {
	return 0, nil
}

func (s *stubRepo) UpdateAutomationRule(ctx context.Context, id uint64, updates map[string]any) error {
	return nil
}

func (s *stubRepo) DeleteAutomationRule(ctx context.Context, id uint64) error { return nil }

func (s *stubRepo) SetAutomationRuleActive(ctx context.Context, id uint64, active bool) error {
	return nil
}

func (s *stubRepo) DeactivateAllRulesTx(ctx context.Context, tx *gorm.DB) (int64, error) {
	return 0, nil
}

func (s *stubRepo) BumpRuleCounters(ctx context.Context, id uint64, success, failed int, executedAt time.Time) error {
	return nil
}

func (s *stubRepo) InsertExecution(ctx context.Context, item *models.AutomationExecution) error {
	return nil
}

func (s *stubRepo) GetExecutionByID(ctx context.Context, id uint64) (*models.AutomationExecution, error) {
	return nil, nil
}

func (s *stubRepo) ListExecutions(ctx context.Context, params repository.ListExecutionsParams) ([]models.AutomationExecution, error) {
	return nil, nil
}

func (s *stubRepo) CountExecutions(ctx context.Context, params repository.ListExecutionsParams) (int64, error) {
	return 0, nil
}

func (s *stubRepo) FinishExecution(ctx context.Context, id uint64, updates map[string]any) error {
	return nil
}

func (s *stubRepo) CountRuleExecutionsSince(ctx context.Context, ruleID uint64, since time.Time, includeDryRuns bool) (int64, error) {
	return 0, nil
}

func (s *stubRepo) CountRunningExecutions(ctx context.Context) (int64, error) { return 0, nil }

func (s *stubRepo) DeleteExecutionsBefore(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func (s *stubRepo) AutomationStats(ctx context.Context, dayStart time.Time) (repository.AutomationStats, error) {
	return repository.AutomationStats{}, nil
}

func (s *stubRepo) GetSafetySettings(ctx context.Context) (*models.SafetySettings, error) {
	return nil, nil
}

func (s *stubRepo) SaveSafetySettings(ctx context.Context, item *models.SafetySettings) error {
	return nil
}

func (s *stubRepo) SaveSafetySettingsTx(ctx context.Context, tx *gorm.DB, item *models.SafetySettings) error {
	return nil
}

var _ repository.Repository = (*stubRepo)(nil)
