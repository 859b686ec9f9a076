package gormrepository

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rakuda/internal/models"
	"rakuda/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// --- Listings ---------------------------------------------------------------

func (s *Store) UpsertListingsTx(ctx context.Context, tx *gorm.DB, items []models.Listing) error {
	if s == nil || tx == nil || len(items) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title",
			"category_id",
			"current_price",
			"cost_price",
			"status",
			"views",
			"watchers",
			"ctr",
			"listed_at",
			"updated_at",
		}),
	}).CreateInBatches(items, 200).Error
}

func (s *Store) GetListingByID(ctx context.Context, id uint64) (*models.Listing, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.Listing
	err := s.db.WithContext(ctx).Model(&models.Listing{}).Where("id = ?", id).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetListingByExternalID(ctx context.Context, externalID string) (*models.Listing, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, nil
	}
	var item models.Listing
	err := s.db.WithContext(ctx).Model(&models.Listing{}).Where("external_id = ?", externalID).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) listingsQuery(ctx context.Context, params repository.ListListingsParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Listing{})
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	if params.CategoryID != nil && strings.TrimSpace(*params.CategoryID) != "" {
		query = query.Where("category_id = ?", strings.TrimSpace(*params.CategoryID))
	}
	if params.MinDaysListed != nil && *params.MinDaysListed > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -*params.MinDaysListed)
		query = query.Where("listed_at <= ?", cutoff)
	}
	if params.MaxViews != nil && *params.MaxViews >= 0 {
		query = query.Where("views <= ?", *params.MaxViews)
	}
	if params.Title != nil && strings.TrimSpace(*params.Title) != "" {
		query = query.Where("title ILIKE ?", "%"+strings.TrimSpace(*params.Title)+"%")
	}
	return query
}

func (s *Store) ListListings(ctx context.Context, params repository.ListListingsParams) ([]models.Listing, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.listingsQuery(ctx, params)
	query = applyOrder(query, params.OrderBy, params.Asc, "listed_at")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Listing
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountListings(ctx context.Context, params repository.ListListingsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.listingsQuery(ctx, params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) ListActiveListings(ctx context.Context, batchSize int, afterID uint64) ([]models.Listing, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	batchSize = normalizeLimit(batchSize, 100)
	var items []models.Listing
	if err := s.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("status = ?", models.ListingStatusActive).
		Where("id > ?", afterID).
		Order("id asc").
		Limit(batchSize).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpdateListingMetrics(ctx context.Context, id uint64, views, watchers int, ctr float64) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"views":      views,
			"watchers":   watchers,
			"ctr":        ctr,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (s *Store) UpdateListingPriceTx(ctx context.Context, tx *gorm.DB, id uint64, price decimal.Decimal) error {
	if s == nil || tx == nil || id == 0 {
		return nil
	}
	return tx.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"current_price": price,
			"updated_at":    time.Now().UTC(),
		}).Error
}

func (s *Store) UpdateListingStatus(ctx context.Context, id uint64, status string) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()}).
		Error
}

func (s *Store) ResetListingListedAt(ctx context.Context, id uint64, at time.Time) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"listed_at":  at,
			"status":     models.ListingStatusActive,
			"views":      0,
			"watchers":   0,
			"ctr":        0,
			"updated_at": time.Now().UTC(),
		}).Error
}

// --- Price recommendations --------------------------------------------------

func (s *Store) ReplacePendingRecommendationTx(ctx context.Context, tx *gorm.DB, item *models.PriceRecommendation) error {
	if s == nil || tx == nil || item == nil {
		return nil
	}
	if err := tx.WithContext(ctx).
		Where("listing_id = ?", item.ListingID).
		Where("status = ?", models.RecommendationPending).
		Delete(&models.PriceRecommendation{}).Error; err != nil {
		return err
	}
	item.Status = models.RecommendationPending
	return tx.WithContext(ctx).Create(item).Error
}

func (s *Store) GetRecommendationByID(ctx context.Context, id uint64) (*models.PriceRecommendation, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.PriceRecommendation
	err := s.db.WithContext(ctx).
		Model(&models.PriceRecommendation{}).
		Preload("Listing").
		Where("id = ?", id).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) recommendationsQuery(ctx context.Context, params repository.ListRecommendationsParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.PriceRecommendation{})
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	if params.ReasonCode != nil && strings.TrimSpace(*params.ReasonCode) != "" {
		query = query.Where("reason_code = ?", strings.TrimSpace(*params.ReasonCode))
	}
	if params.ListingID != nil && *params.ListingID > 0 {
		query = query.Where("listing_id = ?", *params.ListingID)
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("created_at >= ?", *params.Since)
	}
	return query
}

func (s *Store) ListRecommendations(ctx context.Context, params repository.ListRecommendationsParams) ([]models.PriceRecommendation, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.recommendationsQuery(ctx, params).Preload("Listing")
	query = applyOrder(query, params.OrderBy, params.Asc, "created_at")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.PriceRecommendation
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountRecommendations(ctx context.Context, params repository.ListRecommendationsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.recommendationsQuery(ctx, params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) DecideRecommendationTx(ctx context.Context, tx *gorm.DB, id uint64, status string, price *decimal.Decimal, decidedBy string) (bool, error) {
	if s == nil || tx == nil || id == 0 {
		return false, nil
	}
	now := time.Now().UTC()
	updates := map[string]any{
		"status":     status,
		"decided_at": now,
		"decided_by": decidedBy,
		"updated_at": now,
	}
	if price != nil {
		updates["recommended_price"] = *price
	}
	res := tx.WithContext(ctx).
		Model(&models.PriceRecommendation{}).
		Where("id = ?", id).
		Where("status = ?", models.RecommendationPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) PendingRecommendationStats(ctx context.Context) (repository.RecommendationStats, error) {
	stats := repository.RecommendationStats{ByReason: map[string]int64{}}
	if s == nil || s.db == nil {
		return stats, nil
	}
	type reasonRow struct {
		ReasonCode string
		Count      int64
		Saving     decimal.Decimal
	}
	var rows []reasonRow
	if err := s.db.WithContext(ctx).
		Model(&models.PriceRecommendation{}).
		Select("reason_code, COUNT(*) AS count, COALESCE(SUM(ABS(current_price - recommended_price)),0) AS saving").
		Where("status = ?", models.RecommendationPending).
		Group("reason_code").
		Scan(&rows).Error; err != nil {
		return stats, err
	}
	for _, row := range rows {
		stats.Total += row.Count
		stats.ByReason[row.ReasonCode] = row.Count
		stats.TotalPotentialSaving = stats.TotalPotentialSaving.Add(row.Saving)
	}
	return stats, nil
}

// --- Price change log -------------------------------------------------------

func (s *Store) InsertPriceChangeLogTx(ctx context.Context, tx *gorm.DB, item *models.PriceChangeLog) error {
	if s == nil || tx == nil || item == nil {
		return nil
	}
	return tx.WithContext(ctx).Create(item).Error
}

func (s *Store) priceChangeLogsQuery(ctx context.Context, params repository.ListPriceChangeLogsParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.PriceChangeLog{})
	if params.ListingID != nil && *params.ListingID > 0 {
		query = query.Where("listing_id = ?", *params.ListingID)
	}
	if params.ChangedBy != nil && strings.TrimSpace(*params.ChangedBy) != "" {
		query = query.Where("changed_by = ?", strings.TrimSpace(*params.ChangedBy))
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("created_at >= ?", *params.Since)
	}
	return query
}

func (s *Store) ListPriceChangeLogs(ctx context.Context, params repository.ListPriceChangeLogsParams) ([]models.PriceChangeLog, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.priceChangeLogsQuery(ctx, params)
	query = applyOrder(query, params.OrderBy, params.Asc, "created_at")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.PriceChangeLog
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountPriceChangeLogs(ctx context.Context, params repository.ListPriceChangeLogsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.priceChangeLogsQuery(ctx, params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// --- Automation rules -------------------------------------------------------

func (s *Store) InsertAutomationRule(ctx context.Context, item *models.AutomationRule) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetAutomationRuleByID(ctx context.Context, id uint64) (*models.AutomationRule, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.AutomationRule
	err := s.db.WithContext(ctx).Model(&models.AutomationRule{}).Where("id = ?", id).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) automationRulesQuery(ctx context.Context, params repository.ListAutomationRulesParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.AutomationRule{})
	if params.IsActive != nil {
		query = query.Where("is_active = ?", *params.IsActive)
	}
	if params.Trigger != nil && strings.TrimSpace(*params.Trigger) != "" {
		query = query.Where("trigger = ?", strings.TrimSpace(*params.Trigger))
	}
	if params.Action != nil && strings.TrimSpace(*params.Action) != "" {
		query = query.Where("action = ?", strings.TrimSpace(*params.Action))
	}
	return query
}

func (s *Store) ListAutomationRules(ctx context.Context, params repository.ListAutomationRulesParams) ([]models.AutomationRule, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.automationRulesQuery(ctx, params)
	query = applyOrder(query, params.OrderBy, params.Asc, "priority")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.AutomationRule
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountAutomationRules(ctx context.Context, params repository.ListAutomationRulesParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.automationRulesQuery(ctx, params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) UpdateAutomationRule(ctx context.Context, id uint64, updates map[string]any) error {
	if s == nil || s.db == nil || id == 0 || len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return s.db.WithContext(ctx).
		Model(&models.AutomationRule{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (s *Store) DeleteAutomationRule(ctx context.Context, id uint64) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("rule_id = ?", id).Delete(&models.AutomationExecution{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.AutomationRule{}).Error
	})
}

func (s *Store) SetAutomationRuleActive(ctx context.Context, id uint64, active bool) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.AutomationRule{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": active, "updated_at": time.Now().UTC()}).
		Error
}

func (s *Store) DeactivateAllRulesTx(ctx context.Context, tx *gorm.DB) (int64, error) {
	if s == nil || tx == nil {
		return 0, nil
	}
	res := tx.WithContext(ctx).
		Model(&models.AutomationRule{}).
		Where("is_active = ?", true).
		Updates(map[string]any{"is_active": false, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

func (s *Store) BumpRuleCounters(ctx context.Context, id uint64, success, failed int, executedAt time.Time) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.AutomationRule{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"execution_count":  gorm.Expr("execution_count + 1"),
			"success_count":    gorm.Expr("success_count + ?", success),
			"failure_count":    gorm.Expr("failure_count + ?", failed),
			"last_executed_at": executedAt,
			"updated_at":       time.Now().UTC(),
		}).Error
}

// --- Automation executions --------------------------------------------------

func (s *Store) InsertExecution(ctx context.Context, item *models.AutomationExecution) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetExecutionByID(ctx context.Context, id uint64) (*models.AutomationExecution, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.AutomationExecution
	err := s.db.WithContext(ctx).
		Model(&models.AutomationExecution{}).
		Preload("Rule").
		Where("id = ?", id).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) executionsQuery(ctx context.Context, params repository.ListExecutionsParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.AutomationExecution{})
	if params.RuleID != nil && *params.RuleID > 0 {
		query = query.Where("rule_id = ?", *params.RuleID)
	}
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	if params.DryRun != nil {
		query = query.Where("is_dry_run = ?", *params.DryRun)
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("started_at >= ?", *params.Since)
	}
	return query
}

func (s *Store) ListExecutions(ctx context.Context, params repository.ListExecutionsParams) ([]models.AutomationExecution, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.executionsQuery(ctx, params)
	query = applyOrder(query, params.OrderBy, params.Asc, "started_at")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.AutomationExecution
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountExecutions(ctx context.Context, params repository.ListExecutionsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.executionsQuery(ctx, params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) FinishExecution(ctx context.Context, id uint64, updates map[string]any) error {
	if s == nil || s.db == nil || id == 0 || len(updates) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.AutomationExecution{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (s *Store) CountRuleExecutionsSince(ctx context.Context, ruleID uint64, since time.Time, includeDryRuns bool) (int64, error) {
	if s == nil || s.db == nil || ruleID == 0 {
		return 0, nil
	}
	query := s.db.WithContext(ctx).
		Model(&models.AutomationExecution{}).
		Where("rule_id = ?", ruleID).
		Where("started_at >= ?", since)
	if !includeDryRuns {
		query = query.Where("is_dry_run = ?", false)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) CountRunningExecutions(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.db.WithContext(ctx).
		Model(&models.AutomationExecution{}).
		Where("status = ?", models.ExecutionRunning).
		Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) DeleteExecutionsBefore(ctx context.Context, before time.Time) (int64, error) {
	if s == nil || s.db == nil || before.IsZero() {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("started_at < ?", before).
		Where("status <> ?", models.ExecutionRunning).
		Delete(&models.AutomationExecution{})
	return res.RowsAffected, res.Error
}

func (s *Store) AutomationStats(ctx context.Context, dayStart time.Time) (repository.AutomationStats, error) {
	var stats repository.AutomationStats
	if s == nil || s.db == nil {
		return stats, nil
	}
	if err := s.db.WithContext(ctx).Model(&models.AutomationRule{}).Count(&stats.TotalRules).Error; err != nil {
		return stats, err
	}
	if err := s.db.WithContext(ctx).
		Model(&models.AutomationRule{}).
		Where("is_active = ?", true).
		Count(&stats.ActiveRules).Error; err != nil {
		return stats, err
	}
	if err := s.db.WithContext(ctx).
		Model(&models.AutomationExecution{}).
		Where("is_dry_run = ?", false).
		Count(&stats.TotalExecutions).Error; err != nil {
		return stats, err
	}
	if err := s.db.WithContext(ctx).
		Model(&models.AutomationExecution{}).
		Where("is_dry_run = ?", false).
		Where("started_at >= ?", dayStart).
		Count(&stats.TodayExecutions).Error; err != nil {
		return stats, err
	}
	type counterRow struct {
		Success int64
		Failed  int64
	}
	var row counterRow
	if err := s.db.WithContext(ctx).
		Model(&models.AutomationRule{}).
		Select("COALESCE(SUM(success_count),0) AS success, COALESCE(SUM(failure_count),0) AS failed").
		Scan(&row).Error; err != nil {
		return stats, err
	}
	if row.Success+row.Failed > 0 {
		stats.SuccessRate = float64(row.Success) / float64(row.Success+row.Failed)
	}
	return stats, nil
}

// --- Safety settings --------------------------------------------------------

func (s *Store) GetSafetySettings(ctx context.Context) (*models.SafetySettings, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.SafetySettings
	err := s.db.WithContext(ctx).
		Model(&models.SafetySettings{}).
		Order("id asc").
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) SaveSafetySettings(ctx context.Context, item *models.SafetySettings) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) SaveSafetySettingsTx(ctx context.Context, tx *gorm.DB, item *models.SafetySettings) error {
	if s == nil || tx == nil || item == nil {
		return nil
	}
	return tx.WithContext(ctx).Save(item).Error
}

// --- helpers ----------------------------------------------------------------

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	if column == "" {
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

var _ repository.Repository = (*Store)(nil)
