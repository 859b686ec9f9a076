package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"rakuda/internal/models"
)

// Repository is the unified persistence surface shared by the pricing and
// automation services. The gorm implementation is the only production one;
// tests supply in-memory stubs.
type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Listings
	UpsertListingsTx(ctx context.Context, tx *gorm.DB, items []models.Listing) error
	GetListingByID(ctx context.Context, id uint64) (*models.Listing, error)
	GetListingByExternalID(ctx context.Context, externalID string) (*models.Listing, error)
	ListListings(ctx context.Context, params ListListingsParams) ([]models.Listing, error)
	CountListings(ctx context.Context, params ListListingsParams) (int64, error)
	ListActiveListings(ctx context.Context, batchSize int, afterID uint64) ([]models.Listing, error)
	UpdateListingMetrics(ctx context.Context, id uint64, views, watchers int, ctr float64) error
	UpdateListingPriceTx(ctx context.Context, tx *gorm.DB, id uint64, price decimal.Decimal) error
	UpdateListingStatus(ctx context.Context, id uint64, status string) error
	ResetListingListedAt(ctx context.Context, id uint64, at time.Time) error

	// Price recommendations
	ReplacePendingRecommendationTx(ctx context.Context, tx *gorm.DB, item *models.PriceRecommendation) error
	GetRecommendationByID(ctx context.Context, id uint64) (*models.PriceRecommendation, error)
	ListRecommendations(ctx context.Context, params ListRecommendationsParams) ([]models.PriceRecommendation, error)
	CountRecommendations(ctx context.Context, params ListRecommendationsParams) (int64, error)
	// DecideRecommendationTx flips PENDING to the given terminal status. It
	// reports false without error when the row was already decided, so two
	// concurrent approvals cannot both win.
	DecideRecommendationTx(ctx context.Context, tx *gorm.DB, id uint64, status string, price *decimal.Decimal, decidedBy string) (bool, error)
	PendingRecommendationStats(ctx context.Context) (RecommendationStats, error)

	// Price change log
	InsertPriceChangeLogTx(ctx context.Context, tx *gorm.DB, item *models.PriceChangeLog) error
	ListPriceChangeLogs(ctx context.Context, params ListPriceChangeLogsParams) ([]models.PriceChangeLog, error)
	CountPriceChangeLogs(ctx context.Context, params ListPriceChangeLogsParams) (int64, error)

	// Automation rules
	InsertAutomationRule(ctx context.Context, item *models.AutomationRule) error
	GetAutomationRuleByID(ctx context.Context, id uint64) (*models.AutomationRule, error)
	ListAutomationRules(ctx context.Context, params ListAutomationRulesParams) ([]models.AutomationRule, error)
	CountAutomationRules(ctx context.Context, params ListAutomationRulesParams) (int64, error)
	UpdateAutomationRule(ctx context.Context, id uint64, updates map[string]any) error
	DeleteAutomationRule(ctx context.Context, id uint64) error
	SetAutomationRuleActive(ctx context.Context, id uint64, active bool) error
	DeactivateAllRulesTx(ctx context.Context, tx *gorm.DB) (int64, error)
	BumpRuleCounters(ctx context.Context, id uint64, success, failed int, executedAt time.Time) error

	// Automation executions
	InsertExecution(ctx context.Context, item *models.AutomationExecution) error
	GetExecutionByID(ctx context.Context, id uint64) (*models.AutomationExecution, error)
	ListExecutions(ctx context.Context, params ListExecutionsParams) ([]models.AutomationExecution, error)
	CountExecutions(ctx context.Context, params ListExecutionsParams) (int64, error)
	FinishExecution(ctx context.Context, id uint64, updates map[string]any) error
	CountRuleExecutionsSince(ctx context.Context, ruleID uint64, since time.Time, includeDryRuns bool) (int64, error)
	CountRunningExecutions(ctx context.Context) (int64, error)
	DeleteExecutionsBefore(ctx context.Context, before time.Time) (int64, error)
	AutomationStats(ctx context.Context, dayStart time.Time) (AutomationStats, error)

	// Safety settings (singleton)
	GetSafetySettings(ctx context.Context) (*models.SafetySettings, error)
	SaveSafetySettings(ctx context.Context, item *models.SafetySettings) error
	SaveSafetySettingsTx(ctx context.Context, tx *gorm.DB, item *models.SafetySettings) error
}

type ListListingsParams struct {
	Limit         int
	Offset        int
	Status        *string
	CategoryID    *string
	MinDaysListed *int
	MaxViews      *int
	Title         *string
	OrderBy       string
	Asc           *bool
}

type ListRecommendationsParams struct {
	Limit      int
	Offset     int
	Status     *string
	ReasonCode *string
	ListingID  *uint64
	Since      *time.Time
	OrderBy    string
	Asc        *bool
}

type ListPriceChangeLogsParams struct {
	Limit     int
	Offset    int
	ListingID *uint64
	ChangedBy *string
	Since     *time.Time
	OrderBy   string
	Asc       *bool
}

type ListAutomationRulesParams struct {
	Limit    int
	Offset   int
	IsActive *bool
	Trigger  *string
	Action   *string
	OrderBy  string
	Asc      *bool
}

type ListExecutionsParams struct {
	Limit   int
	Offset  int
	RuleID  *uint64
	Status  *string
	DryRun  *bool
	Since   *time.Time
	OrderBy string
	Asc     *bool
}

type RecommendationStats struct {
	Total                int64
	TotalPotentialSaving decimal.Decimal
	ByReason             map[string]int64
}

type AutomationStats struct {
	TotalRules      int64
	ActiveRules     int64
	TotalExecutions int64
	TodayExecutions int64
	SuccessRate     float64
}
