package models

import (
	"time"

	"gorm.io/datatypes"
)

// Rule trigger kinds.
const (
	TriggerPriceDrop     = "PRICE_DROP"
	TriggerStaleListing  = "STALE_LISTING"
	TriggerLowViews      = "LOW_VIEWS"
	TriggerCompetitorCut = "COMPETITOR_PRICE_CUT"
	TriggerSchedule      = "SCHEDULE"
)

// Rule action kinds.
const (
	ActionAdjustPrice  = "ADJUST_PRICE"
	ActionPauseListing = "PAUSE_LISTING"
	ActionEndListing   = "END_LISTING"
	ActionRelist       = "RELIST"
	ActionNotify       = "NOTIFY"
)

// Schedule types.
const (
	ScheduleManual    = "MANUAL"
	ScheduleScheduled = "SCHEDULED"
)

// Condition logic values.
const (
	ConditionLogicAnd = "AND"
	ConditionLogicOr  = "OR"
)

// AutomationRule describes a seller-defined automation: when the trigger
// fires and every condition passes, the action is applied to matching
// listings. Rules are created inactive and must be toggled on explicitly.
type AutomationRule struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	Name        string `gorm:"type:varchar(100);not null"`
	Description string `gorm:"type:text"`

	Trigger       string         `gorm:"type:varchar(40);not null;index"`
	TriggerConfig datatypes.JSON `gorm:"type:jsonb"`

	Conditions     datatypes.JSON `gorm:"type:jsonb"`
	ConditionLogic string         `gorm:"type:varchar(5);not null;default:'AND'"`

	Action       string         `gorm:"type:varchar(40);not null"`
	ActionConfig datatypes.JSON `gorm:"type:jsonb"`

	ScheduleType   string `gorm:"type:varchar(20);not null;default:'MANUAL'"`
	CronExpression string `gorm:"type:varchar(100)"`

	RequiresConfirmation bool `gorm:"not null;default:false"`
	MaxExecutionsPerDay  int  `gorm:"not null;default:10"`
	CooldownMinutes      int  `gorm:"not null;default:60"`
	Priority             int  `gorm:"not null;default:0;index"`

	IsActive bool `gorm:"not null;default:false;index"`

	// Rolling counters, owned by the executor. Dry runs never touch them.
	ExecutionCount int        `gorm:"not null;default:0"`
	SuccessCount   int        `gorm:"not null;default:0"`
	FailureCount   int        `gorm:"not null;default:0"`
	LastExecutedAt *time.Time `gorm:"type:timestamptz"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (AutomationRule) TableName() string {
	return "automation_rules"
}

// RuleCondition is one entry of the Conditions JSON array.
type RuleCondition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}
