package models

import (
	"time"

	"gorm.io/datatypes"
)

// Execution status values. RUNNING is transient: every execution finishes in
// one of the three terminal states, even on unexpected errors.
const (
	ExecutionRunning         = "RUNNING"
	ExecutionCompleted       = "COMPLETED"
	ExecutionFailed          = "FAILED"
	ExecutionDryRunCompleted = "DRY_RUN_COMPLETED"
)

// AutomationExecution is one run of a rule, real or dry.
type AutomationExecution struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	RuleID uint64 `gorm:"not null;index"`
	Rule   AutomationRule

	Status string `gorm:"type:varchar(30);not null;index;default:'RUNNING'"`

	TriggeredBy   string `gorm:"type:varchar(100);not null"`
	TriggerReason string `gorm:"type:varchar(255)"`
	IsDryRun      bool   `gorm:"not null;default:false"`

	TargetCount    int `gorm:"not null;default:0"`
	ProcessedCount int `gorm:"not null;default:0"`
	SuccessCount   int `gorm:"not null;default:0"`
	FailedCount    int `gorm:"not null;default:0"`

	Results datatypes.JSON `gorm:"type:jsonb"`
	Error   string         `gorm:"type:text"`

	StartedAt   time.Time  `gorm:"type:timestamptz;not null;index"`
	CompletedAt *time.Time `gorm:"type:timestamptz"`
	DurationMs  int64      `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (AutomationExecution) TableName() string {
	return "automation_executions"
}

// ExecutionResult is one entry of the Results JSON array.
type ExecutionResult struct {
	ListingID uint64 `json:"listing_id"`
	Success   bool   `json:"success"`
	Detail    string `json:"detail,omitempty"`
	Error     string `json:"error,omitempty"`
}
