package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// SafetySettings is a singleton row of global automation guardrails.
type SafetySettings struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	EmergencyStopEnabled bool       `gorm:"not null;default:false"`
	EmergencyStopAt      *time.Time `gorm:"type:timestamptz"`

	MaxConcurrentExecutions int `gorm:"not null;default:3"`
	MaxDailyExecutions      int `gorm:"not null;default:50"`

	// Price changes above this amount require manual approval.
	RequireApprovalAbove decimal.Decimal `gorm:"type:numeric(20,2);not null;default:50"`

	ExcludedCategories datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (SafetySettings) TableName() string {
	return "safety_settings"
}
