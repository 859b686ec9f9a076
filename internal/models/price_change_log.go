package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceChangeLog records every applied price change, manual or automated.
type PriceChangeLog struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	ListingID uint64 `gorm:"not null;index"`
	Listing   Listing

	OldPrice decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	NewPrice decimal.Decimal `gorm:"type:numeric(20,2);not null"`

	Reason    string `gorm:"type:varchar(255)"`
	ChangedBy string `gorm:"type:varchar(100);not null;index"`

	RecommendationID *uint64 `gorm:"index"`
	ExecutionID      *uint64 `gorm:"index"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (PriceChangeLog) TableName() string {
	return "price_change_logs"
}
