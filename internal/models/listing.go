package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing is a marketplace listing tracked for pricing decisions.
type Listing struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	ExternalID string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Title      string `gorm:"type:varchar(255);not null"`
	CategoryID string `gorm:"type:varchar(50);index"`

	// Money-like values are stored as numeric to avoid float errors.
	CurrentPrice decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	CostPrice    decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`

	Status string `gorm:"type:varchar(20);not null;index;default:'active'"`

	Views    int     `gorm:"not null;default:0"`
	Watchers int     `gorm:"not null;default:0"`
	CTR      float64 `gorm:"not null;default:0"`

	ListedAt time.Time `gorm:"type:timestamptz;not null;index"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Listing) TableName() string {
	return "listings"
}

// DaysListed is the whole number of days since the listing went live.
func (l Listing) DaysListed(now time.Time) int {
	if now.Before(l.ListedAt) {
		return 0
	}
	return int(now.Sub(l.ListedAt).Hours() / 24)
}

const (
	ListingStatusActive = "active"
	ListingStatusPaused = "paused"
	ListingStatusEnded  = "ended"
)
