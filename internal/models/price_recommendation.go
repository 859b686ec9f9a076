package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recommendation status values. Status is set once: a decided row never
// goes back to pending.
const (
	RecommendationPending  = "PENDING"
	RecommendationApproved = "APPROVED"
	RecommendationRejected = "REJECTED"
)

// Recommendation reason codes, ordered by evaluation precedence.
const (
	ReasonStale90        = "STALE_90"
	ReasonStale60        = "STALE_60"
	ReasonStale30        = "STALE_30"
	ReasonLowViews       = "LOW_VIEWS"
	ReasonCompetitive    = "COMPETITIVE"
	ReasonProfitOptimize = "PROFIT_OPTIMIZE"
)

// PriceRecommendation is a proposed price change for a listing. At most one
// pending row exists per listing; regeneration replaces it.
type PriceRecommendation struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	ListingID uint64 `gorm:"not null;index:idx_price_recos_listing_status"`
	Listing   Listing

	CurrentPrice     decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	RecommendedPrice decimal.Decimal `gorm:"type:numeric(20,2);not null"`

	ReasonCode string `gorm:"type:varchar(30);not null;index"`
	// Magnitude is the signed fraction applied to the current price, e.g. -0.25.
	Magnitude decimal.Decimal `gorm:"type:numeric(10,4);not null"`
	Reason    string          `gorm:"type:text"`

	Status    string     `gorm:"type:varchar(20);not null;index:idx_price_recos_listing_status;default:'PENDING'"`
	DecidedAt *time.Time `gorm:"type:timestamptz"`
	DecidedBy string     `gorm:"type:varchar(100)"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (PriceRecommendation) TableName() string {
	return "price_recommendations"
}

// PotentialSaving is the absolute price delta the recommendation proposes.
func (r PriceRecommendation) PotentialSaving() decimal.Decimal {
	return r.CurrentPrice.Sub(r.RecommendedPrice).Abs()
}
