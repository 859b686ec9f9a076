package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// lowMarginFloor is the profit margin below which a simulated price is flagged.
var lowMarginFloor = decimal.NewFromFloat(0.10)

// Simulation is the projected effect of a hypothetical price change. It is
// computed from inputs alone and never persisted.
type Simulation struct {
	ListingID           uint64          `json:"listing_id"`
	CurrentPrice        decimal.Decimal `json:"current_price"`
	NewPrice            decimal.Decimal `json:"new_price"`
	CostPrice           decimal.Decimal `json:"cost_price"`
	CurrentProfit       decimal.Decimal `json:"current_profit"`
	NewProfit           decimal.Decimal `json:"new_profit"`
	ProfitChange        decimal.Decimal `json:"profit_change"`
	ProfitMarginCurrent decimal.Decimal `json:"profit_margin_current"`
	ProfitMarginNew     decimal.Decimal `json:"profit_margin_new"`
	PriceChangePercent  decimal.Decimal `json:"price_change_percent"`
	IsBelowCost         bool            `json:"is_below_cost"`
	IsLowMargin         bool            `json:"is_low_margin"`
}

// Simulate projects profit impact of repricing a listing to newPrice.
func Simulate(listingID uint64, currentPrice, costPrice, newPrice decimal.Decimal) (Simulation, error) {
	if newPrice.LessThanOrEqual(decimal.Zero) {
		return Simulation{}, fmt.Errorf("%w: %s", ErrInvalidPrice, newPrice)
	}

	currentProfit := currentPrice.Sub(costPrice)
	newProfit := newPrice.Sub(costPrice)
	marginNew := newProfit.Div(newPrice).Round(4)

	sim := Simulation{
		ListingID:       listingID,
		CurrentPrice:    currentPrice,
		NewPrice:        newPrice,
		CostPrice:       costPrice,
		CurrentProfit:   currentProfit,
		NewProfit:       newProfit,
		ProfitChange:    newProfit.Sub(currentProfit),
		ProfitMarginNew: marginNew,
		IsBelowCost:     newPrice.LessThan(costPrice),
		IsLowMargin:     marginNew.LessThan(lowMarginFloor),
	}
	if currentPrice.GreaterThan(decimal.Zero) {
		sim.ProfitMarginCurrent = currentProfit.Div(currentPrice).Round(4)
		sim.PriceChangePercent = newPrice.Sub(currentPrice).Div(currentPrice).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return sim, nil
}
