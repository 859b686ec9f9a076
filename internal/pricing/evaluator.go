package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"rakuda/internal/marketplace"
	"rakuda/internal/models"
)

// Proposal is one suggested price change produced by the evaluator.
type Proposal struct {
	ReasonCode       string
	Magnitude        decimal.Decimal
	RecommendedPrice decimal.Decimal
	Reason           string
}

type threshold struct {
	match     func(marketplace.Metrics) bool
	reason    string
	magnitude decimal.Decimal
	text      string
}

// Thresholds are evaluated in order and the first match wins, so the
// strongest staleness tier always shadows the weaker ones and LOW_VIEWS
// only fires for listings not yet stale.
var thresholds = []threshold{
	{
		match:     func(m marketplace.Metrics) bool { return m.DaysListed >= 90 },
		reason:    models.ReasonStale90,
		magnitude: decimal.NewFromFloat(-0.25),
		text:      "Listed for 90+ days with no sale",
	},
	{
		match:     func(m marketplace.Metrics) bool { return m.DaysListed >= 60 },
		reason:    models.ReasonStale60,
		magnitude: decimal.NewFromFloat(-0.15),
		text:      "Listed for 60+ days with no sale",
	},
	{
		match:     func(m marketplace.Metrics) bool { return m.DaysListed >= 30 },
		reason:    models.ReasonStale30,
		magnitude: decimal.NewFromFloat(-0.05),
		text:      "Listed for 30+ days with no sale",
	},
	{
		match:     func(m marketplace.Metrics) bool { return m.DaysListed >= 14 && m.Views < 10 },
		reason:    models.ReasonLowViews,
		magnitude: decimal.NewFromFloat(-0.10),
		text:      "Low view count after two weeks",
	},
}

// Evaluate inspects one listing's metrics and returns at most one proposal.
// A nil proposal with nil error means no threshold matched.
func Evaluate(m marketplace.Metrics) (*Proposal, error) {
	if m.DaysListed < 0 {
		return nil, fmt.Errorf("%w: days listed %d", ErrInvalidInput, m.DaysListed)
	}
	if m.Views < 0 {
		return nil, fmt.Errorf("%w: views %d", ErrInvalidInput, m.Views)
	}
	if m.CurrentPrice.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: current price %s", ErrInvalidInput, m.CurrentPrice)
	}
	if m.CostPrice.IsNegative() {
		return nil, fmt.Errorf("%w: cost price %s", ErrInvalidInput, m.CostPrice)
	}

	for _, t := range thresholds {
		if !t.match(m) {
			continue
		}
		proposed := m.CurrentPrice.Mul(decimal.NewFromInt(1).Add(t.magnitude)).Round(2)
		return &Proposal{
			ReasonCode:       t.reason,
			Magnitude:        t.magnitude,
			RecommendedPrice: proposed,
			Reason:           t.text,
		}, nil
	}
	return nil, nil
}

// PerformanceScore grades a listing 0-100 from views, watchers, click-through
// rate and freshness. Views and watchers weigh 30 each, CTR 20, freshness 20.
func PerformanceScore(m marketplace.Metrics) float64 {
	viewsScore := minF(float64(m.Views)/100, 1) * 30
	watchersScore := minF(float64(m.Watchers)/10, 1) * 30
	ctrScore := minF(m.CTR/0.05, 1) * 20
	freshness := (60 - float64(m.DaysListed)) / 60
	if freshness < 0 {
		freshness = 0
	}
	return viewsScore + watchersScore + ctrScore + freshness*20
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
