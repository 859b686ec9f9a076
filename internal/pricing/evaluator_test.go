package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"rakuda/internal/marketplace"
	"rakuda/internal/models"
)

func mkMetrics(daysListed, views int, price float64) marketplace.Metrics {
	return marketplace.Metrics{
		DaysListed:   daysListed,
		Views:        views,
		CurrentPrice: decimal.NewFromFloat(price),
		CostPrice:    decimal.NewFromFloat(10),
	}
}

func TestEvaluate_ThresholdTable(t *testing.T) {
	cases := []struct {
		name       string
		daysListed int
		views      int
		wantReason string
		wantPrice  string
	}{
		{"stale 90 boundary", 90, 100, models.ReasonStale90, "75"},
		{"stale 60 boundary", 60, 100, models.ReasonStale60, "85"},
		{"stale 30 boundary", 30, 100, models.ReasonStale30, "95"},
		{"low views", 14, 9, models.ReasonLowViews, "90"},
		{"low views upper bound", 29, 0, models.ReasonLowViews, "90"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Evaluate(mkMetrics(tc.daysListed, tc.views, 100))
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if got == nil {
				t.Fatalf("expected a proposal")
			}
			if got.ReasonCode != tc.wantReason {
				t.Fatalf("reason = %s, want %s", got.ReasonCode, tc.wantReason)
			}
			want, _ := decimal.NewFromString(tc.wantPrice)
			if !got.RecommendedPrice.Equal(want) {
				t.Fatalf("price = %s, want %s", got.RecommendedPrice, want)
			}
		})
	}
}

func TestEvaluate_FirstMatchWins(t *testing.T) {
	// 95 days and 2 views satisfies both STALE_90 and LOW_VIEWS; staleness
	// is evaluated first.
	got, err := Evaluate(mkMetrics(95, 2, 100))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got == nil {
		t.Fatalf("expected a proposal")
	}
	if got.ReasonCode != models.ReasonStale90 {
		t.Fatalf("reason = %s, want %s", got.ReasonCode, models.ReasonStale90)
	}
	if !got.Magnitude.Equal(decimal.NewFromFloat(-0.25)) {
		t.Fatalf("magnitude = %s, want -0.25", got.Magnitude)
	}
}

func TestEvaluate_NoMatch(t *testing.T) {
	got, err := Evaluate(mkMetrics(13, 0, 100))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no proposal, got %s", got.ReasonCode)
	}
	got, err = Evaluate(mkMetrics(20, 10, 100))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got != nil {
		t.Fatalf("views=10 should not trigger LOW_VIEWS, got %s", got.ReasonCode)
	}
}

func TestEvaluate_Rounding(t *testing.T) {
	got, err := Evaluate(mkMetrics(30, 100, 33.33))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	// 33.33 * 0.95 = 31.6635 -> 31.66
	want := decimal.NewFromFloat(31.66)
	if !got.RecommendedPrice.Equal(want) {
		t.Fatalf("price = %s, want %s", got.RecommendedPrice, want)
	}
}

func TestEvaluate_InvalidInput(t *testing.T) {
	cases := []marketplace.Metrics{
		{DaysListed: -1, Views: 5, CurrentPrice: decimal.NewFromInt(10)},
		{DaysListed: 5, Views: -1, CurrentPrice: decimal.NewFromInt(10)},
		{DaysListed: 5, Views: 5, CurrentPrice: decimal.Zero},
		{DaysListed: 5, Views: 5, CurrentPrice: decimal.NewFromInt(10), CostPrice: decimal.NewFromInt(-1)},
	}
	for i, m := range cases {
		if _, err := Evaluate(m); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: err = %v, want ErrInvalidInput", i, err)
		}
	}
}

func TestPerformanceScore(t *testing.T) {
	// Fresh listing with maxed metrics scores 100.
	m := marketplace.Metrics{Views: 100, Watchers: 10, CTR: 0.05, DaysListed: 0}
	if got := PerformanceScore(m); got != 100 {
		t.Fatalf("score = %v, want 100", got)
	}
	// Freshness decays to zero at 60 days and stays there.
	m.DaysListed = 90
	if got := PerformanceScore(m); got != 80 {
		t.Fatalf("score = %v, want 80", got)
	}
	// Dead listing scores zero.
	if got := PerformanceScore(marketplace.Metrics{DaysListed: 60}); got != 0 {
		t.Fatalf("score = %v, want 0", got)
	}
}
