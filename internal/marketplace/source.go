package marketplace

import (
	"context"

	"github.com/shopspring/decimal"
)

// Metrics is a point-in-time snapshot of a listing's marketplace performance.
type Metrics struct {
	ExternalID   string
	DaysListed   int
	Views        int
	Watchers     int
	CTR          float64
	CurrentPrice decimal.Decimal
	CostPrice    decimal.Decimal
}

// MetricsSource supplies listing metrics from the marketplace. Production
// uses the REST client; tests inject fixed snapshots.
type MetricsSource interface {
	FetchMetrics(ctx context.Context, externalIDs []string) (map[string]Metrics, error)
}

// StaticSource returns the same snapshot map on every call.
type StaticSource struct {
	Snapshots map[string]Metrics
}

func (s StaticSource) FetchMetrics(_ context.Context, externalIDs []string) (map[string]Metrics, error) {
	out := make(map[string]Metrics, len(externalIDs))
	for _, id := range externalIDs {
		if m, ok := s.Snapshots[id]; ok {
			out[id] = m
		}
	}
	return out, nil
}
