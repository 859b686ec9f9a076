package service

import (
	"context"

	"go.uber.org/zap"

	"rakuda/internal/marketplace"
	"rakuda/internal/repository"
)

// ListingSyncService refreshes stored listing metrics from the marketplace.
// The source is an injected collaborator so tests can feed fixed snapshots.
type ListingSyncService struct {
	Repo      repository.Repository
	Source    marketplace.MetricsSource
	Logger    *zap.Logger
	BatchSize int
}

// SyncAll walks active listings in batches and updates their metrics from
// the source. Listings the source does not know about are left alone.
func (s *ListingSyncService) SyncAll(ctx context.Context) (int, error) {
	if s == nil || s.Repo == nil || s.Source == nil {
		return 0, nil
	}
	batchSize := s.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	updated := 0
	var afterID uint64
	for {
		listings, err := s.Repo.ListActiveListings(ctx, batchSize, afterID)
		if err != nil {
			return updated, err
		}
		if len(listings) == 0 {
			return updated, nil
		}

		ids := make([]string, 0, len(listings))
		byExternal := make(map[string]uint64, len(listings))
		for _, listing := range listings {
			afterID = listing.ID
			ids = append(ids, listing.ExternalID)
			byExternal[listing.ExternalID] = listing.ID
		}

		snapshots, err := s.Source.FetchMetrics(ctx, ids)
		if err != nil {
			if s.Logger != nil {
				s.Logger.Warn("metrics fetch failed", zap.Int("batch", len(ids)), zap.Error(err))
			}
			continue
		}
		for externalID, m := range snapshots {
			id, ok := byExternal[externalID]
			if !ok {
				continue
			}
			if err := s.Repo.UpdateListingMetrics(ctx, id, m.Views, m.Watchers, m.CTR); err != nil {
				if s.Logger != nil {
					s.Logger.Warn("metrics update failed", zap.Uint64("listing_id", id), zap.Error(err))
				}
				continue
			}
			updated++
		}
	}
}
