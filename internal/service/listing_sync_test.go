package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"rakuda/internal/marketplace"
	"rakuda/internal/models"
)

func syncListing(id uint64, externalID, status string) models.Listing {
	return models.Listing{
		ID:           id,
		ExternalID:   externalID,
		Title:        "listing",
		CurrentPrice: decimal.RequireFromString("10.00"),
		Status:       status,
		ListedAt:     time.Now().UTC().Add(-72 * time.Hour),
	}
}

func TestSyncAllUpdatesKnownListings(t *testing.T) {
	repo := newStubRepo()
	repo.addListing(syncListing(1, "ext-1", models.ListingStatusActive))
	repo.addListing(syncListing(2, "ext-2", models.ListingStatusActive))
	repo.addListing(syncListing(3, "ext-3", models.ListingStatusEnded))

	svc := &ListingSyncService{
		Repo: repo,
		Source: marketplace.StaticSource{Snapshots: map[string]marketplace.Metrics{
			"ext-1": {ExternalID: "ext-1", Views: 120, Watchers: 7, CTR: 0.031},
			"ext-3": {ExternalID: "ext-3", Views: 999},
		}},
		BatchSize: 1,
	}

	updated, err := svc.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if updated != 1 {
		t.Fatalf("updated = %d, want 1", updated)
	}

	got := repo.listings[1]
	if got.Views != 120 || got.Watchers != 7 || got.CTR != 0.031 {
		t.Fatalf("listing 1 metrics = %d/%d/%f", got.Views, got.Watchers, got.CTR)
	}
	// Unknown to the source: untouched.
	if repo.listings[2].Views != 0 {
		t.Fatalf("listing 2 should be untouched, views = %d", repo.listings[2].Views)
	}
	// Ended listings are never walked.
	if repo.listings[3].Views != 0 {
		t.Fatalf("ended listing updated, views = %d", repo.listings[3].Views)
	}
}

func TestSyncAllWithoutCollaborators(t *testing.T) {
	var svc *ListingSyncService
	if updated, err := svc.SyncAll(context.Background()); err != nil || updated != 0 {
		t.Fatalf("nil service: updated=%d err=%v", updated, err)
	}

	svc = &ListingSyncService{Repo: newStubRepo()}
	if updated, err := svc.SyncAll(context.Background()); err != nil || updated != 0 {
		t.Fatalf("missing source: updated=%d err=%v", updated, err)
	}
}
