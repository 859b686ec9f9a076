package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rakuda/internal/marketplace"
	"rakuda/internal/models"
	"rakuda/internal/pricing"
	"rakuda/internal/repository"
)

type ListingHandler struct {
	Repo repository.Repository
}

func (h *ListingHandler) Register(r *gin.Engine) {
	g := r.Group("/api/listings")
	g.GET("", h.list)
	g.GET("/:id", h.get)
}

var listingOrder = map[string]string{
	"listed_at":     "listed_at",
	"current_price": "current_price",
	"views":         "views",
	"watchers":      "watchers",
}

type listingView struct {
	models.Listing
	DaysListed       int     `json:"days_listed"`
	PerformanceScore float64 `json:"performance_score"`
}

func listingToView(listing models.Listing, now time.Time) listingView {
	metrics := marketplace.Metrics{
		DaysListed:   listing.DaysListed(now),
		Views:        listing.Views,
		Watchers:     listing.Watchers,
		CTR:          listing.CTR,
		CurrentPrice: listing.CurrentPrice,
		CostPrice:    listing.CostPrice,
	}
	return listingView{
		Listing:          listing,
		DaysListed:       metrics.DaysListed,
		PerformanceScore: pricing.PerformanceScore(metrics),
	}
}

// @Summary List listings
// @Tags listings
// @Param status query string false "active, paused or ended"
// @Success 200 {object} map[string]any
// @Router /api/listings [get]
func (h *ListingHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	params := repository.ListListingsParams{
		Limit:         intQuery(c, "limit", 50),
		Offset:        intQuery(c, "offset", 0),
		Status:        strQueryPtr(c, "status"),
		CategoryID:    strQueryPtr(c, "category_id"),
		MinDaysListed: intQueryPtr(c, "min_days_listed"),
		MaxViews:      intQueryPtr(c, "max_views"),
		Title:         strQueryPtr(c, "title"),
		OrderBy:       parseOrder(c.Query("order_by"), listingOrder),
		Asc:           boolQueryPtr(c, "asc"),
	}
	ctx := c.Request.Context()
	items, err := h.Repo.ListListings(ctx, params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountListings(ctx, params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	now := time.Now().UTC()
	views := make([]listingView, 0, len(items))
	for _, item := range items {
		views = append(views, listingToView(item, now))
	}
	Ok(c, views, paginationMeta(params.Limit, params.Offset, total))
}

func (h *ListingHandler) get(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	id := uint64PathParam(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	item, err := h.Repo.GetListingByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "listing not found", nil)
		return
	}
	Ok(c, listingToView(*item, time.Now().UTC()), nil)
}
