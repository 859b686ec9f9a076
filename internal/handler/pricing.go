package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"rakuda/internal/models"
	"rakuda/internal/notify"
	"rakuda/internal/pricing"
	"rakuda/internal/repository"
)

type PricingHandler struct {
	Repo      repository.Repository
	Generator *pricing.Generator
	Applier   *pricing.Applier
	Hub       *notify.Hub
}

func (h *PricingHandler) Register(r *gin.Engine) {
	g := r.Group("/api/pricing")
	g.GET("/recommendations", h.listRecommendations)
	g.POST("/recommendations/generate", h.generate)
	g.POST("/recommendations/:id/approve", h.approve)
	g.POST("/recommendations/:id/reject", h.reject)
	g.POST("/recommendations/bulk-approve", h.bulkApprove)
	g.POST("/simulate", h.simulate)
	g.GET("/history/:listingID", h.history)
	g.GET("/stats", h.stats)
}

var recommendationOrder = map[string]string{
	"created_at":        "created_at",
	"recommended_price": "recommended_price",
	"reason_code":       "reason_code",
}

// @Summary List price recommendations
// @Tags pricing
// @Param status query string false "PENDING, APPROVED or REJECTED"
// @Param reason_code query string false "reason code filter"
// @Success 200 {object} map[string]any
// @Router /api/pricing/recommendations [get]
func (h *PricingHandler) listRecommendations(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	params := repository.ListRecommendationsParams{
		Limit:      intQuery(c, "limit", 50),
		Offset:     intQuery(c, "offset", 0),
		Status:     strQueryPtr(c, "status"),
		ReasonCode: strQueryPtr(c, "reason_code"),
		ListingID:  uint64QueryPtr(c, "listing_id"),
		OrderBy:    parseOrder(c.Query("order_by"), recommendationOrder),
		Asc:        boolQueryPtr(c, "asc"),
	}
	ctx := c.Request.Context()
	items, err := h.Repo.ListRecommendations(ctx, params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountRecommendations(ctx, params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	meta := paginationMeta(params.Limit, params.Offset, total)
	if params.Status == nil || *params.Status == models.RecommendationPending {
		stats, err := h.Repo.PendingRecommendationStats(ctx)
		if err != nil {
			Error(c, http.StatusBadGateway, err.Error(), nil)
			return
		}
		meta["pending_total"] = stats.Total
		meta["total_potential_savings"] = stats.TotalPotentialSaving
		meta["by_reason"] = stats.ByReason
	}
	Ok(c, items, meta)
}

// @Summary Regenerate pending recommendations
// @Tags pricing
// @Success 200 {object} map[string]any
// @Router /api/pricing/recommendations/generate [post]
func (h *PricingHandler) generate(c *gin.Context) {
	if h.Generator == nil {
		Error(c, http.StatusInternalServerError, "generator unavailable", nil)
		return
	}
	written, err := h.Generator.GenerateAll(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if h.Hub != nil {
		h.Hub.Publish("pricing.generated", map[string]any{"written": written})
	}
	Ok(c, map[string]any{"generated": written}, nil)
}

type approveRequest struct {
	NewPrice *string `json:"new_price"`
}

func (h *PricingHandler) approve(c *gin.Context) {
	if h.Applier == nil {
		Error(c, http.StatusInternalServerError, "applier unavailable", nil)
		return
	}
	id := uint64PathParam(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	// Empty body is allowed: approve at the recommended price.
	var req approveRequest
	_ = c.ShouldBindJSON(&req)
	var newPrice *decimal.Decimal
	if req.NewPrice != nil {
		v, err := decimal.NewFromString(strings.TrimSpace(*req.NewPrice))
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid new_price", nil)
			return
		}
		newPrice = &v
	}
	rec, err := h.Applier.Approve(c.Request.Context(), id, newPrice, "api")
	if err != nil {
		writePricingError(c, err)
		return
	}
	Ok(c, rec, nil)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *PricingHandler) reject(c *gin.Context) {
	if h.Applier == nil {
		Error(c, http.StatusInternalServerError, "applier unavailable", nil)
		return
	}
	id := uint64PathParam(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	var req rejectRequest
	_ = c.ShouldBindJSON(&req)
	if err := h.Applier.Reject(c.Request.Context(), id, req.Reason, "api"); err != nil {
		writePricingError(c, err)
		return
	}
	Ok(c, map[string]any{"id": id, "status": models.RecommendationRejected}, nil)
}

type bulkApproveItem struct {
	ID       uint64  `json:"id"`
	NewPrice *string `json:"new_price"`
}

type bulkApproveRequest struct {
	Recommendations []bulkApproveItem `json:"recommendations"`
}

// @Summary Approve a batch of recommendations
// @Tags pricing
// @Success 200 {object} map[string]any
// @Router /api/pricing/recommendations/bulk-approve [post]
func (h *PricingHandler) bulkApprove(c *gin.Context) {
	if h.Applier == nil {
		Error(c, http.StatusInternalServerError, "applier unavailable", nil)
		return
	}
	var req bulkApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	if len(req.Recommendations) == 0 {
		Error(c, http.StatusBadRequest, "recommendations is empty", nil)
		return
	}
	items := make([]pricing.ApplyItem, 0, len(req.Recommendations))
	for _, entry := range req.Recommendations {
		item := pricing.ApplyItem{RecommendationID: entry.ID}
		if entry.NewPrice != nil {
			v, err := decimal.NewFromString(strings.TrimSpace(*entry.NewPrice))
			if err != nil {
				Error(c, http.StatusBadRequest, "invalid new_price", nil)
				return
			}
			item.NewPrice = &v
		}
		items = append(items, item)
	}
	summary := h.Applier.ApplyBatch(c.Request.Context(), items, "api")
	Ok(c, summary, nil)
}

type simulateRequest struct {
	ListingID uint64 `json:"listing_id"`
	NewPrice  string `json:"new_price"`
}

// @Summary Simulate a price change
// @Tags pricing
// @Success 200 {object} pricing.Simulation
// @Router /api/pricing/simulate [post]
func (h *PricingHandler) simulate(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	var req simulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	newPrice, err := decimal.NewFromString(strings.TrimSpace(req.NewPrice))
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid new_price", nil)
		return
	}
	listing, err := h.Repo.GetListingByID(c.Request.Context(), req.ListingID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if listing == nil {
		Error(c, http.StatusNotFound, "listing not found", nil)
		return
	}
	sim, err := pricing.Simulate(listing.ID, listing.CurrentPrice, listing.CostPrice, newPrice)
	if err != nil {
		writePricingError(c, err)
		return
	}
	Ok(c, sim, nil)
}

func (h *PricingHandler) history(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	listingID := uint64PathParam(c, "listingID")
	if listingID == 0 {
		Error(c, http.StatusBadRequest, "invalid listing id", nil)
		return
	}
	params := repository.ListPriceChangeLogsParams{
		Limit:     intQuery(c, "limit", 50),
		Offset:    intQuery(c, "offset", 0),
		ListingID: &listingID,
	}
	ctx := c.Request.Context()
	items, err := h.Repo.ListPriceChangeLogs(ctx, params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountPriceChangeLogs(ctx, params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(params.Limit, params.Offset, total))
}

func (h *PricingHandler) stats(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	ctx := c.Request.Context()
	pendingStats, err := h.Repo.PendingRecommendationStats(ctx)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	out := map[string]any{
		"pending":                 pendingStats.Total,
		"total_potential_savings": pendingStats.TotalPotentialSaving,
		"by_reason":               pendingStats.ByReason,
	}
	for _, status := range []string{models.RecommendationApproved, models.RecommendationRejected} {
		st := status
		count, err := h.Repo.CountRecommendations(ctx, repository.ListRecommendationsParams{Status: &st})
		if err != nil {
			Error(c, http.StatusBadGateway, err.Error(), nil)
			return
		}
		out[strings.ToLower(status)] = count
	}
	changes, err := h.Repo.CountPriceChangeLogs(ctx, repository.ListPriceChangeLogsParams{})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	out["price_changes"] = changes
	Ok(c, out, nil)
}

func writePricingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pricing.ErrRecommendationNotFound), errors.Is(err, pricing.ErrListingNotFound):
		Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, pricing.ErrNotPending):
		Error(c, http.StatusBadRequest, err.Error(), map[string]any{"code": "NOT_PENDING"})
	case errors.Is(err, pricing.ErrInvalidPrice), errors.Is(err, pricing.ErrInvalidInput):
		Error(c, http.StatusBadRequest, err.Error(), nil)
	default:
		Error(c, http.StatusBadGateway, err.Error(), nil)
	}
}
