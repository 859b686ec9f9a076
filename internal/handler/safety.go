package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"rakuda/internal/service"
)

type SafetyHandler struct {
	Safety *service.SafetyService
}

func (h *SafetyHandler) Register(r *gin.Engine) {
	g := r.Group("/api/automation-rules")
	g.GET("/safety-settings", h.get)
	g.PUT("/safety-settings", h.update)
	g.POST("/emergency-stop", h.emergencyStop)
}

func (h *SafetyHandler) get(c *gin.Context) {
	if h.Safety == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	settings, err := h.Safety.Get(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, settings, nil)
}

type updateSafetyRequest struct {
	MaxConcurrentExecutions *int           `json:"max_concurrent_executions"`
	MaxDailyExecutions      *int           `json:"max_daily_executions"`
	RequireApprovalAbove    *string        `json:"require_approval_above"`
	ExcludedCategories      datatypes.JSON `json:"excluded_categories"`
}

func (h *SafetyHandler) update(c *gin.Context) {
	if h.Safety == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var req updateSafetyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	params := service.UpdateSafetyParams{
		MaxConcurrentExecutions: req.MaxConcurrentExecutions,
		MaxDailyExecutions:      req.MaxDailyExecutions,
		ExcludedCategories:      req.ExcludedCategories,
	}
	if req.RequireApprovalAbove != nil {
		v, err := decimal.NewFromString(strings.TrimSpace(*req.RequireApprovalAbove))
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid require_approval_above", nil)
			return
		}
		params.RequireApprovalAbove = &v
	}
	settings, err := h.Safety.Update(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, settings, nil)
}

type emergencyStopRequest struct {
	Enable *bool `json:"enable"`
}

// @Summary Toggle the emergency stop
// @Tags automation
// @Success 200 {object} map[string]any
// @Router /api/automation-rules/emergency-stop [post]
func (h *SafetyHandler) emergencyStop(c *gin.Context) {
	if h.Safety == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var req emergencyStopRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Enable == nil {
		Error(c, http.StatusBadRequest, "enable is required", nil)
		return
	}
	settings, deactivated, err := h.Safety.SetEmergencyStop(c.Request.Context(), *req.Enable)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, map[string]any{
		"settings":          settings,
		"rules_deactivated": deactivated,
	}, nil)
}
