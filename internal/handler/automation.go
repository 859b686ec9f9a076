package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"rakuda/internal/automation"
	"rakuda/internal/models"
	"rakuda/internal/repository"
	"rakuda/internal/service"
)

type AutomationHandler struct {
	Repo     repository.Repository
	Executor *automation.Executor
	Safety   *service.SafetyService
}

func (h *AutomationHandler) Register(r *gin.Engine) {
	g := r.Group("/api/automation-rules")
	g.GET("/stats", h.stats)
	g.GET("/rules", h.listRules)
	g.POST("/rules", h.createRule)
	g.GET("/rules/:id", h.getRule)
	g.PUT("/rules/:id", h.updateRule)
	g.DELETE("/rules/:id", h.deleteRule)
	g.PATCH("/rules/:id/toggle", h.toggleRule)
	g.POST("/rules/:id/test", h.testRule)
	g.POST("/rules/:id/execute", h.executeRule)
	g.GET("/executions", h.listExecutions)
	g.GET("/executions/:id", h.getExecution)
	g.GET("/trigger-types", h.triggerTypes)
	g.GET("/action-types", h.actionTypes)
	g.GET("/operators", h.operators)
}

var ruleOrder = map[string]string{
	"priority":   "priority",
	"created_at": "created_at",
	"name":       "name",
}

var executionOrder = map[string]string{
	"started_at":  "started_at",
	"duration_ms": "duration_ms",
}

// @Summary Automation overview stats
// @Tags automation
// @Success 200 {object} map[string]any
// @Router /api/automation-rules/stats [get]
func (h *AutomationHandler) stats(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	stats, err := h.Repo.AutomationStats(c.Request.Context(), dayStart)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, stats, nil)
}

func (h *AutomationHandler) listRules(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	params := repository.ListAutomationRulesParams{
		Limit:    intQuery(c, "limit", 50),
		Offset:   intQuery(c, "offset", 0),
		IsActive: boolQueryPtr(c, "is_active"),
		Trigger:  strQueryPtr(c, "trigger"),
		Action:   strQueryPtr(c, "action"),
		OrderBy:  parseOrder(c.Query("order_by"), ruleOrder),
		Asc:      boolQueryPtr(c, "asc"),
	}
	ctx := c.Request.Context()
	items, err := h.Repo.ListAutomationRules(ctx, params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountAutomationRules(ctx, params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(params.Limit, params.Offset, total))
}

type ruleRequest struct {
	Name                 *string        `json:"name"`
	Description          *string        `json:"description"`
	Trigger              *string        `json:"trigger"`
	TriggerConfig        datatypes.JSON `json:"trigger_config"`
	Conditions           datatypes.JSON `json:"conditions"`
	ConditionLogic       *string        `json:"condition_logic"`
	Action               *string        `json:"action"`
	ActionConfig         datatypes.JSON `json:"action_config"`
	ScheduleType         *string        `json:"schedule_type"`
	CronExpression       *string        `json:"cron_expression"`
	RequiresConfirmation *bool          `json:"requires_confirmation"`
	MaxExecutionsPerDay  *int           `json:"max_executions_per_day"`
	CooldownMinutes      *int           `json:"cooldown_minutes"`
	Priority             *int           `json:"priority"`
}

// @Summary Create an automation rule
// @Tags automation
// @Success 200 {object} models.AutomationRule
// @Router /api/automation-rules/rules [post]
func (h *AutomationHandler) createRule(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	var req ruleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		Error(c, http.StatusBadRequest, "name is required", nil)
		return
	}
	if req.Trigger == nil || req.Action == nil {
		Error(c, http.StatusBadRequest, "trigger and action are required", nil)
		return
	}
	if req.Conditions != nil {
		if _, err := automation.ParseConditions(req.Conditions); err != nil {
			Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
	}

	// New rules always start inactive.
	item := &models.AutomationRule{
		Name:                strings.TrimSpace(*req.Name),
		Trigger:             *req.Trigger,
		TriggerConfig:       req.TriggerConfig,
		Conditions:          req.Conditions,
		ConditionLogic:      models.ConditionLogicAnd,
		Action:              *req.Action,
		ActionConfig:        req.ActionConfig,
		ScheduleType:        models.ScheduleManual,
		MaxExecutionsPerDay: 10,
		CooldownMinutes:     60,
		IsActive:            false,
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.ConditionLogic != nil {
		logic := strings.ToUpper(strings.TrimSpace(*req.ConditionLogic))
		if logic != models.ConditionLogicAnd && logic != models.ConditionLogicOr {
			Error(c, http.StatusBadRequest, "condition_logic must be AND or OR", nil)
			return
		}
		item.ConditionLogic = logic
	}
	if req.ScheduleType != nil {
		item.ScheduleType = strings.ToUpper(strings.TrimSpace(*req.ScheduleType))
	}
	if req.CronExpression != nil {
		item.CronExpression = strings.TrimSpace(*req.CronExpression)
	}
	if req.RequiresConfirmation != nil {
		item.RequiresConfirmation = *req.RequiresConfirmation
	}
	if req.MaxExecutionsPerDay != nil {
		item.MaxExecutionsPerDay = *req.MaxExecutionsPerDay
	}
	if req.CooldownMinutes != nil {
		item.CooldownMinutes = *req.CooldownMinutes
	}
	if req.Priority != nil {
		item.Priority = *req.Priority
	}
	if err := h.Repo.InsertAutomationRule(c.Request.Context(), item); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, item, nil)
}

func (h *AutomationHandler) getRule(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	id := uint64PathParam(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	item, err := h.Repo.GetAutomationRuleByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "rule not found", nil)
		return
	}
	Ok(c, item, nil)
}

func (h *AutomationHandler) updateRule(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	id := uint64PathParam(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	var req ruleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	ctx := c.Request.Context()
	item, err := h.Repo.GetAutomationRuleByID(ctx, id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "rule not found", nil)
		return
	}

	updates := map[string]any{}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Trigger != nil {
		updates["trigger"] = *req.Trigger
	}
	if req.TriggerConfig != nil {
		updates["trigger_config"] = req.TriggerConfig
	}
	if req.Conditions != nil {
		if _, err := automation.ParseConditions(req.Conditions); err != nil {
			Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		updates["conditions"] = req.Conditions
	}
	if req.ConditionLogic != nil {
		logic := strings.ToUpper(strings.TrimSpace(*req.ConditionLogic))
		if logic != models.ConditionLogicAnd && logic != models.ConditionLogicOr {
			Error(c, http.StatusBadRequest, "condition_logic must be AND or OR", nil)
			return
		}
		updates["condition_logic"] = logic
	}
	if req.Action != nil {
		updates["action"] = *req.Action
	}
	if req.ActionConfig != nil {
		updates["action_config"] = req.ActionConfig
	}
	if req.ScheduleType != nil {
		updates["schedule_type"] = strings.ToUpper(strings.TrimSpace(*req.ScheduleType))
	}
	if req.CronExpression != nil {
		updates["cron_expression"] = strings.TrimSpace(*req.CronExpression)
	}
	if req.RequiresConfirmation != nil {
		updates["requires_confirmation"] = *req.RequiresConfirmation
	}
	if req.MaxExecutionsPerDay != nil {
		updates["max_executions_per_day"] = *req.MaxExecutionsPerDay
	}
	if req.CooldownMinutes != nil {
		updates["cooldown_minutes"] = *req.CooldownMinutes
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if len(updates) == 0 {
		Ok(c, item, nil)
		return
	}
	if err := h.Repo.UpdateAutomationRule(ctx, id, updates); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	item, err = h.Repo.GetAutomationRuleByID(ctx, id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, item, nil)
}

func (h *AutomationHandler) deleteRule(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	id := uint64PathParam(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	ctx := c.Request.Context()
	item, err := h.Repo.GetAutomationRuleByID(ctx, id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "rule not found", nil)
		return
	}
	if err := h.Repo.DeleteAutomationRule(ctx, id); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, map[string]any{"id": id, "deleted": true}, nil)
}

// @Summary Toggle a rule's active flag
// @Tags automation
// @Success 200 {object} models.AutomationRule
// @Router /api/automation-rules/rules/{id}/toggle [patch]
func (h *AutomationHandler) toggleRule(c *gin.Context) {
	if h.Safety == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	id := uint64PathParam(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	rule, err := h.Safety.ToggleRule(c.Request.Context(), id)
	if err != nil {
		writeAutomationError(c, err)
		return
	}
	Ok(c, rule, nil)
}

func (h *AutomationHandler) testRule(c *gin.Context) {
	if h.Executor == nil {
		Error(c, http.StatusInternalServerError, "executor unavailable", nil)
		return
	}
	id := uint64PathParam(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	execution, err := h.Executor.Execute(c.Request.Context(), id, automation.Options{
		DryRun:      true,
		TriggeredBy: "api",
		Reason:      "manual test",
	})
	if err != nil {
		writeAutomationError(c, err)
		return
	}
	Ok(c, execution, nil)
}

type executeRequest struct {
	Force bool `json:"force"`
}

// @Summary Execute a rule now
// @Tags automation
// @Success 201 {object} models.AutomationExecution
// @Router /api/automation-rules/rules/{id}/execute [post]
func (h *AutomationHandler) executeRule(c *gin.Context) {
	if h.Executor == nil {
		Error(c, http.StatusInternalServerError, "executor unavailable", nil)
		return
	}
	id := uint64PathParam(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	var req executeRequest
	_ = c.ShouldBindJSON(&req)
	execution, err := h.Executor.Execute(c.Request.Context(), id, automation.Options{
		Force:       req.Force,
		TriggeredBy: "api",
		Reason:      "manual execution",
	})
	if err != nil {
		writeAutomationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, apiResponse{Code: 0, Message: "ok", Data: execution})
}

func (h *AutomationHandler) listExecutions(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	params := repository.ListExecutionsParams{
		Limit:   intQuery(c, "limit", 50),
		Offset:  intQuery(c, "offset", 0),
		RuleID:  uint64QueryPtr(c, "rule_id"),
		Status:  strQueryPtr(c, "status"),
		DryRun:  boolQueryPtr(c, "is_dry_run"),
		OrderBy: parseOrder(c.Query("order_by"), executionOrder),
		Asc:     boolQueryPtr(c, "asc"),
	}
	ctx := c.Request.Context()
	items, err := h.Repo.ListExecutions(ctx, params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountExecutions(ctx, params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(params.Limit, params.Offset, total))
}

func (h *AutomationHandler) getExecution(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	id := uint64PathParam(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	item, err := h.Repo.GetExecutionByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "execution not found", nil)
		return
	}
	Ok(c, item, nil)
}

func (h *AutomationHandler) triggerTypes(c *gin.Context) {
	Ok(c, []map[string]string{
		{"value": models.TriggerPriceDrop, "label": "Price drop"},
		{"value": models.TriggerStaleListing, "label": "Stale listing"},
		{"value": models.TriggerLowViews, "label": "Low views"},
		{"value": models.TriggerCompetitorCut, "label": "Competitor price cut"},
		{"value": models.TriggerSchedule, "label": "Schedule"},
	}, nil)
}

func (h *AutomationHandler) actionTypes(c *gin.Context) {
	Ok(c, []map[string]string{
		{"value": models.ActionAdjustPrice, "label": "Adjust price"},
		{"value": models.ActionPauseListing, "label": "Pause listing"},
		{"value": models.ActionEndListing, "label": "End listing"},
		{"value": models.ActionRelist, "label": "Relist"},
		{"value": models.ActionNotify, "label": "Notify"},
	}, nil)
}

func (h *AutomationHandler) operators(c *gin.Context) {
	Ok(c, automation.Operators, nil)
}

func writeAutomationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, automation.ErrRuleNotFound):
		Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, automation.ErrEmergencyStop):
		Error(c, http.StatusBadRequest, err.Error(), map[string]any{"code": "EMERGENCY_STOP"})
	case errors.Is(err, automation.ErrQuotaExceeded):
		Error(c, http.StatusBadRequest, err.Error(), map[string]any{"code": "QUOTA_EXCEEDED"})
	case errors.Is(err, automation.ErrCooldownActive):
		Error(c, http.StatusBadRequest, err.Error(), map[string]any{"code": "COOLDOWN_ACTIVE"})
	case errors.Is(err, automation.ErrRuleDisabled):
		Error(c, http.StatusBadRequest, err.Error(), map[string]any{"code": "RULE_DISABLED"})
	default:
		Error(c, http.StatusBadGateway, err.Error(), nil)
	}
}
