package automation

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"rakuda/internal/models"
)

// Condition operators accepted in rule definitions.
var Operators = []string{"eq", "neq", "gt", "gte", "lt", "lte", "contains"}

// ParseConditions decodes the rule's conditions JSON. An empty blob means no
// conditions, which matches every listing.
func ParseConditions(raw datatypes.JSON) ([]models.RuleCondition, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var conditions []models.RuleCondition
	if err := json.Unmarshal(raw, &conditions); err != nil {
		return nil, fmt.Errorf("decode conditions: %w", err)
	}
	return conditions, nil
}

// MatchListing reports whether the listing passes the rule's conditions
// combined with its AND/OR logic.
func MatchListing(listing models.Listing, conditions []models.RuleCondition, logic string, now time.Time) (bool, error) {
	if len(conditions) == 0 {
		return true, nil
	}
	anyMatched := false
	for _, cond := range conditions {
		matched, err := matchCondition(listing, cond, now)
		if err != nil {
			return false, err
		}
		if matched {
			anyMatched = true
			continue
		}
		if logic != models.ConditionLogicOr {
			return false, nil
		}
	}
	if logic == models.ConditionLogicOr {
		return anyMatched, nil
	}
	return true, nil
}

func matchCondition(listing models.Listing, cond models.RuleCondition, now time.Time) (bool, error) {
	field := strings.ToLower(strings.TrimSpace(cond.Field))
	op := strings.ToLower(strings.TrimSpace(cond.Operator))

	switch field {
	case "days_listed":
		return compareNumeric(decimal.NewFromInt(int64(listing.DaysListed(now))), op, cond.Value)
	case "views":
		return compareNumeric(decimal.NewFromInt(int64(listing.Views)), op, cond.Value)
	case "watchers":
		return compareNumeric(decimal.NewFromInt(int64(listing.Watchers)), op, cond.Value)
	case "ctr":
		return compareNumeric(decimal.NewFromFloat(listing.CTR), op, cond.Value)
	case "current_price":
		return compareNumeric(listing.CurrentPrice, op, cond.Value)
	case "cost_price":
		return compareNumeric(listing.CostPrice, op, cond.Value)
	case "category_id":
		return compareString(listing.CategoryID, op, cond.Value)
	case "status":
		return compareString(listing.Status, op, cond.Value)
	case "title":
		return compareString(listing.Title, op, cond.Value)
	default:
		return false, fmt.Errorf("unknown condition field %q", cond.Field)
	}
}

func compareNumeric(actual decimal.Decimal, op string, raw any) (bool, error) {
	expected, err := toDecimal(raw)
	if err != nil {
		return false, err
	}
	switch op {
	case "eq":
		return actual.Equal(expected), nil
	case "neq":
		return !actual.Equal(expected), nil
	case "gt":
		return actual.GreaterThan(expected), nil
	case "gte":
		return actual.GreaterThanOrEqual(expected), nil
	case "lt":
		return actual.LessThan(expected), nil
	case "lte":
		return actual.LessThanOrEqual(expected), nil
	default:
		return false, fmt.Errorf("operator %q not valid for numeric field", op)
	}
}

func compareString(actual, op string, raw any) (bool, error) {
	expected := fmt.Sprintf("%v", raw)
	switch op {
	case "eq":
		return actual == expected, nil
	case "neq":
		return actual != expected, nil
	case "contains":
		return strings.Contains(strings.ToLower(actual), strings.ToLower(expected)), nil
	default:
		return false, fmt.Errorf("operator %q not valid for string field", op)
	}
}

func toDecimal(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		return decimal.NewFromString(v)
	case decimal.Decimal:
		return v, nil
	default:
		return decimal.Zero, fmt.Errorf("condition value %v is not numeric", raw)
	}
}
