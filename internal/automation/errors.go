package automation

import "errors"

// Policy errors returned by the executor's guard chain. Handlers map each to
// a distinct response code.
var (
	ErrRuleNotFound   = errors.New("rule not found")
	ErrRuleDisabled   = errors.New("rule is not active")
	ErrEmergencyStop  = errors.New("emergency stop is enabled")
	ErrQuotaExceeded  = errors.New("daily execution limit reached")
	ErrCooldownActive = errors.New("rule is in cooldown")
)
