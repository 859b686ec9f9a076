package pricing

import "errors"

var (
	// ErrInvalidInput marks evaluator input that fails validation.
	ErrInvalidInput = errors.New("invalid pricing input")
	// ErrInvalidPrice marks a simulated or applied price of zero or less.
	ErrInvalidPrice = errors.New("price must be greater than zero")
	// ErrListingNotFound is returned when the target listing does not exist.
	ErrListingNotFound = errors.New("listing not found")
	// ErrRecommendationNotFound is returned when the target recommendation does not exist.
	ErrRecommendationNotFound = errors.New("recommendation not found")
	// ErrNotPending is returned when a decision targets an already-decided recommendation.
	ErrNotPending = errors.New("recommendation is not pending")
)
