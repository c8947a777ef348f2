package alerts

import "errors"

var (
	ErrAlertNotFound     = errors.New("Alert not found")
	ErrTargetEqualsPrice = errors.New("Target price must differ from the current price")
	ErrInvalidTarget     = errors.New("Target price must be positive")
	ErrNoReferencePrice  = errors.New("Holding has no price to compare against yet")
)
