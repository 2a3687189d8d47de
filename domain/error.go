package domain

import (
	"github.com/pkg/errors"
)

const (
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrCodeCapacityExceeded  = "CAPACITY_EXCEEDED"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

var (
	ErrStoreUnavailable = errors.New("shared store is unavailable")
)
