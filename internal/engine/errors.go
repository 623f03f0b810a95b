package engine

import "errors"

var (
	ErrDistributionNotFound     = errors.New("distribution not found")
	ErrInvalidDistributionState = errors.New("distribution is not in a retryable state")
)
