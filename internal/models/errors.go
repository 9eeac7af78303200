package models

import "errors"

// Custom errors
var (
	ErrInvalidStep       = errors.New("invalid wizard step")
	ErrInvalidTotal      = errors.New("invalid total number of horses")
	ErrTooManyRunners    = errors.New("total number of horses exceeds the configured maximum")
	ErrInvalidConfidence = errors.New("invalid confidence percentage")
)
