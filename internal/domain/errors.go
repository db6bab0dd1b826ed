package domain

import "errors"

var (
	// ErrInvalidConfig is returned when a threshold or data file fails validation
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMalformedRecord is returned when a product, listing or rate line cannot be parsed
	ErrMalformedRecord = errors.New("malformed record")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
