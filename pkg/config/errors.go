package config

import "errors"

var (
	// ErrMissingStoreAddr is returned when no store address is configured.
	ErrMissingStoreAddr = errors.New("store address is required")

	// ErrInvalidFetchCount is returned when FetchCount is not positive.
	ErrInvalidFetchCount = errors.New("fetch count must be greater than 0")

	// ErrInvalidFetchLimit is returned when FetchLimit is not positive.
	ErrInvalidFetchLimit = errors.New("fetch limit must be greater than 0")

	// ErrInvalidIDCacheSize is returned when IDCacheSize is not positive.
	ErrInvalidIDCacheSize = errors.New("identity cache size must be greater than 0")

	// ErrInvalidABI is returned when ABI is not positive.
	ErrInvalidABI = errors.New("ABI must be greater than 0")
)
