package pipeline

import (
	"errors"

	"rainball/etl/internal/config"
)

// Failure kinds per pipeline stage. Stage errors are wrapped with one of
// these sentinels so callers can match with errors.Is and decide whether
// a run outcome is fatal.
var (
	ErrCredentialUnavailable = config.ErrCredentialUnavailable
	ErrStoreUnreachable      = errors.New("match store unreachable")
	ErrStoreQueryFailed      = errors.New("match store query failed")
	ErrWeatherUnreachable    = errors.New("weather service unreachable")
	ErrWeatherMalformed      = errors.New("weather response malformed")
	ErrEmptyJoin             = errors.New("match-weather join produced no rows")
	ErrSinkPartialFailure    = errors.New("sink write partially failed")
)
