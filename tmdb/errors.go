package tmdb

import (
	"errors"
	"fmt"
)

// ErrTMDB is the root of the error taxonomy; every error produced by this
// package matches it via errors.Is.
var ErrTMDB = errors.New("tmdb error")

// Sentinel errors returned by the client, transport and dispatcher.
var (
	// ErrRatelimitExceeded is returned when a request receives a 429 twice
	// in a row. The transport retries exactly once before giving up.
	ErrRatelimitExceeded = fmt.Errorf("%w: rate limited twice for one request", ErrTMDB)

	// ErrDecode is returned when a response body is empty or not valid JSON.
	ErrDecode = fmt.Errorf("%w: undecodable response body", ErrTMDB)

	// ErrUnknownMediaType is returned when a payload carries a missing or
	// unrecognized media_type discriminator.
	ErrUnknownMediaType = fmt.Errorf("%w: unknown media_type", ErrTMDB)

	// ErrNoData is returned when a detail fetch succeeds at the HTTP level
	// but carries no usable payload.
	ErrNoData = fmt.Errorf("%w: no data in response", ErrTMDB)

	// ErrValidation is returned when an entity payload is missing its
	// mandatory id field.
	ErrValidation = fmt.Errorf("%w: invalid entity payload", ErrTMDB)
)

// HTTPError represents a non-2xx, non-429 HTTP status. It is not retried.
type HTTPError struct {
	Status int
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("tmdb: request failed with status %d", e.Status)
}

// Unwrap ties HTTPError into the ErrTMDB taxonomy.
func (e *HTTPError) Unwrap() error {
	return ErrTMDB
}
