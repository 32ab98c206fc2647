package errors

import (
	"errors"
	"fmt"
)

var (
	// Session errors
	ErrNoCurrentUser = errors.New("no current user")

	// Validation errors
	ErrInvalidCoordinates = errors.New("latitude must be between -90 and 90 and longitude between -180 and 180")
	ErrInvalidRange       = errors.New("range must be a finite, non-negative number of degrees")
	ErrInvalidMessage     = errors.New("invalid message")
	ErrSelfConversation   = errors.New("cannot open a conversation with yourself")
	ErrInvalidProfile     = errors.New("display name is required and fields must fit their limits")

	// Conversation errors
	ErrReadOnlyConversation = errors.New("conversation is read-only while anonymous")

	// Rate limit errors
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// Storage errors
	ErrNotFound = errors.New("not found")
)

// PersistenceError reports a failed location (or other) write.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// QueryError reports a failed proximity or profile lookup. It must never be
// treated as "nobody nearby".
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// GeolocationReason says why a device could not produce a reading.
type GeolocationReason string

const (
	GeolocationPermissionDenied    GeolocationReason = "permission_denied"
	GeolocationPositionUnavailable GeolocationReason = "position_unavailable"
	GeolocationTimeout             GeolocationReason = "timeout"
)

// Valid reports whether r is one of the known reasons.
func (r GeolocationReason) Valid() bool {
	switch r {
	case GeolocationPermissionDenied, GeolocationPositionUnavailable, GeolocationTimeout:
		return true
	}
	return false
}

// GeolocationError is returned when visibility cannot be enabled because the
// device did not supply a reading.
type GeolocationError struct {
	Reason GeolocationReason
}

func (e *GeolocationError) Error() string {
	switch e.Reason {
	case GeolocationPermissionDenied:
		return "location permission denied"
	case GeolocationTimeout:
		return "timed out waiting for a location fix"
	default:
		return "location unavailable"
	}
}

// IsPersistence reports whether err carries a *PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// IsQuery reports whether err carries a *QueryError.
func IsQuery(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}
