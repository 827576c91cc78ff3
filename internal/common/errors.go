// Package common defines shared constants and sentinel errors used across
// credline components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Local pre-flight validation failed; the request never left the device.
	ErrValidation = errors.New("validation failed")

	// Transport-level failure (timeout, DNS, connection reset). For writes
	// this triggers queueing; for reads it falls back to the cache.
	ErrConnectivity = errors.New("server unreachable")

	// Authoritative backend refusal. Never retried automatically.
	ErrServerRejected = errors.New("rejected by server")

	// A second uniqueness-constrained write was attempted while one is
	// already queued.
	ErrDuplicatePending = errors.New("a pending application already exists")

	// A detail read for a placeholder id was requested while offline.
	ErrNotAvailableOffline = errors.New("not available offline")
)

// ServerRejectedError carries the backend's rejection message verbatim.
// It matches ErrServerRejected under errors.Is.
type ServerRejectedError struct {
	Message string
}

func (e *ServerRejectedError) Error() string {
	if e.Message == "" {
		return ErrServerRejected.Error()
	}
	return e.Message
}

func (e *ServerRejectedError) Unwrap() error {
	return ErrServerRejected
}
