// Package common defines shared constants and sentinel errors used across
// the backup subsystem. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Storage errors.
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrPermissionRevoked  = errors.New("storage permission revoked")
	ErrNotFound           = errors.New("not found")

	// Payload errors.
	ErrMalformedData = errors.New("malformed data")

	// Remote auth errors.
	ErrAuthFailed   = errors.New("authentication failed")
	ErrTokenExpired = errors.New("token expired")

	// Transient remote failures (rate limiting, server-side 5xx).
	// Retried inside the remote client; surfaced only after retries
	// are exhausted.
	ErrTransient = errors.New("transient remote failure")
)
