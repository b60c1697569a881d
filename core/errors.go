package core

import "errors"

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")    // 401 Unauthorized
	ErrEmailNotConfirmed  = errors.New("email address not confirmed")  // 403 Forbidden
	ErrIdentityExists     = errors.New("account already exists")       // 409 Conflict
	ErrIdentityNotFound   = errors.New("account not found")            // 404 Not Found
	ErrNetwork            = errors.New("auth backend unreachable")     // 502
	ErrUnknown            = errors.New("unknown authentication error") // 500
)

// Session errors
var (
	ErrMissingAuthHeader = errors.New("missing authorization header") // 401
	ErrInvalidToken      = errors.New("invalid session token")        // 401
	ErrSessionNotFound   = errors.New("session not found")            // 401
	ErrSessionExpired    = errors.New("session expired")              // 401
	ErrCacheNotFound     = errors.New("session not found in cache")
)

// Profile errors
var (
	// ErrProfileMissing is expected immediately after sign-up while the
	// profile row is still provisioning. Transient, not a hard failure.
	ErrProfileMissing = errors.New("profile not provisioned yet")

	// ErrTransport marks profile fetch/update failures. Retried only on
	// explicit user action, never automatically.
	ErrTransport = errors.New("profile transport failure")

	// ErrUnauthenticated is a caller contract violation: a profile
	// operation was attempted with no live session.
	ErrUnauthenticated = errors.New("no authenticated session")
)

// Validation errors (client input)
var (
	ErrEmailRequired    = errors.New("email is required")    // 400
	ErrPasswordRequired = errors.New("password is required") // 400
	ErrUnknownRole      = errors.New("unknown role")         // 400
	ErrRoleNotAllowed   = errors.New("role not allowed at sign-up")
)

// Config errors (wiring-time)
var (
	ErrBackendRequired        = errors.New("auth backend is required")
	ErrProfileStorageRequired = errors.New("profile storage is required")
)
