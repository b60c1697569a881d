package core

import "context"

// Ports define interfaces for external dependencies

// ============================================
// AUTH BACKEND PORT (remote auth service)
// ============================================

// SessionEvent is a session change notification. Seq is assigned by the
// backend and increases monotonically; it is the ordering truth for
// last-write-wins, not wall-clock arrival.
type SessionEvent struct {
	Seq     uint64
	Session *Session // nil means signed out
}

// AuthBackend is the client-context surface of the remote auth service.
//
// Implementations must emit a SessionEvent for every session change,
// including changes caused by SignIn and SignOut, before those calls
// return. The backend retains token material internally; callers only
// ever see Session values.
type AuthBackend interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, input SignUpInput) (*SignUpResult, error)
	// SignOut is best-effort on the remote side; callers clear local
	// state regardless of the returned error.
	SignOut(ctx context.Context) error
	// GetSession returns the cached session snapshot, nil when signed out.
	GetSession(ctx context.Context) (*Session, error)
	// OnSessionChange registers a persistent listener for the life of
	// the process. There is no unsubscribe.
	OnSessionChange(fn func(SessionEvent))
}

// AuthHandler is the token-addressed surface consumed by HTTP adapters.
type AuthHandler interface {
	SignUp(ctx context.Context, input SignUpInput) (*AuthPayload, error)
	SignIn(ctx context.Context, email, password string) (*AuthPayload, error)
	SignOut(ctx context.Context, token string) error
	GetSession(ctx context.Context, token string) (*SessionData, error)
}

// ============================================
// STORAGE PORTS (Database operations)
// ============================================

// ProfileStorage defines profile-related database operations.
type ProfileStorage interface {
	// FetchProfile returns ErrProfileMissing when no row exists for the
	// user id; any other failure wraps ErrTransport.
	FetchProfile(ctx context.Context, userID string) (*Profile, error)
	CreateProfile(ctx context.Context, p *Profile) error
	UpdateProfile(ctx context.Context, userID string, changes ProfileChanges) error
}

// IdentityStorage defines credential-related database operations.
type IdentityStorage interface {
	CreateIdentity(ctx context.Context, ident *Identity) error
	GetIdentityByID(ctx context.Context, id string) (*Identity, error)
	GetIdentityByEmail(ctx context.Context, email string) (*Identity, error)
}

// SessionStorage defines session-record database operations.
type SessionStorage interface {
	CreateSession(ctx context.Context, rec *SessionRecord) error
	GetSessionByHash(ctx context.Context, tokenHash string) (*SessionRecord, error)
	DeleteSessionByHash(ctx context.Context, tokenHash string) error
	DeleteUserSessions(ctx context.Context, userID string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)
}

// BackendStorage is everything the reference backend persists through.
type BackendStorage interface {
	IdentityStorage
	SessionStorage
	ProfileStorage
}

// ============================================
// CACHE PORT
// ============================================

// Cache defines session-verification caching operations, keyed by token
// hash.
type Cache interface {
	Get(tokenHash string) (*SessionRecord, error)
	Set(tokenHash string, rec *SessionRecord) error
	Delete(tokenHash string) error
	Clear() error
}
