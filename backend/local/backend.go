// Package local is an in-process credential implementation of the
// core.AuthBackend port: argon2id password verification, opaque hashed
// session tokens, and sequence-numbered session-change events. It backs
// development wiring, tests, and the HTTP surface.
package local

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medgate/medgate/core"
	"github.com/medgate/medgate/pkg/crypto"
)

const defaultSessionMaxAge = 24 * time.Hour

// Config tunes the backend. Zero values get sane defaults.
type Config struct {
	SessionMaxAge time.Duration
	// RequireEmailConfirmation makes sign-up return the
	// pending-confirmation outcome instead of a live session.
	RequireEmailConfirmation bool
	Cache                    core.Cache // optional verification cache
	Passwords                crypto.PasswordHandler
	Logger                   zerolog.Logger
}

// Backend implements core.AuthBackend plus the token-addressed
// verification used by HTTP middleware.
type Backend struct {
	storage        core.BackendStorage
	passwords      crypto.PasswordHandler
	cache          core.Cache
	maxAge         time.Duration
	requireConfirm bool
	log            zerolog.Logger

	mu        sync.Mutex
	seq       uint64
	current   *core.Session
	tokenHash string // hash of the client-context session token
	listeners []func(core.SessionEvent)
}

var _ core.AuthBackend = (*Backend)(nil)

func New(storage core.BackendStorage, cfg Config) *Backend {
	if cfg.SessionMaxAge == 0 {
		cfg.SessionMaxAge = defaultSessionMaxAge
	}
	if cfg.Passwords == nil {
		cfg.Passwords = crypto.NewArgon2()
	}
	return &Backend{
		storage:        storage,
		passwords:      cfg.Passwords,
		cache:          cfg.Cache,
		maxAge:         cfg.SessionMaxAge,
		requireConfirm: cfg.RequireEmailConfirmation,
		log:            cfg.Logger.With().Str("component", "local-backend").Logger(),
	}
}

// OnSessionChange registers a persistent session-change listener.
func (b *Backend) OnSessionChange(fn func(core.SessionEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// SignIn authenticates the client context and establishes its session.
// The session-change event is emitted before SignIn returns.
func (b *Backend) SignIn(ctx context.Context, email, password string) (*core.Session, error) {
	ident, err := b.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	session, token, err := b.createSession(ctx, ident.ID)
	if err != nil {
		return nil, err
	}

	b.establish(session, token)
	return session, nil
}

// SignUp registers an identity and its profile row. With email
// confirmation enabled no session is created - the caller sees a
// distinct pending outcome.
func (b *Backend) SignUp(ctx context.Context, input core.SignUpInput) (*core.SignUpResult, error) {
	if err := b.register(ctx, input); err != nil {
		return nil, err
	}
	if b.requireConfirm {
		return &core.SignUpResult{PendingConfirmation: true}, nil
	}

	session, token, err := b.SignInSession(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}
	b.establish(session, token)
	return &core.SignUpResult{Session: session}, nil
}

// SignOut tears down the client-context session. Idempotent; the local
// signed-out event is emitted even when the record delete fails.
func (b *Backend) SignOut(ctx context.Context) error {
	b.mu.Lock()
	hash := b.tokenHash
	active := b.current != nil
	b.mu.Unlock()

	if !active {
		return nil
	}

	var err error
	if hash != "" {
		if b.cache != nil {
			_ = b.cache.Delete(hash)
		}
		err = b.storage.DeleteSessionByHash(ctx, hash)
		if err != nil {
			b.log.Warn().Err(err).Msg("session record delete failed")
		}
	}

	b.establish(nil, "")
	return err
}

// GetSession returns the client-context session snapshot, nil when
// signed out.
func (b *Backend) GetSession(_ context.Context) (*core.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return nil, nil
	}
	session := *b.current
	return &session, nil
}

// SignInSession authenticates credentials and creates a session record
// without touching the client-context state. Used by the HTTP handler,
// where many users share one backend.
func (b *Backend) SignInSession(ctx context.Context, email, password string) (*core.Session, string, error) {
	ident, err := b.authenticate(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	session, token, err := b.createSession(ctx, ident.ID)
	if err != nil {
		return nil, "", err
	}
	return session, token, nil
}

// VerifySession resolves a presented token to its session and profile.
func (b *Backend) VerifySession(ctx context.Context, token string) (*core.SessionData, error) {
	if token == "" {
		return nil, core.ErrInvalidToken
	}
	hash := crypto.HashToken(token)

	var rec *core.SessionRecord
	if b.cache != nil {
		if cached, err := b.cache.Get(hash); err == nil {
			rec = cached
		}
	}
	if rec == nil {
		stored, err := b.storage.GetSessionByHash(ctx, hash)
		if err != nil {
			return nil, core.ErrSessionNotFound
		}
		rec = stored
		if b.cache != nil {
			_ = b.cache.Set(hash, rec)
		}
	}

	if time.Now().After(rec.ExpiresAt) {
		if b.cache != nil {
			_ = b.cache.Delete(hash)
		}
		_ = b.storage.DeleteSessionByHash(ctx, hash)
		return nil, core.ErrSessionExpired
	}

	profile, err := b.storage.FetchProfile(ctx, rec.UserID)
	if err != nil {
		return nil, err
	}

	return &core.SessionData{
		Session: &core.Session{
			UserID:    rec.UserID,
			IssuedAt:  rec.CreatedAt,
			ExpiresAt: rec.ExpiresAt,
		},
		Profile: profile,
	}, nil
}

// RevokeToken deletes the session record for a presented token.
// Idempotent: revoking an unknown token succeeds.
func (b *Backend) RevokeToken(ctx context.Context, token string) error {
	hash := crypto.HashToken(token)
	if b.cache != nil {
		_ = b.cache.Delete(hash)
	}
	if err := b.storage.DeleteSessionByHash(ctx, hash); err != nil && err != core.ErrSessionNotFound {
		return err
	}
	return nil
}

func (b *Backend) authenticate(ctx context.Context, email, password string) (*core.Identity, error) {
	ident, err := b.storage.GetIdentityByEmail(ctx, email)
	if err != nil {
		if err == core.ErrIdentityNotFound {
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", core.ErrNetwork, err)
	}

	valid, err := b.passwords.Verify(password, ident.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, core.ErrInvalidCredentials
	}

	if b.requireConfirm && !ident.EmailVerified {
		return nil, core.ErrEmailNotConfirmed
	}
	return ident, nil
}

func (b *Backend) register(ctx context.Context, input core.SignUpInput) error {
	if input.Email == "" {
		return core.ErrEmailRequired
	}
	if input.Password == "" {
		return core.ErrPasswordRequired
	}
	if !input.Role.SignupAllowed() {
		return core.ErrRoleNotAllowed
	}

	hash, err := b.passwords.Hash(input.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	ident := &core.Identity{
		ID:            uuid.NewString(),
		Email:         input.Email,
		PasswordHash:  hash,
		EmailVerified: !b.requireConfirm,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := b.storage.CreateIdentity(ctx, ident); err != nil {
		return err
	}

	profile := &core.Profile{
		ID:        ident.ID,
		Role:      input.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.Name != "" {
		name := input.Name
		profile.Name = &name
	}
	if err := b.storage.CreateProfile(ctx, profile); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	b.log.Info().Str("user_id", ident.ID).Str("role", string(input.Role)).Msg("identity registered")
	return nil
}

func (b *Backend) createSession(ctx context.Context, userID string) (*core.Session, string, error) {
	pair, err := crypto.GenerateHashedToken(crypto.DefaultTokenLength)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now()
	rec := &core.SessionRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: pair.Hash,
		ExpiresAt: now.Add(b.maxAge),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := b.storage.CreateSession(ctx, rec); err != nil {
		return nil, "", fmt.Errorf("failed to create session: %w", err)
	}
	if b.cache != nil {
		// Caching failures never fail the sign-in.
		_ = b.cache.Set(pair.Hash, rec)
	}

	session := &core.Session{
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: rec.ExpiresAt,
	}
	return session, pair.Token, nil
}

// establish replaces the client-context session and fans the change out
// to listeners with the next sequence number.
func (b *Backend) establish(session *core.Session, token string) {
	b.mu.Lock()
	b.seq++
	seq := b.seq
	b.current = session
	if token == "" {
		b.tokenHash = ""
	} else {
		b.tokenHash = crypto.HashToken(token)
	}
	listeners := append([]func(core.SessionEvent){}, b.listeners...)
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(core.SessionEvent{Seq: seq, Session: session})
	}
}
