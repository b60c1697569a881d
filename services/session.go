package services

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/medgate/medgate/core"
)

// SessionStore is the single source of truth for "is someone logged in,
// and as whom". It subscribes once, for the lifetime of the process, to
// the backend's session-change notifications and applies them
// last-write-wins on the backend's event sequence - never merging.
type SessionStore struct {
	backend  core.AuthBackend
	profiles *ProfileResolver
	log      zerolog.Logger

	mu      sync.Mutex
	session *core.Session
	seq     uint64
	loading bool // true until the initial bootstrap resolves
}

func NewSessionStore(backend core.AuthBackend, profiles *ProfileResolver, log zerolog.Logger) *SessionStore {
	s := &SessionStore{
		backend:  backend,
		profiles: profiles,
		log:      log.With().Str("component", "sessions").Logger(),
		loading:  true,
	}
	backend.OnSessionChange(s.apply)
	return s
}

// Bootstrap resolves the startup session snapshot. A change event that
// already arrived wins over the snapshot.
func (s *SessionStore) Bootstrap(ctx context.Context) error {
	session, err := s.backend.GetSession(ctx)

	s.mu.Lock()
	alreadyApplied := s.seq > 0
	if !alreadyApplied && err == nil {
		s.session = session
	}
	s.loading = false
	s.mu.Unlock()

	if err != nil {
		s.log.Warn().Err(err).Msg("session bootstrap failed")
		return err
	}
	if !alreadyApplied {
		s.syncProfile(ctx, session)
	}
	return nil
}

// apply is the persistent session-change listener. Events may arrive at
// any time, duplicated, or out of order; whichever carries the highest
// sequence is authoritative.
func (s *SessionStore) apply(ev core.SessionEvent) {
	s.mu.Lock()
	if ev.Seq < s.seq {
		s.mu.Unlock()
		s.log.Debug().Uint64("seq", ev.Seq).Msg("dropping stale session event")
		return
	}
	s.seq = ev.Seq
	s.session = ev.Session
	s.loading = false
	s.mu.Unlock()

	s.syncProfile(context.Background(), ev.Session)
}

func (s *SessionStore) syncProfile(ctx context.Context, session *core.Session) {
	if session == nil {
		s.profiles.Clear()
		return
	}
	if err := s.profiles.Refresh(ctx, session.UserID); err != nil && !errors.Is(err, core.ErrProfileMissing) {
		s.log.Warn().Err(err).Str("user_id", session.UserID).Msg("profile refresh failed")
	}
}

// SignIn authenticates against the backend. On failure the prior
// session, if any, is left untouched. On success the backend emits the
// session-change event that establishes the new session.
func (s *SessionStore) SignIn(ctx context.Context, email, password string) error {
	if email == "" {
		return core.ErrEmailRequired
	}
	if password == "" {
		return core.ErrPasswordRequired
	}

	if _, err := s.backend.SignIn(ctx, email, password); err != nil {
		return classifyAuthErr(err)
	}
	return nil
}

// SignUp creates a remote identity. The role is restricted to patient or
// doctor; admin accounts are provisioned out-of-band. When the backend
// requires email confirmation the result says so explicitly instead of
// pretending a session exists.
func (s *SessionStore) SignUp(ctx context.Context, input core.SignUpInput) (*core.SignUpResult, error) {
	if input.Email == "" {
		return nil, core.ErrEmailRequired
	}
	if input.Password == "" {
		return nil, core.ErrPasswordRequired
	}
	if !input.Role.SignupAllowed() {
		return nil, core.ErrRoleNotAllowed
	}

	result, err := s.backend.SignUp(ctx, input)
	if err != nil {
		return nil, classifyAuthErr(err)
	}
	return result, nil
}

// SignOut clears the local session and profile unconditionally, even
// when the remote call fails - a user must never be stuck in an
// authenticated-looking state the backend no longer honors. Idempotent;
// the remote failure is logged, not returned.
func (s *SessionStore) SignOut(ctx context.Context) {
	if err := s.backend.SignOut(ctx); err != nil {
		s.log.Warn().Err(err).Msg("remote sign-out failed, clearing local state anyway")
	}

	s.mu.Lock()
	s.session = nil
	s.loading = false
	s.mu.Unlock()

	s.profiles.Clear()
}

// Current is a synchronous read of the cached session, nil when signed
// out.
func (s *SessionStore) Current() *core.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	session := *s.session
	return &session
}

// Loading reports whether the initial session bootstrap is still
// unresolved.
func (s *SessionStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// classifyAuthErr keeps the error taxonomy closed: anything the backend
// returns outside the known sentinels surfaces as ErrUnknown.
func classifyAuthErr(err error) error {
	switch {
	case errors.Is(err, core.ErrInvalidCredentials),
		errors.Is(err, core.ErrEmailNotConfirmed),
		errors.Is(err, core.ErrIdentityExists),
		errors.Is(err, core.ErrRoleNotAllowed),
		errors.Is(err, core.ErrNetwork),
		errors.Is(err, core.ErrEmailRequired),
		errors.Is(err, core.ErrPasswordRequired):
		return err
	default:
		return errors.Join(core.ErrUnknown, err)
	}
}
