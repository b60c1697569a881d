package local

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/medgate/medgate/core"
	"github.com/medgate/medgate/pkg/cache"
)

func newBackend(t *testing.T, cfg Config) *Backend {
	t.Helper()
	cfg.Logger = zerolog.Nop()
	return New(NewMemoryStorage(), cfg)
}

func signUpDoctor(t *testing.T, b *Backend) *core.Session {
	t.Helper()
	result, err := b.SignUp(context.Background(), core.SignUpInput{
		Email:    "doc@example.com",
		Password: "SecurePass123!",
		Name:     "Dr. X",
		Role:     core.RoleDoctor,
	})
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	return result.Session
}

// Requirement: sign-up then sign-in round-trips through argon2 hashing
// and establishes a client-context session with a matching profile row.
func TestBackend_SignUpSignIn(t *testing.T) {
	b := newBackend(t, Config{})
	ctx := context.Background()

	session := signUpDoctor(t, b)
	if session == nil || session.UserID == "" {
		t.Fatalf("SignUp() session = %+v, want live session", session)
	}

	profile, err := b.storage.FetchProfile(ctx, session.UserID)
	if err != nil {
		t.Fatalf("FetchProfile() error = %v", err)
	}
	if profile.Role != core.RoleDoctor || profile.Name == nil || *profile.Name != "Dr. X" {
		t.Errorf("profile = %+v, want doctor Dr. X", profile)
	}

	if _, err := b.SignIn(ctx, "doc@example.com", "SecurePass123!"); err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if _, err := b.SignIn(ctx, "doc@example.com", "wrong"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Errorf("SignIn(wrong) error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := b.SignIn(ctx, "nobody@example.com", "pw"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Errorf("SignIn(unknown) error = %v, want ErrInvalidCredentials", err)
	}
}

// Requirement: duplicate registration and forbidden roles are rejected.
func TestBackend_SignUpValidation(t *testing.T) {
	b := newBackend(t, Config{})
	ctx := context.Background()
	signUpDoctor(t, b)

	_, err := b.SignUp(ctx, core.SignUpInput{Email: "doc@example.com", Password: "pw", Role: core.RolePatient})
	if !errors.Is(err, core.ErrIdentityExists) {
		t.Errorf("duplicate SignUp() error = %v, want ErrIdentityExists", err)
	}

	_, err = b.SignUp(ctx, core.SignUpInput{Email: "root@example.com", Password: "pw", Role: core.RoleAdmin})
	if !errors.Is(err, core.ErrRoleNotAllowed) {
		t.Errorf("admin SignUp() error = %v, want ErrRoleNotAllowed", err)
	}
}

// Requirement: with email confirmation enabled, sign-up yields the
// pending outcome without a session, and sign-in stays blocked until
// the address is verified.
func TestBackend_PendingConfirmation(t *testing.T) {
	b := newBackend(t, Config{RequireEmailConfirmation: true})
	ctx := context.Background()

	result, err := b.SignUp(ctx, core.SignUpInput{
		Email:    "pat@example.com",
		Password: "pw",
		Role:     core.RolePatient,
	})
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if !result.PendingConfirmation || result.Session != nil {
		t.Fatalf("SignUp() = %+v, want pending confirmation without session", result)
	}

	if _, err := b.SignIn(ctx, "pat@example.com", "pw"); !errors.Is(err, core.ErrEmailNotConfirmed) {
		t.Errorf("SignIn() error = %v, want ErrEmailNotConfirmed", err)
	}
}

// Requirement: session-change events carry strictly increasing
// sequences and are emitted for sign-in and sign-out alike.
func TestBackend_SessionEvents(t *testing.T) {
	b := newBackend(t, Config{})
	ctx := context.Background()

	var events []core.SessionEvent
	b.OnSessionChange(func(ev core.SessionEvent) {
		events = append(events, ev)
	})

	signUpDoctor(t, b)
	if err := b.SignOut(ctx); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Session == nil || events[1].Session != nil {
		t.Error("event payloads out of order: want session then nil")
	}
	if events[1].Seq <= events[0].Seq {
		t.Errorf("sequences not increasing: %d then %d", events[0].Seq, events[1].Seq)
	}

	// Sign-out with nothing signed in emits nothing and succeeds.
	if err := b.SignOut(ctx); err != nil {
		t.Fatalf("idempotent SignOut() error = %v", err)
	}
	if len(events) != 2 {
		t.Errorf("idempotent sign-out emitted an event")
	}
}

// Requirement: VerifySession resolves tokens through the cache, rejects
// garbage, and expires sessions past their max age.
func TestBackend_VerifySession(t *testing.T) {
	verification := cache.NewInMemoryCache(cache.Config{})
	b := newBackend(t, Config{Cache: verification, SessionMaxAge: 30 * time.Millisecond})
	ctx := context.Background()
	handler := NewHandler(b)

	if _, err := handler.SignUp(ctx, core.SignUpInput{
		Email:    "pat@example.com",
		Password: "pw",
		Role:     core.RolePatient,
	}); err != nil {
		t.Fatalf("handler.SignUp() error = %v", err)
	}

	payload, err := handler.SignIn(ctx, "pat@example.com", "pw")
	if err != nil {
		t.Fatalf("handler.SignIn() error = %v", err)
	}
	if payload.Token == "" {
		t.Fatal("handler.SignIn() returned no token")
	}

	data, err := b.VerifySession(ctx, payload.Token)
	if err != nil {
		t.Fatalf("VerifySession() error = %v", err)
	}
	if data.Profile == nil || data.Profile.Role != core.RolePatient {
		t.Errorf("VerifySession() profile = %+v, want patient", data.Profile)
	}
	if data.Session.UserID != data.Profile.ID {
		t.Error("session and profile ids diverge")
	}

	if _, err := b.VerifySession(ctx, "garbage-token"); !errors.Is(err, core.ErrSessionNotFound) {
		t.Errorf("VerifySession(garbage) error = %v, want ErrSessionNotFound", err)
	}
	if _, err := b.VerifySession(ctx, ""); !errors.Is(err, core.ErrInvalidToken) {
		t.Errorf("VerifySession(empty) error = %v, want ErrInvalidToken", err)
	}

	time.Sleep(60 * time.Millisecond)
	if _, err := b.VerifySession(ctx, payload.Token); !errors.Is(err, core.ErrSessionExpired) {
		t.Errorf("VerifySession(expired) error = %v, want ErrSessionExpired", err)
	}
}

// Requirement: revoking a token invalidates it; revoking twice is fine.
func TestBackend_RevokeToken(t *testing.T) {
	b := newBackend(t, Config{})
	ctx := context.Background()
	handler := NewHandler(b)

	if _, err := handler.SignUp(ctx, core.SignUpInput{
		Email:    "pat@example.com",
		Password: "pw",
		Role:     core.RolePatient,
	}); err != nil {
		t.Fatalf("handler.SignUp() error = %v", err)
	}
	payload, err := handler.SignIn(ctx, "pat@example.com", "pw")
	if err != nil {
		t.Fatalf("handler.SignIn() error = %v", err)
	}

	if err := handler.SignOut(ctx, payload.Token); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	if _, err := b.VerifySession(ctx, payload.Token); !errors.Is(err, core.ErrSessionNotFound) {
		t.Errorf("VerifySession(revoked) error = %v, want ErrSessionNotFound", err)
	}
	if err := handler.SignOut(ctx, payload.Token); err != nil {
		t.Errorf("second SignOut() error = %v, want nil", err)
	}
}
