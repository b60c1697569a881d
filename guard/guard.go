// Package guard gates rendering of protected views. Each navigation
// attempt is evaluated fresh and resolves to exactly one terminal state.
package guard

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/medgate/medgate/core"
	"github.com/medgate/medgate/services"
)

// State is the outcome of a navigation attempt.
type State int

const (
	// StateLoading covers both session bootstrap and a pending profile
	// fetch; callers render a spinner, nothing else.
	StateLoading State = iota
	StateUnauthenticated
	StateForbidden
	StateAuthorized
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateForbidden:
		return "forbidden"
	case StateAuthorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Decision is a terminal guard outcome. RedirectTo is empty only for
// StateAuthorized.
type Decision struct {
	State      State
	RedirectTo string
}

const (
	DefaultLoginRoute    = "/auth/login"
	DefaultFallbackRoute = "/dashboard"
	DefaultProfileWait   = 5 * time.Second

	pollInterval = 10 * time.Millisecond
)

// Guard decides whether a protected view may render for the current
// session and profile.
type Guard struct {
	sessions *services.SessionStore
	profiles *services.ProfileResolver
	login    string
	fallback string
	wait     time.Duration
	log      zerolog.Logger
}

type Config struct {
	LoginRoute    string
	FallbackRoute string
	// ProfileWait bounds how long a navigation attempt waits for the
	// profile of a live session before giving up. On timeout, or when
	// the profile fetch failed outright, the guard resolves to
	// Unauthenticated - a deliberate policy choice pending product
	// sign-off, preferred over looping in Loading forever.
	ProfileWait time.Duration
	Logger      zerolog.Logger
}

func New(sessions *services.SessionStore, profiles *services.ProfileResolver, cfg Config) *Guard {
	if cfg.LoginRoute == "" {
		cfg.LoginRoute = DefaultLoginRoute
	}
	if cfg.FallbackRoute == "" {
		cfg.FallbackRoute = DefaultFallbackRoute
	}
	if cfg.ProfileWait == 0 {
		cfg.ProfileWait = DefaultProfileWait
	}
	return &Guard{
		sessions: sessions,
		profiles: profiles,
		login:    cfg.LoginRoute,
		fallback: cfg.FallbackRoute,
		wait:     cfg.ProfileWait,
		log:      cfg.Logger.With().Str("component", "guard").Logger(),
	}
}

// Evaluate resolves one navigation attempt against the allowed roles.
// An empty role list admits any authenticated user. The result is
// terminal for this attempt; the next navigation evaluates fresh.
func (g *Guard) Evaluate(ctx context.Context, allowed ...core.Role) Decision {
	deadline := time.Now().Add(g.wait)

	for {
		if !g.sessions.Loading() {
			session := g.sessions.Current()
			if session == nil {
				return g.decide(StateUnauthenticated, allowed)
			}

			if profile := g.profiles.Profile(); profile != nil && profile.ID == session.UserID {
				if roleAllowed(profile.Role, allowed) {
					return g.decide(StateAuthorized, allowed)
				}
				return g.decide(StateForbidden, allowed)
			}

			// Session exists but the profile has not resolved. A
			// missing row may still be provisioning, so it rides out
			// the bounded wait; any other terminal fetch failure
			// short-circuits it.
			if pending, err := g.profiles.Status(); !pending && err != nil && !errors.Is(err, core.ErrProfileMissing) {
				g.log.Warn().Err(err).Str("user_id", session.UserID).
					Msg("profile unavailable, treating as unauthenticated")
				return g.decide(StateUnauthenticated, allowed)
			}
		}

		if time.Now().After(deadline) {
			g.log.Warn().Msg("profile wait elapsed, treating as unauthenticated")
			return g.decide(StateUnauthenticated, allowed)
		}

		select {
		case <-ctx.Done():
			return g.decide(StateUnauthenticated, allowed)
		case <-time.After(pollInterval):
		}
	}
}

func (g *Guard) decide(state State, allowed []core.Role) Decision {
	switch state {
	case StateUnauthenticated:
		return Decision{State: state, RedirectTo: g.login}
	case StateForbidden:
		// The user is authenticated, just not permitted here - never
		// bounce them back to login.
		return Decision{State: state, RedirectTo: g.fallback}
	default:
		return Decision{State: state}
	}
}

// Check is the stateless variant used per-request by HTTP middleware,
// where session and profile were already resolved from a token.
func Check(session *core.Session, profile *core.Profile, allowed ...core.Role) State {
	if session == nil {
		return StateUnauthenticated
	}
	if profile == nil || profile.ID != session.UserID {
		return StateUnauthenticated
	}
	if roleAllowed(profile.Role, allowed) {
		return StateAuthorized
	}
	return StateForbidden
}

func roleAllowed(role core.Role, allowed []core.Role) bool {
	if len(allowed) == 0 {
		return role.Valid()
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
