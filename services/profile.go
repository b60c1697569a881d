package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/medgate/medgate/core"
)

// ProfileResolver keeps the Profile in sync with the active Session.
//
// The resolver owns the profile; everything else only reads it. A fetch
// result is applied only if it still belongs to the active user id -
// late results for a previous user are silently discarded.
type ProfileResolver struct {
	storage core.ProfileStorage
	log     zerolog.Logger

	mu      sync.Mutex
	profile *core.Profile
	active  string // user id the resolver is tracking; "" when signed out
	pending bool
	lastErr error // terminal fetch error for the active user
}

func NewProfileResolver(storage core.ProfileStorage, log zerolog.Logger) *ProfileResolver {
	return &ProfileResolver{
		storage: storage,
		log:     log.With().Str("component", "profiles").Logger(),
	}
}

// Refresh fetches the profile row for userID and makes it the tracked
// profile. Not-found is reported as ErrProfileMissing with the profile
// left nil - an expected transient state right after sign-up. Transport
// failures are recorded for the UI to observe; retries are never
// automatic.
func (r *ProfileResolver) Refresh(ctx context.Context, userID string) error {
	r.mu.Lock()
	r.active = userID
	r.pending = true
	r.lastErr = nil
	r.mu.Unlock()

	profile, err := r.storage.FetchProfile(ctx, userID)

	r.mu.Lock()
	defer r.mu.Unlock()

	// The active user changed while the fetch was in flight. This
	// result belongs to a view that no longer exists - drop it.
	if r.active != userID {
		r.log.Debug().Str("user_id", userID).Msg("discarding stale profile fetch")
		return nil
	}

	r.pending = false

	if err != nil {
		if errors.Is(err, core.ErrProfileMissing) {
			r.profile = nil
			r.lastErr = err
			r.log.Debug().Str("user_id", userID).Msg("profile not provisioned yet")
			return err
		}
		// Keep the previous consistent snapshot on transport failure.
		r.lastErr = err
		r.log.Warn().Err(err).Str("user_id", userID).Msg("profile fetch failed")
		return err
	}

	r.profile = profile
	return nil
}

// Update writes the given changes through storage and merges them into
// the in-memory profile only after the remote write confirms. Role and
// id are never client-guessed, so nothing is applied optimistically.
func (r *ProfileResolver) Update(ctx context.Context, changes core.ProfileChanges) error {
	r.mu.Lock()
	userID := r.active
	r.mu.Unlock()

	if userID == "" {
		return core.ErrUnauthenticated
	}

	if err := r.storage.UpdateProfile(ctx, userID, changes); err != nil {
		r.log.Warn().Err(err).Str("user_id", userID).Msg("profile update failed")
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != userID || r.profile == nil {
		return nil
	}
	merge(r.profile, changes)
	r.profile.UpdatedAt = time.Now()
	return nil
}

// Profile returns a copy of the current profile, nil when unresolved.
func (r *ProfileResolver) Profile() *core.Profile {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.profile == nil {
		return nil
	}
	p := *r.profile
	return &p
}

// Status reports whether a fetch is in flight and the terminal error of
// the last fetch for the active user, if any.
func (r *ProfileResolver) Status() (pending bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending, r.lastErr
}

// Clear drops the tracked profile. Called when the session goes away;
// any in-flight fetch result arriving afterwards is discarded.
func (r *ProfileResolver) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profile = nil
	r.active = ""
	r.pending = false
	r.lastErr = nil
}

func merge(p *core.Profile, c core.ProfileChanges) {
	if c.Name != nil {
		p.Name = c.Name
	}
	if c.Phone != nil {
		p.Phone = *c.Phone
	}
	if c.Address != nil {
		p.Address = *c.Address
	}
	if c.DOB != nil {
		p.DOB = *c.DOB
	}
	if c.AvatarURL != nil {
		p.AvatarURL = c.AvatarURL
	}
}
