package local

import (
	"context"

	"github.com/medgate/medgate/core"
)

// Handler adapts the backend to the token-addressed core.AuthHandler
// surface consumed by HTTP adapters. Unlike the client-context methods
// on Backend, these serve many users at once and never touch the
// backend's current-session state.
type Handler struct {
	backend *Backend
}

var _ core.AuthHandler = (*Handler)(nil)

func NewHandler(backend *Backend) *Handler {
	return &Handler{backend: backend}
}

func (h *Handler) SignUp(ctx context.Context, input core.SignUpInput) (*core.AuthPayload, error) {
	if err := h.backend.register(ctx, input); err != nil {
		return nil, err
	}
	if h.backend.requireConfirm {
		return &core.AuthPayload{PendingConfirmation: true}, nil
	}
	return h.SignIn(ctx, input.Email, input.Password)
}

func (h *Handler) SignIn(ctx context.Context, email, password string) (*core.AuthPayload, error) {
	session, token, err := h.backend.SignInSession(ctx, email, password)
	if err != nil {
		return nil, err
	}

	// A profile row may still be provisioning right after sign-up;
	// that is not a sign-in failure.
	profile, err := h.backend.storage.FetchProfile(ctx, session.UserID)
	if err != nil && err != core.ErrProfileMissing {
		return nil, err
	}

	return &core.AuthPayload{
		Token:   token,
		Session: session,
		Profile: profile,
	}, nil
}

func (h *Handler) SignOut(ctx context.Context, token string) error {
	return h.backend.RevokeToken(ctx, token)
}

func (h *Handler) GetSession(ctx context.Context, token string) (*core.SessionData, error) {
	return h.backend.VerifySession(ctx, token)
}
