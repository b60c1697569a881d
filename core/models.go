package core

import "time"

// Session is proof of authentication issued by the auth backend.
//
// Raw credentials are never stored here - the backend retains the token
// material internally.
type Session struct {
	UserID    string    `json:"userId"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Profile is the application-level user record keyed by the same user id
// as the Session.
type Profile struct {
	ID        string    `json:"id"`
	Name      *string   `json:"name,omitempty"`
	Role      Role      `json:"role"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	DOB       string    `json:"dob,omitempty"` // YYYY-MM-DD
	AvatarURL *string   `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProfileChanges carries the editable subset of profile fields.
// Nil fields are left untouched. Role and ID are never client-editable.
type ProfileChanges struct {
	Name      *string `json:"name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
	DOB       *string `json:"dob,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

// Identity is the backend-side credential record.
//
// This is the "credential" - how someone proves who they are. The
// Profile is who they are to the rest of the system.
type Identity struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"` // Never expose in JSON
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// SessionRecord is the backend-side persisted session row.
type SessionRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	TokenHash string    `json:"-"` // Never expose in JSON (security!)
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SessionData combines session and profile info.
// The model returned to HTTP clients.
type SessionData struct {
	Session *Session `json:"session"`
	Profile *Profile `json:"profile"`
}

// SignUpInput is the registration request.
type SignUpInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
}

// SignUpResult is the registration outcome. When the backend requires
// email confirmation, Session is nil and PendingConfirmation is true -
// a distinct outcome, not a failure and not a live session.
type SignUpResult struct {
	Session             *Session `json:"session,omitempty"`
	PendingConfirmation bool     `json:"pendingConfirmation"`
}

// AuthPayload is the token-bearing result handed to HTTP clients on
// sign-up and sign-in.
type AuthPayload struct {
	Token               string   `json:"token,omitempty"`
	Session             *Session `json:"session,omitempty"`
	Profile             *Profile `json:"profile,omitempty"`
	PendingConfirmation bool     `json:"pendingConfirmation,omitempty"`
}
