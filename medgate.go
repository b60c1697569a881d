// Package medgate is the client-side auth, session and access-control
// core of the MedGate patient portal. It wires the session store,
// profile resolver, permission table and route guard behind one
// constructor; callers bring an AuthBackend and a ProfileStorage.
package medgate

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/medgate/medgate/core"
	"github.com/medgate/medgate/guard"
	"github.com/medgate/medgate/pkg/cache"
	"github.com/medgate/medgate/pkg/crypto"
	"github.com/medgate/medgate/rbac"
	"github.com/medgate/medgate/services"
)

// interfaces
type (
	AuthBackend    = core.AuthBackend
	AuthHandler    = core.AuthHandler
	ProfileStorage = core.ProfileStorage
	BackendStorage = core.BackendStorage
	Cache          = core.Cache

	PasswordHandler = crypto.PasswordHandler
)

// structs
type (
	Session        = core.Session
	SessionEvent   = core.SessionEvent
	SessionData    = core.SessionData
	Profile        = core.Profile
	ProfileChanges = core.ProfileChanges
	SignUpInput    = core.SignUpInput
	SignUpResult   = core.SignUpResult
	AuthPayload    = core.AuthPayload

	Role     = core.Role
	NavItem  = rbac.NavItem
	Table    = rbac.Table
	Decision = guard.Decision

	CacheConfig = cache.Config
	CacheStats  = cache.Stats
)

const (
	RolePatient = core.RolePatient
	RoleDoctor  = core.RoleDoctor
	RoleAdmin   = core.RoleAdmin
)

// Constructors & helpers (convenience re-exports)
var (
	NewInMemoryCache = cache.NewInMemoryCache
	NewArgon2        = crypto.NewArgon2
	DefaultTable     = rbac.DefaultTable
	DefaultNavItems  = rbac.DefaultNavItems
	ParseRole        = core.ParseRole
)

var (
	ErrInvalidCredentials = core.ErrInvalidCredentials
	ErrEmailNotConfirmed  = core.ErrEmailNotConfirmed
	ErrIdentityExists     = core.ErrIdentityExists
	ErrIdentityNotFound   = core.ErrIdentityNotFound
	ErrNetwork            = core.ErrNetwork
	ErrUnknown            = core.ErrUnknown
)

var (
	ErrMissingAuthHeader = core.ErrMissingAuthHeader
	ErrInvalidToken      = core.ErrInvalidToken
	ErrSessionNotFound   = core.ErrSessionNotFound
	ErrSessionExpired    = core.ErrSessionExpired
	ErrCacheNotFound     = core.ErrCacheNotFound
)

var (
	ErrProfileMissing  = core.ErrProfileMissing
	ErrTransport       = core.ErrTransport
	ErrUnauthenticated = core.ErrUnauthenticated
)

var (
	ErrEmailRequired    = core.ErrEmailRequired
	ErrPasswordRequired = core.ErrPasswordRequired
	ErrUnknownRole      = core.ErrUnknownRole
	ErrRoleNotAllowed   = core.ErrRoleNotAllowed
)

var (
	ErrBackendRequired        = core.ErrBackendRequired
	ErrProfileStorageRequired = core.ErrProfileStorageRequired
)

// Config wires a portal core. Backend and Profiles are required;
// everything else has a sensible default.
type Config struct {
	Backend  core.AuthBackend
	Profiles core.ProfileStorage

	Table rbac.Table
	Nav   []rbac.NavItem

	LoginRoute    string
	FallbackRoute string
	// ProfileWait bounds how long the guard waits for a profile before
	// treating the navigation as unauthenticated.
	ProfileWait time.Duration

	Logger zerolog.Logger
}

// Medgate holds the assembled client-side core.
type Medgate struct {
	Sessions *services.SessionStore
	Profiles *services.ProfileResolver
	Guard    *guard.Guard
	Table    rbac.Table
	Nav      []rbac.NavItem
}

func New(config Config) (*Medgate, error) {
	if config.Backend == nil {
		return nil, ErrBackendRequired
	}
	if config.Profiles == nil {
		return nil, ErrProfileStorageRequired
	}

	// Set Defaults

	table := config.Table
	if table == nil {
		table = rbac.DefaultTable()
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}

	nav := config.Nav
	if nav == nil {
		nav = rbac.DefaultNavItems()
	}

	profiles := services.NewProfileResolver(config.Profiles, config.Logger)
	sessions := services.NewSessionStore(config.Backend, profiles, config.Logger)
	routeGuard := guard.New(sessions, profiles, guard.Config{
		LoginRoute:    config.LoginRoute,
		FallbackRoute: config.FallbackRoute,
		ProfileWait:   config.ProfileWait,
		Logger:        config.Logger,
	})

	return &Medgate{
		Sessions: sessions,
		Profiles: profiles,
		Guard:    routeGuard,
		Table:    table,
		Nav:      nav,
	}, nil
}

// Can consults the permission table for the signed-in profile. Absent
// profile or unknown role denies.
func (m *Medgate) Can(action rbac.Action, resource string) bool {
	profile := m.Profiles.Profile()
	if profile == nil {
		return false
	}
	return m.Table.Can(profile.Role, action, resource)
}

// VisibleNav returns the nav items the signed-in profile may see, in
// display order.
func (m *Medgate) VisibleNav() []rbac.NavItem {
	profile := m.Profiles.Profile()
	if profile == nil {
		return nil
	}
	return rbac.VisibleNavItems(m.Nav, profile.Role)
}
