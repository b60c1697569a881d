// Package fiber mounts the portal's HTTP surface on a fiber app: the
// auth group, profile endpoints, role-filtered navigation, and the
// booking flow. Role checks reuse the same guard logic the client-side
// route guard runs, translated into redirects.
package fiber

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/medgate/medgate/booking"
	"github.com/medgate/medgate/core"
	"github.com/medgate/medgate/guard"
	"github.com/medgate/medgate/rbac"
)

type Adapter struct {
	app      *fiber.App
	auth     core.AuthHandler
	profiles core.ProfileStorage
	nav      []rbac.NavItem
	catalog  booking.Catalog
	appts    booking.AppointmentStorage
	login    string
	fallback string
	log      zerolog.Logger
}

// Config wires the adapter. Auth and Profiles are required; the rest
// default to the portal's standard setup.
type Config struct {
	Auth     core.AuthHandler
	Profiles core.ProfileStorage
	Nav      []rbac.NavItem
	Catalog  booking.Catalog
	Appts    booking.AppointmentStorage

	LoginRoute    string
	FallbackRoute string
	Logger        zerolog.Logger
}

func New(app *fiber.App, cfg Config) *Adapter {
	if cfg.Nav == nil {
		cfg.Nav = rbac.DefaultNavItems()
	}
	if cfg.LoginRoute == "" {
		cfg.LoginRoute = guard.DefaultLoginRoute
	}
	if cfg.FallbackRoute == "" {
		cfg.FallbackRoute = guard.DefaultFallbackRoute
	}
	return &Adapter{
		app:      app,
		auth:     cfg.Auth,
		profiles: cfg.Profiles,
		nav:      cfg.Nav,
		catalog:  cfg.Catalog,
		appts:    cfg.Appts,
		login:    cfg.LoginRoute,
		fallback: cfg.FallbackRoute,
		log:      cfg.Logger.With().Str("component", "http").Logger(),
	}
}

func (a *Adapter) RegisterRoutes() {
	api := a.app.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	auth.Post("/sign-up", a.signUp)
	auth.Post("/sign-in", a.signIn)

	// Token-addressed; sign-out stays idempotent server-side.
	auth.Post("/sign-out", a.signOut)
	auth.Get("/session", a.session)

	// Protected routes
	api.Get("/profile", a.RequireRoles(), a.getProfile)
	api.Patch("/profile", a.RequireRoles(), a.updateProfile)
	api.Get("/nav", a.RequireRoles(), a.navItems)

	if a.catalog != nil {
		bk := api.Group("/booking", a.RequireRoles(core.RolePatient))
		bk.Get("/specialities", a.specialities)
		bk.Get("/doctors", a.doctors)
		bk.Get("/slots", a.slots)
		bk.Post("/appointments", a.createAppointment)
		bk.Get("/appointments", a.listAppointments)
	}
}
