package fiber

import (
	"github.com/gofiber/fiber/v3"

	"github.com/medgate/medgate/core"
	"github.com/medgate/medgate/guard"
)

// RequireRoles resolves the request's token to a session and profile and
// applies the same role check the client-side route guard runs. Guard
// outcomes become redirects: unauthenticated requests go to the login
// route, authenticated-but-wrong-role requests to the fallback route.
// An empty role list admits any authenticated user.
func (a *Adapter) RequireRoles(allowed ...core.Role) fiber.Handler {
	return func(c fiber.Ctx) error {
		var data *core.SessionData
		if token := extractToken(c); token != "" {
			resolved, err := a.auth.GetSession(c.Context(), token)
			if err != nil {
				a.log.Debug().Err(err).Msg("session lookup failed")
			} else {
				data = resolved
			}
		}

		var session *core.Session
		var profile *core.Profile
		if data != nil {
			session = data.Session
			profile = data.Profile
		}

		switch guard.Check(session, profile, allowed...) {
		case guard.StateAuthorized:
			c.Locals("session", session)
			c.Locals("profile", profile)
			return c.Next()
		case guard.StateForbidden:
			return c.Redirect().Status(fiber.StatusSeeOther).To(a.fallback)
		default:
			return c.Redirect().Status(fiber.StatusSeeOther).To(a.login)
		}
	}
}
