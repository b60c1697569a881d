package fiber

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/medgate/medgate/booking"
	"github.com/medgate/medgate/core"
	"github.com/medgate/medgate/rbac"
)

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *Adapter) signUp(c fiber.Ctx) error {
	var req signUpRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	role, err := core.ParseRole(req.Role)
	if err != nil {
		return handleAuthError(c, err)
	}

	payload, err := a.auth.SignUp(c.Context(), core.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     role,
	})
	if err != nil {
		return handleAuthError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(payload)
}

func (a *Adapter) signIn(c fiber.Ctx) error {
	var req signInRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	payload, err := a.auth.SignIn(c.Context(), req.Email, req.Password)
	if err != nil {
		return handleAuthError(c, err)
	}
	return c.Status(http.StatusOK).JSON(payload)
}

func (a *Adapter) signOut(c fiber.Ctx) error {
	token := extractToken(c)
	if token == "" {
		return handleAuthError(c, core.ErrMissingAuthHeader)
	}
	if err := a.auth.SignOut(c.Context(), token); err != nil {
		return handleAuthError(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "signed out successfully",
	})
}

func (a *Adapter) session(c fiber.Ctx) error {
	token := extractToken(c)
	if token == "" {
		return handleAuthError(c, core.ErrMissingAuthHeader)
	}
	data, err := a.auth.GetSession(c.Context(), token)
	if err != nil {
		return handleAuthError(c, err)
	}
	return c.Status(http.StatusOK).JSON(data)
}

func (a *Adapter) getProfile(c fiber.Ctx) error {
	profile := localProfile(c)
	return c.Status(http.StatusOK).JSON(profile)
}

func (a *Adapter) updateProfile(c fiber.Ctx) error {
	var changes core.ProfileChanges
	if err := c.Bind().Body(&changes); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	userID := localProfile(c).ID
	if err := a.profiles.UpdateProfile(c.Context(), userID, changes); err != nil {
		return handleAuthError(c, err)
	}

	// Return the stored row, not an optimistic merge.
	updated, err := a.profiles.FetchProfile(c.Context(), userID)
	if err != nil {
		return handleAuthError(c, err)
	}
	return c.Status(http.StatusOK).JSON(updated)
}

func (a *Adapter) navItems(c fiber.Ctx) error {
	role := localProfile(c).Role
	return c.Status(http.StatusOK).JSON(rbac.VisibleNavItems(a.nav, role))
}

func (a *Adapter) specialities(c fiber.Ctx) error {
	list, err := a.catalog.Specialities(c.Context())
	if err != nil {
		return handleAuthError(c, err)
	}
	return c.Status(http.StatusOK).JSON(list)
}

func (a *Adapter) doctors(c fiber.Ctx) error {
	speciality := c.Query("speciality")
	if speciality == "" {
		return handleAuthError(c, booking.ErrSpecialityRequired)
	}
	list, err := a.catalog.DoctorsBySpeciality(c.Context(), speciality)
	if err != nil {
		return handleAuthError(c, err)
	}
	return c.Status(http.StatusOK).JSON(list)
}

func (a *Adapter) slots(c fiber.Ctx) error {
	doctorID := c.Query("doctor")
	if doctorID == "" {
		return handleAuthError(c, booking.ErrDoctorRequired)
	}
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		return handleAuthError(c, booking.ErrDateTimeRequired)
	}
	open, err := a.catalog.AvailableSlots(c.Context(), doctorID, date)
	if err != nil {
		return handleAuthError(c, err)
	}
	return c.Status(http.StatusOK).JSON(open)
}

type appointmentRequest struct {
	DoctorID string `json:"doctor_id"`
	Date     string `json:"date"`
	Slot     string `json:"slot"`
	Reason   string `json:"reason"`
}

// createAppointment drives a fresh wizard through the full flow so an
// HTTP booking passes the exact same step validations as the UI one.
func (a *Adapter) createAppointment(c fiber.Ctx) error {
	var req appointmentRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	doctor, err := a.catalog.Doctor(c.Context(), req.DoctorID)
	if err != nil {
		return handleAuthError(c, err)
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return handleAuthError(c, booking.ErrDateTimeRequired)
	}

	w := booking.NewWizard(a.catalog, a.appts, localProfile(c).ID)
	w.SetSpeciality(doctor.Speciality)
	if err := w.Next(c.Context()); err != nil {
		return handleAuthError(c, err)
	}
	if err := w.SetDoctor(c.Context(), doctor.ID); err != nil {
		return handleAuthError(c, err)
	}
	if err := w.Next(c.Context()); err != nil {
		return handleAuthError(c, err)
	}
	w.SetDateTime(date, req.Slot)
	w.SetReason(req.Reason)
	if err := w.Next(c.Context()); err != nil {
		return handleAuthError(c, err)
	}

	appt, err := w.Submit(c.Context())
	if err != nil {
		return handleAuthError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(appt)
}

func (a *Adapter) listAppointments(c fiber.Ctx) error {
	list, err := a.appts.ListPatientAppointments(c.Context(), localProfile(c).ID)
	if err != nil {
		return handleAuthError(c, err)
	}
	return c.Status(http.StatusOK).JSON(list)
}

// extractToken extracts the authentication token from the request.
// Checks Authorization header (Bearer token) first, then falls back to
// cookie.
func extractToken(c fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}
	return c.Cookies("auth_token")
}

func localProfile(c fiber.Ctx) *core.Profile {
	profile, _ := c.Locals("profile").(*core.Profile)
	return profile
}

// handleAuthError maps domain errors to appropriate HTTP responses
func handleAuthError(c fiber.Ctx, err error) error {
	return c.Status(mapErrorToStatus(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func mapErrorToStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch {
	case errors.Is(err, core.ErrInvalidCredentials),
		errors.Is(err, core.ErrInvalidToken),
		errors.Is(err, core.ErrSessionExpired),
		errors.Is(err, core.ErrSessionNotFound),
		errors.Is(err, core.ErrMissingAuthHeader):
		return http.StatusUnauthorized

	case errors.Is(err, core.ErrEmailNotConfirmed):
		return http.StatusForbidden

	case errors.Is(err, core.ErrIdentityExists),
		errors.Is(err, booking.ErrSlotUnavailable):
		return http.StatusConflict

	case errors.Is(err, core.ErrProfileMissing),
		errors.Is(err, booking.ErrDoctorNotFound):
		return http.StatusNotFound

	case errors.Is(err, core.ErrEmailRequired),
		errors.Is(err, core.ErrPasswordRequired),
		errors.Is(err, core.ErrUnknownRole),
		errors.Is(err, core.ErrRoleNotAllowed),
		errors.Is(err, booking.ErrSpecialityRequired),
		errors.Is(err, booking.ErrDoctorRequired),
		errors.Is(err, booking.ErrDoctorSpecialityMismatch),
		errors.Is(err, booking.ErrDateTimeRequired),
		errors.Is(err, booking.ErrIncompleteDraft):
		return http.StatusBadRequest

	case errors.Is(err, core.ErrNetwork),
		errors.Is(err, core.ErrTransport):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
