package fiber

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/facturo/core"
)

func (a *Adapter) setSessionCookie(c fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   a.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ============================================
// AUTH
// ============================================

func (a *Adapter) signUp(c fiber.Ctx) error {
	var input core.SignUpInput
	if err := c.Bind().Body(&input); err != nil {
		return writeError(c, a, core.ErrInvalidBody, authErrors)
	}

	result, err := a.facturo.Auth.SignUp(c.Context(), input, c.IP(), c.Get(fiber.HeaderUserAgent))
	if err != nil {
		return writeError(c, a, err, authErrors)
	}

	a.setSessionCookie(c, result.Token, result.Session.ExpiresAt)
	return c.Status(http.StatusCreated).JSON(result)
}

func (a *Adapter) signIn(c fiber.Ctx) error {
	var input core.SignInInput
	if err := c.Bind().Body(&input); err != nil {
		return writeError(c, a, core.ErrInvalidBody, authErrors)
	}

	result, err := a.facturo.Auth.SignIn(c.Context(), input, c.IP(), c.Get(fiber.HeaderUserAgent))
	if err != nil {
		return writeError(c, a, err, authErrors)
	}

	a.setSessionCookie(c, result.Token, result.Session.ExpiresAt)
	return c.Status(http.StatusOK).JSON(result)
}

func (a *Adapter) signOut(c fiber.Ctx) error {
	if err := a.facturo.Auth.SignOut(c.Context(), extractToken(c)); err != nil {
		return writeError(c, a, err, authErrors)
	}

	c.ClearCookie(SessionCookieName)
	return c.Status(http.StatusOK).JSON(core.MessageResponse{Message: "signed out successfully"})
}

func (a *Adapter) session(c fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(sessionData(c))
}

func (a *Adapter) listSessions(c fiber.Ctx) error {
	sessions, err := a.facturo.Auth.ListSessions(c.Context(), identity(c))
	if err != nil {
		return writeError(c, a, err, nil)
	}
	return c.Status(http.StatusOK).JSON(sessions)
}

// revokeSession ends a session by ID. Revoking the current one also clears
// the cookie.
func (a *Adapter) revokeSession(c fiber.Ctx) error {
	var input core.RevokeSessionInput
	if err := c.Bind().Body(&input); err != nil {
		return writeError(c, a, core.ErrInvalidBody, revokeSessionErrors)
	}

	if err := a.facturo.Auth.RevokeSession(c.Context(), identity(c), input.SessionID); err != nil {
		return writeError(c, a, err, revokeSessionErrors)
	}

	if data := sessionData(c); data != nil && data.Session != nil && data.Session.ID == input.SessionID {
		c.ClearCookie(SessionCookieName)
	}
	return c.Status(http.StatusOK).JSON(core.MessageResponse{Message: "Session revoked"})
}

// ============================================
// PROFILE
// ============================================

func (a *Adapter) getProfile(c fiber.Ctx) error {
	profile, err := a.facturo.Profile.GetProfile(c.Context(), identity(c))
	if err != nil {
		return writeError(c, a, err, getProfileErrors)
	}
	return c.Status(http.StatusOK).JSON(profile)
}

// updateProfile treats a malformed body like any other failure: 500.
func (a *Adapter) updateProfile(c fiber.Ctx) error {
	var input core.UpdateProfileInput
	if err := c.Bind().Body(&input); err != nil {
		return writeError(c, a, err, updateProfileErrors)
	}

	summary, err := a.facturo.Profile.UpdateProfile(c.Context(), identity(c), input)
	if err != nil {
		return writeError(c, a, err, updateProfileErrors)
	}
	return c.Status(http.StatusOK).JSON(summary)
}

func (a *Adapter) changePassword(c fiber.Ctx) error {
	var input core.ChangePasswordInput
	if err := c.Bind().Body(&input); err != nil {
		return writeError(c, a, err, changePasswordErrors)
	}

	if err := a.facturo.Profile.ChangePassword(c.Context(), identity(c), input); err != nil {
		return writeError(c, a, err, changePasswordErrors)
	}
	return c.Status(http.StatusOK).JSON(core.MessageResponse{Message: "Password changed successfully"})
}

func (a *Adapter) deleteAccount(c fiber.Ctx) error {
	if err := a.facturo.Profile.DeleteAccount(c.Context(), identity(c)); err != nil {
		return writeError(c, a, err, deleteAccountErrors)
	}

	c.ClearCookie(SessionCookieName)
	return c.Status(http.StatusOK).JSON(core.MessageResponse{Message: "Account deleted successfully"})
}

// ============================================
// MISC
// ============================================

func (a *Adapter) dashboard(c fiber.Ctx) error {
	summary, err := a.facturo.Dashboard.Summary(c.Context(), identity(c))
	if err != nil {
		return writeError(c, a, err, nil)
	}
	return c.Status(http.StatusOK).JSON(summary)
}

func (a *Adapter) health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
