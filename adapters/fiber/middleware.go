package fiber

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/facturo/core"
)

const (
	SessionCookieName = "session_token"

	localsIdentity = "identity"
	localsSession  = "session"
)

// extractToken reads a Bearer token from the Authorization header, falling
// back to the session cookie.
func extractToken(c fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok && token != "" {
		return token
	}
	return c.Cookies(SessionCookieName)
}

// requireSession resolves the caller and stores its Identity and session
// data in Locals. Requests without a live session get 401.
func (a *Adapter) requireSession(c fiber.Ctx) error {
	token := extractToken(c)
	if token == "" {
		return writeError(c, a, core.ErrUnauthorized, nil)
	}

	data, err := a.facturo.Auth.GetSession(c.Context(), token)
	if err != nil {
		if errors.Is(err, core.ErrInvalidToken) ||
			errors.Is(err, core.ErrSessionNotFound) ||
			errors.Is(err, core.ErrSessionExpired) {
			err = core.ErrUnauthorized
		}
		return writeError(c, a, err, nil)
	}

	c.Locals(localsIdentity, data.Identity())
	c.Locals(localsSession, data)

	return c.Next()
}

// identity returns the caller set by requireSession, or the zero Identity.
func identity(c fiber.Ctx) core.Identity {
	id, _ := c.Locals(localsIdentity).(core.Identity)
	return id
}

func sessionData(c fiber.Ctx) *core.SessionData {
	data, _ := c.Locals(localsSession).(*core.SessionData)
	return data
}
