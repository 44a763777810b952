package fiber

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/facturo/core"
)

const internalErrorMessage = "Internal error"

// errorMapping turns a sentinel into a status and client message.
// An empty message sends err.Error().
type errorMapping struct {
	err     error
	status  int
	message string
}

var unauthorized = errorMapping{core.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"}

// Profile routes. Anything not listed, including a user that vanished
// during update or delete, is an internal error.
var (
	getProfileErrors = []errorMapping{
		unauthorized,
		{core.ErrUserNotFound, http.StatusNotFound, "User not found"},
	}

	updateProfileErrors = []errorMapping{unauthorized}

	changePasswordErrors = []errorMapping{
		unauthorized,
		{core.ErrPasswordsRequired, http.StatusBadRequest, "Current and new password required"},
		{core.ErrPasswordTooShort, http.StatusBadRequest, "Password must be at least 8 characters"},
		{core.ErrNoPassword, http.StatusNotFound, "User not found or no password set"},
		{core.ErrIncorrectPassword, http.StatusUnauthorized, "Current password is incorrect"},
		{core.ErrPasswordTooLong, http.StatusBadRequest, "Password must be at most 72 bytes"},
	}

	deleteAccountErrors = []errorMapping{unauthorized}
)

var revokeSessionErrors = []errorMapping{
	unauthorized,
	{core.ErrInvalidBody, http.StatusBadRequest, ""},
	{core.ErrSessionIDRequired, http.StatusBadRequest, ""},
	{core.ErrSessionNotFound, http.StatusNotFound, "Session not found"},
}

var authErrors = []errorMapping{
	unauthorized,
	{core.ErrInvalidCredentials, http.StatusUnauthorized, ""},
	{core.ErrInvalidToken, http.StatusUnauthorized, ""},
	{core.ErrSessionNotFound, http.StatusUnauthorized, ""},
	{core.ErrSessionExpired, http.StatusUnauthorized, ""},
	{core.ErrUserExists, http.StatusConflict, ""},
	{core.ErrEmailRequired, http.StatusBadRequest, ""},
	{core.ErrInvalidEmail, http.StatusBadRequest, ""},
	{core.ErrPasswordRequired, http.StatusBadRequest, ""},
	{core.ErrPasswordTooShort, http.StatusBadRequest, ""},
	{core.ErrPasswordTooLong, http.StatusBadRequest, ""},
	{core.ErrInvalidBody, http.StatusBadRequest, ""},
}

func mapError(err error, table []errorMapping) (int, string, bool) {
	for _, m := range table {
		if errors.Is(err, m.err) {
			msg := m.message
			if msg == "" {
				msg = m.err.Error()
			}
			return m.status, msg, true
		}
	}
	return http.StatusInternalServerError, internalErrorMessage, false
}

// writeError sends {"error": ...}. Unmapped errors are logged with the
// request id and replaced by a generic message.
func writeError(c fiber.Ctx, a *Adapter, err error, table []errorMapping) error {
	if table == nil {
		table = []errorMapping{unauthorized}
	}

	status, msg, known := mapError(err, table)
	if !known {
		a.logger.Error(c.Context(), "request failed",
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
	}

	return c.Status(status).JSON(core.ErrorResponse{Error: msg})
}

// ErrorHandler is the fiber.Config ErrorHandler for apps using this
// adapter. Errors that escape a handler, recovered panics included, never
// leak their text.
func ErrorHandler(c fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < http.StatusInternalServerError {
		return c.Status(fe.Code).JSON(core.ErrorResponse{Error: fe.Message})
	}
	return c.Status(http.StatusInternalServerError).JSON(core.ErrorResponse{Error: internalErrorMessage})
}
