package core

import "unicode/utf16"

// SignUpInput contains the data needed to register a new user
type SignUpInput struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name"`
	Image    *string `json:"image"`
}

// SignInInput contains the credentials for authentication
type SignInInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by sign-up and sign-in.
// Token is the raw session token; it is only ever handed out here.
type AuthResult struct {
	User    *User    `json:"user"`
	Session *Session `json:"session"`
	Token   string   `json:"token"`
}

// RevokeSessionInput names one of the caller's sessions to end.
type RevokeSessionInput struct {
	SessionID string `json:"sessionId"`
}

type CreateSessionResult struct {
	Session *Session `json:"session"`
	Token   string   `json:"token"`
}

const (
	// MinPasswordLength applies to both sign-up and password change and is
	// measured with PasswordLength.
	MinPasswordLength = 8
	// MaxPasswordLength is the bcrypt input limit in bytes.
	MaxPasswordLength = 72
)

// PasswordLength counts UTF-16 code units, the length web clients report
// for a string. Characters outside the BMP count twice.
func PasswordLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
