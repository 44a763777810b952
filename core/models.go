package core

import "time"

// User represents a user account in the system
//
// This is the "identity" - who someone is
type User struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          *string    `json:"name"`
	Image         *string    `json:"image"`         // data URI or URL
	Password      *string    `json:"-"`             // Never expose in JSON
	EmailVerified *time.Time `json:"emailVerified"` // nil until verified
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	// Accounts is only populated by FindUserByEmail
	Accounts []*Account `json:"-"`
}

// HasPassword reports whether a local password hash is stored.
// Users that only sign in through an identity provider have none.
func (u *User) HasPassword() bool {
	return u != nil && u.Password != nil && *u.Password != ""
}

// Account links a User to an external identity provider
//
// This is the "credential" - how someone proves who they are
type Account struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	Provider          string    `json:"provider"` // "google", "github"
	ProviderAccountID string    `json:"providerAccountId"`
	CreatedAt         time.Time `json:"createdAt"`
}

// CredentialProvider is the provider tag of email/password sign-in.
const CredentialProvider = "credential"

// IsFederated reports whether any linked account delegates authentication
// to an external identity provider.
func IsFederated(accounts []*Account) bool {
	for _, a := range accounts {
		if a.Provider != CredentialProvider {
			return true
		}
	}
	return false
}

// Session represents an active login session
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	TokenHash string    `json:"-"` // Never expose in JSON (security!)
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SessionData combines user and session info
// The model returned to clients
type SessionData struct {
	User    *User    `json:"user"`
	Session *Session `json:"session"`
}

// Identity is the caller resolved from a verified session.
// Handlers receive it explicitly; a zero Identity means "no session".
type Identity struct {
	UserID string
	Email  string
}

func (i Identity) IsZero() bool {
	return i.Email == ""
}

// Identity returns the caller identity carried by the session data.
func (d *SessionData) Identity() Identity {
	if d == nil || d.User == nil {
		return Identity{}
	}
	return Identity{UserID: d.User.ID, Email: d.User.Email}
}
