package client

import (
	"context"
	"encoding/base64"
	"net/http"
	"sync"
	"time"

	"github.com/lborres/facturo/core"
)

const (
	DeletePrompt = "Are you sure? This action cannot be undone."

	msgPasswordMismatch = "New passwords do not match"
	msgPasswordTooShort = "Password must be at least 8 characters"
	msgPasswordFailed   = "Failed to change password"
	msgPasswordChanged  = "Password changed successfully"
	msgRequestFailed    = "An error occurred"

	// DefaultHideDelay is how long the success message stays before the
	// password form closes.
	DefaultHideDelay = 1500 * time.Millisecond
)

// State is a snapshot of the profile screen.
type State struct {
	User             *core.Profile
	Name             string
	Image            *string
	CurrentPassword  string
	NewPassword      string
	ConfirmPassword  string
	PasswordError    string
	PasswordSuccess  string
	ShowPasswordForm bool
	Loading          bool
	// NavigateTo is set once the account is gone and the screen should leave.
	NavigateTo string
}

// ProfileController drives the profile screen against API. Server responses
// replace local state after every successful mutation.
type ProfileController struct {
	api       API
	hideDelay time.Duration

	mu    sync.Mutex
	state State
}

func NewProfileController(api API) *ProfileController {
	return &ProfileController{
		api:       api,
		hideDelay: DefaultHideDelay,
		state:     State{Loading: true},
	}
}

// SetHideDelay changes how long the password form stays open after a
// successful change.
func (c *ProfileController) SetHideDelay(d time.Duration) {
	c.mu.Lock()
	c.hideDelay = d
	c.mu.Unlock()
}

func (c *ProfileController) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Load fetches the profile. Loading is false afterwards whatever the outcome.
func (c *ProfileController) Load(ctx context.Context) error {
	c.mu.Lock()
	c.state.Loading = true
	c.mu.Unlock()

	p, err := c.api.GetProfile(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Loading = false
	if err != nil {
		return err
	}

	c.state.User = p
	c.state.Name = ""
	if p.Name != nil {
		c.state.Name = *p.Name
	}
	c.state.Image = p.Image
	return nil
}

// UploadAvatar sends data as an inline data URI. The content type is
// sniffed from the bytes; size and type are not checked.
func (c *ProfileController) UploadAvatar(ctx context.Context, data []byte) error {
	uri := "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)

	s, err := c.api.UpdateProfile(ctx, UpdateProfileRequest{Image: &uri})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Image = s.Image
	c.applySummary(s)
	return nil
}

func (c *ProfileController) SetName(name string) {
	c.mu.Lock()
	c.state.Name = name
	c.mu.Unlock()
}

// SaveName sends the edited name and adopts the name the server returns.
func (c *ProfileController) SaveName(ctx context.Context) error {
	c.mu.Lock()
	name := c.state.Name
	c.mu.Unlock()

	s, err := c.api.UpdateProfile(ctx, UpdateProfileRequest{Name: &name})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.applySummary(s)
	c.state.Name = ""
	if s.Name != nil {
		c.state.Name = *s.Name
	}
	return nil
}

// applySummary must be called with mu held.
func (c *ProfileController) applySummary(s *core.ProfileSummary) {
	if c.state.User == nil {
		c.state.User = &core.Profile{}
	}
	c.state.User.ID = s.ID
	c.state.User.Email = s.Email
	c.state.User.Name = s.Name
	c.state.User.Image = s.Image
}

func (c *ProfileController) TogglePasswordForm() {
	c.mu.Lock()
	c.state.ShowPasswordForm = !c.state.ShowPasswordForm
	c.mu.Unlock()
}

// CanChangePassword is false for users signed up through an identity provider.
func (c *ProfileController) CanChangePassword() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.User == nil {
		return false
	}
	for _, a := range c.state.User.Accounts {
		if a.Provider != core.CredentialProvider {
			return false
		}
	}
	return true
}

func (c *ProfileController) SetPasswords(current, next, confirm string) {
	c.mu.Lock()
	c.state.CurrentPassword = current
	c.state.NewPassword = next
	c.state.ConfirmPassword = confirm
	c.mu.Unlock()
}

// ChangePassword submits the password form. The outcome is reported through
// PasswordError and PasswordSuccess rather than the return value.
func (c *ProfileController) ChangePassword(ctx context.Context) {
	c.mu.Lock()
	c.state.PasswordError = ""
	c.state.PasswordSuccess = ""
	current, next, confirm := c.state.CurrentPassword, c.state.NewPassword, c.state.ConfirmPassword

	if next != confirm {
		c.state.PasswordError = msgPasswordMismatch
		c.mu.Unlock()
		return
	}
	if core.PasswordLength(next) < core.MinPasswordLength {
		c.state.PasswordError = msgPasswordTooShort
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	err := c.api.ChangePassword(ctx, current, next)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		if msg, ok := ErrorMessage(err); ok {
			if msg == "" {
				msg = msgPasswordFailed
			}
			c.state.PasswordError = msg
			return
		}
		c.state.PasswordError = msgRequestFailed
		return
	}

	c.state.PasswordSuccess = msgPasswordChanged
	c.state.CurrentPassword = ""
	c.state.NewPassword = ""
	c.state.ConfirmPassword = ""
	time.AfterFunc(c.hideDelay, func() {
		c.mu.Lock()
		c.state.ShowPasswordForm = false
		c.mu.Unlock()
	})
}

// DeleteAccount asks confirm before deleting. After a successful delete the
// session is signed out, the token dropped and NavigateTo set to "/".
// It reports whether the account was deleted.
func (c *ProfileController) DeleteAccount(ctx context.Context, confirm func(prompt string) bool) (bool, error) {
	if !confirm(DeletePrompt) {
		return false, nil
	}

	if err := c.api.DeleteAccount(ctx); err != nil {
		return false, err
	}

	_ = c.api.SignOut(ctx)
	c.api.ClearToken()

	c.mu.Lock()
	c.state.NavigateTo = "/"
	c.mu.Unlock()
	return true, nil
}
