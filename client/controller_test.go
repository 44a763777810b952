package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lborres/facturo/core"
)

type fakeAPI struct {
	mu sync.Mutex

	profile    *core.Profile
	profileErr error
	updateErr  error
	changeErr  error
	deleteErr  error

	updates      []UpdateProfileRequest
	changes      [][2]string
	deleted      bool
	signedOut    bool
	tokenCleared bool
}

func (f *fakeAPI) GetProfile(ctx context.Context) (*core.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	p := *f.profile
	return &p, nil
}

func (f *fakeAPI) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*core.ProfileSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, req)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	// mimic the server: empty values leave fields unchanged
	if req.Name != nil && *req.Name != "" {
		f.profile.Name = req.Name
	}
	if req.Image != nil && *req.Image != "" {
		f.profile.Image = req.Image
	}
	return &core.ProfileSummary{ID: f.profile.ID, Email: f.profile.Email, Name: f.profile.Name, Image: f.profile.Image}, nil
}

func (f *fakeAPI) ChangePassword(ctx context.Context, current, next string) error {
	f.changes = append(f.changes, [2]string{current, next})
	return f.changeErr
}

func (f *fakeAPI) DeleteAccount(ctx context.Context) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = true
	return nil
}

func (f *fakeAPI) SignOut(ctx context.Context) error {
	f.signedOut = true
	return &APIError{Status: 401, Message: "Unauthorized"}
}

func (f *fakeAPI) ClearToken() { f.tokenCleared = true }

func strPtr(s string) *string { return &s }

func newController(t *testing.T, accounts ...string) (*ProfileController, *fakeAPI) {
	t.Helper()
	links := make([]core.AccountLink, 0, len(accounts))
	for _, p := range accounts {
		links = append(links, core.AccountLink{Provider: p})
	}
	api := &fakeAPI{profile: &core.Profile{ID: "u-1", Email: "alice@example.com", Name: strPtr("Alice"), Accounts: links}}
	c := NewProfileController(api)
	c.SetHideDelay(10 * time.Millisecond)
	require.NoError(t, c.Load(context.Background()))
	return c, api
}

func TestLoad(t *testing.T) {
	c, _ := newController(t)
	s := c.State()

	assert.False(t, s.Loading)
	assert.Equal(t, "Alice", s.Name)
	assert.Nil(t, s.Image)
	assert.Equal(t, "alice@example.com", s.User.Email)
}

func TestLoad_NilNameAndFailure(t *testing.T) {
	api := &fakeAPI{profile: &core.Profile{ID: "u-1", Email: "a@b.c"}}
	c := NewProfileController(api)
	assert.True(t, c.State().Loading)

	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, "", c.State().Name)

	api.profileErr = errors.New("boom")
	c2 := NewProfileController(api)
	assert.Error(t, c2.Load(context.Background()))
	assert.False(t, c2.State().Loading)
	assert.Nil(t, c2.State().User)
}

func TestUploadAvatar(t *testing.T) {
	c, api := newController(t)
	png := []byte("\x89PNG\r\n\x1a\n0000")

	require.NoError(t, c.UploadAvatar(context.Background(), png))

	require.Len(t, api.updates, 1)
	assert.Nil(t, api.updates[0].Name)
	require.NotNil(t, api.updates[0].Image)
	assert.True(t, strings.HasPrefix(*api.updates[0].Image, "data:image/png;base64,"))

	s := c.State()
	assert.Equal(t, api.updates[0].Image, s.Image)
	assert.Equal(t, *s.Image, *s.User.Image)
}

func TestUploadAvatar_FailureKeepsImage(t *testing.T) {
	c, api := newController(t)
	api.updateErr = errors.New("boom")

	assert.Error(t, c.UploadAvatar(context.Background(), []byte("x")))
	assert.Nil(t, c.State().Image)
}

func TestSaveName_AdoptsServerValue(t *testing.T) {
	c, api := newController(t)

	c.SetName("Bob")
	require.NoError(t, c.SaveName(context.Background()))
	assert.Equal(t, "Bob", c.State().Name)
	assert.Equal(t, "Bob", *c.State().User.Name)
	assert.Nil(t, api.updates[0].Image)

	// an empty name is ignored by the server, so the old name comes back
	c.SetName("")
	require.NoError(t, c.SaveName(context.Background()))
	assert.Equal(t, "Bob", c.State().Name)
}

func TestCanChangePassword(t *testing.T) {
	c, _ := newController(t)
	assert.True(t, c.CanChangePassword())

	c, _ = newController(t, "google")
	assert.False(t, c.CanChangePassword())

	assert.False(t, NewProfileController(&fakeAPI{}).CanChangePassword())
}

func TestChangePassword_ClientChecks(t *testing.T) {
	tests := []struct {
		name          string
		next, confirm string
		wantErr       string
	}{
		{name: "mismatch", next: "newpassword1", confirm: "newpassword2", wantErr: msgPasswordMismatch},
		{name: "too short", next: "short", confirm: "short", wantErr: msgPasswordTooShort},
		{name: "seven accented letters", next: "ééééééé", confirm: "ééééééé", wantErr: msgPasswordTooShort},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, api := newController(t)
			c.SetPasswords("oldpassword", tc.next, tc.confirm)
			c.ChangePassword(context.Background())

			assert.Equal(t, tc.wantErr, c.State().PasswordError)
			assert.Empty(t, api.changes)
		})
	}
}

func TestChangePassword_EmojiMeetsMinimum(t *testing.T) {
	c, api := newController(t)
	c.SetPasswords("oldpassword", "😀😀😀😀", "😀😀😀😀")
	c.ChangePassword(context.Background())

	assert.Empty(t, c.State().PasswordError)
	assert.Equal(t, [][2]string{{"oldpassword", "😀😀😀😀"}}, api.changes)
}

func TestChangePassword_ServerErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr string
	}{
		{name: "server message", err: &APIError{Status: 401, Message: "Current password is incorrect"}, wantErr: "Current password is incorrect"},
		{name: "no message", err: &APIError{Status: 500}, wantErr: msgPasswordFailed},
		{name: "transport", err: errors.New("connection refused"), wantErr: msgRequestFailed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, api := newController(t)
			api.changeErr = tc.err
			c.SetPasswords("oldpassword", "newpassword", "newpassword")
			c.ChangePassword(context.Background())

			s := c.State()
			assert.Equal(t, tc.wantErr, s.PasswordError)
			assert.Empty(t, s.PasswordSuccess)
			assert.Equal(t, "newpassword", s.NewPassword)
		})
	}
}

func TestChangePassword_SuccessHidesForm(t *testing.T) {
	c, api := newController(t)
	c.TogglePasswordForm()
	c.SetPasswords("oldpassword", "newpassword", "newpassword")

	c.ChangePassword(context.Background())

	s := c.State()
	assert.Equal(t, msgPasswordChanged, s.PasswordSuccess)
	assert.Empty(t, s.PasswordError)
	assert.Empty(t, s.CurrentPassword)
	assert.Empty(t, s.NewPassword)
	assert.Empty(t, s.ConfirmPassword)
	assert.Equal(t, [][2]string{{"oldpassword", "newpassword"}}, api.changes)

	assert.Eventually(t, func() bool { return !c.State().ShowPasswordForm }, time.Second, 5*time.Millisecond)
}

func TestDeleteAccount(t *testing.T) {
	c, api := newController(t)

	var prompt string
	deleted, err := c.DeleteAccount(context.Background(), func(p string) bool { prompt = p; return false })
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, DeletePrompt, prompt)
	assert.False(t, api.deleted)

	deleted, err = c.DeleteAccount(context.Background(), func(string) bool { return true })
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.True(t, api.signedOut)
	assert.True(t, api.tokenCleared)
	assert.Equal(t, "/", c.State().NavigateTo)
}

func TestDeleteAccount_Failure(t *testing.T) {
	c, api := newController(t)
	api.deleteErr = errors.New("boom")

	deleted, err := c.DeleteAccount(context.Background(), func(string) bool { return true })
	assert.Error(t, err)
	assert.False(t, deleted)
	assert.False(t, api.signedOut)
	assert.Empty(t, c.State().NavigateTo)
}
