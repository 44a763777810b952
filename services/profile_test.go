package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lborres/facturo/adapters/memory"
	"github.com/lborres/facturo/core"
)

func newTestProfileService(storage core.AuthStorage, cache core.Cache) *ProfileService {
	return NewProfileService(storage, newTestSessionManager(storage, cache), cheapHasher(), nil)
}

// Requirement: every operation requires an identity.
func TestProfileService_RequiresIdentity(t *testing.T) {
	ctx := context.Background()
	service := newTestProfileService(memory.New(), nil)
	none := core.Identity{}

	if _, err := service.GetProfile(ctx, none); !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("GetProfile() error = %v, want ErrUnauthorized", err)
	}
	if _, err := service.UpdateProfile(ctx, none, core.UpdateProfileInput{}); !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("UpdateProfile() error = %v, want ErrUnauthorized", err)
	}
	if err := service.ChangePassword(ctx, none, core.ChangePasswordInput{}); !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("ChangePassword() error = %v, want ErrUnauthorized", err)
	}
	if err := service.DeleteAccount(ctx, none); !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("DeleteAccount() error = %v, want ErrUnauthorized", err)
	}
}

// Requirement: GetProfile returns the profile with linked providers.
func TestProfileService_GetProfile(t *testing.T) {
	ctx := context.Background()
	storage := memory.New()
	id := seedUser(t, storage, "u1", "alice@example.com", "")
	_ = storage.CreateAccount(ctx, &core.Account{ID: "a1", UserID: "u1", Provider: "google", ProviderAccountID: "g-1"})
	service := newTestProfileService(storage, nil)

	profile, err := service.GetProfile(ctx, id)
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if profile.Email != "alice@example.com" || profile.ID != "u1" {
		t.Errorf("profile = %+v", profile)
	}
	if len(profile.Accounts) != 1 || profile.Accounts[0].Provider != "google" {
		t.Errorf("Accounts = %+v, want [google]", profile.Accounts)
	}

	_, err = service.GetProfile(ctx, core.Identity{UserID: "x", Email: "gone@example.com"})
	if !errors.Is(err, core.ErrUserNotFound) {
		t.Errorf("GetProfile() error = %v, want ErrUserNotFound", err)
	}

	failing := &failingStore{Store: storage, findErr: errStorage}
	_, err = newTestProfileService(failing, nil).GetProfile(ctx, id)
	if err == nil || errors.Is(err, core.ErrUserNotFound) {
		t.Errorf("GetProfile() error = %v, want wrapped storage error", err)
	}
}

// Requirement: only present, non-empty fields are applied.
func TestBuildUserUpdate(t *testing.T) {
	tests := []struct {
		name      string
		in        core.UpdateProfileInput
		wantName  *string
		wantImage *string
	}{
		{name: "empty input", in: core.UpdateProfileInput{}},
		{name: "name only", in: core.UpdateProfileInput{Name: strPtr("Bob")}, wantName: strPtr("Bob")},
		{name: "image only", in: core.UpdateProfileInput{Image: strPtr("data:x")}, wantImage: strPtr("data:x")},
		{name: "empty strings ignored", in: core.UpdateProfileInput{Name: strPtr(""), Image: strPtr("")}},
		{name: "both", in: core.UpdateProfileInput{Name: strPtr("Bob"), Image: strPtr("data:x")}, wantName: strPtr("Bob"), wantImage: strPtr("data:x")},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := BuildUserUpdate(test.in)
			if !equalPtr(got.Name, test.wantName) || !equalPtr(got.Image, test.wantImage) {
				t.Errorf("BuildUserUpdate() = {%v %v}, want {%v %v}", got.Name, got.Image, test.wantName, test.wantImage)
			}
			if got.Password != nil {
				t.Error("profile update must never touch the password")
			}
		})
	}
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Requirement: UpdateProfile is partial and an empty body is a no-op.
func TestProfileService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	storage := memory.New()
	id := seedUser(t, storage, "u1", "alice@example.com", "")
	service := newTestProfileService(storage, nil)

	out, err := service.UpdateProfile(ctx, id, core.UpdateProfileInput{Name: strPtr("Bob")})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if out.Name == nil || *out.Name != "Bob" || out.Image != nil {
		t.Errorf("summary = %+v", out)
	}

	out, err = service.UpdateProfile(ctx, id, core.UpdateProfileInput{Name: strPtr("")})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if out.Name == nil || *out.Name != "Bob" {
		t.Errorf("empty name cleared the stored value: %+v", out.Name)
	}

	if _, err := service.UpdateProfile(ctx, core.Identity{UserID: "x", Email: "gone@example.com"}, core.UpdateProfileInput{Name: strPtr("x")}); err == nil {
		t.Error("UpdateProfile() for a vanished user should fail")
	}
}

// Requirement: ChangePassword validates in order and replaces the hash.
func TestProfileService_ChangePassword(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		in      core.ChangePasswordInput
		wantErr error
	}{
		{name: "missing current", email: "alice@example.com", in: core.ChangePasswordInput{NewPassword: "NewSecure123"}, wantErr: core.ErrPasswordsRequired},
		{name: "missing new", email: "alice@example.com", in: core.ChangePasswordInput{CurrentPassword: "OldSecure123"}, wantErr: core.ErrPasswordsRequired},
		{name: "short new checked before user lookup", email: "gone@example.com", in: core.ChangePasswordInput{CurrentPassword: "x", NewPassword: "short"}, wantErr: core.ErrPasswordTooShort},
		{name: "length counts characters", email: "alice@example.com", in: core.ChangePasswordInput{CurrentPassword: "OldSecure123", NewPassword: "ééééééé"}, wantErr: core.ErrPasswordTooShort},
		{name: "unknown user", email: "gone@example.com", in: core.ChangePasswordInput{CurrentPassword: "OldSecure123", NewPassword: "NewSecure123"}, wantErr: core.ErrNoPassword},
		{name: "federated user", email: "google@example.com", in: core.ChangePasswordInput{CurrentPassword: "OldSecure123", NewPassword: "NewSecure123"}, wantErr: core.ErrNoPassword},
		{name: "wrong current", email: "alice@example.com", in: core.ChangePasswordInput{CurrentPassword: "WrongPass123", NewPassword: "NewSecure123"}, wantErr: core.ErrIncorrectPassword},
		{name: "too long new", email: "alice@example.com", in: core.ChangePasswordInput{CurrentPassword: "OldSecure123", NewPassword: strings.Repeat("a", 73)}, wantErr: core.ErrPasswordTooLong},
		{name: "success", email: "alice@example.com", in: core.ChangePasswordInput{CurrentPassword: "OldSecure123", NewPassword: "NewSecure123"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			ctx := context.Background()
			storage := memory.New()
			seedUser(t, storage, "u1", "alice@example.com", "OldSecure123")
			seedUser(t, storage, "u2", "google@example.com", "")
			service := newTestProfileService(storage, nil)
			before, _ := storage.FindUserByEmail(ctx, "alice@example.com")

			// Act
			err := service.ChangePassword(ctx, core.Identity{UserID: "u", Email: test.email}, test.in)

			// Assert
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("ChangePassword() error = %v, want %v", err, test.wantErr)
			}

			after, _ := storage.FindUserByEmail(ctx, "alice@example.com")
			changed := *after.Password != *before.Password
			if changed != (test.wantErr == nil) {
				t.Fatalf("hash changed = %v, want %v", changed, test.wantErr == nil)
			}
			if test.wantErr != nil {
				return
			}

			if ok, _ := cheapHasher().Verify("NewSecure123", *after.Password); !ok {
				t.Error("new password does not verify")
			}
			if ok, _ := cheapHasher().Verify("OldSecure123", *after.Password); ok {
				t.Error("old password still verifies")
			}
		})
	}
}

// Requirement: the new password's length is counted in UTF-16 units, so
// four emoji pass the minimum.
func TestProfileService_ChangePassword_EmojiPassword(t *testing.T) {
	ctx := context.Background()
	storage := memory.New()
	id := seedUser(t, storage, "u1", "alice@example.com", "OldSecure123")
	service := newTestProfileService(storage, nil)

	err := service.ChangePassword(ctx, id, core.ChangePasswordInput{CurrentPassword: "OldSecure123", NewPassword: "😀😀😀😀"})
	if err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}

	after, _ := storage.FindUserByEmail(ctx, "alice@example.com")
	if ok, _ := cheapHasher().Verify("😀😀😀😀", *after.Password); !ok {
		t.Error("new password does not verify")
	}
}

// Requirement: a storage failure while persisting is an internal error.
func TestProfileService_ChangePassword_StorageError(t *testing.T) {
	storage := memory.New()
	id := seedUser(t, storage, "u1", "alice@example.com", "OldSecure123")
	failing := &failingStore{Store: storage, updateErr: errStorage}

	err := newTestProfileService(failing, nil).ChangePassword(context.Background(), id, core.ChangePasswordInput{CurrentPassword: "OldSecure123", NewPassword: "NewSecure123"})
	if !errors.Is(err, errStorage) {
		t.Errorf("ChangePassword() error = %v, want wrapped storage error", err)
	}
}

// Requirement: DeleteAccount removes the user, its links and sessions,
// including cached ones; a second delete fails.
func TestProfileService_DeleteAccount(t *testing.T) {
	ctx := context.Background()
	storage := memory.New()
	id := seedUser(t, storage, "u1", "alice@example.com", "OldSecure123")
	_ = storage.CreateAccount(ctx, &core.Account{ID: "a1", UserID: "u1", Provider: "google"})
	cache := newRecordingCache()
	service := newTestProfileService(storage, cache)

	session, err := service.sessionManager.Create(ctx, "u1", "", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := service.DeleteAccount(ctx, id); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}

	if _, err := storage.FindUserByEmail(ctx, id.Email); !errors.Is(err, core.ErrUserNotFound) {
		t.Errorf("user still present: %v", err)
	}
	if accs, _ := storage.ListAccountsByUser(ctx, "u1"); len(accs) != 0 {
		t.Errorf("accounts survived: %+v", accs)
	}
	if _, err := service.sessionManager.Verify(ctx, session.Token); err == nil {
		t.Error("session still verifies after account deletion")
	}
	if len(cache.deletedUsers) != 1 {
		t.Errorf("cache purge calls = %v", cache.deletedUsers)
	}

	if err := service.DeleteAccount(ctx, id); err == nil {
		t.Error("second DeleteAccount() should fail")
	}
}
