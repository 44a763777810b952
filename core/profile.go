package core

import "time"

// UserUpdate is the set of fields a partial update writes.
// A nil field is left untouched by storage.
type UserUpdate struct {
	Name     *string
	Image    *string
	Password *string
}

func (u UserUpdate) IsEmpty() bool {
	return u.Name == nil && u.Image == nil && u.Password == nil
}

// AccountLink is the public view of a linked Account.
type AccountLink struct {
	Provider string `json:"provider"`
}

// Profile is returned by the read-profile operation.
type Profile struct {
	ID            string        `json:"id"`
	Email         string        `json:"email"`
	Name          *string       `json:"name"`
	Image         *string       `json:"image"`
	EmailVerified *time.Time    `json:"emailVerified"`
	Accounts      []AccountLink `json:"accounts"`
}

// ProfileSummary is returned after a profile update.
type ProfileSummary struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
	Image *string `json:"image"`
}

// UpdateProfileInput carries the optional fields of an update request.
type UpdateProfileInput struct {
	Name  *string `json:"name"`
	Image *string `json:"image"`
}

// ChangePasswordInput carries a password change request.
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// DashboardSummary holds the dashboard counters. Invoicing is not
// implemented yet, so every counter is zero.
type DashboardSummary struct {
	Email         string `json:"email"`
	TotalInvoices int    `json:"totalInvoices"`
	TotalRevenue  int64  `json:"totalRevenue"`
	Pending       int    `json:"pending"`
	Completed     int    `json:"completed"`
}

// NewProfile builds the read-profile view of u.
func NewProfile(u *User) *Profile {
	links := make([]AccountLink, 0, len(u.Accounts))
	for _, a := range u.Accounts {
		links = append(links, AccountLink{Provider: a.Provider})
	}
	return &Profile{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Image:         u.Image,
		EmailVerified: u.EmailVerified,
		Accounts:      links,
	}
}

func NewProfileSummary(u *User) *ProfileSummary {
	return &ProfileSummary{ID: u.ID, Email: u.Email, Name: u.Name, Image: u.Image}
}
