package models

import (
	"strings"
	"time"
)

// User is an account. PasswordHash and the reset token pair never leave the
// server; use View or Profile for responses.
type User struct {
	ID                string
	Name              string
	Email             string
	PasswordHash      string
	Role              string
	Bio               string
	ProfilePic        string
	ResetTokenHash    *string
	ResetTokenExpires *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NormalizeEmail returns the lookup key for an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserView is the minimal projection returned after authentication.
type UserView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u *User) View() *UserView {
	return &UserView{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Profile is what the account owner sees about themselves.
type Profile struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	Bio              string    `json:"bio"`
	ProfilePic       string    `json:"profilePic"`
	TwoFactorEnabled bool      `json:"twoFactorEnabled"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Profile reports TwoFactorEnabled as true: every login goes through an
// emailed one-time code.
func (u *User) Profile() *Profile {
	return &Profile{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Role:             u.Role,
		Bio:              u.Bio,
		ProfilePic:       u.ProfilePic,
		TwoFactorEnabled: true,
		CreatedAt:        u.CreatedAt,
	}
}

// ProfileUpdate carries the optional fields of a profile edit. Nil means
// unchanged.
type ProfileUpdate struct {
	Name       *string
	Bio        *string
	ProfilePic *string
}
