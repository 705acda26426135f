package services

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/Silas-Hakuzwimana/streamforge/internal/common"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/models"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 128
	maxNameLen     = 100
	maxBioLen      = 500
	otpDigits      = 6
)

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", common.Validation("Name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "", common.Validation("Name is too long")
	}
	return name, nil
}

// validateEmail returns the normalized address.
func validateEmail(email string) (string, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return "", common.Validation("Email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", common.Validation("Email is invalid")
	}
	return email, nil
}

func validatePassword(pw string) error {
	n := utf8.RuneCountInString(pw)
	if n < minPasswordLen {
		return common.Validation("Password must be at least 8 characters")
	}
	if n > maxPasswordLen {
		return common.Validation("Password is too long")
	}
	return nil
}

func validateCode(code string) error {
	if len(code) != otpDigits {
		return common.Validation("OTP must be 6 digits")
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return common.Validation("OTP must be 6 digits")
		}
	}
	return nil
}
