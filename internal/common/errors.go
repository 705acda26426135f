// Package common defines shared constants, sentinel errors and the typed
// application error used across StreamForge server layers. Callers should use
// errors.Is / errors.As to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Session token errors. Transports collapse these into ErrNotAuthorized.
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token expired")
)

// Auth flow errors. Each carries a stable code and a message that is safe to
// return to the caller.
var (
	ErrValidation            = New(KindValidation, "invalid_input", "Invalid input")
	ErrEmailTaken            = New(KindConflict, "email_taken", "Email already in use")
	ErrInvalidCredentials    = New(KindAuth, "invalid_credentials", "Invalid email or password")
	ErrWrongPassword         = New(KindAuth, "wrong_password", "Current password is incorrect")
	ErrUserNotFound          = New(KindNotFound, "user_not_found", "User not found")
	ErrOTPNotFound           = New(KindAuth, "otp_not_found", "OTP not found or expired")
	ErrOTPExpired            = New(KindAuth, "otp_expired", "OTP expired")
	ErrOTPMismatch           = New(KindAuth, "otp_invalid", "Invalid OTP")
	ErrResetInvalidOrExpired = New(KindAuth, "reset_invalid", "Invalid or expired token")
	ErrNotAuthorized         = New(KindAuth, "not_authorized", "Not authorized")
	ErrConfig                = New(KindConfig, "config", "invalid configuration")
)
