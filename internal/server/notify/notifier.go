// Package notify delivers account emails: one-time codes, password reset
// links and welcome messages. Notifier calls are synchronous and report
// delivery errors; Dispatcher runs fire-and-forget sends in the background.
package notify

import "context"

// Notifier sends account emails. Implementations must be safe for
// concurrent use.
type Notifier interface {
	SendOTP(ctx context.Context, to, name, code string) error
	SendPasswordReset(ctx context.Context, to, name, resetURL string) error
	SendWelcome(ctx context.Context, to, name string) error
}

// Message kinds.
const (
	KindOTP     = "otp"
	KindReset   = "password_reset"
	KindWelcome = "welcome"
)
