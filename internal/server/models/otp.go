package models

import "time"

// OneTimeCode is the single live login code of a user. Only the digest of
// the code is stored.
type OneTimeCode struct {
	UserID    string
	CodeHash  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the code is no longer usable at now.
func (c *OneTimeCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
