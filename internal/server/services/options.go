// Package services contains server-side business logic: the one-time code
// and reset token managers, the authentication flow, profile and media
// operations, and the background sweeper.
package services

import (
	"context"
	"time"

	"github.com/Silas-Hakuzwimana/streamforge/internal/common"
	"github.com/Silas-Hakuzwimana/streamforge/internal/cryptox"
	"github.com/Silas-Hakuzwimana/streamforge/internal/logging"
)

// Option customizes a service.
type Option func(*options)

type options struct {
	now    func() time.Time
	log    logging.Logger
	hasher *cryptox.Hasher
}

func buildOptions(opts []Option) options {
	o := options{
		now:    time.Now,
		log:    logging.Nop(),
		hasher: cryptox.NewHasher(cryptox.DefaultParams),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

func WithLogger(l logging.Logger) Option { return func(o *options) { o.log = l } }

// WithHasher sets the password hasher.
func WithHasher(h *cryptox.Hasher) Option { return func(o *options) { o.hasher = h } }

// bounded runs fn under a timeout when d is positive.
func bounded(ctx context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	if d <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return fn(ctx)
}

func storageErr(err error) error {
	return common.Transient("Storage temporarily unavailable", err)
}

func deliveryErr(err error) error {
	return common.Transient("Email delivery failed, please try again", err)
}
