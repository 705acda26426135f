package services

import (
	"context"
	"time"

	"github.com/Silas-Hakuzwimana/streamforge/internal/logging"
)

// DefaultSweepInterval is how often expired codes and tokens are purged.
const DefaultSweepInterval = 5 * time.Minute

// Sweeper periodically deletes expired login codes and reset tokens.
// Verification never depends on it having run.
type Sweeper struct {
	otps     *OTPManager
	resets   *ResetTokenManager
	interval time.Duration
	log      logging.Logger
}

func NewSweeper(otps *OTPManager, resets *ResetTokenManager, interval time.Duration, log logging.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		otps:     otps,
		resets:   resets,
		interval: interval,
		log:      log.With("module", "sweeper"),
	}
}

// Run sweeps every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs a single pass and returns the number of codes and tokens
// removed.
func (s *Sweeper) SweepOnce(ctx context.Context) (codes, tokens int64) {
	var err error
	if codes, err = s.otps.Sweep(ctx); err != nil {
		s.log.Error(ctx, "otp sweep failed", "error", err)
	}
	if tokens, err = s.resets.SweepExpired(ctx); err != nil {
		s.log.Error(ctx, "reset token sweep failed", "error", err)
	}
	if codes > 0 || tokens > 0 {
		s.log.Info(ctx, "expired secrets removed", "codes", codes, "reset_tokens", tokens)
	}
	return codes, tokens
}
