package services

import (
	"sync"
	"testing"
	"time"

	"github.com/Silas-Hakuzwimana/streamforge/internal/cryptox"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/auth"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/config"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/notify"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/repositories/memory"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/repositories/repomanager"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/storage"
	"github.com/stretchr/testify/require"
)

// cheap argon2id params keep the suite fast
var testHasher = cryptox.NewHasher(cryptox.Params{
	Memory:      8 * 1024,
	Time:        1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
})

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type harness struct {
	clock   *fakeClock
	store   *memory.Store
	rm      repomanager.RepositoryManager
	rec     *notify.Recorder
	blobs   *storage.Memory
	cfg     *config.Config
	issuer  *auth.Issuer
	otps    *OTPManager
	resets  *ResetTokenManager
	auth    *AuthService
	profile *ProfileService
	media   *MediaService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		clock: newFakeClock(),
		rec:   notify.NewRecorder(),
		blobs: storage.NewMemory(),
		cfg: &config.Config{
			RepoTimeout:   time.Second,
			NotifyTimeout: time.Second,
			FrontendURL:   "http://localhost:5173/",
			OTPTTL:        DefaultOTPTTL,
			ResetTTL:      DefaultResetTTL,
		},
	}
	h.store = memory.NewStore(memory.WithClock(h.clock.Now))
	h.rm = repomanager.NewInMemoryRepositoryManager(h.store)

	var err error
	h.issuer, err = auth.NewIssuer("test-secret", time.Hour, auth.WithClock(h.clock.Now))
	require.NoError(t, err)

	h.build()
	return h
}

func (h *harness) build() {
	opts := []Option{WithClock(h.clock.Now), WithHasher(testHasher)}

	h.otps = NewOTPManager(nil, h.rm, h.cfg.OTPTTL, opts...)
	h.resets = NewResetTokenManager(nil, h.rm, h.cfg.ResetTTL, opts...)
	h.auth = NewAuthService(AuthDeps{
		Repos:       h.rm,
		OTPs:        h.otps,
		ResetTokens: h.resets,
		Issuer:      h.issuer,
		Notifier:    h.rec,
	}, h.cfg, opts...)
	h.profile = NewProfileService(nil, h.rm, h.blobs, h.cfg, opts...)
	h.media = NewMediaService(nil, h.rm, h.blobs, h.cfg, opts...)
}

// lastOTP returns the code most recently mailed to email.
func (h *harness) lastOTP(t *testing.T, email string) string {
	t.Helper()
	s, ok := h.rec.Last(notify.KindOTP, email)
	require.True(t, ok, "no otp sent to %s", email)
	return s.Code
}
