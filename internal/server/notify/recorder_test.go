package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/Silas-Hakuzwimana/streamforge/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	r := NewRecorder()

	require.NoError(t, r.SendOTP(ctx, "a@x.io", "A", "111111"))
	require.NoError(t, r.SendOTP(ctx, "a@x.io", "A", "222222"))
	require.NoError(t, r.SendPasswordReset(ctx, "a@x.io", "A", "http://x/reset-password/t"))

	last, ok := r.Last(KindOTP, "a@x.io")
	require.True(t, ok)
	assert.Equal(t, "222222", last.Code)

	_, ok = r.Last(KindWelcome, "a@x.io")
	assert.False(t, ok)

	boom := errors.New("boom")
	r.Fail(KindOTP, boom)
	assert.ErrorIs(t, r.SendOTP(ctx, "a@x.io", "A", "333333"), boom)
	r.Fail(KindOTP, nil)
	assert.NoError(t, r.SendOTP(ctx, "a@x.io", "A", "444444"))

	assert.Len(t, r.Sent(), 4)
}

func TestLogNotifier_NeverLogsSecrets(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(logging.NewJSON(&buf, slog.LevelDebug))
	ctx := context.Background()

	require.NoError(t, n.SendOTP(ctx, "a@x.io", "A", "987654"))
	require.NoError(t, n.SendPasswordReset(ctx, "a@x.io", "A", "http://x/reset-password/deadbeef"))
	require.NoError(t, n.SendWelcome(ctx, "a@x.io", "A"))

	out := buf.String()
	assert.Contains(t, out, `"to":"a@x.io"`)
	assert.NotContains(t, out, "987654")
	assert.NotContains(t, out, "deadbeef")
}
