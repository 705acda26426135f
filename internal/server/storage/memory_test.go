package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Silas-Hakuzwimana/streamforge/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_PutPresignDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }

	u, err := m.Put(ctx, "uploads/u/a.mp3", "audio/mpeg", strings.NewReader("abc"), 3)
	require.NoError(t, err)
	assert.Equal(t, "memory:///uploads/u/a.mp3", u)

	data, ct, ok := m.Get("uploads/u/a.mp3")
	require.True(t, ok)
	assert.Equal(t, "abc", string(data))
	assert.Equal(t, "audio/mpeg", ct)

	link, err := m.PresignGet(ctx, "uploads/u/a.mp3", PresignTTL)
	require.NoError(t, err)
	assert.Contains(t, link, "expires=2025-01-01T00%3A15%3A00Z")

	require.NoError(t, m.Delete(ctx, "uploads/u/a.mp3"))
	assert.Equal(t, 0, m.Len())

	_, err = m.PresignGet(ctx, "uploads/u/a.mp3", PresignTTL)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
