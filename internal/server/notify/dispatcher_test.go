package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Silas-Hakuzwimana/streamforge/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_WelcomeDelivered(t *testing.T) {
	rec := NewRecorder()
	results := make(chan Result, 1)
	d := NewDispatcher(DispatcherConfig{BufferSize: 4, DropIfFull: true}, logging.Nop(),
		WithResultHook(func(r Result) { results <- r }))
	defer d.Close()

	require.True(t, d.Welcome(context.Background(), rec, "ada@example.com", "Ada"))

	select {
	case r := <-results:
		assert.NoError(t, r.Err)
		assert.Equal(t, KindWelcome, r.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("job not processed")
	}

	s, ok := rec.Last(KindWelcome, "ada@example.com")
	require.True(t, ok)
	assert.Equal(t, "Ada", s.Name)
	assert.Equal(t, uint64(1), d.Stats().Sent)
}

func TestDispatcher_FailureCounted(t *testing.T) {
	rec := NewRecorder()
	rec.Fail(KindWelcome, errors.New("smtp down"))
	d := NewDispatcher(DispatcherConfig{BufferSize: 1}, logging.Nop())

	require.True(t, d.Welcome(context.Background(), rec, "ada@example.com", "Ada"))
	d.Close()

	assert.Equal(t, Stats{Failed: 1}, d.Stats())
	assert.Empty(t, rec.Sent())
}

func TestDispatcher_DropIfFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	block := Job{Kind: "block", Send: func(context.Context) error {
		once.Do(func() { close(started) })
		<-release
		return nil
	}}

	d := NewDispatcher(DispatcherConfig{BufferSize: 1, DropIfFull: true}, logging.Nop())

	require.True(t, d.Dispatch(context.Background(), block))
	<-started
	// worker busy, buffer has room for one
	require.True(t, d.Dispatch(context.Background(), block))
	assert.False(t, d.Dispatch(context.Background(), block))

	close(release)
	d.Close()

	assert.Equal(t, Stats{Sent: 2, Dropped: 1}, d.Stats())
}

func TestDispatcher_CloseDrainsQueue(t *testing.T) {
	rec := NewRecorder()
	d := NewDispatcher(DispatcherConfig{BufferSize: 8}, logging.Nop())

	for i := 0; i < 5; i++ {
		require.True(t, d.Welcome(context.Background(), rec, "ada@example.com", "Ada"))
	}
	d.Close()

	assert.Len(t, rec.Sent(), 5)
	assert.False(t, d.Welcome(context.Background(), rec, "ada@example.com", "Ada"))
}

func TestDispatcher_BlockingRespectsContext(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	block := Job{Kind: "block", Send: func(context.Context) error {
		once.Do(func() { close(started) })
		<-release
		return nil
	}}

	d := NewDispatcher(DispatcherConfig{BufferSize: 1}, logging.Nop())
	require.True(t, d.Dispatch(context.Background(), block))
	<-started
	require.True(t, d.Dispatch(context.Background(), block))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.False(t, d.Dispatch(ctx, block))

	close(release)
	d.Close()
	assert.Equal(t, uint64(1), d.Stats().Dropped)
}

func TestDispatcher_NilSafe(t *testing.T) {
	var d *Dispatcher
	assert.False(t, d.Dispatch(context.Background(), Job{Send: func(context.Context) error { return nil }}))
	assert.Equal(t, Stats{}, d.Stats())
	d.Close()
}

func TestDispatcher_RejectsAfterClose(t *testing.T) {
	var handled atomic.Int32
	d := NewDispatcher(DispatcherConfig{BufferSize: 4, DropIfFull: true}, logging.Nop(),
		WithResultHook(func(Result) { handled.Add(1) }))
	d.Close()

	job := Job{Kind: "late", Send: func(context.Context) error { return nil }}
	assert.False(t, d.Dispatch(context.Background(), job))
	assert.Equal(t, Stats{}, d.Stats())
	assert.Zero(t, handled.Load())
}

func TestDispatcher_AcceptedJobsRunDespiteConcurrentClose(t *testing.T) {
	for _, dropIfFull := range []bool{true, false} {
		d := NewDispatcher(DispatcherConfig{BufferSize: 2, DropIfFull: dropIfFull}, logging.Nop())
		job := Job{Kind: "race", Send: func(context.Context) error { return nil }}

		var (
			accepted atomic.Uint64
			wg       sync.WaitGroup
		)
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					if d.Dispatch(context.Background(), job) {
						accepted.Add(1)
					}
				}
			}()
		}
		d.Close()
		wg.Wait()

		assert.Equal(t, accepted.Load(), d.Stats().Sent, "dropIfFull=%v", dropIfFull)
	}
}
