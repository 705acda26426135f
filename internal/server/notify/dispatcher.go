package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Silas-Hakuzwimana/streamforge/internal/logging"
)

// DispatcherConfig controls buffering of background sends.
type DispatcherConfig struct {
	BufferSize int
	// DropIfFull makes Dispatch give up immediately when the buffer is full
	// instead of waiting for room.
	DropIfFull bool
	// Timeout bounds each send.
	Timeout time.Duration
}

// Job is a single background send.
type Job struct {
	Kind string
	To   string
	Send func(ctx context.Context) error
}

// Result reports the outcome of a Job.
type Result struct {
	Kind string
	To   string
	Err  error
}

// Stats are cumulative dispatcher counters.
type Stats struct {
	Sent    uint64
	Failed  uint64
	Dropped uint64
}

// Dispatcher runs fire-and-forget sends on a single worker so that request
// handlers never wait for the mail server.
type Dispatcher struct {
	cfg      DispatcherConfig
	log      logging.Logger
	ch       chan Job
	done     chan struct{}
	wg       sync.WaitGroup
	onResult func(Result)

	sent    atomic.Uint64
	failed  atomic.Uint64
	dropped atomic.Uint64

	// mu is held for reading while a job is pushed and for writing while
	// Close flips closed, so no job lands after the worker drains.
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

type DispatcherOption func(*Dispatcher)

// WithResultHook calls fn after every job, on the worker goroutine.
func WithResultHook(fn func(Result)) DispatcherOption {
	return func(d *Dispatcher) { d.onResult = fn }
}

func NewDispatcher(cfg DispatcherConfig, log logging.Logger, opts ...DispatcherOption) *Dispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	d := &Dispatcher{
		cfg:  cfg,
		log:  log.With("module", "notify.dispatcher"),
		ch:   make(chan Job, cfg.BufferSize),
		done: make(chan struct{}),
	}
	for _, o := range opts {
		o(d)
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case job := <-d.ch:
			d.handle(job)
		case <-d.done:
			for {
				select {
				case job := <-d.ch:
					d.handle(job)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) handle(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.Timeout)
	defer cancel()

	err := job.Send(ctx)
	if err != nil {
		d.failed.Add(1)
		d.log.Error(ctx, "background email failed", "kind", job.Kind, "to", job.To, "error", err)
	} else {
		d.sent.Add(1)
		d.log.Debug(ctx, "background email sent", "kind", job.Kind, "to", job.To)
	}

	if d.onResult != nil {
		d.onResult(Result{Kind: job.Kind, To: job.To, Err: err})
	}
}

// Dispatch queues job. It reports false when the job was not accepted
// because the dispatcher is closed, the buffer is full with DropIfFull set,
// or ctx ended while waiting.
func (d *Dispatcher) Dispatch(ctx context.Context, job Job) bool {
	if d == nil || job.Send == nil {
		return false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- job:
			return true
		default:
			d.dropped.Add(1)
			d.log.Warn(ctx, "email queue full, dropping", "kind", job.Kind, "to", job.To)
			return false
		}
	}

	select {
	case d.ch <- job:
		return true
	case <-ctx.Done():
		d.dropped.Add(1)
		return false
	}
}

// Welcome queues a welcome email for to via n.
func (d *Dispatcher) Welcome(ctx context.Context, n Notifier, to, name string) bool {
	return d.Dispatch(ctx, Job{
		Kind: KindWelcome,
		To:   to,
		Send: func(ctx context.Context) error {
			return n.SendWelcome(ctx, to, name)
		},
	})
}

// Close stops accepting jobs and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.done)
		d.mu.Unlock()
		d.wg.Wait()
	})
}

func (d *Dispatcher) Stats() Stats {
	if d == nil {
		return Stats{}
	}
	return Stats{
		Sent:    d.sent.Load(),
		Failed:  d.failed.Load(),
		Dropped: d.dropped.Load(),
	}
}
