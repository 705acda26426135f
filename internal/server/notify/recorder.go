package notify

import (
	"context"
	"sync"
)

// Sent is one message captured by a Recorder.
type Sent struct {
	Kind string
	To   string
	Name string
	// Code holds the OTP for KindOTP and the link for KindReset.
	Code string
}

// Recorder is an in-memory Notifier that keeps every message.
type Recorder struct {
	mu   sync.Mutex
	sent []Sent
	errs map[string]error
}

func NewRecorder() *Recorder {
	return &Recorder{errs: make(map[string]error)}
}

// Fail makes subsequent sends of kind return err. A nil err clears it.
func (r *Recorder) Fail(kind string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.errs, kind)
		return
	}
	r.errs[kind] = err
}

func (r *Recorder) SendOTP(_ context.Context, to, name, code string) error {
	return r.record(Sent{Kind: KindOTP, To: to, Name: name, Code: code})
}

func (r *Recorder) SendPasswordReset(_ context.Context, to, name, resetURL string) error {
	return r.record(Sent{Kind: KindReset, To: to, Name: name, Code: resetURL})
}

func (r *Recorder) SendWelcome(_ context.Context, to, name string) error {
	return r.record(Sent{Kind: KindWelcome, To: to, Name: name})
}

func (r *Recorder) record(s Sent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.errs[s.Kind]; err != nil {
		return err
	}
	r.sent = append(r.sent, s)
	return nil
}

// Sent returns a copy of everything recorded so far.
func (r *Recorder) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sent, len(r.sent))
	copy(out, r.sent)
	return out
}

// Last returns the most recent message of kind sent to addr.
func (r *Recorder) Last(kind, addr string) (Sent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.sent) - 1; i >= 0; i-- {
		if r.sent[i].Kind == kind && r.sent[i].To == addr {
			return r.sent[i], true
		}
	}
	return Sent{}, false
}
