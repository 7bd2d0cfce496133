package host

import (
	"context"
	"sync"
)

// Recorder keeps every sent envelope in memory.
type Recorder struct {
	mu     sync.Mutex
	sent   []Envelope
	fail   error
	closed bool
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Send records the envelope, or returns the configured failure.
func (r *Recorder) Send(_ context.Context, channel, name, payload string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrTransportClosed
	}
	if r.fail != nil {
		return r.fail
	}
	r.sent = append(r.sent, Envelope{Channel: channel, Name: name, Payload: payload})
	return nil
}

// FailWith makes subsequent sends return err. A nil err restores delivery.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	r.fail = err
	r.mu.Unlock()
}

// Sent returns a copy of the recorded envelopes.
func (r *Recorder) Sent() []Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Envelope, len(r.sent))
	copy(out, r.sent)
	return out
}

// Reset drops recorded envelopes.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.sent = nil
	r.mu.Unlock()
}

// Close stops the recorder.
func (r *Recorder) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}
