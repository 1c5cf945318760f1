// Package mailertest provides a recording Mailer for tests.
package mailertest

import (
	"context"
	"sync"

	"github.com/kamiza/kamiza/internal/mailer"
)

// Recorder keeps every message it is asked to send. Err, when set, is
// returned from Send and the message is not recorded.
type Recorder struct {
	mu   sync.Mutex
	sent []mailer.Message
	Err  error
}

// Send implements mailer.Mailer.
func (r *Recorder) Send(ctx context.Context, msg mailer.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, msg)
	return nil
}

// Sent returns a copy of the recorded messages.
func (r *Recorder) Sent() []mailer.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]mailer.Message, len(r.sent))
	copy(out, r.sent)
	return out
}
