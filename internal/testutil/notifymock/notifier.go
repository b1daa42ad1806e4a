package notifymock

import (
	"context"
	"sync"

	"medquote-backend/internal/domain/notification"
)

var _ notification.Notifier = (*Recorder)(nil)

// Recorder captures messages instead of delivering them.
type Recorder struct {
	mu   sync.Mutex
	Msgs []notification.Message
}

func (r *Recorder) Notify(_ context.Context, msgs ...notification.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Msgs = append(r.Msgs, msgs...)
}

func (r *Recorder) OfType(t notification.Type) []notification.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notification.Message
	for _, m := range r.Msgs {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.Msgs = nil
	r.mu.Unlock()
}
