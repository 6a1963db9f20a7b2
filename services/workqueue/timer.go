// Package workqueue implements the deferred-work runners behind the
// reminder scheduler.
package workqueue

import (
	"sync"
	"time"

	"github.com/oscardm22/estuguia/core/reminder"
)

// TimerRunner runs deferred jobs on process-local timers. Jobs do not
// survive process death; the periodic reminder sweep re-arms whatever a
// restart loses.
type TimerRunner struct {
	mu      sync.Mutex
	pending map[string]*time.Timer
	handler func(reminder.Job)
}

var _ reminder.Runner = (*TimerRunner)(nil)

func NewTimerRunner() *TimerRunner {
	return &TimerRunner{pending: make(map[string]*time.Timer)}
}

// SetHandler wires the job body. Must be called before the first Enqueue.
func (r *TimerRunner) SetHandler(handler func(reminder.Job)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler = handler
}

// Enqueue arms one timer under the tag; an existing timer under the same
// tag is replaced.
func (r *TimerRunner) Enqueue(tag string, delay time.Duration, job reminder.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.pending[tag]; ok {
		t.Stop()
	}
	r.pending[tag] = time.AfterFunc(delay, func() {
		r.mu.Lock()
		delete(r.pending, tag)
		handler := r.handler
		r.mu.Unlock()

		if handler != nil {
			handler(job)
		}
	})
	return nil
}

// Cancel stops any pending timer under the tag; no-op when nothing is pending.
func (r *TimerRunner) Cancel(tag string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.pending[tag]; ok {
		t.Stop()
		delete(r.pending, tag)
	}
}

// CancelAll stops every pending timer.
func (r *TimerRunner) CancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for tag, t := range r.pending {
		t.Stop()
		delete(r.pending, tag)
	}
}

// PendingCount reports how many timers are armed.
func (r *TimerRunner) PendingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
