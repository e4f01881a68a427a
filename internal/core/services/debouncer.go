package services

import (
	"sync"
	"time"
)

type pendingCall struct {
	timer *time.Timer
	gen   uint64
	fn    func()
}

// Debouncer coalesces calls per key: fn runs once, delay after the last Schedule for
// that key. Scheduling again before the delay elapses drops the earlier fn.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	gen     uint64
	pending map[string]*pendingCall
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay, pending: map[string]*pendingCall{}}
}

func (d *Debouncer) Schedule(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending[key] = &pendingCall{
		gen: gen,
		fn:  fn,
		timer: time.AfterFunc(d.delay, func() {
			d.mu.Lock()
			p, ok := d.pending[key]
			if !ok || p.gen != gen {
				d.mu.Unlock()
				return
			}
			delete(d.pending, key)
			d.mu.Unlock()
			p.fn()
		}),
	}
}

// Pending reports how many keys are waiting to fire.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Flush runs every pending call now, in no particular order, and returns how many ran.
func (d *Debouncer) Flush() int {
	d.mu.Lock()
	calls := make([]func(), 0, len(d.pending))
	for key, p := range d.pending {
		p.timer.Stop()
		calls = append(calls, p.fn)
		delete(d.pending, key)
	}
	d.mu.Unlock()

	for _, fn := range calls {
		fn()
	}
	return len(calls)
}
