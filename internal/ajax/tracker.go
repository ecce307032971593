package ajax

import "sync"

// ActivityTracker counts in-flight requests for the whole page and notifies
// idle observers each time the count drops back to zero.
//
// A nil *ActivityTracker is valid and tracks nothing.
type ActivityTracker struct {
	mu        sync.Mutex
	active    int
	observers []func()
}

// NewActivityTracker creates an idle tracker with no observers.
func NewActivityTracker() *ActivityTracker {
	return &ActivityTracker{}
}

// Begin marks one more request as in flight.
func (t *ActivityTracker) Begin() {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.active++
	t.mu.Unlock()
}

// End marks a request as finished. When it was the last one, every idle
// observer runs, outside the tracker's lock, in registration order.
func (t *ActivityTracker) End() {
	if t == nil {
		return
	}
	t.mu.Lock()
	if t.active == 0 {
		t.mu.Unlock()
		return
	}
	t.active--
	var notify []func()
	if t.active == 0 {
		notify = make([]func(), len(t.observers))
		copy(notify, t.observers)
	}
	t.mu.Unlock()

	for _, fn := range notify {
		fn()
	}
}

// Active returns the number of requests in flight.
func (t *ActivityTracker) Active() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// OnIdle registers fn to run whenever all requests have completed.
func (t *ActivityTracker) OnIdle(fn func()) {
	if t == nil || fn == nil {
		return
	}
	t.mu.Lock()
	t.observers = append(t.observers, fn)
	t.mu.Unlock()
}
