package ajax

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultRedirectDelay is how long the page waits after the last request
// completes before navigating.
const DefaultRedirectDelay = 500 * time.Millisecond

// Navigator replaces the current page with target.
type Navigator interface {
	Navigate(ctx context.Context, target string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, target string) error

// Navigate implements Navigator.
func (f NavigatorFunc) Navigate(ctx context.Context, target string) error {
	return f(ctx, target)
}

// IdleRedirect navigates to a fixed target a short delay after every idle
// signal of the tracker it is attached to.
type IdleRedirect struct {
	ctx    context.Context
	nav    Navigator
	target string
	delay  time.Duration
	log    *slog.Logger

	mu        sync.Mutex
	timers    []*time.Timer
	once      sync.Once
	navigated chan struct{}
	err       error
}

// NewIdleRedirect creates a redirect to target. A zero delay uses
// DefaultRedirectDelay; a nil logger uses slog.Default.
func NewIdleRedirect(ctx context.Context, nav Navigator, target string, delay time.Duration, log *slog.Logger) *IdleRedirect {
	if delay <= 0 {
		delay = DefaultRedirectDelay
	}
	if log == nil {
		log = slog.Default()
	}
	return &IdleRedirect{
		ctx:       ctx,
		nav:       nav,
		target:    target,
		delay:     delay,
		log:       log,
		navigated: make(chan struct{}),
	}
}

// Attach subscribes the redirect to t's idle signal.
func (r *IdleRedirect) Attach(t *ActivityTracker) *IdleRedirect {
	t.OnIdle(r.schedule)
	return r
}

func (r *IdleRedirect) schedule() {
	r.log.Info("ajaxStop is executed...", "target", r.target, "delay", r.delay.String())

	r.mu.Lock()
	defer r.mu.Unlock()
	r.timers = append(r.timers, time.AfterFunc(r.delay, r.navigate))
}

func (r *IdleRedirect) navigate() {
	err := r.nav.Navigate(r.ctx, r.target)
	if err != nil {
		r.log.Warn("navigation failed", "target", r.target, "error", err)
	}
	r.once.Do(func() {
		r.err = err
		close(r.navigated)
	})
}

// Wait blocks until the first navigation has finished or ctx ends.
func (r *IdleRedirect) Wait(ctx context.Context) error {
	select {
	case <-r.navigated:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop cancels navigations that have not started yet.
func (r *IdleRedirect) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.timers {
		t.Stop()
	}
	r.timers = nil
}
