package ajax

import (
	"context"
	"sync"
)

// Call is a request running in the background. Continuations attached with
// Then run in the order they were attached, once the result is known.
type Call[T any] struct {
	mu     sync.Mutex
	done   chan struct{}
	ready  bool
	result Result[T]
	thens  []func(Result[T])
}

// Go runs fn in a new goroutine and returns its Call.
//
// The tracker, when not nil, counts the call as in flight until fn has
// returned and every continuation attached before completion has run.
func Go[T any](ctx context.Context, tracker *ActivityTracker, fn func(context.Context) Result[T]) *Call[T] {
	c := &Call[T]{done: make(chan struct{})}
	tracker.Begin()
	go func() {
		defer tracker.End()
		c.complete(fn(ctx))
	}()
	return c
}

// Resolved returns a Call that has already completed with r.
func Resolved[T any](r Result[T]) *Call[T] {
	c := &Call[T]{done: make(chan struct{})}
	c.complete(r)
	return c
}

func (c *Call[T]) complete(r Result[T]) {
	c.mu.Lock()
	c.result = r
	for len(c.thens) > 0 {
		pending := c.thens
		c.thens = nil
		c.mu.Unlock()
		for _, fn := range pending {
			fn(r)
		}
		c.mu.Lock()
	}
	c.ready = true
	c.mu.Unlock()
	close(c.done)
}

// Then attaches a continuation. If the call has already completed, fn runs
// immediately on the caller's goroutine.
func (c *Call[T]) Then(fn func(Result[T])) *Call[T] {
	c.mu.Lock()
	if !c.ready {
		c.thens = append(c.thens, fn)
		c.mu.Unlock()
		return c
	}
	r := c.result
	c.mu.Unlock()
	fn(r)
	return c
}

// Done is closed once the result and its pending continuations are finished.
func (c *Call[T]) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the call is done and returns its result.
func (c *Call[T]) Wait() Result[T] {
	<-c.done
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}
