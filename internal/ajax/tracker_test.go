package ajax

import (
	"sync"
	"testing"
)

func TestActivityTracker_IdleOnLastEnd(t *testing.T) {
	tr := NewActivityTracker()
	var calls int
	tr.OnIdle(func() { calls++ })

	tr.Begin()
	tr.Begin()
	tr.End()
	if calls != 0 {
		t.Fatalf("idle fired with a request still in flight")
	}
	tr.End()
	if calls != 1 {
		t.Fatalf("idle fired %d times, want 1", calls)
	}

	// Unbalanced End is ignored.
	tr.End()
	if calls != 1 || tr.Active() != 0 {
		t.Errorf("unbalanced End changed state: calls=%d active=%d", calls, tr.Active())
	}
}

func TestActivityTracker_ObserverOrder(t *testing.T) {
	tr := NewActivityTracker()
	var order []int
	tr.OnIdle(func() { order = append(order, 1) })
	tr.OnIdle(func() { order = append(order, 2) })

	tr.Begin()
	tr.End()

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v", order)
	}
}

func TestActivityTracker_ObserverMayBegin(t *testing.T) {
	tr := NewActivityTracker()
	tr.OnIdle(func() {
		if tr.Active() == 0 {
			tr.Begin()
		}
	})
	tr.Begin()
	tr.End()
	if tr.Active() != 1 {
		t.Errorf("Active = %d, want 1", tr.Active())
	}
}

func TestActivityTracker_Nil(t *testing.T) {
	var tr *ActivityTracker
	tr.Begin()
	tr.End()
	tr.OnIdle(func() {})
	if tr.Active() != 0 {
		t.Error("nil tracker should report zero")
	}
}

func TestActivityTracker_Concurrent(t *testing.T) {
	tr := NewActivityTracker()
	var mu sync.Mutex
	calls := 0
	tr.OnIdle(func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	tr.Begin()
	for i := 0; i < 50; i++ {
		wg.Add(1)
		tr.Begin()
		go func() {
			defer wg.Done()
			tr.End()
		}()
	}
	wg.Wait()
	tr.End()

	if tr.Active() != 0 {
		t.Errorf("Active = %d", tr.Active())
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("idle fired %d times, want 1", calls)
	}
}
