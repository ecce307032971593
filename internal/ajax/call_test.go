package ajax

import (
	"context"
	"errors"
	"testing"
)

func TestCall_ThenRunsInOrder(t *testing.T) {
	release := make(chan struct{})
	c := Go(context.Background(), nil, func(ctx context.Context) Result[int] {
		<-release
		return ok(7)
	})

	var got []int
	c.Then(func(r Result[int]) { got = append(got, r.Value) }).
		Then(func(r Result[int]) { got = append(got, r.Value*2) })
	close(release)

	res := c.Wait()
	if res.Value != 7 {
		t.Errorf("Value = %d", res.Value)
	}
	if len(got) != 2 || got[0] != 7 || got[1] != 14 {
		t.Errorf("continuations saw %v", got)
	}
}

func TestCall_ThenAfterCompletion(t *testing.T) {
	c := Resolved(ok("done"))
	<-c.Done()

	ran := false
	c.Then(func(r Result[string]) { ran = r.Value == "done" })
	if !ran {
		t.Error("Then on a completed call should run immediately")
	}
}

func TestCall_TrackerCoversContinuations(t *testing.T) {
	tr := NewActivityTracker()
	release := make(chan struct{})
	var activeInThen int
	idle := make(chan struct{})
	tr.OnIdle(func() { close(idle) })

	c := Go(context.Background(), tr, func(ctx context.Context) Result[int] {
		<-release
		return ok(1)
	})
	c.Then(func(Result[int]) { activeInThen = tr.Active() })
	close(release)
	c.Wait()
	<-idle

	if activeInThen != 1 {
		t.Errorf("continuation ran with %d active, want 1", activeInThen)
	}
}

func TestResult_Err(t *testing.T) {
	if err := ok(1).Err(); err != nil {
		t.Errorf("ok result Err = %v", err)
	}

	f := newFailure(KindTransport, "GET", "http://x", 0, errors.New("refused"))
	r := failed[int](f)
	if r.OK() {
		t.Error("failed result reported OK")
	}
	var got *Failure
	if !errors.As(r.Err(), &got) || got.Kind != KindTransport {
		t.Errorf("Err = %v", r.Err())
	}
}

func TestNewFailure_Canceled(t *testing.T) {
	f := newFailure(KindTransport, "GET", "http://x", 0, context.DeadlineExceeded)
	if f.Kind != KindCanceled {
		t.Errorf("Kind = %s, want canceled", f.Kind)
	}
	if !errors.Is(f, context.DeadlineExceeded) {
		t.Error("failure should unwrap to the context error")
	}
}
