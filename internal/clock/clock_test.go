package clock

import (
	"sync"
	"testing"
	"time"
)

func TestFakeFiresDueCallbacks(t *testing.T) {
	f := NewFake(time.Unix(0, 0))

	var mu sync.Mutex
	got := map[string]bool{}
	mark := func(s string) func() {
		return func() {
			mu.Lock()
			got[s] = true
			mu.Unlock()
		}
	}
	f.AfterFunc(300*time.Millisecond, mark("c"))
	f.AfterFunc(100*time.Millisecond, mark("a"))
	f.AfterFunc(200*time.Millisecond, mark("b"))

	f.Advance(250 * time.Millisecond)
	if len(got) != 2 || !got["a"] || !got["b"] {
		t.Fatalf("expected a and b, got %v", got)
	}
	if !f.Now().Equal(time.Unix(0, 0).Add(250 * time.Millisecond)) {
		t.Errorf("unexpected now %v", f.Now())
	}
	if f.Pending() != 1 {
		t.Errorf("expected 1 pending timer, got %d", f.Pending())
	}

	f.Advance(50 * time.Millisecond)
	if !got["c"] {
		t.Fatalf("expected c to fire, got %v", got)
	}
}

func TestFakeStop(t *testing.T) {
	f := NewFake(time.Unix(0, 0))

	fired := false
	tm := f.AfterFunc(time.Second, func() { fired = true })
	if !tm.Stop() {
		t.Fatal("expected Stop to report a pending timer")
	}
	if tm.Stop() {
		t.Error("second Stop should report false")
	}

	f.Advance(2 * time.Second)
	if fired {
		t.Error("stopped timer fired")
	}
	if f.Pending() != 0 {
		t.Errorf("expected no pending timers, got %d", f.Pending())
	}
}

func TestFakeCallbackCanRearm(t *testing.T) {
	f := NewFake(time.Unix(0, 0))

	count := 0
	var arm func()
	arm = func() {
		f.AfterFunc(100*time.Millisecond, func() {
			count++
			arm()
		})
	}
	arm()

	for range 45 {
		f.Advance(10 * time.Millisecond)
	}
	if count != 4 {
		t.Errorf("expected 4 fires, got %d", count)
	}
	if f.Pending() != 1 {
		t.Errorf("expected 1 pending timer, got %d", f.Pending())
	}
}

func TestRealAfterFunc(t *testing.T) {
	c := NewReal()
	done := make(chan struct{})
	c.AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("real timer did not fire")
	}
}
