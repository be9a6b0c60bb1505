package relay

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTypingDebounceFiresOnce(t *testing.T) {
	timers := NewTypingTimers(30 * time.Millisecond)

	var fired atomic.Int32
	if !timers.Start("conv-1", "alice", func() { fired.Add(1) }) {
		t.Fatalf("first start did not arm")
	}
	// second start within the window is a no-op, no reset, no duplicate
	if timers.Start("conv-1", "alice", func() { fired.Add(1) }) {
		t.Fatalf("second start armed a duplicate timer")
	}

	time.Sleep(90 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Fatalf("expected exactly one fire, got %d", got)
	}

	// key is cleared after firing, so a new start arms again
	if !timers.Start("conv-1", "alice", func() {}) {
		t.Fatalf("start after fire did not arm")
	}
}

func TestTypingStopCancels(t *testing.T) {
	timers := NewTypingTimers(30 * time.Millisecond)

	var fired atomic.Int32
	timers.Start("conv-1", "alice", func() { fired.Add(1) })

	if !timers.Stop("conv-1", "alice") {
		t.Fatalf("stop found no timer")
	}
	if timers.Stop("conv-1", "alice") {
		t.Fatalf("second stop found a timer")
	}

	time.Sleep(90 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Fatalf("cancelled timer fired %d times", got)
	}
}

func TestTypingKeysAreIndependent(t *testing.T) {
	timers := NewTypingTimers(time.Minute)

	if !timers.Start("conv-1", "alice", func() {}) {
		t.Fatalf("arm alice")
	}
	if !timers.Start("conv-1", "bob", func() {}) {
		t.Fatalf("bob's key collided with alice's")
	}
	if !timers.Start("conv-2", "alice", func() {}) {
		t.Fatalf("alice's second conversation collided")
	}
}

func TestTypingStopUser(t *testing.T) {
	timers := NewTypingTimers(time.Minute)

	timers.Start("conv-1", "alice", func() {})
	timers.Start("conv-2", "alice", func() {})
	timers.Start("conv-1", "bob", func() {})

	convs := timers.StopUser("alice")
	if len(convs) != 2 {
		t.Fatalf("expected 2 cancelled conversations, got %v", convs)
	}
	if !timers.Stop("conv-1", "bob") {
		t.Fatalf("bob's timer was cancelled by alice's cleanup")
	}
}
