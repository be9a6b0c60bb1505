package relay

import (
	"sync"
	"testing"
)

// fakeConn is shared by the relay package tests.
type fakeConn struct {
	mu     sync.Mutex
	id     string
	userID string
	events []Event
	closed bool
}

func newFakeConn(id, userID string) *fakeConn {
	return &fakeConn{id: id, userID: userID}
}

func (c *fakeConn) Send(ev Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) ID() string     { return c.id }
func (c *fakeConn) UserID() string { return c.userID }

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// eventsOfType returns the payloads of all recorded events of one kind.
func (c *fakeConn) eventsOfType(kind string) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Event
	for _, ev := range c.events {
		if ev.Type == kind {
			out = append(out, ev)
		}
	}
	return out
}

func TestPresenceRegisterOverwrites(t *testing.T) {
	p := NewPresence()

	c1 := newFakeConn("conn-1", "alice")
	c2 := newFakeConn("conn-2", "alice")

	if prior := p.Register("alice", c1); prior != nil {
		t.Fatalf("first register returned a prior conn")
	}
	prior := p.Register("alice", c2)
	if prior != c1 {
		t.Fatalf("expected prior conn-1, got %v", prior)
	}

	got, ok := p.Lookup("alice")
	if !ok || got != c2 {
		t.Fatalf("expected most-recent handle, got %v ok=%v", got, ok)
	}
}

func TestPresenceUnregisterIsConnGuarded(t *testing.T) {
	p := NewPresence()

	c1 := newFakeConn("conn-1", "alice")
	c2 := newFakeConn("conn-2", "alice")
	p.Register("alice", c1)
	p.Register("alice", c2)

	// the replaced connection's cleanup must not evict the successor
	if p.Unregister("alice", c1) {
		t.Fatalf("stale conn unregistered the live entry")
	}
	if !p.Online("alice") {
		t.Fatalf("alice should still be online")
	}

	if !p.Unregister("alice", c2) {
		t.Fatalf("live conn failed to unregister")
	}
	if p.Online("alice") {
		t.Fatalf("alice should be offline")
	}
}

func TestPresenceLookupAbsent(t *testing.T) {
	p := NewPresence()
	if _, ok := p.Lookup("nobody"); ok {
		t.Fatalf("lookup of absent identity returned ok")
	}
}
