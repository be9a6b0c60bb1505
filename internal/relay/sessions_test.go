package relay

import (
	"testing"

	"github.com/cwrk-planet/relay-service/internal/domain"
)

func TestCallSessionsRemoveOnce(t *testing.T) {
	table := NewCallSessions()
	table.Create(CallSession{ID: "call-1", CallerID: "alice", RecipientID: "bob", CallType: domain.CallTypeAudio})

	if _, ok := table.Get("call-1"); !ok {
		t.Fatalf("session not found after create")
	}

	sess, ok := table.Remove("call-1")
	if !ok {
		t.Fatalf("first remove failed")
	}
	if sess.Other("alice") != "bob" || sess.Other("bob") != "alice" {
		t.Fatalf("counterpart resolution broken: %+v", sess)
	}

	if _, ok := table.Remove("call-1"); ok {
		t.Fatalf("second remove succeeded; terminal relay would duplicate")
	}
}

func TestCallSessionsTakeByUser(t *testing.T) {
	table := NewCallSessions()
	table.Create(CallSession{ID: "call-1", CallerID: "alice", RecipientID: "bob"})
	table.Create(CallSession{ID: "call-2", CallerID: "carol", RecipientID: "alice"})
	table.Create(CallSession{ID: "call-3", CallerID: "carol", RecipientID: "dave"})

	taken := table.TakeByUser("alice")
	if len(taken) != 2 {
		t.Fatalf("expected 2 sessions for alice, got %d", len(taken))
	}
	if _, ok := table.Get("call-3"); !ok {
		t.Fatalf("unrelated session was removed")
	}
	if again := table.TakeByUser("alice"); len(again) != 0 {
		t.Fatalf("second take returned sessions: %v", again)
	}
}
