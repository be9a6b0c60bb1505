package relay

import (
	"sort"
	"testing"
)

func TestRoomsJoinBroadcastLeave(t *testing.T) {
	rooms := NewRooms()

	a := newFakeConn("conn-a", "alice")
	b := newFakeConn("conn-b", "bob")

	room := ConversationRoom("conv-1")
	rooms.Join(room, a)
	rooms.Join(room, b)

	if got := rooms.Size(room); got != 2 {
		t.Fatalf("expected size 2, got %d", got)
	}

	rooms.Broadcast(room, Event{Type: TypeNewMessage}, nil)
	if len(a.eventsOfType(TypeNewMessage)) != 1 || len(b.eventsOfType(TypeNewMessage)) != 1 {
		t.Fatalf("broadcast did not reach all members")
	}

	rooms.Broadcast(room, Event{Type: TypeTypingStart}, a)
	if len(a.eventsOfType(TypeTypingStart)) != 0 {
		t.Fatalf("excluded conn received the broadcast")
	}
	if len(b.eventsOfType(TypeTypingStart)) != 1 {
		t.Fatalf("peer missed the broadcast")
	}

	rooms.Leave(room, a)
	rooms.Leave(room, b)
	if got := rooms.Size(room); got != 0 {
		t.Fatalf("expected empty room, got %d", got)
	}
}

func TestRoomsDropConn(t *testing.T) {
	rooms := NewRooms()
	a := newFakeConn("conn-a", "alice")

	rooms.Join(UserRoom("alice"), a)
	rooms.Join(ConversationRoom("conv-1"), a)
	rooms.Join(StreamRoom("stream-1"), a)

	dropped := rooms.DropConn(a)
	sort.Strings(dropped)
	want := []string{ConversationRoom("conv-1"), StreamRoom("stream-1"), UserRoom("alice")}
	sort.Strings(want)
	if len(dropped) != len(want) {
		t.Fatalf("expected %d rooms, got %v", len(want), dropped)
	}
	for i := range want {
		if dropped[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, dropped)
		}
	}

	for _, room := range want {
		if rooms.Size(room) != 0 {
			t.Fatalf("room %s not emptied", room)
		}
	}
	if again := rooms.DropConn(a); again != nil {
		t.Fatalf("second drop returned rooms: %v", again)
	}
}

func TestRoomsBroadcastToAbsentRoom(t *testing.T) {
	rooms := NewRooms()
	// no panic, no delivery
	rooms.Broadcast("conversation:ghost", Event{Type: TypeNewMessage}, nil)
	if rooms.Size("conversation:ghost") != 0 {
		t.Fatalf("absent room has a size")
	}
}
