package relay

import "sync"

// Room name helpers. Personal rooms are auto-joined on connect;
// conversation and stream rooms are joined explicitly.
func UserRoom(userID string) string         { return "user:" + userID }
func ConversationRoom(convID string) string { return "conversation:" + convID }
func StreamRoom(streamID string) string     { return "stream:" + streamID }

// Rooms is the broadcast directory: room name -> set of connections, with
// a reverse index so one disconnect can unwind every membership. Rooms are
// created lazily and deleted when empty.
type Rooms struct {
	mu    sync.RWMutex
	rooms map[string]map[Conn]struct{}
	conns map[Conn]map[string]struct{}
}

func NewRooms() *Rooms {
	return &Rooms{
		rooms: make(map[string]map[Conn]struct{}),
		conns: make(map[Conn]map[string]struct{}),
	}
}

func (r *Rooms) Join(room string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs, ok := r.rooms[room]
	if !ok {
		rs = make(map[Conn]struct{})
		r.rooms[room] = rs
	}
	rs[c] = struct{}{}

	cs, ok := r.conns[c]
	if !ok {
		cs = make(map[string]struct{})
		r.conns[c] = cs
	}
	cs[room] = struct{}{}
}

func (r *Rooms) Leave(room string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(room, c)
}

func (r *Rooms) leaveLocked(room string, c Conn) {
	if rs, ok := r.rooms[room]; ok {
		delete(rs, c)
		if len(rs) == 0 {
			delete(r.rooms, room)
		}
	}
	if cs, ok := r.conns[c]; ok {
		delete(cs, room)
		if len(cs) == 0 {
			delete(r.conns, c)
		}
	}
}

// DropConn removes the connection from every room and returns the rooms it
// was in.
func (r *Rooms) DropConn(c Conn) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	cs, ok := r.conns[c]
	if !ok {
		return nil
	}
	rooms := make([]string, 0, len(cs))
	for room := range cs {
		rooms = append(rooms, room)
	}
	for _, room := range rooms {
		r.leaveLocked(room, c)
	}
	return rooms
}

// Broadcast sends the event to every connection in the room, best-effort.
// exclude may be nil.
func (r *Rooms) Broadcast(room string, ev Event, exclude Conn) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rs, ok := r.rooms[room]; ok {
		for c := range rs {
			if c == exclude {
				continue
			}
			_ = c.Send(ev)
		}
	}
}

func (r *Rooms) Size(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}
