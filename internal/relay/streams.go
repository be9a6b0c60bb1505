package relay

import "time"

// Stream rooms are public: any authenticated connection may join, no
// participant check. Comments are never persisted by the relay.

func (r *Router) handleJoinStream(c Conn, streamID string) {
	room := StreamRoom(streamID)
	r.rooms.Join(room, c)
	r.broadcastViewerCount(streamID)
}

func (r *Router) handleLeaveStream(c Conn, streamID string) {
	room := StreamRoom(streamID)
	r.rooms.Leave(room, c)
	r.broadcastViewerCount(streamID)
}

func (r *Router) handleStreamComment(c Conn, p StreamCommentPayload) {
	if p.Comment == "" {
		return
	}
	r.rooms.Broadcast(StreamRoom(p.StreamID), Event{
		Type: TypeNewStreamComment,
		Payload: StreamCommentEventPayload{
			StreamID: p.StreamID,
			UserID:   c.UserID(),
			Comment:  p.Comment,
			SentAt:   time.Now(),
		},
	}, nil)
}

func (r *Router) broadcastViewerCount(streamID string) {
	room := StreamRoom(streamID)
	r.rooms.Broadcast(room, Event{
		Type:    TypeViewerCountUpdate,
		Payload: ViewerCountPayload{StreamID: streamID, Viewers: r.rooms.Size(room)},
	}, nil)
}
