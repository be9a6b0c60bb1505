package relay

import (
	"context"
	"log/slog"
	"time"

	"github.com/cwrk-planet/relay-service/internal/domain"
)

// UserStore is the slice of the durable store the router needs for
// presence side effects.
type UserStore interface {
	UserWithFriends(ctx context.Context, id string) (*domain.User, error)
	SetOnlineStatus(ctx context.Context, id string, online bool, lastSeen time.Time) error
}

// MessageStore persists messages, read state and reactions.
type MessageStore interface {
	Conversation(ctx context.Context, id string) (*domain.Conversation, error)
	Save(ctx context.Context, convID, senderID, content string, replyTo, mediaURL *string) (*domain.Message, error)
	TouchLastMessage(ctx context.Context, m *domain.Message) error
	MarkRead(ctx context.Context, convID, readerID string, messageIDs []string) error
	React(ctx context.Context, messageID, userID, emoji string) (string, []domain.Reaction, error)
}

// CallStore is the durable call record with its lifecycle transitions.
type CallStore interface {
	Initiate(ctx context.Context, callerID, recipientID string, callType domain.CallType) (*domain.Call, error)
	Answer(ctx context.Context, id string) (*domain.Call, error)
	End(ctx context.Context, id, reason string) (*domain.Call, error)
	Reject(ctx context.Context, id, reason string) (*domain.Call, error)
	MarkAsMissed(ctx context.Context, id string) (*domain.Call, error)
}

// NotificationSink receives best-effort notifications for absent
// recipients. May be nil; delivery failures never fail the caller.
type NotificationSink interface {
	CreateNotification(ctx context.Context, n domain.Notification) error
}

// Router validates and dispatches inbound events, owning the in-memory
// relay state: presence, rooms, typing timers and call sessions.
type Router struct {
	presence *Presence
	rooms    *Rooms
	typing   *TypingTimers
	sessions *CallSessions
	idLocks  *keyedMutex

	users    UserStore
	messages MessageStore
	calls    CallStore
	sink     NotificationSink
}

func NewRouter(users UserStore, messages MessageStore, calls CallStore, sink NotificationSink, typingDebounce time.Duration) *Router {
	return &Router{
		presence: NewPresence(),
		rooms:    NewRooms(),
		typing:   NewTypingTimers(typingDebounce),
		sessions: NewCallSessions(),
		idLocks:  newKeyedMutex(),
		users:    users,
		messages: messages,
		calls:    calls,
		sink:     sink,
	}
}

// Connect registers an authenticated connection: presence entry (overwrite
// semantics), personal room, online status, friend fan-out. The replaced
// connection, if any, is closed and dropped from its rooms.
func (r *Router) Connect(ctx context.Context, c Conn) {
	uid := c.UserID()
	unlock := r.idLocks.Lock(uid)
	defer unlock()

	if prior := r.presence.Register(uid, c); prior != nil {
		r.rooms.DropConn(prior)
		_ = prior.Close()
		slog.Debug("presence entry replaced", "user", uid)
	}

	r.rooms.Join(UserRoom(uid), c)

	now := time.Now()
	if err := r.users.SetOnlineStatus(ctx, uid, true, now); err != nil {
		slog.Warn("set online status failed", "user", uid, "err", err)
	}
	r.broadcastPresence(ctx, uid, true, now)
}

// Disconnect unwinds everything the connection touched. Presence removal
// happens before any broadcast so a racing lookup cannot find a stale
// entry. A connection replaced by a reconnect only drops its own room
// memberships.
func (r *Router) Disconnect(ctx context.Context, c Conn) {
	uid := c.UserID()
	unlock := r.idLocks.Lock(uid)
	defer unlock()

	removed := r.presence.Unregister(uid, c)

	if removed {
		for _, convID := range r.typing.StopUser(uid) {
			r.rooms.Broadcast(ConversationRoom(convID), Event{
				Type:    TypeTypingStop,
				Payload: TypingEventPayload{ConversationID: convID, UserID: uid},
			}, c)
		}

		for _, sess := range r.sessions.TakeByUser(uid) {
			if other, ok := r.presence.Lookup(sess.Other(uid)); ok {
				_ = other.Send(Event{
					Type:    TypeCallEnded,
					Payload: CallClosedPayload{CallID: sess.ID, Reason: "disconnect"},
				})
			}
			if _, err := r.calls.End(ctx, sess.ID, "disconnect"); err != nil {
				slog.Debug("end call on disconnect failed", "call", sess.ID, "err", err)
			}
		}
	}

	r.rooms.DropConn(c)

	if removed {
		now := time.Now()
		if err := r.users.SetOnlineStatus(ctx, uid, false, now); err != nil {
			slog.Warn("set offline status failed", "user", uid, "err", err)
		}
		r.broadcastPresence(ctx, uid, false, now)
	}
}

// HandleEvent dispatches one inbound event. Unknown kinds are ignored.
func (r *Router) HandleEvent(ctx context.Context, c Conn, ev Event) {
	switch ev.Type {
	case TypeJoinConversation:
		var p ConversationPayload
		if decode(ev.Payload, &p) == nil && p.ConversationID != "" {
			r.handleJoinConversation(ctx, c, p)
		}
	case TypeLeaveConversation:
		var p ConversationPayload
		if decode(ev.Payload, &p) == nil && p.ConversationID != "" {
			r.rooms.Leave(ConversationRoom(p.ConversationID), c)
		}
	case TypeSendMessage:
		var p SendMessagePayload
		if decode(ev.Payload, &p) == nil && p.ConversationID != "" {
			r.handleSendMessage(ctx, c, p)
		}
	case TypeTypingStart:
		var p ConversationPayload
		if decode(ev.Payload, &p) == nil && p.ConversationID != "" {
			r.handleTypingStart(c, p.ConversationID)
		}
	case TypeTypingStop:
		var p ConversationPayload
		if decode(ev.Payload, &p) == nil && p.ConversationID != "" {
			r.handleTypingStop(c, p.ConversationID)
		}
	case TypeMarkRead:
		var p MarkReadPayload
		if decode(ev.Payload, &p) == nil && p.ConversationID != "" {
			r.handleMarkRead(ctx, c, p)
		}
	case TypeMessageReaction:
		var p ReactionPayload
		if decode(ev.Payload, &p) == nil && p.MessageID != "" {
			r.handleReaction(ctx, c, p)
		}
	case TypeInitiateCall:
		var p InitiateCallPayload
		if decode(ev.Payload, &p) == nil && p.TargetID != "" {
			r.handleInitiateCall(ctx, c, p)
		}
	case TypeAnswerCall:
		var p AnswerCallPayload
		if decode(ev.Payload, &p) == nil && p.CallID != "" {
			r.handleAnswerCall(ctx, c, p)
		}
	case TypeRejectCall:
		var p CallIDPayload
		if decode(ev.Payload, &p) == nil && p.CallID != "" {
			r.handleRejectCall(ctx, c, p.CallID)
		}
	case TypeEndCall:
		var p CallIDPayload
		if decode(ev.Payload, &p) == nil && p.CallID != "" {
			r.handleEndCall(ctx, c, p.CallID)
		}
	case TypeICECandidate:
		var p ICECandidatePayload
		if decode(ev.Payload, &p) == nil && p.TargetID != "" {
			r.handleICECandidate(c, p)
		}
	case TypeJoinStream:
		var p StreamPayload
		if decode(ev.Payload, &p) == nil && p.StreamID != "" {
			r.handleJoinStream(c, p.StreamID)
		}
	case TypeLeaveStream:
		var p StreamPayload
		if decode(ev.Payload, &p) == nil && p.StreamID != "" {
			r.handleLeaveStream(c, p.StreamID)
		}
	case TypeStreamComment:
		var p StreamCommentPayload
		if decode(ev.Payload, &p) == nil && p.StreamID != "" {
			r.handleStreamComment(c, p)
		}
	default:
		slog.Debug("unknown event type", "type", ev.Type)
	}
}

// ViewerCount reads the stream room size at call time.
func (r *Router) ViewerCount(streamID string) int {
	return r.rooms.Size(StreamRoom(streamID))
}

// Online reports whether the identity has a live presence entry.
func (r *Router) Online(userID string) bool {
	return r.presence.Online(userID)
}

// broadcastPresence delivers a presence-changed event to every friend that
// is currently present. Presence mutation has already happened by the time
// this runs.
func (r *Router) broadcastPresence(ctx context.Context, userID string, online bool, at time.Time) {
	u, err := r.users.UserWithFriends(ctx, userID)
	if err != nil {
		slog.Warn("load friends failed", "user", userID, "err", err)
		return
	}

	kind := TypeFriendOffline
	if online {
		kind = TypeFriendOnline
	}
	ev := Event{
		Type:    kind,
		Payload: FriendPresencePayload{UserID: userID, Online: online, LastSeen: at},
	}
	for _, fid := range u.Friends {
		if fc, ok := r.presence.Lookup(fid); ok {
			_ = fc.Send(ev)
		}
	}
}

// notify hands a notification to the sink without blocking or failing the
// caller.
func (r *Router) notify(n domain.Notification) {
	if r.sink == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.sink.CreateNotification(ctx, n); err != nil {
			slog.Warn("notification create failed",
				"recipient", n.Recipient, "type", n.Type, "err", err)
		}
	}()
}
