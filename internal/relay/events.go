package relay

import (
	"encoding/json"
	"time"
)

// Inbound event kinds. The router switches over this closed set; unknown
// kinds are dropped.
const (
	TypeJoinConversation  = "join-conversation"
	TypeLeaveConversation = "leave-conversation"
	TypeSendMessage       = "send-message"
	TypeTypingStart       = "typing-start"
	TypeTypingStop        = "typing-stop"
	TypeMarkRead          = "mark-read"
	TypeMessageReaction   = "message-reaction"
	TypeInitiateCall      = "initiate-call"
	TypeAnswerCall        = "answer-call"
	TypeRejectCall        = "reject-call"
	TypeEndCall           = "end-call"
	TypeICECandidate      = "ice-candidate"
	TypeJoinStream        = "join-stream"
	TypeLeaveStream       = "leave-stream"
	TypeStreamComment     = "stream-comment"
)

// Outbound event kinds.
const (
	TypeNewMessage             = "new-message"
	TypeMessagesRead           = "messages-read"
	TypeMessageReactionUpdated = "message-reaction-updated"
	TypeMessageError           = "message-error"
	TypeIncomingCall           = "incoming-call"
	TypeCallAnswered           = "call-answered"
	TypeCallRejected           = "call-rejected"
	TypeCallEnded              = "call-ended"
	TypeViewerCountUpdate      = "viewer-count-update"
	TypeNewStreamComment       = "new-stream-comment"
	TypeFriendOnline           = "friend-online"
	TypeFriendOffline          = "friend-offline"
)

type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// decode re-marshals an envelope payload into its typed struct.
func decode(payload any, dst any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

// --- inbound payloads ---

type ConversationPayload struct {
	ConversationID string `json:"conversation_id"`
}

type SendMessagePayload struct {
	ConversationID string  `json:"conversation_id"`
	Content        string  `json:"content"`
	ReplyTo        *string `json:"reply_to,omitempty"`
	MediaURL       *string `json:"media_url,omitempty"`
}

type MarkReadPayload struct {
	ConversationID string   `json:"conversation_id"`
	MessageIDs     []string `json:"message_ids"`
}

type ReactionPayload struct {
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
}

type InitiateCallPayload struct {
	TargetID string          `json:"target_id"`
	CallType string          `json:"call_type"`
	Offer    json.RawMessage `json:"offer"`
}

type AnswerCallPayload struct {
	CallID string          `json:"call_id"`
	Answer json.RawMessage `json:"answer"`
}

type CallIDPayload struct {
	CallID string `json:"call_id"`
}

type ICECandidatePayload struct {
	TargetID  string          `json:"target_id"`
	CallID    string          `json:"call_id"`
	Candidate json.RawMessage `json:"candidate"`
}

type StreamPayload struct {
	StreamID string `json:"stream_id"`
}

type StreamCommentPayload struct {
	StreamID string `json:"stream_id"`
	Comment  string `json:"comment"`
}

// --- outbound payloads ---

type NewMessagePayload struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Content        string    `json:"content"`
	ReplyTo        *string   `json:"reply_to,omitempty"`
	MediaURL       *string   `json:"media_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type TypingEventPayload struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
}

type MessagesReadPayload struct {
	ConversationID string   `json:"conversation_id"`
	ReaderID       string   `json:"reader_id"`
	MessageIDs     []string `json:"message_ids"`
}

type ReactionItem struct {
	UserID string `json:"user_id"`
	Emoji  string `json:"emoji"`
}

type ReactionUpdatedPayload struct {
	MessageID      string         `json:"message_id"`
	ConversationID string         `json:"conversation_id"`
	Reactions      []ReactionItem `json:"reactions"`
}

type MessageErrorPayload struct {
	ConversationID string `json:"conversation_id"`
	Error          string `json:"error"`
}

type IncomingCallPayload struct {
	CallID   string          `json:"call_id"`
	CallerID string          `json:"caller_id"`
	CallType string          `json:"call_type"`
	Offer    json.RawMessage `json:"offer"`
}

type CallAnsweredPayload struct {
	CallID string          `json:"call_id"`
	Answer json.RawMessage `json:"answer"`
}

type CallClosedPayload struct {
	CallID string `json:"call_id,omitempty"`
	Reason string `json:"reason"`
}

type ICERelayPayload struct {
	CallID    string          `json:"call_id"`
	SenderID  string          `json:"sender_id"`
	Candidate json.RawMessage `json:"candidate"`
}

type ViewerCountPayload struct {
	StreamID string `json:"stream_id"`
	Viewers  int    `json:"viewers"`
}

type StreamCommentEventPayload struct {
	StreamID string    `json:"stream_id"`
	UserID   string    `json:"user_id"`
	Comment  string    `json:"comment"`
	SentAt   time.Time `json:"sent_at"`
}

type FriendPresencePayload struct {
	UserID   string    `json:"user_id"`
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"last_seen"`
}
