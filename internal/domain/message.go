package domain

import "time"

type Message struct {
	ID             string    `db:"id"`
	ConversationID string    `db:"conversation_id"`
	SenderID       string    `db:"sender_id"`
	Content        string    `db:"content"`
	ReplyTo        *string   `db:"reply_to"`
	MediaURL       *string   `db:"media_url"`
	CreatedAt      time.Time `db:"created_at"`

	Reactions []Reaction
}

// Reaction is one user's emoji on a message; at most one per user per message.
type Reaction struct {
	MessageID string `db:"message_id"`
	UserID    string `db:"user_id"`
	Emoji     string `db:"emoji"`
}
