package postgres

import (
	"context"
	"fmt"

	"github.com/cwrk-planet/relay-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Save(ctx context.Context, convID, senderID, content string, replyTo, mediaURL *string) (*domain.Message, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO messages (conversation_id, sender_id, content, reply_to, media_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, conversation_id, sender_id, content, reply_to, media_url, created_at
	`, convID, senderID, content, replyTo, mediaURL)

	var m domain.Message
	if err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.ReplyTo, &m.MediaURL, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// MarkRead records read state for a batch of messages, scoped to one reader
// and one conversation. Re-reading an already-read message is a no-op.
func (r *MessageRepository) MarkRead(ctx context.Context, convID, readerID string, messageIDs []string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO message_reads (message_id, user_id)
		SELECT m.id, $2
		FROM messages m
		WHERE m.conversation_id = $1 AND m.id = ANY($3)
		ON CONFLICT DO NOTHING
	`, convID, readerID, messageIDs)
	return err
}

// SetReaction replaces the user's reaction on the message (at most one per
// user per message) and returns the message's conversation id plus the full
// updated reaction set.
func (r *MessageRepository) SetReaction(ctx context.Context, messageID, userID, emoji string) (string, []domain.Reaction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return "", nil, err
	}
	defer tx.Rollback(ctx)

	var convID string
	if err := tx.QueryRow(ctx,
		`SELECT conversation_id FROM messages WHERE id=$1 FOR UPDATE`, messageID).Scan(&convID); err != nil {
		if err == pgx.ErrNoRows {
			return "", nil, domain.ErrMessageNotFound
		}
		return "", nil, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO message_reactions (message_id, user_id, emoji)
		VALUES ($1, $2, $3)
		ON CONFLICT (message_id, user_id) DO UPDATE SET emoji = EXCLUDED.emoji
	`, messageID, userID, emoji); err != nil {
		return "", nil, err
	}

	rows, err := tx.Query(ctx,
		`SELECT message_id, user_id, emoji FROM message_reactions WHERE message_id=$1`, messageID)
	if err != nil {
		return "", nil, err
	}
	defer rows.Close()

	var reactions []domain.Reaction
	for rows.Next() {
		var re domain.Reaction
		if err := rows.Scan(&re.MessageID, &re.UserID, &re.Emoji); err != nil {
			return "", nil, err
		}
		reactions = append(reactions, re)
	}
	if err := rows.Err(); err != nil {
		return "", nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", nil, err
	}
	return convID, reactions, nil
}

// History returns conversation messages with cursor pagination (created_at,id DESC).
func (r *MessageRepository) History(ctx context.Context, convID, after string, limit int) ([]domain.Message, string, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	cur, err := DecodeCursor(after)
	if err != nil {
		return nil, "", fmt.Errorf("decode cursor: %w", err)
	}

	const q = `
		SELECT id, conversation_id, sender_id, content, reply_to, media_url, created_at
		FROM messages
		WHERE conversation_id = $1
		  AND (
		    $2::timestamptz IS NULL
		    OR created_at < $2
		    OR (created_at = $2 AND id < $3)
		  )
		ORDER BY created_at DESC, id DESC
		LIMIT $4
	`

	var createdAt any
	var id any
	if cur != nil {
		createdAt = cur.CreatedAt
		id = cur.ID
	}

	rows, err := r.db.Query(ctx, q, convID, createdAt, id, limit)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.ReplyTo, &m.MediaURL, &m.CreatedAt); err != nil {
			return nil, "", err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	var next string
	if len(out) == limit {
		last := out[len(out)-1]
		if c, e := EncodeCursor(Cursor{CreatedAt: last.CreatedAt, ID: last.ID}); e == nil {
			next = c
		}
	}
	return out, next, nil
}
