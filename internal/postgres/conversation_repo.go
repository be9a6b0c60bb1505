package postgres

import (
	"context"
	"time"

	"github.com/cwrk-planet/relay-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ConversationRepository struct {
	db *pgxpool.Pool
}

func NewConversationRepository(db *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Get loads a conversation with its participant ids.
func (r *ConversationRepository) Get(ctx context.Context, id string) (*domain.Conversation, error) {
	var c domain.Conversation
	err := r.db.QueryRow(ctx, `
		SELECT id, is_group, last_message, last_message_at, created_at
		FROM conversations WHERE id=$1
	`, id).Scan(&c.ID, &c.IsGroup, &c.LastMessage, &c.LastMessageAt, &c.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrConversationNotFound
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT user_id FROM conversation_participants WHERE conversation_id=$1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		c.Participants = append(c.Participants, uid)
	}
	return &c, rows.Err()
}

func (r *ConversationRepository) TouchLastMessage(ctx context.Context, id, preview string, at time.Time) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE conversations SET last_message=$2, last_message_at=$3 WHERE id=$1`,
		id, preview, at)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConversationNotFound
	}
	return nil
}
