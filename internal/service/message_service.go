package service

import (
	"context"
	"errors"
	"strings"

	"github.com/cwrk-planet/relay-service/internal/domain"
	"github.com/cwrk-planet/relay-service/internal/postgres"
)

const maxMessageLen = 4000

type MessageService struct {
	messageRepo *postgres.MessageRepository
	convRepo    *postgres.ConversationRepository
}

func NewMessageService(messageRepo *postgres.MessageRepository, convRepo *postgres.ConversationRepository) *MessageService {
	return &MessageService{messageRepo: messageRepo, convRepo: convRepo}
}

func (s *MessageService) Conversation(ctx context.Context, id string) (*domain.Conversation, error) {
	return s.convRepo.Get(ctx, id)
}

// Save persists a message. Content may be empty only when media is attached.
func (s *MessageService) Save(ctx context.Context, convID, senderID, content string, replyTo, mediaURL *string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" && mediaURL == nil {
		return nil, errors.New("empty message")
	}
	if len(content) > maxMessageLen {
		return nil, errors.New("message too long")
	}
	return s.messageRepo.Save(ctx, convID, senderID, content, replyTo, mediaURL)
}

// TouchLastMessage updates the conversation preview after a successful save.
func (s *MessageService) TouchLastMessage(ctx context.Context, m *domain.Message) error {
	preview := m.Content
	if preview == "" {
		preview = "sent media"
	}
	return s.convRepo.TouchLastMessage(ctx, m.ConversationID, preview, m.CreatedAt)
}

func (s *MessageService) MarkRead(ctx context.Context, convID, readerID string, messageIDs []string) error {
	return s.messageRepo.MarkRead(ctx, convID, readerID, messageIDs)
}

// React replaces the user's reaction on a message and returns the message's
// conversation id with the updated reaction set.
func (s *MessageService) React(ctx context.Context, messageID, userID, emoji string) (string, []domain.Reaction, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return "", nil, errors.New("empty emoji")
	}
	return s.messageRepo.SetReaction(ctx, messageID, userID, emoji)
}

func (s *MessageService) History(ctx context.Context, convID, after string, limit int) ([]domain.Message, string, error) {
	return s.messageRepo.History(ctx, convID, after, limit)
}
