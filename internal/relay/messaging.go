package relay

import (
	"context"
	"errors"
	"log/slog"
	"unicode/utf8"

	"github.com/cwrk-planet/relay-service/internal/domain"
)

const notificationPreviewLen = 80

func (r *Router) handleJoinConversation(ctx context.Context, c Conn, p ConversationPayload) {
	conv, err := r.messages.Conversation(ctx, p.ConversationID)
	if err != nil {
		if !errors.Is(err, domain.ErrConversationNotFound) {
			slog.Warn("conversation lookup failed", "conversation", p.ConversationID, "err", err)
		}
		return
	}
	// fail closed: only participants may join a conversation room
	if !conv.HasParticipant(c.UserID()) {
		return
	}
	r.rooms.Join(ConversationRoom(p.ConversationID), c)
}

func (r *Router) handleSendMessage(ctx context.Context, c Conn, p SendMessagePayload) {
	uid := c.UserID()

	conv, err := r.messages.Conversation(ctx, p.ConversationID)
	if err != nil {
		if errors.Is(err, domain.ErrConversationNotFound) {
			return
		}
		slog.Error("conversation lookup failed", "conversation", p.ConversationID, "err", err)
		r.sendMessageError(c, p.ConversationID, "failed to send message")
		return
	}
	if !conv.HasParticipant(uid) {
		// silent drop, no information leak
		return
	}

	// durability before visibility
	msg, err := r.messages.Save(ctx, p.ConversationID, uid, p.Content, p.ReplyTo, p.MediaURL)
	if err != nil {
		slog.Error("message save failed", "conversation", p.ConversationID, "user", uid, "err", err)
		r.sendMessageError(c, p.ConversationID, "failed to send message")
		return
	}
	if err := r.messages.TouchLastMessage(ctx, msg); err != nil {
		slog.Warn("touch last message failed", "conversation", p.ConversationID, "err", err)
	}

	r.rooms.Broadcast(ConversationRoom(p.ConversationID), Event{
		Type: TypeNewMessage,
		Payload: NewMessagePayload{
			ID:             msg.ID,
			ConversationID: msg.ConversationID,
			SenderID:       msg.SenderID,
			Content:        msg.Content,
			ReplyTo:        msg.ReplyTo,
			MediaURL:       msg.MediaURL,
			CreatedAt:      msg.CreatedAt,
		},
	}, nil)

	preview := msg.Content
	if preview == "" {
		preview = "sent media"
	} else if utf8.RuneCountInString(preview) > notificationPreviewLen {
		runes := []rune(preview)
		preview = string(runes[:notificationPreviewLen]) + "…"
	}
	for _, participant := range conv.Participants {
		if participant == uid {
			continue
		}
		if _, present := r.presence.Lookup(participant); present {
			continue
		}
		r.notify(domain.Notification{
			Recipient:           participant,
			Sender:              uid,
			Type:                domain.NotificationTypeMessage,
			Title:               "New message",
			Message:             preview,
			RelatedConversation: msg.ConversationID,
			RelatedMessage:      msg.ID,
		})
	}
}

func (r *Router) handleTypingStart(c Conn, convID string) {
	uid := c.UserID()
	armed := r.typing.Start(convID, uid, func() {
		// debounce expired without an explicit stop
		r.rooms.Broadcast(ConversationRoom(convID), Event{
			Type:    TypeTypingStop,
			Payload: TypingEventPayload{ConversationID: convID, UserID: uid},
		}, nil)
	})
	if !armed {
		return
	}
	r.rooms.Broadcast(ConversationRoom(convID), Event{
		Type:    TypeTypingStart,
		Payload: TypingEventPayload{ConversationID: convID, UserID: uid},
	}, c)
}

func (r *Router) handleTypingStop(c Conn, convID string) {
	uid := c.UserID()
	if !r.typing.Stop(convID, uid) {
		return
	}
	r.rooms.Broadcast(ConversationRoom(convID), Event{
		Type:    TypeTypingStop,
		Payload: TypingEventPayload{ConversationID: convID, UserID: uid},
	}, c)
}

func (r *Router) handleMarkRead(ctx context.Context, c Conn, p MarkReadPayload) {
	uid := c.UserID()

	conv, err := r.messages.Conversation(ctx, p.ConversationID)
	if err != nil {
		if !errors.Is(err, domain.ErrConversationNotFound) {
			slog.Warn("conversation lookup failed", "conversation", p.ConversationID, "err", err)
		}
		return
	}
	if !conv.HasParticipant(uid) {
		return
	}

	if err := r.messages.MarkRead(ctx, p.ConversationID, uid, p.MessageIDs); err != nil {
		slog.Error("mark read failed", "conversation", p.ConversationID, "user", uid, "err", err)
		return
	}

	r.rooms.Broadcast(ConversationRoom(p.ConversationID), Event{
		Type: TypeMessagesRead,
		Payload: MessagesReadPayload{
			ConversationID: p.ConversationID,
			ReaderID:       uid,
			MessageIDs:     p.MessageIDs,
		},
	}, c)
}

func (r *Router) handleReaction(ctx context.Context, c Conn, p ReactionPayload) {
	uid := c.UserID()

	convID, reactions, err := r.messages.React(ctx, p.MessageID, uid, p.Emoji)
	if err != nil {
		// absent message is benign: the peer may have deleted it already
		if !errors.Is(err, domain.ErrMessageNotFound) {
			slog.Error("reaction save failed", "message", p.MessageID, "user", uid, "err", err)
		}
		return
	}

	items := make([]ReactionItem, 0, len(reactions))
	for _, re := range reactions {
		items = append(items, ReactionItem{UserID: re.UserID, Emoji: re.Emoji})
	}
	r.rooms.Broadcast(ConversationRoom(convID), Event{
		Type: TypeMessageReactionUpdated,
		Payload: ReactionUpdatedPayload{
			MessageID:      p.MessageID,
			ConversationID: convID,
			Reactions:      items,
		},
	}, nil)
}

func (r *Router) sendMessageError(c Conn, convID, msg string) {
	_ = c.Send(Event{
		Type:    TypeMessageError,
		Payload: MessageErrorPayload{ConversationID: convID, Error: msg},
	})
}
