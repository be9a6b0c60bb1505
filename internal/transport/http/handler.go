package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cwrk-planet/relay-service/internal/domain"
	"github.com/cwrk-planet/relay-service/internal/postgres"
	"github.com/cwrk-planet/relay-service/internal/relay"
	"github.com/cwrk-planet/relay-service/internal/service"
	httpmw "github.com/cwrk-planet/relay-service/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	router     *relay.Router
	messageSvc *service.MessageService
}

func NewHandler(router *relay.Router, messageSvc *service.MessageService) *Handler {
	return &Handler{router: router, messageSvc: messageSvc}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GET /streams/{id}/viewers — room size at call time, eventually consistent.
func (h *Handler) StreamViewers(w http.ResponseWriter, r *http.Request) {
	streamID := chi.URLParam(r, "id")
	writeJSON(w, http.StatusOK, map[string]any{
		"stream_id": streamID,
		"viewers":   h.router.ViewerCount(streamID),
	})
}

// GET /presence/{id}
func (h *Handler) Presence(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"online":  h.router.Online(userID),
	})
}

type MessageItem struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Content        string    `json:"content"`
	ReplyTo        *string   `json:"reply_to,omitempty"`
	MediaURL       *string   `json:"media_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type MessagesResponse struct {
	Items      []MessageItem `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// GET /conversations/{id}/messages?limit=&cursor=
func (h *Handler) ConversationMessages(w http.ResponseWriter, r *http.Request) {
	convID := chi.URLParam(r, "id")
	userID := httpmw.UserIDFromCtx(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing user id"})
		return
	}

	conv, err := h.messageSvc.Conversation(r.Context(), convID)
	if err != nil {
		if errors.Is(err, domain.ErrConversationNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "conversation not found"})
			return
		}
		slog.Error("handler.ConversationMessages:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if !conv.HasParticipant(userID) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "conversation not found"})
		return
	}

	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}
	msgs, next, err := h.messageSvc.History(r.Context(), convID, r.URL.Query().Get("cursor"), limit)
	if err != nil {
		if errors.Is(err, postgres.ErrInvalidCursor) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_cursor"})
			return
		}
		slog.Error("handler.ConversationMessages:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	resp := MessagesResponse{Items: make([]MessageItem, 0, len(msgs)), NextCursor: next}
	for _, m := range msgs {
		resp.Items = append(resp.Items, MessageItem{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			SenderID:       m.SenderID,
			Content:        m.Content,
			ReplyTo:        m.ReplyTo,
			MediaURL:       m.MediaURL,
			CreatedAt:      m.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
