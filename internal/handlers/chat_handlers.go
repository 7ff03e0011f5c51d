package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"itinerary-collab/internal/models"
	"itinerary-collab/internal/services"
	"itinerary-collab/pkg/logger"
)

type ChatService interface {
	ListMessages(ctx context.Context, userID, itineraryID, limit, beforeID int) (*models.ChatHistory, error)
	SendMessage(ctx context.Context, userID, itineraryID int, text string) (*models.ChatMessage, error)
	DeleteMessage(ctx context.Context, userID, messageID int) error
	UnreadCounts(ctx context.Context, userID int) ([]*models.UnreadChat, error)
}

type ChatHandlers struct {
	chatService ChatService
}

func NewChatHandlers(chatService ChatService) *ChatHandlers {
	return &ChatHandlers{chatService: chatService}
}

func (h *ChatHandlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	user := identityFrom(r.Context())
	itineraryID, ok := idParam(r, "id")
	if !ok {
		http.Error(w, "invalid itinerary ID", http.StatusBadRequest)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	before, _ := strconv.Atoi(r.URL.Query().Get("before"))

	history, err := h.chatService.ListMessages(r.Context(), user.UserID, itineraryID, limit, before)
	if err != nil {
		h.fail(w, "List chat messages", err)
		return
	}

	writeJSON(w, http.StatusOK, history)
}

func (h *ChatHandlers) SendMessage(w http.ResponseWriter, r *http.Request) {
	user := identityFrom(r.Context())
	itineraryID, ok := idParam(r, "id")
	if !ok {
		http.Error(w, "invalid itinerary ID", http.StatusBadRequest)
		return
	}

	var req models.SendChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	msg, err := h.chatService.SendMessage(r.Context(), user.UserID, itineraryID, req.Message)
	if err != nil {
		h.fail(w, "Send chat message", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":     "Message sent successfully",
		"chatMessage": msg,
	})
}

func (h *ChatHandlers) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	user := identityFrom(r.Context())
	messageID, ok := idParam(r, "messageId")
	if !ok {
		http.Error(w, "invalid message ID", http.StatusBadRequest)
		return
	}

	if err := h.chatService.DeleteMessage(r.Context(), user.UserID, messageID); err != nil {
		if errors.Is(err, services.ErrAccessDenied) {
			http.Error(w, "cannot delete this message", http.StatusForbidden)
			return
		}
		h.fail(w, "Delete chat message", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Message deleted"})
}

func (h *ChatHandlers) UnreadCounts(w http.ResponseWriter, r *http.Request) {
	user := identityFrom(r.Context())

	counts, err := h.chatService.UnreadCounts(r.Context(), user.UserID)
	if err != nil {
		h.fail(w, "Unread chat counts", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"unreadChats": counts})
}

func (h *ChatHandlers) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyMessage):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrAccessDenied):
		http.Error(w, "access denied to this itinerary", http.StatusForbidden)
	default:
		logger.Error("%s error: %v", op, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
