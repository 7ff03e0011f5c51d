package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"itinerary-collab/internal/database"
	"itinerary-collab/internal/models"
	"itinerary-collab/pkg/logger"
)

const (
	defaultChatPageSize = 50
	maxChatPageSize     = 200
)

var ErrEmptyMessage = errors.New("message cannot be empty")

// Notifier pushes live events to connected clients.
type Notifier interface {
	NotifyUser(userID int, event string, payload any)
	NotifyRoom(itineraryID int, event string, payload any)
}

// ChatStore is the persistence the chat service needs.
type ChatStore interface {
	database.ItineraryRepository
	database.ChatRepository
	database.NotificationRepository
}

type ChatService struct {
	store    ChatStore
	notifier Notifier
}

func NewChatService(store ChatStore, notifier Notifier) *ChatService {
	return &ChatService{store: store, notifier: notifier}
}

func (s *ChatService) authorize(ctx context.Context, userID, itineraryID int) (*models.ItineraryAccess, error) {
	access, err := s.store.GetItineraryAccess(ctx, itineraryID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrAccessDenied
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check access: %w", err)
	}
	if !access.Allows(userID) {
		return nil, ErrAccessDenied
	}
	return access, nil
}

func (s *ChatService) ListMessages(ctx context.Context, userID, itineraryID, limit, beforeID int) (*models.ChatHistory, error) {
	if _, err := s.authorize(ctx, userID, itineraryID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultChatPageSize
	}
	if limit > maxChatPageSize {
		limit = maxChatPageSize
	}

	messages, err := s.store.ListChatMessages(ctx, itineraryID, limit, beforeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat messages: %w", err)
	}

	participants, err := s.store.GetParticipants(ctx, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}

	if messages == nil {
		messages = []*models.ChatMessage{}
	}
	if participants == nil {
		participants = []*models.Participant{}
	}

	return &models.ChatHistory{
		Messages:     messages,
		Participants: participants,
		HasMore:      len(messages) == limit,
	}, nil
}

// SendMessage persists a chat message, pushes it to everyone viewing the
// itinerary and notifies the other participants. Notification failures are
// logged and do not fail the send.
func (s *ChatService) SendMessage(ctx context.Context, userID, itineraryID int, text string) (*models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	access, err := s.authorize(ctx, userID, itineraryID)
	if err != nil {
		return nil, err
	}

	msg, err := s.store.SaveChatMessage(ctx, itineraryID, userID, text)
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyRoom(itineraryID, models.OutChatMessage, msg)
	s.notifyParticipants(ctx, access, msg)

	return msg, nil
}

func (s *ChatService) notifyParticipants(ctx context.Context, access *models.ItineraryAccess, msg *models.ChatMessage) {
	destination := access.Destination
	if destination == "" {
		destination = "your itinerary"
	}
	title := "New message in " + destination

	for _, recipient := range access.Participants() {
		if recipient == msg.UserID {
			continue
		}

		err := s.store.CreateNotification(ctx, &models.Notification{
			UserID:  recipient,
			Type:    "collaboration",
			Title:   title,
			Content: msg.UserName + ": " + truncate(msg.Message, 100),
			Link:    fmt.Sprintf("/itinerary/%d/chat", access.ItineraryID),
		})
		if err != nil {
			logger.Warn("Notification insert failed for user %d: %v", recipient, err)
		}

		s.notifier.NotifyUser(recipient, models.OutNotification, models.ChatNotice{
			Type:        "chat",
			Title:       title,
			Content:     msg.UserName + ": " + truncate(msg.Message, 50) + "...",
			ItineraryID: access.ItineraryID,
		})
	}
}

// DeleteMessage removes a message authored by userID and tells viewers about it.
func (s *ChatService) DeleteMessage(ctx context.Context, userID, messageID int) error {
	msg, err := s.store.GetChatMessage(ctx, messageID)
	if errors.Is(err, database.ErrNotFound) {
		return ErrAccessDenied
	}
	if err != nil {
		return fmt.Errorf("failed to load chat message: %w", err)
	}
	if msg.UserID != userID {
		return ErrAccessDenied
	}

	if err := s.store.DeleteChatMessage(ctx, messageID); err != nil {
		return fmt.Errorf("failed to delete chat message: %w", err)
	}

	s.notifier.NotifyRoom(msg.ItineraryID, models.OutChatMessageDeleted, models.ChatMessageDeleted{
		MessageID:   messageID,
		ItineraryID: msg.ItineraryID,
	})
	return nil
}

// UnreadCounts lists the user's itineraries with chat messages from others
// since the user last wrote there.
func (s *ChatService) UnreadCounts(ctx context.Context, userID int) ([]*models.UnreadChat, error) {
	counts, err := s.store.UnreadChatCounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread chats: %w", err)
	}
	if counts == nil {
		counts = []*models.UnreadChat{}
	}
	return counts, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
