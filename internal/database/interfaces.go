package database

import (
	"context"
	"errors"

	"itinerary-collab/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
}

type ItineraryRepository interface {
	// GetItineraryAccess returns the owner and accepted collaborators of an itinerary.
	GetItineraryAccess(ctx context.Context, itineraryID int) (*models.ItineraryAccess, error)
	GetParticipants(ctx context.Context, itineraryID int) ([]*models.Participant, error)
}

type ChatRepository interface {
	SaveChatMessage(ctx context.Context, itineraryID, userID int, message string) (*models.ChatMessage, error)
	ListChatMessages(ctx context.Context, itineraryID, limit, beforeID int) ([]*models.ChatMessage, error)
	GetChatMessage(ctx context.Context, id int) (*models.ChatMessage, error)
	DeleteChatMessage(ctx context.Context, id int) error
	UnreadChatCounts(ctx context.Context, userID int) ([]*models.UnreadChat, error)
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
}

type Database interface {
	UserRepository
	ItineraryRepository
	ChatRepository
	NotificationRepository
	Close() error
}
