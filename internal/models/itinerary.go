package models

import "time"

type CollaboratorStatus string

const (
	CollaboratorPending  CollaboratorStatus = "pending"
	CollaboratorAccepted CollaboratorStatus = "accepted"
	CollaboratorDeclined CollaboratorStatus = "declined"
)

// ItineraryAccess is the slice of an itinerary needed to authorize realtime
// and chat access.
type ItineraryAccess struct {
	ItineraryID                 int
	OwnerID                     int
	Destination                 string
	AcceptedCollaboratorUserIDs []int
}

// Allows reports whether userID owns the itinerary or is an accepted collaborator.
func (a *ItineraryAccess) Allows(userID int) bool {
	if a.OwnerID == userID {
		return true
	}
	for _, id := range a.AcceptedCollaboratorUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Participants returns the owner followed by accepted collaborators, without duplicates.
func (a *ItineraryAccess) Participants() []int {
	seen := map[int]bool{a.OwnerID: true}
	ids := []int{a.OwnerID}
	for _, id := range a.AcceptedCollaboratorUserIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

type ChatMessage struct {
	ID                 int       `json:"id"`
	ItineraryID        int       `json:"itinerary_id"`
	UserID             int       `json:"user_id"`
	Message            string    `json:"message"`
	CreatedAt          time.Time `json:"created_at"`
	UserName           string    `json:"user_name"`
	UserEmail          string    `json:"user_email"`
	UserProfilePicture *string   `json:"user_profile_picture"`
}

type Participant struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	ProfilePicture *string `json:"profile_picture"`
}

type ChatHistory struct {
	Messages     []*ChatMessage `json:"messages"`
	Participants []*Participant `json:"participants"`
	HasMore      bool           `json:"hasMore"`
}

type SendChatRequest struct {
	Message string `json:"message"`
}

type Notification struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatNotice is the live "notification" payload pushed to a user's personal channel.
type ChatNotice struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	ItineraryID int    `json:"itineraryId"`
}

type ChatMessageDeleted struct {
	MessageID   int `json:"messageId"`
	ItineraryID int `json:"itineraryId"`
}

// UnreadChat counts messages from others since the user last wrote in an
// itinerary's chat.
type UnreadChat struct {
	ItineraryID int    `json:"itinerary_id"`
	Destination string `json:"destination"`
	UnreadCount int    `json:"unread_count"`
}
