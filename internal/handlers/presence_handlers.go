package handlers

import (
	"context"
	"net/http"

	"itinerary-collab/internal/models"
)

// Presence is the read side of the realtime hub.
type Presence interface {
	IsUserOnline(userID int) bool
	OnlineUserCount() int
	ActiveEditors(itineraryID int) []models.Editor
}

type AccessChecker interface {
	CanAccess(ctx context.Context, userID, itineraryID int) bool
}

type PresenceHandlers struct {
	presence Presence
	access   AccessChecker
}

func NewPresenceHandlers(presence Presence, access AccessChecker) *PresenceHandlers {
	return &PresenceHandlers{presence: presence, access: access}
}

func (h *PresenceHandlers) OnlineCount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{
		"online_users": h.presence.OnlineUserCount(),
	})
}

func (h *PresenceHandlers) UserStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := idParam(r, "id")
	if !ok {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"online":  h.presence.IsUserOnline(userID),
	})
}

func (h *PresenceHandlers) ActiveEditors(w http.ResponseWriter, r *http.Request) {
	user := identityFrom(r.Context())
	itineraryID, ok := idParam(r, "id")
	if !ok {
		http.Error(w, "invalid itinerary ID", http.StatusBadRequest)
		return
	}

	if !h.access.CanAccess(r.Context(), user.UserID, itineraryID) {
		http.Error(w, "access denied to this itinerary", http.StatusForbidden)
		return
	}

	writeJSON(w, http.StatusOK, h.presence.ActiveEditors(itineraryID))
}
