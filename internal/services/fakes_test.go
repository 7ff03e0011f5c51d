package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"itinerary-collab/internal/database"
	"itinerary-collab/internal/models"
)

type fakeStore struct {
	mu            sync.Mutex
	access        map[int]*models.ItineraryAccess
	accessErr     error
	messages      map[int]*models.ChatMessage
	nextMessageID int
	notifications []*models.Notification
	notifyErr     error
	names         map[int]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		access:        make(map[int]*models.ItineraryAccess),
		messages:      make(map[int]*models.ChatMessage),
		nextMessageID: 1,
		names:         make(map[int]string),
	}
}

func (f *fakeStore) GetItineraryAccess(ctx context.Context, itineraryID int) (*models.ItineraryAccess, error) {
	if f.accessErr != nil {
		return nil, f.accessErr
	}
	a, ok := f.access[itineraryID]
	if !ok {
		return nil, database.ErrNotFound
	}
	return a, nil
}

func (f *fakeStore) GetParticipants(ctx context.Context, itineraryID int) ([]*models.Participant, error) {
	a, ok := f.access[itineraryID]
	if !ok {
		return nil, nil
	}
	var out []*models.Participant
	for _, id := range a.Participants() {
		out = append(out, &models.Participant{ID: id, Name: f.names[id]})
	}
	return out, nil
}

func (f *fakeStore) SaveChatMessage(ctx context.Context, itineraryID, userID int, message string) (*models.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg := &models.ChatMessage{
		ID:          f.nextMessageID,
		ItineraryID: itineraryID,
		UserID:      userID,
		Message:     message,
		UserName:    f.names[userID],
	}
	f.nextMessageID++
	f.messages[msg.ID] = msg
	return msg, nil
}

func (f *fakeStore) ListChatMessages(ctx context.Context, itineraryID, limit, beforeID int) ([]*models.ChatMessage, error) {
	var out []*models.ChatMessage
	for id := 1; id < f.nextMessageID; id++ {
		msg, ok := f.messages[id]
		if !ok || msg.ItineraryID != itineraryID {
			continue
		}
		if beforeID > 0 && id >= beforeID {
			continue
		}
		out = append(out, msg)
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeStore) GetChatMessage(ctx context.Context, id int) (*models.ChatMessage, error) {
	msg, ok := f.messages[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return msg, nil
}

func (f *fakeStore) DeleteChatMessage(ctx context.Context, id int) error {
	if _, ok := f.messages[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.messages, id)
	return nil
}

// UnreadChatCounts uses message ids as the clock.
func (f *fakeStore) UnreadChatCounts(ctx context.Context, userID int) ([]*models.UnreadChat, error) {
	if f.accessErr != nil {
		return nil, f.accessErr
	}
	var itineraryIDs []int
	for id, a := range f.access {
		if a.Allows(userID) {
			itineraryIDs = append(itineraryIDs, id)
		}
	}
	sort.Ints(itineraryIDs)

	var out []*models.UnreadChat
	for _, itineraryID := range itineraryIDs {
		lastOwn := 0
		for id := 1; id < f.nextMessageID; id++ {
			if msg, ok := f.messages[id]; ok && msg.ItineraryID == itineraryID && msg.UserID == userID {
				lastOwn = id
			}
		}
		unread := 0
		for id := lastOwn + 1; id < f.nextMessageID; id++ {
			if msg, ok := f.messages[id]; ok && msg.ItineraryID == itineraryID && msg.UserID != userID {
				unread++
			}
		}
		if unread > 0 {
			out = append(out, &models.UnreadChat{
				ItineraryID: itineraryID,
				Destination: f.access[itineraryID].Destination,
				UnreadCount: unread,
			})
		}
	}
	return out, nil
}

func (f *fakeStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	if f.notifyErr != nil {
		return f.notifyErr
	}
	f.notifications = append(f.notifications, n)
	return nil
}

type pushed struct {
	target  int
	event   string
	payload any
}

type fakeNotifier struct {
	toUsers []pushed
	toRooms []pushed
}

func (n *fakeNotifier) NotifyUser(userID int, event string, payload any) {
	n.toUsers = append(n.toUsers, pushed{userID, event, payload})
}

func (n *fakeNotifier) NotifyRoom(itineraryID int, event string, payload any) {
	n.toRooms = append(n.toRooms, pushed{itineraryID, event, payload})
}

var errStoreDown = errors.New("store unavailable")
