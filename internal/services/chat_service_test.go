package services

import (
	"context"
	"strings"
	"testing"

	"itinerary-collab/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatFixture() (*ChatService, *fakeStore, *fakeNotifier) {
	store := newFakeStore()
	store.access[42] = &models.ItineraryAccess{
		ItineraryID:                 42,
		OwnerID:                     7,
		Destination:                 "Lisbon",
		AcceptedCollaboratorUserIDs: []int{9, 12},
	}
	store.names[7] = "Asha"
	store.names[9] = "Ben"
	notifier := &fakeNotifier{}
	return NewChatService(store, notifier), store, notifier
}

func TestSendMessage(t *testing.T) {
	chat, store, notifier := newChatFixture()

	msg, err := chat.SendMessage(context.Background(), 9, 42, "  see you at the airport  ")
	require.NoError(t, err)
	assert.Equal(t, "see you at the airport", msg.Message)
	assert.Equal(t, "Ben", msg.UserName)

	require.Len(t, notifier.toRooms, 1)
	assert.Equal(t, 42, notifier.toRooms[0].target)
	assert.Equal(t, models.OutChatMessage, notifier.toRooms[0].event)
	assert.Same(t, msg, notifier.toRooms[0].payload)

	// Owner and the other collaborator are notified, the sender is not.
	require.Len(t, notifier.toUsers, 2)
	assert.Equal(t, 7, notifier.toUsers[0].target)
	assert.Equal(t, 12, notifier.toUsers[1].target)
	notice, ok := notifier.toUsers[0].payload.(models.ChatNotice)
	require.True(t, ok)
	assert.Equal(t, "chat", notice.Type)
	assert.Equal(t, "New message in Lisbon", notice.Title)
	assert.Equal(t, 42, notice.ItineraryID)

	require.Len(t, store.notifications, 2)
	assert.Equal(t, "collaboration", store.notifications[0].Type)
	assert.Equal(t, "Ben: see you at the airport", store.notifications[0].Content)
	assert.Equal(t, "/itinerary/42/chat", store.notifications[0].Link)
}

func TestSendMessageRejections(t *testing.T) {
	chat, _, notifier := newChatFixture()
	ctx := context.Background()

	_, err := chat.SendMessage(ctx, 9, 42, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = chat.SendMessage(ctx, 11, 42, "hello")
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = chat.SendMessage(ctx, 7, 99, "hello")
	assert.ErrorIs(t, err, ErrAccessDenied)

	assert.Empty(t, notifier.toRooms)
	assert.Empty(t, notifier.toUsers)
}

func TestSendMessageSurvivesNotificationFailure(t *testing.T) {
	chat, store, notifier := newChatFixture()
	store.notifyErr = errStoreDown

	_, err := chat.SendMessage(context.Background(), 7, 42, "hi")
	require.NoError(t, err)

	assert.Len(t, notifier.toRooms, 1)
	assert.Len(t, notifier.toUsers, 2)
	assert.Empty(t, store.notifications)
}

func TestSendMessageTruncatesNotices(t *testing.T) {
	chat, store, notifier := newChatFixture()
	long := strings.Repeat("é", 150)

	_, err := chat.SendMessage(context.Background(), 7, 42, long)
	require.NoError(t, err)

	assert.Equal(t, "Asha: "+strings.Repeat("é", 100), store.notifications[0].Content)
	notice := notifier.toUsers[0].payload.(models.ChatNotice)
	assert.Equal(t, "Asha: "+strings.Repeat("é", 50)+"...", notice.Content)
}

func TestListMessages(t *testing.T) {
	chat, _, _ := newChatFixture()
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		_, err := chat.SendMessage(ctx, 7, 42, text)
		require.NoError(t, err)
	}

	history, err := chat.ListMessages(ctx, 9, 42, 2, 0)
	require.NoError(t, err)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, "two", history.Messages[0].Message)
	assert.Equal(t, "three", history.Messages[1].Message)
	assert.True(t, history.HasMore)
	assert.Len(t, history.Participants, 3)

	history, err = chat.ListMessages(ctx, 9, 42, 2, history.Messages[0].ID)
	require.NoError(t, err)
	require.Len(t, history.Messages, 1)
	assert.Equal(t, "one", history.Messages[0].Message)
	assert.False(t, history.HasMore)

	_, err = chat.ListMessages(ctx, 11, 42, 10, 0)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestListMessagesEmpty(t *testing.T) {
	chat, _, _ := newChatFixture()

	history, err := chat.ListMessages(context.Background(), 7, 42, 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, history.Messages)
	assert.Empty(t, history.Messages)
	assert.False(t, history.HasMore)
}

func TestDeleteMessage(t *testing.T) {
	chat, store, notifier := newChatFixture()
	ctx := context.Background()

	msg, err := chat.SendMessage(ctx, 9, 42, "oops")
	require.NoError(t, err)
	notifier.toRooms = nil

	assert.ErrorIs(t, chat.DeleteMessage(ctx, 7, msg.ID), ErrAccessDenied)
	assert.ErrorIs(t, chat.DeleteMessage(ctx, 9, 999), ErrAccessDenied)
	assert.Empty(t, notifier.toRooms)

	require.NoError(t, chat.DeleteMessage(ctx, 9, msg.ID))
	assert.NotContains(t, store.messages, msg.ID)

	require.Len(t, notifier.toRooms, 1)
	assert.Equal(t, models.OutChatMessageDeleted, notifier.toRooms[0].event)
	assert.Equal(t, models.ChatMessageDeleted{MessageID: msg.ID, ItineraryID: 42}, notifier.toRooms[0].payload)
}

func TestUnreadCounts(t *testing.T) {
	chat, store, _ := newChatFixture()
	store.access[43] = &models.ItineraryAccess{ItineraryID: 43, OwnerID: 9, Destination: "Porto"}
	ctx := context.Background()

	counts, err := chat.UnreadCounts(ctx, 7)
	require.NoError(t, err)
	assert.NotNil(t, counts)
	assert.Empty(t, counts)

	_, err = chat.SendMessage(ctx, 9, 42, "first")
	require.NoError(t, err)
	_, err = chat.SendMessage(ctx, 12, 42, "second")
	require.NoError(t, err)
	_, err = chat.SendMessage(ctx, 9, 43, "not shared with Asha")
	require.NoError(t, err)

	counts, err = chat.UnreadCounts(ctx, 7)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, models.UnreadChat{ItineraryID: 42, Destination: "Lisbon", UnreadCount: 2}, *counts[0])

	// Writing a reply marks everything before it as read.
	_, err = chat.SendMessage(ctx, 7, 42, "reply")
	require.NoError(t, err)
	counts, err = chat.UnreadCounts(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, counts)

	// Ben only counts messages after his own latest one.
	counts, err = chat.UnreadCounts(ctx, 9)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, 42, counts[0].ItineraryID)
	assert.Equal(t, 2, counts[0].UnreadCount)

	store.accessErr = errStoreDown
	_, err = chat.UnreadCounts(ctx, 7)
	assert.ErrorIs(t, err, errStoreDown)
}
