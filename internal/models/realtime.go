package models

import "encoding/json"

// EventKind enumerates the inbound realtime events a client may send.
type EventKind int

const (
	EventJoinRoom EventKind = iota
	EventLeaveRoom
	EventFieldChange
	EventFieldFocus
	EventFieldBlur
	EventActivityChange
	EventCursorMove
	EventJoinChat
	EventLeaveChat
	EventChatTyping

	// EventKindCount is the number of inbound kinds; keep it last.
	EventKindCount
)

var eventKindNames = [EventKindCount]string{
	EventJoinRoom:       "join-room",
	EventLeaveRoom:      "leave-room",
	EventFieldChange:    "field-change",
	EventFieldFocus:     "field-focus",
	EventFieldBlur:      "field-blur",
	EventActivityChange: "activity-change",
	EventCursorMove:     "cursor-move",
	EventJoinChat:       "join-chat",
	EventLeaveChat:      "leave-chat",
	EventChatTyping:     "chat-typing",
}

func (k EventKind) String() string {
	if k < 0 || k >= EventKindCount {
		return "unknown"
	}
	return eventKindNames[k]
}

// ParseEventKind maps a wire event name to its kind.
func ParseEventKind(name string) (EventKind, bool) {
	for k, n := range eventKindNames {
		if n == name {
			return EventKind(k), true
		}
	}
	return 0, false
}

// Outbound event names.
const (
	OutUserJoined         = "user-joined"
	OutUserLeft           = "user-left"
	OutCurrentEditors     = "current-editors"
	OutFieldUpdate        = "field-update"
	OutFieldLocked        = "field-locked"
	OutFieldUnlocked      = "field-unlocked"
	OutActivityUpdate     = "activity-update"
	OutCursorUpdate       = "cursor-update"
	OutUserTyping         = "user-typing"
	OutChatMessage        = "chat_message"
	OutChatMessageDeleted = "chat_message_deleted"
	OutNotification       = "notification"
	OutError              = "error"
)

// Envelope is the frame format in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound payloads.

type RoomRequest struct {
	ItineraryID int `json:"itineraryId"`
}

type FieldChangeRequest struct {
	ItineraryID int             `json:"itineraryId"`
	Field       string          `json:"field"`
	Value       json.RawMessage `json:"value"`
}

type FieldFocusRequest struct {
	ItineraryID int    `json:"itineraryId"`
	Field       string `json:"field"`
}

type ActivityAction string

const (
	ActionAdd    ActivityAction = "add"
	ActionUpdate ActivityAction = "update"
	ActionDelete ActivityAction = "delete"
)

type ActivityChangeRequest struct {
	ItineraryID int             `json:"itineraryId"`
	Action      ActivityAction  `json:"action"`
	Index       *int            `json:"index,omitempty"`
	Activity    json.RawMessage `json:"activity,omitempty"`
}

type CursorMoveRequest struct {
	ItineraryID int    `json:"itineraryId"`
	Field       string `json:"field"`
	Position    int    `json:"position"`
}

type ChatTypingRequest struct {
	ItineraryID int  `json:"itineraryId"`
	IsTyping    bool `json:"isTyping"`
}

// Outbound payloads.

type UserJoined struct {
	UserID int    `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

type UserLeft struct {
	UserID int    `json:"userId"`
	Name   string `json:"name"`
}

// Editor is an editing-room member as sent in current-editors.
type Editor struct {
	UserID       int    `json:"userId"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	ConnectionID string `json:"connectionId"`
	ActiveField  string `json:"activeField,omitempty"`
}

type FieldUpdate struct {
	Field     string          `json:"field"`
	Value     json.RawMessage `json:"value"`
	UserID    int             `json:"userId"`
	UserName  string          `json:"userName"`
	Timestamp int64           `json:"timestamp"`
}

type FieldLock struct {
	Field    string `json:"field"`
	UserID   int    `json:"userId"`
	UserName string `json:"userName"`
}

type FieldUnlock struct {
	Field  string `json:"field"`
	UserID int    `json:"userId"`
}

type ActivityUpdate struct {
	Action    ActivityAction  `json:"action"`
	Index     *int            `json:"index,omitempty"`
	Activity  json.RawMessage `json:"activity,omitempty"`
	UserID    int             `json:"userId"`
	UserName  string          `json:"userName"`
	Timestamp int64           `json:"timestamp"`
}

type CursorUpdate struct {
	UserID   int    `json:"userId"`
	UserName string `json:"userName"`
	Field    string `json:"field"`
	Position int    `json:"position"`
}

type TypingUpdate struct {
	UserID   int    `json:"userId"`
	UserName string `json:"userName"`
	IsTyping bool   `json:"isTyping"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
