package websocket

import (
	"encoding/json"
	"errors"
	"fmt"

	"itinerary-collab/internal/models"
)

const (
	msgInvalidEvent       = "invalid event"
	msgEditAccessDenied   = "Access denied to this itinerary"
	msgChatAccessDenied   = "Access denied to this chat"
	msgInvalidPayloadTmpl = "invalid payload for %s"
)

var errMissingItinerary = errors.New("itineraryId is required")

type eventHandler func(h *Hub, c *Client, data json.RawMessage) error

// eventHandlers has one entry per inbound kind; TestEveryEventKindHasHandler
// keeps it complete.
var eventHandlers = [models.EventKindCount]eventHandler{
	models.EventJoinRoom:       (*Hub).handleJoinRoom,
	models.EventLeaveRoom:      (*Hub).handleLeaveRoom,
	models.EventFieldChange:    (*Hub).handleFieldChange,
	models.EventFieldFocus:     (*Hub).handleFieldFocus,
	models.EventFieldBlur:      (*Hub).handleFieldBlur,
	models.EventActivityChange: (*Hub).handleActivityChange,
	models.EventCursorMove:     (*Hub).handleCursorMove,
	models.EventJoinChat:       (*Hub).handleJoinChat,
	models.EventLeaveChat:      (*Hub).handleLeaveChat,
	models.EventChatTyping:     (*Hub).handleChatTyping,
}

// dispatch routes one inbound frame. Errors are reported to the sending
// connection only and never close it.
func (h *Hub) dispatch(msg inbound) {
	c := msg.client
	if h.conns[c.id] != c {
		return
	}

	kind, ok := models.ParseEventKind(msg.event)
	if !ok {
		h.log.Debug("Unknown event %q from connection %s", msg.event, c.id)
		h.emitError(c, msgInvalidEvent)
		return
	}

	if err := eventHandlers[kind](h, c, msg.data); err != nil {
		h.log.Debug("Rejected %s from connection %s: %v", kind, c.id, err)
		h.emitError(c, fmt.Sprintf(msgInvalidPayloadTmpl, kind))
	}
}

// decode unmarshals a room-scoped payload and checks its itinerary id.
func decode(data json.RawMessage, v any, itineraryID *int) error {
	if len(data) == 0 {
		return errMissingItinerary
	}
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}
	if *itineraryID <= 0 {
		return errMissingItinerary
	}
	return nil
}

func (h *Hub) timestamp() int64 {
	return h.now().UnixMilli()
}

func (h *Hub) inEditingRoom(c *Client, itineraryID int) bool {
	if _, ok := c.editing[itineraryID]; ok {
		return true
	}
	h.log.Debug("Connection %s sent an event for editing room %d it is not in", c.id, itineraryID)
	return false
}

func (h *Hub) inChatRoom(c *Client, itineraryID int) bool {
	if _, ok := c.chats[itineraryID]; ok {
		return true
	}
	h.log.Debug("Connection %s sent an event for chat room %d it is not in", c.id, itineraryID)
	return false
}

// Editing room.

func (h *Hub) handleJoinRoom(c *Client, data json.RawMessage) error {
	var req models.RoomRequest
	if err := decode(data, &req, &req.ItineraryID); err != nil {
		return err
	}

	h.checkAccess(c, req.ItineraryID, func(allowed bool) {
		if !allowed {
			h.emitError(c, msgEditAccessDenied)
			return
		}
		h.joinEditing(c, req.ItineraryID)
	})
	return nil
}

func (h *Hub) joinEditing(c *Client, itineraryID int) {
	subscribe(h.editing, itineraryID, c)
	c.editing[itineraryID] = struct{}{}

	roster := h.rooms.Join(itineraryID, Member{
		UserID:       c.userID,
		Name:         c.name,
		Email:        c.email,
		ConnectionID: c.id,
	})

	h.toEditingRoom(itineraryID, models.OutUserJoined, models.UserJoined{
		UserID: c.userID,
		Name:   c.name,
		Email:  c.email,
	}, c)
	h.emit(c, models.OutCurrentEditors, toEditors(roster))

	h.log.Info("%s joined editing room %d", c.name, itineraryID)
}

func (h *Hub) handleLeaveRoom(c *Client, data json.RawMessage) error {
	var req models.RoomRequest
	if err := decode(data, &req, &req.ItineraryID); err != nil {
		return err
	}
	h.leaveEditing(c, req.ItineraryID)
	return nil
}

// leaveEditing unsubscribes c from the room. The member entry is removed, and
// user-left announced, only when c is the connection that owns it: after a
// duplicate join the older connection no longer speaks for the user.
func (h *Hub) leaveEditing(c *Client, itineraryID int) {
	unsubscribe(h.editing, itineraryID, c)
	delete(c.editing, itineraryID)

	member, ok := h.rooms.Member(itineraryID, c.userID)
	if !ok || member.ConnectionID != c.id {
		return
	}
	h.rooms.Leave(itineraryID, c.userID)

	h.toEditingRoom(itineraryID, models.OutUserLeft, models.UserLeft{
		UserID: c.userID,
		Name:   c.name,
	}, c)

	h.log.Info("%s left editing room %d", c.name, itineraryID)
}

func (h *Hub) handleFieldChange(c *Client, data json.RawMessage) error {
	var req models.FieldChangeRequest
	if err := decode(data, &req, &req.ItineraryID); err != nil {
		return err
	}
	if !h.inEditingRoom(c, req.ItineraryID) {
		return nil
	}

	h.toEditingRoom(req.ItineraryID, models.OutFieldUpdate, models.FieldUpdate{
		Field:     req.Field,
		Value:     req.Value,
		UserID:    c.userID,
		UserName:  c.name,
		Timestamp: h.timestamp(),
	}, c)
	return nil
}

func (h *Hub) handleFieldFocus(c *Client, data json.RawMessage) error {
	var req models.FieldFocusRequest
	if err := decode(data, &req, &req.ItineraryID); err != nil {
		return err
	}
	if !h.inEditingRoom(c, req.ItineraryID) {
		return nil
	}

	h.rooms.SetActiveField(req.ItineraryID, c.userID, req.Field)
	h.toEditingRoom(req.ItineraryID, models.OutFieldLocked, models.FieldLock{
		Field:    req.Field,
		UserID:   c.userID,
		UserName: c.name,
	}, c)
	return nil
}

func (h *Hub) handleFieldBlur(c *Client, data json.RawMessage) error {
	var req models.FieldFocusRequest
	if err := decode(data, &req, &req.ItineraryID); err != nil {
		return err
	}
	if !h.inEditingRoom(c, req.ItineraryID) {
		return nil
	}

	h.rooms.SetActiveField(req.ItineraryID, c.userID, "")
	h.toEditingRoom(req.ItineraryID, models.OutFieldUnlocked, models.FieldUnlock{
		Field:  req.Field,
		UserID: c.userID,
	}, c)
	return nil
}

func (h *Hub) handleActivityChange(c *Client, data json.RawMessage) error {
	var req models.ActivityChangeRequest
	if err := decode(data, &req, &req.ItineraryID); err != nil {
		return err
	}
	if !h.inEditingRoom(c, req.ItineraryID) {
		return nil
	}

	h.toEditingRoom(req.ItineraryID, models.OutActivityUpdate, models.ActivityUpdate{
		Action:    req.Action,
		Index:     req.Index,
		Activity:  req.Activity,
		UserID:    c.userID,
		UserName:  c.name,
		Timestamp: h.timestamp(),
	}, c)
	return nil
}

func (h *Hub) handleCursorMove(c *Client, data json.RawMessage) error {
	var req models.CursorMoveRequest
	if err := decode(data, &req, &req.ItineraryID); err != nil {
		return err
	}
	if !h.inEditingRoom(c, req.ItineraryID) {
		return nil
	}

	h.toEditingRoom(req.ItineraryID, models.OutCursorUpdate, models.CursorUpdate{
		UserID:   c.userID,
		UserName: c.name,
		Field:    req.Field,
		Position: req.Position,
	}, c)
	return nil
}

// Chat room. Access is checked again on join-chat: a user can open the chat
// without ever opening the editor.

func (h *Hub) handleJoinChat(c *Client, data json.RawMessage) error {
	var req models.RoomRequest
	if err := decode(data, &req, &req.ItineraryID); err != nil {
		return err
	}

	h.checkAccess(c, req.ItineraryID, func(allowed bool) {
		if !allowed {
			h.emitError(c, msgChatAccessDenied)
			return
		}
		subscribe(h.chats, req.ItineraryID, c)
		c.chats[req.ItineraryID] = struct{}{}
		h.log.Info("%s joined chat room %d", c.name, req.ItineraryID)
	})
	return nil
}

func (h *Hub) handleLeaveChat(c *Client, data json.RawMessage) error {
	var req models.RoomRequest
	if err := decode(data, &req, &req.ItineraryID); err != nil {
		return err
	}
	h.unsubscribeChat(c, req.ItineraryID)
	return nil
}

func (h *Hub) unsubscribeChat(c *Client, itineraryID int) {
	if _, ok := c.chats[itineraryID]; !ok {
		return
	}
	unsubscribe(h.chats, itineraryID, c)
	delete(c.chats, itineraryID)
	h.log.Info("%s left chat room %d", c.name, itineraryID)
}

func (h *Hub) handleChatTyping(c *Client, data json.RawMessage) error {
	var req models.ChatTypingRequest
	if err := decode(data, &req, &req.ItineraryID); err != nil {
		return err
	}
	if !h.inChatRoom(c, req.ItineraryID) {
		return nil
	}

	h.toChatRoom(req.ItineraryID, models.OutUserTyping, models.TypingUpdate{
		UserID:   c.userID,
		UserName: c.name,
		IsTyping: req.IsTyping,
	}, c)
	return nil
}
