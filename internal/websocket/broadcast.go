package websocket

import (
	"encoding/json"

	"itinerary-collab/internal/models"
)

type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// encodeEvent marshals once per broadcast, not once per recipient.
func encodeEvent(event string, payload any) ([]byte, error) {
	return json.Marshal(outbound{Event: event, Data: payload})
}

// deliver is fire-and-forget. A client whose buffer is full is too slow to
// keep up: the frame is dropped and its transport closed.
func (h *Hub) deliver(c *Client, frame []byte) {
	select {
	case c.send <- frame:
	default:
		h.log.Warn("Send buffer full for connection %s (user %d), closing", c.id, c.userID)
		c.closeTransport()
	}
}

func (h *Hub) fanOut(targets map[*Client]struct{}, event string, payload any, exclude *Client) {
	if len(targets) == 0 {
		return
	}
	frame, err := encodeEvent(event, payload)
	if err != nil {
		h.log.Error("Error marshaling %s event: %v", event, err)
		return
	}
	for c := range targets {
		if c != exclude {
			h.deliver(c, frame)
		}
	}
}

// emit sends an event to a single connection.
func (h *Hub) emit(c *Client, event string, payload any) {
	frame, err := encodeEvent(event, payload)
	if err != nil {
		h.log.Error("Error marshaling %s event: %v", event, err)
		return
	}
	h.deliver(c, frame)
}

func (h *Hub) emitError(c *Client, message string) {
	h.emit(c, models.OutError, models.ErrorPayload{Message: message})
}

// toUser delivers to every live connection of userID.
func (h *Hub) toUser(userID int, event string, payload any) {
	targets := make(map[*Client]struct{})
	for _, id := range h.registry.Connections(userID) {
		if c, ok := h.conns[id]; ok {
			targets[c] = struct{}{}
		}
	}
	h.fanOut(targets, event, payload, nil)
}

// toEditingRoom delivers to the itinerary's editing room, skipping exclude.
func (h *Hub) toEditingRoom(itineraryID int, event string, payload any, exclude *Client) {
	h.fanOut(h.editing[itineraryID], event, payload, exclude)
}

func (h *Hub) toChatRoom(itineraryID int, event string, payload any, exclude *Client) {
	h.fanOut(h.chats[itineraryID], event, payload, exclude)
}

// toCollaborationChannel delivers to the chat room and the editing room of
// an itinerary. A connection in both receives the event once.
func (h *Hub) toCollaborationChannel(itineraryID int, event string, payload any) {
	targets := make(map[*Client]struct{}, len(h.editing[itineraryID])+len(h.chats[itineraryID]))
	for c := range h.editing[itineraryID] {
		targets[c] = struct{}{}
	}
	for c := range h.chats[itineraryID] {
		targets[c] = struct{}{}
	}
	h.fanOut(targets, event, payload, nil)
}

func subscribe(subs map[int]map[*Client]struct{}, itineraryID int, c *Client) {
	set, ok := subs[itineraryID]
	if !ok {
		set = make(map[*Client]struct{})
		subs[itineraryID] = set
	}
	set[c] = struct{}{}
}

func unsubscribe(subs map[int]map[*Client]struct{}, itineraryID int, c *Client) {
	set, ok := subs[itineraryID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(subs, itineraryID)
	}
}
