package websocket

import (
	"context"
	"sort"
	"time"

	"itinerary-collab/internal/config"
	"itinerary-collab/internal/models"
	"itinerary-collab/pkg/logger"
)

// AccessChecker decides whether a user may join an itinerary's rooms. It must
// deny, not fail, when its backing lookup fails.
type AccessChecker interface {
	CanAccess(ctx context.Context, userID, itineraryID int) bool
}

// Hub is the session gateway. A single goroutine (Run) owns the registry, the
// editing-room tracker and every room subscription, so each inbound event
// runs to completion before the next one starts. Access checks are the only
// suspension points: they run on their own goroutine and resume on the hub.
type Hub struct {
	registry *Registry
	rooms    *Rooms
	access   AccessChecker
	cfg      config.RealtimeConfig
	log      *logger.Logger
	now      func() time.Time

	conns   map[string]*Client
	editing map[int]map[*Client]struct{}
	chats   map[int]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	inbound    chan inbound
	tasks      chan func()
	done       chan struct{}

	ctx context.Context
}

func NewHub(registry *Registry, rooms *Rooms, access AccessChecker, cfg config.RealtimeConfig) *Hub {
	return &Hub{
		registry:   registry,
		rooms:      rooms,
		access:     access,
		cfg:        cfg,
		log:        logger.GlobalLogger.With("component", "realtime"),
		now:        time.Now,
		conns:      make(map[string]*Client),
		editing:    make(map[int]map[*Client]struct{}),
		chats:      make(map[int]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inbound),
		tasks:      make(chan func()),
		done:       make(chan struct{}),
		ctx:        context.Background(),
	}
}

// Run processes events until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	h.ctx = ctx
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.handleConnect(client)

		case client := <-h.unregister:
			h.handleDisconnect(client)

		case msg := <-h.inbound:
			h.dispatch(msg)

		case task := <-h.tasks:
			task()
		}
	}
}

// Register hands a freshly authenticated client to the hub. It reports false
// if the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// post queues fn to run on the hub goroutine.
func (h *Hub) post(fn func()) bool {
	select {
	case h.tasks <- fn:
		return true
	case <-h.done:
		return false
	}
}

// exec runs fn on the hub goroutine and waits for it. Never call it from the hub goroutine.
func (h *Hub) exec(fn func()) bool {
	finished := make(chan struct{})
	if !h.post(func() {
		fn()
		close(finished)
	}) {
		return false
	}
	select {
	case <-finished:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) handleConnect(c *Client) {
	h.conns[c.id] = c
	h.registry.Register(c.userID, c.id)
	h.log.Info("User connected: %s (%d) on %s", c.name, c.userID, c.id)
}

// handleDisconnect treats transport closure as an implicit leave of every
// room the connection was in.
func (h *Hub) handleDisconnect(c *Client) {
	if h.conns[c.id] != c {
		return
	}
	delete(h.conns, c.id)
	h.registry.Unregister(c.userID, c.id)

	for _, itineraryID := range sortedKeys(c.editing) {
		h.leaveEditing(c, itineraryID)
	}
	for _, itineraryID := range sortedKeys(c.chats) {
		h.unsubscribeChat(c, itineraryID)
	}

	close(c.send)
	h.log.Info("User disconnected: %s (%d) on %s", c.name, c.userID, c.id)
}

func (h *Hub) shutdown() {
	for id, c := range h.conns {
		close(c.send)
		delete(h.conns, id)
	}
	h.editing = make(map[int]map[*Client]struct{})
	h.chats = make(map[int]map[*Client]struct{})
	h.log.Info("Realtime hub stopped")
}

// checkAccess consults the AccessChecker off the hub goroutine and resumes
// with the decision. The continuation is dropped if the client disconnected
// in the meantime.
func (h *Hub) checkAccess(c *Client, itineraryID int, then func(allowed bool)) {
	ctx := h.ctx
	go func() {
		allowed := h.access.CanAccess(ctx, c.userID, itineraryID)
		h.post(func() {
			if h.conns[c.id] != c {
				h.log.Debug("Dropping access result for closed connection %s", c.id)
				return
			}
			then(allowed)
		})
	}()
}

// Exposed to the request/response side of the server.

// NotifyUser pushes an event to every connection of userID. Offline users
// are skipped; nothing is queued.
func (h *Hub) NotifyUser(userID int, event string, payload any) {
	h.exec(func() { h.toUser(userID, event, payload) })
}

// NotifyRoom pushes an event to everyone viewing the itinerary, in the chat
// panel or the editor.
func (h *Hub) NotifyRoom(itineraryID int, event string, payload any) {
	h.exec(func() { h.toCollaborationChannel(itineraryID, event, payload) })
}

// BroadcastToRoom pushes an event to the itinerary's editing room only.
func (h *Hub) BroadcastToRoom(itineraryID int, event string, payload any) {
	h.exec(func() { h.toEditingRoom(itineraryID, event, payload, nil) })
}

func (h *Hub) IsUserOnline(userID int) bool {
	var online bool
	h.exec(func() { online = h.registry.IsOnline(userID) })
	return online
}

func (h *Hub) OnlineUserCount() int {
	var count int
	h.exec(func() { count = h.registry.OnlineCount() })
	return count
}

// ActiveEditors lists the members of an itinerary's editing room.
func (h *Hub) ActiveEditors(itineraryID int) []models.Editor {
	var editors []models.Editor
	if !h.exec(func() { editors = toEditors(h.rooms.Members(itineraryID)) }) {
		return []models.Editor{}
	}
	return editors
}

func toEditors(members []Member) []models.Editor {
	editors := make([]models.Editor, 0, len(members))
	for _, m := range members {
		editors = append(editors, models.Editor{
			UserID:       m.UserID,
			Name:         m.Name,
			Email:        m.Email,
			ConnectionID: m.ConnectionID,
			ActiveField:  m.ActiveField,
		})
	}
	return editors
}

func sortedKeys(set map[int]struct{}) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
