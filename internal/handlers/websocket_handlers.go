package handlers

import (
	"context"
	"net/http"

	ws "itinerary-collab/internal/websocket"
	"itinerary-collab/pkg/logger"

	"github.com/gorilla/websocket"
)

// DisplayNameLookup resolves the name and email shown to collaborators.
type DisplayNameLookup interface {
	LookupDisplayName(ctx context.Context, userID int) (name, email string, err error)
}

type WebSocketHandlers struct {
	verifier CredentialVerifier
	names    DisplayNameLookup
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

func NewWebSocketHandlers(verifier CredentialVerifier, names DisplayNameLookup, hub *ws.Hub, allowedOrigins []string) *WebSocketHandlers {
	return &WebSocketHandlers{
		verifier: verifier,
		names:    names,
		hub:      hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || originAllowed(allowedOrigins, origin)
			},
		},
	}
}

// HandleWebSocket authenticates the handshake and hands the connection to
// the hub. Nothing is upgraded for a missing or invalid credential.
func (h *WebSocketHandlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	identity, err := h.verifier.VerifyCredential(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	name, email, err := h.names.LookupDisplayName(r.Context(), identity.UserID)
	if err != nil {
		logger.Warn("Display name lookup failed for user %d: %v", identity.UserID, err)
		name, email = identity.Email, identity.Email
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Upgrade error: %v", err)
		return
	}

	client := ws.NewClient(h.hub, conn, identity.UserID, name, email)
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
