package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Router struct {
	Auth           *AuthHandlers
	Chat           *ChatHandlers
	Presence       *PresenceHandlers
	WebSocket      *WebSocketHandlers
	Verifier       CredentialVerifier
	AllowedOrigins []string
}

func (rt Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(CORS(rt.AllowedOrigins))

	r.Post("/register", rt.Auth.Register)
	r.Post("/login", rt.Auth.Login)
	r.Get("/ws", rt.WebSocket.HandleWebSocket)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(rt.Verifier))

		r.Get("/itineraries/{id}/chat", rt.Chat.ListMessages)
		r.Post("/itineraries/{id}/chat", rt.Chat.SendMessage)
		r.Get("/itineraries/{id}/editors", rt.Presence.ActiveEditors)
		r.Get("/chat/unread", rt.Chat.UnreadCounts)
		r.Delete("/chat/{messageId}", rt.Chat.DeleteMessage)

		r.Get("/presence", rt.Presence.OnlineCount)
		r.Get("/presence/users/{id}", rt.Presence.UserStatus)
	})

	return r
}
