package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"itinerary-collab/internal/auth"
	"itinerary-collab/internal/config"
	"itinerary-collab/internal/database"
	"itinerary-collab/internal/handlers"
	"itinerary-collab/internal/services"
	"itinerary-collab/internal/websocket"
	"itinerary-collab/pkg/logger"

	"github.com/spf13/pflag"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := pflag.String("config", "", "path to a YAML config file")
	pflag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}
	logger.SetLevel(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.NewPostgresDB(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize services
	authService := auth.NewService(db, cfg.JWT)
	accessService := services.NewAccessService(db)

	// Initialize the realtime hub
	hub := websocket.NewHub(websocket.NewRegistry(), websocket.NewRooms(), accessService, cfg.Realtime)
	hubCtx, stopHub := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		hub.Run(hubCtx)
		close(hubDone)
	}()

	chatService := services.NewChatService(db, hub)

	// Initialize handlers
	router := handlers.Router{
		Auth:           handlers.NewAuthHandlers(authService),
		Chat:           handlers.NewChatHandlers(chatService),
		Presence:       handlers.NewPresenceHandlers(hub, accessService),
		WebSocket:      handlers.NewWebSocketHandlers(authService, authService, hub, cfg.Server.AllowedOrigins),
		Verifier:       authService,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Server started on http://localhost%s", cfg.Server.Port)
		logger.Info("WebSocket endpoint: ws://localhost%s/ws", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error: %v", err)
	}

	stopHub()
	<-hubDone
	logger.Info("Server stopped")
}
