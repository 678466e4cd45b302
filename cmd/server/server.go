package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"lernbegleiter/config"
	"lernbegleiter/handlers"
	"lernbegleiter/services/chat"
	"lernbegleiter/services/llm"
	"lernbegleiter/services/wlo"
	"lernbegleiter/store"

	"github.com/gorilla/mux"
)

const timeTrackingInterval = 30 * time.Second

func main() {
	cfg := config.Load()

	llmClient, err := llm.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}

	wloService := wlo.NewService(cfg.WLOBaseURL, llmClient)

	sessions := store.NewInMemorySessionRepository()
	sessions.StartTimeTracking(context.Background(), timeTrackingInterval)

	chatService := chat.NewService(sessions, wloService, llmClient, llmClient)

	sessionHandler := handlers.NewSessionHandler(sessions)
	chatHandler := handlers.NewChatHandler(chatService)
	eventsHandler := handlers.NewEventsHandler(sessions)

	router := mux.NewRouter()

	router.Use(corsMiddleware)

	router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("OPTIONS")

	api := router.PathPrefix("/api").Subrouter()
	api.Use(jsonMiddleware)
	sessionHandler.RegisterRoutes(api)
	chatHandler.RegisterRoutes(api)

	// The WebSocket route skips the JSON middleware so the upgrade
	// handshake stays untouched.
	events := router.PathPrefix("/api").Subrouter()
	eventsHandler.RegisterRoutes(events)

	router.HandleFunc("/health", healthCheckHandler).Methods("GET")

	addr := ":" + cfg.Port
	fmt.Printf("Server starting on port %s\n", cfg.Port)

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Expose-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "healthy"}`))
}
