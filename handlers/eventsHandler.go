package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"lernbegleiter/models"
	"lernbegleiter/store"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const eventWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventsHandler streams progress and suggestion updates for one session
// over a WebSocket.
type EventsHandler struct {
	sessions store.SessionRepository
}

func NewEventsHandler(sessions store.SessionRepository) *EventsHandler {
	return &EventsHandler{sessions: sessions}
}

func (h *EventsHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/sessions/{id}/events", h.StreamEvents).Methods("GET")
}

func (h *EventsHandler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	session, err := h.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			writeErrorResponse(w, http.StatusNotFound, "Session not found")
		} else {
			writeErrorResponse(w, http.StatusInternalServerError, "Session lookup failed")
		}
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ERROR] WebSocket upgrade failed for session %s: %v", sessionID, err)
		return
	}
	defer conn.Close()

	events := session.Subscribe()
	defer session.Unsubscribe(events)

	log.Printf("[INFO] Event stream opened for session %s", sessionID)

	// Drain the read side so close frames and pings are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Send the current snapshot first so the client does not have to wait
	// for the next change.
	initial := models.SessionEvent{
		Type:      models.EventTypeProgress,
		Progress:  session.Tracker.Snapshot(),
		Timestamp: time.Now().UnixMilli(),
	}
	if err := writeEvent(conn, initial); err != nil {
		return
	}

	for {
		select {
		case <-done:
			log.Printf("[INFO] Event stream closed for session %s", sessionID)
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(conn, event); err != nil {
				log.Printf("[INFO] Event stream write failed for session %s: %v", sessionID, err)
				return
			}
		}
	}
}

func writeEvent(conn *websocket.Conn, event models.SessionEvent) error {
	conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
	return conn.WriteJSON(event)
}
