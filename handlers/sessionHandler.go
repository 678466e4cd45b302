package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"lernbegleiter/models"
	"lernbegleiter/store"

	"github.com/gorilla/mux"
)

type CreateSessionRequest struct {
	Settings *models.ChatSettings `json:"settings"`
}

type SessionHandler struct {
	sessions store.SessionRepository
}

func NewSessionHandler(sessions store.SessionRepository) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/sessions", h.CreateSession).Methods("POST")
	router.HandleFunc("/sessions/{id}", h.GetSession).Methods("GET")
	router.HandleFunc("/sessions/{id}/messages", h.GetMessages).Methods("GET")
	router.HandleFunc("/sessions/{id}/progress", h.GetProgress).Methods("GET")
	router.HandleFunc("/sessions/{id}/suggestions", h.GetSuggestions).Methods("GET")
	router.HandleFunc("/sessions/{id}/settings", h.UpdateSettings).Methods("PUT")
}

func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	settings := models.DefaultChatSettings()

	if r.Body != nil && r.ContentLength != 0 {
		var req CreateSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("[ERROR] Failed to decode session create request: %v", err)
			writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
			return
		}
		if req.Settings != nil {
			settings = *req.Settings
		}
	}

	session := h.sessions.Create(settings)
	writeJSONResponse(w, http.StatusCreated, summarize(session))
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, summarize(session))
}

func (h *SessionHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string][]models.Message{"messages": session.Messages()})
}

func (h *SessionHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, session.Tracker.Snapshot())
}

func (h *SessionHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string][]models.WLOMetadata{"suggestions": session.Suggestions()})
}

func (h *SessionHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var settings models.ChatSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		log.Printf("[ERROR] Failed to decode settings update: %v", err)
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	session.SetSettings(settings)
	log.Printf("[INFO] Updated settings for session %s (useKissKI=%v, enableWLO=%v, debugMode=%v)",
		session.ID, settings.UseKissKI, settings.EnableWLO, settings.DebugMode)
	writeJSONResponse(w, http.StatusOK, settings)
}

func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (*store.Session, bool) {
	id := mux.Vars(r)["id"]
	session, err := h.sessions.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			writeErrorResponse(w, http.StatusNotFound, "Session not found")
		} else {
			log.Printf("[ERROR] Session lookup failed: %v", err)
			writeErrorResponse(w, http.StatusInternalServerError, "Session lookup failed")
		}
		return nil, false
	}
	return session, true
}

func summarize(session *store.Session) models.SessionSummary {
	return models.SessionSummary{
		ID:               session.ID,
		Settings:         session.Settings(),
		MessageCount:     len(session.Messages()),
		SessionStartTime: session.Tracker.Snapshot().SessionStartTime,
	}
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
