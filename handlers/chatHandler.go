package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"lernbegleiter/services/chat"
	"lernbegleiter/store"

	"github.com/gorilla/mux"
)

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatHandler struct {
	service *chat.Service
}

func NewChatHandler(service *chat.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

func (h *ChatHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/sessions/{id}/messages", h.PostMessage).Methods("POST")
}

func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode chat request: %v", err)
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeErrorResponse(w, http.StatusBadRequest, "Message must not be empty")
		return
	}

	response, err := h.service.SubmitUserTurn(r.Context(), sessionID, req.Message)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			writeErrorResponse(w, http.StatusNotFound, "Session not found")
			return
		}
		log.Printf("[ERROR] Chat turn failed for session %s: %v", sessionID, err)
		writeErrorResponse(w, http.StatusBadGateway, chat.ErrorReply)
		return
	}

	writeJSONResponse(w, http.StatusOK, response)
}
