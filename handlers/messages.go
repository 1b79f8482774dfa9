package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"butler-server/bot"
	"butler-server/middleware"
	"butler-server/models"
	"butler-server/store"
)

type MessageHandler struct {
	store      *store.Store
	hub        *Hub
	dispatcher *bot.Dispatcher
}

func NewMessageHandler(s *store.Store, hub *Hub, d *bot.Dispatcher) *MessageHandler {
	return &MessageHandler{store: s, hub: hub, dispatcher: d}
}

// Send stores the user's message, runs it through the command dispatcher
// and returns the assistant's replies. Replies are also pushed over the
// WebSocket so every open client sees the conversation advance.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, "Content is required", http.StatusBadRequest)
		return
	}

	userMsg, err := h.store.CreateMessage(userID, models.SenderUser, req.Content)
	if err != nil {
		http.Error(w, "Failed to store message", http.StatusInternalServerError)
		return
	}
	h.hub.SendToUser(userID, models.WSMessage{Type: models.WSTypeNewMessage, Payload: userMsg})

	var replies []models.Message
	for _, text := range h.dispatcher.Handle(userID, req.Content) {
		reply, err := h.store.CreateMessage(userID, models.SenderAssistant, text)
		if err != nil {
			http.Error(w, "Failed to store reply", http.StatusInternalServerError)
			return
		}
		h.hub.SendToUser(userID, models.WSMessage{Type: models.WSTypeNewMessage, Payload: reply})
		replies = append(replies, *reply)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": userMsg,
		"replies": replies,
	})
}

func (h *MessageHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	messages, err := h.store.GetMessages(userID, limit)
	if err != nil {
		http.Error(w, "Failed to fetch messages", http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}
