package models

import "time"

// Sender values for conversation messages.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

type Message struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type SendMessageRequest struct {
	Content string `json:"content"`
}

// WebSocket message envelope
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

const (
	WSTypeNewMessage = "new_message"
	WSTypeReminder   = "reminder"
)
