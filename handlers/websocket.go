package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"butler-server/middleware"
	"butler-server/models"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
)

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

// Hub fans assistant replies and reminder notifications out to each
// owner's live connections. Owners may hold several connections at once
// (desktop + phone); every one of them receives the push.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
	}
}

func (h *Hub) Run() {
	log.Printf("[WS HUB] Hub started and running")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WS HUB] Client registered: %s (total clients: %d)", client.userID, clientCount)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			clientCount := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WS HUB] Client unregistered: %s (total clients: %d)", client.userID, clientCount)
		}
	}
}

// SendToUser pushes a message to every live connection of the user.
// Returns the number of connections reached.
func (h *Hub) SendToUser(userID string, msg models.WSMessage) int {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[WS] SendToUser marshal error for type '%s': %v", msg.Type, err)
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	sentCount := 0
	for client := range h.clients {
		if client.userID == userID {
			select {
			case client.send <- data:
				sentCount++
			default:
				log.Printf("[WS] SendToUser: client %s buffer full, closing", client.userID)
				close(client.send)
				delete(h.clients, client)
			}
		}
	}
	return sentCount
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Token required", http.StatusUnauthorized)
		return
	}

	claims, err := middleware.ValidateToken(token)
	if err != nil {
		log.Printf("[WS] Connection rejected - invalid token from %s: %v", r.RemoteAddr, err)
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error for user %s: %v", claims.UserID, err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: claims.UserID,
	}

	go client.writePump()
	go client.readPump()

	h.register <- client
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// The conversation happens over the REST API; the socket is a push
	// channel, so inbound frames are drained only to keep the connection
	// and its control handlers alive.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Read error for client %s: %v", c.userID, err)
			}
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
