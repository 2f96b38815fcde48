package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// MessageType classifies a hub broadcast.
type MessageType string

const (
	MessageTypeSeatReserved    MessageType = "seat_reserved"
	MessageTypeSeatReleased    MessageType = "seat_released"
	MessageTypeFlightPublished MessageType = "flight_published"
	MessageTypeFlightDeleted   MessageType = "flight_deleted"
	MessageTypeFlightGenerated MessageType = "flight_generated"
)

// Message is a per-flight broadcast sent to every client watching the
// flight.
type Message struct {
	Type      MessageType `json:"type"`
	FlightID  uuid.UUID   `json:"flightId"`
	Seat      int         `json:"seat,omitempty"`
	Status    string      `json:"status,omitempty"`
	Occupancy int         `json:"occupancy,omitempty"`
	Capacity  int         `json:"capacity,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// Client is one WebSocket connection watching a single flight.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	flightID uuid.UUID
}

// Hub fans per-flight messages out to connected clients. Construct one per
// process and pass it down; there is no package-level instance.
type Hub struct {
	mu         sync.RWMutex
	clients    map[uuid.UUID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	log        zerolog.Logger
}

// NewHub creates a hub. Call Run in its own goroutine before serving.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
		log:        log,
	}
}

// Run is the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.flightID] == nil {
				h.clients[client.flightID] = make(map[*Client]bool)
			}
			h.clients[client.flightID][client] = true
			h.mu.Unlock()
			h.log.Debug().Stringer("flight", client.flightID).Msg("websocket client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.flightID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.clients, client.flightID)
					}
				}
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			data, err := json.Marshal(message)
			if err != nil {
				h.log.Error().Err(err).Msg("websocket marshal failed")
				continue
			}

			h.mu.RLock()
			clients := h.clients[message.FlightID]
			h.mu.RUnlock()

			for client := range clients {
				select {
				case client.send <- data:
				default:
					h.mu.Lock()
					delete(h.clients[message.FlightID], client)
					close(client.send)
					h.mu.Unlock()
				}
			}
		}
	}
}

// Broadcast queues a message for every client watching the flight.
func (h *Hub) Broadcast(msg *Message) {
	msg.Timestamp = time.Now().UnixMilli()
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn().Stringer("flight", msg.FlightID).Msg("websocket broadcast queue full, dropping")
	}
}

// ClientCount returns the number of clients watching a flight.
func (h *Hub) ClientCount(flightID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[flightID])
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// ServeWS upgrades the request and attaches the client to the flight's
// broadcast set.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, flightID uuid.UUID) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, 64),
		flightID: flightID,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		// Clients only listen; any read error tears the connection down.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
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
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
