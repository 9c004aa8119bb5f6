// Package realtime streams catalog events to websocket clients.
package realtime

import "context"

// Hub owns the set of connected clients and fans messages out to them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Inbound messages from Redis to broadcast to all clients.
	broadcast chan []byte

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// count answers ClientCount queries from outside the run loop.
	count chan chan int

	// done is closed once Run has returned.
	done chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan chan int),
		done:       make(chan struct{}),
	}
}

// Run processes hub traffic until ctx is done, then disconnects everyone.
// A Hub runs once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// slow consumer
					h.drop(client)
				}
			}

		case reply := <-h.count:
			reply <- len(h.clients)
		}
	}
}

// Broadcast queues message for every client. It blocks until the hub
// accepts it, the hub stops or ctx is done.
func (h *Hub) Broadcast(ctx context.Context, message []byte) bool {
	select {
	case h.broadcast <- message:
		return true
	case <-h.done:
		return false
	case <-ctx.Done():
		return false
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount(ctx context.Context) int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
	case <-h.done:
		return 0
	case <-ctx.Done():
		return 0
	}
	select {
	case n := <-reply:
		return n
	case <-ctx.Done():
		return 0
	}
}

// attach hands client to the run loop. It reports false once the hub has
// stopped.
func (h *Hub) attach(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// detach removes client. After shutdown Run has already dropped it.
func (h *Hub) detach(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	if client.conn != nil {
		_ = client.conn.Close()
	}
}
