package websocket

import (
	"encoding/json"
	"log"
	"sync"
)

// Hub fans pipeline events out to connected clients. It is broadcast
// only; clients never send anything but pings.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopped    bool
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 16),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				client.Close()
			}
			h.clients = make(map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				h.clients[client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if !h.stopped {
				if _, ok := h.clients[client]; ok {
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer; drop the message rather than block
					// the hub.
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Stop gracefully shuts down the hub and waits for Run to exit.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	close(h.stop)
	<-h.done
}

type scoresUpdatedEvent struct {
	Type       string `json:"type"`
	Tournament string `json:"tournament"`
	Week       int    `json:"week"`
}

// ScoresUpdated tells every connected client that a week's results just
// landed. Satisfies the pipeline's notifier.
func (h *Hub) ScoresUpdated(tournament string, week int) {
	data, err := json.Marshal(scoresUpdatedEvent{
		Type:       "scores_updated",
		Tournament: tournament,
		Week:       week,
	})
	if err != nil {
		log.Printf("failed to marshal scores event: %v", err)
		return
	}

	select {
	case h.broadcast <- data:
	case <-h.done:
	}
}
