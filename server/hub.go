package server

import (
	"encoding/json"
	"sync"
	"time"

	"chess-search/engine"
)

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type predictionPayload struct {
	Score     int32  `json:"score"`
	Display   string `json:"display"`
	UpdatedAt int64  `json:"updated_at"`
}

type client struct {
	send chan []byte
}

// PredictionHub fans search predictions out to websocket clients. It
// implements engine.PredictionSink.
type PredictionHub struct {
	mu        sync.Mutex
	clients   map[*client]struct{}
	broadcast chan predictionPayload
	last      *predictionPayload
}

func NewPredictionHub() *PredictionHub {
	return &PredictionHub{
		clients:   make(map[*client]struct{}),
		broadcast: make(chan predictionPayload, 64),
	}
}

func (h *PredictionHub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case payload := <-h.broadcast:
			h.mu.Lock()
			h.last = &payload
			for c := range h.clients {
				c.sendJSON(wsMessage{Type: "prediction", Payload: mustMarshal(payload)})
			}
			h.mu.Unlock()
		}
	}
}

// SetPrediction publishes score without blocking the search; predictions are
// dropped when the hub is behind.
func (h *PredictionHub) SetPrediction(score int32) {
	payload := predictionPayload{
		Score:     score,
		Display:   engine.FormatScore(score),
		UpdatedAt: time.Now().UnixMilli(),
	}
	select {
	case h.broadcast <- payload:
	default:
	}
}

func (h *PredictionHub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.sendJSON(wsMessage{Type: "prediction", Payload: mustMarshal(*h.last)})
	} else {
		c.sendJSON(wsMessage{Type: "snapshot"})
	}
	h.mu.Unlock()
}

func (h *PredictionHub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Clients reports the number of connected websocket clients.
func (h *PredictionHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (c *client) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

var _ engine.PredictionSink = (*PredictionHub)(nil)
