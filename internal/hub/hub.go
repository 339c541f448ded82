// Package hub streams events to browsers over Server-Sent Events.
//
// Every client subscribes to one topic (a session id). Messages published
// to a topic reach its clients; messages published to the empty topic reach
// every client.
//
// Frames are best effort: a slow client skips them. Control events such as
// navigation requests go through a separate ordered queue and are never
// skipped; a client that stops reading them is disconnected instead.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"coremap/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Message is one named SSE event
type Message struct {
	Topic string
	Name  string
	Data  interface{}

	// close disconnects the clients of Topic
	close bool
}

// Client represents a connected SSE client
type Client struct {
	id      string
	topic   string
	events  chan []byte
	control chan []byte
}

func newClient(topic string) *Client {
	return &Client{
		id:      uuid.NewString(),
		topic:   topic,
		events:  make(chan []byte, 64),
		control: make(chan []byte, 16),
	}
}

// Hub manages SSE client connections
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan Message
	control    chan Message

	keepAlive time.Duration
	logger    *zap.Logger
}

// New creates a new Hub
func New(keepAlive time.Duration, logger *zap.Logger) *Hub {
	if keepAlive <= 0 {
		keepAlive = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Message, 1024),
		control:    make(chan Message, 64),
		keepAlive:  keepAlive,
		logger:     logger,
	}
}

// Run starts the hub's event loop and returns when ctx is cancelled.
// Remaining clients are disconnected on return.
func (h *Hub) Run(ctx context.Context) error {
	defer h.disconnectAll()

	for {
		select {
		case <-ctx.Done():
			return nil

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			total := len(h.clients)
			h.mu.Unlock()
			metrics.SSEClients.Inc()
			h.logger.Debug("SSE client connected",
				zap.String("client", client.id), zap.String("topic", client.topic), zap.Int("total", total))

		case client := <-h.unregister:
			h.drop(client)

		case msg := <-h.control:
			if msg.close {
				h.dropTopic(msg.Topic)
				continue
			}
			h.deliver(msg, true)

		case msg := <-h.broadcast:
			h.deliver(msg, false)
		}
	}
}

// deliver queues msg for the clients of its topic
func (h *Hub) deliver(msg Message, control bool) {
	data, err := json.Marshal(msg.Data)
	if err != nil {
		h.logger.Warn("failed to marshal event", zap.String("event", msg.Name), zap.Error(err))
		return
	}
	frame := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", msg.Name, data))

	var stuck []*Client
	h.mu.RLock()
	for client := range h.clients {
		if msg.Topic != "" && client.topic != msg.Topic {
			continue
		}
		queue := client.events
		if control {
			queue = client.control
		}
		select {
		case queue <- frame:
		default:
			if control {
				stuck = append(stuck, client)
				continue
			}
			h.logger.Debug("SSE client is slow, skipping message",
				zap.String("client", client.id), zap.String("event", msg.Name))
		}
	}
	h.mu.RUnlock()

	for _, client := range stuck {
		h.logger.Warn("SSE client stopped reading control events, disconnecting",
			zap.String("client", client.id), zap.String("event", msg.Name))
		h.drop(client)
	}
}

func (h *Hub) dropTopic(topic string) {
	h.mu.RLock()
	var doomed []*Client
	for client := range h.clients {
		if client.topic == topic {
			doomed = append(doomed, client)
		}
	}
	h.mu.RUnlock()
	for _, client := range doomed {
		h.drop(client)
	}
}

func (h *Hub) drop(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.events)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		metrics.SSEClients.Dec()
		h.logger.Debug("SSE client disconnected",
			zap.String("client", client.id), zap.String("topic", client.topic), zap.Int("total", total))
	}
}

func (h *Hub) disconnectAll() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()
	for _, client := range clients {
		h.drop(client)
	}
}

// Publish queues a named event for the clients of topic.
// It never blocks; the event is dropped when the hub is backed up.
func (h *Hub) Publish(topic, name string, data interface{}) {
	select {
	case h.broadcast <- Message{Topic: topic, Name: name, Data: data}:
	default:
		h.logger.Warn("broadcast channel full, dropping event", zap.String("event", name))
	}
}

// PublishControl queues an event that clients must not miss. It keeps its
// order relative to other control events and CloseTopic, and blocks until
// the hub accepts it or ctx is done.
func (h *Hub) PublishControl(ctx context.Context, topic, name string, data interface{}) error {
	select {
	case h.control <- Message{Topic: topic, Name: name, Data: data}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CloseTopic disconnects every client of topic after the control events
// already queued for it are delivered
func (h *Hub) CloseTopic(topic string) {
	select {
	case h.control <- Message{Topic: topic, close: true}:
	default:
		h.logger.Warn("control channel full, topic not closed", zap.String("topic", topic))
	}
}

// ClientCount returns the number of clients of topic, or of all topics when empty
func (h *Hub) ClientCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if topic == "" {
		return len(h.clients)
	}
	n := 0
	for client := range h.clients {
		if client.topic == topic {
			n++
		}
	}
	return n
}

// Serve streams the events of topic until the client disconnects or the
// hub closes the topic. It reports whether the client went away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, topic string) (clientGone bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return false
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	client := newClient(topic)

	select {
	case h.register <- client:
	case <-r.Context().Done():
		return true
	}
	defer func() {
		// the hub may already have dropped the client
		select {
		case h.unregister <- client:
		case <-time.After(time.Second):
		}
	}()

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	write := func(msg []byte) bool {
		if _, err := w.Write(msg); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	for {
		select {
		case msg := <-client.control:
			if !write(msg) {
				return true
			}

		case msg, ok := <-client.events:
			if !ok {
				// control events queued before the hub let go still go out
				for {
					select {
					case msg := <-client.control:
						if !write(msg) {
							return true
						}
					default:
						return false
					}
				}
			}
			if !write(msg) {
				return true
			}

		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": keepalive\n\n"); err != nil {
				return true
			}
			flusher.Flush()

		case <-r.Context().Done():
			return true
		}
	}
}
