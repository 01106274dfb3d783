package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/infrastructure"
	"github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts"
	"github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/events"
)

// TypeConnection greets a client right after it registers.
const TypeConnection = string(events.MessageTypeConnection)

// defaultQueueSize bounds the broadcast queue.
const defaultQueueSize = 64

// Message is the envelope of every frame sent to clients.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
// All client bookkeeping happens on the Run goroutine; only Run closes a
// client's send channel.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	// count mirrors len(clients) for readers off the Run goroutine
	mu    sync.RWMutex
	count int

	logger  *slog.Logger
	metrics *OTelMetrics
}

// NewHub creates a hub. metrics may be nil.
func NewHub(logger *slog.Logger, metrics *OTelMetrics) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, defaultQueueSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		metrics:    metrics,
	}
}

// Run serves registrations and broadcasts until ctx is done or Stop is
// called. Remaining clients are disconnected on return.
func (h *Hub) Run(ctx context.Context) {
	defer h.closeAll()
	for {
		select {
		case <-ctx.Done():
			h.Stop()
			return
		case <-h.done:
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.setCount(len(h.clients))
			h.metrics.RecordConnection(ctx)
			h.logger.InfoContext(ctx, "Client registered",
				slog.Int("total_clients", len(h.clients)),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))
			h.greet(ctx, client)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; !ok {
				continue
			}
			h.drop(ctx, client)
			h.logger.InfoContext(ctx, "Client unregistered",
				slog.Int("total_clients", len(h.clients)),
				slog.String("client_id", client.id),
				slog.Duration("connection_duration", time.Since(client.connectedAt)))

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					h.drop(ctx, client)
					h.metrics.RecordDroppedMessage(ctx, "client_buffer_full")
					h.logger.WarnContext(ctx, "Client send buffer full, disconnecting",
						slog.String("client_id", client.id))
				}
			}
		}
	}
}

func (h *Hub) greet(ctx context.Context, client *Client) {
	data, err := encode(TypeConnection, map[string]interface{}{
		"status":      "connected",
		"client_id":   client.id,
		"api_version": contracts.APIVersion,
	})
	if err != nil {
		return
	}
	select {
	case client.send <- data:
	default:
		h.logger.WarnContext(ctx, "Failed to send connection message - client buffer full",
			slog.String("client_id", client.id))
	}
}

func (h *Hub) drop(ctx context.Context, client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.setCount(len(h.clients))
	h.metrics.RecordDisconnection(ctx, time.Since(client.connectedAt))
}

func (h *Hub) closeAll() {
	ctx := context.Background()
	for client := range h.clients {
		h.drop(ctx, client)
	}
	h.logger.Info("Hub shutting down")
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
}

// Broadcast queues a message for every client. It never blocks: when the
// queue is full or the hub has stopped the message is dropped.
func (h *Hub) Broadcast(messageType string, data interface{}) {
	payload, err := encode(messageType, data)
	if err != nil {
		h.logger.Error("Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", messageType))
		return
	}

	select {
	case <-h.done:
		return
	default:
	}

	select {
	case h.broadcast <- payload:
		h.metrics.RecordMessageSent(context.Background(), messageType, len(payload))
	default:
		h.metrics.RecordDroppedMessage(context.Background(), "broadcast_queue_full")
		h.logger.Warn("Broadcast queue full, dropping message",
			slog.String("message_type", messageType))
	}
}

func encode(messageType string, data interface{}) ([]byte, error) {
	return json.Marshal(Message{Type: messageType, Data: data, Timestamp: time.Now().UTC()})
}

// Register adds a client. It returns false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client; it is a no-op for unknown clients.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Stop ends Run. It is safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}
