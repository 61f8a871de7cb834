package sink

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/logger"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024

	// Send buffer size
	sendBufferSize = 64
)

// Message is a frame on the live stream.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Stream message types.
const (
	MessageTypeHello     = "hello"
	MessageTypeSignal    = "signal"
	MessageTypeHeartbeat = "heartbeat"
	MessageTypePong      = "pong"
	MessageTypeError     = "error"
)

// subscriber is one websocket connection to the stream.
type subscriber struct {
	conn   *websocket.Conn
	send   chan []byte
	ctx    context.Context
	cancel context.CancelFunc
}

// Hub fans signals out to websocket subscribers. A subscriber that cannot
// keep up misses frames rather than slowing down ingestion.
type Hub struct {
	mu      sync.RWMutex
	subs    map[*subscriber]struct{}
	metrics *Metrics
}

// NewHub creates an empty hub.
func NewHub(metrics *Metrics) *Hub {
	return &Hub{
		subs:    make(map[*subscriber]struct{}),
		metrics: metrics,
	}
}

// Count returns the number of subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Broadcast queues msg for every subscriber.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("Failed to encode stream message", "type", msg.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		select {
		case s.send <- data:
		default:
			h.metrics.droppedFrame()
			logger.Debug("Subscriber too slow, frame dropped")
		}
	}
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		s.cancel()
		delete(h.subs, s)
	}
	h.metrics.setSubscribers(0)
}

// Serve runs a subscriber until it disconnects. hello is sent first.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, hello Message) {
	conn.SetReadLimit(maxMessageSize)
	subCtx, cancel := context.WithCancel(ctx)
	s := &subscriber{
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		ctx:    subCtx,
		cancel: cancel,
	}

	h.register(s)
	defer h.unregister(s)

	if data, err := json.Marshal(hello); err == nil {
		s.send <- data
	}

	go h.writePump(s)
	h.readPump(s)
}

func (h *Hub) register(s *subscriber) {
	h.mu.Lock()
	h.subs[s] = struct{}{}
	n := len(h.subs)
	h.mu.Unlock()

	h.metrics.setSubscribers(n)
	logger.Debug("Stream subscriber connected", "subscribers", n)
}

func (h *Hub) unregister(s *subscriber) {
	s.cancel()

	h.mu.Lock()
	delete(h.subs, s)
	n := len(h.subs)
	h.mu.Unlock()

	h.metrics.setSubscribers(n)
	logger.Debug("Stream subscriber disconnected", "subscribers", n)
}

func (h *Hub) readPump(s *subscriber) {
	for {
		_, data, err := s.conn.Read(s.ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && s.ctx.Err() == nil {
				logger.Debug("Stream read error", "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			h.reply(s, Message{Type: MessageTypeError, Payload: "invalid_json"})
			continue
		}
		if msg.Type == MessageTypeHeartbeat {
			h.reply(s, Message{Type: MessageTypePong})
		}
	}
}

func (h *Hub) reply(s *subscriber, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case s.send <- data:
	default:
	}
}

func (h *Hub) writePump(s *subscriber) {
	defer s.conn.Close(websocket.StatusNormalClosure, "closing")

	for {
		select {
		case <-s.ctx.Done():
			return
		case data := <-s.send:
			ctx, cancel := context.WithTimeout(s.ctx, writeWait)
			err := s.conn.Write(ctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Debug("Stream write error", "error", err)
				s.cancel()
				return
			}
		}
	}
}
