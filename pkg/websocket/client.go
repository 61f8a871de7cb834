// Package websocket is a client for the live signal stream served by the
// dev sink.
package websocket

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeHello     MessageType = "hello"
	MessageTypeSignal    MessageType = "signal"
	MessageTypeHeartbeat MessageType = "heartbeat"
	MessageTypePong      MessageType = "pong"
	MessageTypeError     MessageType = "error"
)

// Message is a frame of the signal stream. Payload is left encoded so
// listeners decode it into the type they expect.
type Message struct {
	Type    MessageType         `json:"type"`
	Payload jsoniter.RawMessage `json:"payload,omitempty"`
}

// Listener receives the payload of a message.
type Listener func(payload jsoniter.RawMessage)

// Config holds WebSocket client configuration
type Config struct {
	Host                 string
	Port                 int
	Path                 string
	UseTLS               bool
	ConnectTimeoutMs     int
	HeartbeatIntervalMs  int
	ReconnectBaseDelayMs int
	ReconnectMaxDelayMs  int
	MaxReconnectAttempts int
}

// DefaultConfig returns the configuration for a sink on localhost.
func DefaultConfig() Config {
	return Config{
		Host:                 "localhost",
		Port:                 8787,
		Path:                 "/ws",
		UseTLS:               false,
		ConnectTimeoutMs:     15000,
		HeartbeatIntervalMs:  30000,
		ReconnectBaseDelayMs: 2000,
		ReconnectMaxDelayMs:  30000,
		MaxReconnectAttempts: -1, // unlimited
	}
}

// ConfigFromURL returns DefaultConfig pointed at raw, a ws://, wss://,
// http:// or https:// URL.
func ConfigFromURL(raw string) (Config, error) {
	cfg := DefaultConfig()
	u, err := url.Parse(raw)
	if err != nil {
		return cfg, fmt.Errorf("parse %q: %w", raw, err)
	}

	switch u.Scheme {
	case "ws", "http":
		cfg.UseTLS = false
		cfg.Port = 80
	case "wss", "https":
		cfg.UseTLS = true
		cfg.Port = 443
	default:
		return cfg, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return cfg, fmt.Errorf("missing host in %q", raw)
	}
	cfg.Host = u.Hostname()
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return cfg, fmt.Errorf("invalid port %q", p)
		}
		cfg.Port = port
	}
	if u.Path != "" && u.Path != "/" {
		cfg.Path = u.Path
	}
	return cfg, nil
}

// URL returns the address the client dials.
func (c Config) URL() string {
	scheme := "ws"
	if c.UseTLS {
		scheme = "wss"
	}
	u := url.URL{
		Scheme: scheme,
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Path,
	}
	return u.String()
}

type listenerEntry struct {
	id uint64
	fn Listener
}

// Client manages WebSocket connections
type Client struct {
	config            Config
	conn              *websocket.Conn
	state             atomic.Value // ConnectionState
	mu                sync.RWMutex
	writeMu           sync.Mutex
	reconnectAttempts int
	reconnectDelay    int
	listeners         map[MessageType][]listenerEntry
	listenersMu       sync.RWMutex
	nextListener      uint64
	ctx               context.Context
	cancel            context.CancelFunc
	statsLock         sync.RWMutex
	stats             ConnectionStats
}

// ConnectionState represents the state of the WebSocket connection
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateError
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateError:
		return "error"
	}
	return "unknown"
}

// ConnectionStats holds connection statistics
type ConnectionStats struct {
	MessagesReceived int64
	MessagesSent     int64
	ReconnectCount   int
	LastError        string
	ConnectedAt      time.Time
	DisconnectedAt   time.Time
}

// NewClient creates a new WebSocket client
func NewClient(config Config) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		config:         config,
		listeners:      make(map[MessageType][]listenerEntry),
		ctx:            ctx,
		cancel:         cancel,
		reconnectDelay: config.ReconnectBaseDelayMs,
	}
	client.state.Store(StateDisconnected)
	return client
}

// Connect establishes the WebSocket connection
func (c *Client) Connect() error {
	c.setState(StateConnecting)

	conn, err := c.dial()
	if err != nil {
		c.setState(StateError)
		c.recordError(err.Error())
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.reconnectAttempts = 0
	c.reconnectDelay = c.config.ReconnectBaseDelayMs
	c.mu.Unlock()

	c.setState(StateConnected)
	c.recordConnected()

	go c.readLoop(conn)
	go c.heartbeatLoop(conn)

	logger.Debug("WebSocket connected", "url", c.config.URL())
	return nil
}

// Disconnect closes the WebSocket connection and stops reconnecting.
func (c *Client) Disconnect() error {
	c.cancel()

	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	c.setState(StateDisconnected)
	c.recordDisconnected()

	logger.Debug("WebSocket disconnected")
	return nil
}

// Done is closed once the client is disconnected for good.
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// IsConnected returns true if the connection is established
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	return c.state.Load().(ConnectionState)
}

// On subscribes to a message type; the empty type receives every message.
// Listeners run on the read goroutine, in arrival order. The returned
// function unsubscribes.
func (c *Client) On(msgType MessageType, callback Listener) func() {
	c.listenersMu.Lock()
	c.nextListener++
	id := c.nextListener
	c.listeners[msgType] = append(c.listeners[msgType], listenerEntry{id: id, fn: callback})
	c.listenersMu.Unlock()

	return func() {
		c.listenersMu.Lock()
		defer c.listenersMu.Unlock()

		entries := c.listeners[msgType]
		for i, e := range entries {
			if e.id == id {
				c.listeners[msgType] = append(entries[:i:i], entries[i+1:]...)
				break
			}
		}
	}
}

// Send sends a message to the server
func (c *Client) Send(msgType MessageType, payload interface{}) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected")
	}

	msg := Message{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		msg.Payload = raw
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		return err
	}

	c.recordMessageSent()
	return nil
}

// GetStats returns connection statistics
func (c *Client) GetStats() ConnectionStats {
	c.statsLock.RLock()
	defer c.statsLock.RUnlock()
	return c.stats
}

func (c *Client) dial() (*websocket.Conn, error) {
	timeout := time.Duration(c.config.ConnectTimeoutMs) * time.Millisecond
	dialCtx, cancel := context.WithTimeout(c.ctx, timeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, c.config.URL(), nil)
	return conn, err
}

func (c *Client) readLoop(conn *websocket.Conn) {
	defer c.handleDisconnect(conn)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.ctx.Done():
			default:
				c.recordError(err.Error())
				logger.Warn("WebSocket read error", "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Debug("Ignoring malformed frame", "error", err)
			continue
		}
		c.recordMessageReceived()
		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg Message) {
	c.listenersMu.RLock()
	typed := append([]listenerEntry(nil), c.listeners[msg.Type]...)
	all := append([]listenerEntry(nil), c.listeners[""]...)
	c.listenersMu.RUnlock()

	for _, e := range typed {
		e.fn(msg.Payload)
	}
	if len(all) == 0 {
		return
	}
	frame, err := json.Marshal(msg)
	if err != nil {
		return
	}
	for _, e := range all {
		e.fn(frame)
	}
}

func (c *Client) heartbeatLoop(conn *websocket.Conn) {
	if c.config.HeartbeatIntervalMs <= 0 {
		return
	}
	ticker := time.NewTicker(time.Duration(c.config.HeartbeatIntervalMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.mu.RLock()
			current := c.conn
			c.mu.RUnlock()
			if current != conn {
				return
			}
			if err := c.Send(MessageTypeHeartbeat, nil); err != nil {
				logger.Debug("Failed to send heartbeat", "error", err)
			}
		}
	}
}

func (c *Client) handleDisconnect(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	select {
	case <-c.ctx.Done():
		return
	default:
	}

	c.setState(StateReconnecting)
	c.recordDisconnected()

	// Attempt reconnection with exponential backoff
	for {
		c.mu.Lock()
		attempts := c.reconnectAttempts
		delay := c.reconnectDelay
		c.mu.Unlock()

		if c.config.MaxReconnectAttempts >= 0 && attempts >= c.config.MaxReconnectAttempts {
			c.setState(StateError)
			logger.Error("Max reconnection attempts reached")
			c.cancel()
			return
		}

		waitTime := backoffWithJitter(delay)
		logger.Debug("Reconnecting WebSocket", "attempt", attempts+1, "wait_ms", waitTime.Milliseconds())

		select {
		case <-c.ctx.Done():
			return
		case <-time.After(waitTime):
		}

		next, err := c.dial()
		if err != nil {
			c.mu.Lock()
			c.reconnectAttempts++
			c.reconnectDelay = nextDelay(c.reconnectDelay, c.config.ReconnectMaxDelayMs)
			c.mu.Unlock()
			c.recordError(err.Error())
			continue
		}

		c.mu.Lock()
		c.conn = next
		c.reconnectAttempts = 0
		c.reconnectDelay = c.config.ReconnectBaseDelayMs
		c.mu.Unlock()

		c.setState(StateConnected)
		c.recordReconnected()

		logger.Debug("WebSocket reconnected")

		go c.readLoop(next)
		go c.heartbeatLoop(next)
		return
	}
}

func backoffWithJitter(delayMs int) time.Duration {
	backoff := time.Duration(delayMs) * time.Millisecond
	jitter := time.Duration(rand.Intn(1000)) * time.Millisecond
	return backoff + jitter
}

// nextDelay doubles the delay, capped at max.
func nextDelay(delayMs, maxMs int) int {
	return int(math.Min(float64(delayMs*2), float64(maxMs)))
}

func (c *Client) setState(state ConnectionState) {
	c.state.Store(state)
}

func (c *Client) recordMessageReceived() {
	c.statsLock.Lock()
	c.stats.MessagesReceived++
	c.statsLock.Unlock()
}

func (c *Client) recordMessageSent() {
	c.statsLock.Lock()
	c.stats.MessagesSent++
	c.statsLock.Unlock()
}

func (c *Client) recordError(errMsg string) {
	c.statsLock.Lock()
	c.stats.LastError = errMsg
	c.statsLock.Unlock()
}

func (c *Client) recordConnected() {
	c.statsLock.Lock()
	c.stats.ConnectedAt = time.Now()
	c.statsLock.Unlock()
}

func (c *Client) recordReconnected() {
	c.statsLock.Lock()
	c.stats.ReconnectCount++
	c.stats.ConnectedAt = time.Now()
	c.statsLock.Unlock()
}

func (c *Client) recordDisconnected() {
	c.statsLock.Lock()
	c.stats.DisconnectedAt = time.Now()
	c.statsLock.Unlock()
}
