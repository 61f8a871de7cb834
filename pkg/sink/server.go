// Package sink is a local stand-in for the signals ingestion endpoint. It
// accepts single-event payloads, keeps the latest ones in memory and
// streams them to websocket subscribers.
package sink

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/api"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/impressions"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StreamPath is where subscribers connect for the live signal stream.
const StreamPath = "/ws"

// Config configures a Server.
type Config struct {
	Addr string
	// Buffer is how many recent events GET /events can return.
	Buffer int
}

// Server is the dev ingestion sink.
type Server struct {
	config   Config
	engine   *gin.Engine
	handler  http.Handler
	ring     *Ring
	hub      *Hub
	metrics  *Metrics
	registry *prometheus.Registry
	started  time.Time
}

// New builds a Server with its own metrics registry.
func New(config Config) *Server {
	if config.Buffer <= 0 {
		config.Buffer = 200
	}
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	s := &Server{
		config:   config,
		ring:     NewRing(config.Buffer),
		hub:      NewHub(metrics),
		metrics:  metrics,
		registry: registry,
		started:  time.Now(),
	}
	s.engine = s.routes()

	// gin marks the response written once coder/websocket sends the 101,
	// then refuses the hijack, so the stream bypasses the engine.
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+StreamPath, s.handleStream)
	mux.Handle("/", s.engine)
	s.handler = mux
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "X-Request-ID"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", s.handleHealth)
	r.POST(api.SingleEventPath, s.handleSingleEvent)
	r.GET("/events", s.handleEvents)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	return r
}

// Handler returns the HTTP handler of the sink.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Ring returns the buffer of received events.
func (s *Server) Ring() *Ring {
	return s.ring
}

// Metrics returns the sink's metrics.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Sink listening", "addr", s.config.Addr, "path", api.SingleEventPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down sink")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.hub.Close()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"timestamp":   time.Now().UTC(),
		"uptime_s":    int(time.Since(s.started).Seconds()),
		"events":      s.ring.Len(),
		"subscribers": s.hub.Count(),
	})
}

func (s *Server) handleSingleEvent(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		s.reject(c, "unreadable", err)
		return
	}

	var payload impressions.Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		s.reject(c, "invalid_json", err)
		return
	}
	if err := Validate(&payload); err != nil {
		s.reject(c, "invalid_payload", err)
		return
	}

	event := Event{
		ID:         c.GetString(requestIDKey),
		ReceivedAt: time.Now().UTC(),
		Payload:    &payload,
	}
	s.ring.Add(event)
	s.metrics.received(payload.Platform, payload.Tiles())
	s.hub.Broadcast(Message{Type: MessageTypeSignal, Payload: event})

	logger.Debug("Signal received",
		"id", event.ID,
		"platform", payload.Platform,
		"page", payload.Page.Name(),
		"containers", len(payload.Containers),
		"tiles", payload.Tiles(),
	)
	c.JSON(http.StatusOK, gin.H{"id": event.ID})
}

func (s *Server) reject(c *gin.Context, reason string, err error) {
	s.metrics.rejected(reason)
	logger.Debug("Signal rejected", "reason", reason, "error", err)
	c.JSON(http.StatusBadRequest, gin.H{
		"code":    reason,
		"error":   reason,
		"message": err.Error(),
	})
}

func (s *Server) handleEvents(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_limit", "message": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	events := s.ring.List(limit)
	if events == nil {
		events = []Event{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		logger.Debug("Stream upgrade failed", "error", err)
		return
	}

	hello := Message{Type: MessageTypeHello, Payload: gin.H{"buffered": s.ring.Len()}}
	s.hub.Serve(r.Context(), conn, hello)
}

const requestIDKey = "request_id"

// requestID keeps the caller's X-Request-ID or assigns one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
			"request_id", c.GetString(requestIDKey),
		}
		if status >= http.StatusInternalServerError {
			logger.Error("Request failed", args...)
			return
		}
		logger.Debug("Request completed", args...)
	}
}
