package service

import (
	"context"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	clierrors "github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/errors"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/formatter"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/logger"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/sink"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/websocket"
)

// TailService follows the signal stream of a running sink
type TailService struct {
	out io.Writer
}

// NewTailService creates a tail service printing to out
func NewTailService(out io.Writer) *TailService {
	return &TailService{out: out}
}

// Tail connects to the sink stream at rawURL and prints every signal until
// ctx is done or the connection is given up.
func (ts *TailService) Tail(ctx context.Context, rawURL string) error {
	cfg, err := websocket.ConfigFromURL(rawURL)
	if err != nil {
		return clierrors.ValidationError("url", err.Error())
	}

	ws := websocket.GetClient(cfg)
	defer ws.On(websocket.MessageTypeHello, ts.printHello(cfg.URL()))()
	defer ws.On(websocket.MessageTypeSignal, ts.printSignal)()
	defer ws.On(websocket.MessageTypeError, func(payload jsoniter.RawMessage) {
		logger.Warn("Sink reported an error", "payload", string(payload))
	})()

	if err := ws.Connect(); err != nil {
		return clierrors.CategorizeError(err)
	}
	defer ws.Disconnect()

	select {
	case <-ctx.Done():
	case <-ws.Done():
		stats := ws.GetStats()
		if stats.LastError != "" {
			return clierrors.NetworkError(fmt.Sprintf("Lost the sink stream: %s", stats.LastError))
		}
	}
	return nil
}

func (ts *TailService) printHello(url string) websocket.Listener {
	return func(payload jsoniter.RawMessage) {
		var hello struct {
			Buffered int `json:"buffered"`
		}
		if err := json.Unmarshal(payload, &hello); err != nil {
			logger.Debug("Bad hello frame", "error", err)
		}
		fmt.Fprintf(ts.out, "Connected to %s (%d buffered)\n", url, hello.Buffered)
	}
}

func (ts *TailService) printSignal(payload jsoniter.RawMessage) {
	var event sink.Event
	if err := json.Unmarshal(payload, &event); err != nil || event.Payload == nil {
		logger.Debug("Bad signal frame", "error", err)
		return
	}
	fmt.Fprintln(ts.out, formatter.SignalLine(event.Payload, event.ReceivedAt))
}
