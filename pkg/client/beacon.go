package client

import (
	"context"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/logger"
)

// BeaconBody wraps the object a beacon carries. Data is sent as the JSON body.
type BeaconBody struct {
	Data interface{}
}

// Beacons sends best-effort, fire-and-forget POSTs. Failures are logged and
// never reported back to the caller.
type Beacons struct {
	client   *resty.Client
	inflight sync.WaitGroup
}

// NewBeacons returns a beacon sender on c, or on the shared client when c is nil.
func NewBeacons(c *resty.Client) *Beacons {
	if c == nil {
		c = GetClient()
	}
	return &Beacons{client: c}
}

// SendBeacon posts body to url on its own goroutine and returns immediately.
func (b *Beacons) SendBeacon(url string, body BeaconBody) {
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()

		requestID := uuid.NewString()
		resp, err := b.client.R().
			SetHeader("Content-Type", "application/json").
			SetHeader("X-Request-ID", requestID).
			SetBody(body.Data).
			Post(url)
		if err != nil {
			logger.Debug("Beacon failed", "url", url, "request_id", requestID, "error", err)
			return
		}
		if !resp.IsSuccess() {
			logger.Debug("Beacon rejected", "url", url, "request_id", requestID, "status", resp.Status())
		}
	}()
}

// Wait blocks until every beacon sent so far has finished or ctx is done.
func (b *Beacons) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
