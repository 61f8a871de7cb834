package service

import (
	"context"
	"net"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/config"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/output"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/sink"
)

// SinkService runs the local ingestion sink
type SinkService struct{}

// NewSinkService creates a new sink service
func NewSinkService() *SinkService {
	return &SinkService{}
}

// Serve runs the sink on addr until ctx is done. An empty addr uses sink.addr.
func (ss *SinkService) Serve(ctx context.Context, addr string) error {
	if addr == "" {
		addr = config.GetString("sink.addr")
	}

	server := sink.New(sink.Config{
		Addr:   addr,
		Buffer: config.GetInt("sink.buffer"),
	})

	output.PrintInfo("Sink listening on %s", addr)
	if _, port, err := net.SplitHostPort(addr); err == nil {
		output.PrintInfo("Point a client at it with: signals simulate --url http://localhost:%s", port)
	}
	return server.Run(ctx)
}
