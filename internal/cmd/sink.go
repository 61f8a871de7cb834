package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/service"
)

var sinkAddr string

var sinkCmd = &cobra.Command{
	Use:   "sink",
	Short: "Run a local ingestion sink",
	Long: `Run a development stand-in for the ingestion endpoint. It validates
and keeps recent signals, lists them on /events, streams them on /ws
and exposes counters on /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sinkService := service.NewSinkService()
		return sinkService.Serve(ctx, sinkAddr)
	},
}

func init() {
	sinkCmd.Flags().StringVar(&sinkAddr, "addr", "", "Listen address (default: sink.addr)")
}
