package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/output"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/service"
)

var tailURL string

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print signals as a running sink receives them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		tailService := service.NewTailService(output.Out)
		return tailService.Tail(ctx, tailURL)
	},
}

func init() {
	tailCmd.Flags().StringVar(&tailURL, "url", "ws://localhost:8787/ws", "Stream URL of the sink")
}
