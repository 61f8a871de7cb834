package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/service"
)

var (
	simRandom int
	simSeed   uint64
	simDryRun bool
	simEnv    string
	simURL    string
	simSave   string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate [script.json]",
	Short: "Replay a browse session through the impressions manager",
	Long: `Replay a session script in virtual time: tiles come into view, leave,
and pages change as the script says, and every signal the impressions
manager flushes is sent to the ingestion endpoint.

Use --random to generate a session instead of reading a script, and
--dry-run to build the signals without sending them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := service.SimulateOptions{
			Random: simRandom,
			Seed:   simSeed,
			DryRun: simDryRun,
			Env:    simEnv,
			URL:    simURL,
			SaveTo: simSave,
		}
		if len(args) > 0 {
			opts.ScriptPath = args[0]
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		simulateService := service.NewSimulateService()
		return simulateService.Simulate(ctx, opts)
	},
}

func init() {
	simulateCmd.Flags().IntVar(&simRandom, "random", 0, "Generate a session of N page views instead of reading a script")
	simulateCmd.Flags().Uint64Var(&simSeed, "seed", 0, "Seed for --random (0 picks one)")
	simulateCmd.Flags().BoolVar(&simDryRun, "dry-run", false, "Build signals without sending them")
	simulateCmd.Flags().StringVar(&simEnv, "env", "", "Ingestion environment: production, staging (default: signals.env)")
	simulateCmd.Flags().StringVar(&simURL, "url", "", "Send to this endpoint instead, e.g. a local sink")
	simulateCmd.Flags().StringVar(&simSave, "save", "", "Write the replayed script to this file")
}
