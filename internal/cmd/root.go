package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/client"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/config"
	clierrors "github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/errors"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/logger"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/output"
)

var (
	verbose    bool
	configPath string
	outputFmt  string
)

var rootCmd = &cobra.Command{
	Use:   "signals",
	Short: "Signals - impression batching for OTT clients",
	Long: `Signals tracks which content tiles a viewer saw and for how long,
batches those impressions and sends them to the user-signals ingestion
endpoint. Replay browse sessions, send one-off signals, and run a local
sink to inspect what a client would send.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := config.Init(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
			os.Exit(1)
		}

		logger.Init(verbose)

		if cmd.Flags().Changed("output") {
			if !output.ValidateOutputFormat(outputFmt) {
				fmt.Fprintf(os.Stderr, "Error: unknown output format %q (text, json, table)\n", outputFmt)
				os.Exit(1)
			}
			// Process only; not written to the config file
			config.Set("output.format", outputFmt)
		}

		client.Init()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, clierrors.FormatError(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/signals/config.toml)")
	rootCmd.PersistentFlags().StringVar(&outputFmt, "output", "text", "Output format: text, json, table")

	// Add subcommands
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(sinkCmd)
	rootCmd.AddCommand(tailCmd)
	rootCmd.AddCommand(pagesCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
