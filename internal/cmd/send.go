package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/prompter"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/service"
)

var (
	sendEnv string
	sendURL string
	sendYes bool
)

var sendCmd = &cobra.Command{
	Use:   "send <payload.json>",
	Short: "Send one signal payload",
	Long: `Validate a single-event payload and post it to the ingestion endpoint,
waiting for the answer. Sending to production asks for confirmation
when run from a terminal.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var confirm service.ConfirmFunc
		if !sendYes && prompter.IsInteractive() {
			confirm = prompter.PromptConfirm
		}

		signalService := service.NewSignalService(confirm)
		return signalService.Send(args[0], sendEnv, sendURL)
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendEnv, "env", "", "Ingestion environment: production, staging (default: signals.env)")
	sendCmd.Flags().StringVar(&sendURL, "url", "", "Send to this endpoint instead, e.g. a local sink")
	sendCmd.Flags().BoolVarP(&sendYes, "yes", "y", false, "Do not ask before sending to production")
}
