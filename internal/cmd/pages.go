package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/service"
)

var pagesCmd = &cobra.Command{
	Use:   "pages <path>...",
	Short: "Show which analytics page a path resolves to",
	Long: `Show the page object signals carry for each path. Impressions seen on
a path that resolves to no page are never sent.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pagesService := service.NewPagesService()
		return pagesService.Resolve(args)
	},
}
