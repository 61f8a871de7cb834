package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/config"
	clierrors "github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/errors"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the merged configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		output.PrintInfo("Config file: %s", config.GetConfigFilePath())
		return output.PrintRecord("Settings", flatten("", config.AllSettings()))
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value and save it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetString(args[0], args[1]); err != nil {
			return clierrors.NewCLIError(clierrors.ErrorTypeConfig, "Could not save configuration", err)
		}
		output.PrintSuccess("%s = %s", args[0], args[1])
		return nil
	},
}

// flatten turns nested settings into dotted keys.
func flatten(prefix string, settings map[string]interface{}) map[string]interface{} {
	flat := map[string]interface{}{}
	for k, v := range settings {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]interface{}); ok {
			for nk, nv := range flatten(key, nested) {
				flat[nk] = nv
			}
			continue
		}
		flat[key] = v
	}
	return flat
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
