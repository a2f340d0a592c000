package cli

import (
	"github.com/4chain-ag/go-dlc-settlement/pkg/appconfig"
	"github.com/spf13/cobra"
)

// NewConfigCommand groups the configuration commands.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "print",
		Short: "Print the merged configuration with secrets masked",
		Long: `Print the configuration after merging defaults, the configuration file
and DLC_ prefixed environment variables. Text output is YAML.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format := "yaml"
			if rootOpts.Format == "json" {
				format = "json"
			}
			if err := appconfig.PrettyPrintAs(cmd.OutOrStdout(), rootOpts.Config.Redacted(), format); err != nil {
				return WrapExitError(ExitFailure, "failed to print configuration", err)
			}
			return nil
		},
	})
	return cmd
}
