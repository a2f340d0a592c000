package cli

import (
	"fmt"
	"slices"

	"github.com/4chain-ag/go-dlc-settlement/pkg/appconfig"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands and the configuration
// loaded before any of them runs.
type RootOptions struct {
	ConfigPath string
	Format     string // "json" | "text"

	Config appconfig.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of the settlement CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "dlc",
		Short: "Discreet Log Contract settlement engine",
		Long: `Settles a two-party Discreet Log Contract: precomputes adaptor
pre-signatures for every outcome, exchanges them with the counterparty and
finalizes the settlement once the oracle attests.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}

			cfg, err := appconfig.Load(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load configuration", err)
			}
			opts.Config = cfg

			configureLogging(cfg.Log, cmd.ErrOrStderr())
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to the configuration file (yaml, json or env)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewSimulateCommand(opts))
	cmd.AddCommand(NewContractCommand(opts))
	cmd.AddCommand(NewOracleCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}
