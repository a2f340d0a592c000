package cli_test

import (
	"errors"
	"testing"

	"github.com/4chain-ag/go-dlc-settlement/internal/cli"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := cli.NewRootCommand()

	for _, path := range [][]string{
		{"simulate"},
		{"contract", "inspect"},
		{"oracle", "serve"},
		{"config", "print"},
	} {
		sub, _, err := cmd.Find(path)
		require.NoError(t, err)
		require.Equal(t, path[len(path)-1], sub.Name())
	}
}

func TestRootCommand_GlobalFlags(t *testing.T) {
	cmd := cli.NewRootCommand()

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	require.Equal(t, "c", configFlag.Shorthand)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	require.Equal(t, "text", formatFlag.DefValue)
}

func TestRootCommand_InvalidInvocation(t *testing.T) {
	tests := map[string]struct {
		args []string
	}{
		"unknown format": {
			args: []string{"--format", "xml", "config", "print"},
		},
		"unsupported config extension": {
			args: []string{"--config", "config.toml", "config", "print"},
		},
		"missing config file": {
			args: []string{"--config", "does-not-exist.yaml", "config", "print"},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			// when:
			_, err := execute(t, tc.args...)

			// then:
			require.Error(t, err)
			require.Equal(t, cli.ExitCommandError, cli.GetExitCode(err))
		})
	}
}

func TestGetExitCode(t *testing.T) {
	require.Equal(t, cli.ExitSuccess, cli.GetExitCode(nil))
	require.Equal(t, cli.ExitFailure, cli.GetExitCode(errors.New("plain")))
	require.Equal(t, cli.ExitCommandError, cli.GetExitCode(cli.NewExitError(cli.ExitCommandError, "bad flag")))
}
