package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/4chain-ag/go-dlc-settlement/internal/cli"
	"github.com/stretchr/testify/require"
)

const testContract = "testdata/contract.json"

// givenConfigFile writes a YAML configuration for the test and returns its path.
func givenConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// execute runs the root command with args and returns what it wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := cli.NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	cmd.SetContext(t.Context())

	err := cmd.Execute()
	return out.String(), err
}
