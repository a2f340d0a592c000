package cli_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigPrint_MasksSecrets(t *testing.T) {
	// given:
	cfg := givenConfigFile(t, `
log:
  level: error
oracle_server:
  bearer_token: top-secret
oracle:
  http:
    bearer_token: top-secret
`)

	// when:
	out, err := execute(t, "--config", cfg, "config", "print")

	// then:
	require.NoError(t, err)
	require.Contains(t, out, "oracle_server:")
	require.Contains(t, out, "********")
	require.NotContains(t, out, "top-secret")
}

func TestConfigPrint_JSON(t *testing.T) {
	// given:
	cfg := givenConfigFile(t, "log:\n  level: error\nengine:\n  workers: 3\n")

	// when:
	out, err := execute(t, "--config", cfg, "--format", "json", "config", "print")

	// then:
	require.NoError(t, err)

	var printed map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &printed))
	engine, ok := printed["engine"].(map[string]any)
	require.True(t, ok)
	require.InDelta(t, 3, engine["workers"], 0)
}
