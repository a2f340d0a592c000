package config_test

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/4chain-ag/go-dlc-settlement/pkg/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	// given:
	l := config.NewLoader(Defaults, "TEST")

	// when:
	cfg, err := l.Load()

	// then:
	require.NoError(t, err)
	require.Equal(t, Defaults(), cfg)
}

func TestSources(t *testing.T) {
	tests := map[string]struct {
		prefix   string
		env      map[string]string
		content  string
		ext      string
		expected MockConfig
	}{
		"env variables override defaults": {
			prefix: "TEST",
			env: map[string]string{
				"TEST_ENGINE_SETTINGS_WORKERS": "2",
				"TEST_ORACLE_TIMEOUT":          "10s",
			},
			expected: MockConfig{
				Name:   "default_name",
				Engine: EngineConfig{Workers: 2, Strategy: "basis"},
				Oracle: OracleConfig{Timeout: 10 * time.Second},
			},
		},
		"yaml file overrides defaults": {
			prefix:  "TEST",
			content: yamlConfig,
			ext:     "yaml",
			expected: MockConfig{
				Name:   "default_name",
				Engine: EngineConfig{Workers: 3, Strategy: "direct"},
				Oracle: OracleConfig{Timeout: 30 * time.Second},
			},
		},
		"env overrides yaml file": {
			prefix:  "TEST",
			env:     map[string]string{"TEST_ENGINE_SETTINGS_WORKERS": "2"},
			content: yamlConfig,
			ext:     "yaml",
			expected: MockConfig{
				Name:   "default_name",
				Engine: EngineConfig{Workers: 2, Strategy: "direct"},
				Oracle: OracleConfig{Timeout: 30 * time.Second},
			},
		},
		"dotenv file with env override": {
			prefix:  "TEST",
			env:     map[string]string{"TEST_NAME": "env_name"},
			content: dotEnvConfig,
			ext:     "env",
			expected: MockConfig{
				Name:   "env_name",
				Engine: EngineConfig{Workers: 4, Strategy: "direct"},
				Oracle: OracleConfig{Timeout: 5 * time.Second},
			},
		},
		"json file with env override": {
			prefix:  "TEST",
			env:     map[string]string{"TEST_NAME": "env_name"},
			content: jsonConfig,
			ext:     "json",
			expected: MockConfig{
				Name:   "env_name",
				Engine: EngineConfig{Workers: 5, Strategy: "direct"},
				Oracle: OracleConfig{Timeout: time.Minute},
			},
		},
		"dotenv file with empty prefix": {
			env:     map[string]string{"NAME": "env_name"},
			content: dotEnvConfigEmptyPrefix,
			ext:     "env",
			expected: MockConfig{
				Name:   "env_name",
				Engine: EngineConfig{Workers: 4, Strategy: "direct"},
				Oracle: OracleConfig{Timeout: 5 * time.Second},
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			// given:
			l := config.NewLoader(Defaults, tc.prefix)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if tc.content != "" {
				require.NoError(t, l.SetConfigFilePath(tempConfig(t, tc.content, tc.ext)))
			}

			// when:
			cfg, err := l.Load()

			// then:
			require.NoError(t, err)
			require.Equal(t, tc.expected, cfg)
		})
	}
}

func TestLoadRunsValidation(t *testing.T) {
	// given:
	l := config.NewLoader(Defaults, "TEST")
	require.NoError(t, l.SetConfigFilePath(tempConfig(t, invalidYAMLConfig, "yaml")))

	// when:
	_, err := l.Load()

	// then:
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestSetConfigFilePath_UnsupportedExtension(t *testing.T) {
	// given:
	l := config.NewLoader(Defaults, "TEST")

	// when:
	err := l.SetConfigFilePath("config.txt")

	// then:
	require.ErrorIs(t, err, config.ErrUnsupportedExtension)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	// given:
	l := config.NewLoader(Defaults, "TEST")
	require.NoError(t, l.SetConfigFilePath(fmt.Sprintf("%s/missing.yaml", t.TempDir())))

	// when:
	_, err := l.Load()

	// then:
	require.Error(t, err)
}

func tempConfig(t *testing.T, content, extension string) string {
	t.Helper()
	configFilePath := fmt.Sprintf("%s/config.%s", t.TempDir(), extension)
	require.NoError(t, os.WriteFile(configFilePath, []byte(content), 0644))
	return configFilePath
}
