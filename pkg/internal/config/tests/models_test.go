package config_test

import (
	"errors"
	"time"
)

type MockConfig struct {
	Name   string       `mapstructure:"name"`
	Engine EngineConfig `mapstructure:"engine_settings"`
	Oracle OracleConfig `mapstructure:"oracle"`
}

type EngineConfig struct {
	Workers  int    `mapstructure:"workers"`
	Strategy string `mapstructure:"crypto_strategy"`
}

type OracleConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

func (c *MockConfig) Validate() error {
	if c.Engine.Workers < 0 {
		return errors.New("workers must not be negative")
	}
	return nil
}

func Defaults() MockConfig {
	return MockConfig{
		Name: "default_name",
		Engine: EngineConfig{
			Workers:  1,
			Strategy: "basis",
		},
		Oracle: OracleConfig{
			Timeout: 5 * time.Second,
		},
	}
}

const yamlConfig = `
engine_settings:
  workers: 3
  crypto_strategy: direct
oracle:
  timeout: 30s
`

const dotEnvConfig = `
TEST_ENGINE_SETTINGS_WORKERS=4
TEST_ENGINE_SETTINGS_CRYPTO_STRATEGY="direct"
`

const dotEnvConfigEmptyPrefix = `
ENGINE_SETTINGS_WORKERS=4
ENGINE_SETTINGS_CRYPTO_STRATEGY="direct"
`

const jsonConfig = `
{
	"engine_settings": {
		"workers": 5,
		"crypto_strategy": "direct"
	},
	"oracle": {
		"timeout": "1m"
	}
}
`

const invalidYAMLConfig = `
engine_settings:
  workers: -1
`
