package appconfig

import (
	"fmt"

	"github.com/4chain-ag/go-dlc-settlement/pkg/internal/config"
)

// DefaultConfigFilePath is the default path to the configuration file.
const DefaultConfigFilePath = config.DefaultConfigFilePath

// EnvPrefix prefixes every environment variable read by the loader.
const EnvPrefix = "DLC"

// NewLoader creates a new configuration loader with the given environment prefix.
func NewLoader(envPrefix string) *config.Loader[Config] {
	return config.NewLoader(Defaults, envPrefix)
}

// Load reads the configuration from path (optional when it is the default
// path), the environment and the defaults, then validates it.
func Load(path string) (Config, error) {
	loader := NewLoader(EnvPrefix)
	if path != "" {
		if err := loader.SetConfigFilePath(path); err != nil {
			return Config{}, err
		}
	}
	return loader.Load()
}

// Export writes the configuration to path in the format implied by its extension.
func Export(cfg *Config, path string) error {
	if err := config.Export(cfg, path, EnvPrefix); err != nil {
		return fmt.Errorf("failed to export configuration: %w", err)
	}
	return nil
}

// SupportedExts returns the list of supported configuration file extensions.
func SupportedExts() []string {
	return config.SupportedExts
}
