package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	DefaultConfigFilePath = "config.yaml"
)

var SupportedExts = []string{"yaml", "yml", "json", "dotenv", "env"}

var (
	ErrUnsupportedExtension = errors.New("unsupported config file extension")
	ErrInvalidConfig        = errors.New("invalid configuration")
)

// Validator is implemented by configurations that can check themselves
// once every source has been applied.
type Validator interface {
	Validate() error
}

type Loader[T any] struct {
	cfg            T
	envPrefix      string
	configFilePath string
	configFileExt  string
	viper          *viper.Viper
}

func NewLoader[T any](defaults func() T, envPrefix string) *Loader[T] {
	return &Loader[T]{
		cfg:            defaults(),
		envPrefix:      envPrefix,
		configFilePath: DefaultConfigFilePath,
		configFileExt:  "yaml",
		viper:          viper.New(),
	}
}

func (l *Loader[T]) SetConfigFilePath(path string) error {
	ext := extension(path)
	if !slices.Contains(SupportedExts, ext) {
		return fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}

	l.configFilePath = path
	l.configFileExt = ext
	return nil
}

// Load loads the configuration from the environment and the config file.
// NOTE: The priority of the values is as follows:
// 1. Environment variables
// 2. Config file (supported types: "yaml", "yml", "json", "env", "dotenv")
// 3. Default values
//
// NOTE: The config file is optional unless its path was set explicitly.
// NOTE: For nested structs, the keys in the ENV variables are separated by underscores,
// e.g. engine.crypto_strategy is read from <ENVPREFIX>_ENGINE_CRYPTO_STRATEGY.
//
// When T (or *T) implements Validator, the loaded configuration is validated
// and a failure is reported as ErrInvalidConfig.
func (l *Loader[T]) Load() (T, error) {
	if err := l.setViperDefaults(); err != nil {
		return l.cfg, err
	}

	l.prepareViper()

	if err := l.loadFromFile(); err != nil {
		return l.cfg, err
	}

	if err := l.viperToCfg(); err != nil {
		return l.cfg, err
	}

	if err := l.validate(); err != nil {
		return l.cfg, err
	}

	return l.cfg, nil
}

func (l *Loader[T]) setViperDefaults() error {
	defaultsMap := make(map[string]any)
	if err := mapstructure.Decode(l.cfg, &defaultsMap); err != nil {
		return fmt.Errorf("error occurred while setting defaults: %w", err)
	}

	for k, v := range defaultsMap {
		l.viper.SetDefault(k, v)
	}

	return nil
}

func (l *Loader[T]) prepareViper() {
	l.viper.SetEnvPrefix(l.envPrefix)
	l.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.viper.AutomaticEnv()
}

func (l *Loader[T]) loadFromFile() error {
	if l.configFilePath == DefaultConfigFilePath {
		_, err := os.Stat(l.configFilePath)
		if os.IsNotExist(err) {
			return nil
		}
	}

	if l.configFileExt == "dotenv" || l.configFileExt == "env" {
		return l.loadFromEnvFile()
	}

	l.viper.SetConfigFile(l.configFilePath)
	if err := l.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	return nil
}

// loadFromEnvFile reads flat PREFIX_NESTED_KEY entries and maps them onto the
// nested keys known from the defaults. File values take the place of the
// defaults, so environment variables still win over them.
func (l *Loader[T]) loadFromEnvFile() error {
	file := viper.New()
	file.SetConfigFile(l.configFilePath)
	file.SetConfigType("env")
	if err := file.ReadInConfig(); err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}

	known := make(map[string]string)
	for _, key := range l.viper.AllKeys() {
		known[strings.ReplaceAll(key, ".", "_")] = key
	}

	prefix := strings.ToLower(l.envPrefix)
	if prefix != "" {
		prefix += "_"
	}
	for key, value := range file.AllSettings() {
		if nested, ok := known[strings.TrimPrefix(key, prefix)]; ok {
			l.viper.SetDefault(nested, value)
		}
	}
	return nil
}

func (l *Loader[T]) viperToCfg() error {
	if err := l.viper.Unmarshal(&l.cfg); err != nil {
		return fmt.Errorf("error while unmarshalling config from viper: %w", err)
	}
	return nil
}

func (l *Loader[T]) validate() error {
	v, ok := any(&l.cfg).(Validator)
	if !ok {
		return nil
	}
	if err := v.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}
