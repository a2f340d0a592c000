package appconfig

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/4chain-ag/go-dlc-settlement/pkg/core/adaptor"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/crypto"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/outcome"
	"github.com/4chain-ag/go-dlc-settlement/pkg/oracleclient"
	"github.com/4chain-ag/go-dlc-settlement/pkg/oracleserver"
)

const (
	OracleModeLocal = "local"
	OracleModeHTTP  = "http"

	// RandomOutcome lets the local oracle draw the outcome.
	RandomOutcome = -1
)

// LogLevels lists the accepted log.level values.
var LogLevels = []string{"trace", "debug", "info", "notice", "warn", "error", "fatal", "panic"}

// Config represents the application configuration.
type Config struct {
	AppName      string              `mapstructure:"app_name"`
	Log          Log                 `mapstructure:"log"`
	Contract     Contract            `mapstructure:"contract"`
	Engine       Engine              `mapstructure:"engine"`
	Oracle       Oracle              `mapstructure:"oracle"`
	OracleServer oracleserver.Config `mapstructure:"oracle_server"`
	Storage      Storage             `mapstructure:"storage"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Contract points at the contract offer both parties settle.
type Contract struct {
	Path string `mapstructure:"path"`

	// NbDigits pins the outcome space. Zero follows the contract's own nbDigits.
	NbDigits uint8 `mapstructure:"nb_digits"`

	// EventID overrides the event named by the contract when set.
	EventID string `mapstructure:"event_id"`
}

type Engine struct {
	AdaptorScheme  string `mapstructure:"adaptor_scheme"`
	CryptoStrategy string `mapstructure:"crypto_strategy"`

	// Workers bounds the parallel computation. Zero means one per CPU,
	// one forces the serial executor.
	Workers int `mapstructure:"workers"`
}

type Oracle struct {
	Mode  string              `mapstructure:"mode"`
	Local LocalOracle         `mapstructure:"local"`
	HTTP  oracleclient.Config `mapstructure:"http"`
}

// LocalOracle configures the in-process random integer oracle.
type LocalOracle struct {
	Outcome          int           `mapstructure:"outcome"`
	AttestationDelay time.Duration `mapstructure:"attestation_delay"`
}

type Storage struct {
	// SQLitePath enables storage snapshots when set.
	SQLitePath string `mapstructure:"sqlite_path"`
}

// Defaults returns the default configuration values.
func Defaults() Config {
	return Config{
		AppName: "dlc",
		Log: Log{
			Level:  "info",
			Pretty: false,
		},
		Contract: Contract{
			Path:     "contract.json",
			NbDigits: 0,
		},
		Engine: Engine{
			AdaptorScheme:  adaptor.SchnorrSchemeName,
			CryptoStrategy: crypto.BasisStrategyName,
			Workers:        0,
		},
		Oracle: Oracle{
			Mode: OracleModeLocal,
			Local: LocalOracle{
				Outcome:          RandomOutcome,
				AttestationDelay: 0,
			},
			HTTP: oracleclient.DefaultConfig,
		},
		OracleServer: oracleserver.DefaultConfig,
		Storage:      Storage{},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(LogLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("log: unknown level %q", c.Log.Level)
	}
	if err := c.Contract.validate(); err != nil {
		return fmt.Errorf("contract: %w", err)
	}
	if err := c.Engine.validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if err := c.Oracle.validate(c.Contract.NbDigits); err != nil {
		return fmt.Errorf("oracle: %w", err)
	}
	if c.OracleServer.Port <= 0 || c.OracleServer.Port > 65535 {
		return fmt.Errorf("oracle_server: port %d out of range", c.OracleServer.Port)
	}
	return nil
}

func (c *Contract) validate() error {
	if strings.TrimSpace(c.Path) == "" {
		return errors.New("path must not be empty")
	}
	if c.NbDigits == 0 {
		return nil
	}
	if _, err := outcome.NewSpace(c.NbDigits); err != nil {
		return err
	}
	return nil
}

func (e *Engine) validate() error {
	if _, err := adaptor.SchemeByName(e.AdaptorScheme); err != nil {
		return err
	}
	if _, err := crypto.StrategyByName(e.CryptoStrategy); err != nil {
		return err
	}
	if e.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", e.Workers)
	}
	return nil
}

func (o *Oracle) validate(nbDigits uint8) error {
	switch o.Mode {
	case OracleModeLocal:
		if o.Local.Outcome < RandomOutcome {
			return fmt.Errorf("local outcome %d is invalid", o.Local.Outcome)
		}
		if nbDigits > 0 && o.Local.Outcome != RandomOutcome {
			space, err := outcome.NewSpace(nbDigits)
			if err != nil {
				return err
			}
			if !space.Contains(outcome.Outcome(o.Local.Outcome)) {
				return fmt.Errorf("local outcome %d is outside of %d digits", o.Local.Outcome, nbDigits)
			}
		}
		if o.Local.AttestationDelay < 0 {
			return errors.New("local attestation delay must not be negative")
		}
	case OracleModeHTTP:
		if _, err := url.ParseRequestURI(o.HTTP.URL); err != nil {
			return fmt.Errorf("invalid http url: %w", err)
		}
		if o.HTTP.Timeout <= 0 {
			return errors.New("http timeout must be positive")
		}
		if o.HTTP.Retries < 0 {
			return errors.New("http retries must not be negative")
		}
	default:
		return fmt.Errorf("unknown mode %q, expected %s or %s", o.Mode, OracleModeLocal, OracleModeHTTP)
	}
	return nil
}

// Redacted returns a copy of the configuration with secrets masked, fit for printing.
func (c Config) Redacted() Config {
	const mask = "********"
	if c.OracleServer.BearerToken != "" {
		c.OracleServer.BearerToken = mask
	}
	if c.Oracle.HTTP.BearerToken != "" {
		c.Oracle.HTTP.BearerToken = mask
	}
	return c
}
