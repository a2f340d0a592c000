package appconfig

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// PrettyPrintAs writes the configuration to w in the specified format (JSON or YAML),
// keyed by the same names the loader reads.
func PrettyPrintAs(w io.Writer, cfg any, format string) error {
	m, err := toMap(cfg)
	if err != nil {
		return err
	}

	var data []byte
	switch strings.ToLower(format) {
	case "json":
		data, err = json.MarshalIndent(m, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	case "yaml", "yml":
		data, err = yaml.Marshal(m)
	default:
		return fmt.Errorf("unsupported print format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config for printing: %w", err)
	}

	_, err = w.Write(data)
	return err
}

func toMap(cfg any) (map[string]any, error) {
	var m map[string]any
	if err := mapstructure.Decode(cfg, &m); err != nil {
		return nil, fmt.Errorf("failed to decode config to map: %w", err)
	}
	return durationsAsText(m), nil
}

func durationsAsText(m map[string]any) map[string]any {
	for k, v := range m {
		switch val := v.(type) {
		case map[string]any:
			m[k] = durationsAsText(val)
		case time.Duration:
			m[k] = val.String()
		}
	}
	return m
}
