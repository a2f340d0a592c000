package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

const ownerReadWriteAccess = 0600

// Export writes cfg to path in the format implied by the file extension.
// envPrefix is only used by the env exporters.
func Export(cfg any, path, envPrefix string) error {
	switch ext := extension(path); ext {
	case "json":
		return ToJSONFile(cfg, path)
	case "env", "dotenv":
		return ToEnvFile(cfg, path, envPrefix)
	case "yaml", "yml":
		return ToYAMLFile(cfg, path)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}
}

// ToEnvFile writes the configuration as sorted KEY="value" lines, nested keys
// joined by underscores and prefixed with envPrefix.
func ToEnvFile(cfg any, filename string, envPrefix string) error {
	decoded, err := decode(cfg)
	if err != nil {
		return err
	}

	flat := make(map[string]string)
	flattenMap(strings.ToUpper(envPrefix), decoded, flat)

	lines := make([]string, 0, len(flat))
	for k, v := range flat {
		lines = append(lines, fmt.Sprintf(`%s="%s"`, k, v))
	}
	sort.Strings(lines)

	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(filename, []byte(content), ownerReadWriteAccess); err != nil {
		return fmt.Errorf("failed to write env to file: %w", err)
	}
	return nil
}

// ToJSONFile exports the given config struct into a JSON file.
func ToJSONFile(cfg any, filename string) error {
	decoded, err := decode(cfg)
	if err != nil {
		return err
	}

	bb, err := json.MarshalIndent(decoded, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal map to json: %w", err)
	}
	if err := os.WriteFile(filename, bb, ownerReadWriteAccess); err != nil {
		return fmt.Errorf("failed to write json to file: %w", err)
	}
	return nil
}

// ToYAMLFile exports the given config struct into a YAML file.
func ToYAMLFile(cfg any, filename string) error {
	decoded, err := decode(cfg)
	if err != nil {
		return err
	}

	bb, err := yaml.Marshal(decoded)
	if err != nil {
		return fmt.Errorf("failed to marshal map to yaml: %w", err)
	}
	if err := os.WriteFile(filename, bb, ownerReadWriteAccess); err != nil {
		return fmt.Errorf("failed to write yaml to file: %w", err)
	}
	return nil
}

func decode(cfg any) (map[string]any, error) {
	var m map[string]any
	if err := mapstructure.Decode(cfg, &m); err != nil {
		return nil, fmt.Errorf("failed to decode config to map: %w", err)
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("config appears empty or unsupported, nothing to write")
	}
	return stringifyDurations(m), nil
}

// stringifyDurations renders values implementing fmt.Stringer that would
// otherwise be written as raw integers (time.Duration).
func stringifyDurations(m map[string]any) map[string]any {
	for k, v := range m {
		switch val := v.(type) {
		case map[string]any:
			m[k] = stringifyDurations(val)
		case fmt.Stringer:
			m[k] = val.String()
		}
	}
	return m
}

func flattenMap(prefix string, input map[string]any, out map[string]string) {
	for k, v := range input {
		key := strings.ToUpper(k)
		if prefix != "" {
			key = prefix + "_" + key
		}

		switch val := v.(type) {
		case map[string]any:
			flattenMap(key, val, out)
		default:
			out[key] = fmt.Sprintf("%v", val)
		}
	}
}
