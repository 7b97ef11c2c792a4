package lint

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	tt "github.com/gnolang/arrowlint/internal/types"
)

// ConfigFileNames are looked up, in order, when no configuration path is given.
var ConfigFileNames = []string{".arrowlint.yaml", ".arrowlint.yml", "arrowlint.yaml"}

// Config represents the overall configuration with a name and a set of rules.
type Config struct {
	Name  string                   `yaml:"name"`
	Rules map[string]tt.ConfigRule `yaml:"rules"`
}

// DefaultConfigYAML is written by `arrowlint init`.
const DefaultConfigYAML = `name: arrowlint
rules:
  prefer-arrow-functions:
    severity: WARNING
    options:
      disallowPrototype: false
      singleReturnOnly: false
      classPropertiesAllowed: false
`

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() Config {
	return Config{
		Name: "arrowlint",
		Rules: map[string]tt.ConfigRule{
			"prefer-arrow-functions": {Severity: tt.SeverityWarning},
		},
	}
}

// DiscoverConfig returns the first configuration file found in dir.
func DiscoverConfig(dir string) (string, bool) {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// LoadConfig reads a configuration file. Unknown keys are an error.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("error reading config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes configuration YAML. An empty document yields the
// default configuration.
func ParseConfig(data []byte) (Config, error) {
	var config Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil {
		if errors.Is(err, io.EOF) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("error parsing config: %w", err)
	}
	if config.Rules == nil {
		config.Rules = map[string]tt.ConfigRule{}
	}
	return config, nil
}

// resolveConfig loads configPath, or the discovered file in rootDir when
// configPath is empty, or the defaults when neither exists.
func resolveConfig(rootDir, configPath string) (Config, error) {
	if configPath == "" {
		found, ok := DiscoverConfig(rootDir)
		if !ok {
			return DefaultConfig(), nil
		}
		configPath = found
	}
	config, err := LoadConfig(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config file %s not found", configPath)
	}
	return config, err
}
