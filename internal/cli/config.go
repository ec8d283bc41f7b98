package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the trackctl configuration file. Every field has a flag
// counterpart; flags win over the file.
type Config struct {
	DSN          string   `yaml:"dsn"`
	Environment  string   `yaml:"environment"`
	Release      string   `yaml:"release"`
	ServerName   string   `yaml:"server_name"`
	SampleRate   *float64 `yaml:"sample_rate"`
	Debug        bool     `yaml:"debug"`
	SpoolDir     string   `yaml:"spool_dir"`
	LedgerPath   string   `yaml:"ledger_path"`
	IgnoreErrors []string `yaml:"ignore_errors"`
}

// LoadConfig reads a YAML config file. An empty path yields an empty config.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
