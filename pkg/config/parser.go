package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseConfig reads and parses a YAML (or JSON) configuration file
func ParseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// Load validates the file against the schema and parses it.
// An empty path yields a zero Config so every getter falls back to its default.
func Load(configFile string) (*Config, error) {
	if configFile == "" {
		return &Config{}, nil
	}

	if err := Validate(configFile); err != nil {
		return nil, err
	}

	return ParseConfig(configFile)
}
