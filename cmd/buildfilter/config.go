package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// fileConfig is the YAML overlay accepted via --config: a file of
// optional fields that, when present, override the corresponding flag
// default (but not an explicitly passed flag).
type fileConfig struct {
	Extensions             []string `yaml:"extensions"`
	TargetExtension        string   `yaml:"targetExtension"`
	IncludeGlobs           []string `yaml:"include"`
	ExcludeGlobs           []string `yaml:"exclude"`
	Persist                bool     `yaml:"persist"`
	Async                  bool     `yaml:"async"`
	Jobs                   int      `yaml:"jobs"`
	DependencyInvalidation bool     `yaml:"dependencyInvalidation"`
	LogLevel               string   `yaml:"logLevel"`
}

// loadFileConfig reads and parses a YAML configuration overlay from path.
func loadFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read configuration file: %w", err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unable to parse configuration file: %w", err)
	}
	return &cfg, nil
}
