package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the service configuration, loadable from a YAML file with
// environment overrides on top.
type Config struct {
	Port        int    `yaml:"port"`
	APIBaseURL  string `yaml:"api_base_url"`
	DBPath      string `yaml:"db_path"`
	CompanyName string `yaml:"company_name"`
}

func defaultConfig() Config {
	return Config{
		Port:        9000,
		APIBaseURL:  "http://localhost:8080/api",
		DBPath:      "pitstop.db",
		CompanyName: "PitStop",
	}
}

// loadConfig merges, in increasing precedence: defaults, the YAML file (if
// given), environment variables.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if v := os.Getenv("PITSTOP_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("PITSTOP_COMPANY_NAME"); v != "" {
		cfg.CompanyName = v
	}
	return cfg, nil
}

// ImageOrigin derives the asset host from the API base URL: upstream image
// paths are relative to the host, not to the /api prefix.
func (c Config) ImageOrigin() string {
	return strings.TrimSuffix(strings.TrimSuffix(c.APIBaseURL, "/"), "/api")
}
