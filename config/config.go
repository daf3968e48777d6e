/*
config.go - Server configuration

PURPOSE:
  Loads server settings from an optional YAML file with environment
  variable fallbacks. Flag values from cmd/server override both.

PRECEDENCE (lowest to highest):
  1. Built-in defaults (port 8080, in-memory database, product rate card)
  2. Environment variables (DEPOSIT_*)
  3. YAML file (path argument or DEPOSIT_CONFIG)
  4. Command-line flags (applied by the caller)

YAML SHAPE:
  port: 8080
  db_path: deposits.db
  rate_card:
    base_rate: 20.66
    tenor_days: 365
    tiers:
      - up_to: 50000
        margin: 2
      - up_to: 499000
        margin: 3
      - margin: 4
*/
package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/seedtime/deposit-engine/factory"
)

// Config defines server configuration.
type Config struct {
	Port     int                  `yaml:"port"`
	DBPath   string               `yaml:"db_path"`
	RateCard factory.RateCardJSON `yaml:"rate_card"`
}

// Load builds the configuration. path may be empty, in which case only
// DEPOSIT_CONFIG is consulted for a YAML file.
func Load(path string) (Config, error) {
	cfg := Config{
		Port:   getenvIntDefault("DEPOSIT_PORT", 8080),
		DBPath: getenvDefault("DEPOSIT_DB", ":memory:"),
	}

	if path == "" {
		path = os.Getenv("DEPOSIT_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	// A partial rate card in the file keeps product defaults for the rest.
	cfg.RateCard = cfg.RateCard.WithDefaults(factory.Default())

	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.DBPath == "" {
		cfg.DBPath = ":memory:"
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
