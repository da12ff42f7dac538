/*
Package config loads server configuration from a YAML file.

PURPOSE:
  Everything the server binary needs in one place: HTTP port, database
  path, cooldown windows, panel refresh interval, delivery endpoint,
  token API endpoint, and auth-code TTL. A missing file means defaults;
  command-line flags override whatever was loaded (cmd/server).

EXAMPLE (pool.yaml):
  port: 8080
  db: ./data/pool.db
  single_cooldown: 10s
  pack_cooldown: 20s
  panel_interval: 1m
  webhook_url: http://localhost:9090
  otp_url: https://2fa.fb.rip
  auth_code_ttl: 720h
*/
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration for YAML values like "10s" or "1m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the server configuration.
type Config struct {
	Port           int      `yaml:"port"`
	DB             string   `yaml:"db"`
	SingleCooldown Duration `yaml:"single_cooldown"`
	PackCooldown   Duration `yaml:"pack_cooldown"`
	PanelInterval  Duration `yaml:"panel_interval"`
	WebhookURL     string   `yaml:"webhook_url"`
	OTPURL         string   `yaml:"otp_url"`
	AuthCodeTTL    Duration `yaml:"auth_code_ttl"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Port:           8080,
		DB:             "pool.db",
		SingleCooldown: Duration(10 * time.Second),
		PackCooldown:   Duration(20 * time.Second),
		PanelInterval:  Duration(time.Minute),
		OTPURL:         "https://2fa.fb.rip",
		AuthCodeTTL:    Duration(30 * 24 * time.Hour),
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
