// Package config holds the application-level configuration (server
// address, history database, tick cadence). Colony parameters live in
// the knowledge file, not here.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all blobsim configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Simulation SimulationConfig `yaml:"simulation"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type SimulationConfig struct {
	// TickMillis is the background tick interval for serve mode.
	TickMillis int `yaml:"tick_millis"`
	// Seed feeds the shared random source. 0 means seed from the clock.
	Seed int64 `yaml:"seed"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37600,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Simulation: SimulationConfig{
			TickMillis: 250,
		},
	}
}

// Load reads a YAML config file, layering it over Default. A missing
// path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return cfg, fmt.Errorf("config %s: port %d out of range", path, cfg.Server.Port)
	}
	if cfg.Simulation.TickMillis < 1 {
		return cfg, fmt.Errorf("config %s: tick_millis must be positive", path)
	}
	return cfg, nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
