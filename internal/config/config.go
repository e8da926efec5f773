package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"tailindex/internal/index"
)

const (
	defaultScan         = 5 * time.Second
	defaultRefresh      = 300 * time.Second
	defaultFetchTimeout = 30 * time.Second
	defaultWorker       = "./tailurl.sh"

	envUser     = "TAILINDEX_USER"
	envPassword = "TAILINDEX_PASSWORD"
	envScan     = "TAILINDEX_SCAN"
	envRefresh  = "TAILINDEX_REFRESH"
	envWorker   = "TAILINDEX_WORKER"
)

// Config aggregates the watcher settings.
type Config struct {
	User         string
	Password     string
	Scan         time.Duration
	Refresh      time.Duration
	Order        index.Order
	Worker       string
	Insecure     bool
	Respawn      bool
	FetchTimeout time.Duration
	// Status enables the health socket.
	Status bool
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Scan:         defaultScan,
		Refresh:      defaultRefresh,
		Order:        index.Ascending,
		Worker:       defaultWorker,
		FetchTimeout: defaultFetchTimeout,
	}
}

// Load builds a Config from an optional file path plus environment overrides.
// The file format is chosen by extension: .json, .yaml/.yml or .toml.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Validate rejects settings the watcher cannot run with.
func (c Config) Validate() error {
	if c.Scan <= 0 {
		return errors.New("scan interval must be > 0")
	}
	if c.Refresh <= 0 {
		return errors.New("refresh interval must be > 0")
	}
	if c.FetchTimeout <= 0 {
		return errors.New("fetch timeout must be > 0")
	}
	if c.Order != index.Ascending && c.Order != index.Descending {
		return fmt.Errorf("invalid order %d", c.Order)
	}
	if strings.TrimSpace(c.Worker) == "" {
		return errors.New("worker command must not be empty")
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(envUser); v != "" {
		cfg.User = v
	}
	if v := os.Getenv(envPassword); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv(envWorker); v != "" {
		cfg.Worker = v
	}
	overrideDuration(envScan, &cfg.Scan)
	overrideDuration(envRefresh, &cfg.Refresh)
}

func overrideDuration(name string, dst *time.Duration) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	if dur, err := time.ParseDuration(v); err == nil && dur > 0 {
		*dst = dur
	} else if err != nil {
		log.Printf("invalid %s value %q: %v", name, v, err)
	} else {
		log.Printf("invalid %s value %q: must be > 0", name, v)
	}
}

type fileConfig struct {
	User         string `json:"user" yaml:"user" toml:"user"`
	Password     string `json:"password" yaml:"password" toml:"password"`
	Scan         string `json:"scan" yaml:"scan" toml:"scan"`
	Refresh      string `json:"refresh" yaml:"refresh" toml:"refresh"`
	Order        string `json:"order" yaml:"order" toml:"order"`
	Worker       string `json:"worker" yaml:"worker" toml:"worker"`
	Insecure     *bool  `json:"insecure" yaml:"insecure" toml:"insecure"`
	Respawn      *bool  `json:"respawn" yaml:"respawn" toml:"respawn"`
	FetchTimeout string `json:"fetch_timeout" yaml:"fetch_timeout" toml:"fetch_timeout"`
	Status       *bool  `json:"status" yaml:"status" toml:"status"`
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var raw fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	case ".toml":
		err = toml.Unmarshal(data, &raw)
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return err
	}

	if raw.User != "" {
		cfg.User = raw.User
	}
	if raw.Password != "" {
		cfg.Password = raw.Password
	}
	if raw.Worker != "" {
		cfg.Worker = raw.Worker
	}
	if raw.Order != "" {
		order, err := index.ParseOrder(raw.Order)
		if err != nil {
			return err
		}
		cfg.Order = order
	}
	if raw.Insecure != nil {
		cfg.Insecure = *raw.Insecure
	}
	if raw.Respawn != nil {
		cfg.Respawn = *raw.Respawn
	}
	if raw.Status != nil {
		cfg.Status = *raw.Status
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"scan", raw.Scan, &cfg.Scan},
		{"refresh", raw.Refresh, &cfg.Refresh},
		{"fetch_timeout", raw.FetchTimeout, &cfg.FetchTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		dur, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", d.key, err)
		}
		if dur <= 0 {
			return fmt.Errorf("%s must be > 0", d.key)
		}
		*d.dst = dur
	}
	return nil
}
