package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces environment overrides, e.g. REMINDD_DRIVER.
const EnvPrefix = "REMINDD"

// Config is the runtime configuration shared by the TUI, the daemon and the
// one-shot commands.
type Config struct {
	Driver               string `yaml:"driver" envconfig:"DRIVER"`
	DBPath               string `yaml:"db_path" envconfig:"DB_PATH"`
	PostgresURL          string `yaml:"postgres_url" envconfig:"POSTGRES_URL"`
	StoreKey             string `yaml:"store_key" envconfig:"STORE_KEY"`
	DesktopNotifications bool   `yaml:"desktop_notifications" envconfig:"DESKTOP_NOTIFICATIONS"`
	SchedulerBuffer      int    `yaml:"scheduler_buffer" envconfig:"SCHEDULER_BUFFER"`
	LogLevel             string `yaml:"log_level" envconfig:"LOG_LEVEL"`
	LogFile              string `yaml:"log_file" envconfig:"LOG_FILE"`
	MetricsAddr          string `yaml:"metrics_addr" envconfig:"METRICS_ADDR"`
	// SyncInterval is how often the daemon picks up alarms armed by
	// one-shot commands.
	SyncInterval time.Duration `yaml:"sync_interval" envconfig:"SYNC_INTERVAL"`
}

func Default() Config {
	return Config{
		Driver:               "sqlite",
		DBPath:               "data/remindd.db",
		StoreKey:             "@tasks",
		DesktopNotifications: false,
		SchedulerBuffer:      64,
		LogLevel:             "info",
		LogFile:              "data/remindd.log",
		MetricsAddr:          ":9464",
		SyncInterval:         15 * time.Second,
	}
}

// Load layers the defaults, the YAML file at path (skipped when path is
// empty or the file does not exist) and REMINDD_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch strings.ToLower(c.Driver) {
	case "sqlite", "memory":
	case "postgres":
		if strings.TrimSpace(c.PostgresURL) == "" {
			return errors.New("config: postgres driver requires postgres_url")
		}
	default:
		return fmt.Errorf("config: unknown driver %q", c.Driver)
	}
	if c.SchedulerBuffer <= 0 {
		return fmt.Errorf("config: scheduler_buffer must be positive, got %d", c.SchedulerBuffer)
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("config: sync_interval must be positive, got %s", c.SyncInterval)
	}
	return nil
}
