package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/AkatukiSora/gamelog-lines/internal/watcher"
)

// EnvPrefix prefixes every environment override, e.g.
// GAMELOG_LINES_STORAGE_DB_PATH.
const EnvPrefix = "GAMELOG_LINES"

// Config is the complete application configuration.
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
	Chart    ChartConfig    `mapstructure:"chart"`
	Filter   FilterConfig   `mapstructure:"filter"`
	BestLine BestLineConfig `mapstructure:"bestline"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// IngestConfig points the watcher at the export directory.
type IngestConfig struct {
	Dir          string        `mapstructure:"dir"`
	Pattern      string        `mapstructure:"pattern"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// ChartConfig holds the render timing knobs.
type ChartConfig struct {
	Debounce    time.Duration `mapstructure:"debounce"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
	NarrowWidth float32       `mapstructure:"narrow_width"`
}

type FilterConfig struct {
	SeasonStartMonth int `mapstructure:"season_start_month"`
	DefaultLastN     int `mapstructure:"default_last_n"`
}

// BestLineConfig enables the Redis line cache when RedisAddr is set. The
// address may be host:port or a redis:// URL.
type BestLineConfig struct {
	RedisAddr   string `mapstructure:"redis_addr"`
	RedisPrefix string `mapstructure:"redis_prefix"`
}

type LoggingConfig struct {
	Debug bool `mapstructure:"debug"`
}

// Load reads configuration from path and environment variables. An empty
// path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.db_path", DefaultDBPath())

	v.SetDefault("ingest.dir", watcher.DefaultExportDir())
	v.SetDefault("ingest.pattern", watcher.DefaultPattern)
	v.SetDefault("ingest.poll_interval", watcher.DefaultPollInterval.String())

	v.SetDefault("chart.debounce", "300ms")
	v.SetDefault("chart.retry_delay", "40ms")
	v.SetDefault("chart.narrow_width", 640)

	v.SetDefault("filter.season_start_month", int(time.October))
	v.SetDefault("filter.default_last_n", 10)

	v.SetDefault("bestline.redis_addr", "")
	v.SetDefault("bestline.redis_prefix", "bestline")

	v.SetDefault("logging.debug", false)
}

// DefaultDBPath places the database under the user config directory.
func DefaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "gamelog-lines", "gamelog.db")
}

// Validate checks that all configuration values are usable.
func (c *Config) Validate() error {
	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}
	if c.Ingest.Dir == "" {
		return fmt.Errorf("ingest.dir is required")
	}
	if _, err := filepath.Match(c.Ingest.Pattern, "probe"); err != nil {
		return fmt.Errorf("ingest.pattern is invalid: %w", err)
	}
	if c.Ingest.PollInterval < 100*time.Millisecond {
		return fmt.Errorf("ingest.poll_interval must be at least 100ms")
	}
	if c.Chart.Debounce < 0 {
		return fmt.Errorf("chart.debounce must not be negative")
	}
	if c.Chart.RetryDelay <= 0 {
		return fmt.Errorf("chart.retry_delay must be positive")
	}
	if c.Chart.NarrowWidth <= 0 {
		return fmt.Errorf("chart.narrow_width must be positive")
	}
	if c.Filter.SeasonStartMonth < 1 || c.Filter.SeasonStartMonth > 12 {
		return fmt.Errorf("filter.season_start_month must be between 1 and 12")
	}
	if c.Filter.DefaultLastN < 1 {
		return fmt.Errorf("filter.default_last_n must be at least 1")
	}
	if c.BestLine.RedisAddr != "" && c.BestLine.RedisPrefix == "" {
		return fmt.Errorf("bestline.redis_prefix is required when bestline.redis_addr is set")
	}
	return nil
}

// SeasonStartMonth returns the configured month as a time.Month.
func (c *Config) SeasonStartMonth() time.Month {
	return time.Month(c.Filter.SeasonStartMonth)
}
