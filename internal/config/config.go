package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/mcoot/jukebox/internal/model"
	"github.com/mcoot/jukebox/internal/seed"
)

// Storage backend names
const (
	StorageTypeFile   = "file"
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// Config holds the complete jukebox configuration
type Config struct {
	Jukebox JukeboxConfig `mapstructure:"jukebox"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// JukeboxConfig defines the provisioned accounts and catalog
type JukeboxConfig struct {
	DailyAllowanceSeconds int            `mapstructure:"daily_allowance_seconds"`
	Accounts              []seed.Account `mapstructure:"accounts"`
	Catalog               []seed.Track   `mapstructure:"catalog"`
}

// StorageConfig defines where snapshots are kept
type StorageConfig struct {
	Type           string `mapstructure:"type"`
	Path           string `mapstructure:"path"`
	RedisURL       string `mapstructure:"redis_url"`
	RedisKeyPrefix string `mapstructure:"redis_key_prefix"`
	SealPassphrase string `mapstructure:"seal_passphrase"` // empty stores snapshots unsealed
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig toggles the Prometheus counters
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load loads configuration from an optional file and JUKEBOX_* environment variables.
// With an empty path, ./jukebox.yaml is used when present.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		// An explicitly named file must exist
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("jukebox")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("JUKEBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file, defaults and environment only
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Jukebox: JukeboxConfig{
			DailyAllowanceSeconds: model.DefaultDailyAllowance,
			Accounts:              seed.DefaultAccounts(),
			Catalog:               seed.DefaultCatalog(),
		},
		Storage: StorageConfig{
			Type:           StorageTypeFile,
			Path:           "./data",
			RedisURL:       "redis://localhost:6379",
			RedisKeyPrefix: "jukebox",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("jukebox.daily_allowance_seconds", d.Jukebox.DailyAllowanceSeconds)
	v.SetDefault("jukebox.accounts", accountMaps(d.Jukebox.Accounts))
	v.SetDefault("jukebox.catalog", trackMaps(d.Jukebox.Catalog))

	v.SetDefault("storage.type", d.Storage.Type)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.redis_url", d.Storage.RedisURL)
	v.SetDefault("storage.redis_key_prefix", d.Storage.RedisKeyPrefix)
	v.SetDefault("storage.seal_passphrase", "")

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
}

// accountMaps flattens accounts into the shape a config file would produce
func accountMaps(accounts []seed.Account) []map[string]any {
	result := make([]map[string]any, 0, len(accounts))
	for _, a := range accounts {
		result = append(result, map[string]any{
			"username":   a.Username,
			"credential": a.Credential,
		})
	}
	return result
}

func trackMaps(tracks []seed.Track) []map[string]any {
	result := make([]map[string]any, 0, len(tracks))
	for _, t := range tracks {
		result = append(result, map[string]any{
			"title":          t.Title,
			"artist":         t.Artist,
			"audio_ref":      t.AudioRef,
			"length_seconds": t.LengthSeconds,
		})
	}
	return result
}

func validate(cfg *Config) error {
	if cfg.Jukebox.DailyAllowanceSeconds <= 0 {
		return fmt.Errorf("daily allowance must be positive, got %d", cfg.Jukebox.DailyAllowanceSeconds)
	}

	usernames := make(map[string]bool, len(cfg.Jukebox.Accounts))
	for _, a := range cfg.Jukebox.Accounts {
		if a.Username == "" {
			return fmt.Errorf("account with empty username")
		}
		if a.Credential == "" {
			return fmt.Errorf("account %q has an empty credential", a.Username)
		}
		if usernames[a.Username] {
			return fmt.Errorf("duplicate account %q", a.Username)
		}
		usernames[a.Username] = true
	}

	titles := make(map[string]bool, len(cfg.Jukebox.Catalog))
	for _, t := range cfg.Jukebox.Catalog {
		if t.Title == "" {
			return fmt.Errorf("track with empty title")
		}
		if t.LengthSeconds <= 0 {
			return fmt.Errorf("track %q has non-positive length %d", t.Title, t.LengthSeconds)
		}
		if titles[t.Title] {
			return fmt.Errorf("duplicate track %q", t.Title)
		}
		titles[t.Title] = true
	}

	switch cfg.Storage.Type {
	case StorageTypeFile:
		if cfg.Storage.Path == "" {
			return fmt.Errorf("storage path is required for file storage")
		}
	case StorageTypeRedis:
		if cfg.Storage.RedisURL == "" {
			return fmt.Errorf("redis url is required for redis storage")
		}
	case StorageTypeMemory:
	default:
		return fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}

	if _, err := parseLevel(cfg.Logging.Level); err != nil {
		return err
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q", cfg.Logging.Format)
	}

	return nil
}

func parseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return l, nil
}

// NewLogger builds the application logger described by the logging section
func (c LoggingConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
