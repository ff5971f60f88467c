package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultInterval is the time between check-in popups.
const DefaultInterval = 15 * time.Minute

type TimerConfig struct {
	Interval time.Duration `mapstructure:"interval"` // "15m"
	Tick     time.Duration `mapstructure:"tick"`     // how often the scheduler checks, "1s"
}

type NotificationConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Sound   bool `mapstructure:"sound"` // alert instead of a silent notification
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	File string `mapstructure:"file"`
}

type Config struct {
	Theme         string             `mapstructure:"theme"`
	Timezone      string             `mapstructure:"timezone"` // e.g. "Europe/Berlin" (optional)
	Timer         TimerConfig        `mapstructure:"timer"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Log           LogConfig          `mapstructure:"log"`
}

func Default() Config {
	return Config{
		Theme: "default",
		Timer: TimerConfig{
			Interval: DefaultInterval,
			Tick:     time.Second,
		},
		Notifications: NotificationConfig{
			Enabled: true,
		},
	}
}

func xdgConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".config", "checkin")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DataDir is where the database and debug log live unless overridden.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	base := filepath.Join(home, ".local", "share", "checkin")
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", err
	}
	return base, nil
}

// Load reads ~/.config/checkin/config.yaml. A missing file yields defaults.
func Load() (Config, error) {
	path, err := xdgConfigPath()
	if err != nil {
		return Default(), err
	}
	return LoadFile(path)
}

// LoadFile reads the config at path, applying defaults and CHECKIN_* env overrides.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	v.SetEnvPrefix("checkin")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// defaults
	v.SetDefault("theme", cfg.Theme)
	v.SetDefault("timezone", cfg.Timezone)
	v.SetDefault("timer.interval", cfg.Timer.Interval)
	v.SetDefault("timer.tick", cfg.Timer.Tick)
	v.SetDefault("notifications.enabled", cfg.Notifications.Enabled)
	v.SetDefault("notifications.sound", cfg.Notifications.Sound)
	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("log.file", cfg.Log.File)

	if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, fmt.Errorf("config read %s: %w", path, err)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config unmarshal: %w", err)
	}

	if cfg.Timer.Interval <= 0 {
		cfg.Timer.Interval = DefaultInterval
	}
	if cfg.Timer.Tick <= 0 || cfg.Timer.Tick > cfg.Timer.Interval {
		cfg.Timer.Tick = min(time.Second, cfg.Timer.Interval)
	}
	return cfg, nil
}

func (c Config) Location() *time.Location {
	if tz := strings.TrimSpace(c.Timezone); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	return time.Local
}

// DatabasePath resolves the sqlite file location.
func (c Config) DatabasePath() (string, error) {
	if p := strings.TrimSpace(c.Database.Path); p != "" {
		return p, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "checkin.db"), nil
}

// LogPath resolves the debug log location.
func (c Config) LogPath() (string, error) {
	if p := strings.TrimSpace(c.Log.File); p != "" {
		return p, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "checkin.log"), nil
}
