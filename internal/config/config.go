package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type DisplayConfig struct {
	Use12Hour bool   `mapstructure:"use12hour"`
	Theme     string `mapstructure:"theme"` // "default" | "light" | "mono"
}

type TimerConfig struct {
	Category   string  `mapstructure:"category"`
	Billable   bool    `mapstructure:"billable"`
	Rate       float64 `mapstructure:"rate"`
	Milestones bool    `mapstructure:"milestones"` // hourly desktop notifications
}

type ReminderConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Time     string   `mapstructure:"time"`     // "17:00"
	Workdays []string `mapstructure:"workdays"` // ["Mon","Tue","Wed","Thu","Fri"]
	Holidays []string `mapstructure:"holidays"` // ["2025-01-26", "2025-08-15"]
	Timezone string   `mapstructure:"timezone"` // e.g. "Asia/Kolkata" (optional)
}

type ProfileConfig struct {
	Name             string `mapstructure:"name"`
	DailyGoalMinutes int    `mapstructure:"daily_goal_minutes"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Display  DisplayConfig  `mapstructure:"display"`
	Timer    TimerConfig    `mapstructure:"timer"`
	Reminder ReminderConfig `mapstructure:"reminder"`
	Profile  ProfileConfig  `mapstructure:"profile"`
	Log      LogConfig      `mapstructure:"log"`
}

func Default() Config {
	return Config{
		Display: DisplayConfig{Use12Hour: false, Theme: "default"},
		Timer: TimerConfig{
			Category:   "work",
			Billable:   false,
			Rate:       0,
			Milestones: true,
		},
		Reminder: ReminderConfig{
			Enabled:  false,
			Time:     "17:00",
			Workdays: []string{"Mon", "Tue", "Wed", "Thu", "Fri"},
			Holidays: []string{},
			Timezone: "",
		},
		Profile: ProfileConfig{DailyGoalMinutes: 8 * 60},
		Log:     LogConfig{Level: "warn"},
	}
}

func xdgConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "flowlog", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "flowlog", "config.yaml"), nil
}

// Load reads the config from the XDG location. A missing file yields defaults.
func Load() (Config, error) {
	path, err := xdgConfigPath()
	if err != nil {
		return Default(), err
	}
	return LoadFile(path)
}

// LoadFile reads the config at path, layering FLOWLOG_* environment
// variables over the file and the file over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	v.SetEnvPrefix("flowlog")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// defaults
	v.SetDefault("display.use12hour", cfg.Display.Use12Hour)
	v.SetDefault("display.theme", cfg.Display.Theme)
	v.SetDefault("timer.category", cfg.Timer.Category)
	v.SetDefault("timer.billable", cfg.Timer.Billable)
	v.SetDefault("timer.rate", cfg.Timer.Rate)
	v.SetDefault("timer.milestones", cfg.Timer.Milestones)
	v.SetDefault("reminder.enabled", cfg.Reminder.Enabled)
	v.SetDefault("reminder.time", cfg.Reminder.Time)
	v.SetDefault("reminder.workdays", cfg.Reminder.Workdays)
	v.SetDefault("reminder.holidays", cfg.Reminder.Holidays)
	v.SetDefault("reminder.timezone", cfg.Reminder.Timezone)
	v.SetDefault("profile.name", cfg.Profile.Name)
	v.SetDefault("profile.daily_goal_minutes", cfg.Profile.DailyGoalMinutes)
	v.SetDefault("log.level", cfg.Log.Level)

	if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		if _, missing := err.(viper.ConfigFileNotFoundError); !missing {
			return cfg, fmt.Errorf("config read %s: %w", path, err)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config unmarshal: %w", err)
	}

	// normalize workdays
	days := cfg.Reminder.Workdays[:0]
	for _, d := range cfg.Reminder.Workdays {
		d = strings.TrimSpace(d)
		if len(d) < 3 {
			continue
		}
		days = append(days, strings.ToUpper(d[:1])+strings.ToLower(d[1:3]))
	}
	cfg.Reminder.Workdays = days
	if cfg.Timer.Rate < 0 {
		return cfg, fmt.Errorf("config: timer.rate must not be negative")
	}
	return cfg, nil
}

// Location resolves reminder.timezone, falling back to the local zone.
func (c Config) Location() *time.Location {
	if tz := strings.TrimSpace(c.Reminder.Timezone); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	return time.Local
}

// LogLevel maps log.level onto slog levels; unknown values mean warn.
func (c Config) LogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
