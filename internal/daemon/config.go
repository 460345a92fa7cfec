// Package daemon manages the Habit King server lifecycle and configuration.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/habit-king/habitking/internal/app/scoring"
	"github.com/habit-king/habitking/internal/domain"
	"github.com/habit-king/habitking/internal/infra/db"
	"github.com/habit-king/habitking/internal/logger"
)

// Config holds all daemon configuration.
type Config struct {
	Server        ServerConfig              `toml:"server"`
	API           APIConfig                 `toml:"api"`
	Database      DatabaseConfig            `toml:"database"`
	Policy        PolicyConfig              `toml:"policy"`
	Rollover      RolloverConfig            `toml:"rollover"`
	Notifications domain.NotificationPolicy `toml:"notifications"`
	Logging       LoggingConfig             `toml:"logging"`
	Telemetry     TelemetryConfig           `toml:"telemetry"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	IdleTimeout     string `toml:"idle_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

// APIConfig controls the HTTP API.
type APIConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	CORSOrigin      string `toml:"cors_origin"`
	JWTSecret       string `toml:"jwt_secret"`
	AllowUserHeader bool   `toml:"allow_user_header"`
	RequestTimeout  string `toml:"request_timeout"`
}

// DatabaseConfig selects the store. DSN is a file path for sqlite and a
// connection URL for pgx.
type DatabaseConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

// PolicyConfig holds the scoring rules. Zero values keep the defaults.
type PolicyConfig struct {
	DeleteWindow    string             `toml:"delete_window"`
	DeleteGraceDays int                `toml:"delete_grace_days"`
	CreateDays      int                `toml:"create_days"`
	MaxPersonal     int                `toml:"max_personal"`
	MaxStudy        int                `toml:"max_study"`
	MaxGoals        int                `toml:"max_goals"`
	GoalEditLastDay int                `toml:"goal_edit_last_day"`
	GoalBonus       int                `toml:"goal_bonus"`
	StudyPoints     bool               `toml:"study_points"`
	FallbackZone    string             `toml:"fallback_zone"`
	Milestones      []domain.Milestone `toml:"milestones"`
	Tiers           []scoring.Tier     `toml:"tiers"`
	Win             scoring.WinRules   `toml:"win"`
}

// RolloverConfig controls the month-rollover job.
type RolloverConfig struct {
	Enabled     bool   `toml:"enabled"`
	Interval    string `toml:"interval"`
	Concurrency int    `toml:"concurrency"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level      string `toml:"level"`
	Dir        string `toml:"dir"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxFiles   int    `toml:"max_files"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// TelemetryConfig controls metrics and health checks.
type TelemetryConfig struct {
	Prometheus     bool   `toml:"prometheus"`
	HealthInterval string `toml:"health_interval"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	homeDir := habitkingHome()
	p := scoring.DefaultPolicy()
	return Config{
		Server: ServerConfig{
			ReadTimeout:     "15s",
			WriteTimeout:    "30s",
			IdleTimeout:     "2m",
			ShutdownTimeout: "30s",
		},
		API: APIConfig{
			Host:           "127.0.0.1",
			Port:           8787,
			CORSOrigin:     "*",
			RequestTimeout: "30s",
		},
		Database: DatabaseConfig{
			Driver: db.DriverSQLite,
			DSN:    filepath.Join(homeDir, "habitking.db"),
		},
		Policy: PolicyConfig{
			DeleteWindow:    p.DeleteWindow.String(),
			DeleteGraceDays: p.DeleteGraceDays,
			CreateDays:      p.CreateDays,
			MaxPersonal:     p.MaxPersonal,
			MaxStudy:        p.MaxStudy,
			MaxGoals:        p.MaxGoals,
			GoalEditLastDay: p.GoalEditLastDay,
			GoalBonus:       p.GoalBonus,
			StudyPoints:     p.StudyPoints,
			FallbackZone:    p.FallbackZone,
			Milestones:      p.Milestones,
			Tiers:           p.Tiers,
			Win:             p.Win,
		},
		Rollover: RolloverConfig{
			Enabled:     true,
			Interval:    "1h",
			Concurrency: 4,
		},
		Notifications: domain.DefaultNotificationPolicy(),
		Logging: LoggingConfig{
			Level:      "info",
			Dir:        filepath.Join(homeDir, "logs"),
			MaxSizeMB:  10,
			MaxFiles:   5,
			MaxAgeDays: 28,
		},
		Telemetry: TelemetryConfig{
			Prometheus:     false,
			HealthInterval: "60s",
		},
	}
}

// LoadConfig reads $HABITKING_HOME/config.toml over the defaults, after
// loading an optional .env file, then applies environment overrides.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err == nil {
		logger.Debug("loaded .env")
	}

	cfg := DefaultConfig()
	path := ConfigPath()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("stat config: %w", err)
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv lets deployments override secrets and the store without a file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("HABITKING_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("HABITKING_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("HABITKING_JWT_SECRET"); v != "" {
		cfg.API.JWTSecret = v
	}
	if v := os.Getenv("HABITKING_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks values that cannot fall back to a default.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case db.DriverSQLite, db.DriverPostgres:
	default:
		return fmt.Errorf("database.driver %q: want %q or %q", c.Database.Driver, db.DriverSQLite, db.DriverPostgres)
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("database.dsn is required")
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range", c.API.Port)
	}
	if _, err := c.Policy.toPolicy(); err != nil {
		return err
	}
	for name, v := range map[string]string{
		"server.read_timeout":       c.Server.ReadTimeout,
		"server.write_timeout":      c.Server.WriteTimeout,
		"server.idle_timeout":       c.Server.IdleTimeout,
		"server.shutdown_timeout":   c.Server.ShutdownTimeout,
		"api.request_timeout":       c.API.RequestTimeout,
		"rollover.interval":         c.Rollover.Interval,
		"telemetry.health_interval": c.Telemetry.HealthInterval,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// ScoringPolicy converts the [policy] section into engine rules.
func (c Config) ScoringPolicy() (scoring.Policy, error) {
	return c.Policy.toPolicy()
}

func (pc PolicyConfig) toPolicy() (scoring.Policy, error) {
	p := scoring.DefaultPolicy()
	if pc.DeleteWindow != "" {
		d, err := time.ParseDuration(pc.DeleteWindow)
		if err != nil {
			return p, fmt.Errorf("policy.delete_window: %w", err)
		}
		p.DeleteWindow = d
	}
	setInt(&p.DeleteGraceDays, pc.DeleteGraceDays)
	p.CreateDays = pc.CreateDays
	setInt(&p.MaxPersonal, pc.MaxPersonal)
	setInt(&p.MaxStudy, pc.MaxStudy)
	setInt(&p.MaxGoals, pc.MaxGoals)
	setInt(&p.GoalEditLastDay, pc.GoalEditLastDay)
	setInt(&p.GoalBonus, pc.GoalBonus)
	p.StudyPoints = pc.StudyPoints
	if pc.FallbackZone != "" {
		if _, err := time.LoadLocation(pc.FallbackZone); err != nil {
			return p, fmt.Errorf("policy.fallback_zone: %w", err)
		}
		p.FallbackZone = pc.FallbackZone
	}
	if len(pc.Milestones) > 0 {
		p.Milestones = pc.Milestones
	}
	if len(pc.Tiers) > 0 {
		p.Tiers = pc.Tiers
	}
	if pc.Win != (scoring.WinRules{}) {
		p.Win = pc.Win
	}
	return p, nil
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

// SaveConfig writes the config to $HABITKING_HOME/config.toml.
func SaveConfig(cfg Config) error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// ConfigPath is the config file location.
func ConfigPath() string {
	return filepath.Join(habitkingHome(), "config.toml")
}

// habitkingHome returns the Habit King data directory.
func habitkingHome() string {
	if env := os.Getenv("HABITKING_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".habitking")
}

// Home is exported for use by other packages.
func Home() string {
	return habitkingHome()
}

// parseDuration parses a duration string, returning a fallback on error.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
