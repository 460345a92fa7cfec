// Package logger is the process-wide structured logger: charmbracelet/log
// writing key/value lines to a size-rotated file under the data directory.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the global logger. Nil until Init; helpers are no-ops until then.
var Logger *log.Logger

// Config holds logger configuration, usually from the [logging] section.
type Config struct {
	Level      string // debug | info | warn | error
	Dir        string // log directory; empty = stderr only
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Stderr     bool // mirror to stderr regardless of level
}

// Init builds the global logger.
func Init(cfg Config) error {
	level := log.InfoLevel
	if cfg.Level != "" {
		lv, err := log.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return fmt.Errorf("log level %q: %w", cfg.Level, err)
		}
		level = lv
	}

	var writers []io.Writer
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, "habitking.log"),
			MaxSize:    orDefault(cfg.MaxSizeMB, 10),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     orDefault(cfg.MaxAgeDays, 28),
			Compress:   true,
		})
	}
	if cfg.Dir == "" || cfg.Stderr || level == log.DebugLevel {
		writers = append(writers, os.Stderr)
	}

	Logger = log.NewWithOptions(io.MultiWriter(writers...), log.Options{
		ReportCaller:    level == log.DebugLevel,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "habitking",
	})
	return nil
}

// Discard installs a logger that drops everything. Used by tests.
func Discard() {
	Logger = log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Debug logs a debug message.
func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

// Info logs an info message.
func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

// Warn logs a warning.
func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

// Error logs an error.
func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}
