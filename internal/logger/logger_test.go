package logger

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInit_WritesRotatingFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	if err := Init(Config{Level: "info", Dir: dir}); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() { Logger = nil })

	Info("streak recomputed", "user", "u1", "current", 7)

	if _, err := os.Stat(filepath.Join(dir, "habitking.log")); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestInit_BadLevel(t *testing.T) {
	if err := Init(Config{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestHelpers_NilLogger(t *testing.T) {
	Logger = nil
	Debug("debug")
	Info("info")
	Warn("warn")
	Error("error")
}
