package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/habit-king/habitking/internal/api"
	"github.com/habit-king/habitking/internal/app/engagement"
	"github.com/habit-king/habitking/internal/app/scoring"
	"github.com/habit-king/habitking/internal/health"
	"github.com/habit-king/habitking/internal/infra/db"
	"github.com/habit-king/habitking/internal/logger"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// Daemon is the core Habit King runtime. It wires together all services.
type Daemon struct {
	Config   Config
	DB       *db.DB
	Engine   *scoring.Engine
	Services *engagement.Services
	Health   *health.Checker
	Server   *api.Server
	cancel   context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	if err := logger.Init(logger.Config{
		Level:      cfg.Logging.Level,
		Dir:        cfg.Logging.Dir,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxFiles,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	}); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	policy, err := cfg.ScoringPolicy()
	if err != nil {
		return nil, fmt.Errorf("policy: %w", err)
	}

	store, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	clock := scoring.NewClock(policy.FallbackZone, nil)
	engine := scoring.NewEngine(clock, policy)
	services := engagement.New(store, engine, cfg.Notifications, cfg.Rollover.Concurrency)

	dataDir := ""
	if cfg.Database.Driver == db.DriverSQLite {
		dataDir = filepath.Dir(cfg.Database.DSN)
	}
	checker := health.NewChecker(store, []string{policy.FallbackZone}, dataDir)
	checker.SetInterval(parseDuration(cfg.Telemetry.HealthInterval, health.DefaultInterval))

	srv := api.NewServer(services, checker, api.Options{
		Version:         Version,
		JWTSecret:       cfg.API.JWTSecret,
		AllowUserHeader: cfg.API.AllowUserHeader,
		Metrics:         cfg.Telemetry.Prometheus,
		RequestTimeout:  parseDuration(cfg.API.RequestTimeout, 30*time.Second),
		CORSOrigin:      cfg.API.CORSOrigin,
	})

	if cfg.API.JWTSecret == "" && !cfg.API.AllowUserHeader {
		logger.Warn("no identity source configured: set api.jwt_secret or api.allow_user_header")
	}

	return &Daemon{
		Config:   cfg,
		DB:       store,
		Engine:   engine,
		Services: services,
		Health:   checker,
		Server:   srv,
	}, nil
}

// Serve starts the HTTP server and background jobs, and blocks until
// SIGINT/SIGTERM or ctx is cancelled.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.Health.Run(ctx)
	if d.Config.Rollover.Enabled {
		go d.rolloverLoop(ctx, parseDuration(d.Config.Rollover.Interval, time.Hour))
	}

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  parseDuration(d.Config.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: parseDuration(d.Config.Server.WriteTimeout, 30*time.Second),
		IdleTimeout:  parseDuration(d.Config.Server.IdleTimeout, 2*time.Minute),
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("shutting down", "signal", sig.String())
		case <-ctx.Done():
		}
		cancel()

		timeout := parseDuration(d.Config.Server.ShutdownTimeout, 30*time.Second)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", "err", err)
		}
	}()

	logger.Info("serving", "addr", addr, "driver", d.DB.Driver(), "version", Version)
	fmt.Printf("Habit King serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// rolloverLoop finalizes closed months on start and then every interval.
func (d *Daemon) rolloverLoop(ctx context.Context, interval time.Duration) {
	run := func() {
		if _, err := d.Services.Rollover.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("rollover", "err", err)
		}
	}
	run()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
