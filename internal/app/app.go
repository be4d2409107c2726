// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kutoven/wbreviews/internal/artifacts"
	"github.com/kutoven/wbreviews/internal/browser"
	"github.com/kutoven/wbreviews/internal/config"
	"github.com/kutoven/wbreviews/internal/engine"
	"github.com/kutoven/wbreviews/internal/jobs"
	"github.com/kutoven/wbreviews/internal/proxy"
	"github.com/kutoven/wbreviews/internal/ratelimit"
	"github.com/kutoven/wbreviews/internal/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to wait for running jobs on shutdown.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	RateLimiter ratelimit.RateLimiter
	Proxies     *proxy.Pool
	Launcher    engine.Launcher
	Scraper     *engine.Scraper
	Runner      *jobs.Runner
	Artifacts   *artifacts.Store
	startTime   time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging based on the provided config
//   - Creates the navigation rate limiter and the proxy pool
//   - Creates the browser launcher, readiness detector and scroll loader
//   - Creates the job runner and the artifact store
//
// No browser is started here; every job launches its own session.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := NewLogger(cfg)
	log.Logger = logger
	zerolog.DefaultContextLogger = &log.Logger

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	limiter := ratelimit.NewDomainLimiter(cfg.NavigateRPS, cfg.NavigateBurst)
	logger.Debug().
		Float64("navigate_rps", cfg.NavigateRPS).
		Int("navigate_burst", cfg.NavigateBurst).
		Msg("Rate limiter initialized")

	var proxies *proxy.Pool
	if len(cfg.Proxies) > 0 {
		var err error
		proxies, err = proxy.New(cfg.Proxies, proxy.DefaultCooldown)
		if err != nil {
			return nil, err
		}
		logger.Debug().Int("proxies", proxies.Len()).Msg("Proxy pool initialized")
	}

	launcher := browser.NewLauncher(cfg)
	scraper := engine.NewScraper(
		launcher,
		proxies,
		engine.NewReadinessDetector(cfg, limiter, engine.UniformDelay{}),
		engine.NewLoader(cfg, engine.UniformDelay{}),
	)
	if cfg.MaxScrollIterations == 0 {
		logger.Debug().Msg("Scroll loop is unbounded; set --max-scrolls to cap it")
	}

	store := artifacts.NewStore(cfg.OutputDir)
	if err := store.EnsureDir(); err != nil {
		return nil, err
	}

	app := &Application{
		Config:      cfg,
		Logger:      &logger,
		RateLimiter: limiter,
		Proxies:     proxies,
		Launcher:    launcher,
		Scraper:     scraper,
		Runner:      jobs.NewRunner(scraper, cfg, logger),
		Artifacts:   store,
		startTime:   time.Now(),
	}

	logger.Debug().Str("output_dir", cfg.OutputDir).Msg("Application initialized successfully")
	return app, nil
}

// NewLogger builds the process logger from cfg: console output on stderr
// unless JSON logging is requested.
func NewLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer = os.Stderr
	if !cfg.JSONLog {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// Server returns the HTTP API bound to this application's runner and artifacts.
func (a *Application) Server() *server.Server {
	return server.New(a.Runner, a.Artifacts, a.Config.OutputDir, *a.Logger)
}

// Close waits for dispatched jobs until ctx is done.
//
// Jobs have no cancellation; when ctx expires first, their browser sessions
// die with the process.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Debug().Msg("Shutting down application")

	if err := a.Runner.Wait(ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("Jobs still running at shutdown")
	}

	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
