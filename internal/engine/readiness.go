package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kutoven/wbreviews/internal/config"
	"github.com/kutoven/wbreviews/internal/ratelimit"
	"github.com/rs/zerolog"
)

// Readiness is the outcome of waiting for the review feed to render.
type Readiness int

const (
	// NotReady means neither reviews nor an empty-feed notice appeared before the deadline.
	NotReady Readiness = iota
	// ReadyWithReviews means at least one review container is present.
	ReadyWithReviews
	// ReadyNoReviews means the page explicitly says the product has no reviews.
	ReadyNoReviews
)

func (r Readiness) String() string {
	switch r {
	case ReadyWithReviews:
		return "reviews"
	case ReadyNoReviews:
		return "no_reviews"
	default:
		return "not_ready"
	}
}

// NoReviewsPhrases are matched against the raw page markup.
var NoReviewsPhrases = []string{
	"Отзывов пока нет",
	"отзывов не найдено",
}

// ReadinessDetector navigates to a review page and polls until content settles.
type ReadinessDetector struct {
	Limiter        ratelimit.RateLimiter
	Delay          DelayStrategy
	InitialDelay   config.DelayRange
	Timeout        time.Duration
	PollInterval   time.Duration
	DiagnosticsDir string
}

// NewReadinessDetector builds a detector from cfg. lim may be nil.
func NewReadinessDetector(cfg *config.Config, lim ratelimit.RateLimiter, delay DelayStrategy) *ReadinessDetector {
	return &ReadinessDetector{
		Limiter:        lim,
		Delay:          delay,
		InitialDelay:   cfg.InitialDelay,
		Timeout:        cfg.PageLoadTimeout,
		PollInterval:   cfg.PollInterval,
		DiagnosticsDir: cfg.OutputDir,
	}
}

// AwaitReady navigates page to url and blocks until reviews or a no-reviews notice
// appear. On timeout a screenshot and the page source are written using debugPrefix
// and ErrPageLoadTimeout is returned.
func (d *ReadinessDetector) AwaitReady(ctx context.Context, page Page, url, debugPrefix string) (Readiness, error) {
	logger := zerolog.Ctx(ctx)

	if d.Limiter != nil {
		if err := d.Limiter.Wait(ctx, url); err != nil {
			return NotReady, err
		}
	}

	logger.Info().Str("url", url).Msg("Navigating to review page")
	if err := page.Navigate(ctx, url); err != nil {
		logger.Warn().Err(err).Msg("Navigation reported an error, waiting for content anyway")
	}

	if err := sleep(ctx, d.delay().Next(d.InitialDelay)); err != nil {
		return NotReady, err
	}

	interval := d.PollInterval
	if interval <= 0 {
		interval = config.DefaultPollInterval
	}
	deadline := time.Now().Add(d.Timeout)

	for {
		state := d.probe(ctx, page)
		if state != NotReady {
			logger.Debug().Stringer("readiness", state).Msg("Review feed ready")
			return state, nil
		}
		if !time.Now().Before(deadline) {
			break
		}
		if err := sleep(ctx, interval); err != nil {
			return NotReady, err
		}
	}

	logger.Error().Dur("timeout", d.Timeout).Str("url", url).Msg("Timed out waiting for reviews")
	d.dumpDiagnostics(ctx, page, debugPrefix)

	return NotReady, NewEngineError(ErrCodePageLoadTimeout, "review content did not appear in time", nil).
		WithDetail("url", url).
		WithDetail("timeout", d.Timeout.String())
}

// probe checks both readiness predicates once. Probe errors count as not ready.
func (d *ReadinessDetector) probe(ctx context.Context, page Page) Readiness {
	logger := zerolog.Ctx(ctx)

	n, err := page.CountElements(ctx, ContainerSelector)
	if err != nil {
		logger.Debug().Err(err).Msg("Container count failed")
	} else if n > 0 {
		return ReadyWithReviews
	}

	src, err := page.HTML(ctx)
	if err != nil {
		logger.Debug().Err(err).Msg("Page source unavailable")
		return NotReady
	}
	if containsNoReviewsNotice(src) {
		return ReadyNoReviews
	}
	return NotReady
}

func containsNoReviewsNotice(src string) bool {
	for _, phrase := range NoReviewsPhrases {
		if strings.Contains(src, phrase) {
			return true
		}
	}
	return false
}

// dumpDiagnostics writes <prefix>_screenshot.png and <prefix>_page_source.html.
// Failures are logged only; the timeout is what gets reported.
func (d *ReadinessDetector) dumpDiagnostics(ctx context.Context, page Page, prefix string) {
	logger := zerolog.Ctx(ctx)

	if prefix == "" {
		prefix = config.DefaultDebugPrefix
	}
	dir := d.DiagnosticsDir
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Warn().Err(err).Str("dir", dir).Msg("Cannot create diagnostics directory")
			return
		}
	}

	shotPath := filepath.Join(dir, prefix+"_screenshot.png")
	if shot, err := page.Screenshot(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to capture screenshot")
	} else if err := os.WriteFile(shotPath, shot, 0o644); err != nil {
		logger.Warn().Err(err).Str("path", shotPath).Msg("Failed to save screenshot")
	} else {
		logger.Info().Str("path", shotPath).Msg("Saved screenshot")
	}

	srcPath := filepath.Join(dir, prefix+"_page_source.html")
	if src, err := page.HTML(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to capture page source")
	} else if err := os.WriteFile(srcPath, []byte(src), 0o644); err != nil {
		logger.Warn().Err(err).Str("path", srcPath).Msg("Failed to save page source")
	} else {
		logger.Info().Str("path", srcPath).Msg("Saved page source")
	}
}

func (d *ReadinessDetector) delay() DelayStrategy {
	if d.Delay == nil {
		return UniformDelay{}
	}
	return d.Delay
}
