package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kutoven/wbreviews/internal/proxy"
	"github.com/kutoven/wbreviews/pkg/models"
	"github.com/rs/zerolog"
)

// Request describes one review page to scrape.
type Request struct {
	URL string

	// DebugPrefix names the diagnostic files written on a readiness timeout.
	DebugPrefix string

	// Progress, if set, receives the rendered review count after every scroll.
	Progress func(count int)
}

// Result is what one scrape produced.
type Result struct {
	Reviews    []models.Review
	Readiness  Readiness
	Rendered   int
	Iterations int
	Skipped    int
	Proxy      string
	Duration   time.Duration
}

// Scraper drives one browser session per call through readiness, loading and extraction.
type Scraper struct {
	launcher Launcher
	proxies  *proxy.Pool
	ready    *ReadinessDetector
	loader   *Loader
}

// NewScraper wires a scraper. proxies may be nil.
func NewScraper(launcher Launcher, proxies *proxy.Pool, ready *ReadinessDetector, loader *Loader) *Scraper {
	return &Scraper{
		launcher: launcher,
		proxies:  proxies,
		ready:    ready,
		loader:   loader,
	}
}

// Scrape runs the full pipeline for req.URL. The browser session is always
// closed before Scrape returns.
func (s *Scraper) Scrape(ctx context.Context, req Request) (*Result, error) {
	if req.URL == "" {
		return nil, errors.New("url is required")
	}

	start := time.Now()
	logger := zerolog.Ctx(ctx)
	res := &Result{Readiness: NotReady}

	res.Proxy = s.proxies.Next()

	browser, err := s.launcher.Launch(ctx, res.Proxy)
	if err != nil {
		s.markProxy(res.Proxy, false)
		return res, err
	}
	defer func() {
		if cerr := browser.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("Browser session did not close cleanly")
		}
	}()

	res.Readiness, err = s.ready.AwaitReady(ctx, browser, req.URL, req.DebugPrefix)
	if err != nil {
		if errors.Is(err, ErrPageLoadTimeout) {
			s.markProxy(res.Proxy, false)
		}
		return res, err
	}
	s.markProxy(res.Proxy, true)

	if res.Readiness == ReadyNoReviews {
		// The notice can sit in markup while the feed still loads lazily, so scroll anyway.
		logger.Info().Msg("Page reports no reviews, scrolling to confirm")
	}
	load, err := s.loader.LoadAll(ctx, browser, req.Progress)
	res.Rendered = load.Count
	res.Iterations = load.Iterations
	if err != nil {
		return res, fmt.Errorf("loading reviews: %w", err)
	}

	res.Reviews, res.Skipped, err = Extract(ctx, browser)
	if err != nil {
		return res, err
	}
	res.Duration = time.Since(start)

	logger.Info().
		Int("reviews", len(res.Reviews)).
		Int("skipped", res.Skipped).
		Dur("duration", res.Duration).
		Msg("Scrape finished")

	return res, nil
}

func (s *Scraper) markProxy(p string, healthy bool) {
	if healthy {
		s.proxies.MarkHealthy(p)
	} else {
		s.proxies.MarkFailed(p)
	}
}
