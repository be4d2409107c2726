package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kutoven/wbreviews/internal/config"
	"github.com/kutoven/wbreviews/internal/engine"
	"github.com/kutoven/wbreviews/internal/jobctx"
	"github.com/kutoven/wbreviews/internal/metrics"
	"github.com/kutoven/wbreviews/internal/sink"
	urlutil "github.com/kutoven/wbreviews/internal/utils/url"
	"github.com/kutoven/wbreviews/pkg/models"
	"github.com/rs/zerolog"
)

// ReviewScraper is satisfied by *engine.Scraper.
type ReviewScraper interface {
	Scrape(ctx context.Context, req engine.Request) (*engine.Result, error)
}

// WriteFunc persists reviews to path.
type WriteFunc func(reviews []models.Review, path string) error

// Runner turns URLs into scrape jobs and their CSV artifacts.
// Jobs are independent; nothing about a job is kept once it finishes.
type Runner struct {
	scraper     ReviewScraper
	write       WriteFunc
	outputDir   string
	debugPrefix string
	logger      zerolog.Logger
	now         func() time.Time

	mu     sync.Mutex
	lastID int64

	wg sync.WaitGroup
}

// NewRunner creates a Runner writing CSV files into cfg.OutputDir.
func NewRunner(s ReviewScraper, cfg *config.Config, logger zerolog.Logger) *Runner {
	return &Runner{
		scraper:     s,
		write:       sink.WriteCSV,
		outputDir:   cfg.OutputDir,
		debugPrefix: cfg.DebugPrefix,
		logger:      logger,
		now:         time.Now,
	}
}

// NewJob validates url and allocates a job. IDs are creation timestamps in
// milliseconds, bumped by one when two jobs land in the same millisecond.
func (r *Runner) NewJob(url string) (models.ScrapeJob, error) {
	if err := urlutil.ValidateURL(url); err != nil {
		return models.ScrapeJob{}, err
	}

	now := r.now()
	r.mu.Lock()
	id := now.UnixMilli()
	if id <= r.lastID {
		id = r.lastID + 1
	}
	r.lastID = id
	r.mu.Unlock()

	return models.NewScrapeJob(url, r.outputDir, time.UnixMilli(id)), nil
}

// Dispatch starts a job in the background and returns immediately.
// The job is not tied to any request context and cannot be cancelled.
func (r *Runner) Dispatch(url string) (models.ScrapeJob, error) {
	job, err := r.NewJob(url)
	if err != nil {
		return models.ScrapeJob{}, err
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		// Result is logged by Run.
		_, _ = r.Run(context.Background(), job, nil)
	}()

	return job, nil
}

// Run executes job synchronously: scrape, then write the CSV artifact.
// progress, if non-nil, receives the rendered review count while loading.
func (r *Runner) Run(ctx context.Context, job models.ScrapeJob, progress func(int)) (models.JobResult, error) {
	ctx = jobctx.WithJob(ctx, job.ID, job.URL)
	jc := jobctx.FromContext(ctx)

	logger := r.logger.With().
		Int64("job_id", job.ID).
		Str("run_id", jc.RunID).
		Logger()
	if pid := urlutil.ProductID(job.URL); pid != "" {
		logger = logger.With().Str("product_id", pid).Logger()
	}
	ctx = logger.WithContext(ctx)

	metrics.JobsInFlight.Inc()
	defer metrics.JobsInFlight.Dec()

	logger.Info().Str("url", job.URL).Str("output", job.OutputPath).Msg("Job started")

	result := models.JobResult{Job: job}
	err := r.execute(ctx, job, progress, &result)
	result.Duration = time.Since(jc.StartTime)

	metrics.JobsTotal.WithLabelValues(metrics.Outcome(err)).Inc()
	metrics.JobDuration.Observe(result.Duration.Seconds())

	if err != nil {
		err = jobctx.NewJobError(ctx, err)
		result.Error = err
		logger.Error().Err(err).Dur("duration", result.Duration).Msg("Job failed")
		return result, err
	}

	result.Succeeded = true
	logger.Info().
		Int("reviews", result.Reviews).
		Int("skipped", result.Skipped).
		Dur("duration", result.Duration).
		Msg("Job completed")
	return result, nil
}

func (r *Runner) execute(ctx context.Context, job models.ScrapeJob, progress func(int), result *models.JobResult) error {
	res, err := r.scraper.Scrape(ctx, engine.Request{
		URL:         job.URL,
		DebugPrefix: fmt.Sprintf("%s_%d", r.debugPrefix, job.ID),
		Progress:    progress,
	})
	if res != nil {
		result.Rendered = res.Rendered
		result.Skipped = res.Skipped
		if res.Iterations > 0 {
			metrics.ScrollIterations.Observe(float64(res.Iterations))
		}
	}
	if err != nil {
		return err
	}

	if err := r.write(res.Reviews, job.OutputPath); err != nil {
		return err
	}
	result.Reviews = len(res.Reviews)
	metrics.ReviewsExtracted.Add(float64(len(res.Reviews)))
	metrics.ReviewsSkipped.Add(float64(res.Skipped))
	zerolog.Ctx(ctx).Info().Int("reviews", len(res.Reviews)).Str("path", job.OutputPath).Msg("Saved reviews")
	return nil
}

// RunBatch runs one job per URL with at most concurrency jobs at a time.
// Invalid URLs produce a failed result without starting a session.
func (r *Runner) RunBatch(ctx context.Context, urls []string, concurrency int) <-chan models.JobResult {
	if concurrency <= 0 {
		concurrency = config.DefaultBatchConcurrency
	}
	if concurrency > config.DefaultMaxBatchConcurrency {
		concurrency = config.DefaultMaxBatchConcurrency
	}

	results := make(chan models.JobResult, len(urls))

	go func() {
		var wg sync.WaitGroup
		sem := make(chan struct{}, concurrency)

		defer func() {
			wg.Wait()
			close(results)
		}()

		for _, u := range urls {
			job, err := r.NewJob(u)
			if err != nil {
				results <- models.JobResult{Job: models.ScrapeJob{URL: u}, Error: err}
				continue
			}

			select {
			case <-ctx.Done():
				results <- models.JobResult{Job: job, Error: ctx.Err()}
				continue
			case sem <- struct{}{}:
			}

			wg.Add(1)
			go func(job models.ScrapeJob) {
				defer wg.Done()
				defer func() { <-sem }()

				res, _ := r.Run(ctx, job, nil)
				results <- res
			}(job)
		}
	}()

	return results
}

// Wait blocks until every dispatched job has finished or ctx is done.
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
