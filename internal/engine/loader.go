package engine

import (
	"context"

	"github.com/kutoven/wbreviews/internal/config"
	"github.com/rs/zerolog"
)

// Loader scrolls a lazily-loading feed until the rendered container count converges.
//
// The streak is the length of the current run of identical counts, so a
// threshold of 5 stops on the fifth identical count in a row. A run needs at
// least one unchanged observation, so thresholds below 2 behave as 2. With
// MaxIterations == 0 the loop is unbounded: a feed that never stabilizes
// keeps it running until ctx is done.
type Loader struct {
	Delay             DelayStrategy
	ScrollDelay       config.DelayRange
	NoChangeThreshold int
	MaxIterations     int
	Selector          string
}

// LoadResult reports how a load run ended.
type LoadResult struct {
	Count      int
	Iterations int
	Converged  bool
}

// NewLoader builds a loader from cfg.
func NewLoader(cfg *config.Config, delay DelayStrategy) *Loader {
	return &Loader{
		Delay:             delay,
		ScrollDelay:       cfg.ScrollDelay,
		NoChangeThreshold: cfg.NoChangeThreshold,
		MaxIterations:     cfg.MaxScrollIterations,
	}
}

// LoadAll scrolls page until convergence. progress, if non-nil, receives the
// highest count seen after every scroll. Scroll and count failures are logged
// and treated as an unchanged count; only ctx cancellation is returned.
func (l *Loader) LoadAll(ctx context.Context, page Page, progress func(int)) (LoadResult, error) {
	logger := zerolog.Ctx(ctx)

	threshold := l.NoChangeThreshold
	switch {
	case threshold < 1:
		threshold = config.DefaultNoChangeThreshold
	case threshold < config.MinNoChangeThreshold:
		threshold = config.MinNoChangeThreshold
	}
	selector := l.Selector
	if selector == "" {
		selector = ContainerSelector
	}
	delay := l.Delay
	if delay == nil {
		delay = UniformDelay{}
	}

	var res LoadResult
	previous, streak, best := 0, 0, 0

	for {
		if l.MaxIterations > 0 && res.Iterations >= l.MaxIterations {
			logger.Warn().Int("max_iterations", l.MaxIterations).Int("count", best).
				Msg("Scroll limit reached before the feed converged")
			res.Count = best
			return res, nil
		}

		if err := page.ScrollToBottom(ctx); err != nil {
			logger.Debug().Err(err).Msg("Scroll failed")
		}
		if err := sleep(ctx, delay.Next(l.ScrollDelay)); err != nil {
			res.Count = best
			return res, err
		}
		res.Iterations++

		current, err := page.CountElements(ctx, selector)
		if err != nil {
			if ctx.Err() != nil {
				res.Count = best
				return res, ctx.Err()
			}
			logger.Debug().Err(err).Msg("Count failed, assuming no change")
			current = previous
		}

		if current == previous {
			streak++
		} else {
			streak = 1
		}
		previous = current
		if current > best {
			best = current
		}

		logger.Debug().
			Int("iteration", res.Iterations).
			Int("count", current).
			Int("streak", streak).
			Msg("Scrolled")

		if progress != nil {
			progress(best)
		}

		if streak >= threshold {
			res.Count = best
			res.Converged = true
			logger.Info().Int("count", best).Int("iterations", res.Iterations).Msg("Review feed converged")
			return res, nil
		}
	}
}
