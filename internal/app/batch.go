package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/quantmind-br/reposnap/internal/domain"
	"github.com/quantmind-br/reposnap/internal/manifest"
	"github.com/quantmind-br/reposnap/internal/output"
	"github.com/quantmind-br/reposnap/internal/utils"
)

// ErrSkipped marks a source that never ran because the batch stopped early
var ErrSkipped = errors.New("skipped after an earlier failure")

// BatchRunner fetches every source of a manifest concurrently
type BatchRunner struct {
	fetcher      domain.Fetcher
	collector    *output.IndexCollector
	logger       *utils.Logger
	showProgress bool
}

// BatchOptions contains options for creating a BatchRunner
type BatchOptions struct {
	Fetcher domain.Fetcher
	// Collector, if set, receives every persisted snapshot and is flushed at the end
	Collector    *output.IndexCollector
	Logger       *utils.Logger
	ShowProgress bool
}

// SourceResult is the outcome of one manifest source
type SourceResult struct {
	Source   manifest.Source
	Result   *domain.FetchResult
	Error    error
	Duration time.Duration
}

// BatchSummary is the outcome of a whole manifest
type BatchSummary struct {
	Results   []SourceResult
	Succeeded int
	Failed    int
	Skipped   int
	Duration  time.Duration
}

// Errors returns the failures of the sources that ran, in manifest order
func (s *BatchSummary) Errors() []error {
	errs := make([]error, len(s.Results))
	for i, res := range s.Results {
		if !errors.Is(res.Error, ErrSkipped) {
			errs[i] = res.Error
		}
	}
	return utils.CollectErrors(errs)
}

// NewBatchRunner creates a new BatchRunner
func NewBatchRunner(opts BatchOptions) *BatchRunner {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &BatchRunner{
		fetcher:      opts.Fetcher,
		collector:    opts.Collector,
		logger:       logger,
		showProgress: opts.ShowProgress,
	}
}

// Run executes all sources defined in the manifest. Each source is an
// independent fetch. Without continue_on_error the first failure cancels the
// sources still running and the rest are skipped.
func (r *BatchRunner) Run(ctx context.Context, cfg *manifest.Config) (*BatchSummary, error) {
	startTime := time.Now()
	total := len(cfg.Sources)

	r.logger.Info().
		Int("sources", total).
		Bool("continue_on_error", cfg.Options.ContinueOnError).
		Str("output", cfg.Options.Output).
		Msg("Starting batch")

	summary := &BatchSummary{Results: make([]SourceResult, total)}
	for i, source := range cfg.Sources {
		summary.Results[i] = SourceResult{Source: source, Error: ErrSkipped}
	}
	if total == 0 {
		return summary, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var mu sync.Mutex

	bar := r.newBar(total)

	indexes := make([]int, total)
	for i := range indexes {
		indexes[i] = i
	}

	utils.ParallelForEach(runCtx, indexes, cfg.Options.Concurrency, func(ctx context.Context, idx int) error {
		source := cfg.Sources[idx]
		sourceStart := time.Now()

		result, err := r.fetcher.Fetch(ctx, source.Request(cfg.Options))
		duration := time.Since(sourceStart)
		if err != nil && ctx.Err() != nil && errors.Is(err, context.Canceled) {
			// aborted by an earlier failure or by the caller
			err = fmt.Errorf("%w: %w", ErrSkipped, err)
		}

		mu.Lock()
		summary.Results[idx] = SourceResult{
			Source:   source,
			Result:   result,
			Error:    err,
			Duration: duration,
		}
		mu.Unlock()

		if bar != nil {
			_ = bar.Add(1)
		}

		if errors.Is(err, ErrSkipped) {
			r.logger.Warn().
				Int("source_idx", idx).
				Str("source_url", source.URL).
				Msg("Source fetch cancelled")
			return err
		}
		if err != nil {
			r.logger.Error().
				Err(err).
				Int("source_idx", idx).
				Str("source_url", source.URL).
				Dur("duration", duration).
				Msg("Source fetch failed")
			if !cfg.Options.ContinueOnError {
				cancel()
			}
			return err
		}

		if r.collector != nil {
			r.collector.Add(source.URL, result)
		}
		r.logger.Info().
			Int("source_idx", idx).
			Str("source_url", source.URL).
			Str("file", result.PersistedPath).
			Dur("duration", duration).
			Msg("Source fetch completed")
		return nil
	})

	if bar != nil {
		_ = bar.Finish()
	}

	for _, res := range summary.Results {
		switch {
		case res.Error == nil:
			summary.Succeeded++
		case errors.Is(res.Error, ErrSkipped):
			summary.Skipped++
		default:
			summary.Failed++
		}
	}
	summary.Duration = time.Since(startTime)

	if r.collector != nil {
		if err := r.collector.Flush(); err != nil {
			r.logger.Warn().Err(err).Msg("Failed to write snapshot index")
		}
	}

	r.logger.Info().
		Dur("total_duration", summary.Duration).
		Int("total", total).
		Int("success", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Msg("Batch completed")

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	if first := utils.FirstError(summary.Errors()); first != nil {
		return summary, fmt.Errorf("batch completed with %d/%d failures, first: %w", summary.Failed, total, first)
	}
	return summary, nil
}

func (r *BatchRunner) newBar(total int) *progressbar.ProgressBar {
	if !r.showProgress {
		return nil
	}
	return utils.NewProgressBar(total, utils.DescFetching)
}
