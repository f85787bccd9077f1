package snapshot

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/quantmind-br/reposnap/internal/domain"
	"github.com/quantmind-br/reposnap/internal/git"
	"github.com/quantmind-br/reposnap/internal/telemetry"
	"github.com/quantmind-br/reposnap/internal/utils"
)

// Service runs the full snapshot pipeline for one request at a time.
// It holds no per-fetch state, so one Service may serve concurrent callers.
type Service struct {
	branches   *BranchResolver
	fetcher    *Fetcher
	aggregator *Aggregator
	writer     domain.Writer
	journal    domain.Journal
	metrics    domain.Metrics
	logger     *utils.Logger
	now        func() time.Time
}

// ServiceOptions contains the collaborators of a Service.
// Writer, Journal and Metrics are optional.
type ServiceOptions struct {
	Client  git.Client
	TempDir string
	Lister  DirLister
	Writer  domain.Writer
	Journal domain.Journal
	Metrics domain.Metrics
	Logger  *utils.Logger
}

var _ domain.Fetcher = (*Service)(nil)

// NewService creates a new Service
func NewService(opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	return &Service{
		branches: NewBranchResolver(BranchResolverOptions{
			Client: opts.Client,
			Logger: logger.WithComponent("branch"),
		}),
		fetcher: NewFetcher(FetcherOptions{
			Client:  opts.Client,
			TempDir: opts.TempDir,
			Logger:  logger.WithComponent("fetcher"),
		}),
		aggregator: NewAggregator(AggregatorOptions{
			Lister: opts.Lister,
			Logger: logger.WithComponent("aggregator"),
		}),
		writer:  opts.Writer,
		journal: opts.Journal,
		metrics: opts.Metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Fetch resolves req.URL, clones the chosen branch and aggregates the target
// folder. Failures are returned as *domain.FetchError and never retried.
// A persistence failure is reported in FetchResult.PersistErr only.
func (s *Service) Fetch(ctx context.Context, req domain.FetchRequest) (*domain.FetchResult, error) {
	ctx, span := otel.Tracer(telemetry.InstrumentationName).Start(ctx, "snapshot.Fetch")
	defer span.End()

	start := s.now()
	rec := &domain.FetchRecord{URL: req.URL, FetchedAt: start}

	result, err := s.fetch(ctx, req, rec)
	elapsed := s.now().Sub(start)

	span.SetAttributes(
		attribute.String("reposnap.url", req.URL),
		attribute.String("reposnap.branch", rec.Branch),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, telemetry.Outcome(domain.KindOf(err)))
	}

	rec.Duration = elapsed
	if err != nil {
		rec.Error = err.Error()
		s.logger.Error().Err(err).Str("url", req.URL).Dur("elapsed", elapsed).Msg("Fetch failed")
	} else {
		result.Duration = elapsed
		rec.Files = len(result.Content.Files)
		rec.Bytes = result.Content.Size()
		s.logger.Info().
			Str("url", req.URL).
			Str("branch", result.Branch).
			Int("files", rec.Files).
			Dur("elapsed", elapsed).
			Msg("Fetch completed")
	}

	if s.metrics != nil {
		s.metrics.ObserveFetch(ctx, domain.KindOf(err), rec.Files, elapsed)
	}
	if s.journal != nil {
		if jerr := s.journal.Record(ctx, rec); jerr != nil {
			s.logger.Warn().Err(jerr).Str("url", req.URL).Msg("Failed to record fetch")
		}
	}

	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) fetch(ctx context.Context, req domain.FetchRequest, rec *domain.FetchRecord) (*domain.FetchResult, error) {
	target, err := ResolveURL(req.URL)
	if err != nil {
		return nil, err
	}
	rec.CloneURL = target.CloneURL
	rec.SubPath = target.SubPath

	log := s.logger.WithURL(req.URL)
	log.Debug().
		Str("clone_url", target.CloneURL).
		Str("sub_path", target.SubPath).
		Str("tree_ref", target.TreeRef).
		Msg("Resolved URL")

	branch := req.Branch
	if branch == "" {
		branch, err = s.branches.Resolve(ctx, target.CloneURL, req.Timeout)
		if err != nil {
			return nil, err
		}
	}
	rec.Branch = branch

	ws, err := s.fetcher.Fetch(ctx, target.CloneURL, branch, req.Timeout)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rerr := ws.Release(); rerr != nil {
			log.Warn().Err(rerr).Str("workspace", ws.Path()).Msg("Failed to remove workspace")
		}
	}()

	content, err := s.aggregator.Aggregate(ws.Path(), target.SubPath)
	if err != nil {
		return nil, err
	}

	result := &domain.FetchResult{
		Target:  target,
		Branch:  branch,
		Content: content,
	}

	if s.writer != nil {
		path, werr := s.writer.Write(ctx, target, content)
		if werr != nil {
			log.Warn().Err(werr).Msg("Failed to persist snapshot")
			result.PersistErr = werr
		} else {
			result.PersistedPath = path
		}
	}

	return result, nil
}
