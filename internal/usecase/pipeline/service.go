// Package pipeline sequences safety checks, caching, classification,
// retrieval, lookups and composition into one structured answer.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/docnav/internal/domain"
	"github.com/kailas-cloud/docnav/internal/domain/answer"
	"github.com/kailas-cloud/docnav/internal/domain/finding"
	"github.com/kailas-cloud/docnav/internal/domain/passage"
	"github.com/kailas-cloud/docnav/internal/domain/query"
	"github.com/kailas-cloud/docnav/internal/logger"
	"github.com/kailas-cloud/docnav/internal/metrics"
	"github.com/kailas-cloud/docnav/internal/usecase/compose"
	"github.com/kailas-cloud/docnav/internal/usecase/resultcache"
)

// MaxRetrieval caps the passages fetched per request regardless of the requested count.
const MaxRetrieval = 20

// DefaultRetrievalTimeout bounds a single retriever call.
const DefaultRetrievalTimeout = 10 * time.Second

// Service is the query orchestrator. Safe for concurrent use; the result cache
// is the only shared mutable state.
type Service struct {
	safety     SafetyFilter
	cache      ResultCache
	classifier Classifier
	retriever  Retriever
	lookups    LookupRunner
	composer   compose.Composer

	retrievalTimeout time.Duration
	now              func() time.Time
}

// New creates the orchestrator.
func New(
	safety SafetyFilter,
	cache ResultCache,
	classifier Classifier,
	retriever Retriever,
	lookups LookupRunner,
	composer compose.Composer,
) *Service {
	return &Service{
		safety:           safety,
		cache:            cache,
		classifier:       classifier,
		retriever:        retriever,
		lookups:          lookups,
		composer:         composer,
		retrievalTimeout: DefaultRetrievalTimeout,
		now:              time.Now,
	}
}

// WithRetrievalTimeout overrides the retriever call bound.
func (s *Service) WithRetrievalTimeout(d time.Duration) *Service {
	if d > 0 {
		s.retrievalTimeout = d
	}
	return s
}

// Run answers q. Safety rejections and "no documents" are normal results;
// retrieval and composition failures are returned as errors.
func (s *Service) Run(ctx context.Context, q query.Query) (answer.Result, error) {
	log := logger.FromContext(ctx)

	verdict := s.safety.CheckInput(q.Text())
	if !verdict.Allowed {
		log.Info("query blocked",
			zap.String("reason", string(verdict.Reason)),
			zap.String("matched", verdict.Matched),
		)
		metrics.SafetyRejectionsTotal.WithLabelValues(string(verdict.Reason)).Inc()
		metrics.PipelineRequestsTotal.WithLabelValues("blocked").Inc()
		return answer.Blocked(q.Text(), verdict.Message), nil
	}

	fp := resultcache.Fingerprint(q)
	ctx, log = logger.WithFields(ctx, zap.String("fingerprint", fp))
	if cached, ok := s.cache.Get(fp); ok {
		log.Debug("result cache hit")
		metrics.PipelineRequestsTotal.WithLabelValues("cached").Inc()
		return cached, nil
	}

	gen := s.cache.Generation()
	result, err := s.answer(ctx, q)
	if err != nil {
		metrics.PipelineRequestsTotal.WithLabelValues("error").Inc()
		return answer.Result{}, err
	}

	if !s.cache.PutIf(fp, result, gen) {
		log.Debug("result not cached, cache cleared during request")
	}
	metrics.PipelineRequestsTotal.WithLabelValues("answered").Inc()
	return result, nil
}

func (s *Service) answer(ctx context.Context, q query.Query) (answer.Result, error) {
	log := logger.FromContext(ctx)

	start := s.now()
	routing := s.classifier.Classify(q.Text())
	s.observe("classify", start)
	metrics.PipelineCategoryTotal.WithLabelValues(string(routing.Category)).Inc()
	log.Debug("query classified",
		zap.String("category", string(routing.Category)),
		zap.Float64("confidence", routing.Confidence),
		zap.Strings("matched", routing.Matched),
	)

	var (
		passages []passage.Passage
		findings finding.Set
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer s.observe("retrieve", s.now())
		rctx, cancel := context.WithTimeout(gctx, s.retrievalTimeout)
		defer cancel()

		var err error
		passages, err = s.retriever.Search(rctx, q.Text(), min(q.ResultCount(), MaxRetrieval))
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrRetrievalFailed, err)
		}
		return nil
	})
	g.Go(func() error {
		defer s.observe("lookups", s.now())
		findings = s.lookups.Run(gctx, q, routing.Category)
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error("retrieval failed", zap.Error(err))
		return answer.Result{}, err
	}

	start = s.now()
	text, err := s.composer.Compose(ctx, compose.Input{
		Question: q.Text(),
		Routing:  routing,
		Passages: passages,
		Findings: findings,
	})
	s.observe("compose", start)
	if err != nil {
		log.Error("composition failed", zap.Error(err))
		return answer.Result{}, fmt.Errorf("%w: %w", domain.ErrCompositionFailed, err)
	}

	out := s.safety.CheckOutput(text, passage.Top(passages, answer.MaxSources))
	if out.Speculative {
		log.Warn("speculative answer flagged")
	}

	codeExamples := findings.CodeExamples
	if codeExamples == nil {
		codeExamples = []finding.CodeExample{}
	}
	matched := routing.Matched
	if matched == nil {
		matched = []string{}
	}

	return answer.Result{
		Query:           q.Text(),
		Answer:          out.Answer,
		Category:        routing.Category,
		Confidence:      routing.Confidence,
		Sources:         answer.SourcesFrom(passages),
		CodeExamples:    codeExamples,
		MatchedKeywords: matched,
		SuggestedTags:   routing.Tags,
		SafetyTriggered: out.Speculative,
		Compatibility:   findings.Compatibility,
		Troubleshooting: findings.Troubleshooting,
	}, nil
}

// CacheStats reports result cache state.
func (s *Service) CacheStats() resultcache.Stats {
	return s.cache.Stats()
}

// InvalidateCache drops every cached result and returns how many were removed.
func (s *Service) InvalidateCache() int {
	metrics.CacheInvalidationsTotal.Inc()
	return s.cache.Clear()
}

func (s *Service) observe(stage string, start time.Time) {
	metrics.PipelineStageDuration.WithLabelValues(stage).Observe(s.now().Sub(start).Seconds())
}
