package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docnav/internal/domain"
	dombatch "github.com/kailas-cloud/docnav/internal/domain/batch"
	domdoc "github.com/kailas-cloud/docnav/internal/domain/document"
	"github.com/kailas-cloud/docnav/internal/logger"
	"github.com/kailas-cloud/docnav/internal/metrics"
)

// MaxBatchSize is the maximum number of records per ingest call.
const MaxBatchSize = 100

// Record is a raw document as submitted for ingestion.
type Record struct {
	URL     string
	Title   string
	Content string
	Source  string
}

// Report summarizes one ingest call. Results follow input order and are keyed by URL.
type Report struct {
	Added   int
	Results []dombatch.Result
}

// Stats describes the knowledge base.
type Stats struct {
	TotalDocuments int
	IndexName      string
}

// Service validates, embeds and stores documents, then invalidates cached answers.
type Service struct {
	repo         Repository
	embed        domain.Embedder
	cache        CacheInvalidator
	maxBatchSize int
}

// New creates an ingest service. embed should apply the document instruction.
func New(repo Repository, embed domain.Embedder, cache CacheInvalidator) *Service {
	return &Service{repo: repo, embed: embed, cache: cache, maxBatchSize: MaxBatchSize}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// Ingest stores every valid record. Invalid records are reported per item and
// skipped. Any write attempt clears the result cache, successful or not.
func (s *Service) Ingest(ctx context.Context, records []Record) (Report, error) {
	if len(records) == 0 {
		return Report{}, fmt.Errorf("%w: no documents provided", domain.ErrInvalidDocument)
	}
	if len(records) > s.maxBatchSize {
		return Report{}, fmt.Errorf("%w: batch size %d exceeds %d",
			domain.ErrInvalidDocument, len(records), s.maxBatchSize)
	}

	report := Report{Results: make([]dombatch.Result, len(records))}
	docs := make([]domdoc.Document, 0, len(records))
	slots := make([]int, 0, len(records))

	for i, rec := range records {
		doc, err := domdoc.New(rec.URL, rec.Title, rec.Content, rec.Source)
		if err != nil {
			report.Results[i] = dombatch.NewError(rec.URL, err)
			metrics.IngestDocumentsTotal.WithLabelValues("invalid").Inc()
			continue
		}
		docs = append(docs, doc)
		slots = append(slots, i)
	}

	if len(docs) == 0 {
		return report, nil
	}

	defer s.invalidate(ctx)

	if err := s.write(ctx, docs); err != nil {
		metrics.IngestDocumentsTotal.WithLabelValues("failed").Add(float64(len(docs)))
		for j, doc := range docs {
			report.Results[slots[j]] = dombatch.NewError(doc.URL(), err)
		}
		return report, err
	}

	for j, doc := range docs {
		report.Results[slots[j]] = dombatch.NewOK(doc.URL())
	}
	added, rejected := dombatch.Count(report.Results)
	report.Added = added
	metrics.IngestDocumentsTotal.WithLabelValues("added").Add(float64(added))

	logger.FromContext(ctx).Info("Documents ingested",
		zap.Int("added", added),
		zap.Int("rejected", rejected),
	)
	return report, nil
}

func (s *Service) write(ctx context.Context, docs []domdoc.Document) error {
	if err := s.repo.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}

	contents := make([]string, len(docs))
	for i, d := range docs {
		contents[i] = d.Content()
	}

	res, err := domain.EmbedAll(ctx, s.embed, contents)
	if err != nil {
		return fmt.Errorf("vectorize documents: %w", err)
	}
	if len(res.Embeddings) != len(docs) {
		return fmt.Errorf("vectorize documents: got %d vectors for %d documents: %w",
			len(res.Embeddings), len(docs), domain.ErrEmbeddingProviderError)
	}

	for i := range docs {
		docs[i] = docs[i].WithVector(res.Embeddings[i])
	}

	if err := s.repo.Upsert(ctx, docs); err != nil {
		return fmt.Errorf("store documents: %w", err)
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	n := s.cache.InvalidateCache()
	logger.FromContext(ctx).Debug("Result cache invalidated after ingest", zap.Int("entries", n))
}

// Stats reports the document count of the knowledge base.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count documents: %w", err)
	}
	return Stats{TotalDocuments: n, IndexName: s.repo.IndexName()}, nil
}
