package ingest

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/kailas-cloud/docnav/internal/domain"
	"github.com/kailas-cloud/docnav/internal/domain/answer"
	dombatch "github.com/kailas-cloud/docnav/internal/domain/batch"
	domdoc "github.com/kailas-cloud/docnav/internal/domain/document"
	"github.com/kailas-cloud/docnav/internal/domain/query"
	"github.com/kailas-cloud/docnav/internal/metrics"
	"github.com/kailas-cloud/docnav/internal/usecase/resultcache"
)

func TestMain(m *testing.M) {
	metrics.RegisterPipelineMetrics()
	os.Exit(m.Run())
}

// memRepo is an in-memory Repository keyed by document ID.
type memRepo struct {
	docs      map[string]domdoc.Document
	ensureErr error
	upsertErr error
	countErr  error
	ensured   int
}

func newMemRepo() *memRepo { return &memRepo{docs: map[string]domdoc.Document{}} }

func (r *memRepo) EnsureIndex(context.Context) error {
	r.ensured++
	return r.ensureErr
}

func (r *memRepo) Upsert(_ context.Context, docs []domdoc.Document) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	for _, d := range docs {
		r.docs[d.ID()] = d
	}
	return nil
}

func (r *memRepo) Count(context.Context) (int, error) { return len(r.docs), r.countErr }

func (r *memRepo) IndexName() string { return "docnav-docs" }

type stubEmbedder struct {
	err   error
	calls int
}

func (s *stubEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	s.calls++
	if s.err != nil {
		return domain.EmbeddingResult{}, s.err
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}, TotalTokens: 4}, nil
}

// cacheAdapter exposes a result cache through the CacheInvalidator contract.
type cacheAdapter struct {
	cache *resultcache.Cache
	calls int
}

func (a *cacheAdapter) InvalidateCache() int {
	a.calls++
	return a.cache.Clear()
}

func newTestService() (*Service, *memRepo, *stubEmbedder, *cacheAdapter) {
	repo := newMemRepo()
	emb := &stubEmbedder{}
	cache := &cacheAdapter{cache: resultcache.New(true, time.Hour, 100)}
	return New(repo, emb, cache), repo, emb, cache
}

func record(url string) Record {
	return Record{URL: url, Title: "CUDA Guide", Content: "Kernels run on the device."}
}

func TestIngest_IncrementsCountAndClearsCache(t *testing.T) {
	svc, _, _, cache := newTestService()
	ctx := context.Background()

	q, err := query.New("what is a cuda kernel", 5, true)
	if err != nil {
		t.Fatalf("query.New: %v", err)
	}
	fp := resultcache.Fingerprint(q)
	cache.cache.Put(fp, answer.Result{Query: q.Text(), Answer: "cached"})

	before, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}

	report, err := svc.Ingest(ctx, []Record{record("https://docs.nvidia.com/cuda/guide")})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if report.Added != 1 {
		t.Errorf("expected 1 added, got %d", report.Added)
	}

	after, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if after.TotalDocuments != before.TotalDocuments+1 {
		t.Errorf("expected count %d, got %d", before.TotalDocuments+1, after.TotalDocuments)
	}
	if after.IndexName != "docnav-docs" {
		t.Errorf("unexpected index name %q", after.IndexName)
	}
	if _, ok := cache.cache.Get(fp); ok {
		t.Error("cached answer must be gone after ingest")
	}
}

func TestIngest_ReingestOverwrites(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()

	for range 2 {
		if _, err := svc.Ingest(ctx, []Record{record("https://docs.nvidia.com/cuda/guide")}); err != nil {
			t.Fatalf("Ingest: %v", err)
		}
	}
	if len(repo.docs) != 1 {
		t.Errorf("expected one stored document, got %d", len(repo.docs))
	}
}

func TestIngest_PartialValidation(t *testing.T) {
	svc, repo, _, cache := newTestService()

	report, err := svc.Ingest(context.Background(), []Record{
		record("https://docs.nvidia.com/a"),
		{URL: "not a url", Title: "x", Content: "y"},
		{URL: "https://docs.nvidia.com/c", Title: "", Content: "y"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Added != 1 || len(repo.docs) != 1 {
		t.Errorf("expected 1 added, got %d (stored %d)", report.Added, len(repo.docs))
	}
	if report.Results[0].Status() != dombatch.StatusOK {
		t.Errorf("expected first item ok, got %v", report.Results[0].Err())
	}
	for _, i := range []int{1, 2} {
		r := report.Results[i]
		if r.Status() != dombatch.StatusError || !errors.Is(r.Err(), domain.ErrInvalidDocument) {
			t.Errorf("item %d: expected invalid document, got %s %v", i, r.Status(), r.Err())
		}
	}
	if cache.calls != 1 {
		t.Errorf("expected one invalidation, got %d", cache.calls)
	}
}

func TestIngest_AllInvalidSkipsWrite(t *testing.T) {
	svc, repo, emb, cache := newTestService()

	report, err := svc.Ingest(context.Background(), []Record{{URL: "ftp://x", Title: "t", Content: "c"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Added != 0 || repo.ensured != 0 || emb.calls != 0 {
		t.Errorf("nothing should be written: added=%d ensured=%d embeds=%d", report.Added, repo.ensured, emb.calls)
	}
	if cache.calls != 0 {
		t.Errorf("no write attempt, no invalidation; got %d", cache.calls)
	}
}

func TestIngest_EmptyAndOversized(t *testing.T) {
	svc, _, _, _ := newTestService()
	svc.WithMaxBatchSize(2)

	if _, err := svc.Ingest(context.Background(), nil); !errors.Is(err, domain.ErrInvalidDocument) {
		t.Errorf("expected ErrInvalidDocument for empty batch, got %v", err)
	}

	recs := []Record{record("https://a.example"), record("https://b.example"), record("https://c.example")}
	if _, err := svc.Ingest(context.Background(), recs); !errors.Is(err, domain.ErrInvalidDocument) {
		t.Errorf("expected ErrInvalidDocument for oversized batch, got %v", err)
	}
}

func TestIngest_FailuresStillInvalidate(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*memRepo, *stubEmbedder)
		want  error
	}{
		{
			name:  "ensure index",
			setup: func(r *memRepo, _ *stubEmbedder) { r.ensureErr = errors.New("index down") },
		},
		{
			name:  "embedding",
			setup: func(_ *memRepo, e *stubEmbedder) { e.err = domain.ErrEmbeddingProviderError },
			want:  domain.ErrEmbeddingProviderError,
		},
		{
			name:  "upsert",
			setup: func(r *memRepo, _ *stubEmbedder) { r.upsertErr = errors.New("oom") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, emb, cache := newTestService()
			tt.setup(repo, emb)

			_, err := svc.Ingest(context.Background(), []Record{record("https://docs.nvidia.com/a")})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if cache.calls != 1 {
				t.Errorf("expected cache invalidation on failed write, got %d", cache.calls)
			}
		})
	}
}

func TestIngest_WriteFailureKeepsItemResults(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.upsertErr = errors.New("oom")

	report, err := svc.Ingest(context.Background(), []Record{
		record("https://docs.nvidia.com/a"),
		{URL: "https://docs.nvidia.com/b", Title: "Empty"},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(report.Results) != 2 {
		t.Fatalf("expected 2 item results, got %d", len(report.Results))
	}
	if report.Added != 0 {
		t.Errorf("expected nothing added, got %d", report.Added)
	}
	for i, r := range report.Results {
		if r.Status() != dombatch.StatusError || r.Err() == nil {
			t.Errorf("item %d: expected error result, got %v", i, r.Status())
		}
	}
	if report.Results[0].URL() != "https://docs.nvidia.com/a" {
		t.Errorf("expected write failure reported for first item, got %q", report.Results[0].URL())
	}
	if !errors.Is(report.Results[1].Err(), domain.ErrInvalidDocument) {
		t.Errorf("second item should keep its validation error, got %v", report.Results[1].Err())
	}
}

func TestStats_Error(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.countErr = errors.New("connection refused")

	if _, err := svc.Stats(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
