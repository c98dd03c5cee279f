package chi

import (
	"context"

	"github.com/kailas-cloud/docnav/internal/domain/answer"
	"github.com/kailas-cloud/docnav/internal/domain/query"
	healthuc "github.com/kailas-cloud/docnav/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/docnav/internal/usecase/ingest"
	"github.com/kailas-cloud/docnav/internal/usecase/resultcache"
	"github.com/kailas-cloud/docnav/internal/usecase/safety"
)

// Pipeline answers queries and owns the result cache.
type Pipeline interface {
	Run(ctx context.Context, q query.Query) (answer.Result, error)
	CacheStats() resultcache.Stats
	InvalidateCache() int
}

// Ingester writes documents into the knowledge base.
type Ingester interface {
	Ingest(ctx context.Context, records []ingestuc.Record) (ingestuc.Report, error)
	Stats(ctx context.Context) (ingestuc.Stats, error)
}

// SafetyReporter exposes the active safety policy.
type SafetyReporter interface {
	Status() safety.Status
}

// HealthChecker probes dependencies.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
