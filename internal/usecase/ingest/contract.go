package ingest

import (
	"context"

	domdoc "github.com/kailas-cloud/docnav/internal/domain/document"
)

// Repository persists embedded documents.
type Repository interface {
	EnsureIndex(ctx context.Context) error
	Upsert(ctx context.Context, docs []domdoc.Document) error
	Count(ctx context.Context) (int, error)
	IndexName() string
}

// CacheInvalidator flushes answers that may reference stale content.
type CacheInvalidator interface {
	InvalidateCache() int
}
