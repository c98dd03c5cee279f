package domain

import "errors"

var (
	// ErrInvalidQuery signals a query that violates input constraints.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidDocument signals an ingestion record that violates input constraints.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrRetrievalFailed signals a broken knowledge base (distinct from zero results).
	ErrRetrievalFailed = errors.New("retrieval failed")
	// ErrCompositionFailed signals that no answer strategy produced text.
	ErrCompositionFailed = errors.New("composition failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationFailed signals a generative backend failure.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrRateLimited signals a rate limit hit on an upstream API.
	ErrRateLimited = errors.New("rate limited")
)
