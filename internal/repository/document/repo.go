package document

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/kailas-cloud/docnav/internal/db"
	domdoc "github.com/kailas-cloud/docnav/internal/domain/document"
)

// Hash field names shared with the passage retriever.
const (
	FieldURL     = "url"
	FieldTitle   = "title"
	FieldContent = "content"
	FieldSource  = "source"
	FieldVector  = "vector"
)

// Default HNSW build parameters.
const (
	DefaultHNSWM              = 16
	DefaultHNSWEFConstruction = 200
)

// store is the consumer interface for document storage (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Config describes where documents live and how they are indexed.
type Config struct {
	IndexName          string
	KeyPrefix          string // e.g. "docnav:"; documents go under <prefix>doc:
	Dimensions         int
	HNSWM              int
	HNSWEFConstruction int
}

// Repo writes documents as Redis hashes covered by one HNSW index.
type Repo struct {
	store store
	cfg   Config

	mu      sync.Mutex
	ensured bool
}

// New creates a document repository.
func New(s store, cfg Config) *Repo {
	if cfg.HNSWM <= 0 {
		cfg.HNSWM = DefaultHNSWM
	}
	if cfg.HNSWEFConstruction <= 0 {
		cfg.HNSWEFConstruction = DefaultHNSWEFConstruction
	}
	return &Repo{store: s, cfg: cfg}
}

// IndexName returns the FT index covering the documents.
func (r *Repo) IndexName() string { return r.cfg.IndexName }

// EnsureIndex creates the index on first use. Concurrent creation by another
// process is not an error.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ensured {
		return nil
	}

	exists, err := r.store.IndexExists(ctx, r.cfg.IndexName)
	if err != nil {
		return fmt.Errorf("check index %s: %w", r.cfg.IndexName, err)
	}
	if !exists {
		def, err := r.indexDefinition()
		if err != nil {
			return err
		}
		if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
			return fmt.Errorf("create index %s: %w", r.cfg.IndexName, err)
		}
	}

	r.ensured = true
	return nil
}

// Upsert writes documents in one round-trip. Re-ingesting a URL overwrites it.
// Every document must carry a vector of the configured dimension.
func (r *Repo) Upsert(ctx context.Context, docs []domdoc.Document) error {
	items := make([]db.HashSetItem, 0, len(docs))
	for _, d := range docs {
		if len(d.Vector()) != r.cfg.Dimensions {
			return fmt.Errorf("document %s: vector has %d dimensions, want %d",
				d.URL(), len(d.Vector()), r.cfg.Dimensions)
		}
		items = append(items, db.HashSetItem{
			Key: r.docKey(d.ID()),
			Fields: map[string]string{
				FieldURL:     d.URL(),
				FieldTitle:   d.Title(),
				FieldContent: d.Content(),
				FieldSource:  d.Source(),
				FieldVector:  encodeVector(d.Vector()),
			},
		})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset documents: %w", err)
	}
	return nil
}

// Count returns the number of indexed documents. A missing index counts as empty.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.cfg.IndexName, "*")
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("search count %s: %w", r.cfg.IndexName, err)
	}
	return n, nil
}

func (r *Repo) indexDefinition() (*db.IndexDefinition, error) {
	def, err := db.NewIndex(r.cfg.IndexName).
		Prefix(r.cfg.KeyPrefix+"doc:").
		Tag(FieldURL).
		Text(FieldTitle).
		Text(FieldContent).
		Tag(FieldSource).
		VectorHNSW(FieldVector, r.cfg.Dimensions, db.DistanceCosine, r.cfg.HNSWM, r.cfg.HNSWEFConstruction).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build index %s: %w", r.cfg.IndexName, err)
	}
	return def, nil
}

func (r *Repo) docKey(id string) string {
	return r.cfg.KeyPrefix + "doc:" + id
}

// encodeVector packs FLOAT32 little-endian, the layout HNSW fields expect.
func encodeVector(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
