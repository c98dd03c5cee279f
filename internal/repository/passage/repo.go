package passage

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/docnav/internal/db"
	"github.com/kailas-cloud/docnav/internal/domain"
	dompsg "github.com/kailas-cloud/docnav/internal/domain/passage"
	"github.com/kailas-cloud/docnav/internal/repository/document"
)

// store is the consumer interface for KNN retrieval (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

var returnFields = []string{
	document.FieldURL,
	document.FieldTitle,
	document.FieldContent,
	document.FieldSource,
}

// Repo retrieves passages by vector similarity.
type Repo struct {
	store     store
	embed     domain.Embedder
	indexName string
}

// New creates a retriever over the given index. embed should apply the query instruction.
func New(s store, embed domain.Embedder, indexName string) *Repo {
	return &Repo{store: s, embed: embed, indexName: indexName}
}

// Search returns up to n passages, nearest first. An empty or missing index
// yields an empty slice; storage and embedding failures are returned.
func (r *Repo) Search(ctx context.Context, text string, n int) ([]dompsg.Passage, error) {
	if n <= 0 {
		return []dompsg.Passage{}, nil
	}

	emb, err := r.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName,
		Vector:       emb.Embedding,
		K:            n,
		ReturnFields: returnFields,
		RawScores:    true,
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return []dompsg.Passage{}, nil
		}
		return nil, fmt.Errorf("search knn %s: %w", r.indexName, err)
	}

	return toPassages(sr), nil
}

func toPassages(sr *db.SearchResult) []dompsg.Passage {
	if sr == nil {
		return []dompsg.Passage{}
	}
	out := make([]dompsg.Passage, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		p := dompsg.Passage{
			ID:      e.Key,
			Content: e.Fields[document.FieldContent],
			Title:   e.Fields[document.FieldTitle],
			URL:     e.Fields[document.FieldURL],
			Source:  e.Fields[document.FieldSource],
		}
		if e.HasScore {
			d := e.Score
			p.Distance = &d
		}
		out = append(out, p)
	}
	return out
}
