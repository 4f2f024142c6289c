// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieve turns a natural-language query into a ranked, bounded
// list of fact packs grounded in the vector index.
// Implements: prd003-retrieval (R1-R3);
//
//	docs/ARCHITECTURE § Retrieval.
package retrieve

import (
	"context"
	"fmt"
	"math"

	"github.com/pdiddy/book-engine/internal/embed"
	"github.com/pdiddy/book-engine/internal/index"
	"github.com/pdiddy/book-engine/pkg/types"
)

// UnknownCiteKey is the sentinel cite key used when a chunk carries no
// citation metadata at all. Retrieval never fails on incomplete metadata.
const UnknownCiteKey = "source:unknown"

// Querier is the index surface the retriever reads from.
type Querier interface {
	Query(ctx context.Context, embedding []float32, k int) ([]index.Match, error)
}

// Retriever maps index matches to fact packs with citations.
type Retriever struct {
	store    Querier
	embedder embed.Embedder
}

// NewRetriever creates a retriever over the given index and embedder.
func NewRetriever(store Querier, embedder embed.Embedder) *Retriever {
	return &Retriever{store: store, embedder: embedder}
}

// Retrieve embeds the query, asks the index for the k nearest chunks, and
// maps each match to a FactPack. Fewer than k matches is not an error; an
// empty index yields an empty slice. k must be at least 1.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]types.FactPack, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be at least 1, got %d", k)
	}

	vec, err := r.embedder.Embed(query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	matches, err := r.store.Query(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	facts := make([]types.FactPack, 0, len(matches))
	for _, m := range matches {
		facts = append(facts, types.FactPack{
			Text:    m.Chunk.Text,
			CiteKey: citeKey(m),
			Source: types.FactSource{
				Title: sourceTitle(m),
				URI:   m.Source.URI,
				Page:  m.Chunk.Page,
			},
			Confidence: confidence(m.Similarity),
		})
	}
	return facts, nil
}

// citeKey picks the citation key for a match: the chunk's explicit key,
// then the source ID, then the fixed sentinel.
func citeKey(m index.Match) string {
	if m.Chunk.CiteKey != "" {
		return m.Chunk.CiteKey
	}
	if m.Chunk.SourceID != "" {
		return m.Chunk.SourceID
	}
	return UnknownCiteKey
}

func sourceTitle(m index.Match) string {
	if m.Source.Title != "" {
		return m.Source.Title
	}
	if m.Chunk.SourceID != "" {
		return m.Chunk.SourceID
	}
	return "Unknown Source"
}

// confidence derives the fact confidence from cosine similarity: clamped
// into [0.1, 1] and rounded to two decimals. The transform is monotonic,
// so ranking order within a response is preserved.
func confidence(similarity float64) float64 {
	c := similarity
	if c < 0.1 {
		c = 0.1
	}
	if c > 1 {
		c = 1
	}
	return math.Round(c*100) / 100
}
