// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/pdiddy/book-engine/pkg/types"
)

// Match is one query result: a chunk plus its source metadata and the
// cosine similarity to the query embedding.
type Match struct {
	Chunk      types.Chunk
	Source     types.Source
	Similarity float64
}

// Query returns up to k chunks ordered by descending cosine similarity to
// the query embedding, capped at the store's configured maximum. Ties
// break by insertion order (earliest first) so identical index state
// always yields identical results. Query never mutates state and is safe
// to run concurrently with other queries and with upserts. An empty index
// yields an empty slice, not an error.
func (s *Store) Query(ctx context.Context, embedding []float32, k int) ([]Match, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if k > s.maxResults {
		k = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.source_id, c.seq, c.start_off, c.end_off, c.page,
			c.cite_key, c.text, c.embedding,
			s.title, s.uri, s.media_type
		FROM chunks c
		JOIN sources s ON s.id = c.source_id
		ORDER BY c.rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var (
			m    Match
			blob []byte
		)
		if err := rows.Scan(
			&m.Chunk.ID, &m.Chunk.SourceID, &m.Chunk.SequenceIndex,
			&m.Chunk.StartOffset, &m.Chunk.EndOffset, &m.Chunk.Page,
			&m.Chunk.CiteKey, &m.Chunk.Text, &blob,
			&m.Source.Title, &m.Source.URI, &m.Source.MediaType,
		); err != nil {
			return nil, fmt.Errorf("scanning chunk row: %w", err)
		}
		m.Source.ID = m.Chunk.SourceID
		m.Chunk.Embedding = decodeEmbedding(blob)
		m.Similarity = cosine(embedding, m.Chunk.Embedding)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Rows arrive in rowid order; a stable sort preserves that order for
	// equal similarities.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// cosine computes cosine similarity between two vectors. Mismatched
// lengths compare over the shorter prefix; zero vectors score zero.
func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
