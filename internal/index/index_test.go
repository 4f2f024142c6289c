// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/book-engine/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(types.IndexConfig{IndexDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleSource(id string) types.Source {
	return types.Source{ID: id, Title: "Sample " + id, URI: "sources/" + id + ".md", MediaType: "markdown"}
}

func sampleChunks(sourceID string, embeddings ...[]float32) []types.Chunk {
	chunks := make([]types.Chunk, len(embeddings))
	for i, vec := range embeddings {
		chunks[i] = types.Chunk{
			ID:            sourceID + ":" + string(rune('0'+i)),
			SourceID:      sourceID,
			SequenceIndex: i,
			StartOffset:   i * 100,
			EndOffset:     (i + 1) * 100,
			Page:          1,
			CiteKey:       sourceID + "_p1_" + string(rune('0'+i)),
			Text:          "chunk text " + string(rune('0'+i)),
			Embedding:     vec,
		}
	}
	return chunks
}

func upsert(t *testing.T, store *Store, source types.Source, chunks []types.Chunk) {
	t.Helper()
	if err := store.UpsertSource(context.Background(), source, chunks); err != nil {
		t.Fatal(err)
	}
}

// --- schema tests ---

func TestNewStoreCreatesSchema(t *testing.T) {
	store := testStore(t)

	for _, table := range []string{"sources", "chunks"} {
		var count int
		err := store.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&count)
		if err != nil {
			t.Fatalf("checking table %s: %v", table, err)
		}
		if count == 0 {
			t.Errorf("table %s does not exist", table)
		}
	}
}

func TestNewStoreCreatesDBFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(types.IndexConfig{IndexDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Join(dir, dbFile)); os.IsNotExist(err) {
		t.Errorf("database file not created in %s", dir)
	}
}

// --- upsert tests ---

func TestUpsertSourceReplacesChunks(t *testing.T) {
	store := testStore(t)

	upsert(t, store, sampleSource("doc"), sampleChunks("doc",
		[]float32{1, 0}, []float32{0, 1}, []float32{1, 1}))

	// Re-ingesting the same source replaces its chunk range entirely.
	upsert(t, store, sampleSource("doc"), sampleChunks("doc", []float32{0.5, 0.5}))

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Chunks != 1 {
		t.Errorf("chunks after re-upsert = %d, want 1", stats.Chunks)
	}
	if stats.Sources["doc"] != 1 {
		t.Errorf("source chunk count = %d, want 1", stats.Sources["doc"])
	}
}

func TestUpsertMultipleSources(t *testing.T) {
	store := testStore(t)

	upsert(t, store, sampleSource("one"), sampleChunks("one", []float32{1, 0}))
	upsert(t, store, sampleSource("two"), sampleChunks("two", []float32{0, 1}, []float32{1, 1}))

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Chunks != 3 {
		t.Errorf("total chunks = %d, want 3", stats.Chunks)
	}
	if stats.Sources["one"] != 1 || stats.Sources["two"] != 2 {
		t.Errorf("per-source counts = %v", stats.Sources)
	}
}

// --- query tests ---

func TestQueryOrdering(t *testing.T) {
	store := testStore(t)

	// Three chunks at decreasing similarity to the query vector {1, 0}.
	upsert(t, store, sampleSource("doc"), sampleChunks("doc",
		[]float32{0, 1},      // orthogonal
		[]float32{1, 0},      // identical
		[]float32{0.7, 0.7})) // diagonal

	matches, err := store.Query(context.Background(), []float32{1, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3", len(matches))
	}

	wantOrder := []string{"doc:1", "doc:2", "doc:0"}
	for i, want := range wantOrder {
		if matches[i].Chunk.ID != want {
			t.Errorf("match %d = %s, want %s", i, matches[i].Chunk.ID, want)
		}
	}
	if math.Abs(matches[0].Similarity-1.0) > 1e-6 {
		t.Errorf("top similarity = %g, want 1.0", matches[0].Similarity)
	}
}

func TestQueryTieBreakByInsertionOrder(t *testing.T) {
	store := testStore(t)

	// All chunks identical to the query: similarity ties across the board.
	upsert(t, store, sampleSource("doc"), sampleChunks("doc",
		[]float32{1, 1}, []float32{1, 1}, []float32{1, 1}))

	for run := 0; run < 3; run++ {
		matches, err := store.Query(context.Background(), []float32{1, 1}, 3)
		if err != nil {
			t.Fatal(err)
		}
		for i, want := range []string{"doc:0", "doc:1", "doc:2"} {
			if matches[i].Chunk.ID != want {
				t.Fatalf("run %d: match %d = %s, want %s (insertion order)", run, i, matches[i].Chunk.ID, want)
			}
		}
	}
}

func TestQueryTruncatesToK(t *testing.T) {
	store := testStore(t)

	upsert(t, store, sampleSource("doc"), sampleChunks("doc",
		[]float32{1, 0}, []float32{0.9, 0.1}, []float32{0.8, 0.2}, []float32{0.7, 0.3}))

	matches, err := store.Query(context.Background(), []float32{1, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Errorf("got %d matches, want 2", len(matches))
	}
}

func TestQueryEmptyIndex(t *testing.T) {
	store := testStore(t)

	matches, err := store.Query(context.Background(), []float32{1, 0}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("got %d matches from empty index, want 0", len(matches))
	}
}

func TestQueryCappedAtMaxResults(t *testing.T) {
	store, err := NewStore(types.IndexConfig{IndexDir: t.TempDir(), MaxResults: 2})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	upsert(t, store, sampleSource("doc"), sampleChunks("doc",
		[]float32{1, 0}, []float32{0.9, 0.1}, []float32{0.8, 0.2}))

	matches, err := store.Query(context.Background(), []float32{1, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Errorf("got %d matches, want MaxResults cap of 2", len(matches))
	}
}

func TestQueryInvalidK(t *testing.T) {
	store := testStore(t)

	for _, k := range []int{0, -1} {
		if _, err := store.Query(context.Background(), []float32{1, 0}, k); err == nil {
			t.Errorf("Query with k=%d should fail", k)
		}
	}
}

func TestQueryCarriesSourceMetadata(t *testing.T) {
	store := testStore(t)

	upsert(t, store, sampleSource("doc"), sampleChunks("doc", []float32{1, 0}))

	matches, err := store.Query(context.Background(), []float32{1, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	got := matches[0].Source
	if got.ID != "doc" || got.Title != "Sample doc" || got.MediaType != "markdown" {
		t.Errorf("source metadata = %+v", got)
	}
}

// --- clear tests ---

func TestSourceURI(t *testing.T) {
	store := testStore(t)

	upsert(t, store, sampleSource("doc"), sampleChunks("doc", []float32{1, 0}))

	uri, err := store.SourceURI(context.Background(), "doc")
	if err != nil {
		t.Fatal(err)
	}
	if uri != "sources/doc.md" {
		t.Errorf("uri = %q, want %q", uri, "sources/doc.md")
	}

	uri, err = store.SourceURI(context.Background(), "absent")
	if err != nil {
		t.Fatal(err)
	}
	if uri != "" {
		t.Errorf("uri for unindexed source = %q, want empty", uri)
	}
}

func TestClear(t *testing.T) {
	store := testStore(t)

	upsert(t, store, sampleSource("doc"), sampleChunks("doc", []float32{1, 0}))
	if err := store.Clear(context.Background()); err != nil {
		t.Fatal(err)
	}

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Chunks != 0 || len(stats.Sources) != 0 {
		t.Errorf("stats after clear = %+v, want empty", stats)
	}
}

// --- embedding codec tests ---

func TestEmbeddingRoundTrip(t *testing.T) {
	vec := []float32{0.25, -1.5, 0, 3.14159, math.MaxFloat32}
	got := decodeEmbedding(encodeEmbedding(vec))
	if len(got) != len(vec) {
		t.Fatalf("decoded length %d, want %d", len(got), len(vec))
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Errorf("index %d: got %v, want %v", i, got[i], vec[i])
		}
	}
}

// --- cosine tests ---

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"mismatched lengths use shorter prefix", []float32{1, 0, 5}, []float32{1, 0}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("cosine(%v, %v) = %g, want %g", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

// --- export tests ---

func TestExportYAML(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(types.IndexConfig{IndexDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	upsert(t, store, sampleSource("doc"), sampleChunks("doc", []float32{1, 0}, []float32{0, 1}))

	if err := store.ExportYAML(context.Background()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "export.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	var entries []ExportEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("exported %d entries, want 2", len(entries))
	}
}
