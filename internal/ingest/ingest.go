// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest loads source documents, splits them into overlapping
// chunks with provenance metadata, and writes them to the vector index.
// Implements: prd001-ingestion (R1-R4);
//
//	docs/ARCHITECTURE § Ingestion.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/book-engine/internal/embed"
	"github.com/pdiddy/book-engine/pkg/types"
)

// supportedExts maps file extensions to media types.
var supportedExts = map[string]string{
	".txt":      "text",
	".md":       "markdown",
	".markdown": "markdown",
	".pdf":      "pdf",
}

// Page is one unit of source text with an optional page number.
// Unpaged formats (text, Markdown) load as a single Page with Number 0.
type Page struct {
	Number int
	Text   string
}

// Document is a loaded source ready for chunking.
type Document struct {
	Source types.Source
	Pages  []Page
}

// LoadFile reads the file at path into a Document, dispatching on the
// file extension. Unsupported extensions are an error.
func LoadFile(path string) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	mediaType, ok := supportedExts[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}

	var pages []Page
	switch mediaType {
	case "pdf":
		var err error
		pages, err = readPDF(path)
		if err != nil {
			return nil, err
		}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		pages = []Page{{Number: 0, Text: string(data)}}
	}

	name := strings.TrimSuffix(filepath.Base(path), ext)
	return &Document{
		Source: types.Source{
			ID:        slugify(name),
			Title:     name,
			URI:       path,
			MediaType: mediaType,
		},
		Pages: pages,
	}, nil
}

// ChunkDocument splits a document into chunks per the configured size and
// overlap. Chunk IDs are "<sourceID>:<seq>"; cite keys follow the
// "<sourceID>_p<page>_<seq>" convention so drafts can cite page-level
// provenance. Chunking always restarts from offset 0.
func ChunkDocument(doc *Document, cfg types.IngestConfig) ([]types.Chunk, error) {
	var chunks []types.Chunk
	seq := 0

	for _, page := range doc.Pages {
		spans, err := chunkText(page.Text, cfg.ChunkSize, cfg.OverlapFraction)
		if err != nil {
			return nil, err
		}
		for _, span := range spans {
			chunks = append(chunks, types.Chunk{
				ID:            fmt.Sprintf("%s:%d", doc.Source.ID, seq),
				SourceID:      doc.Source.ID,
				SequenceIndex: seq,
				StartOffset:   span.StartOffset,
				EndOffset:     span.EndOffset,
				Page:          page.Number,
				CiteKey:       fmt.Sprintf("%s_p%d_%d", doc.Source.ID, page.Number, seq),
				Text:          span.Text,
			})
			seq++
		}
	}

	return chunks, nil
}

// Upserter is the index surface ingestion writes to. SourceURI reports
// the URI already stored for a source ID, or "" when the ID is free.
type Upserter interface {
	UpsertSource(ctx context.Context, source types.Source, chunks []types.Chunk) error
	SourceURI(ctx context.Context, sourceID string) (string, error)
}

// Summary holds counts from an ingestion run.
type Summary struct {
	Ingested int
	Failed   int
	Chunks   int
}

// Pipeline wires document loading, chunking, embedding, and index writes.
type Pipeline struct {
	store    Upserter
	embedder embed.Embedder
	cfg      types.IngestConfig
}

// NewPipeline creates an ingestion pipeline. A zero chunk size takes the
// default 1000. OverlapFraction is honored as given: zero means adjacent
// chunks share no text, so callers wanting the conventional 0.15 must say
// so.
func NewPipeline(store Upserter, embedder embed.Embedder, cfg types.IngestConfig) *Pipeline {
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = 1000
	}
	return &Pipeline{store: store, embedder: embedder, cfg: cfg}
}

// IngestPath ingests a file, or every supported file under a directory.
// Per-file failures are reported to w and counted; they do not abort the
// run. Invalid chunking configuration is fatal.
func (p *Pipeline) IngestPath(ctx context.Context, path string, w io.Writer) (Summary, error) {
	files, err := collectFiles(path)
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	for _, file := range files {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		n, err := p.ingestFile(ctx, file)
		if err != nil {
			if errors.Is(err, ErrInvalidConfig) {
				return summary, err
			}
			fmt.Fprintf(w, "failed  %s: %v\n", filepath.Base(file), err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "ingested %s (%d chunks)\n", filepath.Base(file), n)
		summary.Ingested++
		summary.Chunks += n
	}

	fmt.Fprintf(w, "\ningested: %d, failed: %d, chunks: %d\n",
		summary.Ingested, summary.Failed, summary.Chunks)
	return summary, nil
}

func (p *Pipeline) ingestFile(ctx context.Context, path string) (int, error) {
	doc, err := LoadFile(path)
	if err != nil {
		return 0, err
	}

	// Distinct documents can slugify to the same ID (notes.txt in two
	// directories); without disambiguation the upsert would replace the
	// first document's chunks. Re-ingesting the same URI keeps its ID.
	existing, err := p.store.SourceURI(ctx, doc.Source.ID)
	if err != nil {
		return 0, fmt.Errorf("checking source %s: %w", doc.Source.ID, err)
	}
	if existing != "" && existing != doc.Source.URI {
		doc.Source.ID = fmt.Sprintf("%s-%s", doc.Source.ID, uuid.NewString()[:8])
	}

	chunks, err := ChunkDocument(doc, p.cfg)
	if err != nil {
		return 0, err
	}

	for i := range chunks {
		vec, err := p.embedder.Embed(chunks[i].Text)
		if err != nil {
			return 0, fmt.Errorf("embedding chunk %s: %w", chunks[i].ID, err)
		}
		chunks[i].Embedding = vec
	}

	if err := p.store.UpsertSource(ctx, doc.Source, chunks); err != nil {
		return 0, fmt.Errorf("indexing %s: %w", doc.Source.ID, err)
	}
	return len(chunks), nil
}

// collectFiles resolves path to the list of supported files it names:
// the file itself, or a recursive walk when path is a directory.
func collectFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := supportedExts[strings.ToLower(filepath.Ext(p))]; ok {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", path, err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no supported documents under %s", path)
	}
	return files, nil
}

// slugify lowercases name and collapses runs of non-alphanumerics to
// single hyphens.
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := false
	for _, c := range strings.ToLower(name) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteRune(c)
			lastHyphen = false
		default:
			if !lastHyphen && b.Len() > 0 {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
