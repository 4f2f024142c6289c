// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the book-engine pipeline.
// Implements: prd001-ingestion (Source, Chunk);
//
//	prd003-retrieval (FactPack);
//	prd004-agent (Action, AgentStep, Trace);
//	prd005-quality (QualityReport).
//
// See docs/ARCHITECTURE.md § Pipeline Interface, § Data Structures.
package types

// Source identifies one ingested document. A Source owns zero or more
// Chunks; each Chunk carries a back-reference through SourceID.
type Source struct {
	// ID is a slug derived from the document filename (e.g. "ml-handbook").
	ID string `json:"id" yaml:"id"`

	// Title is the document's display title.
	Title string `json:"title" yaml:"title"`

	// URI is the location the document was ingested from (file path or URL).
	URI string `json:"uri" yaml:"uri"`

	// MediaType classifies the document: text, markdown, or pdf.
	MediaType string `json:"media_type" yaml:"media_type"`
}

// Chunk is a contiguous, possibly overlapping slice of an ingested document.
// It is the unit of embedding and retrieval. Chunks from one source are
// contiguous and ordered by SequenceIndex; consecutive chunks overlap by a
// configured fraction of their length so no semantic unit is silently split
// across a retrieval boundary.
type Chunk struct {
	// ID is a stable identifier, unique across the index
	// (e.g. "ml-handbook:3").
	ID string `json:"id" yaml:"id"`

	// SourceID links back to the owning Source record.
	SourceID string `json:"source_id" yaml:"source_id"`

	// SequenceIndex is the chunk's zero-based position within its source.
	SequenceIndex int `json:"sequence_index" yaml:"sequence_index"`

	// StartOffset and EndOffset are rune offsets into the source text.
	// Citations resolve back to page and location metadata through them.
	StartOffset int `json:"start_offset" yaml:"start_offset"`
	EndOffset   int `json:"end_offset" yaml:"end_offset"`

	// Page is the source page the chunk begins on. Zero when the source
	// has no page structure (plain text, Markdown).
	Page int `json:"page,omitempty" yaml:"page,omitempty"`

	// CiteKey is an explicit citation key attached at ingestion time.
	// May be empty; retrieval falls back to SourceID.
	CiteKey string `json:"cite_key,omitempty" yaml:"cite_key,omitempty"`

	// Text is the chunk content.
	Text string `json:"text" yaml:"text"`

	// Embedding is the chunk's vector representation, computed at
	// ingestion time by the configured Embedder.
	Embedding []float32 `json:"-" yaml:"-"`
}
