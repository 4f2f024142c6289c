// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FactSource describes where a retrieved fact came from.
type FactSource struct {
	// Title is the source document's display title.
	Title string `json:"title" yaml:"title"`

	// URI is the source location (file path or URL). May be empty.
	URI string `json:"uri,omitempty" yaml:"uri,omitempty"`

	// Page is the page the fact was found on. Zero when unknown.
	Page int `json:"page,omitempty" yaml:"page,omitempty"`
}

// FactPack is a retrieved text snippet plus citation metadata and a
// confidence score, handed to a drafting step as grounding evidence.
// Produced transiently by the Retriever for a single query; never persisted.
type FactPack struct {
	// Text is the retrieved chunk content.
	Text string `json:"text" yaml:"text"`

	// CiteKey is the inline citation label for this fact. Falls back, in
	// order, to the chunk's explicit key, the source ID, and the fixed
	// sentinel "source:unknown" — retrieval never fails solely because
	// citation metadata is incomplete.
	CiteKey string `json:"citeKey" yaml:"citeKey"`

	// Source carries display metadata for the citation.
	Source FactSource `json:"source" yaml:"source"`

	// Confidence is a value in [0,1] derived from the similarity score.
	// Within one response it preserves ranking order; ties keep their
	// original index order.
	Confidence float64 `json:"confidence" yaml:"confidence"`
}
