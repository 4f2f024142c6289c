// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embed converts free text into vector representations for the
// retrieval index. The Embedder interface is the pluggable boundary; the
// default implementation is a deterministic feature-hashing vectorizer
// that needs no external model.
package embed

import (
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// Embedder converts free text into a fixed-dimension vector. The same
// implementation must be used for ingestion and querying so that index and
// query embeddings live in one space.
type Embedder interface {
	// Name returns the identifier of this embedder implementation.
	Name() string

	// Dimension returns the length of produced vectors.
	Dimension() int

	// Embed computes the vector for the given text. The result is
	// L2-normalized unless the text has no usable tokens.
	Embed(text string) ([]float32, error)
}

const defaultDimension = 256

// tokenPattern matches unicode word tokens, keeping inner apostrophes.
var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// HashingEmbedder maps token counts into a fixed-dimension vector via
// feature hashing. It is corpus-independent: no prepare phase, identical
// output for identical input across processes.
type HashingEmbedder struct {
	dimension int
	stopwords map[string]struct{}
}

// NewHashingEmbedder creates an embedder with the given dimension.
// A dimension <= 0 selects the default (256).
func NewHashingEmbedder(dimension int) *HashingEmbedder {
	if dimension <= 0 {
		dimension = defaultDimension
	}
	return &HashingEmbedder{
		dimension: dimension,
		stopwords: defaultStopwords(),
	}
}

// Name returns the identifier of this embedder implementation.
func (e *HashingEmbedder) Name() string { return "hashing" }

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *HashingEmbedder) Dimension() int { return e.dimension }

// Embed computes the L2-normalized hashed bag-of-words vector for text.
func (e *HashingEmbedder) Embed(text string) ([]float32, error) {
	if e.dimension <= 0 {
		return nil, fmt.Errorf("hashing embedder has invalid dimension %d", e.dimension)
	}

	vec := make([]float32, e.dimension)
	for _, tok := range e.tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[int(h.Sum32())%e.dimension]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := 1.0 / math.Sqrt(norm)
		for i := range vec {
			vec[i] = float32(float64(vec[i]) * inv)
		}
	}

	return vec, nil
}

func (e *HashingEmbedder) tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are",
		"was", "were", "be", "been", "being", "it", "this", "that",
		"these", "those", "from", "up", "down", "over", "under", "than",
		"so", "such", "into", "about", "between", "through", "during",
		"before", "after", "above", "below", "out", "off", "own", "same",
		"too", "very", "can", "will", "just", "not", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
