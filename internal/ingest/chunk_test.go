// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"errors"
	"strings"
	"testing"
)

func TestChunkTextInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap float64
	}{
		{"zero chunk size", 0, 0.15},
		{"negative chunk size", -5, 0.15},
		{"negative overlap", 100, -0.1},
		{"overlap of one", 100, 1.0},
		{"overlap above one", 100, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := chunkText("some text", tt.size, tt.overlap)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("chunkText(%d, %g) error = %v, want ErrInvalidConfig", tt.size, tt.overlap, err)
			}
		})
	}
}

func TestChunkTextEmptyInput(t *testing.T) {
	spans, err := chunkText("", 100, 0.15)
	if err != nil {
		t.Fatal(err)
	}
	if len(spans) != 0 {
		t.Errorf("got %d spans for empty input, want 0", len(spans))
	}
}

func TestChunkTextSpans(t *testing.T) {
	tests := []struct {
		name      string
		textLen   int
		size      int
		overlap   float64
		wantCount int
	}{
		{"fits in one chunk", 500, 1000, 0.15, 1},
		{"exactly one chunk", 1000, 1000, 0.15, 1},
		{"standard config over 3000 chars", 3000, 1000, 0.15, 4},
		{"no overlap", 2000, 1000, 0, 2},
		{"single rune", 1, 1000, 0.15, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.Repeat("a", tt.textLen)
			spans, err := chunkText(text, tt.size, tt.overlap)
			if err != nil {
				t.Fatal(err)
			}
			if len(spans) != tt.wantCount {
				t.Fatalf("got %d spans, want %d", len(spans), tt.wantCount)
			}

			// First span starts at 0; last span ends at the text length.
			if spans[0].StartOffset != 0 {
				t.Errorf("first span starts at %d, want 0", spans[0].StartOffset)
			}
			last := spans[len(spans)-1]
			if last.EndOffset != tt.textLen {
				t.Errorf("last span ends at %d, want %d", last.EndOffset, tt.textLen)
			}

			for i, span := range spans {
				if got := len([]rune(span.Text)); got != span.EndOffset-span.StartOffset {
					t.Errorf("span %d text length %d does not match offsets [%d,%d)",
						i, got, span.StartOffset, span.EndOffset)
				}
				if got := len([]rune(span.Text)); got > tt.size {
					t.Errorf("span %d length %d exceeds chunk size %d", i, got, tt.size)
				}
			}
		})
	}
}

func TestChunkTextOverlap(t *testing.T) {
	text := strings.Repeat("x", 300)
	spans, err := chunkText(text, 100, 0.2)
	if err != nil {
		t.Fatal(err)
	}

	// Step is 80 runes, so consecutive spans share 20 runes.
	for i := 1; i < len(spans); i++ {
		gotStep := spans[i].StartOffset - spans[i-1].StartOffset
		if gotStep != 80 {
			t.Errorf("step between spans %d and %d = %d, want 80", i-1, i, gotStep)
		}
	}
}

func TestChunkTextNoTrailingLoss(t *testing.T) {
	// Reconstructing the text from non-overlapping portions of each span
	// must reproduce the original exactly.
	text := "The quick brown fox jumps over the lazy dog. " + strings.Repeat("more words here ", 40)
	spans, err := chunkText(text, 120, 0.25)
	if err != nil {
		t.Fatal(err)
	}

	runes := []rune(text)
	var rebuilt []rune
	for _, span := range spans {
		start := span.StartOffset
		if len(rebuilt) > start {
			start = len(rebuilt)
		}
		rebuilt = append(rebuilt, runes[start:span.EndOffset]...)
	}
	if string(rebuilt) != text {
		t.Error("reconstructed text does not match original; trailing content was dropped or duplicated")
	}
}

func TestChunkTextUnicode(t *testing.T) {
	// Offsets are rune-based, so multibyte characters never split.
	text := strings.Repeat("héllo wörld ", 30)
	spans, err := chunkText(text, 50, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	runes := []rune(text)
	for i, span := range spans {
		if span.Text != string(runes[span.StartOffset:span.EndOffset]) {
			t.Errorf("span %d text does not match rune slice at [%d,%d)", i, span.StartOffset, span.EndOffset)
		}
	}
}
