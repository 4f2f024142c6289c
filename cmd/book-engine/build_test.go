package main

import (
	"testing"

	"github.com/pdiddy/book-engine/internal/build"
	"github.com/pdiddy/book-engine/pkg/types"
)

func TestBuildSummary(t *testing.T) {
	result := build.Result{
		Export:   "book/exports/book.pdf",
		Chapters: []string{"chapters/01-intro.md", "chapters/02-body.md"},
		Format:   types.OutputPDF,
	}

	got := buildSummary(result)
	want := "Built book/exports/book.pdf from 2 chapters"
	if got != want {
		t.Errorf("buildSummary = %q, want %q", got, want)
	}
}
