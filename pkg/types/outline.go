// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// OutlineImage describes a planned figure inside a chapter.
type OutlineImage struct {
	// Slug is the figure identifier, unique within the outline.
	Slug string `json:"slug" yaml:"slug"`

	// Prompt describes the image to be produced.
	Prompt string `json:"prompt" yaml:"prompt"`

	// Caption is the figure caption.
	Caption string `json:"caption" yaml:"caption"`
}

// OutlineSection describes one section within a chapter.
type OutlineSection struct {
	// Slug is the section identifier, unique within the outline.
	Slug string `json:"slug" yaml:"slug"`

	// Title is the section heading.
	Title string `json:"title" yaml:"title"`

	// TargetWords is the drafting length target for the section.
	TargetWords int `json:"target_words" yaml:"target_words"`
}

// OutlineChapter describes one chapter in the book outline.
type OutlineChapter struct {
	// Slug is the chapter identifier, unique within the outline. Chapters
	// persist under chapters/{slug}.md by convention.
	Slug string `json:"slug" yaml:"slug"`

	// Title is the chapter heading.
	Title string `json:"title" yaml:"title"`

	// TargetWords is the drafting length target for the chapter.
	TargetWords int `json:"target_words" yaml:"target_words"`

	// Sections lists the chapter's sections in order.
	Sections []OutlineSection `json:"sections,omitempty" yaml:"sections,omitempty"`

	// Images lists the chapter's planned figures.
	Images []OutlineImage `json:"images,omitempty" yaml:"images,omitempty"`
}

// Outline holds the book structure from toc.yaml. Consumed by the planning
// oracle when deciding what to draft next.
type Outline struct {
	// Title is the book title.
	Title string `json:"title" yaml:"title"`

	// Chapters lists the book's chapters in order.
	Chapters []OutlineChapter `json:"chapters" yaml:"chapters"`
}

// Validate checks the outline's structural invariant: every slug (chapter,
// section, or image) is unique within the document.
func (o *Outline) Validate() error {
	seen := make(map[string]string)

	record := func(slug, kind string) error {
		if slug == "" {
			return fmt.Errorf("%s has an empty slug", kind)
		}
		if prev, ok := seen[slug]; ok {
			return fmt.Errorf("duplicate slug %q (%s and %s)", slug, prev, kind)
		}
		seen[slug] = kind
		return nil
	}

	for i, ch := range o.Chapters {
		if err := record(ch.Slug, fmt.Sprintf("chapter %d", i+1)); err != nil {
			return err
		}
		for j, sec := range ch.Sections {
			if err := record(sec.Slug, fmt.Sprintf("chapter %q section %d", ch.Slug, j+1)); err != nil {
				return err
			}
		}
		for j, img := range ch.Images {
			if err := record(img.Slug, fmt.Sprintf("chapter %q image %d", ch.Slug, j+1)); err != nil {
				return err
			}
		}
	}

	return nil
}

// ReferenceEntry records a cited source in references.yaml.
type ReferenceEntry struct {
	// CitationKey is the inline citation label (e.g. "ml-handbook_p12_3").
	CitationKey string `json:"citation_key" yaml:"citation_key"`

	// SourceID is the ingestion slug linking back to the indexed source.
	SourceID string `json:"source_id,omitempty" yaml:"source_id,omitempty"`

	// Title is the cited source's title.
	Title string `json:"title" yaml:"title"`

	// URI is the source location (optional).
	URI string `json:"uri,omitempty" yaml:"uri,omitempty"`

	// Page is the cited page (optional).
	Page int `json:"page,omitempty" yaml:"page,omitempty"`
}

// ReferencesFile holds the book's bibliography from references.yaml.
type ReferencesFile struct {
	// Sources lists every citable entry.
	Sources []ReferenceEntry `json:"sources" yaml:"sources"`
}
