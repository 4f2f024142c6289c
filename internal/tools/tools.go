// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pdiddy/book-engine/internal/build"
	"github.com/pdiddy/book-engine/internal/draft"
	"github.com/pdiddy/book-engine/pkg/types"
)

// Fact retrieval defaults to six facts per query, matching the drafting
// prompt's grounding budget.
const defaultFactCount = 6

// Retriever is the retrieval surface the retrieve_facts tool calls.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]types.FactPack, error)
}

// RetrieveFacts is the read-only retrieval tool.
type RetrieveFacts struct {
	Source Retriever
}

func (t *RetrieveFacts) Name() string { return "retrieve_facts" }

// Run retrieves up to k facts for the query argument.
func (t *RetrieveFacts) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	query := stringArg(args, "query", "")
	if query == "" {
		return nil, fmt.Errorf("retrieve_facts requires a query argument")
	}
	k := intArg(args, "k", defaultFactCount)

	facts, err := t.Source.Retrieve(ctx, query, k)
	if err != nil {
		return nil, err
	}
	return map[string]any{"facts": facts, "count": len(facts)}, nil
}

// Drafter is the external drafting oracle behind write_section. It is a
// pure transform: facts in, Markdown out, no side effects.
type Drafter interface {
	WriteSection(ctx context.Context, brief map[string]any, facts []types.FactPack) (string, error)
}

// WriteSection drafts one section from a brief and grounding facts.
type WriteSection struct {
	Oracle Drafter
}

func (t *WriteSection) Name() string { return "write_section" }

// Run calls the drafting oracle with the brief and facts arguments.
func (t *WriteSection) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	brief, _ := args["brief"].(map[string]any)
	if brief == nil {
		brief = map[string]any{}
	}

	facts, err := coerceFacts(args["facts"])
	if err != nil {
		return nil, err
	}

	markdown, err := t.Oracle.WriteSection(ctx, brief, facts)
	if err != nil {
		return nil, err
	}
	return map[string]any{"markdown": markdown}, nil
}

// coerceFacts converts the planner's facts argument (JSON-shaped) back
// into typed fact packs via a marshal round trip.
func coerceFacts(v any) ([]types.FactPack, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("invalid facts argument: %w", err)
	}
	var facts []types.FactPack
	if err := json.Unmarshal(data, &facts); err != nil {
		return nil, fmt.Errorf("invalid facts argument: %w", err)
	}
	return facts, nil
}

// SaveChapter persists a chapter draft under the book project.
type SaveChapter struct {
	Project *draft.Project
}

func (t *SaveChapter) Name() string { return "save_chapter" }

// Run writes the markdown argument to the path argument, idempotently.
func (t *SaveChapter) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	path := stringArg(args, "path", "chapters/auto.md")
	markdown := stringArg(args, "markdown", "")
	if markdown == "" {
		return nil, fmt.Errorf("save_chapter requires a markdown argument")
	}

	result, err := t.Project.SaveChapter(path, markdown)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"path":    result.Path,
		"bytes":   result.Bytes,
		"updated": result.Updated,
	}, nil
}

// BuildBook invokes the external compiler over all persisted chapters.
// The quality gate runs inside the builder; a blocked build surfaces here
// as a tool error, which dispatch absorbs into the observation.
type BuildBook struct {
	Builder *build.Builder
}

func (t *BuildBook) Name() string { return "build_book" }

// Run compiles the book in the format argument (default pdf).
func (t *BuildBook) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	format := types.OutputFormat(stringArg(args, "format", string(types.OutputPDF)))

	result, err := t.Builder.Build(ctx, format)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"export":   result.Export,
		"chapters": result.Chapters,
		"format":   string(result.Format),
	}, nil
}

// GetStatus reports the book project's current shape.
type GetStatus struct {
	Project *draft.Project
}

func (t *GetStatus) Name() string { return "get_status" }

func (t *GetStatus) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	st, err := t.Project.Status()
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"chapters":      st.Chapters,
		"chapter_count": len(st.Chapters),
		"has_outline":   st.HasOutline,
		"has_config":    st.HasConfig,
		"exports":       st.Exports,
	}, nil
}

// Finish terminates the loop. The loop itself watches for this name; the
// tool only echoes the summary into the observation.
type Finish struct{}

func (Finish) Name() string { return "finish" }

func (Finish) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	return map[string]any{
		"done":    true,
		"summary": stringArg(args, "summary", "Task completed"),
	}, nil
}
