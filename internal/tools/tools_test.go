// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pdiddy/book-engine/internal/draft"
	"github.com/pdiddy/book-engine/pkg/types"
)

// --- test helpers ---

// stubTool is a minimal tool with canned behavior.
type stubTool struct {
	name  string
	obs   map[string]any
	err   error
	panic bool
}

func (s *stubTool) Name() string { return s.name }

func (s *stubTool) Run(_ context.Context, _ map[string]any) (map[string]any, error) {
	if s.panic {
		panic("stub exploded")
	}
	return s.obs, s.err
}

// stubRetriever returns canned fact packs.
type stubRetriever struct {
	facts []types.FactPack
	gotK  int
	gotQ  string
}

func (s *stubRetriever) Retrieve(_ context.Context, query string, k int) ([]types.FactPack, error) {
	s.gotQ = query
	s.gotK = k
	return s.facts, nil
}

// stubDrafter echoes the facts it received.
type stubDrafter struct {
	gotFacts []types.FactPack
	gotBrief map[string]any
}

func (s *stubDrafter) WriteSection(_ context.Context, brief map[string]any, facts []types.FactPack) (string, error) {
	s.gotBrief = brief
	s.gotFacts = facts
	return "# Drafted\n\nSection text.", nil
}

// --- registry tests ---

func TestRegistryNames(t *testing.T) {
	r := NewRegistry(
		&stubTool{name: "alpha"},
		&stubTool{name: "beta"},
		Finish{},
	)

	got := r.Names()
	want := []string{"alpha", "beta", "finish"}
	if len(got) != len(want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q (registration order)", i, got[i], want[i])
		}
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	r := NewRegistry(Finish{})

	obs := r.Dispatch(context.Background(), "does_not_exist", nil)
	errMsg, ok := obs["error"].(string)
	if !ok {
		t.Fatalf("observation = %v, want error entry", obs)
	}
	if !strings.Contains(errMsg, "unknown tool 'does_not_exist'") {
		t.Errorf("error = %q", errMsg)
	}
}

func TestDispatchToolError(t *testing.T) {
	r := NewRegistry(&stubTool{name: "failing", err: fmt.Errorf("disk full")})

	obs := r.Dispatch(context.Background(), "failing", map[string]any{})
	if obs["error"] != "disk full" {
		t.Errorf("observation = %v", obs)
	}
}

func TestDispatchAbsorbsPanic(t *testing.T) {
	r := NewRegistry(&stubTool{name: "bomb", panic: true})

	obs := r.Dispatch(context.Background(), "bomb", nil)
	errMsg, _ := obs["error"].(string)
	if !strings.Contains(errMsg, "panicked") {
		t.Errorf("panic not absorbed into observation: %v", obs)
	}
}

func TestDispatchNilArgs(t *testing.T) {
	r := NewRegistry(Finish{})

	obs := r.Dispatch(context.Background(), "finish", nil)
	if obs["done"] != true {
		t.Errorf("observation = %v", obs)
	}
}

// --- retrieve_facts tests ---

func TestRetrieveFactsTool(t *testing.T) {
	store := &stubRetriever{facts: []types.FactPack{
		{Text: "fact one", CiteKey: "a_p1_0", Confidence: 0.9},
	}}
	tool := &RetrieveFacts{Source: store}

	obs, err := tool.Run(context.Background(), map[string]any{"query": "topic", "k": float64(3)})
	if err != nil {
		t.Fatal(err)
	}
	if store.gotQ != "topic" || store.gotK != 3 {
		t.Errorf("retriever called with query=%q k=%d", store.gotQ, store.gotK)
	}
	if obs["count"] != 1 {
		t.Errorf("count = %v", obs["count"])
	}
}

func TestRetrieveFactsRequiresQuery(t *testing.T) {
	tool := &RetrieveFacts{Source: &stubRetriever{}}
	if _, err := tool.Run(context.Background(), map[string]any{}); err == nil {
		t.Error("missing query should be an error")
	}
}

func TestRetrieveFactsDefaultK(t *testing.T) {
	store := &stubRetriever{}
	tool := &RetrieveFacts{Source: store}
	if _, err := tool.Run(context.Background(), map[string]any{"query": "q"}); err != nil {
		t.Fatal(err)
	}
	if store.gotK != defaultFactCount {
		t.Errorf("default k = %d, want %d", store.gotK, defaultFactCount)
	}
}

// --- write_section tests ---

func TestWriteSectionCoercesFacts(t *testing.T) {
	drafter := &stubDrafter{}
	tool := &WriteSection{Oracle: drafter}

	// Facts arrive JSON-shaped from the planner: maps, not structs.
	args := map[string]any{
		"brief": map[string]any{"section": "Intro"},
		"facts": []any{
			map[string]any{"text": "fact", "citeKey": "doc_p1_0", "confidence": 0.8},
		},
	}
	obs, err := tool.Run(context.Background(), args)
	if err != nil {
		t.Fatal(err)
	}

	if len(drafter.gotFacts) != 1 {
		t.Fatalf("drafter received %d facts, want 1", len(drafter.gotFacts))
	}
	if drafter.gotFacts[0].CiteKey != "doc_p1_0" {
		t.Errorf("fact cite key = %q", drafter.gotFacts[0].CiteKey)
	}
	if drafter.gotBrief["section"] != "Intro" {
		t.Errorf("brief = %v", drafter.gotBrief)
	}
	if _, ok := obs["markdown"].(string); !ok {
		t.Errorf("observation missing markdown: %v", obs)
	}
}

func TestWriteSectionNoFacts(t *testing.T) {
	tool := &WriteSection{Oracle: &stubDrafter{}}
	if _, err := tool.Run(context.Background(), map[string]any{}); err != nil {
		t.Errorf("write_section without facts should still draft: %v", err)
	}
}

// --- save_chapter tests ---

func TestSaveChapterTool(t *testing.T) {
	project := draft.NewProject(t.TempDir())
	tool := &SaveChapter{Project: project}

	obs, err := tool.Run(context.Background(), map[string]any{
		"path":     "chapters/01-intro.md",
		"markdown": "# Intro\n",
	})
	if err != nil {
		t.Fatal(err)
	}
	if obs["updated"] != true {
		t.Errorf("first save observation = %v", obs)
	}

	// Identical content again: same observation shape, updated false.
	obs, err = tool.Run(context.Background(), map[string]any{
		"path":     "chapters/01-intro.md",
		"markdown": "# Intro\n",
	})
	if err != nil {
		t.Fatal(err)
	}
	if obs["updated"] != false {
		t.Errorf("idempotent save observation = %v", obs)
	}
}

func TestSaveChapterRequiresMarkdown(t *testing.T) {
	tool := &SaveChapter{Project: draft.NewProject(t.TempDir())}
	if _, err := tool.Run(context.Background(), map[string]any{"path": "chapters/x.md"}); err == nil {
		t.Error("missing markdown should be an error")
	}
}

// --- get_status tests ---

func TestGetStatusTool(t *testing.T) {
	project := draft.NewProject(t.TempDir())
	if err := project.Scaffold("Book"); err != nil {
		t.Fatal(err)
	}
	if _, err := project.SaveChapter("chapters/01-intro.md", "text"); err != nil {
		t.Fatal(err)
	}

	tool := &GetStatus{Project: project}
	obs, err := tool.Run(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if obs["chapter_count"] != 1 {
		t.Errorf("chapter_count = %v", obs["chapter_count"])
	}
	if obs["has_outline"] != true {
		t.Errorf("has_outline = %v", obs["has_outline"])
	}
}

// --- finish tests ---

func TestFinishTool(t *testing.T) {
	obs, err := Finish{}.Run(context.Background(), map[string]any{"summary": "all done"})
	if err != nil {
		t.Fatal(err)
	}
	if obs["done"] != true || obs["summary"] != "all done" {
		t.Errorf("observation = %v", obs)
	}

	obs, err = Finish{}.Run(context.Background(), map[string]any{})
	if err != nil {
		t.Fatal(err)
	}
	if obs["summary"] != "Task completed" {
		t.Errorf("default summary = %v", obs["summary"])
	}
}

// --- argument helper tests ---

func TestIntArg(t *testing.T) {
	args := map[string]any{"float": float64(7), "int": 3, "text": "nope"}
	if got := intArg(args, "float", 0); got != 7 {
		t.Errorf("float64 arg = %d", got)
	}
	if got := intArg(args, "int", 0); got != 3 {
		t.Errorf("int arg = %d", got)
	}
	if got := intArg(args, "text", 9); got != 9 {
		t.Errorf("non-number arg = %d, want fallback", got)
	}
	if got := intArg(args, "missing", 5); got != 5 {
		t.Errorf("missing arg = %d, want fallback", got)
	}
}
