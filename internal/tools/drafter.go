// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/pdiddy/book-engine/internal/oracle"
	"github.com/pdiddy/book-engine/pkg/types"
)

// draftPromptTmpl is the prompt sent to the drafting oracle for one
// section. Every claim must cite one of the supplied facts by key; claims
// no fact covers get an explicit placeholder the quality gate will catch.
var draftPromptTmpl = template.Must(template.New("draft").Parse(`Write one book section in Markdown.

SECTION BRIEF:
{{.Brief}}

GROUNDING FACTS (cite by key, e.g. [{{.ExampleKey}}]):
{{.Facts}}

Rules:
- Ground every non-trivial claim in one of the facts above, citing its key inline in square brackets.
- If no fact covers a claim you need, write [TODO: source] after it instead of inventing a citation.
- Respect the target_words hint in the brief when present.
- Return only the section Markdown, no preamble.`))

// ClaudeDrafter implements Drafter against the Claude API.
type ClaudeDrafter struct {
	Client *oracle.Client
}

// WriteSection renders the drafting prompt and returns the oracle's
// Markdown response verbatim.
func (d *ClaudeDrafter) WriteSection(ctx context.Context, brief map[string]any, facts []types.FactPack) (string, error) {
	briefJSON, err := json.MarshalIndent(brief, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling brief: %w", err)
	}
	factsJSON, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling facts: %w", err)
	}

	exampleKey := "source:unknown"
	if len(facts) > 0 {
		exampleKey = facts[0].CiteKey
	}

	var prompt bytes.Buffer
	err = draftPromptTmpl.Execute(&prompt, struct {
		Brief, Facts, ExampleKey string
	}{string(briefJSON), string(factsJSON), exampleKey})
	if err != nil {
		return "", fmt.Errorf("rendering drafting prompt: %w", err)
	}

	markdown, err := d.Client.Complete(ctx, "", prompt.String())
	if err != nil {
		return "", fmt.Errorf("drafting section: %w", err)
	}
	return markdown, nil
}
