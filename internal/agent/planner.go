// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/book-engine/internal/oracle"
	"github.com/pdiddy/book-engine/pkg/types"
)

// plannerSystem is the system prompt for the planning oracle. The tool
// list is filled per run from the registry so the prompt never drifts
// from the dispatchable set.
const plannerSystem = `You are the planning controller for a book-writing agent. At each step you
choose exactly one tool to run next. Respond with a single JSON object:
{"tool": "<name>", "args": {...}, "reasoning": "<one sentence>"}
and nothing else.

Guidance:
- Call retrieve_facts before write_section for any non-trivial claim.
- Persist drafted content under chapters/{slug}.md.
- Call finish with a summary once the goal is met.`

// plannerPromptTmpl is the per-step user prompt: the goal plus a bounded
// window of recent steps.
var plannerPromptTmpl = template.Must(template.New("planner").Parse(`GOAL: {{.Goal}}

AVAILABLE TOOLS: {{.Tools}}

RECENT STEPS:
{{.Recent}}

What is the single next action? Respond with the JSON decision object only.`))

// ClaudePlanner asks the Claude API for the next action.
type ClaudePlanner struct {
	Client *oracle.Client

	// Tools lists the dispatchable tool names shown to the oracle.
	Tools []string
}

// NextAction renders the planning prompt and parses the decision. Any
// response that is not a JSON object with a tool field is an
// ErrPlannerContract violation.
func (p *ClaudePlanner) NextAction(ctx context.Context, goal string, recent []types.AgentStep) (types.Action, error) {
	recentJSON := "none"
	if len(recent) > 0 {
		data, err := json.MarshalIndent(recent, "", "  ")
		if err != nil {
			return types.Action{}, fmt.Errorf("marshaling recent steps: %w", err)
		}
		recentJSON = string(data)
	}

	var prompt bytes.Buffer
	err := plannerPromptTmpl.Execute(&prompt, struct {
		Goal, Tools, Recent string
	}{goal, strings.Join(p.Tools, ", "), recentJSON})
	if err != nil {
		return types.Action{}, fmt.Errorf("rendering planner prompt: %w", err)
	}

	raw, err := p.Client.Complete(ctx, plannerSystem, prompt.String())
	if err != nil {
		return types.Action{}, fmt.Errorf("calling planner: %w", err)
	}

	return ParseDecision(raw)
}

// ParseDecision decodes one planner response into an Action. Surrounding
// code fences are tolerated; anything else malformed, and a missing tool
// field, violate the planner contract.
func ParseDecision(raw string) (types.Action, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var action types.Action
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &action); err != nil {
		return types.Action{}, fmt.Errorf("%w: %v", ErrPlannerContract, err)
	}
	if action.Tool == "" {
		return types.Action{}, fmt.Errorf("%w: decision has no tool field", ErrPlannerContract)
	}
	if action.Args == nil {
		action.Args = map[string]any{}
	}
	return action, nil
}
