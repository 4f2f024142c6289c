// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Action is a single planner decision: the tool to run and its arguments.
// This is the wire schema the planning oracle must return. Per prd004-agent.
type Action struct {
	// Tool is the stable tool name (e.g. "retrieve_facts").
	Tool string `json:"tool" yaml:"tool"`

	// Args holds the tool's arguments. Shape is tool-specific.
	Args map[string]any `json:"args" yaml:"args"`

	// Reasoning is the planner's free-text rationale. Recorded in the
	// trace for audit; never interpreted.
	Reasoning string `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`
}

// AgentStep pairs one executed action with the observation it produced.
type AgentStep struct {
	// Action is the planner decision that was dispatched.
	Action Action `json:"action" yaml:"action"`

	// Observation is the tool's result. Failed steps carry an "error" key
	// instead of aborting the run.
	Observation map[string]any `json:"observation" yaml:"observation"`
}

// Trace is the ordered, append-only record of steps from one agent run.
// It is mutated only by the reasoning loop and read-only to tools.
type Trace []AgentStep

// Window returns the last n steps, or the whole trace when it is shorter.
// The planning call sees this bounded window rather than the full history
// to keep context growth flat.
func (t Trace) Window(n int) []AgentStep {
	if n <= 0 || len(t) <= n {
		return t
	}
	return t[len(t)-n:]
}
