// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package agent runs the bounded reasoning loop: ask the planning oracle
// for the next tool, dispatch it, record the observation, repeat until
// the finish tool or the step budget.
// Implements: prd004-agent (R1, R2, R4);
//
//	docs/ARCHITECTURE § Reasoning Loop.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/pdiddy/book-engine/internal/tools"
	"github.com/pdiddy/book-engine/pkg/types"
)

// ErrPlannerContract reports planner output that violates the decision
// schema (malformed JSON or a missing tool field). It is recovered into a
// synthetic error step, never propagated out of the loop.
var ErrPlannerContract = errors.New("planner contract violation")

// Planner is the external decision-making oracle: given the goal and a
// bounded window of recent steps, it selects the next tool and arguments.
type Planner interface {
	NextAction(ctx context.Context, goal string, recent []types.AgentStep) (types.Action, error)
}

// Outcome is the terminal state of one run.
type Outcome string

const (
	// OutcomeFinished means the planner invoked the finish tool.
	OutcomeFinished Outcome = "finished"

	// OutcomeBudgetExhausted means the step budget ran out first.
	OutcomeBudgetExhausted Outcome = "budget-exhausted"
)

// BudgetExhaustedSummary is the fixed result for runs that hit the step
// budget, distinct from any planner-provided summary.
const BudgetExhaustedSummary = "maximum steps reached"

// errorToolName labels synthetic steps recording planner failures.
const errorToolName = "error"

// Result is the outcome of one agent run.
type Result struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id" yaml:"run_id"`

	// Trace is the full ordered record of executed steps.
	Trace types.Trace `json:"trace" yaml:"trace"`

	// Outcome reports how the run ended.
	Outcome Outcome `json:"outcome" yaml:"outcome"`

	// Summary is the planner's finish summary, or the budget sentinel.
	Summary string `json:"summary" yaml:"summary"`
}

// Loop is the reasoning controller. One Loop value serves one run at a
// time; concurrent runs need separate Loops targeting disjoint chapter
// paths.
type Loop struct {
	planner  Planner
	registry *tools.Registry
	cfg      types.AgentConfig
	w        io.Writer
}

// NewLoop creates a loop over the given planner and tool registry.
// Progress lines go to w. Zero config values take the defaults
// (15 steps, window of 3).
func NewLoop(planner Planner, registry *tools.Registry, cfg types.AgentConfig, w io.Writer) *Loop {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = 15
	}
	if cfg.TraceWindow <= 0 {
		cfg.TraceWindow = 3
	}
	if w == nil {
		w = io.Discard
	}
	return &Loop{planner: planner, registry: registry, cfg: cfg, w: w}
}

// Run executes the loop for one goal. Everything that happens inside a
// step — planner violations, unknown tools, tool failures — is absorbed
// into that step's observation so the trace stays a complete record;
// only context cancellation surfaces as an error. A goal whose planner
// never finishes ends at exactly MaxSteps with the budget sentinel.
func (l *Loop) Run(ctx context.Context, goal string) (Result, error) {
	result := Result{RunID: uuid.NewString()}

	for step := 0; step < l.cfg.MaxSteps; step++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		action, err := l.planner.NextAction(ctx, goal, result.Trace.Window(l.cfg.TraceWindow))
		if err == nil && action.Tool == "" {
			err = fmt.Errorf("%w: decision has no tool field", ErrPlannerContract)
		}

		var obs map[string]any
		if err != nil {
			// A malformed decision becomes a synthetic error step; the
			// loop continues so the trace records what was attempted.
			action = types.Action{Tool: errorToolName, Args: map[string]any{}}
			obs = map[string]any{"error": err.Error()}
		} else {
			obs = l.registry.Dispatch(ctx, action.Tool, action.Args)
		}

		result.Trace = append(result.Trace, types.AgentStep{Action: action, Observation: obs})
		l.logStep(step+1, action, obs)

		if err == nil && action.Tool == "finish" {
			result.Outcome = OutcomeFinished
			result.Summary = summaryArg(action.Args)
			return result, nil
		}
	}

	result.Outcome = OutcomeBudgetExhausted
	result.Summary = BudgetExhaustedSummary
	return result, nil
}

func (l *Loop) logStep(n int, action types.Action, obs map[string]any) {
	if errMsg, ok := obs["error"].(string); ok {
		fmt.Fprintf(l.w, "step %-2d %-16s error: %s\n", n, action.Tool, errMsg)
		return
	}
	fmt.Fprintf(l.w, "step %-2d %s\n", n, action.Tool)
}

func summaryArg(args map[string]any) string {
	if s, ok := args["summary"].(string); ok && s != "" {
		return s
	}
	return "Task completed"
}
