// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tools defines the fixed set of side-effecting operations the
// reasoning loop can dispatch, behind a uniform invocation contract.
// Dispatch never propagates a failure: unknown names, tool errors, and
// panics all become error observations so a single failing step never
// aborts a run.
// Implements: prd004-agent (R3);
//
//	docs/ARCHITECTURE § Tool Registry.
package tools

import (
	"context"
	"fmt"
)

// Tool is one named, dispatchable operation. Run returns the observation
// recorded in the trace on success.
type Tool interface {
	// Name is the stable identifier the planner selects the tool by.
	Name() string

	// Run executes the tool against the given arguments.
	Run(ctx context.Context, args map[string]any) (map[string]any, error)
}

// Registry is the closed set of tools available to one agent run.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry builds a registry from the given tools. Later registrations
// with a duplicate name replace earlier ones.
func NewRegistry(ts ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(ts))}
	for _, t := range ts {
		if _, exists := r.tools[t.Name()]; !exists {
			r.order = append(r.order, t.Name())
		}
		r.tools[t.Name()] = t
	}
	return r
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Dispatch runs the named tool and always returns an observation. An
// unrecognized name yields {"error": "unknown tool '<name>'"}; a tool
// error or panic yields {"error": <message>}. Nil args are passed through
// as an empty map.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) (obs map[string]any) {
	defer func() {
		if rec := recover(); rec != nil {
			obs = map[string]any{"error": fmt.Sprintf("tool %s panicked: %v", name, rec)}
		}
	}()

	tool, ok := r.tools[name]
	if !ok {
		return map[string]any{"error": fmt.Sprintf("unknown tool '%s'", name)}
	}

	if args == nil {
		args = map[string]any{}
	}

	result, err := tool.Run(ctx, args)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	if result == nil {
		result = map[string]any{}
	}
	return result
}

// --- argument coercion helpers ---

// stringArg reads a string argument, falling back when absent or not a string.
func stringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// intArg reads an integer argument. Planner output arrives through JSON,
// so numbers decode as float64.
func intArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return fallback
	}
}
