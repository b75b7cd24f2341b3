// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// =============================================================================
// PERMISSION CALLBACK
// =============================================================================

// Decision is the outcome of a permission prompt.
type Decision int

const (
	// DecisionDeny - refuse this execution.
	DecisionDeny Decision = iota

	// DecisionAllow - allow this execution only.
	DecisionAllow

	// DecisionAlways - allow this and future executions of the same tool
	// for the rest of the session.
	DecisionAlways
)

// PermissionCallback is asked before any PermissionAsk tool runs. preview
// is a human-readable description of the pending change, empty when the
// tool cannot produce one.
type PermissionCallback func(tool *Tool, params map[string]any, preview string) Decision

// AllowAllCallback approves every execution. Used in tests.
func AllowAllCallback() PermissionCallback {
	return func(*Tool, map[string]any, string) Decision { return DecisionAllow }
}

// DenyAllCallback refuses every execution.
func DenyAllCallback() PermissionCallback {
	return func(*Tool, map[string]any, string) Decision { return DecisionDeny }
}

// =============================================================================
// EXECUTOR
// =============================================================================

// DefaultToolTimeout bounds a single tool execution when the caller's
// context carries no deadline.
const DefaultToolTimeout = 30 * time.Second

// Executor runs tool calls with permission checking and parameter
// validation. Failures come back inside the Result, never as a Go error,
// so the model sees them as tool output.
type Executor struct {
	registry     *Registry
	permissionCb PermissionCallback
	log          zerolog.Logger
}

// NewExecutor creates an executor over the registry. Until a callback is
// set, every PermissionAsk tool is denied.
func NewExecutor(registry *Registry, log zerolog.Logger) *Executor {
	return &Executor{
		registry:     registry,
		permissionCb: DenyAllCallback(),
		log:          log,
	}
}

// SetPermissionCallback sets the confirmation hook for mutating tools.
func (e *Executor) SetPermissionCallback(cb PermissionCallback) {
	e.permissionCb = cb
}

// Registry returns the underlying tool registry.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// Execute runs one tool call and returns its result.
func (e *Executor) Execute(ctx context.Context, name string, params map[string]any) Result {
	start := time.Now()

	tool := e.registry.Get(name)
	if tool == nil {
		return Result{Success: false, Error: "unknown tool: " + name, Duration: time.Since(start)}
	}

	if err := validateParams(tool, params); err != nil {
		return Result{Success: false, Error: "invalid parameters: " + err.Error(), Duration: time.Since(start)}
	}

	if e.registry.EffectivePermission(name) == PermissionAsk {
		preview := ""
		if p, ok := tool.Executor.(Previewer); ok {
			if text, err := p.Preview(params); err == nil {
				preview = text
			}
		}
		switch e.permissionCb(tool, params, preview) {
		case DecisionDeny:
			e.log.Info().Str("tool", name).Msg("tool execution denied")
			return Result{Success: false, Error: "permission denied for tool: " + name, Duration: time.Since(start)}
		case DecisionAlways:
			e.registry.AlwaysAllow(name)
		}
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline && !tool.Interactive {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultToolTimeout)
		defer cancel()
	}

	result, err := tool.Executor.Execute(ctx, params)
	if err != nil {
		result = Result{Success: false, Error: err.Error()}
	}
	result.Duration = time.Since(start)

	e.log.Debug().
		Str("tool", name).
		Bool("ok", result.Success).
		Dur("duration", result.Duration).
		Msg("tool executed")
	return result
}

// validateParams checks required parameters and basic types against the
// tool schema.
func validateParams(tool *Tool, params map[string]any) error {
	for _, p := range tool.Schema.Parameters {
		val, present := params[p.Name]
		if !present {
			if p.Required {
				return fmt.Errorf("missing required parameter %q", p.Name)
			}
			continue
		}
		switch p.Type {
		case "string":
			if _, ok := val.(string); !ok {
				return fmt.Errorf("parameter %q must be a string", p.Name)
			}
		case "number":
			switch val.(type) {
			case float64, int, int64:
			default:
				return fmt.Errorf("parameter %q must be a number", p.Name)
			}
		case "boolean":
			if _, ok := val.(bool); !ok {
				return fmt.Errorf("parameter %q must be a boolean", p.Name)
			}
		case "array":
			if _, ok := val.([]any); !ok {
				return fmt.Errorf("parameter %q must be an array", p.Name)
			}
		}
	}
	return nil
}
