// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"sort"
	"sync"
	"time"
)

// =============================================================================
// PERMISSION LEVELS
// =============================================================================

// PermissionLevel determines how tool execution is authorized.
type PermissionLevel int

const (
	// PermissionAuto - allowed without prompting. Read-only operations.
	PermissionAuto PermissionLevel = iota

	// PermissionAsk - the human confirms before execution. File mutations.
	PermissionAsk
)

// String returns the string representation of a permission level.
func (p PermissionLevel) String() string {
	switch p {
	case PermissionAuto:
		return "Auto"
	case PermissionAsk:
		return "Ask"
	default:
		return "Unknown"
	}
}

// =============================================================================
// TOOL DEFINITION
// =============================================================================

// Tool describes one executable tool.
type Tool struct {
	// Name is the tool identifier (e.g. "read_files").
	Name string

	// Description explains the tool for the model's tool schema.
	Description string

	// Schema defines the tool's parameters.
	Schema Schema

	// Permission determines how execution is authorized.
	Permission PermissionLevel

	// Interactive tools block on human input and are exempt from the
	// default execution timeout.
	Interactive bool

	// Executor handles the actual execution.
	Executor ToolExecutor
}

// Schema defines a tool's parameters.
type Schema struct {
	Parameters []Parameter
}

// Parameter defines a single tool parameter.
type Parameter struct {
	Name        string
	Type        string // "string", "number", "boolean", "array"
	Required    bool
	Description string
}

// ToolExecutor is implemented by each tool.
type ToolExecutor interface {
	Execute(ctx context.Context, params map[string]any) (Result, error)
}

// Previewer is implemented by mutating tools that can describe their
// pending change before it is confirmed. The preview is shown to the
// human alongside the permission prompt.
type Previewer interface {
	Preview(params map[string]any) (string, error)
}

// =============================================================================
// RESULT
// =============================================================================

// Result holds the outcome of a tool execution. Failures are values, not
// errors: they flow back to the model inside the tool-result payload.
type Result struct {
	// Success indicates whether the tool executed successfully.
	Success bool

	// Output is the tool's textual output.
	Output string

	// Error is the failure message when Success is false.
	Error string

	// Items carries per-entry outcomes for batch tools (file reads,
	// patch batches), each with its own ok flag.
	Items []map[string]any

	// Duration is how long execution took.
	Duration time.Duration
}

// Payload converts the result into the map carried by a tool-result
// message part. The ok flag is always present.
func (r Result) Payload() map[string]any {
	p := map[string]any{"ok": r.Success}
	if r.Output != "" {
		p["output"] = r.Output
	}
	if r.Error != "" {
		p["error"] = r.Error
	}
	if r.Items != nil {
		items := make([]any, len(r.Items))
		for i, it := range r.Items {
			items[i] = it
		}
		p["results"] = items
	}
	return p
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry holds the available tools plus the session's "always allow"
// grants. It is an explicit per-session object.
type Registry struct {
	mu          sync.Mutex
	tools       map[string]*Tool
	alwaysAllow map[string]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:       make(map[string]*Tool),
		alwaysAllow: make(map[string]bool),
	}
}

// Register adds a tool to the registry.
func (r *Registry) Register(tool *Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name] = tool
}

// Get retrieves a tool by name, nil if unknown.
func (r *Registry) Get(name string) *Tool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tools[name]
}

// All returns the registered tools sorted by name.
func (r *Registry) All() []*Tool {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		result = append(result, tool)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// AlwaysAllow records a session-scoped grant for the tool.
func (r *Registry) AlwaysAllow(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alwaysAllow[name] = true
}

// EffectivePermission returns the tool's permission level after applying
// any "always allow" grant.
func (r *Registry) EffectivePermission(name string) PermissionLevel {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.alwaysAllow[name] {
		return PermissionAuto
	}
	if tool, ok := r.tools[name]; ok {
		return tool.Permission
	}
	return PermissionAsk
}
