// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import "time"

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Message is a chat message in the Ollama wire format.
type Message struct {
	Role      string     `json:"role"`                 // "system", "user", "assistant", "tool"
	Content   string     `json:"content"`              // Message text
	ToolCalls []ToolCall `json:"tool_calls,omitempty"` // Tool calls requested by assistant
}

// ToolCall is a tool invocation from the model.
type ToolCall struct {
	Function ToolFunction `json:"function"`
}

// ToolFunction carries the called function name and arguments.
type ToolFunction struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ChatRequest is the request body for the /api/chat endpoint.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  *Options  `json:"options,omitempty"`
	Tools    []Tool    `json:"tools,omitempty"`
}

// Tool is a tool definition for function calling.
type Tool struct {
	Type     string     `json:"type"` // always "function"
	Function ToolSchema `json:"function"`
}

// ToolSchema defines a tool's interface.
type ToolSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  ToolParameters `json:"parameters"`
}

// ToolParameters is the JSON Schema object describing tool parameters.
type ToolParameters struct {
	Type       string                  `json:"type"` // "object"
	Properties map[string]ToolProperty `json:"properties"`
	Required   []string                `json:"required,omitempty"`
}

// ToolProperty describes one parameter.
type ToolProperty struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Options holds model inference parameters.
type Options struct {
	Temperature float64 `json:"temperature,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
	NumCtx      int     `json:"num_ctx,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
	Seed        int     `json:"seed,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ChatResponse is the final frame of a /api/chat exchange.
type ChatResponse struct {
	Model           string    `json:"model"`
	CreatedAt       time.Time `json:"created_at"`
	Message         Message   `json:"message"`
	Done            bool      `json:"done"`
	DoneReason      string    `json:"done_reason,omitempty"`
	TotalDuration   int64     `json:"total_duration,omitempty"` // nanoseconds
	PromptEvalCount int       `json:"prompt_eval_count,omitempty"`
	EvalCount       int       `json:"eval_count,omitempty"`
}

// ModelInfo describes one locally available model.
type ModelInfo struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ListModelsResponse is the response from /api/tags.
type ListModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// APIError is the error body Ollama returns on non-200 responses.
type APIError struct {
	Error string `json:"error"`
}

// =============================================================================
// STREAMING
// =============================================================================

// StreamChunk is one decoded frame of a streaming chat response.
type StreamChunk struct {
	Content    string     // Incremental text, may be empty
	ToolCalls  []ToolCall // Tool calls, usually on the final frame
	Done       bool
	DoneReason string
	Model      string
}

// StreamCallback receives each chunk as it arrives.
type StreamCallback func(chunk StreamChunk)
