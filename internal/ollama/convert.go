// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/jeranaias/chatfile/internal/message"
	"github.com/jeranaias/chatfile/internal/tools"
)

// =============================================================================
// MESSAGE CONVERSION
// =============================================================================

// ToWire converts typed conversation messages into the Ollama wire
// format. Tool messages fan out to one wire message per result part, each
// carrying the result payload as JSON text.
func ToWire(msgs []message.Message) []Message {
	var out []Message
	for _, m := range msgs {
		switch m.Role {
		case message.RoleTool:
			for _, part := range m.Content.Parts {
				if res, ok := part.(message.ToolResultPart); ok {
					out = append(out, Message{Role: "tool", Content: marshalResult(res)})
				}
			}
		case message.RoleAssistant:
			wire := Message{Role: "assistant", Content: m.Content.PlainText()}
			for _, call := range m.Content.ToolCalls() {
				wire.ToolCalls = append(wire.ToolCalls, ToolCall{
					Function: ToolFunction{Name: call.ToolName, Arguments: call.Args},
				})
			}
			out = append(out, wire)
		default:
			out = append(out, Message{Role: m.Role.String(), Content: m.Content.PlainText()})
		}
	}
	return out
}

func marshalResult(res message.ToolResultPart) string {
	data, err := json.Marshal(res.Result)
	if err != nil {
		return `{"ok":false,"error":"unserializable tool result"}`
	}
	return string(data)
}

// ToolCallParts converts wire tool calls into typed message parts,
// assigning each a fresh tool-call ID.
func ToolCallParts(calls []ToolCall) []message.Part {
	parts := make([]message.Part, 0, len(calls))
	for _, call := range calls {
		args := call.Function.Arguments
		if args == nil {
			args = map[string]any{}
		}
		parts = append(parts, message.ToolCallPart{
			ToolCallID: uuid.NewString(),
			ToolName:   call.Function.Name,
			Args:       args,
		})
	}
	return parts
}

// =============================================================================
// TOOL SCHEMA CONVERSION
// =============================================================================

// ToolsToWire converts registry tools into the function-calling schema
// Ollama expects.
func ToolsToWire(registry *tools.Registry) []Tool {
	all := registry.All()
	out := make([]Tool, 0, len(all))
	for _, t := range all {
		out = append(out, toolToWire(t))
	}
	return out
}

func toolToWire(t *tools.Tool) Tool {
	properties := make(map[string]ToolProperty, len(t.Schema.Parameters))
	var required []string
	for _, p := range t.Schema.Parameters {
		properties[p.Name] = ToolProperty{Type: p.Type, Description: p.Description}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return Tool{
		Type: "function",
		Function: ToolSchema{
			Name:        t.Name,
			Description: t.Description,
			Parameters: ToolParameters{
				Type:       "object",
				Properties: properties,
				Required:   required,
			},
		},
	}
}
