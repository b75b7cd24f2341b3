// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package message

import (
	"fmt"
	"strings"
)

// =============================================================================
// CONTENT
// =============================================================================

// Content holds message content as either a bare string or an ordered part
// sequence. Exactly one representation is active: when Parts is non-nil the
// string form is unused. Construct through Text or Parts so the
// single-text-part canonicalization invariant holds.
type Content struct {
	Text  string
	Parts []Part
}

// Text builds string-form content.
func Text(s string) Content {
	return Content{Text: s}
}

// PartsContent builds part-form content, canonicalizing degenerate shapes:
// an empty sequence becomes the empty string, and a sequence holding
// exactly one text part collapses to the bare string form. The collapse is
// deliberately lossy; a single-text-part array and its bare string are
// indistinguishable by design.
func PartsContent(parts []Part) Content {
	switch len(parts) {
	case 0:
		return Content{}
	case 1:
		if tp, ok := parts[0].(TextPart); ok {
			return Content{Text: tp.Text}
		}
	}
	return Content{Parts: parts}
}

// IsParts reports whether the part-sequence form is active.
func (c Content) IsParts() bool {
	return c.Parts != nil
}

// IsEmpty reports whether the content is the empty string with no parts.
func (c Content) IsEmpty() bool {
	return c.Parts == nil && c.Text == ""
}

// PlainText returns the concatenated text of the content, ignoring
// non-text parts. Used for display and token estimation only.
func (c Content) PlainText() string {
	if !c.IsParts() {
		return c.Text
	}
	var sb strings.Builder
	for _, p := range c.Parts {
		if tp, ok := p.(TextPart); ok {
			if sb.Len() > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString(tp.Text)
		}
	}
	return sb.String()
}

// ToolCalls returns the tool-call parts of the content in order.
func (c Content) ToolCalls() []ToolCallPart {
	var calls []ToolCallPart
	for _, p := range c.Parts {
		if tc, ok := p.(ToolCallPart); ok {
			calls = append(calls, tc)
		}
	}
	return calls
}

// =============================================================================
// MESSAGE
// =============================================================================

// Message is a single entry in the conversation sequence. The sequence is
// total and ordered; no message mutates after being appended except the
// last, which a running session may still be extending.
type Message struct {
	Role    Role
	Content Content
}

// NewSystemMessage creates a system message with string content.
func NewSystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: Text(text)}
}

// NewUserMessage creates a user message with string content.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: Text(text)}
}

// NewAssistantMessage creates an assistant message from parts, applying
// the usual canonicalization.
func NewAssistantMessage(parts []Part) Message {
	return Message{Role: RoleAssistant, Content: PartsContent(parts)}
}

// NewToolMessage creates a tool message carrying result parts.
func NewToolMessage(results []ToolResultPart) Message {
	parts := make([]Part, len(results))
	for i, r := range results {
		parts[i] = r
	}
	return Message{Role: RoleTool, Content: PartsContent(parts)}
}

// Validate checks the role/part invariants: tool calls are legal only in
// assistant messages and tool results only in tool messages.
func (m Message) Validate() error {
	for _, p := range m.Content.Parts {
		switch p.Kind() {
		case PartKindToolCall:
			if m.Role != RoleAssistant {
				return fmt.Errorf("tool-call part in %s message", m.Role)
			}
		case PartKindToolResult:
			if m.Role != RoleTool {
				return fmt.Errorf("tool-result part in %s message", m.Role)
			}
		case PartKindText, PartKindFile, PartKindImage:
			// Legal anywhere in memory; the codec decides serializability.
		default:
			panic("message: unreachable part kind")
		}
	}
	return nil
}

// Last returns the final message of the sequence, or false when empty.
func Last(msgs []Message) (Message, bool) {
	if len(msgs) == 0 {
		return Message{}, false
	}
	return msgs[len(msgs)-1], true
}
