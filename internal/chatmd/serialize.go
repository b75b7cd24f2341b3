// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatmd

import (
	"encoding/json"
	"strings"

	"github.com/jeranaias/chatfile/internal/message"
)

// =============================================================================
// SERIALIZE
// =============================================================================

// Serialize renders the message sequence as conversation markdown. When
// compress is set, tool fences are written in their -compressed variants.
//
// Serialization is total-or-nothing: any content shape that would not
// parse back identically (file/image parts, tool parts under the wrong
// role, text that collides with the file structure) is a hard error. The
// system must never write a file it cannot read back.
func Serialize(msgs []message.Message, compress bool) (string, error) {
	segs := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if !m.Role.Valid() {
			return "", &SerializeError{Reason: "unknown role " + m.Role.String()}
		}
		body, err := serializeContent(m.Role, m.Content, compress)
		if err != nil {
			return "", err
		}
		if body == "" {
			segs = append(segs, "## "+m.Role.String()+"\n")
		} else {
			segs = append(segs, "## "+m.Role.String()+"\n\n"+body+"\n")
		}
	}
	return strings.Join(segs, "\n"), nil
}

// serializeContent renders one message body. String content is emitted
// verbatim; part content is emitted part by part, joined by exactly one
// blank line with none after the last part.
func serializeContent(role message.Role, c message.Content, compress bool) (string, error) {
	if !c.IsParts() {
		if err := checkTextSafe(c.Text); err != nil {
			return "", err
		}
		return c.Text, nil
	}

	chunks := make([]string, 0, len(c.Parts))
	prevText := false
	for _, p := range c.Parts {
		isText := false
		switch part := p.(type) {
		case message.TextPart:
			// An empty text part leaves no trace in the markdown, and
			// two adjacent text parts reparse as one. Either shape would
			// come back different, so both are rejected up front.
			if part.Text == "" {
				return "", &SerializeError{Reason: "empty text part in " + role.String() + " message"}
			}
			if prevText {
				return "", &SerializeError{Reason: "adjacent text parts in " + role.String() + " message"}
			}
			isText = true
			if err := checkTextSafe(part.Text); err != nil {
				return "", err
			}
			chunks = append(chunks, part.Text)
		case message.ToolCallPart:
			if role != message.RoleAssistant {
				return "", &SerializeError{Reason: "tool-call part in " + role.String() + " message"}
			}
			fence, err := renderToolCall(part, compress)
			if err != nil {
				return "", err
			}
			chunks = append(chunks, fence)
		case message.ToolResultPart:
			if role != message.RoleTool {
				return "", &SerializeError{Reason: "tool-result part in " + role.String() + " message"}
			}
			fence, err := renderToolResult(part, compress)
			if err != nil {
				return "", err
			}
			chunks = append(chunks, fence)
		case message.FilePart, message.ImagePart:
			return "", &SerializeError{Reason: p.Kind().String() + " part in " + role.String() + " message has no markdown form"}
		default:
			return "", &SerializeError{Reason: "unknown content part"}
		}
		prevText = isText
	}
	return strings.Join(chunks, "\n\n"), nil
}

// =============================================================================
// TOOL FENCE RENDERING
// =============================================================================

func renderToolCall(part message.ToolCallPart, compress bool) (string, error) {
	args := part.Args
	if args == nil {
		args = map[string]any{}
	}
	if compress {
		payload, err := json.Marshal(args)
		if err != nil {
			return "", &SerializeError{Reason: "tool-call args: " + err.Error()}
		}
		packed, err := compressToBase64(payload)
		if err != nil {
			return "", &SerializeError{Reason: err.Error()}
		}
		return renderFence(fenceToolCallCompressed, compressedPayload{
			ToolCallID:     part.ToolCallID,
			ToolName:       part.ToolName,
			CompressedArgs: packed,
		})
	}
	return renderFence(fenceToolCall, toolCallPayload{
		ToolCallID: part.ToolCallID,
		ToolName:   part.ToolName,
		Args:       args,
	})
}

func renderToolResult(part message.ToolResultPart, compress bool) (string, error) {
	result := part.Result
	if result == nil {
		result = map[string]any{}
	}
	if compress {
		payload, err := json.Marshal(result)
		if err != nil {
			return "", &SerializeError{Reason: "tool-result payload: " + err.Error()}
		}
		packed, err := compressToBase64(payload)
		if err != nil {
			return "", &SerializeError{Reason: err.Error()}
		}
		return renderFence(fenceToolResultCompressed, compressedPayload{
			ToolCallID:       part.ToolCallID,
			ToolName:         part.ToolName,
			CompressedResult: packed,
		})
	}
	return renderFence(fenceToolResult, toolResultPayload{
		ToolCallID: part.ToolCallID,
		ToolName:   part.ToolName,
		Result:     result,
	})
}

// renderFence emits a fenced block with compact JSON as its single line.
func renderFence(info string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", &SerializeError{Reason: "fence payload: " + err.Error()}
	}
	return "```" + info + "\n" + string(body) + "\n```", nil
}

// =============================================================================
// TEXT SAFETY
// =============================================================================

// checkTextSafe rejects text content the parser would not hand back as the
// same text: a role heading outside a fence would split the section, a
// tool-tagged fence would decode as a structured part, and an unterminated
// fence would swallow whatever follows it.
func checkTextSafe(text string) error {
	inFence := false
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "```") {
			if !inFence {
				info := strings.TrimSpace(line[3:])
				if isToolFence(info) {
					return &SerializeError{Reason: "text content embeds a " + info + " fence"}
				}
				inFence = true
			} else if strings.TrimRight(line, " \t") == "```" {
				inFence = false
			}
			continue
		}
		if inFence {
			continue
		}
		if m := headingRe.FindStringSubmatch(line); m != nil {
			if _, ok := message.ParseRole(m[1]); ok {
				return &SerializeError{Reason: "text content embeds a role heading: " + strings.TrimSpace(line)}
			}
		}
	}
	if inFence {
		return &SerializeError{Reason: "text content has an unterminated code fence"}
	}
	return nil
}
