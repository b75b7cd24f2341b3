// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatmd

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/jeranaias/chatfile/internal/message"
)

// =============================================================================
// FENCE TAGS
// =============================================================================

const (
	fenceToolCall             = "tool-call"
	fenceToolResult           = "tool-result"
	fenceToolCallCompressed   = "tool-call-compressed"
	fenceToolResultCompressed = "tool-result-compressed"
)

// isToolFence reports whether a fence info string carries a structured
// payload the codec owns.
func isToolFence(info string) bool {
	switch info {
	case fenceToolCall, fenceToolResult, fenceToolCallCompressed, fenceToolResultCompressed:
		return true
	default:
		return false
	}
}

// headingRe matches a level-2 ATX heading and captures its text.
// "###" does not match: the character after "##" must be whitespace.
var headingRe = regexp.MustCompile(`^##\s+(.+)$`)

// =============================================================================
// SECTION ACCUMULATOR
// =============================================================================

// section accumulates one role's content during a parse. Raw text lines
// buffer until a structured part (or the section end) forces a flush.
type section struct {
	role    message.Role
	parts   []message.Part
	textBuf []string

	// trimLead drops one blank line at the next flush: the separator the
	// serializer writes after the heading or after a structured fence.
	trimLead bool
}

func newSection(role message.Role) *section {
	return &section{role: role, trimLead: true}
}

func (s *section) addTextLine(line string) {
	s.textBuf = append(s.textBuf, line)
}

func (s *section) addTextLines(lines []string) {
	s.textBuf = append(s.textBuf, lines...)
}

// flushText converts the buffered lines into a text part holding the exact
// original slice, minus the single separator blank the serializer adds
// around structured blocks and the one trailing newline block-slicing
// introduces at the section end.
func (s *section) flushText() {
	buf := s.textBuf
	s.textBuf = nil
	if s.trimLead && len(buf) > 0 && buf[0] == "" {
		buf = buf[1:]
	}
	s.trimLead = false
	if len(buf) > 0 && buf[len(buf)-1] == "" {
		buf = buf[:len(buf)-1]
	}
	text := strings.Join(buf, "\n")
	if text == "" {
		return
	}
	s.parts = append(s.parts, message.TextPart{Text: text})
}

func (s *section) addPart(p message.Part) {
	s.flushText()
	s.parts = append(s.parts, p)
	s.trimLead = true
}

func (s *section) finish() message.Message {
	s.flushText()
	return message.Message{Role: s.role, Content: message.PartsContent(s.parts)}
}

// =============================================================================
// PARSE
// =============================================================================

// Parse converts conversation markdown into the typed message sequence.
// It fails only on MalformedInput (wrong-role or schema-invalid tool
// fences); everything else in the file degrades to text.
func Parse(src string) ([]message.Message, error) {
	lines := strings.Split(src, "\n")

	var msgs []message.Message
	var cur *section

	closeSection := func() {
		if cur != nil {
			msgs = append(msgs, cur.finish())
			cur = nil
		}
	}

	i := 0
	for i < len(lines) {
		line := lines[i]

		// Fenced blocks come first: their content is shielded from heading
		// detection, so a "## user" inside a code sample stays literal.
		if strings.HasPrefix(line, "```") {
			info := strings.TrimSpace(line[3:])

			// Locate the closing fence.
			j := i + 1
			for j < len(lines) && strings.TrimRight(lines[j], " \t") != "```" {
				j++
			}
			if j == len(lines) {
				// Unterminated fence: the rest of the file is literal text.
				if cur != nil {
					cur.addTextLines(lines[i:])
				}
				break
			}

			if isToolFence(info) {
				if cur == nil {
					// No open section; structured content here is inert and
					// discarded with the rest of the preamble.
					i = j + 1
					continue
				}
				body := strings.Join(lines[i+1:j], "\n")
				part, degrade, err := decodeToolFence(cur.role, info, body, i+1)
				if err != nil {
					return nil, err
				}
				if degrade {
					cur.addTextLines(lines[i : j+1])
				} else {
					cur.addPart(part)
				}
			} else if cur != nil {
				cur.addTextLines(lines[i : j+1])
			}
			i = j + 1
			continue
		}

		// A level-2 heading naming a role opens a new section. Any other
		// heading is ordinary text.
		if m := headingRe.FindStringSubmatch(line); m != nil {
			if role, ok := message.ParseRole(m[1]); ok {
				closeSection()
				cur = newSection(role)
				i++
				continue
			}
		}

		if cur != nil {
			cur.addTextLine(line)
		}
		i++
	}

	closeSection()
	return msgs, nil
}

// =============================================================================
// TOOL FENCE DECODING
// =============================================================================

type toolCallPayload struct {
	ToolCallID string         `json:"toolCallId"`
	ToolName   string         `json:"toolName"`
	Args       map[string]any `json:"args"`
}

type toolResultPayload struct {
	ToolCallID string         `json:"toolCallId"`
	ToolName   string         `json:"toolName"`
	Result     map[string]any `json:"result"`
}

type compressedPayload struct {
	ToolCallID       string `json:"toolCallId"`
	ToolName         string `json:"toolName"`
	CompressedArgs   string `json:"compressedArgs,omitempty"`
	CompressedResult string `json:"compressedResult,omitempty"`
}

// decodeToolFence turns one tool fence body into a structured part.
//
// Plain fences are strict: a wrong role or a schema violation is fatal.
// Compressed fences degrade instead when their payload cannot be decoded,
// so files written under an older compression scheme stay readable; only a
// successfully decoded fence in the wrong section is fatal.
func decodeToolFence(role message.Role, info, body string, lineNo int) (part message.Part, degrade bool, err error) {
	switch info {
	case fenceToolCall:
		if role != message.RoleAssistant {
			return nil, false, &MalformedInputError{Line: lineNo, Reason: "tool-call fence in " + role.String() + " section"}
		}
		if ok, reason := validatePayload(toolCallSchema, []byte(body)); !ok {
			return nil, false, &MalformedInputError{Line: lineNo, Reason: "tool-call payload: " + reason}
		}
		var p toolCallPayload
		if uerr := json.Unmarshal([]byte(body), &p); uerr != nil {
			return nil, false, &MalformedInputError{Line: lineNo, Reason: "tool-call payload: " + uerr.Error()}
		}
		return message.ToolCallPart{ToolCallID: p.ToolCallID, ToolName: p.ToolName, Args: p.Args}, false, nil

	case fenceToolResult:
		if role != message.RoleTool {
			return nil, false, &MalformedInputError{Line: lineNo, Reason: "tool-result fence in " + role.String() + " section"}
		}
		if ok, reason := validatePayload(toolResultSchema, []byte(body)); !ok {
			return nil, false, &MalformedInputError{Line: lineNo, Reason: "tool-result payload: " + reason}
		}
		var p toolResultPayload
		if uerr := json.Unmarshal([]byte(body), &p); uerr != nil {
			return nil, false, &MalformedInputError{Line: lineNo, Reason: "tool-result payload: " + uerr.Error()}
		}
		return message.ToolResultPart{ToolCallID: p.ToolCallID, ToolName: p.ToolName, Result: p.Result}, false, nil

	case fenceToolCallCompressed:
		var p compressedPayload
		if uerr := json.Unmarshal([]byte(body), &p); uerr != nil || p.ToolCallID == "" || p.ToolName == "" || p.CompressedArgs == "" {
			return nil, true, nil
		}
		args, ok := decodeCompressedObject(p.CompressedArgs)
		if !ok {
			return nil, true, nil
		}
		if role != message.RoleAssistant {
			return nil, false, &MalformedInputError{Line: lineNo, Reason: "tool-call-compressed fence in " + role.String() + " section"}
		}
		return message.ToolCallPart{ToolCallID: p.ToolCallID, ToolName: p.ToolName, Args: args}, false, nil

	case fenceToolResultCompressed:
		var p compressedPayload
		if uerr := json.Unmarshal([]byte(body), &p); uerr != nil || p.ToolCallID == "" || p.ToolName == "" || p.CompressedResult == "" {
			return nil, true, nil
		}
		result, ok := decodeCompressedObject(p.CompressedResult)
		if !ok {
			return nil, true, nil
		}
		if role != message.RoleTool {
			return nil, false, &MalformedInputError{Line: lineNo, Reason: "tool-result-compressed fence in " + role.String() + " section"}
		}
		return message.ToolResultPart{ToolCallID: p.ToolCallID, ToolName: p.ToolName, Result: result}, false, nil

	default:
		panic("chatmd: decodeToolFence called with non-tool fence " + info)
	}
}

// decodeCompressedObject decodes base64(gzip(JSON object)).
func decodeCompressedObject(payload string) (map[string]any, bool) {
	inner, err := decompressFromBase64(payload)
	if err != nil {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal(inner, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}
