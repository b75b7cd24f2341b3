// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatmd

import (
	"errors"
	"reflect"
	"testing"

	"github.com/jeranaias/chatfile/internal/message"
)

func TestParse_SimpleConversation(t *testing.T) {
	src := "## user\n\nHello World!\n\n## assistant\n\nHello User!\n"

	msgs, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := []message.Message{
		{Role: message.RoleUser, Content: message.Text("Hello World!")},
		{Role: message.RoleAssistant, Content: message.Text("Hello User!")},
	}
	if !reflect.DeepEqual(msgs, want) {
		t.Errorf("Parse() = %#v, want %#v", msgs, want)
	}
}

func TestParse_EmptySection(t *testing.T) {
	msgs, err := Parse("## user\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Role != message.RoleUser || !msgs[0].Content.IsEmpty() {
		t.Errorf("Expected empty user message, got %#v", msgs[0])
	}
}

func TestParse_PreambleDiscarded(t *testing.T) {
	src := "stray notes before any section\n\n## user\n\nhi\n"
	msgs, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content.Text != "hi" {
		t.Errorf("Expected preamble to be discarded, got %#v", msgs)
	}
}

func TestParse_NonRoleHeadingIsText(t *testing.T) {
	src := "## user\n\n## Notes\n\nsome text under a plain heading\n"
	msgs, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(msgs))
	}
	want := "## Notes\n\nsome text under a plain heading"
	if msgs[0].Content.Text != want {
		t.Errorf("Content = %q, want %q", msgs[0].Content.Text, want)
	}
}

func TestParse_HeadingInsideFenceIsLiteral(t *testing.T) {
	src := "## user\n\n```markdown\n## assistant\n```\n"
	msgs, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("Expected 1 message, got %d: %#v", len(msgs), msgs)
	}
	want := "```markdown\n## assistant\n```"
	if msgs[0].Content.Text != want {
		t.Errorf("Content = %q, want %q", msgs[0].Content.Text, want)
	}
}

func TestParse_ToolCallFence(t *testing.T) {
	src := "## assistant\n\nLet me read that.\n\n" +
		"```tool-call\n" +
		`{"toolCallId":"call_1","toolName":"read_files","args":{"paths":["a.go"]}}` +
		"\n```\n"

	msgs, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(msgs))
	}
	parts := msgs[0].Content.Parts
	if len(parts) != 2 {
		t.Fatalf("Expected 2 parts, got %d: %#v", len(parts), parts)
	}
	if tp, ok := parts[0].(message.TextPart); !ok || tp.Text != "Let me read that." {
		t.Errorf("Part 0 = %#v", parts[0])
	}
	tc, ok := parts[1].(message.ToolCallPart)
	if !ok {
		t.Fatalf("Part 1 is %T, want ToolCallPart", parts[1])
	}
	if tc.ToolCallID != "call_1" || tc.ToolName != "read_files" {
		t.Errorf("ToolCallPart = %#v", tc)
	}
	paths, _ := tc.Args["paths"].([]any)
	if len(paths) != 1 || paths[0] != "a.go" {
		t.Errorf("Args = %#v", tc.Args)
	}
}

func TestParse_RoleFenceEnforcement(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			"tool-call under user",
			"## user\n\n```tool-call\n{\"toolCallId\":\"1\",\"toolName\":\"x\",\"args\":{}}\n```\n",
		},
		{
			"tool-result under assistant",
			"## assistant\n\n```tool-result\n{\"toolCallId\":\"1\",\"toolName\":\"x\",\"result\":{}}\n```\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			var malformed *MalformedInputError
			if !errors.As(err, &malformed) {
				t.Errorf("Expected MalformedInputError, got %v", err)
			}
		})
	}
}

func TestParse_SchemaViolationIsFatal(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing toolName", `{"toolCallId":"1","args":{}}`},
		{"args not an object", `{"toolCallId":"1","toolName":"x","args":[1,2]}`},
		{"not JSON at all", `nonsense`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "## assistant\n\n```tool-call\n" + tt.body + "\n```\n"
			_, err := Parse(src)
			var malformed *MalformedInputError
			if !errors.As(err, &malformed) {
				t.Errorf("Expected MalformedInputError, got %v", err)
			}
		})
	}
}

func TestParse_CompressedDecodeFailureDegradesToText(t *testing.T) {
	fence := "```tool-call-compressed\n" +
		`{"toolCallId":"1","toolName":"x","compressedArgs":"!!! not base64 !!!"}` +
		"\n```"
	src := "## assistant\n\n" + fence + "\n"

	msgs, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(msgs))
	}
	// The whole fence survives as opaque text
	if msgs[0].Content.IsParts() {
		t.Fatalf("Expected bare text content, got parts %#v", msgs[0].Content.Parts)
	}
	if msgs[0].Content.Text != fence {
		t.Errorf("Content = %q, want the original fence source", msgs[0].Content.Text)
	}
}

func TestParse_CompressedWrongRoleIsFatal(t *testing.T) {
	// Build a valid compressed fence via the serializer, then move it under
	// the wrong role.
	out, err := Serialize([]message.Message{
		message.NewAssistantMessage([]message.Part{
			message.ToolCallPart{ToolCallID: "1", ToolName: "x", Args: map[string]any{"k": "v"}},
		}),
	}, true)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	src := "## user" + out[len("## assistant"):]

	_, err = Parse(src)
	var malformed *MalformedInputError
	if !errors.As(err, &malformed) {
		t.Errorf("Expected MalformedInputError, got %v", err)
	}
}

func TestParse_UnrecognizedFenceIsText(t *testing.T) {
	src := "## user\n\n```go\nfmt.Println(\"hi\")\n```\n"
	msgs, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := "```go\nfmt.Println(\"hi\")\n```"
	if msgs[0].Content.Text != want {
		t.Errorf("Content = %q, want %q", msgs[0].Content.Text, want)
	}
}

func TestParse_UnterminatedFenceSwallowsRest(t *testing.T) {
	src := "## user\n\n```go\nno closing fence\n## assistant\nstill in fence\n"
	msgs, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("Expected 1 message (fence shields the heading), got %d", len(msgs))
	}
	if msgs[0].Role != message.RoleUser {
		t.Errorf("Role = %s", msgs[0].Role)
	}
}

func TestParse_ReopenedEmptyUserSection(t *testing.T) {
	// The session appends "## user" and waits; re-reading must yield an
	// empty-string user message, which the turn automaton treats as
	// "re-open, no new heading".
	src := "## assistant\n\ndone\n\n## user\n"
	msgs, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
	last := msgs[1]
	if last.Role != message.RoleUser || !last.Content.IsEmpty() {
		t.Errorf("Expected empty user message, got %#v", last)
	}
}
