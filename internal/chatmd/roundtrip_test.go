// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatmd

import (
	"reflect"
	"testing"

	"github.com/jeranaias/chatfile/internal/message"
)

// roundTrip serializes, reparses, and compares against the input. The law
// holds for every sequence the serializer accepts.
func roundTrip(t *testing.T, msgs []message.Message, compress bool) {
	t.Helper()

	out, err := Serialize(msgs, compress)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	back, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse of serialized output failed: %v\noutput:\n%s", err, out)
	}

	if !reflect.DeepEqual(back, msgs) {
		t.Errorf("round trip diverged\n  in:  %#v\n  out: %#v\n  markdown:\n%s", msgs, back, out)
	}

	// Idempotence: a second serialize of the reparsed sequence is identical.
	again, err := Serialize(back, compress)
	if err != nil {
		t.Fatalf("second Serialize failed: %v", err)
	}
	if again != out {
		t.Errorf("serialize not idempotent\n first: %q\n second: %q", out, again)
	}
}

func TestRoundTrip_PlainText(t *testing.T) {
	roundTrip(t, []message.Message{
		message.NewSystemMessage("You edit files on request."),
		message.NewUserMessage("Hello World!"),
		{Role: message.RoleAssistant, Content: message.Text("Hello User!")},
	}, false)
}

func TestRoundTrip_EmptyAndMultiline(t *testing.T) {
	roundTrip(t, []message.Message{
		message.NewUserMessage("first line\n\nsecond paragraph\n- a list\n- of things"),
		{Role: message.RoleAssistant, Content: message.Text("ok")},
		message.NewUserMessage(""),
	}, false)
}

func TestRoundTrip_TrailingNewlines(t *testing.T) {
	roundTrip(t, []message.Message{
		message.NewUserMessage("ends with newline\n"),
		{Role: message.RoleAssistant, Content: message.Text("ends with two\n\n")},
	}, false)
}

func TestRoundTrip_EmbeddedCodeFence(t *testing.T) {
	roundTrip(t, []message.Message{
		message.NewUserMessage("try this:\n\n```go\nfunc main() {}\n```\n\nthanks"),
	}, false)
}

func TestRoundTrip_ToolCallAndResult(t *testing.T) {
	msgs := []message.Message{
		message.NewUserMessage("read a.go and b.go"),
		message.NewAssistantMessage([]message.Part{
			message.TextPart{Text: "Reading both files."},
			message.ToolCallPart{
				ToolCallID: "call_1",
				ToolName:   "read_files",
				Args:       map[string]any{"paths": []any{"a.go", "b.go"}},
			},
		}),
		message.NewToolMessage([]message.ToolResultPart{
			{
				ToolCallID: "call_1",
				ToolName:   "read_files",
				Result:     map[string]any{"ok": true, "contents": []any{"package a", "package b"}},
			},
		}),
	}

	roundTrip(t, msgs, false)
}

func TestRoundTrip_Compressed(t *testing.T) {
	msgs := []message.Message{
		message.NewAssistantMessage([]message.Part{
			message.ToolCallPart{
				ToolCallID: "call_9",
				ToolName:   "write_file",
				Args: map[string]any{
					"path":    "notes.txt",
					"content": "a fairly long body that compression actually shrinks, repeated. a fairly long body that compression actually shrinks, repeated.",
				},
			},
		}),
		message.NewToolMessage([]message.ToolResultPart{
			{ToolCallID: "call_9", ToolName: "write_file", Result: map[string]any{"ok": true}},
		}),
	}

	roundTrip(t, msgs, true)
}

func TestRoundTrip_MixedCompressionInOneFile(t *testing.T) {
	// Compression is a serialize-time strategy; a file may hold both plain
	// and compressed fences from different eras and must still parse.
	plain, err := Serialize([]message.Message{
		message.NewAssistantMessage([]message.Part{
			message.ToolCallPart{ToolCallID: "old", ToolName: "x", Args: map[string]any{"n": float64(1)}},
		}),
	}, false)
	if err != nil {
		t.Fatalf("Serialize(plain) failed: %v", err)
	}
	packed, err := Serialize([]message.Message{
		message.NewToolMessage([]message.ToolResultPart{
			{ToolCallID: "old", ToolName: "x", Result: map[string]any{"ok": true}},
		}),
	}, true)
	if err != nil {
		t.Fatalf("Serialize(compressed) failed: %v", err)
	}

	msgs, err := Parse(plain + "\n" + packed)
	if err != nil {
		t.Fatalf("Parse of mixed file failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
	if _, ok := msgs[0].Content.Parts[0].(message.ToolCallPart); !ok {
		t.Errorf("Message 0 part = %#v", msgs[0].Content.Parts[0])
	}
	if _, ok := msgs[1].Content.Parts[0].(message.ToolResultPart); !ok {
		t.Errorf("Message 1 part = %#v", msgs[1].Content.Parts[0])
	}
}

func TestRoundTrip_TextBetweenToolParts(t *testing.T) {
	roundTrip(t, []message.Message{
		message.NewAssistantMessage([]message.Part{
			message.TextPart{Text: "before"},
			message.ToolCallPart{ToolCallID: "1", ToolName: "list_files", Args: map[string]any{}},
			message.TextPart{Text: "after"},
		}),
	}, false)
}
