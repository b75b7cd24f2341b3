// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package message

// =============================================================================
// CONTENT PART UNION
// =============================================================================

// PartKind discriminates the content-part union.
type PartKind int

const (
	PartKindText PartKind = iota
	PartKindFile
	PartKindImage
	PartKindToolCall
	PartKindToolResult
)

// String returns the string representation of a part kind.
func (k PartKind) String() string {
	switch k {
	case PartKindText:
		return "text"
	case PartKindFile:
		return "file"
	case PartKindImage:
		return "image"
	case PartKindToolCall:
		return "tool-call"
	case PartKindToolResult:
		return "tool-result"
	default:
		return "unknown"
	}
}

// Part is one element of a multi-part message content. The union is closed:
// the five concrete types below are the only implementations.
type Part interface {
	Kind() PartKind
}

// TextPart is a run of plain markdown text.
type TextPart struct {
	Text string
}

// FilePart is an inline reference to a file on disk.
type FilePart struct {
	Path string
}

// ImagePart is an inline reference to an image on disk.
type ImagePart struct {
	Path string
}

// ToolCallPart is a tool invocation requested by the assistant.
// ToolCallID correlates the call with its later ToolResultPart; enforcing
// at most one result per id is the caller's contract, not this package's.
type ToolCallPart struct {
	ToolCallID string
	ToolName   string
	Args       map[string]any
}

// ToolResultPart is the outcome of one tool call, carried by a tool message.
type ToolResultPart struct {
	ToolCallID string
	ToolName   string
	Result     map[string]any
}

func (TextPart) Kind() PartKind       { return PartKindText }
func (FilePart) Kind() PartKind       { return PartKindFile }
func (ImagePart) Kind() PartKind      { return PartKindImage }
func (ToolCallPart) Kind() PartKind   { return PartKindToolCall }
func (ToolResultPart) Kind() PartKind { return PartKindToolResult }
