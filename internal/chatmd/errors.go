// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatmd

import "github.com/jeranaias/chatfile/internal/util"

// MalformedInputError is a fatal parse error: a tool fence assigned to the
// wrong role, or a fence body failing schema validation. A corrupted
// conversation must never reach the model, so these are surfaced
// immediately and never coerced.
type MalformedInputError struct {
	Line   int    // 1-based line of the offending fence
	Reason string
}

func (e *MalformedInputError) Error() string {
	return "malformed conversation at line " + util.IntToStr(e.Line) + ": " + e.Reason
}

// SerializeError reports a content shape the serializer cannot write back
// in a form it could parse identically.
type SerializeError struct {
	Reason string
}

func (e *SerializeError) Error() string {
	return "cannot serialize conversation: " + e.Reason
}
