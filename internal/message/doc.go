// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package message contains the typed data structures for a conversation:
// roles, messages, and the content-part union (text, file and image
// references, tool calls, tool results).
//
// A conversation is an ordered []Message. Content is either a bare string
// or an ordered part sequence; a sequence holding exactly one text part
// canonicalizes to the bare string form, which is what makes the markdown
// round trip idempotent.
package message
