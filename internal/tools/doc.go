// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools provides the tool system the model calls into during a
// conversation: file listing, concurrent file reads, single-file writes,
// and patch application. Every execution produces a Result that marshals
// into a tool-result payload with an ok flag, so the model can react to
// partial failure instead of the whole turn aborting. Mutating tools go
// through a permission callback with a diff preview; "always allow"
// grants are scoped to the registry instance, never process-global.
package tools
