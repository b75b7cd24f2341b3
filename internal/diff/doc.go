// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff computes line diffs between two versions of a file. It
// backs the previews shown to the human before a proposed file mutation
// is confirmed.
package diff
