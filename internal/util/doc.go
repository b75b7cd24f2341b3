// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for chatfile: rune- and
// width-aware string truncation, numeric formatting, and atomic file
// replacement used by every component that rewrites files on disk.
package util
