// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ignore compiles .gitignore-style rule files into glob pattern
// lists used to exclude paths from file enumeration. Compilation is a pure
// text transform; matching against the compiled patterns is delegated to
// the go-gitignore matcher. A session-scoped Cache keyed by modification
// time avoids recompiling an unchanged ignore file on every listing.
package ignore
