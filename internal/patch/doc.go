// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package patch implements the constrained patch language the model uses
// to propose file mutations: a column-anchored plain-text block format and
// an equivalent structured-object encoding, both parsing to the same
// FilePatch union, plus the applier that performs the mutations under a
// project-root traversal guard.
//
// Parse and apply are exposed separately so a write tool can validate a
// patch before committing to it.
package patch
