// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli is the terminal front end: argument parsing, the editor
// and confirmation collaborators, markdown rendering of model output,
// and the wiring that assembles a session from configuration.
package cli
