// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session runs the conversation loop: re-read the markdown file,
// parse it, decide whose turn it is, and dispatch to the human or the
// model. The file on disk is the only conversation state; every turn
// starts from a fresh read and every mutation rewrites the file as a
// complete replacement. Collaborators (editor, confirmation prompt,
// model client) are accepted as interfaces so the loop stays testable
// without a terminal or a running model server.
package session
