// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// =============================================================================
// EDITOR COLLABORATOR
// =============================================================================

// EditorSpawner opens the conversation file in the configured editor,
// attached to the terminal, and waits for the process to exit.
type EditorSpawner struct {
	// Command is the editor command line, e.g. "vi" or "code --wait".
	Command string
}

// Open runs the editor on path. Terminal editors block until the user
// closes them; GUI editors that fork return immediately, which the
// session handles by waiting on the file instead.
func (e *EditorSpawner) Open(ctx context.Context, path string) error {
	words := strings.Fields(e.Command)
	if len(words) == 0 {
		return fmt.Errorf("empty editor command")
	}

	cmd := exec.CommandContext(ctx, words[0], append(words[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("editor %q: %w", e.Command, err)
	}
	return nil
}
