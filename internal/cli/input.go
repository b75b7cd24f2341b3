// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"

	"github.com/peterh/liner"
)

// =============================================================================
// USER INPUT COLLABORATOR
// =============================================================================

// LineInput collects one line of free-form text from the terminal. It
// backs the ask_user tool.
type LineInput struct{}

// Input shows the prompt and returns the typed answer. Ctrl-C aborts
// the question without failing the session.
func (l *LineInput) Input(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !IsTTY() {
		return "", errors.New("stdin is not a terminal; cannot prompt for input")
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	answer, err := line.Prompt(PromptStyle.Render(prompt) + " ")
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", errors.New("user aborted the prompt")
		}
		return "", err
	}
	return answer, nil
}
