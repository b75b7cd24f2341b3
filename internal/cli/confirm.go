// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// confirm.go - Interactive confirmation prompts.
//
// One pattern for every approval in the session: show the preview if
// there is one, ask y/n/a, and treat an aborted prompt as a refusal.

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/chatfile/internal/tools"
)

// =============================================================================
// CONFIRMER COLLABORATOR
// =============================================================================

// PromptConfirmer asks y/n/a questions on the terminal.
type PromptConfirmer struct{}

// Confirm shows the preview and prompts the user. Answers:
//
//	y / yes - allow once
//	a / always - allow for the rest of the session
//	anything else - deny
func (c *PromptConfirmer) Confirm(ctx context.Context, prompt, preview string) (tools.Decision, error) {
	if err := ctx.Err(); err != nil {
		return tools.DecisionDeny, err
	}
	if !IsTTY() {
		return tools.DecisionDeny, errors.New("stdin is not a terminal; cannot confirm interactively")
	}

	if preview != "" {
		fmt.Println(renderPreview(preview))
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	styled := PromptStyle.Render(prompt) + DimStyle.Render(" [y/n/a] ")
	answer, err := line.Prompt(styled)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return tools.DecisionDeny, nil
		}
		return tools.DecisionDeny, err
	}
	return parseDecision(answer), nil
}

// parseDecision maps a typed answer to a decision. Unrecognized input
// denies; mutations should never ride on a typo.
func parseDecision(answer string) tools.Decision {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return tools.DecisionAllow
	case "a", "always":
		return tools.DecisionAlways
	default:
		return tools.DecisionDeny
	}
}

// renderPreview colors diff lines in a preview block.
func renderPreview(preview string) string {
	lines := strings.Split(preview, "\n")
	for i, l := range lines {
		switch {
		case strings.HasPrefix(l, "+") && !strings.HasPrefix(l, "+++"):
			lines[i] = DiffAddStyle.Render(l)
		case strings.HasPrefix(l, "-") && !strings.HasPrefix(l, "---"):
			lines[i] = DiffDelStyle.Render(l)
		}
	}
	return strings.Join(lines, "\n")
}
