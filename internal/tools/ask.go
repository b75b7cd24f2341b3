// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"strings"
)

// UserPrompter supplies a free-form answer typed by the human. A failed
// prompt (no terminal, closed input) is reported inside the tool result
// so the model can route around it.
type UserPrompter interface {
	Input(ctx context.Context, prompt string) (string, error)
}

// AskUserTool lets the model put a question directly to the human and
// receive the typed answer. Runs without confirmation: the prompt itself
// is the interaction.
func AskUserTool(prompter UserPrompter) *Tool {
	return &Tool{
		Name:        "ask_user",
		Description: "Ask the user a question and return their typed answer.",
		Schema: Schema{Parameters: []Parameter{
			{Name: "prompt", Type: "string", Required: true, Description: "Question to show the user"},
		}},
		Permission:  PermissionAuto,
		Interactive: true,
		Executor:    &askUserExecutor{prompter: prompter},
	}
}

type askUserExecutor struct {
	prompter UserPrompter
}

func (a *askUserExecutor) Execute(ctx context.Context, params map[string]any) (Result, error) {
	prompt, _ := params["prompt"].(string)
	if strings.TrimSpace(prompt) == "" {
		return Result{Success: false, Error: "prompt must be a non-empty string"}, nil
	}

	answer, err := a.prompter.Input(ctx, prompt)
	if err != nil {
		return Result{Success: false, Error: "user input failed: " + err.Error()}, nil
	}
	return Result{Success: true, Output: answer}, nil
}
