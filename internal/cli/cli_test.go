// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatfile/internal/tools"
)

func TestParseArgs_FlagsAndPositional(t *testing.T) {
	args, err := ParseArgs([]string{"--model", "llama3.1:8b", "--compress", "--url=http://h:1234", "chat.md"})
	require.NoError(t, err)
	require.Equal(t, "llama3.1:8b", args.Flag("model"))
	require.Equal(t, "http://h:1234", args.Flag("url"))
	require.True(t, args.BoolFlag("compress"))
	require.Equal(t, "chat.md", args.File())
}

func TestParseArgs_MissingValue(t *testing.T) {
	_, err := ParseArgs([]string{"--model"})
	require.Error(t, err)

	_, err = ParseArgs([]string{"--model", "--compress"})
	require.Error(t, err)
}

func TestParseArgs_NoFile(t *testing.T) {
	args, err := ParseArgs([]string{"--compress"})
	require.NoError(t, err)
	require.Equal(t, "", args.File())
}

func TestParseDecision(t *testing.T) {
	tests := []struct {
		answer string
		want   tools.Decision
	}{
		{"y", tools.DecisionAllow},
		{"Y", tools.DecisionAllow},
		{"yes", tools.DecisionAllow},
		{" yes ", tools.DecisionAllow},
		{"a", tools.DecisionAlways},
		{"always", tools.DecisionAlways},
		{"n", tools.DecisionDeny},
		{"no", tools.DecisionDeny},
		{"", tools.DecisionDeny},
		{"sure", tools.DecisionDeny},
	}
	for _, tt := range tests {
		if got := parseDecision(tt.answer); got != tt.want {
			t.Errorf("parseDecision(%q) = %v, want %v", tt.answer, got, tt.want)
		}
	}
}

func TestRenderPreview_PassesThroughHeaders(t *testing.T) {
	preview := "--- a/f\n+++ b/f\n+added\n-removed\n context"
	out := renderPreview(preview)
	// Headers are not recolored; content lines may carry ANSI codes but
	// keep their text.
	require.Contains(t, out, "--- a/f")
	require.Contains(t, out, "+++ b/f")
	require.Contains(t, out, "added")
	require.Contains(t, out, "removed")
}
