// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ignore

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "wildcard file rule gets depth prefix",
			content: "*.log",
			want:    []string{"**/*.log"},
		},
		{
			name:    "anchored file rule",
			content: "/config.json",
			want:    []string{"config.json"},
		},
		{
			name:    "directory rule expands to two patterns",
			content: "build/",
			want:    []string{"**/build", "**/build/**"},
		},
		{
			name:    "bare name without wildcard or dot is a directory rule",
			content: "node_modules",
			want:    []string{"**/node_modules", "**/node_modules/**"},
		},
		{
			name:    "negation distributes over the expansion",
			content: "!dir/",
			want:    []string{"!**/dir", "!**/dir/**"},
		},
		{
			name:    "anchored directory rule",
			content: "/dist/",
			want:    []string{"dist", "dist/**"},
		},
		{
			name:    "empty input",
			content: "",
			want:    nil,
		},
		{
			name:    "comments and blanks dropped",
			content: "# build outputs\n\n*.tmp\n  \n# done\n",
			want:    []string{"**/*.tmp"},
		},
		{
			name:    "surrounding whitespace trimmed",
			content: "  *.bak  ",
			want:    []string{"**/*.bak"},
		},
		{
			name:    "multiple lines in order",
			content: "*.log\n/config.json\nbuild/",
			want:    []string{"**/*.log", "config.json", "**/build", "**/build/**"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compile(tt.content)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Compile(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestMatcher_Excluded(t *testing.T) {
	m := NewMatcher(Compile("*.log\nbuild/\n/config.json\n!important.log"))

	tests := []struct {
		path string
		want bool
	}{
		{"app.log", true},
		{"deep/nested/app.log", true},
		{"build", true},
		{"build/out.bin", true},
		{"sub/build/out.bin", true},
		{"config.json", true},
		{"important.log", false},
		{"main.go", false},
	}
	for _, tt := range tests {
		if got := m.Excluded(tt.path); got != tt.want {
			t.Errorf("Excluded(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestMatcher_NilExcludesNothing(t *testing.T) {
	var m *Matcher
	if m.Excluded("anything") {
		t.Error("nil matcher should exclude nothing")
	}
}

func TestCache_RecompilesOnModTimeChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".gitignore")
	require.NoError(t, os.WriteFile(path, []byte("*.log"), 0644))

	c := NewCache(path)
	patterns, err := c.Patterns()
	require.NoError(t, err)
	require.Equal(t, []string{"**/*.log"}, patterns)

	// Rewrite with a bumped mtime so the change is observable even on
	// coarse-resolution filesystems.
	require.NoError(t, os.WriteFile(path, []byte("*.tmp"), 0644))
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	patterns, err = c.Patterns()
	require.NoError(t, err)
	require.Equal(t, []string{"**/*.tmp"}, patterns)
}

func TestCache_MissingFileIsEmpty(t *testing.T) {
	c := NewCache(filepath.Join(t.TempDir(), "absent"))

	patterns, err := c.Patterns()
	require.NoError(t, err)
	require.Empty(t, patterns)

	m, err := c.Matcher()
	require.NoError(t, err)
	require.False(t, m.Excluded("anything.log"))
}
