// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
		expected string
	}{
		{"shorter than max", "hello", 10, "hello"},
		{"exact length", "hello", 5, "hello"},
		{"needs truncation", "hello world", 8, "hello..."},
		{"zero max", "hello", 0, ""},
		{"tiny max", "hello", 2, "he"},
		{"multibyte", "héllo wörld", 8, "héllo..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := TruncateRunes(tt.input, tt.maxRunes)
			if result != tt.expected {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q",
					tt.input, tt.maxRunes, result, tt.expected)
			}
		})
	}
}

func TestFirstLine(t *testing.T) {
	if got := FirstLine("one\ntwo\nthree"); got != "one" {
		t.Errorf("Expected 'one', got %q", got)
	}
	if got := FirstLine("no newline"); got != "no newline" {
		t.Errorf("Expected 'no newline', got %q", got)
	}
	if got := FirstLine(""); got != "" {
		t.Errorf("Expected empty, got %q", got)
	}
}

func TestResolveReal(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	if err := os.MkdirAll(target, 0755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}
	realTarget, err := filepath.EvalSymlinks(target)
	if err != nil {
		t.Fatal(err)
	}

	// Existing symlink resolves to its target.
	if got := ResolveReal(link); got != realTarget {
		t.Errorf("ResolveReal(link) = %q, want %q", got, realTarget)
	}

	// A not-yet-existing file under a symlinked parent canonicalizes
	// through it, even several levels deep.
	if got := ResolveReal(filepath.Join(link, "new.txt")); got != filepath.Join(realTarget, "new.txt") {
		t.Errorf("ResolveReal(link/new.txt) = %q", got)
	}
	if got := ResolveReal(filepath.Join(link, "a", "b.txt")); got != filepath.Join(realTarget, "a", "b.txt") {
		t.Errorf("ResolveReal(link/a/b.txt) = %q", got)
	}
}

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "out.txt")

	if err := AtomicWriteFile(path, []byte("first"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "first" {
		t.Errorf("Expected 'first', got %q", data)
	}

	// Overwrite replaces the whole file
	if err := AtomicWriteFile(path, []byte("second"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile overwrite failed: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "second" {
		t.Errorf("Expected 'second', got %q", data)
	}

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected 1 entry, found %d", len(entries))
	}
}
