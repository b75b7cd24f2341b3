// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	"strings"
	"testing"
)

func TestCompute_NewFile(t *testing.T) {
	d := Compute("new.txt", "", "line1\nline2\n")

	if d.Additions != 2 || d.Deletions != 0 {
		t.Errorf("Stats = +%d -%d, want +2 -0", d.Additions, d.Deletions)
	}
	if len(d.Hunks) != 1 {
		t.Fatalf("Expected 1 hunk, got %d", len(d.Hunks))
	}
	for _, l := range d.Hunks[0].Lines {
		if l.Op != OpAdd {
			t.Errorf("Expected only additions, got op %v for %q", l.Op, l.Text)
		}
	}
}

func TestCompute_DeletedFile(t *testing.T) {
	d := Compute("gone.txt", "a\nb\n", "")
	if d.Additions != 0 || d.Deletions != 2 {
		t.Errorf("Stats = +%d -%d, want +0 -2", d.Additions, d.Deletions)
	}
}

func TestCompute_NoChanges(t *testing.T) {
	d := Compute("same.txt", "a\nb\n", "a\nb\n")
	if d.HasChanges() {
		t.Error("Expected no changes")
	}
	if len(d.Hunks) != 0 {
		t.Errorf("Expected no hunks, got %d", len(d.Hunks))
	}
	if got := d.Summary(); got != "same.txt: no changes" {
		t.Errorf("Summary() = %q", got)
	}
}

func TestCompute_Modified(t *testing.T) {
	old := "one\ntwo\nthree\n"
	new := "one\n2\nthree\n"
	d := Compute("m.txt", old, new)

	if d.Additions != 1 || d.Deletions != 1 {
		t.Errorf("Stats = +%d -%d, want +1 -1", d.Additions, d.Deletions)
	}
	if got := d.Summary(); got != "m.txt: +1 -1" {
		t.Errorf("Summary() = %q", got)
	}
}

func TestUnified_Format(t *testing.T) {
	d := Compute("f.go", "a\nb\nc\n", "a\nB\nc\n")
	got := d.Unified()

	if !strings.HasPrefix(got, "--- a/f.go\n+++ b/f.go\n") {
		t.Errorf("Missing header:\n%s", got)
	}
	for _, want := range []string{"@@ -1,3 +1,3 @@", " a\n", "-b\n", "+B\n", " c\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("Unified() missing %q:\n%s", want, got)
		}
	}
}

func TestCompute_SeparateHunks(t *testing.T) {
	// Two edits far enough apart for distinct hunks.
	var oldSB, newSB strings.Builder
	for i := 0; i < 30; i++ {
		line := "ctx"
		oldSB.WriteString(line + "\n")
		newSB.WriteString(line + "\n")
	}
	oldText := "first\n" + oldSB.String() + "last\n"
	newText := "FIRST\n" + newSB.String() + "LAST\n"

	d := Compute("two.txt", oldText, newText)
	if len(d.Hunks) != 2 {
		t.Fatalf("Expected 2 hunks, got %d", len(d.Hunks))
	}
	if d.Hunks[0].OldStart != 1 {
		t.Errorf("First hunk OldStart = %d, want 1", d.Hunks[0].OldStart)
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"a\n", 1},
		{"a\nb", 2},
		{"a\nb\n", 2},
		{"a\n\nb\n", 3},
	}
	for _, tt := range tests {
		if got := len(splitLines(tt.in)); got != tt.want {
			t.Errorf("splitLines(%q) has %d lines, want %d", tt.in, got, tt.want)
		}
	}
}
