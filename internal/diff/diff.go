// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	"fmt"
	"strings"
)

// =============================================================================
// TYPES
// =============================================================================

// Op classifies a diff line.
type Op int

const (
	OpContext Op = iota
	OpAdd
	OpDelete
)

// Prefix returns the unified-diff marker for the op.
func (o Op) Prefix() string {
	switch o {
	case OpAdd:
		return "+"
	case OpDelete:
		return "-"
	default:
		return " "
	}
}

// Line is one line of a computed diff.
type Line struct {
	Op      Op
	Text    string
	OldLine int // 1-based line number in the old version, 0 for additions
	NewLine int // 1-based line number in the new version, 0 for deletions
}

// Hunk is a contiguous run of changes plus surrounding context.
type Hunk struct {
	OldStart, OldCount int
	NewStart, NewCount int
	Lines              []Line
}

// Diff is the full comparison of one file's old and new content.
type Diff struct {
	Path      string
	Hunks     []Hunk
	Additions int
	Deletions int
}

// contextLines is how much unchanged context each hunk carries on both sides.
const contextLines = 3

// =============================================================================
// COMPUTATION
// =============================================================================

// Compute diffs oldContent against newContent line by line using an
// LCS-based comparison and groups the changes into hunks.
func Compute(path, oldContent, newContent string) *Diff {
	oldLines := splitLines(oldContent)
	newLines := splitLines(newContent)

	lines := compare(oldLines, newLines)

	d := &Diff{Path: path, Hunks: hunks(lines)}
	for _, l := range lines {
		switch l.Op {
		case OpAdd:
			d.Additions++
		case OpDelete:
			d.Deletions++
		}
	}
	return d
}

// HasChanges reports whether the diff contains any added or deleted lines.
func (d *Diff) HasChanges() bool {
	return d.Additions > 0 || d.Deletions > 0
}

// Summary is a one-line description like "m.go: +3 -1".
func (d *Diff) Summary() string {
	if !d.HasChanges() {
		return d.Path + ": no changes"
	}
	return fmt.Sprintf("%s: +%d -%d", d.Path, d.Additions, d.Deletions)
}

// Unified renders the diff in standard unified format.
func (d *Diff) Unified() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n+++ b/%s\n", d.Path, d.Path)
	for _, h := range d.Hunks {
		fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
		for _, l := range h.Lines {
			sb.WriteString(l.Op.Prefix())
			sb.WriteString(l.Text)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	// A trailing newline produces one empty trailing element; drop it so
	// "a\n" counts as one line.
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// compare walks both line slices guided by their longest common
// subsequence, emitting deletions and additions for everything off it.
func compare(oldLines, newLines []string) []Line {
	common := lcs(oldLines, newLines)

	var out []Line
	oi, ni, ci := 0, 0, 0
	for oi < len(oldLines) || ni < len(newLines) {
		onCommon := ci < len(common) &&
			oi < len(oldLines) && ni < len(newLines) &&
			oldLines[oi] == common[ci] && newLines[ni] == common[ci]

		switch {
		case onCommon:
			out = append(out, Line{Op: OpContext, Text: oldLines[oi], OldLine: oi + 1, NewLine: ni + 1})
			oi, ni, ci = oi+1, ni+1, ci+1
		case oi < len(oldLines) && (ci >= len(common) || oldLines[oi] != common[ci]):
			out = append(out, Line{Op: OpDelete, Text: oldLines[oi], OldLine: oi + 1})
			oi++
		default:
			out = append(out, Line{Op: OpAdd, Text: newLines[ni], NewLine: ni + 1})
			ni++
		}
	}
	return out
}

func lcs(a, b []string) []string {
	m, n := len(a), len(b)
	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else if dp[i-1][j] >= dp[i][j-1] {
				dp[i][j] = dp[i-1][j]
			} else {
				dp[i][j] = dp[i][j-1]
			}
		}
	}

	seq := make([]string, 0, dp[m][n])
	for i, j := m, n; i > 0 && j > 0; {
		switch {
		case a[i-1] == b[j-1]:
			seq = append(seq, a[i-1])
			i, j = i-1, j-1
		case dp[i-1][j] > dp[i][j-1]:
			i--
		default:
			j--
		}
	}
	for l, r := 0, len(seq)-1; l < r; l, r = l+1, r-1 {
		seq[l], seq[r] = seq[r], seq[l]
	}
	return seq
}

// hunks groups diff lines into hunks carrying contextLines of unchanged
// text on each side of every change run.
func hunks(lines []Line) []Hunk {
	// Indexes of changed lines.
	var changed []int
	for i, l := range lines {
		if l.Op != OpContext {
			changed = append(changed, i)
		}
	}
	if len(changed) == 0 {
		return nil
	}

	var out []Hunk
	start := maxInt(0, changed[0]-contextLines)
	end := minInt(len(lines), changed[0]+contextLines+1)

	flush := func(lo, hi int) {
		h := Hunk{Lines: append([]Line(nil), lines[lo:hi]...)}
		for _, l := range h.Lines {
			if l.OldLine > 0 {
				if h.OldStart == 0 {
					h.OldStart = l.OldLine
				}
				h.OldCount++
			}
			if l.NewLine > 0 {
				if h.NewStart == 0 {
					h.NewStart = l.NewLine
				}
				h.NewCount++
			}
		}
		out = append(out, h)
	}

	for _, idx := range changed[1:] {
		lo := maxInt(0, idx-contextLines)
		if lo <= end {
			// Overlapping context: extend the current hunk.
			end = minInt(len(lines), idx+contextLines+1)
			continue
		}
		flush(start, end)
		start = lo
		end = minInt(len(lines), idx+contextLines+1)
	}
	flush(start, end)
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
