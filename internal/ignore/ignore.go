// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ignore

import (
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// =============================================================================
// PATTERN COMPILER
// =============================================================================

// Compile converts .gitignore-style content into a flat list of glob
// patterns. Blank lines and # comments are dropped. A leading ! marks
// negation and is reapplied to every pattern the line expands to. A leading
// / anchors the rule to the root; unanchored rules get an implicit **/
// prefix so they match at any depth. Directory rules (trailing slash, or no
// * and no . in the line) expand to two patterns: the bare path and the
// path with /** appended. File rules expand to exactly one pattern.
func Compile(content string) []string {
	var patterns []string
	for _, raw := range strings.Split(content, "\n") {
		patterns = append(patterns, compileLine(raw)...)
	}
	return patterns
}

func compileLine(raw string) []string {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	prefix := ""
	if strings.HasPrefix(line, "!") {
		prefix = "!"
		line = line[1:]
		if line == "" {
			return nil
		}
	}

	dirRule := strings.HasSuffix(line, "/") ||
		(!strings.Contains(line, "*") && !strings.Contains(line, "."))
	line = strings.TrimSuffix(line, "/")
	if line == "" {
		return nil
	}

	if strings.HasPrefix(line, "/") {
		line = line[1:]
	} else {
		line = "**/" + line
	}

	if dirRule {
		return []string{prefix + line, prefix + line + "/**"}
	}
	return []string{prefix + line}
}

// =============================================================================
// MATCHER
// =============================================================================

// Matcher answers whether a relative path is excluded by a compiled
// pattern set.
type Matcher struct {
	gi *gitignore.GitIgnore
}

// NewMatcher builds a matcher over already-compiled patterns. A nil or
// empty pattern set yields a matcher that excludes nothing.
func NewMatcher(patterns []string) *Matcher {
	return &Matcher{gi: gitignore.CompileIgnoreLines(patterns...)}
}

// Excluded reports whether path (relative, slash-separated) is ignored.
func (m *Matcher) Excluded(path string) bool {
	if m == nil || m.gi == nil {
		return false
	}
	return m.gi.MatchesPath(path)
}
