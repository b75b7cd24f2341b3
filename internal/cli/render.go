// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/chatfile/internal/util"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// Renderer pretty-prints model markdown for the terminal. Falls back to
// plain text when glamour cannot initialize (unusual TERM values).
type Renderer struct {
	tr *glamour.TermRenderer
}

// NewRenderer creates a renderer wrapped to the current terminal width.
func NewRenderer() *Renderer {
	width := TerminalWidth()
	if width > 100 {
		width = 100
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return &Renderer{}
	}
	return &Renderer{tr: tr}
}

// Markdown renders markdown text, or returns it unchanged on failure.
func (r *Renderer) Markdown(text string) string {
	if r.tr == nil {
		return text
	}
	out, err := r.tr.Render(text)
	if err != nil {
		return text
	}
	return out
}

// TruncateLine shortens a single line to the terminal width, accounting
// for wide runes.
func TruncateLine(line string) string {
	return util.TruncateWidth(line, TerminalWidth())
}
