// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Shared lipgloss styles for all CLI output.

package cli

import (
	"github.com/charmbracelet/lipgloss"
)

func init() {
	lipgloss.SetColorProfile(ColorProfile())
}

var (
	// TitleStyle for headers and the session banner.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")) // Cyan

	// PromptStyle for interactive prompts.
	PromptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")) // White

	// SuccessStyle for success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")). // Green
			Bold(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)

	// WarningStyle for warnings.
	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // Yellow/Orange

	// DimStyle for secondary information and hints.
	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")) // Dim gray

	// DiffAddStyle for added lines in patch previews.
	DiffAddStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")) // Green

	// DiffDelStyle for removed lines in patch previews.
	DiffDelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // Red
)
