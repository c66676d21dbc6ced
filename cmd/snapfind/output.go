// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Snapfind Contributors

package main

import "github.com/charmbracelet/lipgloss"

// Shared lipgloss styles for command output.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
)
