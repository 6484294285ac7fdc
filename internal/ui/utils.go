package ui

import (
	"os"

	"golang.org/x/term"
)

// IsInteractive checks if stdout is a terminal.
// This is useful to avoid styling or sizing output that is piped.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// TerminalWidth returns the width of stdout, or 0 when it is not a terminal.
func TerminalWidth() int {
	if !IsInteractive() {
		return 0
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return w
}

// ColumnBudget splits a terminal width across n columns for Table.MaxWidth.
// It returns 0 (no limit) when the width is unknown.
func ColumnBudget(width, n int) int {
	if width <= 0 || n <= 0 {
		return 0
	}
	budget := width / n * 2
	if budget < 12 {
		budget = 12
	}
	return budget
}
