package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/trezcool/uniguide/console"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)

	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), false, true, false, false).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1).
			MarginRight(1)
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)

	maxCellWidth = 28
)

func ok(msg string) {
	fmt.Println(successStyle.Render("✔ " + msg))
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("✖ "+msg))
}

func bannerStyle(sev console.Severity) lipgloss.Style {
	switch sev {
	case console.Success:
		return successStyle
	case console.Error:
		return errorStyle
	}
	return accentStyle
}

func stateStyle(st console.State) lipgloss.Style {
	switch st {
	case console.Loading:
		return pendingStyle
	case console.Failed:
		return errorStyle
	case console.Loaded:
		return successStyle
	}
	return mutedStyle
}

// truncate cuts s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// table lays out rows under header, each column as wide as its widest cell.
func table(header []string, rows [][]string, selected int) []string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len([]rune(h))
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				if n := len([]rune(cell)); n > widths[i] {
					widths[i] = n
				}
			}
		}
	}
	for i := range widths {
		if widths[i] > maxCellWidth {
			widths[i] = maxCellWidth
		}
	}

	line := func(cells []string) string {
		parts := make([]string, len(widths))
		for i, w := range widths {
			var cell string
			if i < len(cells) {
				cell = truncate(cells[i], w)
			}
			parts[i] = cell + strings.Repeat(" ", w-len([]rune(cell)))
		}
		return strings.Join(parts, "  ")
	}

	out := make([]string, 0, len(rows)+1)
	out = append(out, titleStyle.Render("  "+line(header)))
	for i, row := range rows {
		if i == selected {
			out = append(out, selectedStyle.Render("> "+line(row)))
			continue
		}
		out = append(out, "  "+line(row))
	}
	return out
}
