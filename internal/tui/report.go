package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

type styles struct {
	title, selected, good, bad, warn, help lipgloss.Style
}

func newStyles(noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{title: plain.Bold(true), selected: plain.Bold(true), good: plain, bad: plain, warn: plain, help: plain}
	}
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		good:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		bad:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		warn:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		help:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

func tableStyles(noColor bool) table.Styles {
	s := table.DefaultStyles()
	if noColor {
		return s
	}
	s.Header = s.Header.Foreground(lipgloss.Color("252")).Bold(true)
	return s
}

// reportColumns spreads the free width over the text columns.
func reportColumns(width int) []table.Column {
	fixed := 4 + 12 + 10
	free := max(width-fixed-8, 30)
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "Question", Width: free / 2},
		{Title: "Chosen", Width: free / 4},
		{Title: "Correct", Width: free - free/2 - free/4},
		{Title: "Source", Width: 12},
		{Title: "Result", Width: 10},
	}
}

// ReportRows turns report records into table rows.
func ReportRows(rep quiz.Report) []table.Row {
	rows := make([]table.Row, 0, len(rep.Rows))
	for _, r := range rep.Rows {
		// ordinal, question, chosen, correct, provenance, result
		rows = append(rows, table.Row{r[0], r[1], r[2], r[3], r[4], r[5]})
	}
	return rows
}

// RenderReport renders the report as a static table for non-interactive
// output.
func RenderReport(rep quiz.Report, width int, noColor bool) string {
	t := table.New(
		table.WithColumns(reportColumns(width)),
		table.WithRows(ReportRows(rep)),
		table.WithHeight(len(rep.Rows)+1),
		table.WithFocused(false),
	)
	t.SetStyles(tableStyles(noColor))
	var sb strings.Builder
	fmt.Fprintf(&sb, "Score: %d/%d\n", rep.Score, rep.Total)
	sb.WriteString(t.View())
	return sb.String()
}
