package export

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ifcmetrics/internal/report"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	nameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	totalStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

// buildText renders reports as a console listing.
func buildText(reports []*report.Report) string {
	var b strings.Builder
	for i, rep := range reports {
		if i > 0 {
			b.WriteString("\n")
		}
		writeTextReport(&b, rep)
	}
	if heuristicUsed(reports) {
		b.WriteString("\n" + dimStyle.Render(heuristicNote) + "\n")
	}
	return b.String()
}

func writeTextReport(b *strings.Builder, rep *report.Report) {
	title := rep.Title
	if rep.Schema != "" {
		title += " (" + rep.Schema + ")"
	}
	b.WriteString(titleStyle.Render(title) + "\n")
	fmt.Fprintf(b, "Count: %d\n", rep.Count)

	for _, r := range rep.Records {
		b.WriteString("\n" + nameStyle.Render(r.Name) + fmt.Sprintf(" #%d", r.ID))
		if r.GlobalID != "" {
			b.WriteString("  " + r.GlobalID)
		}
		b.WriteString("\n")
		for _, f := range r.Fields {
			v := cell(r, f.Name)
			if f.Unit != "" && f.Value.IsNumber() {
				v += " " + f.Unit
			}
			fmt.Fprintf(b, "  %-15s %s\n", label(f.Name)+":", v)
		}
	}

	if len(rep.Totals) > 0 {
		b.WriteString("\n")
	}
	for _, t := range rep.Totals {
		line := fmt.Sprintf("Total %s: %.2f", label(t.Field), t.Value)
		if t.Unit != "" {
			line += " " + t.Unit
		}
		b.WriteString(totalStyle.Render(line) + "\n")
	}
}

// label turns a field name into display text.
func label(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}
