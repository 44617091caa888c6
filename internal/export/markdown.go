package export

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"ifcmetrics/internal/report"
)

// meta is the markdown frontmatter.
type meta struct {
	Schema  string        `yaml:"schema,omitempty"`
	Tags    []string      `yaml:"tags"`
	Reports []reportEntry `yaml:"reports"`
}

type reportEntry struct {
	Kind   report.Kind    `yaml:"kind"`
	Count  int            `yaml:"count"`
	Totals []report.Total `yaml:"totals,omitempty"`
}

// buildMarkdown renders reports as one markdown document.
func buildMarkdown(reports []*report.Report) ([]byte, error) {
	m := meta{Tags: []string{"ifcmetrics/report"}}
	var b strings.Builder
	for _, rep := range reports {
		if m.Schema == "" {
			m.Schema = rep.Schema
		}
		m.Reports = append(m.Reports, reportEntry{Kind: rep.Kind, Count: rep.Count, Totals: rep.Totals})
		m.Tags = append(m.Tags, "ifcmetrics/"+string(rep.Kind))
		writeMarkdownReport(&b, rep)
	}
	if heuristicUsed(reports) {
		b.WriteString("\\" + heuristicNote + "\n")
	}
	return writeFrontmatter(m, b.String())
}

func writeMarkdownReport(b *strings.Builder, rep *report.Report) {
	fmt.Fprintf(b, "# %s\n\n", rep.Title)
	fmt.Fprintf(b, "- **Count**: %d\n", rep.Count)
	for _, t := range rep.Totals {
		fmt.Fprintf(b, "- **Total %s**: %.2f %s\n", label(t.Field), t.Value, t.Unit)
	}
	b.WriteString("\n")

	if len(rep.Records) == 0 {
		b.WriteString("_None found._\n\n")
		return
	}

	cols := columns(rep.Records)
	b.WriteString("| ID | Name | GlobalId |")
	for _, c := range cols {
		b.WriteString(" " + c.header() + " |")
	}
	b.WriteString("\n|----|------|----------|")
	for range cols {
		b.WriteString("------|")
	}
	b.WriteString("\n")

	for _, r := range rep.Records {
		fmt.Fprintf(b, "| %d | %s | %s |", r.ID, escapeCell(r.Name), escapeCell(r.GlobalID))
		for _, c := range cols {
			b.WriteString(" " + escapeCell(cell(r, c.name)) + " |")
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// escapeCell keeps a value from breaking a markdown table row.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "*", `\*`)
	return strings.ReplaceAll(s, "\n", " ")
}

// ---------------------------------------------------------------------------
// Frontmatter
// ---------------------------------------------------------------------------

const delim = "---\n"

// writeFrontmatter marshals v as YAML between --- delimiters, followed by
// body.
func writeFrontmatter(v any, body string) ([]byte, error) {
	fm, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("frontmatter: marshal: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(delim)
	buf.Write(fm)
	buf.WriteString(delim)
	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
	}
	return buf.Bytes(), nil
}

// SplitFrontmatter separates a markdown document into its YAML frontmatter
// and body. The document must open with a --- line.
func SplitFrontmatter(data []byte) (frontmatter, body []byte, err error) {
	if !bytes.HasPrefix(data, []byte(delim)) {
		return nil, nil, fmt.Errorf("frontmatter: missing opening --- delimiter")
	}
	rest := data[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, nil, fmt.Errorf("frontmatter: missing closing --- delimiter")
	}
	return rest[:idx+1], bytes.TrimPrefix(rest[idx+1+len(delim):], []byte("\n")), nil
}
