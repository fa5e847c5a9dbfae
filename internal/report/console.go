package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Lipgloss styles per severity, plus the file and remediation accents.
var (
	styleError      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	styleWarning    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	styleInfo       = lipgloss.NewStyle().Faint(true)
	styleFile       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	styleRule       = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	styleSuggestion = lipgloss.NewStyle().Faint(true)
	styleClean      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

// ConsoleWriter renders findings grouped by file for terminal consumption.
// Color is the caller's decision; pass false when stdout is not a TTY or the
// user asked for --no-color.
type ConsoleWriter struct {
	Color bool
}

// Write renders the findings listing and a closing summary line. Findings are
// expected pre-sorted; Write preserves their order.
func (c ConsoleWriter) Write(w io.Writer, findings []Finding) error {
	if len(findings) == 0 {
		_, err := fmt.Fprintln(w, c.render(styleClean, "✓ No security findings"))
		return err
	}

	files := 0
	lastFile := ""
	for _, f := range findings {
		if f.Position.Filename != lastFile {
			if lastFile != "" {
				fmt.Fprintln(w)
			}
			lastFile = f.Position.Filename
			files++
			fmt.Fprintln(w, c.render(styleFile, f.Position.Filename))
		}
		marker := c.marker(f.Severity)
		loc := fmt.Sprintf("%d:%d", f.Position.Line, f.Position.Column)
		fmt.Fprintf(w, "  %s %s %s %s %s\n",
			marker,
			loc,
			c.render(styleRule, f.RuleID),
			c.severityLabel(f.Severity),
			f.Message,
		)
		if f.Suggestion != "" {
			fmt.Fprintf(w, "      %s\n", c.render(styleSuggestion, "↳ "+f.Suggestion))
		}
	}

	fmt.Fprintln(w)
	_, err := fmt.Fprintln(w, summaryLine(findings, files))
	return err
}

func (c ConsoleWriter) marker(sev Severity) string {
	switch sev {
	case SeverityError:
		return c.render(styleError, "✗")
	case SeverityWarning:
		return c.render(styleWarning, "⚠")
	default:
		return c.render(styleInfo, "·")
	}
}

func (c ConsoleWriter) severityLabel(sev Severity) string {
	switch sev {
	case SeverityError:
		return c.render(styleError, string(sev))
	case SeverityWarning:
		return c.render(styleWarning, string(sev))
	default:
		return c.render(styleInfo, string(sev))
	}
}

func (c ConsoleWriter) render(style lipgloss.Style, s string) string {
	if !c.Color {
		return s
	}
	return style.Render(s)
}

func summaryLine(findings []Finding, files int) string {
	sum := Summarize(findings)
	var parts []string
	if n := sum.BySeverity[SeverityError]; n > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", n, plural(n, "error", "errors")))
	}
	if n := sum.BySeverity[SeverityWarning]; n > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", n, plural(n, "warning", "warnings")))
	}
	if n := sum.BySeverity[SeverityInfo]; n > 0 {
		parts = append(parts, fmt.Sprintf("%d info", n))
	}
	return fmt.Sprintf("%d %s (%s) in %d %s",
		sum.Total, plural(sum.Total, "finding", "findings"),
		strings.Join(parts, ", "),
		files, plural(files, "file", "files"))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
