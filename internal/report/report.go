package report

import (
	"fmt"
	"sort"
	"strings"
)

// Severity indicates how severe a finding is.
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Rank orders severities so thresholds can be compared numerically.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether s is as severe as min.
func (s Severity) AtLeast(min Severity) bool {
	return s.Rank() >= min.Rank()
}

// ParseSeverity accepts the canonical names case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INFO":
		return SeverityInfo, nil
	case "WARNING", "WARN":
		return SeverityWarning, nil
	case "ERROR":
		return SeverityError, nil
	}
	return "", fmt.Errorf("unknown severity %q (want INFO, WARNING or ERROR)", s)
}

// Position indicates where in source code a finding occurred.
type Position struct {
	Filename string `json:"filename"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// Finding is a single static analysis finding with its catalog metadata
// resolved. MessageID is the stable catalog identifier; Message is the
// rendered text.
type Finding struct {
	RuleID     string   `json:"ruleId"`
	Title      string   `json:"title"`
	Severity   Severity `json:"severity"`
	CWE        string   `json:"cwe,omitempty"`
	MessageID  string   `json:"messageId"`
	Message    string   `json:"message"`
	Position   Position `json:"position"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Sort orders findings by file, line, column and rule ID so repeated runs over
// unchanged sources produce identical output.
func Sort(findings []Finding) {
	sort.Slice(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Position.Filename != b.Position.Filename {
			return a.Position.Filename < b.Position.Filename
		}
		if a.Position.Line != b.Position.Line {
			return a.Position.Line < b.Position.Line
		}
		if a.Position.Column != b.Position.Column {
			return a.Position.Column < b.Position.Column
		}
		return a.RuleID < b.RuleID
	})
}

// Summary aggregates finding counts for the output writers.
type Summary struct {
	Total      int              `json:"total"`
	BySeverity map[Severity]int `json:"bySeverity"`
	ByRule     map[string]int   `json:"byRule"`
}

func Summarize(findings []Finding) Summary {
	s := Summary{
		BySeverity: map[Severity]int{},
		ByRule:     map[string]int{},
	}
	for _, f := range findings {
		s.Total++
		s.BySeverity[f.Severity]++
		s.ByRule[f.RuleID]++
	}
	return s
}

// MaxSeverity returns the most severe level present, or "" when empty.
func MaxSeverity(findings []Finding) Severity {
	var max Severity
	for _, f := range findings {
		if f.Severity.Rank() > max.Rank() {
			max = f.Severity
		}
	}
	return max
}
