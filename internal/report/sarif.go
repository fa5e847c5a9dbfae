package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// SARIF v2.1.0 types, the minimal subset code-scanning UIs consume.

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	InformationURI string      `json:"informationUri"`
	Version        string      `json:"version"`
	Rules          []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID               string           `json:"id"`
	Name             string           `json:"name,omitempty"`
	ShortDescription sarifMessage     `json:"shortDescription"`
	Help             *sarifMessage    `json:"help,omitempty"`
	HelpURI          string           `json:"helpUri,omitempty"`
	DefaultConfig    *sarifRuleConfig `json:"defaultConfiguration,omitempty"`
	Properties       *sarifRuleProps  `json:"properties,omitempty"`
}

type sarifRuleConfig struct {
	Level string `json:"level"`
}

type sarifRuleProps struct {
	Tags []string `json:"tags,omitempty"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
}

const (
	toolName    = "go-sec-audit"
	toolInfoURI = "https://github.com/ofri-peretz/go-sec-audit"
	toolVersion = "1.0.0"
)

// WriteSARIF emits a single SARIF run. Rule metadata is lifted from the
// findings themselves so the driver's rules array stays in step with what was
// actually reported.
func WriteSARIF(w io.Writer, findings []Finding) error {
	b, err := json.MarshalIndent(buildSARIF(findings), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sarif: %w", err)
	}
	b = append(b, '\n')
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("write sarif: %w", err)
	}
	return nil
}

func buildSARIF(findings []Finding) sarifLog {
	seen := map[string]bool{}
	var rules []sarifRule
	results := make([]sarifResult, 0, len(findings))

	for _, f := range findings {
		if !seen[f.RuleID] {
			seen[f.RuleID] = true
			rule := sarifRule{
				ID:               f.RuleID,
				Name:             f.Title,
				ShortDescription: sarifMessage{Text: f.Title},
				HelpURI:          toolInfoURI + "#" + strings.ToLower(f.RuleID),
				DefaultConfig:    &sarifRuleConfig{Level: sarifLevel(f.Severity)},
			}
			if f.Suggestion != "" {
				rule.Help = &sarifMessage{Text: f.Suggestion}
			}
			if f.CWE != "" {
				rule.Properties = &sarifRuleProps{Tags: []string{"security", f.CWE}}
			}
			rules = append(rules, rule)
		}

		results = append(results, sarifResult{
			RuleID:  f.RuleID,
			Level:   sarifLevel(f.Severity),
			Message: sarifMessage{Text: f.Message},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: f.Position.Filename},
					Region: &sarifRegion{
						StartLine:   f.Position.Line,
						StartColumn: f.Position.Column,
					},
				},
			}},
		})
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:           toolName,
				InformationURI: toolInfoURI,
				Version:        toolVersion,
				Rules:          rules,
			}},
			Results: results,
		}},
	}
}

func sarifLevel(sev Severity) string {
	switch sev {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}
