package report

import (
	"encoding/json"
	"fmt"
	"io"
)

// jsonEnvelope is the stable machine-readable shape. Findings keep their
// sorted order; consumers diff these byte-for-byte between runs.
type jsonEnvelope struct {
	Findings []Finding `json:"findings"`
	Summary  Summary   `json:"summary"`
}

// WriteJSON emits the findings envelope with indentation.
func WriteJSON(w io.Writer, findings []Finding) error {
	env := jsonEnvelope{Findings: findings, Summary: Summarize(findings)}
	if env.Findings == nil {
		env.Findings = []Finding{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("encode findings: %w", err)
	}
	return nil
}
