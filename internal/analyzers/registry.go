package analyzers

import (
	"strings"

	"golang.org/x/tools/go/analysis"

	"github.com/ofri-peretz/go-sec-audit/internal/report"
)

// Rule identifiers, grouped by concern.
const (
	// Injection sinks fed by untrusted input
	RuleSQLInjectionID    = "SEC001"
	RuleCmdInjectionID    = "SEC002"
	RulePathTraversalID   = "SEC003"
	RuleFormatInjectionID = "SEC004"

	// Credentials and data exposure
	RuleHardcodedCredsID = "SEC010"
	RuleSensitiveLogID   = "SEC011"

	// Weak cryptography
	RuleWeakHashID       = "SEC020"
	RuleInsecureRandomID = "SEC021"
	RuleInsecureTLSID    = "SEC022"

	// Cross-origin and token verification
	RuleWildcardOriginID     = "SEC030"
	RuleMissingOriginCheckID = "SEC031"
	RuleJWTNoVerifyID        = "SEC032"
)

// Spec couples an analyzer with its catalog metadata.
type Spec struct {
	RuleID     string
	Title      string
	Severity   report.Severity
	CWE        string
	Suggestion string
	Analyzer   *analysis.Analyzer
}

// catalog is ordered by RuleID so every consumer sees a stable sequence.
var catalog = []Spec{
	{RuleID: RuleSQLInjectionID, Title: "SQL query built from untrusted input", Severity: report.SeverityError, CWE: "CWE-89", Suggestion: "Use parameterized placeholders and pass values as arguments", Analyzer: AnalyzerSQLInjection},
	{RuleID: RuleCmdInjectionID, Title: "Command built from untrusted input", Severity: report.SeverityError, CWE: "CWE-78", Suggestion: "Pass a fixed program with separate arguments; never hand input to a shell", Analyzer: AnalyzerCmdInjection},
	{RuleID: RulePathTraversalID, Title: "File path built from untrusted input", Severity: report.SeverityError, CWE: "CWE-22", Suggestion: "Clean the path and verify it stays inside the intended root", Analyzer: AnalyzerPathTraversal},
	{RuleID: RuleFormatInjectionID, Title: "Untrusted value used as format string", Severity: report.SeverityWarning, CWE: "CWE-134", Suggestion: "Use a constant format string and pass the value as an argument", Analyzer: AnalyzerFormatInjection},
	{RuleID: RuleHardcodedCredsID, Title: "Hardcoded credential", Severity: report.SeverityError, CWE: "CWE-798", Suggestion: "Load secrets from the environment or a secret manager", Analyzer: AnalyzerHardcodedCreds},
	{RuleID: RuleSensitiveLogID, Title: "Sensitive value written to logs", Severity: report.SeverityWarning, CWE: "CWE-532", Suggestion: "Log identifiers, never secrets; redact before logging", Analyzer: AnalyzerSensitiveLog},
	{RuleID: RuleWeakHashID, Title: "Weak hash algorithm", Severity: report.SeverityWarning, CWE: "CWE-328", Suggestion: "Use crypto/sha256 or stronger", Analyzer: AnalyzerWeakHash},
	{RuleID: RuleInsecureRandomID, Title: "Non-cryptographic randomness for secrets", Severity: report.SeverityWarning, CWE: "CWE-338", Suggestion: "Generate tokens and keys with crypto/rand", Analyzer: AnalyzerInsecureRandom},
	{RuleID: RuleInsecureTLSID, Title: "Insecure TLS configuration", Severity: report.SeverityError, CWE: "CWE-295", Suggestion: "Keep certificate verification on and require TLS 1.2+", Analyzer: AnalyzerInsecureTLS},
	{RuleID: RuleWildcardOriginID, Title: "Wildcard origin", Severity: report.SeverityError, CWE: "CWE-346", Suggestion: "List the origins you trust explicitly", Analyzer: AnalyzerWildcardOrigin},
	{RuleID: RuleMissingOriginCheckID, Title: "Websocket upgrade without origin check", Severity: report.SeverityError, CWE: "CWE-346", Suggestion: "Set CheckOrigin to compare against your own origins", Analyzer: AnalyzerMissingOriginCheck},
	{RuleID: RuleJWTNoVerifyID, Title: "JWT parsed without signature verification", Severity: report.SeverityError, CWE: "CWE-347", Suggestion: "Parse with a keyfunc and check token.Valid before trusting claims", Analyzer: AnalyzerJWTNoVerify},
}

// All returns every rule spec in RuleID order.
func All() []Spec {
	return append([]Spec{}, catalog...)
}

// Select builds the rule set to run. If includeCSV is non-empty only those
// rules run; otherwise all rules run except those in disableCSV.
func Select(includeCSV, disableCSV string) []Spec {
	if strings.TrimSpace(includeCSV) != "" {
		want := map[string]struct{}{}
		for _, id := range splitList(includeCSV) {
			want[id] = struct{}{}
		}
		var out []Spec
		for _, spec := range catalog {
			if _, ok := want[spec.RuleID]; ok {
				out = append(out, spec)
			}
		}
		return out
	}
	disabled := map[string]struct{}{}
	for _, id := range splitList(disableCSV) {
		disabled[id] = struct{}{}
	}
	var out []Spec
	for _, spec := range catalog {
		if _, off := disabled[spec.RuleID]; off {
			continue
		}
		out = append(out, spec)
	}
	return out
}

// ByID returns the spec for a rule ID.
func ByID(id string) (Spec, bool) {
	for _, spec := range catalog {
		if spec.RuleID == id {
			return spec, true
		}
	}
	return Spec{}, false
}
