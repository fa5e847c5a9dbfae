package analyzers

import (
	"fmt"
	"go/token"

	"golang.org/x/tools/go/analysis"
)

// Message identifiers. These are stable across releases: tests, baselines and
// downstream tooling key on them, so renames are breaking changes. The
// identifier travels on analysis.Diagnostic.Category.
const (
	MsgUnsafeQueryConstruction      = "unsafeQueryConstruction"
	MsgUnsafeCommandConstruction    = "unsafeCommandConstruction"
	MsgUnsafePathConstruction       = "unsafePathConstruction"
	MsgTaintedFormatString          = "taintedFormatString"
	MsgUseEnvironmentVariable       = "useEnvironmentVariable"
	MsgSensitiveDataLogged          = "sensitiveDataLogged"
	MsgWeakHashAlgorithm            = "weakHashAlgorithm"
	MsgInsecureRandomSource         = "insecureRandomSource"
	MsgTLSVerificationDisabled      = "tlsVerificationDisabled"
	MsgTLSWeakMinVersion            = "tlsWeakMinVersion"
	MsgWildcardOrigin               = "wildcardOrigin"
	MsgMissingOriginCheck           = "missingOriginCheck"
	MsgPermissiveOriginCheck        = "permissiveOriginCheck"
	MsgMissingSignatureVerification = "missingSignatureVerification"
)

var messageCatalog = map[string]string{
	MsgUnsafeQueryConstruction:      "SQL query built from %s; use parameterized placeholders instead",
	MsgUnsafeCommandConstruction:    "command %s built from untrusted input; pass arguments separately and avoid shell interpretation",
	MsgUnsafePathConstruction:       "file path from untrusted input reaches %s; clean and contain the path first",
	MsgTaintedFormatString:          "untrusted value %q used as format string; pass it as an argument to %%s instead",
	MsgUseEnvironmentVariable:       "hardcoded credential detected; load it from the environment or a secret manager",
	MsgSensitiveDataLogged:          "sensitive value %q written to log output",
	MsgWeakHashAlgorithm:            "weak hash algorithm %s; use crypto/sha256 for anything security-relevant",
	MsgInsecureRandomSource:         "math/rand used for %q; security tokens need crypto/rand",
	MsgTLSVerificationDisabled:      "certificate verification disabled; connections are open to interception",
	MsgTLSWeakMinVersion:            "TLS minimum version below 1.2",
	MsgWildcardOrigin:               "wildcard origin %q shares the response with every site",
	MsgMissingOriginCheck:           "websocket upgrader has no origin check; cross-site requests will be upgraded",
	MsgPermissiveOriginCheck:        "origin check accepts every origin",
	MsgMissingSignatureVerification: "token parsed without signature verification",
}

// emit reports a diagnostic whose Category carries the catalog identifier.
func emit(pass *analysis.Pass, pos token.Pos, id string, args ...any) {
	emitWithFixes(pass, pos, id, nil, args...)
}

func emitWithFixes(pass *analysis.Pass, pos token.Pos, id string, fixes []analysis.SuggestedFix, args ...any) {
	tmpl, ok := messageCatalog[id]
	if !ok {
		tmpl = id
	}
	pass.Report(analysis.Diagnostic{
		Pos:            pos,
		Category:       id,
		Message:        fmt.Sprintf(tmpl, args...),
		SuggestedFixes: fixes,
	})
}
