package analyzers

import (
	"go/ast"
	"go/token"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/tools/go/analysis"
	insppass "golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// AnalyzerHardcodedCreds flags credential material embedded in string literals.
var AnalyzerHardcodedCreds = &analysis.Analyzer{
	Name:     "sec010_hardcodedcreds",
	Doc:      "flags hardcoded credentials in string literals",
	Run:      runHardcodedCreds,
	Requires: []*analysis.Analyzer{insppass.Analyzer},
}

var (
	credSafety        safetyOpts
	credPatterns      string
	credMinLength     int
	credTestAllowlist string
)

func init() {
	credSafety.register(&AnalyzerHardcodedCreds.Flags)
	AnalyzerHardcodedCreds.Flags.StringVar(&credPatterns, "patterns", "", "comma-separated extra credential regexes")
	AnalyzerHardcodedCreds.Flags.IntVar(&credMinLength, "min-length", 16, "minimum literal length for name-based matches")
	AnalyzerHardcodedCreds.Flags.StringVar(&credTestAllowlist, "test-path-allowlist", "**/*_test.go,**/testdata/**", "comma-separated globs of files exempt from this rule")
}

// defaultCredentialPatterns match well-known key shapes by prefix. User extras
// are appended at run time; malformed extras are skipped, the config layer
// warns about them at load.
var defaultCredentialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bsk_live_[0-9a-zA-Z]{8,}`),
	regexp.MustCompile(`\bsk_test_[0-9a-zA-Z]{8,}`),
	regexp.MustCompile(`\brk_live_[0-9a-zA-Z]{8,}`),
	regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
	regexp.MustCompile(`\bgh[pousr]_[0-9a-zA-Z]{20,}`),
	regexp.MustCompile(`\bgithub_pat_[0-9a-zA-Z_]{20,}`),
	regexp.MustCompile(`\bxox[baprs]-[0-9a-zA-Z-]{10,}`),
	regexp.MustCompile(`\bAIza[0-9A-Za-z_-]{30,}`),
	regexp.MustCompile(`-----BEGIN (RSA |EC |DSA |OPENSSH |PGP )?PRIVATE KEY( BLOCK)?-----`),
	regexp.MustCompile(`\beyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}`),
}

func matchesCredentialPrefix(s string) bool {
	for _, re := range defaultCredentialPatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// keyShapeRe is the loose shape of real key material: one run of base64-ish
// characters, no spaces.
var keyShapeRe = regexp.MustCompile(`^[A-Za-z0-9+/=_.-]+$`)

// placeholderRe exempts obvious non-secrets so examples and scaffolding stay quiet.
var placeholderRe = regexp.MustCompile(`(?i)(example|changeme|change-me|placeholder|dummy|sample|fixme|your[_-]|xxx+|\$\{|<[a-z]+>|%[sdvq])`)

func runHardcodedCreds(pass *analysis.Pass) (any, error) {
	insp := pass.ResultOf[insppass.Analyzer].(*inspector.Inspector)
	safety := newSafetyChecker(pass, credSafety.config("@safe-credential"))

	patterns := defaultCredentialPatterns
	for _, p := range splitList(credPatterns) {
		re, err := regexp.Compile(p)
		if err != nil {
			continue
		}
		patterns = append(patterns, re)
	}
	allowlist := splitList(credTestAllowlist)
	skip := map[*ast.File]bool{}
	for _, f := range pass.Files {
		skip[f] = fileAllowlisted(pass.Fset.Position(f.Pos()).Filename, allowlist)
	}

	insp.WithStack([]ast.Node{(*ast.BasicLit)(nil)}, func(n ast.Node, push bool, stack []ast.Node) bool {
		if !push || len(stack) == 0 {
			return true
		}
		if f, ok := stack[0].(*ast.File); ok && skip[f] {
			return false
		}
		lit := n.(*ast.BasicLit)
		if lit.Kind != token.STRING {
			return true
		}
		value, ok := stringLit(lit)
		if !ok || placeholderRe.MatchString(value) {
			return true
		}

		name := boundName(stack)
		matched := false
		for _, re := range patterns {
			if re.MatchString(value) {
				matched = true
				break
			}
		}
		if !matched {
			if name == "" || !sensitiveNameRe.MatchString(name) {
				return true
			}
			if len(value) < credMinLength || !keyShapeRe.MatchString(value) {
				return true
			}
		}
		if safety.Suppressed(lit, stack, nil) {
			return true
		}
		emitWithFixes(pass, lit.Pos(), MsgUseEnvironmentVariable, credentialFixes(lit, name))
		return true
	})
	return nil, nil
}

func fileAllowlisted(filename string, globs []string) bool {
	if filename == "" {
		return false
	}
	path := filepath.ToSlash(filename)
	for _, g := range globs {
		if ok, err := doublestar.Match(g, path); err == nil && ok {
			return true
		}
		// patterns like *_test.go should also match on the base name
		if ok, err := doublestar.Match(g, filepath.Base(path)); err == nil && ok {
			return true
		}
	}
	return false
}

// boundName walks outward for the identifier the literal is bound to: an
// assignment target, a var declaration name, or a composite literal key.
func boundName(stack []ast.Node) string {
	for i := len(stack) - 1; i >= 0; i-- {
		switch p := stack[i].(type) {
		case *ast.AssignStmt:
			if len(p.Lhs) > 0 {
				if id, ok := p.Lhs[0].(*ast.Ident); ok {
					return id.Name
				}
			}
		case *ast.ValueSpec:
			if len(p.Names) > 0 {
				return p.Names[0].Name
			}
		case *ast.KeyValueExpr:
			switch k := p.Key.(type) {
			case *ast.Ident:
				return k.Name
			case *ast.BasicLit:
				if v, ok := stringLit(k); ok {
					return v
				}
			}
		}
	}
	return ""
}

// credentialFixes offers the two standard remediations: environment lookup and
// secret-manager retrieval. Both replace just the literal; imports and wiring
// stay with the author.
func credentialFixes(lit *ast.BasicLit, name string) []analysis.SuggestedFix {
	if name == "" {
		name = "secret"
	}
	return []analysis.SuggestedFix{
		{
			Message: "Load the value from an environment variable",
			TextEdits: []analysis.TextEdit{{
				Pos:     lit.Pos(),
				End:     lit.End(),
				NewText: []byte(`os.Getenv("` + envVarName(name) + `")`),
			}},
		},
		{
			Message: "Fetch the value from your secret manager at startup",
			TextEdits: []analysis.TextEdit{{
				Pos:     lit.Pos(),
				End:     lit.End(),
				NewText: []byte(`secrets.MustGet("` + strings.ToLower(envVarName(name)) + `")`),
			}},
		},
	}
}

// envVarName converts apiKey or api-key to API_KEY.
func envVarName(name string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
			prevLower = true
		case r >= 'A' && r <= 'Z':
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			prevLower = false
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			prevLower = false
		default:
			b.WriteByte('_')
			prevLower = false
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "SECRET"
	}
	return out
}
