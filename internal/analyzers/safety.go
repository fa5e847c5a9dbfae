package analyzers

import (
	"flag"
	"go/ast"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// SafetyConfig tunes finding suppression for one rule run.
type SafetyConfig struct {
	Annotations []string // trusted annotation tags, e.g. "@safe"
	Sanitizers  []string // trusted sanitizer callee names
	Strict      bool     // disables every suppression channel
}

// safetyChecker decides whether a candidate finding was explicitly marked safe.
// Three channels, first hit wins: an annotation tag on the enclosing statement,
// a trusted sanitizer call around or inside the candidate, or a lone identifier
// the taint tracker saw validated. Decisions fail closed: missing positions,
// empty stacks and unresolved shapes all mean "not suppressed".
type safetyChecker struct {
	pass *analysis.Pass
	cfg  SafetyConfig
}

func newSafetyChecker(pass *analysis.Pass, cfg SafetyConfig) *safetyChecker {
	return &safetyChecker{pass: pass, cfg: cfg}
}

// Suppressed reports whether the finding at n should be dropped. tr may be nil
// for rules that do not track taint.
func (s *safetyChecker) Suppressed(n ast.Node, stack []ast.Node, tr *taintTracker) bool {
	if s.cfg.Strict || n == nil {
		return false
	}
	if s.annotated(stack) {
		return true
	}
	if s.sanitized(n, stack) {
		return true
	}
	if id, ok := n.(*ast.Ident); ok && tr != nil && tr.Validated(id.Name) {
		return true
	}
	return false
}

// annotated looks for a trusted tag scoped to the candidate's enclosing
// statement: the comment group ending on the line directly above it, or a
// comment on the same line. Tags on outer blocks or arbitrary parent
// expressions never count.
func (s *safetyChecker) annotated(stack []ast.Node) bool {
	stmt := enclosingStmt(stack)
	if stmt == nil {
		return false
	}
	pos := s.pass.Fset.Position(stmt.Pos())
	if !pos.IsValid() {
		return false
	}
	for _, f := range s.pass.Files {
		for _, cg := range f.Comments {
			if !s.hasTag(cg) {
				continue
			}
			start := s.pass.Fset.Position(cg.Pos())
			end := s.pass.Fset.Position(cg.End())
			if start.Filename != pos.Filename {
				continue
			}
			if end.Line == pos.Line-1 || start.Line == pos.Line {
				return true
			}
		}
	}
	return false
}

func (s *safetyChecker) hasTag(cg *ast.CommentGroup) bool {
	text := cg.Text()
	for _, tag := range s.cfg.Annotations {
		if tag != "" && strings.Contains(text, tag) {
			return true
		}
	}
	return false
}

// sanitized reports a trusted sanitizer call wrapping the candidate or
// appearing inside its own expression tree.
func (s *safetyChecker) sanitized(n ast.Node, stack []ast.Node) bool {
	if len(s.cfg.Sanitizers) == 0 {
		return false
	}
	trusted := func(call *ast.CallExpr) bool {
		id := calleeIdent(call.Fun)
		if id == nil {
			return false
		}
		for _, name := range s.cfg.Sanitizers {
			if id.Name == name {
				return true
			}
		}
		return false
	}
	for _, anc := range stack {
		if call, ok := anc.(*ast.CallExpr); ok && call != n && trusted(call) {
			return true
		}
	}
	found := false
	ast.Inspect(n, func(m ast.Node) bool {
		if call, ok := m.(*ast.CallExpr); ok && call != n && trusted(call) {
			found = true
			return false
		}
		return true
	})
	return found
}

// enclosingStmt returns the innermost statement on the stack, or the top-level
// declaration when the candidate sits outside any function body.
func enclosingStmt(stack []ast.Node) ast.Node {
	for i := len(stack) - 1; i >= 0; i-- {
		switch n := stack[i].(type) {
		case ast.Stmt:
			return n
		case *ast.GenDecl:
			return n
		case *ast.Field:
			return n
		}
	}
	return nil
}

// safetyOpts exposes the shared suppression knobs on an analyzer's flag set so
// the config layer and vet-style invocation tune the same values.
type safetyOpts struct {
	strict      bool
	sanitizers  string
	annotations string
}

func (o *safetyOpts) register(fs *flag.FlagSet) {
	fs.BoolVar(&o.strict, "strict", false, "report findings even when marked safe")
	fs.StringVar(&o.sanitizers, "sanitizers", "", "comma-separated trusted sanitizer callee names")
	fs.StringVar(&o.annotations, "annotations", "", "comma-separated extra trusted annotation tags")
}

// config assembles the effective SafetyConfig: @safe, the rule's own tags, then
// anything configured on top.
func (o *safetyOpts) config(ruleTags ...string) SafetyConfig {
	cfg := SafetyConfig{Strict: o.strict}
	cfg.Annotations = append([]string{"@safe"}, ruleTags...)
	cfg.Annotations = append(cfg.Annotations, splitList(o.annotations)...)
	cfg.Sanitizers = splitList(o.sanitizers)
	return cfg
}
