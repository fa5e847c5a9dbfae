package analyzers

import (
	"go/ast"
	"regexp"

	"golang.org/x/tools/go/analysis"
	insppass "golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// AnalyzerInsecureRandom flags math/rand feeding values that look
// security-relevant. Proximity is lexical: the binding or enclosing function
// must mention a secret-ish word, so math/rand in a shuffle stays quiet.
var AnalyzerInsecureRandom = &analysis.Analyzer{
	Name:     "sec021_insecurerandom",
	Doc:      "flags math/rand used for tokens, keys and other secrets",
	Run:      runInsecureRandom,
	Requires: []*analysis.Analyzer{insppass.Analyzer},
}

var randSafety safetyOpts

func init() {
	randSafety.register(&AnalyzerInsecureRandom.Flags)
}

var secretContextRe = regexp.MustCompile(`(?i)(token|secret|key|nonce|password|salt|otp|session|csrf)`)

func runInsecureRandom(pass *analysis.Pass) (any, error) {
	insp := pass.ResultOf[insppass.Analyzer].(*inspector.Inspector)
	safety := newSafetyChecker(pass, randSafety.config())

	mathRand := map[*ast.File]string{}
	for _, f := range pass.Files {
		mathRand[f] = importLocalName(f, "math/rand", "math/rand/v2")
	}

	insp.WithStack([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node, push bool, stack []ast.Node) bool {
		if !push || len(stack) == 0 {
			return true
		}
		call := n.(*ast.CallExpr)
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok || sel.Sel == nil {
			return true
		}
		root := rootIdent(sel.X)
		if root == nil {
			return true
		}
		f, _ := stack[0].(*ast.File)
		local := mathRand[f]
		if local == "" || root.Name != local {
			return true
		}
		name, ok := secretContext(stack)
		if !ok {
			return true
		}
		if safety.Suppressed(call, stack, nil) {
			return true
		}
		emit(pass, call.Fun.Pos(), MsgInsecureRandomSource, name)
		return true
	})
	return nil, nil
}

// importLocalName returns the name the file refers to one of the given import
// paths by, or "" when none is imported.
func importLocalName(f *ast.File, paths ...string) string {
	for _, imp := range f.Imports {
		p, ok := stringLit(imp.Path)
		if !ok {
			continue
		}
		for _, want := range paths {
			if p != want {
				continue
			}
			if imp.Name != nil {
				return imp.Name.Name
			}
			return "rand"
		}
	}
	return ""
}

// secretContext walks outward for the nearest binding or function whose name
// suggests secret material.
func secretContext(stack []ast.Node) (string, bool) {
	for i := len(stack) - 1; i >= 0; i-- {
		switch p := stack[i].(type) {
		case *ast.AssignStmt:
			for _, lhs := range p.Lhs {
				if id, ok := lhs.(*ast.Ident); ok && secretContextRe.MatchString(id.Name) {
					return id.Name, true
				}
			}
		case *ast.ValueSpec:
			for _, id := range p.Names {
				if secretContextRe.MatchString(id.Name) {
					return id.Name, true
				}
			}
		case *ast.FuncDecl:
			if p.Name != nil && secretContextRe.MatchString(p.Name.Name) {
				return p.Name.Name, true
			}
		}
	}
	return "", false
}
