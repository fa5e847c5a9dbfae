package analyzers

import (
	"go/ast"
	"strings"

	"golang.org/x/tools/go/analysis"
	insppass "golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// AnalyzerWildcardOrigin flags responses and CORS policies that hand "*" to an
// origin surface. One finding per offending call or list element.
var AnalyzerWildcardOrigin = &analysis.Analyzer{
	Name:     "sec030_wildcardorigin",
	Doc:      "flags wildcard origins in CORS headers and allowed-origin lists",
	Run:      runWildcardOrigin,
	Requires: []*analysis.Analyzer{insppass.Analyzer},
}

var (
	originSafety         safetyOpts
	allowWildcardInDev   bool
	allowedOriginsOption string
)

func init() {
	originSafety.register(&AnalyzerWildcardOrigin.Flags)
	AnalyzerWildcardOrigin.Flags.BoolVar(&allowWildcardInDev, "allow-wildcard-in-dev", false, "permit wildcard origins (development builds)")
	AnalyzerWildcardOrigin.Flags.StringVar(&allowedOriginsOption, "allowed-origins", "", "comma-separated origins that are intentionally allowed")
}

var originListKeys = map[string]struct{}{
	"AllowedOrigins":        {},
	"AllowOrigins":          {},
	"AllowedOriginPatterns": {},
	"Origins":               {},
}

func runWildcardOrigin(pass *analysis.Pass) (any, error) {
	insp := pass.ResultOf[insppass.Analyzer].(*inspector.Inspector)
	safety := newSafetyChecker(pass, originSafety.config("@safe-origin"))

	if allowWildcardInDev {
		return nil, nil
	}
	allowed := map[string]struct{}{}
	for _, o := range splitList(allowedOriginsOption) {
		allowed[o] = struct{}{}
	}
	if _, ok := allowed["*"]; ok {
		return nil, nil
	}

	nodes := []ast.Node{(*ast.CallExpr)(nil), (*ast.KeyValueExpr)(nil)}
	insp.WithStack(nodes, func(n ast.Node, push bool, stack []ast.Node) bool {
		if !push {
			return true
		}
		switch n := n.(type) {
		case *ast.CallExpr:
			sel, ok := n.Fun.(*ast.SelectorExpr)
			if !ok || sel.Sel == nil {
				return true
			}
			if sel.Sel.Name != "Set" && sel.Sel.Name != "Add" {
				return true
			}
			if len(n.Args) < 2 {
				return true
			}
			header, ok := stringLit(n.Args[0])
			if !ok || !strings.EqualFold(header, "Access-Control-Allow-Origin") {
				return true
			}
			if v, ok := stringLit(n.Args[1]); !ok || v != "*" {
				return true
			}
			if safety.Suppressed(n.Args[1], stack, nil) {
				return true
			}
			emit(pass, n.Args[1].Pos(), MsgWildcardOrigin, "*")
		case *ast.KeyValueExpr:
			key, ok := n.Key.(*ast.Ident)
			if !ok {
				return true
			}
			if _, ok := originListKeys[key.Name]; !ok {
				return true
			}
			list, ok := n.Value.(*ast.CompositeLit)
			if !ok {
				return true
			}
			for _, el := range list.Elts {
				if v, ok := stringLit(el); ok && v == "*" {
					if safety.Suppressed(el, stack, nil) {
						continue
					}
					emit(pass, el.Pos(), MsgWildcardOrigin, "*")
				}
			}
		}
		return true
	})
	return nil, nil
}
