package analyzers

import (
	"go/ast"
	"go/token"
	"go/types"
	"strconv"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// calleeIdent returns the identifier for a call expression's callee, handling
// both simple identifiers and selector expressions. Returns nil if unresolved.
func calleeIdent(expr ast.Expr) *ast.Ident {
	switch x := expr.(type) {
	case *ast.Ident:
		return x
	case *ast.SelectorExpr:
		if x.Sel != nil {
			return x.Sel
		}
	}
	return nil
}

// deref returns the non-pointer type for a given type.
func deref(t types.Type) types.Type {
	if p, ok := t.(*types.Pointer); ok {
		return p.Elem()
	}
	return t
}

// isNamed returns true if t is a named type whose package path and name match.
func isNamed(t types.Type, pkgPath, name string) bool {
	if n, ok := t.(*types.Named); ok {
		if n.Obj() != nil && n.Obj().Pkg() != nil {
			return n.Obj().Pkg().Path() == pkgPath && n.Obj().Name() == name
		}
	}
	return false
}

// usesPkgFunc reports whether the callee resolves, via type info, to a function
// from the given package path. Falls back to false when unresolved; callers that
// want to work without type info should pair this with chain heuristics.
func usesPkgFunc(pass *analysis.Pass, call *ast.CallExpr, pkgPath string, names ...string) bool {
	id := calleeIdent(call.Fun)
	if id == nil || pass.TypesInfo == nil {
		return false
	}
	obj := pass.TypesInfo.Uses[id]
	if obj == nil || obj.Pkg() == nil || obj.Pkg().Path() != pkgPath {
		return false
	}
	for _, n := range names {
		if obj.Name() == n {
			return true
		}
	}
	return false
}

// flattenChain renders a selector/call chain as a dotted path, dropping call
// parentheses and index expressions: r.URL.Query().Get -> "r.URL.Query.Get".
// Returns "" for chains rooted in anything but a plain identifier.
func flattenChain(expr ast.Expr) string {
	var parts []string
	for {
		switch x := expr.(type) {
		case *ast.Ident:
			parts = append(parts, x.Name)
			for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
				parts[i], parts[j] = parts[j], parts[i]
			}
			return strings.Join(parts, ".")
		case *ast.SelectorExpr:
			if x.Sel == nil {
				return ""
			}
			parts = append(parts, x.Sel.Name)
			expr = x.X
		case *ast.CallExpr:
			expr = x.Fun
		case *ast.IndexExpr:
			expr = x.X
		case *ast.ParenExpr:
			expr = x.X
		default:
			return ""
		}
	}
}

// rootIdent returns the leftmost identifier of a selector/call chain, or nil.
func rootIdent(expr ast.Expr) *ast.Ident {
	for {
		switch x := expr.(type) {
		case *ast.Ident:
			return x
		case *ast.SelectorExpr:
			expr = x.X
		case *ast.CallExpr:
			expr = x.Fun
		case *ast.IndexExpr:
			expr = x.X
		case *ast.ParenExpr:
			expr = x.X
		default:
			return nil
		}
	}
}

// stringLit returns the unquoted value of a string literal and whether expr is one.
func stringLit(expr ast.Expr) (string, bool) {
	bl, ok := expr.(*ast.BasicLit)
	if !ok || bl.Kind != token.STRING {
		return "", false
	}
	v, err := strconv.Unquote(bl.Value)
	if err != nil {
		return "", false
	}
	return v, true
}

// splitList splits a comma-separated option value into trimmed, non-empty items.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
