package analyzers

import (
	"go/ast"
	"strings"

	"golang.org/x/tools/go/analysis"
	insppass "golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// AnalyzerJWTNoVerify flags token parsing that skips signature verification:
// ParseUnverified, Parse/ParseWithClaims handed a nil or nil-returning keyfunc,
// and Claims read from a token whose Valid is never consulted in the same
// function.
var AnalyzerJWTNoVerify = &analysis.Analyzer{
	Name:     "sec032_jwtnoverify",
	Doc:      "flags JWT parsing without signature verification",
	Run:      runJWTNoVerify,
	Requires: []*analysis.Analyzer{insppass.Analyzer},
}

var jwtSafety safetyOpts

func init() {
	jwtSafety.register(&AnalyzerJWTNoVerify.Flags)
}

func runJWTNoVerify(pass *analysis.Pass) (any, error) {
	insp := pass.ResultOf[insppass.Analyzer].(*inspector.Inspector)
	safety := newSafetyChecker(pass, jwtSafety.config())

	// token bindings are tracked lexically per enclosing function
	type key struct {
		fn   *ast.FuncDecl
		name string
	}
	type claimsAccess struct {
		key   key
		sel   *ast.SelectorExpr
		stack []ast.Node
	}
	parsed := map[key]bool{}
	reportedParse := map[key]bool{}
	validRead := map[key]bool{}
	seenAccess := map[key]bool{}
	var accesses []claimsAccess

	nodes := []ast.Node{(*ast.AssignStmt)(nil), (*ast.CallExpr)(nil), (*ast.SelectorExpr)(nil)}
	insp.WithStack(nodes, func(n ast.Node, push bool, stack []ast.Node) bool {
		if !push {
			return true
		}
		switch n := n.(type) {
		case *ast.CallExpr:
			if !unverifiedParseCall(pass, n) {
				return true
			}
			if safety.Suppressed(n, stack, nil) {
				return true
			}
			sel := n.Fun.(*ast.SelectorExpr)
			emit(pass, sel.Sel.Pos(), MsgMissingSignatureVerification)
		case *ast.AssignStmt:
			fn := enclosingFuncDecl(stack)
			if fn == nil || len(n.Rhs) != 1 || len(n.Lhs) == 0 {
				return true
			}
			call, ok := n.Rhs[0].(*ast.CallExpr)
			if !ok || !jwtParseResult(pass, call) {
				return true
			}
			id, ok := n.Lhs[0].(*ast.Ident)
			if !ok || id.Name == "_" {
				return true
			}
			k := key{fn, id.Name}
			parsed[k] = true
			if unverifiedParseCall(pass, call) {
				reportedParse[k] = true
			}
		case *ast.SelectorExpr:
			if n.Sel == nil {
				return true
			}
			root, ok := n.X.(*ast.Ident)
			if !ok {
				return true
			}
			fn := enclosingFuncDecl(stack)
			if fn == nil {
				return true
			}
			k := key{fn, root.Name}
			if !parsed[k] {
				return true
			}
			switch n.Sel.Name {
			case "Valid":
				validRead[k] = true
			case "Claims":
				if !seenAccess[k] {
					seenAccess[k] = true
					accesses = append(accesses, claimsAccess{key: k, sel: n, stack: append([]ast.Node{}, stack...)})
				}
			}
		}
		return true
	})

	// first Claims read per binding, reported only when nothing ever checked
	// Valid and the parse itself was not already flagged
	for _, a := range accesses {
		if validRead[a.key] || reportedParse[a.key] {
			continue
		}
		if safety.Suppressed(a.sel, a.stack, nil) {
			continue
		}
		emit(pass, a.sel.Sel.Pos(), MsgMissingSignatureVerification)
	}
	return nil, nil
}

// unverifiedParseCall reports whether call parses a token without verifying its
// signature: ParseUnverified, or Parse/ParseWithClaims with a nil keyfunc.
func unverifiedParseCall(pass *analysis.Pass, call *ast.CallExpr) bool {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel == nil {
		return false
	}
	switch sel.Sel.Name {
	case "ParseUnverified":
		return true
	case "Parse", "ParseWithClaims":
		if !jwtReceiver(pass, sel) || len(call.Args) == 0 {
			return false
		}
		return nilKeyfunc(call.Args[len(call.Args)-1])
	}
	return false
}

// jwtParseResult reports whether call is any JWT parse whose first result is a
// token worth tracking.
func jwtParseResult(pass *analysis.Pass, call *ast.CallExpr) bool {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel == nil {
		return false
	}
	switch sel.Sel.Name {
	case "Parse", "ParseWithClaims", "ParseUnverified":
		return jwtReceiver(pass, sel)
	}
	return false
}

// jwtReceiver keeps Parse matching scoped to JWT libraries; Parse alone is far
// too common a name.
func jwtReceiver(pass *analysis.Pass, sel *ast.SelectorExpr) bool {
	if pass.TypesInfo != nil && sel.Sel != nil {
		if obj := pass.TypesInfo.Uses[sel.Sel]; obj != nil && obj.Pkg() != nil {
			if strings.Contains(obj.Pkg().Path(), "jwt") {
				return true
			}
		}
	}
	root := rootIdent(sel.X)
	return root != nil && strings.Contains(strings.ToLower(root.Name), "jwt")
}

// nilKeyfunc matches a literal nil and func literals whose every return hands
// back a nil key.
func nilKeyfunc(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.Ident:
		return e.Name == "nil"
	case *ast.FuncLit:
		if e.Body == nil {
			return false
		}
		sawReturn := false
		allNil := true
		ast.Inspect(e.Body, func(n ast.Node) bool {
			ret, ok := n.(*ast.ReturnStmt)
			if !ok || len(ret.Results) == 0 {
				return true
			}
			sawReturn = true
			if id, ok := ret.Results[0].(*ast.Ident); !ok || id.Name != "nil" {
				allNil = false
			}
			return true
		})
		return sawReturn && allNil
	}
	return false
}
