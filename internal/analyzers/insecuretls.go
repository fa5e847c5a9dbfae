package analyzers

import (
	"go/ast"
	"go/token"
	"go/types"
	"strconv"
	"strings"

	"golang.org/x/tools/go/analysis"
	insppass "golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// AnalyzerInsecureTLS flags tls.Config values that disable verification or
// allow pre-1.2 protocol versions.
var AnalyzerInsecureTLS = &analysis.Analyzer{
	Name:     "sec022_insecuretls",
	Doc:      "flags disabled certificate verification and weak TLS minimum versions",
	Run:      runInsecureTLS,
	Requires: []*analysis.Analyzer{insppass.Analyzer},
}

var tlsSafety safetyOpts

func init() {
	tlsSafety.register(&AnalyzerInsecureTLS.Flags)
}

func runInsecureTLS(pass *analysis.Pass) (any, error) {
	insp := pass.ResultOf[insppass.Analyzer].(*inspector.Inspector)
	safety := newSafetyChecker(pass, tlsSafety.config())

	nodes := []ast.Node{(*ast.CompositeLit)(nil), (*ast.AssignStmt)(nil)}
	insp.WithStack(nodes, func(n ast.Node, push bool, stack []ast.Node) bool {
		if !push {
			return true
		}
		switch n := n.(type) {
		case *ast.CompositeLit:
			if !tlsConfigLit(pass, n) {
				return true
			}
			for _, el := range n.Elts {
				kv, ok := el.(*ast.KeyValueExpr)
				if !ok {
					continue
				}
				key, ok := kv.Key.(*ast.Ident)
				if !ok {
					continue
				}
				switch key.Name {
				case "InsecureSkipVerify":
					if isTrueExpr(kv.Value) && !safety.Suppressed(kv, stack, nil) {
						emit(pass, kv.Pos(), MsgTLSVerificationDisabled)
					}
				case "MinVersion":
					if weakTLSVersion(kv.Value) && !safety.Suppressed(kv, stack, nil) {
						emitWithFixes(pass, kv.Pos(), MsgTLSWeakMinVersion, []analysis.SuggestedFix{tlsMinVersionFix(kv.Value)})
					}
				}
			}
		case *ast.AssignStmt:
			for i, lhs := range n.Lhs {
				sel, ok := lhs.(*ast.SelectorExpr)
				if !ok || sel.Sel == nil || i >= len(n.Rhs) {
					continue
				}
				if !tlsConfigRecv(pass, sel.X) {
					continue
				}
				switch sel.Sel.Name {
				case "InsecureSkipVerify":
					if isTrueExpr(n.Rhs[i]) && !safety.Suppressed(sel, stack, nil) {
						emit(pass, sel.Sel.Pos(), MsgTLSVerificationDisabled)
					}
				case "MinVersion":
					if weakTLSVersion(n.Rhs[i]) && !safety.Suppressed(sel, stack, nil) {
						emitWithFixes(pass, sel.Sel.Pos(), MsgTLSWeakMinVersion, []analysis.SuggestedFix{tlsMinVersionFix(n.Rhs[i])})
					}
				}
			}
		}
		return true
	})
	return nil, nil
}

func tlsConfigLit(pass *analysis.Pass, lit *ast.CompositeLit) bool {
	if pass.TypesInfo != nil && isTLSConfigType(pass.TypesInfo.TypeOf(lit)) {
		return true
	}
	if sel, ok := lit.Type.(*ast.SelectorExpr); ok && sel.Sel != nil && sel.Sel.Name == "Config" {
		if root := rootIdent(sel.X); root != nil && root.Name == "tls" {
			return true
		}
	}
	return false
}

func tlsConfigRecv(pass *analysis.Pass, recv ast.Expr) bool {
	if pass.TypesInfo != nil && isTLSConfigType(pass.TypesInfo.TypeOf(recv)) {
		return true
	}
	root := rootIdent(recv)
	return root != nil && strings.Contains(strings.ToLower(root.Name), "tls")
}

// isTLSConfigType matches a named Config struct carrying an InsecureSkipVerify
// field, so synthetic types in tests and vendored copies match too.
func isTLSConfigType(t types.Type) bool {
	if t == nil {
		return false
	}
	n, ok := deref(t).(*types.Named)
	if !ok || n.Obj() == nil || n.Obj().Name() != "Config" {
		return false
	}
	st, ok := n.Underlying().(*types.Struct)
	if !ok {
		return false
	}
	for i := 0; i < st.NumFields(); i++ {
		if st.Field(i).Name() == "InsecureSkipVerify" {
			return true
		}
	}
	return false
}

func isTrueExpr(e ast.Expr) bool {
	id, ok := e.(*ast.Ident)
	return ok && id.Name == "true"
}

// weakTLSVersion matches the pre-1.2 version constants and raw values below 0x0303.
func weakTLSVersion(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.SelectorExpr:
		if e.Sel == nil {
			return false
		}
		switch e.Sel.Name {
		case "VersionSSL30", "VersionTLS10", "VersionTLS11":
			return true
		}
	case *ast.BasicLit:
		if e.Kind != token.INT {
			return false
		}
		v, err := strconv.ParseUint(e.Value, 0, 32)
		if err != nil {
			return false
		}
		return v < 0x0303
	}
	return false
}

func tlsMinVersionFix(value ast.Expr) analysis.SuggestedFix {
	return analysis.SuggestedFix{
		Message: "Require TLS 1.2 or newer",
		TextEdits: []analysis.TextEdit{{
			Pos:     value.Pos(),
			End:     value.End(),
			NewText: []byte("tls.VersionTLS12"),
		}},
	}
}
