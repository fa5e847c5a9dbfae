package analyzers

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	insppass "golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// AnalyzerWeakHash flags MD5 and SHA-1 usage.
var AnalyzerWeakHash = &analysis.Analyzer{
	Name:     "sec020_weakhash",
	Doc:      "flags crypto/md5 and crypto/sha1 usage",
	Run:      runWeakHash,
	Requires: []*analysis.Analyzer{insppass.Analyzer},
}

var hashSafety safetyOpts

func init() {
	hashSafety.register(&AnalyzerWeakHash.Flags)
}

// weakHashCalls maps callee chains to the sha256 replacement expression.
var weakHashCalls = map[string]struct {
	pkg, fn, replacement string
}{
	"md5.New":   {"crypto/md5", "New", "sha256.New"},
	"md5.Sum":   {"crypto/md5", "Sum", "sha256.Sum256"},
	"sha1.New":  {"crypto/sha1", "New", "sha256.New"},
	"sha1.Sum":  {"crypto/sha1", "Sum", "sha256.Sum256"},
}

func runWeakHash(pass *analysis.Pass) (any, error) {
	insp := pass.ResultOf[insppass.Analyzer].(*inspector.Inspector)
	safety := newSafetyChecker(pass, hashSafety.config())

	insp.WithStack([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node, push bool, stack []ast.Node) bool {
		if !push {
			return true
		}
		call := n.(*ast.CallExpr)
		chain := flattenChain(call.Fun)
		weak, ok := weakHashCalls[chain]
		if !ok {
			return true
		}
		// chain text can collide with unrelated locals; trust type info when present
		if id := calleeIdent(call.Fun); id != nil && pass.TypesInfo != nil {
			if obj := pass.TypesInfo.Uses[id]; obj != nil && obj.Pkg() != nil && obj.Pkg().Path() != weak.pkg {
				return true
			}
		}
		if safety.Suppressed(call, stack, nil) {
			return true
		}
		fix := analysis.SuggestedFix{
			Message: "Switch to crypto/sha256 (note the digest size changes)",
			TextEdits: []analysis.TextEdit{{
				Pos:     call.Fun.Pos(),
				End:     call.Fun.End(),
				NewText: []byte(weak.replacement),
			}},
		}
		emitWithFixes(pass, call.Fun.Pos(), MsgWeakHashAlgorithm, []analysis.SuggestedFix{fix}, weak.pkg)
		return true
	})
	return nil, nil
}
