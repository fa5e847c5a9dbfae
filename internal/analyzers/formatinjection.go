package analyzers

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	insppass "golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// AnalyzerFormatInjection flags untrusted values used as printf format strings.
var AnalyzerFormatInjection = &analysis.Analyzer{
	Name:     "sec004_formatinjection",
	Doc:      "flags tainted values passed as format strings to the printf family",
	Run:      runFormatInjection,
	Requires: []*analysis.Analyzer{insppass.Analyzer},
}

var (
	formatSafety     safetyOpts
	formatValidators string
)

func init() {
	formatSafety.register(&AnalyzerFormatInjection.Flags)
	AnalyzerFormatInjection.Flags.StringVar(&formatValidators, "validators", "", "comma-separated callee names that validate input")
}

// printfCalls maps callee chains to the index of the format argument.
var printfCalls = map[string]int{
	"fmt.Sprintf": 0,
	"fmt.Printf":  0,
	"fmt.Errorf":  0,
	"fmt.Fprintf": 1,
	"log.Printf":  0,
	"log.Fatalf":  0,
	"log.Panicf":  0,
}

func runFormatInjection(pass *analysis.Pass) (any, error) {
	insp := pass.ResultOf[insppass.Analyzer].(*inspector.Inspector)
	tr := newTaintTracker(splitList(formatValidators))
	safety := newSafetyChecker(pass, formatSafety.config("@safe-format"))

	nodes := []ast.Node{(*ast.AssignStmt)(nil), (*ast.ValueSpec)(nil), (*ast.CallExpr)(nil)}
	insp.WithStack(nodes, func(n ast.Node, push bool, stack []ast.Node) bool {
		if !push {
			return true
		}
		tr.observe(n)
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		idx, ok := printfCalls[flattenChain(call.Fun)]
		if !ok || idx >= len(call.Args) {
			return true
		}
		format := call.Args[idx]
		switch f := format.(type) {
		case *ast.Ident:
			if tr.Tainted(f.Name) && !safety.Suppressed(f, stack, tr) {
				emit(pass, f.Pos(), MsgTaintedFormatString, f.Name)
			}
		case *ast.CallExpr:
			if isSourceCall(f) && !safety.Suppressed(f, stack, tr) {
				emit(pass, f.Pos(), MsgTaintedFormatString, flattenChain(f.Fun))
			}
		}
		return true
	})
	return nil, nil
}
