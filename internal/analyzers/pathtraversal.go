package analyzers

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	insppass "golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// AnalyzerPathTraversal flags filesystem calls whose path argument carries
// untrusted input without an intervening cleaning step.
var AnalyzerPathTraversal = &analysis.Analyzer{
	Name:     "sec003_pathtraversal",
	Doc:      "flags file operations on paths built from untrusted input",
	Run:      runPathTraversal,
	Requires: []*analysis.Analyzer{insppass.Analyzer},
}

var (
	pathSafety     safetyOpts
	pathValidators string
)

func init() {
	pathSafety.register(&AnalyzerPathTraversal.Flags)
	AnalyzerPathTraversal.Flags.StringVar(&pathValidators, "validators", "", "comma-separated callee names that validate input")
}

// pathConsumers maps os call names to the index of the path argument.
var pathConsumers = map[string]int{
	"Open":      0,
	"OpenFile":  0,
	"Create":    0,
	"ReadFile":  0,
	"WriteFile": 0,
	"Remove":    0,
	"RemoveAll": 0,
	"Mkdir":     0,
	"MkdirAll":  0,
	"ReadDir":   0,
	"Stat":      0,
	"Lstat":     0,
}

// pathSanitizers are callee names that contain a path. Matching is on the bare
// callee name, so filepath.Clean and a local Clean both count.
var pathSanitizers = []string{"Clean", "Base", "Rel", "PathEscape"}

func runPathTraversal(pass *analysis.Pass) (any, error) {
	insp := pass.ResultOf[insppass.Analyzer].(*inspector.Inspector)
	tr := newTaintTracker(append(splitList(pathValidators), pathSanitizers...))
	cfg := pathSafety.config("@safe-path")
	cfg.Sanitizers = append(cfg.Sanitizers, pathSanitizers...)
	safety := newSafetyChecker(pass, cfg)

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
		name, idx, ok := pathConsumerCall(pass, call)
		if !ok || idx >= len(call.Args) {
			return true
		}
		arg := call.Args[idx]
		if !tr.ExprTainted(arg) {
			return true
		}
		if safety.Suppressed(arg, stack, tr) {
			return true
		}
		emit(pass, call.Fun.Pos(), MsgUnsafePathConstruction, name)
		return true
	})
	return nil, nil
}

func pathConsumerCall(pass *analysis.Pass, call *ast.CallExpr) (string, int, bool) {
	id := calleeIdent(call.Fun)
	if id == nil {
		return "", 0, false
	}
	idx, ok := pathConsumers[id.Name]
	if !ok {
		return "", 0, false
	}
	if usesPkgFunc(pass, call, "os", id.Name) || flattenChain(call.Fun) == "os."+id.Name {
		return "os." + id.Name, idx, true
	}
	return "", 0, false
}
