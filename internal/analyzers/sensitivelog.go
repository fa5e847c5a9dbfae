package analyzers

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	insppass "golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// AnalyzerSensitiveLog flags credentials and other sensitive values passed to
// logging calls.
var AnalyzerSensitiveLog = &analysis.Analyzer{
	Name:     "sec011_sensitivelog",
	Doc:      "flags sensitive values written to log output",
	Run:      runSensitiveLog,
	Requires: []*analysis.Analyzer{insppass.Analyzer},
}

var logSafety safetyOpts

func init() {
	logSafety.register(&AnalyzerSensitiveLog.Flags)
}

// logPackageCalls are package-level logging chains; arguments from the given
// index on are inspected.
var logPackageCalls = map[string]int{
	"log.Print":    0,
	"log.Printf":   1,
	"log.Println":  0,
	"log.Fatal":    0,
	"log.Fatalf":   1,
	"log.Fatalln":  0,
	"log.Panic":    0,
	"log.Panicf":   1,
	"log.Panicln":  0,
	"fmt.Print":    0,
	"fmt.Printf":   1,
	"fmt.Println":  0,
	"slog.Debug":   1,
	"slog.Info":    1,
	"slog.Warn":    1,
	"slog.Error":   1,
}

// loggerRecvNames are receivers whose leveled methods count as logging.
var loggerRecvNames = map[string]struct{}{
	"log": {}, "logger": {}, "slog": {}, "l": {}, "lg": {},
}

var loggerMethods = map[string]struct{}{
	"Debug": {}, "Info": {}, "Warn": {}, "Error": {},
	"Debugf": {}, "Infof": {}, "Warnf": {}, "Errorf": {},
}

func runSensitiveLog(pass *analysis.Pass) (any, error) {
	insp := pass.ResultOf[insppass.Analyzer].(*inspector.Inspector)
	tr := newTaintTracker(nil)
	safety := newSafetyChecker(pass, logSafety.config("@safe-log"))

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
		argIdx, ok := logCallArgs(call)
		if !ok {
			return true
		}
		for _, a := range call.Args[min(argIdx, len(call.Args)):] {
			name, sensitive := sensitiveArg(tr, a)
			if !sensitive {
				continue
			}
			if safety.Suppressed(a, stack, tr) {
				continue
			}
			emit(pass, a.Pos(), MsgSensitiveDataLogged, name)
			return true
		}
		return true
	})
	return nil, nil
}

func logCallArgs(call *ast.CallExpr) (int, bool) {
	chain := flattenChain(call.Fun)
	if idx, ok := logPackageCalls[chain]; ok {
		return idx, true
	}
	// fmt.Fprintf(os.Stderr, ...) and friends
	if (chain == "fmt.Fprintf" || chain == "fmt.Fprintln" || chain == "fmt.Fprint") && len(call.Args) > 0 {
		if dst := flattenChain(call.Args[0]); dst == "os.Stderr" || dst == "os.Stdout" {
			return 1, true
		}
		return 0, false
	}
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel == nil {
		return 0, false
	}
	if _, ok := loggerMethods[sel.Sel.Name]; !ok {
		return 0, false
	}
	root := rootIdent(sel.X)
	if root == nil {
		return 0, false
	}
	if _, ok := loggerRecvNames[root.Name]; !ok {
		return 0, false
	}
	return 1, true
}

// sensitiveArg matches identifiers and selectors by name against the sensitive
// set and the naming convention. String literals never match; the word
// "password" in a message is fine, the variable is not.
func sensitiveArg(tr *taintTracker, e ast.Expr) (string, bool) {
	switch e := e.(type) {
	case *ast.Ident:
		if tr.Sensitive(e.Name) || sensitiveNameRe.MatchString(e.Name) {
			return e.Name, true
		}
	case *ast.SelectorExpr:
		if e.Sel != nil && sensitiveNameRe.MatchString(e.Sel.Name) {
			return flattenChain(e), true
		}
	}
	return "", false
}
