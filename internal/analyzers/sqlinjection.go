package analyzers

import (
	"go/ast"
	"go/token"
	"strings"

	"golang.org/x/tools/go/analysis"
	insppass "golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// AnalyzerSQLInjection flags SQL query strings assembled from untrusted input.
var AnalyzerSQLInjection = &analysis.Analyzer{
	Name:     "sec001_sqlinjection",
	Doc:      "flags SQL queries built by formatting or concatenating untrusted input",
	Run:      runSQLInjection,
	Requires: []*analysis.Analyzer{insppass.Analyzer},
}

var (
	sqlSafety     safetyOpts
	sqlValidators string
)

func init() {
	sqlSafety.register(&AnalyzerSQLInjection.Flags)
	AnalyzerSQLInjection.Flags.StringVar(&sqlValidators, "validators", "", "comma-separated callee names that validate input")
}

// sqlQueryMethods maps database/sql call names to the index of the query argument.
var sqlQueryMethods = map[string]int{
	"Query":           0,
	"QueryRow":        0,
	"Exec":            0,
	"Prepare":         0,
	"QueryContext":    1,
	"QueryRowContext": 1,
	"ExecContext":     1,
	"PrepareContext":  1,
}

func runSQLInjection(pass *analysis.Pass) (any, error) {
	insp := pass.ResultOf[insppass.Analyzer].(*inspector.Inspector)
	tr := newTaintTracker(splitList(sqlValidators))
	safety := newSafetyChecker(pass, sqlSafety.config("@safe-query"))

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
		idx, ok := sqlQueryArg(pass, call)
		if !ok || idx >= len(call.Args) {
			return true
		}
		arg := call.Args[idx]
		reason, bad := unsafeQueryExpr(tr, arg)
		if !bad {
			return true
		}
		if safety.Suppressed(arg, stack, tr) {
			return true
		}
		emit(pass, call.Fun.Pos(), MsgUnsafeQueryConstruction, reason)
		return true
	})
	return nil, nil
}

func sqlQueryArg(pass *analysis.Pass, call *ast.CallExpr) (int, bool) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel == nil {
		return 0, false
	}
	idx, ok := sqlQueryMethods[sel.Sel.Name]
	if !ok {
		return 0, false
	}
	if !sqlReceiver(pass, sel.X) {
		return 0, false
	}
	return idx, true
}

// sqlReceiver prefers type info and falls back to receiver naming so partially
// type-checked sources still match.
func sqlReceiver(pass *analysis.Pass, recv ast.Expr) bool {
	if pass.TypesInfo != nil {
		if t := pass.TypesInfo.TypeOf(recv); t != nil {
			for _, name := range []string{"DB", "Tx", "Stmt", "Conn"} {
				if isNamed(deref(t), "database/sql", name) {
					return true
				}
			}
		}
	}
	root := rootIdent(recv)
	if root == nil {
		return false
	}
	switch strings.ToLower(root.Name) {
	case "db", "tx", "conn", "stmt", "database", "sqldb", "dbx", "pool":
		return true
	}
	return false
}

// unsafeQueryExpr classifies a query argument. Literals are fine; formatting,
// concatenation with dynamic parts, and tainted identifiers are not.
func unsafeQueryExpr(tr *taintTracker, e ast.Expr) (string, bool) {
	switch e := e.(type) {
	case *ast.Ident:
		if tr.Tainted(e.Name) {
			return "untrusted input", true
		}
	case *ast.BinaryExpr:
		if e.Op == token.ADD && concatHasDynamicPart(tr, e) {
			return "string concatenation", true
		}
	case *ast.CallExpr:
		if id := calleeIdent(e.Fun); id != nil && id.Name == "Sprintf" {
			for i, a := range e.Args {
				if i == 0 {
					continue
				}
				if !literalOrValidated(tr, a) {
					return "fmt.Sprintf", true
				}
			}
		}
	case *ast.ParenExpr:
		return unsafeQueryExpr(tr, e.X)
	}
	return "", false
}

func concatHasDynamicPart(tr *taintTracker, e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.BinaryExpr:
		if e.Op != token.ADD {
			return !literalOrValidated(tr, e)
		}
		return concatHasDynamicPart(tr, e.X) || concatHasDynamicPart(tr, e.Y)
	default:
		return !literalOrValidated(tr, e)
	}
}

func literalOrValidated(tr *taintTracker, e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.BasicLit:
		return true
	case *ast.Ident:
		return tr.Validated(e.Name)
	case *ast.ParenExpr:
		return literalOrValidated(tr, e.X)
	}
	return false
}
