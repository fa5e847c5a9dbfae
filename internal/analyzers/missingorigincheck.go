package analyzers

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	insppass "golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// AnalyzerMissingOriginCheck flags websocket upgraders constructed without an
// origin check, or with one that accepts everything. Handlers that upgrade
// through such a value are reported once each; upgraders no handler consumes
// are reported at the composite literal.
var AnalyzerMissingOriginCheck = &analysis.Analyzer{
	Name:     "sec031_missingorigincheck",
	Doc:      "flags websocket upgraders lacking a real origin check",
	Run:      runMissingOriginCheck,
	Requires: []*analysis.Analyzer{insppass.Analyzer},
}

var upgraderSafety safetyOpts

func init() {
	upgraderSafety.register(&AnalyzerMissingOriginCheck.Flags)
}

type upgraderIssue struct {
	lit     *ast.CompositeLit
	stack   []ast.Node
	msgID   string
	claimed bool
}

func runMissingOriginCheck(pass *analysis.Pass) (any, error) {
	insp := pass.ResultOf[insppass.Analyzer].(*inspector.Inspector)
	safety := newSafetyChecker(pass, upgraderSafety.config("@safe-origin"))

	// first pass: classify every Upgrader composite literal
	issues := map[*ast.CompositeLit]*upgraderIssue{}
	byName := map[string]*upgraderIssue{}
	insp.WithStack([]ast.Node{(*ast.CompositeLit)(nil)}, func(n ast.Node, push bool, stack []ast.Node) bool {
		if !push {
			return true
		}
		lit := n.(*ast.CompositeLit)
		if !upgraderLit(lit) {
			return true
		}
		msgID, bad := classifyUpgrader(lit)
		if !bad {
			return true
		}
		iss := &upgraderIssue{lit: lit, stack: append([]ast.Node{}, stack...), msgID: msgID}
		issues[lit] = iss
		if name := upgraderBinding(stack); name != "" {
			byName[name] = iss
		}
		return true
	})

	// second pass: attribute issues to the handlers that upgrade through them
	reportedFuncs := map[*ast.FuncDecl]struct{}{}
	insp.WithStack([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node, push bool, stack []ast.Node) bool {
		if !push {
			return true
		}
		call := n.(*ast.CallExpr)
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok || sel.Sel == nil || sel.Sel.Name != "Upgrade" {
			return true
		}
		root := rootIdent(sel.X)
		if root == nil {
			return true
		}
		iss, ok := byName[root.Name]
		if !ok {
			return true
		}
		iss.claimed = true
		fn := enclosingFuncDecl(stack)
		if fn == nil {
			return true
		}
		if _, done := reportedFuncs[fn]; done {
			return true
		}
		reportedFuncs[fn] = struct{}{}
		if safety.Suppressed(call, stack, nil) {
			return true
		}
		emit(pass, sel.Sel.Pos(), iss.msgID)
		return true
	})

	// leftovers: upgraders nothing upgraded through
	for _, iss := range issues {
		if iss.claimed {
			continue
		}
		if safety.Suppressed(iss.lit, iss.stack, nil) {
			continue
		}
		emit(pass, iss.lit.Lbrace, iss.msgID)
	}
	return nil, nil
}

func upgraderLit(lit *ast.CompositeLit) bool {
	switch t := lit.Type.(type) {
	case *ast.Ident:
		return t.Name == "Upgrader"
	case *ast.SelectorExpr:
		return t.Sel != nil && t.Sel.Name == "Upgrader"
	}
	return false
}

// classifyUpgrader reports whether the literal is missing CheckOrigin or
// carries one that constantly returns true.
func classifyUpgrader(lit *ast.CompositeLit) (string, bool) {
	for _, el := range lit.Elts {
		kv, ok := el.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		key, ok := kv.Key.(*ast.Ident)
		if !ok || key.Name != "CheckOrigin" {
			continue
		}
		if alwaysTrueFunc(kv.Value) {
			return MsgPermissiveOriginCheck, true
		}
		return "", false
	}
	return MsgMissingOriginCheck, true
}

// alwaysTrueFunc matches func literals whose whole body is "return true".
func alwaysTrueFunc(e ast.Expr) bool {
	fl, ok := e.(*ast.FuncLit)
	if !ok || fl.Body == nil || len(fl.Body.List) != 1 {
		return false
	}
	ret, ok := fl.Body.List[0].(*ast.ReturnStmt)
	if !ok || len(ret.Results) != 1 {
		return false
	}
	id, ok := ret.Results[0].(*ast.Ident)
	return ok && id.Name == "true"
}

// upgraderBinding walks the stack for the identifier the composite is bound to.
func upgraderBinding(stack []ast.Node) string {
	for i := len(stack) - 1; i >= 0; i-- {
		switch p := stack[i].(type) {
		case *ast.AssignStmt:
			if len(p.Lhs) > 0 {
				if id, ok := p.Lhs[0].(*ast.Ident); ok {
					return id.Name
				}
			}
		case *ast.ValueSpec:
			if len(p.Names) > 0 {
				return p.Names[0].Name
			}
		}
	}
	return ""
}

func enclosingFuncDecl(stack []ast.Node) *ast.FuncDecl {
	for i := len(stack) - 1; i >= 0; i-- {
		if fn, ok := stack[i].(*ast.FuncDecl); ok {
			return fn
		}
	}
	return nil
}
