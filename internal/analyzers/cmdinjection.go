package analyzers

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	insppass "golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// AnalyzerCmdInjection flags process launches whose program, arguments or shell
// script come from untrusted input.
var AnalyzerCmdInjection = &analysis.Analyzer{
	Name:     "sec002_cmdinjection",
	Doc:      "flags os/exec invocations built from untrusted input or non-constant shell scripts",
	Run:      runCmdInjection,
	Requires: []*analysis.Analyzer{insppass.Analyzer},
}

var (
	cmdSafety     safetyOpts
	cmdValidators string
)

func init() {
	cmdSafety.register(&AnalyzerCmdInjection.Flags)
	AnalyzerCmdInjection.Flags.StringVar(&cmdValidators, "validators", "", "comma-separated callee names that validate input")
}

var shellNames = map[string]struct{}{
	"sh": {}, "bash": {}, "zsh": {}, "dash": {},
	"/bin/sh": {}, "/bin/bash": {}, "/usr/bin/bash": {},
	"cmd": {}, "cmd.exe": {}, "powershell": {},
}

func runCmdInjection(pass *analysis.Pass) (any, error) {
	insp := pass.ResultOf[insppass.Analyzer].(*inspector.Inspector)
	tr := newTaintTracker(splitList(cmdValidators))
	safety := newSafetyChecker(pass, cmdSafety.config("@safe-exec"))

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
		progIdx, ok := execCommandCall(pass, call)
		if !ok || progIdx >= len(call.Args) {
			return true
		}
		prog := call.Args[progIdx]

		// sh -c with a non-constant script is unsafe regardless of taint
		if name, ok := stringLit(prog); ok {
			if _, shell := shellNames[name]; shell {
				if script := shellScriptArg(call.Args[progIdx+1:]); script != nil {
					if _, lit := stringLit(script); !lit && !safety.Suppressed(script, stack, tr) {
						emit(pass, call.Fun.Pos(), MsgUnsafeCommandConstruction, "shell script")
						return true
					}
				}
			}
		}

		if tr.ExprTainted(prog) && !safety.Suppressed(prog, stack, tr) {
			emit(pass, call.Fun.Pos(), MsgUnsafeCommandConstruction, "program")
			return true
		}
		for _, a := range call.Args[progIdx+1:] {
			if tr.ExprTainted(a) && !safety.Suppressed(a, stack, tr) {
				emit(pass, call.Fun.Pos(), MsgUnsafeCommandConstruction, "argument")
				return true
			}
		}
		return true
	})
	return nil, nil
}

// execCommandCall matches exec.Command/exec.CommandContext and returns the
// index of the program argument.
func execCommandCall(pass *analysis.Pass, call *ast.CallExpr) (int, bool) {
	switch {
	case usesPkgFunc(pass, call, "os/exec", "Command"), flattenChain(call.Fun) == "exec.Command":
		return 0, true
	case usesPkgFunc(pass, call, "os/exec", "CommandContext"), flattenChain(call.Fun) == "exec.CommandContext":
		return 1, true
	}
	return 0, false
}

// shellScriptArg returns the argument following a "-c" flag, or nil.
func shellScriptArg(args []ast.Expr) ast.Expr {
	for i, a := range args {
		if v, ok := stringLit(a); ok && v == "-c" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return nil
}
