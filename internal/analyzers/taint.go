package analyzers

import (
	"go/ast"
	"go/token"
	"regexp"
	"strings"
)

// taintState classifies an identifier binding during a single file walk.
type taintState uint8

const (
	taintUnknown taintState = iota
	taintTainted
	taintValidated
)

// sensitiveNameRe matches identifiers that commonly hold credentials.
var sensitiveNameRe = regexp.MustCompile(`(?i)(password|passwd|secret|token|api[_-]?key|apikey|credential|private[_-]?key)`)

// taintTracker tracks identifier states for one rule run. It is lexical and
// single-pass: bindings are observed in source order, and flows through
// branches, loops or function boundaries are not reconciled. Use before
// assignment therefore reads as unknown; that false negative is part of the
// contract, rules must not try to compensate for it.
type taintTracker struct {
	states     map[string]taintState
	sensitive  map[string]struct{}
	validators map[string]struct{}
}

// newTaintTracker builds a tracker recognizing the given validator/sanitizer
// callee names. Each rule run constructs its own tracker; nothing survives a run.
func newTaintTracker(validators []string) *taintTracker {
	v := make(map[string]struct{}, len(validators))
	for _, name := range validators {
		if name = strings.TrimSpace(name); name != "" {
			v[name] = struct{}{}
		}
	}
	return &taintTracker{
		states:     map[string]taintState{},
		sensitive:  map[string]struct{}{},
		validators: v,
	}
}

// observe updates tracker state for assignment-like nodes. Rules feed it every
// node their inspector walk pushes so transitions happen in source order, ahead
// of any sink the same walk reaches later.
func (t *taintTracker) observe(n ast.Node) {
	switch n := n.(type) {
	case *ast.AssignStmt:
		for i, lhs := range n.Lhs {
			id, ok := lhs.(*ast.Ident)
			if !ok || id.Name == "_" {
				continue
			}
			switch {
			case i < len(n.Rhs):
				t.bind(id.Name, n.Rhs[i])
			case len(n.Rhs) == 1:
				// x, err := f(): one RHS taints every binding
				t.bind(id.Name, n.Rhs[0])
			}
		}
	case *ast.ValueSpec:
		for i, id := range n.Names {
			if id.Name == "_" || i >= len(n.Values) {
				continue
			}
			t.bind(id.Name, n.Values[i])
		}
	}
}

func (t *taintTracker) bind(name string, rhs ast.Expr) {
	switch {
	case t.isValidatorCall(rhs):
		t.states[name] = taintValidated
	case t.ExprTainted(rhs):
		t.states[name] = taintTainted
	}
	if sensitiveNameRe.MatchString(name) {
		t.sensitive[name] = struct{}{}
	}
	if v, ok := stringLit(rhs); ok && matchesCredentialPrefix(v) {
		t.sensitive[name] = struct{}{}
	}
}

// Tainted reports whether name was last seen bound to untrusted input.
func (t *taintTracker) Tainted(name string) bool { return t.states[name] == taintTainted }

// Validated reports whether name was last (re)assigned through a validator call.
func (t *taintTracker) Validated(name string) bool { return t.states[name] == taintValidated }

// Sensitive reports whether name looks like it holds credentials, either by
// naming convention or because it was assigned a credential-shaped literal.
func (t *taintTracker) Sensitive(name string) bool {
	_, ok := t.sensitive[name]
	return ok
}

// ExprTainted reports whether e carries untrusted input: a source pattern, a
// tainted identifier, or concatenation/formatting built from either. Validator
// calls cut the walk.
func (t *taintTracker) ExprTainted(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.Ident:
		return t.states[e.Name] == taintTainted
	case *ast.BinaryExpr:
		if e.Op != token.ADD {
			return false
		}
		return t.ExprTainted(e.X) || t.ExprTainted(e.Y)
	case *ast.CallExpr:
		if t.isValidatorCall(e) {
			return false
		}
		if isSourceCall(e) {
			return true
		}
		// method calls on a tainted receiver stay tainted (scanner.Text etc.)
		if sel, ok := e.Fun.(*ast.SelectorExpr); ok {
			if root := rootIdent(sel.X); root != nil && t.states[root.Name] == taintTainted {
				return true
			}
		}
		// formatting/joining propagates taint from arguments
		for _, a := range e.Args {
			if t.ExprTainted(a) {
				return true
			}
		}
		return false
	case *ast.IndexExpr:
		if flattenChain(e.X) == "os.Args" {
			return true
		}
		return t.ExprTainted(e.X)
	case *ast.SelectorExpr:
		return isSourceChain(flattenChain(e))
	case *ast.ParenExpr:
		return t.ExprTainted(e.X)
	}
	return false
}

func (t *taintTracker) isValidatorCall(e ast.Expr) bool {
	call, ok := e.(*ast.CallExpr)
	if !ok {
		return false
	}
	id := calleeIdent(call.Fun)
	if id == nil {
		return false
	}
	_, ok = t.validators[id.Name]
	return ok
}

// requestSourceSuffixes are selector chains that read request, CLI or
// environment data. Matching is by name shape: when type info cannot resolve a
// receiver the chain text still catches the common spellings, at the cost of
// missing aliased receivers.
var requestSourceSuffixes = []string{
	".FormValue",
	".PostFormValue",
	".Cookie",
	".URL.Query.Get",
	".Header.Get",
	".Form.Get",
	".PostForm.Get",
	".Body",
}

func isSourceChain(chain string) bool {
	if chain == "" {
		return false
	}
	switch chain {
	case "os.Getenv", "os.LookupEnv", "os.Args", "os.Stdin":
		return true
	}
	for _, suf := range requestSourceSuffixes {
		if strings.HasSuffix(chain, suf) {
			return true
		}
	}
	return false
}

func isSourceCall(call *ast.CallExpr) bool {
	return isSourceChain(flattenChain(call.Fun))
}
