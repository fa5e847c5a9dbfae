package analyzers

import (
	"testing"

	"github.com/ofri-peretz/go-sec-audit/internal/analyzers/testutil"

	"golang.org/x/tools/go/analysis"
)

func runWildcardOriginAnalyzerOnSrc(t *testing.T, src string) []analysis.Diagnostic {
	t.Helper()
	diags, err := testutil.RunAnalyzerOnSrc(AnalyzerWildcardOrigin, src)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return diags
}

func TestWildcardOrigin_HeaderSet_FlaggedOnce(t *testing.T) {
	src := `package a
func handler(w RW, r *Req) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Write([]byte("ok"))
}`
	diags := runWildcardOriginAnalyzerOnSrc(t, src)
	if len(diags) != 1 {
		t.Fatalf("expected exactly 1 diagnostic, got %d", len(diags))
	}
	if diags[0].Category != MsgWildcardOrigin {
		t.Fatalf("expected %s, got %s", MsgWildcardOrigin, diags[0].Category)
	}
}

func TestWildcardOrigin_HeaderCaseInsensitive_Flagged(t *testing.T) {
	src := `package a
func handler(w RW) {
	w.Header().Add("access-control-allow-origin", "*")
}`
	if diags := runWildcardOriginAnalyzerOnSrc(t, src); len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
}

func TestWildcardOrigin_AllowedOriginsList_FlagsTheWildcardElement(t *testing.T) {
	src := `package a
func f() {
	c := Options{AllowedOrigins: []string{"https://app.example.com", "*"}}
	_ = c
}`
	diags := runWildcardOriginAnalyzerOnSrc(t, src)
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
}

func TestWildcardOrigin_SpecificOrigin_NoDiag(t *testing.T) {
	src := `package a
func handler(w RW) {
	w.Header().Set("Access-Control-Allow-Origin", "https://app.example.com")
}`
	if diags := runWildcardOriginAnalyzerOnSrc(t, src); len(diags) != 0 {
		t.Fatalf("expected 0 diagnostics, got %d", len(diags))
	}
}

func TestWildcardOrigin_UnrelatedHeader_NoDiag(t *testing.T) {
	src := `package a
func handler(w RW) {
	w.Header().Set("Cache-Control", "*")
}`
	if diags := runWildcardOriginAnalyzerOnSrc(t, src); len(diags) != 0 {
		t.Fatalf("expected 0 diagnostics, got %d", len(diags))
	}
}

func TestWildcardOrigin_DevOverrideDisablesRule(t *testing.T) {
	if err := AnalyzerWildcardOrigin.Flags.Set("allow-wildcard-in-dev", "true"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	defer func() { _ = AnalyzerWildcardOrigin.Flags.Set("allow-wildcard-in-dev", "false") }()
	src := `package a
func handler(w RW) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
}`
	if diags := runWildcardOriginAnalyzerOnSrc(t, src); len(diags) != 0 {
		t.Fatalf("expected 0 diagnostics with the dev override, got %d", len(diags))
	}
}

func TestWildcardOrigin_ExplicitlyAllowedWildcard_NoDiag(t *testing.T) {
	if err := AnalyzerWildcardOrigin.Flags.Set("allowed-origins", "*"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	defer func() { _ = AnalyzerWildcardOrigin.Flags.Set("allowed-origins", "") }()
	src := `package a
func handler(w RW) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
}`
	if diags := runWildcardOriginAnalyzerOnSrc(t, src); len(diags) != 0 {
		t.Fatalf("expected 0 diagnostics when * is explicitly allowed, got %d", len(diags))
	}
}

func TestWildcardOrigin_RepeatRunsAreIdentical(t *testing.T) {
	src := `package a
func handler(w RW) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
}
func f() {
	c := Options{AllowOrigins: []string{"*"}}
	_ = c
}`
	first := runWildcardOriginAnalyzerOnSrc(t, src)
	second := runWildcardOriginAnalyzerOnSrc(t, src)
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 diagnostics on both runs, got %d then %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Category != second[i].Category || first[i].Message != second[i].Message {
			t.Fatalf("runs disagree at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestWildcardOrigin_SafeAnnotation_Suppressed(t *testing.T) {
	src := `package a
func handler(w RW) {
	// @safe-origin public read-only asset endpoint
	w.Header().Set("Access-Control-Allow-Origin", "*")
}`
	if diags := runWildcardOriginAnalyzerOnSrc(t, src); len(diags) != 0 {
		t.Fatalf("expected suppression, got %d diagnostics", len(diags))
	}
}
