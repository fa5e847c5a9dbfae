package analyzers

import (
	"testing"

	"github.com/ofri-peretz/go-sec-audit/internal/analyzers/testutil"

	"golang.org/x/tools/go/analysis"
)

func runPathTraversalAnalyzerOnSrc(t *testing.T, src string) []analysis.Diagnostic {
	t.Helper()
	diags, err := testutil.RunAnalyzerOnSrc(AnalyzerPathTraversal, src)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return diags
}

func TestPathTraversal_RequestValueToOpen_Flagged(t *testing.T) {
	src := `package a
import "os"
func f(r Req) {
	name := r.FormValue("file")
	os.Open(name)
}`
	diags := runPathTraversalAnalyzerOnSrc(t, src)
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	if diags[0].Category != MsgUnsafePathConstruction {
		t.Fatalf("expected %s, got %s", MsgUnsafePathConstruction, diags[0].Category)
	}
}

func TestPathTraversal_JoinKeepsTaint_Flagged(t *testing.T) {
	src := `package a
import (
	"os"
	"path/filepath"
)
func f(r Req, base string) {
	name := r.URL.Query().Get("name")
	os.ReadFile(filepath.Join(base, name))
}`
	if diags := runPathTraversalAnalyzerOnSrc(t, src); len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
}

func TestPathTraversal_CleanedVariable_NoDiag(t *testing.T) {
	src := `package a
import (
	"os"
	"path/filepath"
)
func f(r Req) {
	name := r.FormValue("file")
	cleaned := filepath.Clean(name)
	os.Open(cleaned)
}`
	if diags := runPathTraversalAnalyzerOnSrc(t, src); len(diags) != 0 {
		t.Fatalf("expected 0 diagnostics after Clean, got %d", len(diags))
	}
}

func TestPathTraversal_InlineClean_NoDiag(t *testing.T) {
	src := `package a
import (
	"os"
	"path/filepath"
)
func f(r Req) {
	os.Open(filepath.Clean(r.FormValue("file")))
}`
	if diags := runPathTraversalAnalyzerOnSrc(t, src); len(diags) != 0 {
		t.Fatalf("expected 0 diagnostics, got %d", len(diags))
	}
}

func TestPathTraversal_ConstantPath_NoDiag(t *testing.T) {
	src := `package a
import "os"
func f() {
	os.ReadFile("config.yaml")
	os.Remove("/var/run/app.pid")
}`
	if diags := runPathTraversalAnalyzerOnSrc(t, src); len(diags) != 0 {
		t.Fatalf("expected 0 diagnostics, got %d", len(diags))
	}
}

func TestPathTraversal_EnvPath_Flagged(t *testing.T) {
	src := `package a
import "os"
func f() {
	dir := os.Getenv("WORKDIR")
	os.RemoveAll(dir)
}`
	if diags := runPathTraversalAnalyzerOnSrc(t, src); len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
}
