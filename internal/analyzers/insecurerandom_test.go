package analyzers

import (
	"testing"

	"github.com/ofri-peretz/go-sec-audit/internal/analyzers/testutil"

	"golang.org/x/tools/go/analysis"
)

func runInsecureRandomAnalyzerOnSrc(t *testing.T, src string) []analysis.Diagnostic {
	t.Helper()
	diags, err := testutil.RunAnalyzerOnSrc(AnalyzerInsecureRandom, src)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return diags
}

func TestInsecureRandom_TokenBinding_Flagged(t *testing.T) {
	src := `package a
import "math/rand"
func f() {
	token := rand.Intn(999999)
	_ = token
}`
	diags := runInsecureRandomAnalyzerOnSrc(t, src)
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	if diags[0].Category != MsgInsecureRandomSource {
		t.Fatalf("expected %s, got %s", MsgInsecureRandomSource, diags[0].Category)
	}
}

func TestInsecureRandom_SecretFunctionContext_Flagged(t *testing.T) {
	src := `package a
import "math/rand"
func generateSessionID() int64 {
	return rand.Int63()
}`
	if diags := runInsecureRandomAnalyzerOnSrc(t, src); len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
}

func TestInsecureRandom_AliasedImport_Flagged(t *testing.T) {
	src := `package a
import mrand "math/rand"
func f() {
	nonce := mrand.Int()
	_ = nonce
}`
	if diags := runInsecureRandomAnalyzerOnSrc(t, src); len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic for aliased import, got %d", len(diags))
	}
}

func TestInsecureRandom_RandV2_Flagged(t *testing.T) {
	src := `package a
import "math/rand/v2"
func f() {
	otp := rand.IntN(1000000)
	_ = otp
}`
	if diags := runInsecureRandomAnalyzerOnSrc(t, src); len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic for math/rand/v2, got %d", len(diags))
	}
}

func TestInsecureRandom_NonSecretContext_NoDiag(t *testing.T) {
	src := `package a
import "math/rand"
func pick(items []string) string {
	idx := rand.Intn(len(items))
	return items[idx]
}`
	if diags := runInsecureRandomAnalyzerOnSrc(t, src); len(diags) != 0 {
		t.Fatalf("shuffling is fine, got %d diagnostics", len(diags))
	}
}

func TestInsecureRandom_NoMathRandImport_NoDiag(t *testing.T) {
	src := `package a
import "crypto/rand"
func f() {
	key := make([]byte, 32)
	rand.Read(key)
	_ = key
}`
	if diags := runInsecureRandomAnalyzerOnSrc(t, src); len(diags) != 0 {
		t.Fatalf("crypto/rand is the right tool, got %d diagnostics", len(diags))
	}
}

func TestInsecureRandom_SafeAnnotation_Suppressed(t *testing.T) {
	src := `package a
import "math/rand"
func f() {
	// @safe load-test fixture, not a real credential
	token := rand.Intn(999999)
	_ = token
}`
	if diags := runInsecureRandomAnalyzerOnSrc(t, src); len(diags) != 0 {
		t.Fatalf("expected suppression, got %d diagnostics", len(diags))
	}
}
