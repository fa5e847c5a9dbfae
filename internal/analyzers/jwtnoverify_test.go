package analyzers

import (
	"testing"

	"github.com/ofri-peretz/go-sec-audit/internal/analyzers/testutil"

	"golang.org/x/tools/go/analysis"
)

func runJWTNoVerifyAnalyzerOnSrc(t *testing.T, src string) []analysis.Diagnostic {
	t.Helper()
	diags, err := testutil.RunAnalyzerOnSrc(AnalyzerJWTNoVerify, src)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return diags
}

func TestJWTNoVerify_ParseUnverified_Flagged(t *testing.T) {
	src := `package a
import "github.com/golang-jwt/jwt/v5"
func f(raw string) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	parser.ParseUnverified(raw, claims)
}`
	diags := runJWTNoVerifyAnalyzerOnSrc(t, src)
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	if diags[0].Category != MsgMissingSignatureVerification {
		t.Fatalf("expected %s, got %s", MsgMissingSignatureVerification, diags[0].Category)
	}
}

func TestJWTNoVerify_ParseWithNilKeyfunc_Flagged(t *testing.T) {
	src := `package a
import "github.com/golang-jwt/jwt/v5"
func f(raw string) {
	jwt.Parse(raw, nil)
}`
	if diags := runJWTNoVerifyAnalyzerOnSrc(t, src); len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
}

func TestJWTNoVerify_KeyfuncAlwaysNil_Flagged(t *testing.T) {
	src := `package a
import "github.com/golang-jwt/jwt/v5"
func f(raw string) {
	jwt.ParseWithClaims(raw, jwt.MapClaims{}, func(t *jwt.Token) (any, error) {
		return nil, nil
	})
}`
	if diags := runJWTNoVerifyAnalyzerOnSrc(t, src); len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic for nil-returning keyfunc, got %d", len(diags))
	}
}

func TestJWTNoVerify_RealKeyfunc_NoDiag(t *testing.T) {
	src := `package a
import "github.com/golang-jwt/jwt/v5"
var key []byte
func f(raw string) {
	jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return key, nil
	})
}`
	if diags := runJWTNoVerifyAnalyzerOnSrc(t, src); len(diags) != 0 {
		t.Fatalf("expected 0 diagnostics, got %d", len(diags))
	}
}

func TestJWTNoVerify_NonJWTParse_NoDiag(t *testing.T) {
	src := `package a
func f(src string) {
	parser.Parse(src, nil)
}`
	if diags := runJWTNoVerifyAnalyzerOnSrc(t, src); len(diags) != 0 {
		t.Fatalf("Parse on a non-JWT receiver should not match, got %d", len(diags))
	}
}

func TestJWTNoVerify_ClaimsWithoutValidCheck_Flagged(t *testing.T) {
	src := `package a
import "github.com/golang-jwt/jwt/v5"
var key []byte
func f(raw string) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return key, nil
	})
	if err != nil {
		return
	}
	use(token.Claims)
	use(token.Claims)
}`
	diags := runJWTNoVerifyAnalyzerOnSrc(t, src)
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic at the first Claims read, got %d", len(diags))
	}
	if diags[0].Category != MsgMissingSignatureVerification {
		t.Fatalf("expected %s, got %s", MsgMissingSignatureVerification, diags[0].Category)
	}
}

func TestJWTNoVerify_ClaimsAfterValidCheck_NoDiag(t *testing.T) {
	src := `package a
import "github.com/golang-jwt/jwt/v5"
var key []byte
func f(raw string) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return key, nil
	})
	if err != nil || !token.Valid {
		return
	}
	use(token.Claims)
}`
	if diags := runJWTNoVerifyAnalyzerOnSrc(t, src); len(diags) != 0 {
		t.Fatalf("Claims read after a Valid check should pass, got %d", len(diags))
	}
}

func TestJWTNoVerify_ClaimsOnFlaggedParse_SingleDiag(t *testing.T) {
	src := `package a
import "github.com/golang-jwt/jwt/v5"
func f(raw string) {
	token, _ := jwt.Parse(raw, nil)
	use(token.Claims)
}`
	diags := runJWTNoVerifyAnalyzerOnSrc(t, src)
	if len(diags) != 1 {
		t.Fatalf("a flagged parse should not be reported again at Claims, got %d", len(diags))
	}
}

func TestJWTNoVerify_SafeAnnotation_Suppressed(t *testing.T) {
	src := `package a
import "github.com/golang-jwt/jwt/v5"
func f(raw string) {
	// @safe expiry probe, claims are never trusted here
	jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
}`
	if diags := runJWTNoVerifyAnalyzerOnSrc(t, src); len(diags) != 0 {
		t.Fatalf("expected suppression, got %d diagnostics", len(diags))
	}
}
