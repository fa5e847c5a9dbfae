package analyzers

import (
	"testing"

	"github.com/ofri-peretz/go-sec-audit/internal/analyzers/testutil"

	"golang.org/x/tools/go/analysis"
)

func runInsecureTLSAnalyzerOnSrc(t *testing.T, src string) []analysis.Diagnostic {
	t.Helper()
	diags, err := testutil.RunAnalyzerOnSrc(AnalyzerInsecureTLS, src)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return diags
}

func TestInsecureTLS_SkipVerifyInLiteral_Flagged(t *testing.T) {
	src := `package a
import "crypto/tls"
func f() {
	c := &tls.Config{InsecureSkipVerify: true}
	_ = c
}`
	diags := runInsecureTLSAnalyzerOnSrc(t, src)
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	if diags[0].Category != MsgTLSVerificationDisabled {
		t.Fatalf("expected %s, got %s", MsgTLSVerificationDisabled, diags[0].Category)
	}
}

func TestInsecureTLS_SkipVerifyAssignment_Flagged(t *testing.T) {
	src := `package a
func f(tlsConf *Config) {
	tlsConf.InsecureSkipVerify = true
}`
	if diags := runInsecureTLSAnalyzerOnSrc(t, src); len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
}

func TestInsecureTLS_WeakMinVersionConstant_FlaggedWithFix(t *testing.T) {
	src := `package a
import "crypto/tls"
func f() {
	c := &tls.Config{MinVersion: tls.VersionTLS10}
	_ = c
}`
	diags := runInsecureTLSAnalyzerOnSrc(t, src)
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	d := diags[0]
	if d.Category != MsgTLSWeakMinVersion {
		t.Fatalf("expected %s, got %s", MsgTLSWeakMinVersion, d.Category)
	}
	if len(d.SuggestedFixes) != 1 {
		t.Fatalf("expected a suggested fix, got %d", len(d.SuggestedFixes))
	}
	if got := string(d.SuggestedFixes[0].TextEdits[0].NewText); got != "tls.VersionTLS12" {
		t.Fatalf("expected tls.VersionTLS12 rewrite, got %q", got)
	}
}

func TestInsecureTLS_WeakMinVersionRawValue_Flagged(t *testing.T) {
	src := `package a
import "crypto/tls"
func f() {
	c := &tls.Config{MinVersion: 0x0301}
	_ = c
}`
	if diags := runInsecureTLSAnalyzerOnSrc(t, src); len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
}

func TestInsecureTLS_BothFieldsWeak_TwoDiags(t *testing.T) {
	src := `package a
import "crypto/tls"
func f() {
	c := &tls.Config{
		InsecureSkipVerify: true,
		MinVersion:         tls.VersionTLS11,
	}
	_ = c
}`
	if diags := runInsecureTLSAnalyzerOnSrc(t, src); len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(diags))
	}
}

func TestInsecureTLS_ModernConfig_NoDiag(t *testing.T) {
	src := `package a
import "crypto/tls"
func f() {
	c := &tls.Config{MinVersion: tls.VersionTLS12}
	c2 := &tls.Config{InsecureSkipVerify: false}
	_, _ = c, c2
}`
	if diags := runInsecureTLSAnalyzerOnSrc(t, src); len(diags) != 0 {
		t.Fatalf("expected 0 diagnostics, got %d", len(diags))
	}
}

func TestInsecureTLS_UnrelatedReceiver_NoDiag(t *testing.T) {
	src := `package a
func f(opts *Options) {
	opts.InsecureSkipVerify = true
}`
	if diags := runInsecureTLSAnalyzerOnSrc(t, src); len(diags) != 0 {
		t.Fatalf("expected 0 diagnostics without a TLS receiver, got %d", len(diags))
	}
}

func TestInsecureTLS_SafeAnnotation_Suppressed(t *testing.T) {
	src := `package a
import "crypto/tls"
func f() {
	// @safe talking to a local test double with a self-signed cert
	c := &tls.Config{InsecureSkipVerify: true}
	_ = c
}`
	if diags := runInsecureTLSAnalyzerOnSrc(t, src); len(diags) != 0 {
		t.Fatalf("expected suppression, got %d diagnostics", len(diags))
	}
}
