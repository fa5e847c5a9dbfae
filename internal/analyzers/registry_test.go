package analyzers

import (
	"sort"
	"strings"
	"testing"
)

func TestAll_StableOrderAndMetadata(t *testing.T) {
	specs := All()
	if len(specs) != 12 {
		t.Fatalf("expected 12 rules, got %d", len(specs))
	}
	if !sort.SliceIsSorted(specs, func(i, j int) bool { return specs[i].RuleID < specs[j].RuleID }) {
		t.Fatalf("catalog must stay sorted by rule ID")
	}
	seen := map[string]struct{}{}
	for _, spec := range specs {
		if _, dup := seen[spec.RuleID]; dup {
			t.Fatalf("duplicate rule ID %s", spec.RuleID)
		}
		seen[spec.RuleID] = struct{}{}
		if spec.Analyzer == nil {
			t.Fatalf("%s has no analyzer", spec.RuleID)
		}
		if spec.Title == "" || spec.Suggestion == "" {
			t.Fatalf("%s is missing catalog text", spec.RuleID)
		}
		if !strings.HasPrefix(spec.CWE, "CWE-") {
			t.Fatalf("%s has malformed CWE %q", spec.RuleID, spec.CWE)
		}
		wantPrefix := strings.ToLower(spec.RuleID) + "_"
		if !strings.HasPrefix(spec.Analyzer.Name, wantPrefix) {
			t.Fatalf("%s analyzer named %q, want prefix %q", spec.RuleID, spec.Analyzer.Name, wantPrefix)
		}
	}
}

func TestAll_ReturnsACopy(t *testing.T) {
	first := All()
	first[0].RuleID = "mutated"
	if All()[0].RuleID == "mutated" {
		t.Fatalf("All must hand out a copy of the catalog")
	}
}

func TestSelect_IncludeOnly(t *testing.T) {
	specs := Select("SEC001,SEC020", "")
	if len(specs) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(specs))
	}
	if specs[0].RuleID != RuleSQLInjectionID || specs[1].RuleID != RuleWeakHashID {
		t.Fatalf("unexpected selection: %s, %s", specs[0].RuleID, specs[1].RuleID)
	}
}

func TestSelect_Disable(t *testing.T) {
	specs := Select("", "SEC010")
	if len(specs) != 11 {
		t.Fatalf("expected 11 rules, got %d", len(specs))
	}
	for _, spec := range specs {
		if spec.RuleID == RuleHardcodedCredsID {
			t.Fatalf("SEC010 should have been disabled")
		}
	}
}

func TestSelect_IncludeWinsOverDisable(t *testing.T) {
	specs := Select("SEC001", "SEC001")
	if len(specs) != 1 || specs[0].RuleID != RuleSQLInjectionID {
		t.Fatalf("include list takes precedence, got %+v", specs)
	}
}

func TestSelect_UnknownInclude_Empty(t *testing.T) {
	if specs := Select("SEC999", ""); len(specs) != 0 {
		t.Fatalf("unknown IDs select nothing, got %d", len(specs))
	}
}

func TestByID(t *testing.T) {
	spec, ok := ByID(RuleWildcardOriginID)
	if !ok || spec.RuleID != RuleWildcardOriginID {
		t.Fatalf("ByID(%s) = %+v, %v", RuleWildcardOriginID, spec, ok)
	}
	if _, ok := ByID("SEC999"); ok {
		t.Fatalf("unknown ID must report not found")
	}
}

func TestMessageCatalog_CoversEveryEmittedID(t *testing.T) {
	ids := []string{
		MsgUnsafeQueryConstruction,
		MsgUnsafeCommandConstruction,
		MsgUnsafePathConstruction,
		MsgTaintedFormatString,
		MsgUseEnvironmentVariable,
		MsgSensitiveDataLogged,
		MsgWeakHashAlgorithm,
		MsgInsecureRandomSource,
		MsgTLSVerificationDisabled,
		MsgTLSWeakMinVersion,
		MsgWildcardOrigin,
		MsgMissingOriginCheck,
		MsgPermissiveOriginCheck,
		MsgMissingSignatureVerification,
	}
	for _, id := range ids {
		if _, ok := messageCatalog[id]; !ok {
			t.Fatalf("message ID %s has no catalog entry", id)
		}
	}
	if len(messageCatalog) != len(ids) {
		t.Fatalf("catalog has %d entries, tests cover %d; keep them in sync", len(messageCatalog), len(ids))
	}
}
