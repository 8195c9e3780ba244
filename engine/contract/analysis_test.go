package contract

import (
	"testing"
)

func TestParseAnalysisCleanJSON(t *testing.T) {
	t.Parallel()

	raw := `{"primary_intent":"quote_request","entity_type":"health","urgency_level":"HIGH","lead_readiness":"ready","confidence":0.8,"requires_business_logic":true,"business_logic_type":"premium_calculation"}`
	out, ok := ParseAnalysis(raw)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if out.PrimaryIntent != "QUOTE_REQUEST" {
		t.Fatalf("intent not uppercased: %q", out.PrimaryIntent)
	}
	if out.UrgencyLevel != UrgencyHigh {
		t.Fatalf("urgency not normalized: %q", out.UrgencyLevel)
	}
	if out.LeadReadiness != ReadinessReady {
		t.Fatalf("readiness not normalized: %q", out.LeadReadiness)
	}
	if !out.RequiresBusinessLogic || out.BusinessLogicType != "premium_calculation" {
		t.Fatalf("business logic fields lost: %+v", out)
	}
}

func TestParseAnalysisMarkdownFence(t *testing.T) {
	t.Parallel()

	raw := "Here is the analysis:\n```json\n{\"primary_intent\":\"objection\",\"confidence\":0.7}\n```\nDone."
	out, ok := ParseAnalysis(raw)
	if !ok {
		t.Fatal("expected fenced JSON to parse")
	}
	if out.PrimaryIntent != "OBJECTION" {
		t.Fatalf("expected OBJECTION, got %q", out.PrimaryIntent)
	}
}

func TestParseAnalysisProseWrapped(t *testing.T) {
	t.Parallel()

	raw := `The user seems interested. {"primary_intent":"information","confidence":0.6} Hope that helps.`
	out, ok := ParseAnalysis(raw)
	if !ok {
		t.Fatal("expected embedded JSON to parse")
	}
	if out.PrimaryIntent != "INFORMATION" {
		t.Fatalf("expected INFORMATION, got %q", out.PrimaryIntent)
	}
}

func TestParseAnalysisGarbageFallsBack(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "not json at all", "{broken", "{\"confidence\": }"} {
		out, ok := ParseAnalysis(raw)
		if ok {
			t.Fatalf("expected parse failure for %q", raw)
		}
		def := DefaultAnalysis()
		if out.PrimaryIntent != def.PrimaryIntent || out.UrgencyLevel != def.UrgencyLevel ||
			out.LeadReadiness != def.LeadReadiness || out.Confidence != def.Confidence {
			t.Fatalf("expected default analysis for %q, got %+v", raw, out)
		}
	}
}

func TestParseAnalysisNormalizesBadTiers(t *testing.T) {
	t.Parallel()

	raw := `{"primary_intent":"","urgency_level":"extreme","lead_readiness":"whatever","confidence":3.5}`
	out, ok := ParseAnalysis(raw)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if out.PrimaryIntent != "INFORMATION" {
		t.Fatalf("empty intent should default to INFORMATION, got %q", out.PrimaryIntent)
	}
	if out.UrgencyLevel != UrgencyMedium {
		t.Fatalf("unknown urgency should fall back to medium, got %q", out.UrgencyLevel)
	}
	if out.LeadReadiness != ReadinessExploring {
		t.Fatalf("unknown readiness should fall back to exploring, got %q", out.LeadReadiness)
	}
	if out.Confidence != 1 {
		t.Fatalf("confidence should clamp to 1, got %v", out.Confidence)
	}
}
