package prompt

import (
	"strings"
	"testing"

	domainx "github.com/thanakit-dev/leadpilot/engine/domain"
)

func TestForAnalysisIncludesDomainGuidance(t *testing.T) {
	t.Parallel()

	cfg := domainx.Insurance().Config
	out := ForAnalysis(cfg)

	if !strings.Contains(out, "Domain guidance (insurance)") {
		t.Fatalf("domain guidance missing:\n%s", out)
	}
	if !strings.Contains(out, "quote -> premium_quote") {
		t.Fatalf("trigger hints missing:\n%s", out)
	}
	if out == "" || !strings.Contains(out, "JSON") {
		t.Fatalf("base instructions missing:\n%s", out)
	}
}

func TestForAnalysisNilConfig(t *testing.T) {
	t.Parallel()

	out := ForAnalysis(nil)
	if out == "" {
		t.Fatal("expected base prompt without config")
	}
}

func TestForResponseLayersSections(t *testing.T) {
	t.Parallel()

	cfg := domainx.Resort().Config
	out := ForResponse(cfg, "ROOM_RATES:\nVilla from 950.")

	personaIdx := strings.Index(out, cfg.SystemPrompt)
	contextIdx := strings.Index(out, "KNOWLEDGE CONTEXT:")
	if personaIdx != 0 {
		t.Fatalf("persona should lead the prompt:\n%s", out)
	}
	if contextIdx < 0 || contextIdx < personaIdx {
		t.Fatalf("knowledge context should follow persona:\n%s", out)
	}
	if !strings.Contains(out, cfg.ResponseInstructions) {
		t.Fatalf("response instructions missing:\n%s", out)
	}
}

func TestForResponseEmptyContext(t *testing.T) {
	t.Parallel()

	out := ForResponse(domainx.Retail(nil).Config, "   ")
	if !strings.Contains(out, "(none retrieved)") {
		t.Fatalf("expected empty-context marker:\n%s", out)
	}
}
