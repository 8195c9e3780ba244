package prompt

import (
	_ "embed"
	"sort"
	"strings"

	domainx "github.com/thanakit-dev/leadpilot/engine/domain"
)

var (
	//go:embed template/analysis.txt
	analysisRaw string

	//go:embed template/response.txt
	responseRaw string
)

// ForAnalysis builds the classification system prompt: the embedded base
// instructions plus the domain's own analysis fragment and trigger hints.
func ForAnalysis(cfg *domainx.Config) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(analysisRaw))
	if cfg == nil {
		return b.String()
	}

	if inst := strings.TrimSpace(cfg.AnalysisInstructions); inst != "" {
		b.WriteString("\n\nDomain guidance (")
		b.WriteString(string(cfg.Domain))
		b.WriteString("): ")
		b.WriteString(inst)
	}

	if len(cfg.BusinessLogicTriggers) > 0 {
		keywords := make([]string, 0, len(cfg.BusinessLogicTriggers))
		for kw, logicType := range cfg.BusinessLogicTriggers {
			keywords = append(keywords, kw+" -> "+logicType)
		}
		sort.Strings(keywords)
		b.WriteString("\nWhen the message contains these phrases, set requires_business_logic true and business_logic_type accordingly: ")
		b.WriteString(strings.Join(keywords, ", "))
		b.WriteString(".")
	}

	return b.String()
}

// ForResponse builds the reply-generation system prompt: domain persona,
// embedded grounding rules, domain response fragment, then the retrieved
// knowledge context.
func ForResponse(cfg *domainx.Config, contextText string) string {
	var parts []string
	if cfg != nil {
		parts = append(parts, strings.TrimSpace(cfg.SystemPrompt))
	}
	parts = append(parts, strings.TrimSpace(responseRaw))
	if cfg != nil {
		if inst := strings.TrimSpace(cfg.ResponseInstructions); inst != "" {
			parts = append(parts, inst)
		}
	}
	if ct := strings.TrimSpace(contextText); ct != "" {
		parts = append(parts, "KNOWLEDGE CONTEXT:\n"+ct)
	} else {
		parts = append(parts, "KNOWLEDGE CONTEXT: (none retrieved)")
	}
	return strings.Join(parts, "\n\n")
}
