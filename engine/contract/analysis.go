package contract

import (
	"encoding/json"
	"strings"
)

// DefaultAnalysis is the conservative substitute used whenever classification
// output cannot be parsed. The turn continues with it; it is never retried.
func DefaultAnalysis() AnalysisResult {
	return AnalysisResult{
		PrimaryIntent: "INFORMATION",
		UrgencyLevel:  UrgencyMedium,
		LeadReadiness: ReadinessExploring,
		Confidence:    0.5,
	}
}

// ParseAnalysis decodes raw model output into an AnalysisResult. Models wrap
// JSON in prose or markdown fences often enough that we cut to the outermost
// object before decoding. Returns (DefaultAnalysis, false) when nothing
// parseable is found.
func ParseAnalysis(raw string) (AnalysisResult, bool) {
	payload := extractJSONObject(raw)
	if payload == "" {
		return DefaultAnalysis(), false
	}

	var out AnalysisResult
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return DefaultAnalysis(), false
	}

	out.PrimaryIntent = strings.ToUpper(strings.TrimSpace(out.PrimaryIntent))
	if out.PrimaryIntent == "" {
		out.PrimaryIntent = "INFORMATION"
	}
	out.UrgencyLevel = normalizeTier(out.UrgencyLevel, UrgencyMedium, UrgencyHigh, UrgencyMedium, UrgencyLow)
	out.LeadReadiness = normalizeTier(out.LeadReadiness, ReadinessExploring,
		ReadinessExploring, ReadinessInterested, ReadinessReady, ReadinessQualified)
	if out.Confidence < 0 {
		out.Confidence = 0
	}
	if out.Confidence > 1 {
		out.Confidence = 1
	}
	return out, true
}

func normalizeTier(v, fallback string, allowed ...string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return fallback
}

func extractJSONObject(raw string) string {
	s := strings.TrimSpace(raw)
	if fence := strings.Index(s, "```"); fence >= 0 {
		s = s[fence+3:]
		s = strings.TrimPrefix(s, "json")
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
