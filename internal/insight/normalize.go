package insight

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Normalize coerces a loosely typed parsed object into a conforming
// InsightReport. It is total: every malformed or missing field has a
// defined repair, so this function never fails. The category always echoes
// the request, never the collaborator.
func Normalize(data map[string]any, category string) InsightReport {
	return InsightReport{
		Category:           category,
		OverallRiskLevel:   riskLevelFrom(data["overall_risk_level"]),
		KeyRisks:           listFrom(data["key_risks"], MaxRisks, placeholder(category, "risks")),
		NegotiationLevers:  listFrom(data["negotiation_levers"], MaxLevers, placeholder(category, "negotiation levers")),
		RecommendedActions: listFrom(data["recommended_actions_next_90_days"], MaxActions, placeholder(category, "recommended actions")),
		ConfidenceScore:    clampConfidence(confidenceFrom(data["confidence_score"])),
	}
}

// BoostConfidence applies the flat generative-path boost after clamping,
// re-capped below 1.0 to signal inherent uncertainty in generated text.
func BoostConfidence(r InsightReport) InsightReport {
	r.ConfidenceScore = math.Min(ConfidenceCeiling, round2(r.ConfidenceScore+ConfidenceBoost))
	return r
}

func riskLevelFrom(v any) RiskLevel {
	s, _ := v.(string)
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return RiskLow
	case "high":
		return RiskHigh
	default:
		return RiskMedium
	}
}

func confidenceFrom(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
	}
	return DefaultConfidence
}

func clampConfidence(v float64) float64 {
	if math.IsNaN(v) {
		return DefaultConfidence
	}
	return round2(math.Max(0, math.Min(1, v)))
}

func listFrom(v any, max int, fallback string) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{fallback}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, strings.TrimSpace(s))
		if len(out) == max {
			break
		}
	}
	if len(out) == 0 {
		return []string{fallback}
	}
	return out
}

func placeholder(category, field string) string {
	return fmt.Sprintf("Insufficient data to identify %s for %s", field, category)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
