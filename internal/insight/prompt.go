package insight

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SystemPrompt carries the grounding rules, the required output shape, and
// the exact threshold text shared with the classifier.
func SystemPrompt() string {
	return `You are an expert procurement analyst specializing in supplier risk assessment.

CRITICAL RULES:
1. Use ONLY the data provided - do not invent information
2. Be specific - include actual numbers, percentages, and supplier names
3. Focus on actionable insights

OUTPUT FORMAT - Respond with valid JSON only:
{
    "category": "string",
    "overall_risk_level": "Low | Medium | High",
    "key_risks": ["array of 2-5 risk statements"],
    "negotiation_levers": ["array of 2-5 leverage points"],
    "recommended_actions_next_90_days": ["array of 3-5 actions"],
    "confidence_score": "number 0.0 to 1.0"
}

` + ThresholdText() + `

Respond ONLY with JSON, no markdown or extra text.`
}

// BuildUserPrompt serializes the validated suppliers and precomputed
// metrics as structured text for the collaborator.
func BuildUserPrompt(category string, suppliers []SupplierRecord, metrics CategoryMetrics) string {
	rows := make([]map[string]any, 0, len(suppliers))
	for i, s := range suppliers {
		rows = append(rows, map[string]any{
			"supplier_name":            s.Name,
			"annual_spend_usd":         s.AnnualSpendUSD,
			"spend_share_pct":          round1(metrics.ShareAt(i)),
			"on_time_delivery_pct":     s.OnTimeDeliveryPct,
			"contract_expiry_months":   s.ContractExpiryMonths,
			"single_source_dependency": s.SingleSource,
			"region":                   s.Region,
		})
	}
	return fmt.Sprintf(`Analyze supplier data for %q:

%s

SUMMARY:
- Total Spend: $%.0f
- Suppliers: %d
- Regions: %s
- Single-Source: %d

Generate insights JSON.`,
		category,
		mustJSON(rows),
		metrics.TotalSpendUSD,
		metrics.SupplierCount,
		strings.Join(metrics.Regions, ", "),
		metrics.SingleSourceCount,
	)
}

func mustJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
