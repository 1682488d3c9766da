package insight

import (
	"fmt"
	"strings"
	"time"
)

const Disclaimer = "This is an automated sourcing assessment based solely on the submitted supplier data. " +
	"It is not a substitute for commercial judgment or supplier due diligence."

// BuildMarkdown renders the human-readable report carried alongside the
// structured fields in the response envelope.
func BuildMarkdown(suppliers []SupplierRecord, res Result, triggered []TriggeredRule) string {
	r := res.Report
	var b strings.Builder
	fmt.Fprintf(&b, "# Sourcing Insights: %s\n\n", sanitize(r.Category))
	fmt.Fprintf(&b, "- Overall risk: `%s`\n", r.OverallRiskLevel)
	fmt.Fprintf(&b, "- Strategy: `%s`\n", res.Strategy)
	fmt.Fprintf(&b, "- Confidence: %.2f\n", r.ConfidenceScore)
	fmt.Fprintf(&b, "- Date: %s\n\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "%s\n\n", Disclaimer)

	fmt.Fprintf(&b, "## Suppliers\n\n")
	fmt.Fprintf(&b, "| Supplier | Annual Spend (USD) | Spend Share | On-Time Delivery | Contract Expiry | Single-Source | Region |\n")
	fmt.Fprintf(&b, "|----------|--------------------|-------------|------------------|-----------------|---------------|--------|\n")
	for i, s := range suppliers {
		fmt.Fprintf(&b, "| %s | $%s | %.1f%% | %.1f%% | %d months | %s | %s |\n",
			sanitizeCell(s.Name),
			fmtUSD(int64(s.AnnualSpendUSD)),
			res.Metrics.ShareAt(i),
			s.OnTimeDeliveryPct,
			s.ContractExpiryMonths,
			yesNo(s.SingleSource),
			sanitizeCell(s.Region),
		)
	}
	fmt.Fprintf(&b, "\n- Total spend: $%s across %d supplier(s)\n", fmtUSD(int64(res.Metrics.TotalSpendUSD)), res.Metrics.SupplierCount)
	fmt.Fprintf(&b, "- Regions: %s\n", strings.Join(res.Metrics.Regions, ", "))
	fmt.Fprintf(&b, "- Single-source dependencies: %d\n\n", res.Metrics.SingleSourceCount)

	if len(triggered) > 0 {
		fmt.Fprintf(&b, "## Risk Rationale\n\n")
		fmt.Fprintf(&b, "The `%s` classification was triggered by:\n\n", r.OverallRiskLevel)
		for _, t := range triggered {
			fmt.Fprintf(&b, "- [%s] %s\n", t.Rule, sanitize(t.Detail))
		}
		fmt.Fprintf(&b, "\n")
	}

	writeList(&b, "Key Risks", r.KeyRisks)
	writeList(&b, "Negotiation Levers", r.NegotiationLevers)
	writeList(&b, "Recommended Actions (Next 90 Days)", r.RecommendedActions)
	return b.String()
}

func writeList(b *strings.Builder, heading string, items []string) {
	fmt.Fprintf(b, "## %s\n\n", heading)
	for i, it := range items {
		fmt.Fprintf(b, "%d. %s\n", i+1, sanitize(it))
	}
	fmt.Fprintf(b, "\n")
}

func sanitize(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}

// sanitizeCell prepares text for a markdown table cell: strip newlines and
// escape pipes that would break the column structure.
func sanitizeCell(s string) string {
	return strings.ReplaceAll(sanitize(s), "|", "\\|")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// fmtUSD formats a dollar amount with comma separators.
func fmtUSD(n int64) string {
	if n < 0 {
		return "-" + fmtUSD(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	rem := len(s) % 3
	if rem > 0 {
		b.WriteString(s[:rem])
	}
	for i := rem; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
