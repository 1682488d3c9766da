package insight

import (
	"fmt"
	"sort"
)

// RuleBasedReport derives the report shape directly from the precomputed
// metrics and the classifier output, with no external call. It is a pure
// function of validated input: identical input produces identical output,
// and it cannot fail — it is the terminal fallback.
func RuleBasedReport(category string, suppliers []SupplierRecord, metrics CategoryMetrics, level RiskLevel, triggered []TriggeredRule) InsightReport {
	risks := make([]string, 0, len(triggered))
	for _, t := range triggered {
		risks = append(risks, t.Detail)
		if len(risks) == MaxRisks {
			break
		}
	}

	var levers []string
	for i, s := range suppliers {
		share := metrics.ShareAt(i)
		if share >= LeverageSharePct {
			levers = append(levers, fmt.Sprintf("Volume leverage: %s holds %.1f%% of category spend", s.Name, round1(share)))
		}
		if s.OnTimeDeliveryPct >= TopPerformerPct {
			levers = append(levers, fmt.Sprintf("Top performer: %s delivers on time %.1f%% of the time", s.Name, s.OnTimeDeliveryPct))
		}
	}
	if len(levers) > MaxLevers {
		levers = levers[:MaxLevers]
	}

	actions := buildActions(suppliers, metrics)

	return InsightReport{
		Category:           category,
		OverallRiskLevel:   level,
		KeyRisks:           orPlaceholder(risks, placeholder(category, "risks")),
		NegotiationLevers:  orPlaceholder(levers, placeholder(category, "negotiation levers")),
		RecommendedActions: orPlaceholder(actions, placeholder(category, "recommended actions")),
		ConfidenceScore:    FallbackConfidence,
	}
}

// buildActions enumerates suppliers by urgency: ascending contract expiry,
// then descending spend share. Shares stay paired with their record
// through the sort so duplicate names keep their own figures.
func buildActions(suppliers []SupplierRecord, metrics CategoryMetrics) []string {
	type ranked struct {
		SupplierRecord
		share float64
	}
	ordered := make([]ranked, len(suppliers))
	for i, s := range suppliers {
		ordered[i] = ranked{SupplierRecord: s, share: metrics.ShareAt(i)}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].ContractExpiryMonths != ordered[j].ContractExpiryMonths {
			return ordered[i].ContractExpiryMonths < ordered[j].ContractExpiryMonths
		}
		return ordered[i].share > ordered[j].share
	})

	actions := make([]string, 0, MaxActions)
	for _, s := range ordered {
		switch {
		case s.ContractExpiryMonths <= ExpiryHighMonths:
			actions = append(actions, fmt.Sprintf("Renew contract with %s (expires in %d months)", s.Name, s.ContractExpiryMonths))
		case s.ContractExpiryMonths <= ExpiryMediumMonths:
			actions = append(actions, fmt.Sprintf("Start renewal talks with %s (expires in %d months)", s.Name, s.ContractExpiryMonths))
		case s.SingleSource:
			actions = append(actions, fmt.Sprintf("Develop a contingency supplier for %s (single-source, %.1f%% of spend)", s.Name, round1(s.share)))
		default:
			actions = append(actions, fmt.Sprintf("Schedule a quarterly performance review with %s", s.Name))
		}
		if len(actions) == MaxActions {
			break
		}
	}
	return actions
}

func orPlaceholder(items []string, fallback string) []string {
	if len(items) == 0 {
		return []string{fallback}
	}
	return items
}
