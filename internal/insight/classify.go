package insight

import "fmt"

type RuleID string

const (
	RuleSingleSourceShare RuleID = "single_source_share"
	RuleExpiryImminent    RuleID = "expiry_imminent"
	RuleDeliveryPoor      RuleID = "delivery_poor"
	RuleExpirySoon        RuleID = "expiry_soon"
	RuleDeliveryMarginal  RuleID = "delivery_marginal"
	RuleConcentration     RuleID = "concentration"
)

// TriggeredRule records one threshold condition that fired, with the
// supplier and numeric value that fired it. The fallback strategy phrases
// its risk statements from these instead of re-deriving thresholds.
type TriggeredRule struct {
	Rule     RuleID
	Level    RiskLevel
	Supplier string
	Value    float64
	Detail   string
}

// Classify applies the category-level threshold rules over all suppliers.
// It is pure and total: every input maps to exactly one risk level. High
// rules are evaluated for every supplier (not short-circuited) so the
// triggered list names every firing condition, then Medium rules likewise.
func Classify(suppliers []SupplierRecord, metrics CategoryMetrics) (RiskLevel, []TriggeredRule) {
	var triggered []TriggeredRule

	for i, s := range suppliers {
		share := metrics.ShareAt(i)
		if s.SingleSource && share > SingleSourceSharePct {
			triggered = append(triggered, TriggeredRule{
				Rule:     RuleSingleSourceShare,
				Level:    RiskHigh,
				Supplier: s.Name,
				Value:    share,
				Detail:   fmt.Sprintf("%s is single-source with %.1f%% of category spend", s.Name, round1(share)),
			})
		}
		if s.ContractExpiryMonths <= ExpiryHighMonths {
			triggered = append(triggered, TriggeredRule{
				Rule:     RuleExpiryImminent,
				Level:    RiskHigh,
				Supplier: s.Name,
				Value:    float64(s.ContractExpiryMonths),
				Detail:   fmt.Sprintf("%s contract expires in %d months", s.Name, s.ContractExpiryMonths),
			})
		}
		if s.OnTimeDeliveryPct < DeliveryHighPct {
			triggered = append(triggered, TriggeredRule{
				Rule:     RuleDeliveryPoor,
				Level:    RiskHigh,
				Supplier: s.Name,
				Value:    s.OnTimeDeliveryPct,
				Detail:   fmt.Sprintf("%s on-time delivery at %.1f%%", s.Name, s.OnTimeDeliveryPct),
			})
		}
	}
	if len(triggered) > 0 {
		return RiskHigh, triggered
	}

	for _, s := range suppliers {
		if s.ContractExpiryMonths <= ExpiryMediumMonths {
			triggered = append(triggered, TriggeredRule{
				Rule:     RuleExpirySoon,
				Level:    RiskMedium,
				Supplier: s.Name,
				Value:    float64(s.ContractExpiryMonths),
				Detail:   fmt.Sprintf("%s contract expires in %d months", s.Name, s.ContractExpiryMonths),
			})
		}
		if s.OnTimeDeliveryPct >= DeliveryHighPct && s.OnTimeDeliveryPct < DeliveryMediumPct {
			triggered = append(triggered, TriggeredRule{
				Rule:     RuleDeliveryMarginal,
				Level:    RiskMedium,
				Supplier: s.Name,
				Value:    s.OnTimeDeliveryPct,
				Detail:   fmt.Sprintf("%s on-time delivery at %.1f%%", s.Name, s.OnTimeDeliveryPct),
			})
		}
	}
	// Concentration risk applies regardless of the single-source flag.
	if max := metrics.MaxShare(); max > ConcentrationPct {
		top := metrics.Suppliers[0]
		for _, sm := range metrics.Suppliers[1:] {
			if sm.SpendSharePct > top.SpendSharePct {
				top = sm
			}
		}
		triggered = append(triggered, TriggeredRule{
			Rule:     RuleConcentration,
			Level:    RiskMedium,
			Supplier: top.Name,
			Value:    max,
			Detail:   fmt.Sprintf("%s holds %.1f%% of category spend", top.Name, round1(max)),
		})
	}
	if len(triggered) > 0 {
		return RiskMedium, triggered
	}

	return RiskLow, nil
}

// ThresholdText renders the classification rules for the collaborator
// prompt from the same constants the classifier uses.
func ThresholdText() string {
	return fmt.Sprintf(
		"RISK CRITERIA:\n"+
			"- HIGH: single-source supplier with >%.0f%% of spend OR contract expiring in <=%d months OR on-time delivery <%.0f%%\n"+
			"- MEDIUM: contract expiring in <=%d months OR on-time delivery %.0f-%.0f%% OR any supplier holding >%.0f%% of spend\n"+
			"- LOW: diversified suppliers with good performance",
		SingleSourceSharePct, ExpiryHighMonths, DeliveryHighPct,
		ExpiryMediumMonths, DeliveryHighPct, DeliveryMediumPct, ConcentrationPct,
	)
}
