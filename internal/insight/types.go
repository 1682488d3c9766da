package insight

const (
	MaxCategoryNameChars = 100
	MaxSupplierNameChars = 200
)

// Risk thresholds. These constants are the single source of truth for the
// classifier, the prompt text sent to the collaborator, and the rule-based
// fallback — the three must never drift apart.
const (
	SingleSourceSharePct = 40.0
	ExpiryHighMonths     = 3
	ExpiryMediumMonths   = 6
	DeliveryHighPct      = 80.0
	DeliveryMediumPct    = 90.0

	LeverageSharePct   = 30.0
	TopPerformerPct    = 95.0
	LowDeliveryRiskPct = 85.0
	ConcentrationPct   = 40.0
)

// Confidence handling. The generative path gets a flat boost after
// normalization, capped below 1.0; the rule-based path uses a fixed value.
const (
	DefaultConfidence  = 0.7
	ConfidenceBoost    = 0.2
	ConfidenceCeiling  = 0.95
	FallbackConfidence = 0.65
)

const (
	MaxRisks   = 5
	MaxLevers  = 5
	MaxActions = 5
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

type Strategy string

const (
	StrategyLLM       Strategy = "llm"
	StrategyRuleBased Strategy = "rule_based"
)

// SupplierRecord is one supplier's data as submitted by the caller.
// Records are immutable once validated and discarded after one analysis.
type SupplierRecord struct {
	Name                 string  `json:"supplier_name"`
	AnnualSpendUSD       float64 `json:"annual_spend_usd"`
	OnTimeDeliveryPct    float64 `json:"on_time_delivery_pct"`
	ContractExpiryMonths int     `json:"contract_expiry_months"`
	SingleSource         bool    `json:"single_source_dependency"`
	Region               string  `json:"region"`
}

type AnalysisRequest struct {
	Category  string           `json:"category"`
	Suppliers []SupplierRecord `json:"suppliers"`
}

// SupplierMetrics pairs a supplier with its derived share of category spend.
// SpendSharePct is unrounded and used for threshold comparisons;
// SpendShareDisplay is rounded to one decimal for prompts and reports.
type SupplierMetrics struct {
	Name              string  `json:"supplier_name"`
	AnnualSpendUSD    float64 `json:"annual_spend_usd"`
	SpendSharePct     float64 `json:"-"`
	SpendShareDisplay float64 `json:"spend_share_pct"`
}

type CategoryMetrics struct {
	TotalSpendUSD     float64           `json:"total_spend_usd"`
	SupplierCount     int               `json:"supplier_count"`
	SingleSourceCount int               `json:"single_source_count"`
	Regions           []string          `json:"regions"`
	Suppliers         []SupplierMetrics `json:"suppliers"`
}

// ShareAt returns the unrounded spend share for the supplier at index i in
// the validated input order. Metrics rows are positional, not keyed by
// name, so duplicate supplier names each keep their own share.
func (m CategoryMetrics) ShareAt(i int) float64 {
	if i < 0 || i >= len(m.Suppliers) {
		return 0
	}
	return m.Suppliers[i].SpendSharePct
}

// MaxShare returns the largest unrounded spend share across all suppliers.
func (m CategoryMetrics) MaxShare() float64 {
	max := 0.0
	for _, s := range m.Suppliers {
		if s.SpendSharePct > max {
			max = s.SpendSharePct
		}
	}
	return max
}

// InsightReport is the output contract. Every field is populated after
// normalization; the list fields are never empty.
type InsightReport struct {
	Category           string    `json:"category"`
	OverallRiskLevel   RiskLevel `json:"overall_risk_level"`
	KeyRisks           []string  `json:"key_risks"`
	NegotiationLevers  []string  `json:"negotiation_levers"`
	RecommendedActions []string  `json:"recommended_actions_next_90_days"`
	ConfidenceScore    float64   `json:"confidence_score"`
}

// Result is what one analysis produces: the report plus the derived
// metrics and the strategy that generated it.
type Result struct {
	Report         InsightReport   `json:"report"`
	Metrics        CategoryMetrics `json:"metrics"`
	Strategy       Strategy        `json:"strategy"`
	ReportMarkdown string          `json:"report_markdown"`
}
