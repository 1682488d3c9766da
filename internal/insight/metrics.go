package insight

import "math"

// ComputeMetrics derives the category aggregates from a validated supplier
// list. Shares are kept unrounded for threshold comparisons; the display
// share is rounded to one decimal. The only failure mode is a zero total
// spend, which leaves shares undefined.
func ComputeMetrics(suppliers []SupplierRecord) (CategoryMetrics, error) {
	total := 0.0
	for _, s := range suppliers {
		total += s.AnnualSpendUSD
	}
	if total <= 0 {
		return CategoryMetrics{}, NewMetricsError("total category spend is zero; spend shares are undefined")
	}

	m := CategoryMetrics{
		TotalSpendUSD: total,
		SupplierCount: len(suppliers),
		Suppliers:     make([]SupplierMetrics, 0, len(suppliers)),
	}
	seen := map[string]bool{}
	for _, s := range suppliers {
		share := s.AnnualSpendUSD / total * 100
		m.Suppliers = append(m.Suppliers, SupplierMetrics{
			Name:              s.Name,
			AnnualSpendUSD:    s.AnnualSpendUSD,
			SpendSharePct:     share,
			SpendShareDisplay: round1(share),
		})
		if s.SingleSource {
			m.SingleSourceCount++
		}
		if !seen[s.Region] {
			seen[s.Region] = true
			m.Regions = append(m.Regions, s.Region)
		}
	}
	return m, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
