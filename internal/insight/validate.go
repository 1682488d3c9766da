package insight

import (
	"fmt"
	"strings"
)

// ValidateRequest checks the request against the input contract and returns
// the validated supplier list. Validation fails fast on the first invalid
// record but collects every violated field on that record, so a caller gets
// the full picture for one supplier in a single round trip.
//
// Delivery figures submitted as a fraction in [0, 1] are interpreted as a
// percentage (0.92 means 92%), matching the common spreadsheet export shape.
func ValidateRequest(req AnalysisRequest) ([]SupplierRecord, error) {
	if strings.TrimSpace(req.Category) == "" {
		return nil, NewValidationError("invalid request", []FieldError{{Field: "category", Constraint: "must be non-empty"}})
	}
	if len(req.Category) > MaxCategoryNameChars {
		return nil, NewValidationError("invalid request", []FieldError{{Field: "category", Constraint: fmt.Sprintf("must be at most %d characters", MaxCategoryNameChars)}})
	}
	if len(req.Suppliers) == 0 {
		return nil, NewValidationError("invalid request", []FieldError{{Field: "suppliers", Constraint: "at least one supplier is required"}})
	}

	out := make([]SupplierRecord, 0, len(req.Suppliers))
	for i, s := range req.Suppliers {
		s.OnTimeDeliveryPct = coerceDeliveryPct(s.OnTimeDeliveryPct)
		if errs := validateRecord(i, s); len(errs) > 0 {
			return nil, NewValidationError(fmt.Sprintf("invalid supplier at index %d", i), errs)
		}
		s.Name = strings.TrimSpace(s.Name)
		s.Region = strings.TrimSpace(s.Region)
		out = append(out, s)
	}
	return out, nil
}

func validateRecord(index int, s SupplierRecord) []FieldError {
	prefix := fmt.Sprintf("suppliers[%d].", index)
	var errs []FieldError
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, FieldError{Field: prefix + "supplier_name", Constraint: "must be non-empty"})
	}
	if len(s.Name) > MaxSupplierNameChars {
		errs = append(errs, FieldError{Field: prefix + "supplier_name", Constraint: fmt.Sprintf("must be at most %d characters", MaxSupplierNameChars)})
	}
	if s.AnnualSpendUSD <= 0 {
		errs = append(errs, FieldError{Field: prefix + "annual_spend_usd", Constraint: "must be strictly positive"})
	}
	if s.OnTimeDeliveryPct < 0 || s.OnTimeDeliveryPct > 100 {
		errs = append(errs, FieldError{Field: prefix + "on_time_delivery_pct", Constraint: "must be between 0 and 100"})
	}
	if s.ContractExpiryMonths < 0 {
		errs = append(errs, FieldError{Field: prefix + "contract_expiry_months", Constraint: "must be non-negative"})
	}
	if strings.TrimSpace(s.Region) == "" {
		errs = append(errs, FieldError{Field: prefix + "region", Constraint: "must be non-empty"})
	}
	return errs
}

func coerceDeliveryPct(v float64) float64 {
	if v > 0 && v <= 1 {
		return v * 100
	}
	return v
}
