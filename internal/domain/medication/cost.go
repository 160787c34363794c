package medication

import "github.com/shopspring/decimal"

// ComputeTotalCost returns the patient-facing cost for a medication.
//
// The insurer covers coveragePct percent of basePrice; the deductible is a
// flat amount the patient always pays. The result is clamped to
// [0, basePrice+deductible] and rounded to 2 decimal places half-even.
func ComputeTotalCost(basePrice, coveragePct, deductible float64) (float64, error) {
	if basePrice < 0 {
		return 0, InvalidArgumentf("base_price must not be negative, got %v", basePrice)
	}
	if coveragePct < 0 || coveragePct > 100 {
		return 0, InvalidArgumentf("coverage_percentage must be between 0 and 100, got %v", coveragePct)
	}
	if deductible < 0 {
		return 0, InvalidArgumentf("deductible must not be negative, got %v", deductible)
	}

	base := decimal.NewFromFloat(basePrice)
	ded := decimal.NewFromFloat(deductible)
	cov := decimal.NewFromFloat(coveragePct)

	patientShare := base.Mul(decimal.NewFromInt(1).Sub(cov.Div(decimal.NewFromInt(100))))
	total := ded.Add(patientShare)

	ceiling := base.Add(ded)
	if total.GreaterThan(ceiling) {
		total = ceiling
	}
	if total.IsNegative() {
		total = decimal.Zero
	}

	return total.RoundBank(2).InexactFloat64(), nil
}

// TotalCost computes the cost for a stored record. Records are validated on
// write, so a failure here indicates a corrupted record.
func (r *Record) TotalCost() (float64, error) {
	return ComputeTotalCost(r.BasePrice, r.CoveragePercentage, r.Deductible)
}
