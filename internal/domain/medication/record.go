// Package medication implements medication coverage records, lookup
// resolution and cost computation.
package medication

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is a medication coverage definition. The code is the unique,
// immutable identifier; names are display strings and may repeat.
type Record struct {
	Code               string    `json:"code"`
	Name               string    `json:"name"`
	CoveragePercentage float64   `json:"coverage_percentage"`
	Deductible         float64   `json:"deductible"`
	BasePrice          float64   `json:"base_price"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Validate checks the record invariants: coverage in [0,100], deductible
// and base price non-negative, non-empty name and code.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Code) == "" {
		return InvalidArgumentf("medication code must not be empty")
	}
	if strings.TrimSpace(r.Name) == "" {
		return InvalidArgumentf("medication name must not be empty")
	}
	if r.CoveragePercentage < 0 || r.CoveragePercentage > 100 {
		return InvalidArgumentf("coverage_percentage must be between 0 and 100, got %v", r.CoveragePercentage)
	}
	if r.Deductible < 0 {
		return InvalidArgumentf("deductible must not be negative, got %v", r.Deductible)
	}
	if r.BasePrice < 0 {
		return InvalidArgumentf("base_price must not be negative, got %v", r.BasePrice)
	}
	return nil
}

// NewCode generates a medication code for records created without one.
func NewCode() string {
	return "MED-" + strings.ToUpper(uuid.New().String()[:8])
}
