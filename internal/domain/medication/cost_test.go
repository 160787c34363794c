package medication

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeTotalCost(t *testing.T) {
	cases := []struct {
		name       string
		basePrice  float64
		coverage   float64
		deductible float64
		want       float64
	}{
		{name: "typical coverage", basePrice: 100, coverage: 80, deductible: 10, want: 30.00},
		{name: "zero base price", basePrice: 0, coverage: 50, deductible: 5, want: 5.00},
		{name: "full coverage pays deductible only", basePrice: 250, coverage: 100, deductible: 15, want: 15.00},
		{name: "no coverage pays everything", basePrice: 100, coverage: 0, deductible: 10, want: 110.00},
		{name: "no deductible", basePrice: 80, coverage: 25, deductible: 0, want: 60.00},
		{name: "all zero", basePrice: 0, coverage: 0, deductible: 0, want: 0.00},
		{name: "fractional inputs", basePrice: 33.33, coverage: 66.6, deductible: 4.99, want: 16.12},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ComputeTotalCost(tc.basePrice, tc.coverage, tc.deductible)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestComputeTotalCost_RoundsHalfEven(t *testing.T) {
	// 10 * (1 - 99.75/100) = 0.025, which rounds to 0.02 half-even.
	got, err := ComputeTotalCost(10, 99.75, 0)
	require.NoError(t, err)
	require.Equal(t, 0.02, got)

	// 10 * (1 - 99.25/100) = 0.075, which rounds to 0.08.
	got, err = ComputeTotalCost(10, 99.25, 0)
	require.NoError(t, err)
	require.Equal(t, 0.08, got)
}

func TestComputeTotalCost_InvalidInputs(t *testing.T) {
	cases := []struct {
		name       string
		basePrice  float64
		coverage   float64
		deductible float64
	}{
		{name: "coverage above 100", basePrice: 100, coverage: 150, deductible: 10},
		{name: "negative coverage", basePrice: 100, coverage: -1, deductible: 10},
		{name: "negative base price", basePrice: -5, coverage: 50, deductible: 10},
		{name: "negative deductible", basePrice: 100, coverage: 50, deductible: -0.01},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeTotalCost(tc.basePrice, tc.coverage, tc.deductible)
			require.Error(t, err)
			require.Equal(t, CodeInvalidArgument, CodeOf(err))
		})
	}
}

func TestComputeTotalCost_NeverExceedsBasePlusDeductible(t *testing.T) {
	for _, cov := range []float64{0, 0.5, 33.3, 50, 99.99, 100} {
		got, err := ComputeTotalCost(47.50, cov, 12.25)
		require.NoError(t, err)
		require.GreaterOrEqual(t, got, 0.0)
		require.LessOrEqual(t, got, 47.50+12.25)
	}
}

func TestRecordTotalCost(t *testing.T) {
	rec := Record{Code: "M1234", Name: "Aspirin1", CoveragePercentage: 80, Deductible: 10, BasePrice: 100}
	got, err := rec.TotalCost()
	require.NoError(t, err)
	require.Equal(t, 30.00, got)
}
