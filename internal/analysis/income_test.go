package analysis

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestEstimateIncomeScenario(t *testing.T) {
	// Reference scenario: three stable months, no fixed-cost floor.
	series := []MonthTotal{
		{Month: "2025-01", Total: 1_200_000},
		{Month: "2025-02", Total: 1_300_000},
		{Month: "2025-03", Total: 1_250_000},
	}
	p := DefaultParams()

	est := EstimateIncome(series, 0, p)
	if !est.Available {
		t.Fatal("expected available estimate")
	}
	if est.BaseExpense != 1_250_000 {
		t.Errorf("base expense = %v, want 1250000 (median)", est.BaseExpense)
	}
	if !almostEqual(est.Low, 1_250_000/0.9) {
		t.Errorf("income low = %v, want %v", est.Low, 1_250_000/0.9)
	}
	if !almostEqual(est.High, 1_250_000/0.7) {
		t.Errorf("income high = %v, want %v", est.High, 1_250_000/0.7)
	}
	if !almostEqual(est.Expected, 1_562_500) {
		t.Errorf("expected income = %v, want 1562500 (midpoint rate 0.20)", est.Expected)
	}
	if est.Confidence != "High" {
		t.Errorf("confidence = %q, want High (3 stable months)", est.Confidence)
	}
}

func TestEstimateIncomeBoundOrdering(t *testing.T) {
	series := []MonthTotal{
		{Month: "2025-02", Total: 1_000_000},
		{Month: "2025-03", Total: 1_000_000},
	}

	tests := []struct {
		name      string
		low, high float64
	}{
		{"normal order", 0.10, 0.30},
		{"swapped order", 0.30, 0.10},
		{"equal rates", 0.20, 0.20},
		{"out of range clamped", -0.5, 2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			p.SavingsRateLow = tt.low
			p.SavingsRateHigh = tt.high

			est := EstimateIncome(series, 0, p)
			if est.Low > est.High {
				t.Errorf("income_low %v > income_high %v", est.Low, est.High)
			}
			if est.Expected < est.Low || est.Expected > est.High {
				t.Errorf("expected %v outside [%v, %v]", est.Expected, est.Low, est.High)
			}
		})
	}
}

func TestEstimateIncomeFixedCostFloor(t *testing.T) {
	// Raw median-based estimate (~56k-72k) is far below the floor.
	series := []MonthTotal{
		{Month: "2025-01", Total: 50_000},
		{Month: "2025-02", Total: 50_000},
		{Month: "2025-03", Total: 50_000},
	}
	p := DefaultParams() // FixedCostMaxRatio 0.40

	est := EstimateIncome(series, 400_000, p)
	if !est.Available {
		t.Fatal("expected available estimate")
	}
	const floor = 1_000_000 // 400000 / 0.40
	if est.Expected < floor {
		t.Errorf("expected income %v below floor %v", est.Expected, floor)
	}
	if est.Low < floor || est.High < floor {
		t.Errorf("bounds (%v, %v) below floor %v", est.Low, est.High, floor)
	}
}

func TestEstimateIncomeUnavailableWithoutData(t *testing.T) {
	est := EstimateIncome(nil, 0, DefaultParams())
	if est.Available {
		t.Error("no monthly data must yield an unavailable estimate, not a guess")
	}
}

func TestEstimateIncomeZeroMeanForcesLowConfidence(t *testing.T) {
	series := []MonthTotal{
		{Month: "2025-01", Total: 0},
		{Month: "2025-02", Total: 0},
		{Month: "2025-03", Total: 0},
	}
	est := EstimateIncome(series, 0, DefaultParams())
	if est.Confidence != "Low" {
		t.Errorf("confidence = %q, want Low for zero-mean months", est.Confidence)
	}
}

func TestEstimateIncomeConfidenceLevels(t *testing.T) {
	tests := []struct {
		name   string
		series []MonthTotal
		want   string
	}{
		{
			name: "volatile months",
			series: []MonthTotal{
				{Month: "2025-01", Total: 100_000},
				{Month: "2025-02", Total: 900_000},
				{Month: "2025-03", Total: 150_000},
			},
			want: "Low",
		},
		{
			name: "two steady months",
			series: []MonthTotal{
				{Month: "2025-02", Total: 1_000_000},
				{Month: "2025-03", Total: 1_050_000},
			},
			want: "Med",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := EstimateIncome(tt.series, 0, DefaultParams())
			if est.Confidence != tt.want {
				t.Errorf("confidence = %q, want %q", est.Confidence, tt.want)
			}
		})
	}
}

func TestMedianOf(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want float64
	}{
		{"odd", []float64{3, 1, 2}, 2},
		{"even", []float64{4, 1, 3, 2}, 2.5},
		{"single", []float64{7}, 7},
		{"empty", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := medianOf(tt.in); got != tt.want {
				t.Errorf("medianOf = %v, want %v", got, tt.want)
			}
		})
	}
}
