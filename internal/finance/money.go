package finance

import "math"

// Frequency identifies how often a cost amount recurs.
type Frequency string

const (
	FrequencyMonthly    Frequency = "monthly"
	FrequencySemiannual Frequency = "semiannual"
	FrequencyAnnual     Frequency = "annual"
)

// ToMonthly converts an amount billed at the given frequency to its monthly
// equivalent. Unknown frequencies are treated as monthly; callers that want
// strict input checking must validate before calling.
func ToMonthly(amount float64, freq Frequency) float64 {
	switch freq {
	case FrequencySemiannual:
		return amount / 6
	case FrequencyAnnual:
		return amount / 12
	default:
		return amount
	}
}

// MonthlyTotal sums a cost list after normalizing each entry to its monthly
// equivalent.
func MonthlyTotal(costs []CostEntry) float64 {
	total := 0.0
	for _, c := range costs {
		total += ToMonthly(c.Amount, c.Frequency)
	}
	return total
}

// Round2 rounds to two decimal places. Applied only at the reporting
// boundary; intermediate computation keeps full precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
