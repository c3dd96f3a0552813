package finance

import "fmt"

// ComputeProfitability derives the monthly profitability picture from fixed
// costs, product unit economics, and an optional initial investment
// (pass 0 or negative to skip ROI).
//
// Break-even here deliberately uses the first product as the representative
// unit economics; the standalone ComputeBreakEven supports other averaging
// strategies.
func ComputeProfitability(fixedCosts []CostEntry, products []Product, initialInvestment float64) (ProfitabilityResult, error) {
	if len(products) == 0 {
		return ProfitabilityResult{}, fmt.Errorf("profitability: product list is empty: %w", ErrInvalidInput)
	}

	fixedMonthly := MonthlyTotal(fixedCosts)

	variableTotal := 0.0
	revenueTotal := 0.0
	totalVolume := 0.0
	for _, p := range products {
		variableTotal += p.UnitVariableCost * p.SalesVolume
		revenueTotal += p.UnitPrice * p.SalesVolume
		totalVolume += p.SalesVolume
	}

	grossProfit := revenueTotal - variableTotal
	contributionPct := 0.0
	if revenueTotal != 0 {
		contributionPct = grossProfit / revenueTotal * 100
	}

	lead := products[0]
	denom := lead.UnitPrice - lead.UnitVariableCost
	if denom == 0 {
		return ProfitabilityResult{}, fmt.Errorf("profitability: unit price equals unit variable cost for %q: %w", lead.Name, ErrArithmeticUndefined)
	}
	breakEvenUnits := fixedMonthly / denom
	breakEvenSales := breakEvenUnits * lead.UnitPrice

	safetyPct := 0.0
	if totalVolume > 0 {
		safetyPct = (totalVolume - breakEvenUnits) / totalVolume * 100
	}

	netProfit := grossProfit - fixedMonthly
	roiPct := 0.0
	if initialInvestment > 0 {
		roiPct = netProfit * 12 / initialInvestment * 100
	}

	return ProfitabilityResult{
		FixedCostsMonthly:     Round2(fixedMonthly),
		VariableCostsTotal:    Round2(variableTotal),
		RevenueTotal:          Round2(revenueTotal),
		GrossProfit:           Round2(grossProfit),
		NetProfit:             Round2(netProfit),
		ContributionMarginPct: Round2(contributionPct),
		BreakEvenUnits:        Round2(breakEvenUnits),
		BreakEvenSales:        Round2(breakEvenSales),
		SafetyMarginPct:       Round2(safetyPct),
		ROIPct:                Round2(roiPct),
	}, nil
}
