package finance

import "fmt"

// ComputeBreakEven collapses the product list to one representative
// price/cost pair using the given averaging strategy and computes the
// break-even point against monthly fixed costs.
//
// StrategyFirstItem matches the break-even embedded in
// ComputeProfitability. StrategyVolumeWeighted weights by sales volume.
func ComputeBreakEven(fixedCosts []CostEntry, products []Product, strategy AveragingStrategy) (BreakEvenResult, error) {
	if len(products) == 0 {
		return BreakEvenResult{}, fmt.Errorf("break-even: product list is empty: %w", ErrInvalidInput)
	}

	price, cost, err := representativeUnit(products, strategy)
	if err != nil {
		return BreakEvenResult{}, err
	}

	denom := price - cost
	if denom == 0 {
		return BreakEvenResult{}, fmt.Errorf("break-even: representative unit price equals unit cost: %w", ErrArithmeticUndefined)
	}

	fixedMonthly := MonthlyTotal(fixedCosts)
	units := fixedMonthly / denom
	return BreakEvenResult{
		Strategy:          strategy,
		UnitPrice:         Round2(price),
		UnitVariableCost:  Round2(cost),
		FixedCostsMonthly: Round2(fixedMonthly),
		BreakEvenUnits:    Round2(units),
		BreakEvenSales:    Round2(units * price),
	}, nil
}

func representativeUnit(products []Product, strategy AveragingStrategy) (price, cost float64, err error) {
	switch strategy {
	case StrategyFirstItem:
		return products[0].UnitPrice, products[0].UnitVariableCost, nil
	case StrategySimpleAverage, "":
		priceSum := 0.0
		costSum := 0.0
		for _, p := range products {
			priceSum += p.UnitPrice
			costSum += p.UnitVariableCost
		}
		n := float64(len(products))
		return priceSum / n, costSum / n, nil
	case StrategyVolumeWeighted:
		priceSum := 0.0
		costSum := 0.0
		volume := 0.0
		for _, p := range products {
			priceSum += p.UnitPrice * p.SalesVolume
			costSum += p.UnitVariableCost * p.SalesVolume
			volume += p.SalesVolume
		}
		if volume == 0 {
			return 0, 0, fmt.Errorf("break-even: total sales volume is zero for volume weighting: %w", ErrInvalidInput)
		}
		return priceSum / volume, costSum / volume, nil
	default:
		return 0, 0, fmt.Errorf("break-even: unknown averaging strategy %q: %w", strategy, ErrInvalidInput)
	}
}
