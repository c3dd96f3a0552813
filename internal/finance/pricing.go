package finance

import "fmt"

// DefaultTargetMarginPct is applied when the caller passes a non-positive
// target margin to ComputePricing.
const DefaultTargetMarginPct = 30.0

// ComputePricing evaluates each product's margin against a target margin and
// classifies overall market positioning by comparing the average own price to
// the average competitive price (cost uplifted by the target margin).
// Ratios below 0.8 classify as low and above 1.2 as high; both boundaries
// themselves fall in mid because the comparisons are strict.
func ComputePricing(products []Product, targetMarginPct float64) (PricingResult, error) {
	if len(products) == 0 {
		return PricingResult{}, fmt.Errorf("pricing: product list is empty: %w", ErrInvalidInput)
	}
	if targetMarginPct <= 0 {
		targetMarginPct = DefaultTargetMarginPct
	}

	out := PricingResult{Products: make([]ProductPricing, 0, len(products))}
	ownSum := 0.0
	competitiveSum := 0.0
	for _, p := range products {
		competitive := p.UnitVariableCost * (1 + targetMarginPct/100)
		marginPct := 0.0
		if p.UnitPrice != 0 {
			marginPct = (p.UnitPrice - p.UnitVariableCost) / p.UnitPrice * 100
		}
		entry := ProductPricing{
			ProductID:              productKey(p),
			MarginPct:              Round2(marginPct),
			EstimatedProfitability: Round2((p.UnitPrice - p.UnitVariableCost) * p.SalesVolume),
			CompetitivePrice:       Round2(competitive),
			Recommendations:        pricingRecommendations(p, marginPct, targetMarginPct, competitive),
		}
		out.Products = append(out.Products, entry)
		ownSum += p.UnitPrice
		competitiveSum += competitive
	}

	out.Positioning = classifyPositioning(ownSum/float64(len(products)), competitiveSum/float64(len(products)))
	return out, nil
}

func classifyPositioning(avgOwn, avgCompetitive float64) MarketPosition {
	if avgCompetitive == 0 {
		return PositionMid
	}
	ratio := avgOwn / avgCompetitive
	switch {
	case ratio < 0.8:
		return PositionLow
	case ratio > 1.2:
		return PositionHigh
	default:
		return PositionMid
	}
}

func pricingRecommendations(p Product, marginPct, targetMarginPct, competitive float64) []string {
	var recs []string
	if p.UnitPrice < p.UnitVariableCost {
		recs = append(recs, fmt.Sprintf("%s sells below variable cost; raise the price above %.2f or reduce the unit cost.", p.Name, p.UnitVariableCost))
	}
	if marginPct < targetMarginPct {
		recs = append(recs, fmt.Sprintf("Margin %.1f%% is under the %.0f%% target; a price near %.2f would close the gap.", marginPct, targetMarginPct, competitive))
	}
	if marginPct >= targetMarginPct*2 {
		recs = append(recs, "Margin is well above target; verify the price is sustainable against competitors.")
	}
	if len(recs) == 0 {
		recs = append(recs, "Pricing is within the target band; no change needed.")
	}
	return recs
}

func productKey(p Product) string {
	if p.ID != "" {
		return p.ID
	}
	return p.Name
}
