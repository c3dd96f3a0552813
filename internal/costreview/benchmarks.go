package costreview

// CostBenchmark is a reference monthly range for one fixed cost, used to
// anchor the analyze prompt and to propose missing-cost candidates in the
// validation prompt.
type CostBenchmark struct {
	Name           string
	MonthlyLowUSD  float64
	MonthlyHighUSD float64
	Mandatory      bool
	Benefit        string
}

// BusinessBenchmarks groups the reference costs for one business type. Size
// multipliers scale the ranges by declared size class.
type BusinessBenchmarks struct {
	BusinessType string
	Costs        []CostBenchmark
}

var sizeMultipliers = map[string]float64{
	"micro":  0.6,
	"small":  1.0,
	"medium": 1.8,
}

var defaultBenchmarks = map[string]BusinessBenchmarks{
	"food_service": {
		BusinessType: "food_service",
		Costs: []CostBenchmark{
			{Name: "rent", MonthlyLowUSD: 400, MonthlyHighUSD: 2500, Mandatory: true},
			{Name: "electricity", MonthlyLowUSD: 80, MonthlyHighUSD: 600, Mandatory: true},
			{Name: "water", MonthlyLowUSD: 30, MonthlyHighUSD: 250, Mandatory: true},
			{Name: "gas", MonthlyLowUSD: 40, MonthlyHighUSD: 400, Mandatory: true},
			{Name: "health permit", MonthlyLowUSD: 10, MonthlyHighUSD: 80, Mandatory: true},
			{Name: "liability insurance", MonthlyLowUSD: 30, MonthlyHighUSD: 200, Benefit: "Covers customer incidents on premises."},
			{Name: "pest control", MonthlyLowUSD: 20, MonthlyHighUSD: 100, Benefit: "Required by many municipal food codes."},
			{Name: "point-of-sale subscription", MonthlyLowUSD: 15, MonthlyHighUSD: 90, Benefit: "Sales tracking simplifies tax reporting."},
		},
	},
	"retail": {
		BusinessType: "retail",
		Costs: []CostBenchmark{
			{Name: "rent", MonthlyLowUSD: 500, MonthlyHighUSD: 3500, Mandatory: true},
			{Name: "electricity", MonthlyLowUSD: 60, MonthlyHighUSD: 450, Mandatory: true},
			{Name: "business license", MonthlyLowUSD: 10, MonthlyHighUSD: 60, Mandatory: true},
			{Name: "theft insurance", MonthlyLowUSD: 40, MonthlyHighUSD: 250, Benefit: "Protects inventory-heavy storefronts."},
			{Name: "alarm monitoring", MonthlyLowUSD: 20, MonthlyHighUSD: 120, Benefit: "Lowers insurance premiums in most markets."},
			{Name: "point-of-sale subscription", MonthlyLowUSD: 15, MonthlyHighUSD: 90, Benefit: "Inventory and sales tracking."},
		},
	},
	"services": {
		BusinessType: "services",
		Costs: []CostBenchmark{
			{Name: "rent", MonthlyLowUSD: 300, MonthlyHighUSD: 2000, Mandatory: true},
			{Name: "electricity", MonthlyLowUSD: 40, MonthlyHighUSD: 300, Mandatory: true},
			{Name: "internet", MonthlyLowUSD: 30, MonthlyHighUSD: 150, Mandatory: true},
			{Name: "professional liability insurance", MonthlyLowUSD: 40, MonthlyHighUSD: 300, Benefit: "Covers claims arising from service errors."},
			{Name: "scheduling software", MonthlyLowUSD: 10, MonthlyHighUSD: 80, Benefit: "Reduces no-shows and double bookings."},
		},
	},
	"manufacturing": {
		BusinessType: "manufacturing",
		Costs: []CostBenchmark{
			{Name: "rent", MonthlyLowUSD: 800, MonthlyHighUSD: 6000, Mandatory: true},
			{Name: "electricity", MonthlyLowUSD: 200, MonthlyHighUSD: 2500, Mandatory: true},
			{Name: "water", MonthlyLowUSD: 50, MonthlyHighUSD: 500, Mandatory: true},
			{Name: "equipment maintenance", MonthlyLowUSD: 100, MonthlyHighUSD: 1200, Mandatory: true},
			{Name: "workshop insurance", MonthlyLowUSD: 80, MonthlyHighUSD: 600, Benefit: "Covers machinery damage and fire."},
			{Name: "waste disposal", MonthlyLowUSD: 40, MonthlyHighUSD: 400, Benefit: "Avoids environmental fines."},
		},
	},
	"default": {
		BusinessType: "default",
		Costs: []CostBenchmark{
			{Name: "rent", MonthlyLowUSD: 300, MonthlyHighUSD: 3000, Mandatory: true},
			{Name: "electricity", MonthlyLowUSD: 40, MonthlyHighUSD: 500, Mandatory: true},
			{Name: "business license", MonthlyLowUSD: 10, MonthlyHighUSD: 60, Mandatory: true},
			{Name: "liability insurance", MonthlyLowUSD: 30, MonthlyHighUSD: 250, Benefit: "Baseline protection against third-party claims."},
		},
	},
}

// BenchmarksFor returns the reference costs for a business type, scaled by
// size class. Unknown types fall back to the default set; unknown size
// classes are left unscaled.
func BenchmarksFor(businessType, sizeClass string) BusinessBenchmarks {
	b, ok := defaultBenchmarks[businessType]
	if !ok {
		b = defaultBenchmarks["default"]
	}
	mult, ok := sizeMultipliers[sizeClass]
	if !ok {
		mult = 1.0
	}
	scaled := BusinessBenchmarks{BusinessType: b.BusinessType, Costs: make([]CostBenchmark, len(b.Costs))}
	for i, c := range b.Costs {
		c.MonthlyLowUSD *= mult
		c.MonthlyHighUSD *= mult
		scaled.Costs[i] = c
	}
	return scaled
}
