package finance

// CostEntry is a recurring cost as supplied by the caller. Amounts carry
// their billing frequency and are normalized to monthly before use.
type CostEntry struct {
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	Frequency Frequency `json:"frequency"`
}

// Product describes the unit economics of one product or service line.
type Product struct {
	ID               string  `json:"id,omitempty"`
	Name             string  `json:"name"`
	UnitPrice        float64 `json:"unit_price"`
	UnitVariableCost float64 `json:"unit_variable_cost"`
	SalesVolume      float64 `json:"sales_volume"`
}

// ProfitabilityResult reports the monthly profitability picture. All values
// are rounded to two decimals.
type ProfitabilityResult struct {
	FixedCostsMonthly     float64 `json:"fixed_costs_monthly"`
	VariableCostsTotal    float64 `json:"variable_costs_total"`
	RevenueTotal          float64 `json:"revenue_total"`
	GrossProfit           float64 `json:"gross_profit"`
	NetProfit             float64 `json:"net_profit"`
	ContributionMarginPct float64 `json:"contribution_margin_pct"`
	BreakEvenUnits        float64 `json:"break_even_units"`
	BreakEvenSales        float64 `json:"break_even_sales"`
	SafetyMarginPct       float64 `json:"safety_margin_pct"`
	ROIPct                float64 `json:"roi_pct"`
}

// MarketPosition classifies average own pricing against the competitive
// reference price.
type MarketPosition string

const (
	PositionLow  MarketPosition = "low"
	PositionMid  MarketPosition = "mid"
	PositionHigh MarketPosition = "high"
)

// ProductPricing is the per-product slice of a pricing analysis.
type ProductPricing struct {
	ProductID              string   `json:"product_id"`
	MarginPct              float64  `json:"margin_pct"`
	EstimatedProfitability float64  `json:"estimated_profitability"`
	CompetitivePrice       float64  `json:"competitive_price"`
	Recommendations        []string `json:"recommendations"`
}

type PricingResult struct {
	Products    []ProductPricing `json:"products"`
	Positioning MarketPosition   `json:"positioning"`
}

// AveragingStrategy selects how unit economics are collapsed to a single
// representative price/cost pair for break-even computation. An empty
// strategy means simple-average.
type AveragingStrategy string

const (
	StrategyFirstItem      AveragingStrategy = "first-item"
	StrategySimpleAverage  AveragingStrategy = "simple-average"
	StrategyVolumeWeighted AveragingStrategy = "volume-weighted-average"
)

type BreakEvenResult struct {
	Strategy          AveragingStrategy `json:"strategy"`
	UnitPrice         float64           `json:"unit_price"`
	UnitVariableCost  float64           `json:"unit_variable_cost"`
	FixedCostsMonthly float64           `json:"fixed_costs_monthly"`
	BreakEvenUnits    float64           `json:"break_even_units"`
	BreakEvenSales    float64           `json:"break_even_sales"`
}

// Scenario is a fixed volume projection with an assigned probability.
type Scenario struct {
	Label       string  `json:"label"`
	Volume      float64 `json:"volume"`
	Probability float64 `json:"probability"`
}

type ScenarioSet struct {
	Optimistic  Scenario `json:"optimistic"`
	Pessimistic Scenario `json:"pessimistic"`
	Realistic   Scenario `json:"realistic"`
}
