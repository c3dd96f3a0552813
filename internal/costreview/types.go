package costreview

import (
	"time"

	"github.com/emprendia/viability/internal/finance"
)

// CostItem is one fixed cost submitted for review. Transient input; it is
// persisted only as part of analyzed-cost records.
type CostItem struct {
	Name      string            `json:"name"`
	Amount    float64           `json:"amount"`
	Frequency finance.Frequency `json:"frequency"`
}

// BusinessProfile is read-only context carried into every prompt.
type BusinessProfile struct {
	Type      string `json:"type"`
	SizeClass string `json:"size_class"`
	Location  string `json:"location"`
}

type ItemVerdict struct {
	Name          string  `json:"name"`
	Amount        float64 `json:"amount"`
	IsValid       bool    `json:"is_valid"`
	Justification string  `json:"justification"`
}

type MissingMandatoryCost struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type MissingRecommendedCost struct {
	Name    string `json:"name"`
	Benefit string `json:"benefit"`
}

// ValidationVerdict is the validate stage output. CanProceed is never forced
// false merely because recommended costs are missing.
type ValidationVerdict struct {
	ItemResults        []ItemVerdict            `json:"item_results"`
	MissingMandatory   []MissingMandatoryCost   `json:"missing_mandatory"`
	MissingRecommended []MissingRecommendedCost `json:"missing_recommended"`
	CanProceed         bool                     `json:"can_proceed"`
	SummaryMessage     string                   `json:"summary_message"`
}

type CostEvaluation string

const (
	EvaluationWithinRange CostEvaluation = "within_range"
	EvaluationBelowRange  CostEvaluation = "below_range"
	EvaluationAboveRange  CostEvaluation = "above_range"
)

type AnalyzedCost struct {
	CostName       string         `json:"cost_name"`
	ReceivedValue  float64        `json:"received_value"`
	EstimatedRange string         `json:"estimated_range"`
	Evaluation     CostEvaluation `json:"evaluation"`
	Comment        string         `json:"comment"`
}

type DetectedRisk struct {
	Risk            string `json:"risk"`
	DirectCause     string `json:"direct_cause"`
	PotentialImpact string `json:"potential_impact"`
}

// CostAnalysis is the analyze stage output.
type CostAnalysis struct {
	AnalyzedCosts []AnalyzedCost `json:"analyzed_costs"`
	DetectedRisks []DetectedRisk `json:"detected_risks"`
	Summary       string         `json:"summary"`
}

type PlanPriority string

const (
	PriorityHigh   PlanPriority = "high"
	PriorityMedium PlanPriority = "medium"
	PriorityLow    PlanPriority = "low"
)

type ActionPlanItem struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    PlanPriority `json:"priority"`
}

// ActionPlan is the finalize stage output.
type ActionPlan struct {
	Items   []ActionPlanItem `json:"action_plan"`
	Summary string           `json:"summary"`
}

// AnalyzeResult is the analyze stage envelope. Gateway failures are carried
// in Err rather than returned, so a partial pipeline failure never takes the
// caller down with it. Attempts counts gateway calls including timeout
// retries.
type AnalyzeResult struct {
	Success   bool
	Analysis  CostAnalysis
	Err       error
	Attempts  int
	Timestamp time.Time
}

// FinalizeResult is the finalize stage envelope, same convention as
// AnalyzeResult.
type FinalizeResult struct {
	Success   bool
	Plan      ActionPlan
	Err       error
	Attempts  int
	Timestamp time.Time
}
