package costreview

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Stage names, used in errors and attempt metrics.
const (
	StageValidate = "validate"
	StageAnalyze  = "analyze"
	StageFinalize = "finalize"
)

// Stages exposes the three pipeline operations. They are independently
// callable: nothing here enforces validate-before-analyze ordering, and any
// sequencing policy belongs to the caller.
type Stages struct {
	gw *Gateway
}

func NewStages(gw *Gateway) *Stages { return &Stages{gw: gw} }

// ValidateCosts adjudicates a cost list against the validation rules.
// Unlike the other two stages, failures are returned as errors, always a
// *StageError wrapping the typed cause.
func (s *Stages) ValidateCosts(ctx context.Context, costs []CostItem, profile BusinessProfile) (ValidationVerdict, error) {
	verdict := ValidationVerdict{}
	raw, _, err := s.gw.Invoke(ctx, StageValidate, BuildValidationPrompt(costs, profile), ValidateTimeout)
	if err != nil {
		return verdict, &StageError{Stage: StageValidate, Err: err}
	}
	if err := ExtractJSON(StageValidate, raw, &verdict); err != nil {
		return verdict, &StageError{Stage: StageValidate, Err: err}
	}
	if err := checkVerdict(verdict); err != nil {
		return verdict, &StageError{Stage: StageValidate, Err: &InvalidResponseError{Stage: StageValidate, Raw: raw, Err: err}}
	}
	normalizeVerdict(&verdict)
	return verdict, nil
}

// AnalyzeCosts compares each cost against market ranges and surfaces risks.
// The prior verdict is optional opaque context; passing nil is allowed.
func (s *Stages) AnalyzeCosts(ctx context.Context, costs []CostItem, profile BusinessProfile, verdict *ValidationVerdict) AnalyzeResult {
	res := AnalyzeResult{Timestamp: time.Now()}
	raw, attempts, err := s.gw.Invoke(ctx, StageAnalyze, BuildAnalysisPrompt(costs, profile, verdict), AnalyzeTimeout)
	res.Attempts = attempts
	if err != nil {
		res.Err = &StageError{Stage: StageAnalyze, Err: err}
		return res
	}
	analysis := CostAnalysis{}
	if err := ExtractJSON(StageAnalyze, raw, &analysis); err != nil {
		res.Err = &StageError{Stage: StageAnalyze, Err: err}
		return res
	}
	if err := checkAnalysis(analysis); err != nil {
		res.Err = &StageError{Stage: StageAnalyze, Err: &InvalidResponseError{Stage: StageAnalyze, Raw: raw, Err: err}}
		return res
	}
	res.Success = true
	res.Analysis = analysis
	res.Timestamp = time.Now()
	return res
}

// FinalizeAnalysis synthesizes an action plan from an analyze-stage output.
func (s *Stages) FinalizeAnalysis(ctx context.Context, analysis CostAnalysis, profile BusinessProfile) FinalizeResult {
	res := FinalizeResult{Timestamp: time.Now()}
	raw, attempts, err := s.gw.Invoke(ctx, StageFinalize, BuildActionPlanPrompt(analysis, profile), FinalizeTimeout)
	res.Attempts = attempts
	if err != nil {
		res.Err = &StageError{Stage: StageFinalize, Err: err}
		return res
	}
	plan := ActionPlan{}
	if err := ExtractJSON(StageFinalize, raw, &plan); err != nil {
		res.Err = &StageError{Stage: StageFinalize, Err: err}
		return res
	}
	if err := checkPlan(plan); err != nil {
		res.Err = &StageError{Stage: StageFinalize, Err: &InvalidResponseError{Stage: StageFinalize, Raw: raw, Err: err}}
		return res
	}
	res.Success = true
	res.Plan = plan
	res.Timestamp = time.Now()
	return res
}

func checkVerdict(v ValidationVerdict) error {
	if strings.TrimSpace(v.SummaryMessage) == "" {
		return fmt.Errorf("summary_message required")
	}
	for _, it := range v.ItemResults {
		if strings.TrimSpace(it.Name) == "" {
			return fmt.Errorf("item result missing name")
		}
		if strings.TrimSpace(it.Justification) == "" {
			return fmt.Errorf("item %q missing justification", it.Name)
		}
	}
	for _, m := range v.MissingMandatory {
		if strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.Reason) == "" {
			return fmt.Errorf("missing_mandatory entries need name and reason")
		}
	}
	for _, r := range v.MissingRecommended {
		if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Benefit) == "" {
			return fmt.Errorf("missing_recommended entries need name and benefit")
		}
	}
	return nil
}

// normalizeVerdict enforces the rule the prompt states: missing recommended
// costs alone never block progress. When every item is valid and nothing
// mandatory is missing, can_proceed is forced true.
func normalizeVerdict(v *ValidationVerdict) {
	if v.CanProceed {
		return
	}
	if len(v.MissingMandatory) > 0 {
		return
	}
	for _, it := range v.ItemResults {
		if !it.IsValid {
			return
		}
	}
	v.CanProceed = true
}

func checkAnalysis(a CostAnalysis) error {
	if len(a.AnalyzedCosts) == 0 {
		return fmt.Errorf("analyzed_costs must be non-empty")
	}
	for _, c := range a.AnalyzedCosts {
		if strings.TrimSpace(c.CostName) == "" {
			return fmt.Errorf("analyzed cost missing cost_name")
		}
		switch c.Evaluation {
		case EvaluationWithinRange, EvaluationBelowRange, EvaluationAboveRange:
		default:
			return fmt.Errorf("analyzed cost %q has invalid evaluation %q", c.CostName, c.Evaluation)
		}
	}
	for _, r := range a.DetectedRisks {
		if strings.TrimSpace(r.Risk) == "" || strings.TrimSpace(r.DirectCause) == "" {
			return fmt.Errorf("detected risks need risk and direct_cause")
		}
	}
	if strings.TrimSpace(a.Summary) == "" {
		return fmt.Errorf("summary required")
	}
	return nil
}

func checkPlan(p ActionPlan) error {
	if len(p.Items) == 0 {
		return fmt.Errorf("action_plan must be non-empty")
	}
	for _, it := range p.Items {
		if strings.TrimSpace(it.Title) == "" || strings.TrimSpace(it.Description) == "" {
			return fmt.Errorf("action plan items need title and description")
		}
		switch it.Priority {
		case PriorityHigh, PriorityMedium, PriorityLow:
		default:
			return fmt.Errorf("action plan item %q has invalid priority %q", it.Title, it.Priority)
		}
	}
	return nil
}
