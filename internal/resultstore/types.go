package resultstore

import (
	"time"

	"github.com/emprendia/viability/internal/costreview"
)

// AnalysisSession groups every result saved for one business. A business
// has exactly one session; repeated lookups return the same identifier.
type AnalysisSession struct {
	SessionID  string    `json:"session_id"`
	BusinessID int64     `json:"business_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// CompleteAnalysisResult is the durable form of a finished pipeline run
// for one module of a business. SavedState records the run mode the
// result was produced under (COMPLETE or DEGRADED).
type CompleteAnalysisResult struct {
	BusinessID    int64                       `json:"business_id"`
	ModuleID      int64                       `json:"module_id"`
	SessionID     string                      `json:"session_id"`
	AnalyzedCosts []costreview.AnalyzedCost   `json:"analyzed_costs"`
	DetectedRisks []costreview.DetectedRisk   `json:"detected_risks"`
	ActionPlan    []costreview.ActionPlanItem `json:"action_plan"`
	Summary       string                      `json:"summary"`
	SavedState    string                      `json:"saved_state"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}
