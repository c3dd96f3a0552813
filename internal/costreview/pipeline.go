package costreview

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type RunMode string

const (
	RunModeComplete RunMode = "COMPLETE"
	RunModeDegraded RunMode = "DEGRADED"
	RunModeRejected RunMode = "REJECTED"
)

// RunRequest feeds a full validate-analyze-finalize run.
type RunRequest struct {
	RunID      string
	BusinessID int64
	ModuleID   int64
	Costs      []CostItem
	Profile    BusinessProfile
}

// RunResult aggregates the three stage outputs. Analysis and Plan are nil
// for stages that never ran.
type RunResult struct {
	RunID         string
	Verdict       ValidationVerdict
	Analysis      *CostAnalysis
	Plan          *ActionPlan
	Mode          RunMode
	FailedStage   string
	ExitReason    string
	StageAttempts map[string]int
	StartedAt     time.Time
	CompletedAt   time.Time
}

type StageProgressFn func(stage, message string)

// Pipeline chains the three independent stage operations with the standard
// sequencing policy: stop after a rejecting verdict, degrade gracefully when
// a later stage fails.
type Pipeline struct {
	stages *Stages
}

func NewPipeline(stages *Stages) *Pipeline { return &Pipeline{stages: stages} }

func (p *Pipeline) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	return p.runWithProgress(ctx, req, nil)
}

func (p *Pipeline) RunWithProgress(ctx context.Context, req RunRequest, progress StageProgressFn) (RunResult, error) {
	return p.runWithProgress(ctx, req, progress)
}

func (p *Pipeline) runWithProgress(ctx context.Context, req RunRequest, progress StageProgressFn) (RunResult, error) {
	res := RunResult{
		RunID:         req.RunID,
		Mode:          RunModeComplete,
		StageAttempts: map[string]int{},
		StartedAt:     time.Now(),
	}
	if res.RunID == "" {
		res.RunID = uuid.NewString()
	}
	if len(req.Costs) == 0 {
		return res, fmt.Errorf("cost list is empty")
	}

	emit(progress, StageValidate, "Validating cost list...")
	verdict, err := p.stages.ValidateCosts(ctx, req.Costs, req.Profile)
	res.StageAttempts[StageValidate] = 1
	if err != nil {
		res.CompletedAt = time.Now()
		return res, err
	}
	res.Verdict = verdict
	if !verdict.CanProceed {
		res.Mode = RunModeRejected
		res.ExitReason = verdict.SummaryMessage
		res.CompletedAt = time.Now()
		return res, nil
	}

	emit(progress, StageAnalyze, "Analyzing costs against market ranges...")
	analyzed := p.stages.AnalyzeCosts(ctx, req.Costs, req.Profile, &verdict)
	res.StageAttempts[StageAnalyze] = analyzed.Attempts
	if !analyzed.Success {
		return p.finalizeDegraded(res, StageAnalyze, analyzed.Err), nil
	}
	res.Analysis = &analyzed.Analysis

	emit(progress, StageFinalize, "Synthesizing action plan...")
	finalized := p.stages.FinalizeAnalysis(ctx, analyzed.Analysis, req.Profile)
	res.StageAttempts[StageFinalize] = finalized.Attempts
	if !finalized.Success {
		return p.finalizeDegraded(res, StageFinalize, finalized.Err), nil
	}
	res.Plan = &finalized.Plan

	res.CompletedAt = time.Now()
	return res, nil
}

func (p *Pipeline) finalizeDegraded(res RunResult, failedStage string, err error) RunResult {
	res.Mode = RunModeDegraded
	res.FailedStage = failedStage
	if err != nil {
		res.ExitReason = err.Error()
	}
	res.CompletedAt = time.Now()
	return res
}

func emit(progress StageProgressFn, stage, message string) {
	if progress != nil {
		progress(stage, message)
	}
}
