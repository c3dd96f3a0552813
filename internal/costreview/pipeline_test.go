package costreview

import (
	"context"
	"errors"
	"testing"
)

func TestPipelineRunComplete(t *testing.T) {
	q := &queueCaller{responses: []string{validVerdictJSON, validAnalysisJSON, validPlanJSON}}
	p := NewPipeline(newStages(q))

	var stagesSeen []string
	res, err := p.RunWithProgress(context.Background(), RunRequest{
		BusinessID: 7,
		ModuleID:   3,
		Costs:      sampleCosts(),
		Profile:    sampleProfile(),
	}, func(stage, _ string) { stagesSeen = append(stagesSeen, stage) })
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Mode != RunModeComplete {
		t.Fatalf("mode = %q, want COMPLETE", res.Mode)
	}
	if res.RunID == "" {
		t.Fatal("run id must be assigned")
	}
	if res.Analysis == nil || res.Plan == nil {
		t.Fatal("analysis and plan must be populated on a complete run")
	}
	if len(stagesSeen) != 3 || stagesSeen[0] != StageValidate || stagesSeen[2] != StageFinalize {
		t.Fatalf("progress stages = %v", stagesSeen)
	}
	if res.StartedAt.After(res.CompletedAt) {
		t.Fatal("timestamps out of order")
	}
}

func TestPipelineRunRejectedStopsEarly(t *testing.T) {
	rejecting := `{
		"item_results":[{"name":"salaries","amount":2000,"is_valid":false,"justification":"personnel compensation is excluded"}],
		"missing_mandatory":[],
		"missing_recommended":[],
		"can_proceed":false,
		"summary_message":"Remove personnel costs and resubmit."
	}`
	q := &queueCaller{responses: []string{rejecting}}
	p := NewPipeline(newStages(q))

	res, err := p.Run(context.Background(), RunRequest{Costs: sampleCosts(), Profile: sampleProfile()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Mode != RunModeRejected {
		t.Fatalf("mode = %q, want REJECTED", res.Mode)
	}
	if res.ExitReason != "Remove personnel costs and resubmit." {
		t.Fatalf("exit reason = %q", res.ExitReason)
	}
	if res.Analysis != nil || res.Plan != nil {
		t.Fatal("rejected run must not execute later stages")
	}
	if len(q.prompts) != 1 {
		t.Fatalf("expected 1 reasoning call, saw %d", len(q.prompts))
	}
}

func TestPipelineRunDegradedOnAnalyzeFailure(t *testing.T) {
	q := &queueCaller{responses: []string{validVerdictJSON, "not json at all"}}
	p := NewPipeline(newStages(q))

	res, err := p.Run(context.Background(), RunRequest{Costs: sampleCosts(), Profile: sampleProfile()})
	if err != nil {
		t.Fatalf("degraded run must not surface an error, got %v", err)
	}
	if res.Mode != RunModeDegraded {
		t.Fatalf("mode = %q, want DEGRADED", res.Mode)
	}
	if res.FailedStage != StageAnalyze {
		t.Fatalf("failed stage = %q", res.FailedStage)
	}
	if res.ExitReason == "" {
		t.Fatal("exit reason must carry the cause")
	}
	if res.Plan != nil {
		t.Fatal("finalize must not run after analyze failure")
	}
}

func TestPipelineRunValidateFailureIsAnError(t *testing.T) {
	q := &queueCaller{errs: []error{errors.New("503 bad gateway")}}
	p := NewPipeline(newStages(q))

	_, err := p.Run(context.Background(), RunRequest{Costs: sampleCosts(), Profile: sampleProfile()})
	if err == nil {
		t.Fatal("validate failure is returned as an error, not an envelope")
	}
	if StageNameFromError(err) != StageValidate {
		t.Fatalf("stage = %q", StageNameFromError(err))
	}
}

func TestPipelineRunEmptyCosts(t *testing.T) {
	p := NewPipeline(newStages(&queueCaller{}))
	if _, err := p.Run(context.Background(), RunRequest{Profile: sampleProfile()}); err == nil {
		t.Fatal("empty cost list must be rejected before any reasoning call")
	}
}
