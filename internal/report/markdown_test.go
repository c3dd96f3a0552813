package report

import (
	"strings"
	"testing"
	"time"

	"github.com/emprendia/viability/internal/costreview"
	"github.com/emprendia/viability/internal/finance"
)

func completeInput() Input {
	return Input{
		BusinessName: "Panaderia La Espiga",
		Profile:      costreview.BusinessProfile{Type: "food_service", SizeClass: "small", Location: "Oaxaca"},
		Run: costreview.RunResult{
			RunID: "run-1",
			Mode:  costreview.RunModeComplete,
			Verdict: costreview.ValidationVerdict{
				ItemResults: []costreview.ItemVerdict{
					{Name: "rent", Amount: 500, IsValid: true, Justification: "fixed recurring cost"},
				},
				MissingRecommended: []costreview.MissingRecommendedCost{
					{Name: "insurance", Benefit: "covers fire and theft exposure"},
				},
				CanProceed:     true,
				SummaryMessage: "Costs look reasonable.",
			},
			Analysis: &costreview.CostAnalysis{
				AnalyzedCosts: []costreview.AnalyzedCost{
					{CostName: "rent", ReceivedValue: 500, EstimatedRange: "400-900", Evaluation: costreview.EvaluationWithinRange, Comment: "typical for the area"},
				},
				DetectedRisks: []costreview.DetectedRisk{
					{Risk: "single supplier", DirectCause: "one flour vendor", PotentialImpact: "production stops on shortage"},
				},
				Summary: "Cost structure is healthy.",
			},
			Plan: &costreview.ActionPlan{
				Items: []costreview.ActionPlanItem{
					{Title: "Add a second supplier", Description: "Quote two more flour vendors.", Priority: costreview.PriorityHigh},
				},
				Summary: "Focus on supply resilience.",
			},
		},
		Financials: Financials{
			Profitability: &finance.ProfitabilityResult{
				FixedCostsMonthly: 500, VariableCostsTotal: 2000, RevenueTotal: 5000,
				GrossProfit: 3000, NetProfit: 2500, ContributionMarginPct: 60,
				BreakEvenUnits: 166.67, BreakEvenSales: 833.33, SafetyMarginPct: 83.33, ROIPct: 300,
			},
			Scenarios: &finance.ScenarioSet{
				Optimistic:  finance.Scenario{Label: "optimistic", Volume: 1300, Probability: 0.25},
				Pessimistic: finance.Scenario{Label: "pessimistic", Volume: 700, Probability: 0.25},
				Realistic:   finance.Scenario{Label: "realistic", Volume: 1000, Probability: 0.50},
			},
		},
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestBuildMarkdownComplete(t *testing.T) {
	md := BuildMarkdown(completeInput())

	for _, want := range []string{
		"# Financial Viability Report",
		"Panaderia La Espiga",
		"- Mode: COMPLETE",
		"## Cost Validation",
		"| rent | $500.00 | yes |",
		"### Recommended Additions",
		"## Financial Picture",
		"| Net profit | $2500.00 |",
		"| Safety margin | 83.33% |",
		"| ROI on initial investment | 300.00% |",
		"### Sales Scenarios",
		"| pessimistic | 700.00 | 25% |",
		"| realistic | 1000.00 | 50% |",
		"## Cost Analysis",
		"within range",
		"**single supplier**",
		"## Action Plan",
		"**Add a second supplier** (`high`)",
		"## Next Steps",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("missing %q", want)
		}
	}
	if strings.Contains(md, "DEGRADED") || strings.Contains(md, "REJECTED") {
		t.Error("complete report must not carry a failure notice")
	}
}

func TestBuildMarkdownDegraded(t *testing.T) {
	in := completeInput()
	in.Run.Mode = costreview.RunModeDegraded
	in.Run.FailedStage = costreview.StageAnalyze
	in.Run.Analysis = nil
	in.Run.Plan = nil

	md := BuildMarkdown(in)
	if !strings.Contains(md, "> DEGRADED") {
		t.Error("degraded notice missing")
	}
	if !strings.Contains(md, "Not available for this run") {
		t.Error("missing sections must say they are unavailable")
	}
	if !strings.Contains(md, "## Financial Picture") {
		t.Error("deterministic sections must survive degradation")
	}
}

func TestBuildMarkdownRejected(t *testing.T) {
	in := completeInput()
	in.Run.Mode = costreview.RunModeRejected
	in.Run.ExitReason = "Personnel costs must be removed."
	in.Run.Analysis = nil
	in.Run.Plan = nil

	md := BuildMarkdown(in)
	if !strings.Contains(md, "> REJECTED") || !strings.Contains(md, "Personnel costs must be removed.") {
		t.Error("rejected notice missing or incomplete")
	}
	if !strings.Contains(md, "resubmit") {
		t.Error("rejected next steps missing")
	}
}

func TestBuildMarkdownEscapesTableCells(t *testing.T) {
	in := completeInput()
	in.Run.Verdict.ItemResults[0].Justification = "has | pipe\nand newline"

	md := BuildMarkdown(in)
	if !strings.Contains(md, `has \| pipe and newline`) {
		t.Error("table cells must escape pipes and strip newlines")
	}
}

func TestBuildHTMLConvertsMarkdown(t *testing.T) {
	doc, err := buildHTML("# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n", "Viability Report")
	if err != nil {
		t.Fatalf("buildHTML: %v", err)
	}
	if !strings.Contains(doc, "<h1") || !strings.Contains(doc, "<table") {
		t.Fatalf("GFM conversion incomplete: %s", doc)
	}
	if !strings.Contains(doc, "<title>Viability Report</title>") {
		t.Error("title not embedded")
	}
}

func TestApplyPrintLayoutHooks(t *testing.T) {
	out := applyPrintLayoutHooks(`<h2 id="x">Cost Analysis</h2>`)
	if !strings.Contains(out, `data-page-break-before="true"`) {
		t.Fatalf("page break hook not applied: %s", out)
	}
}
