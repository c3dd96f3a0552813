package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/emprendia/viability/internal/costreview"
	"github.com/emprendia/viability/internal/finance"
)

// Financials bundles the deterministic calculations included in a report.
// Any nil section is omitted from the output.
type Financials struct {
	Profitability *finance.ProfitabilityResult
	Pricing       *finance.PricingResult
	BreakEven     *finance.BreakEvenResult
	Scenarios     *finance.ScenarioSet
}

// Input is everything a report needs. GeneratedAt defaults to now.
type Input struct {
	BusinessName string
	Profile      costreview.BusinessProfile
	Run          costreview.RunResult
	Financials   Financials
	GeneratedAt  time.Time
}

// BuildMarkdown renders a full viability report as GFM markdown.
func BuildMarkdown(in Input) string {
	generatedAt := in.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Financial Viability Report\n\n")
	if in.BusinessName != "" {
		fmt.Fprintf(&b, "- Business: %s\n", sanitize(in.BusinessName))
	}
	fmt.Fprintf(&b, "- Type: %s (%s)\n", orDash(in.Profile.Type), orDash(in.Profile.SizeClass))
	fmt.Fprintf(&b, "- Location: %s\n", orDash(in.Profile.Location))
	fmt.Fprintf(&b, "- Run: %s\n", sanitize(in.Run.RunID))
	fmt.Fprintf(&b, "- Date: %s\n", generatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Mode: %s\n\n", in.Run.Mode)

	switch in.Run.Mode {
	case costreview.RunModeDegraded:
		fmt.Fprintf(&b, "> DEGRADED: the `%s` stage failed, so the sections it feeds are missing. "+
			"The cost validation and the deterministic financial figures below remain complete.\n\n",
			sanitize(in.Run.FailedStage))
	case costreview.RunModeRejected:
		fmt.Fprintf(&b, "> REJECTED: the submitted costs did not pass validation. %s\n\n",
			sanitize(in.Run.ExitReason))
	}

	writeVerdict(&b, in.Run.Verdict)
	writeFinancials(&b, in.Financials)
	writeAnalysis(&b, in.Run.Analysis)
	writeActionPlan(&b, in.Run.Plan)
	writeNextSteps(&b, in.Run)
	return b.String()
}

func writeVerdict(b *strings.Builder, v costreview.ValidationVerdict) {
	fmt.Fprintf(b, "## Cost Validation\n\n")
	if v.SummaryMessage != "" {
		fmt.Fprintf(b, "%s\n\n", sanitize(v.SummaryMessage))
	}
	if len(v.ItemResults) > 0 {
		fmt.Fprintf(b, "| Cost | Monthly Amount | Valid | Notes |\n")
		fmt.Fprintf(b, "|------|---------------|-------|-------|\n")
		for _, item := range v.ItemResults {
			fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
				sanitizeCell(item.Name), fmtMoney(item.Amount), yesNo(item.IsValid), sanitizeCell(item.Justification))
		}
		fmt.Fprintf(b, "\n")
	}
	if len(v.MissingMandatory) > 0 {
		fmt.Fprintf(b, "### Missing Mandatory Costs\n\n")
		for _, m := range v.MissingMandatory {
			fmt.Fprintf(b, "- **%s** — %s\n", sanitize(m.Name), sanitize(m.Reason))
		}
		fmt.Fprintf(b, "\n")
	}
	if len(v.MissingRecommended) > 0 {
		fmt.Fprintf(b, "### Recommended Additions\n\n")
		fmt.Fprintf(b, "These do not block the analysis, but including them gives a more accurate picture:\n\n")
		for _, m := range v.MissingRecommended {
			fmt.Fprintf(b, "- **%s** — %s\n", sanitize(m.Name), sanitize(m.Benefit))
		}
		fmt.Fprintf(b, "\n")
	}
	fmt.Fprintf(b, "---\n\n")
}

func writeFinancials(b *strings.Builder, f Financials) {
	if f.Profitability == nil && f.Pricing == nil && f.BreakEven == nil && f.Scenarios == nil {
		return
	}
	fmt.Fprintf(b, "## Financial Picture\n\n")

	if p := f.Profitability; p != nil {
		fmt.Fprintf(b, "### Monthly Profitability\n\n")
		fmt.Fprintf(b, "| Metric | Value |\n|--------|-------|\n")
		fmt.Fprintf(b, "| Fixed costs | %s |\n", fmtMoney(p.FixedCostsMonthly))
		fmt.Fprintf(b, "| Variable costs | %s |\n", fmtMoney(p.VariableCostsTotal))
		fmt.Fprintf(b, "| Revenue | %s |\n", fmtMoney(p.RevenueTotal))
		fmt.Fprintf(b, "| Gross profit | %s |\n", fmtMoney(p.GrossProfit))
		fmt.Fprintf(b, "| Net profit | %s |\n", fmtMoney(p.NetProfit))
		fmt.Fprintf(b, "| Contribution margin | %.2f%% |\n", p.ContributionMarginPct)
		fmt.Fprintf(b, "| Break-even units | %.2f |\n", p.BreakEvenUnits)
		fmt.Fprintf(b, "| Break-even sales | %s |\n", fmtMoney(p.BreakEvenSales))
		fmt.Fprintf(b, "| Safety margin | %.2f%% |\n", p.SafetyMarginPct)
		if p.ROIPct != 0 {
			fmt.Fprintf(b, "| ROI on initial investment | %.2f%% |\n", p.ROIPct)
		}
		fmt.Fprintf(b, "\n")
	}

	if pr := f.Pricing; pr != nil {
		fmt.Fprintf(b, "### Pricing\n\n")
		fmt.Fprintf(b, "Market positioning: **%s** relative to the competitive reference price.\n\n", pr.Positioning)
		if len(pr.Products) > 0 {
			fmt.Fprintf(b, "| Product | Margin | Est. Profitability | Competitive Price |\n")
			fmt.Fprintf(b, "|---------|--------|--------------------|-------------------|\n")
			for _, p := range pr.Products {
				fmt.Fprintf(b, "| %s | %.2f%% | %s | %s |\n",
					sanitizeCell(p.ProductID), p.MarginPct, fmtMoney(p.EstimatedProfitability), fmtMoney(p.CompetitivePrice))
			}
			fmt.Fprintf(b, "\n")
			for _, p := range pr.Products {
				for _, rec := range p.Recommendations {
					fmt.Fprintf(b, "- %s: %s\n", sanitize(p.ProductID), sanitize(rec))
				}
			}
			fmt.Fprintf(b, "\n")
		}
	}

	if be := f.BreakEven; be != nil {
		fmt.Fprintf(b, "### Break-Even\n\n")
		fmt.Fprintf(b, "Using the %s unit model (price %s, variable cost %s per unit) against %s in monthly fixed costs:\n\n",
			be.Strategy, fmtMoney(be.UnitPrice), fmtMoney(be.UnitVariableCost), fmtMoney(be.FixedCostsMonthly))
		fmt.Fprintf(b, "- Break-even volume: %.2f units/month\n", be.BreakEvenUnits)
		fmt.Fprintf(b, "- Break-even sales: %s/month\n\n", fmtMoney(be.BreakEvenSales))
	}

	if sc := f.Scenarios; sc != nil {
		fmt.Fprintf(b, "### Sales Scenarios\n\n")
		fmt.Fprintf(b, "| Scenario | Monthly Volume | Probability |\n")
		fmt.Fprintf(b, "|----------|---------------|-------------|\n")
		for _, s := range []finance.Scenario{sc.Pessimistic, sc.Realistic, sc.Optimistic} {
			fmt.Fprintf(b, "| %s | %.2f | %.0f%% |\n", sanitizeCell(s.Label), s.Volume, s.Probability*100)
		}
		fmt.Fprintf(b, "\n")
	}
	fmt.Fprintf(b, "---\n\n")
}

func writeAnalysis(b *strings.Builder, a *costreview.CostAnalysis) {
	fmt.Fprintf(b, "## Cost Analysis\n\n")
	if a == nil {
		fmt.Fprintf(b, "Not available for this run; see the notice at the top of the report.\n\n---\n\n")
		return
	}
	if a.Summary != "" {
		fmt.Fprintf(b, "%s\n\n", sanitize(a.Summary))
	}
	if len(a.AnalyzedCosts) > 0 {
		fmt.Fprintf(b, "| Cost | Received | Typical Range | Evaluation | Comment |\n")
		fmt.Fprintf(b, "|------|----------|---------------|------------|---------|\n")
		for _, c := range a.AnalyzedCosts {
			fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
				sanitizeCell(c.CostName), fmtMoney(c.ReceivedValue), sanitizeCell(c.EstimatedRange),
				evaluationLabel(c.Evaluation), sanitizeCell(c.Comment))
		}
		fmt.Fprintf(b, "\n")
	}
	if len(a.DetectedRisks) > 0 {
		fmt.Fprintf(b, "### Detected Risks\n\n")
		for _, r := range a.DetectedRisks {
			fmt.Fprintf(b, "- **%s** — cause: %s; potential impact: %s\n",
				sanitize(r.Risk), sanitize(r.DirectCause), sanitize(r.PotentialImpact))
		}
		fmt.Fprintf(b, "\n")
	}
	fmt.Fprintf(b, "---\n\n")
}

func writeActionPlan(b *strings.Builder, p *costreview.ActionPlan) {
	fmt.Fprintf(b, "## Action Plan\n\n")
	if p == nil {
		fmt.Fprintf(b, "Not available for this run; see the notice at the top of the report.\n\n---\n\n")
		return
	}
	if p.Summary != "" {
		fmt.Fprintf(b, "%s\n\n", sanitize(p.Summary))
	}
	for i, item := range p.Items {
		fmt.Fprintf(b, "%d. **%s** (`%s`) — %s\n", i+1, sanitize(item.Title), item.Priority, sanitize(item.Description))
	}
	fmt.Fprintf(b, "\n---\n\n")
}

func writeNextSteps(b *strings.Builder, run costreview.RunResult) {
	fmt.Fprintf(b, "## Next Steps\n\n")
	switch run.Mode {
	case costreview.RunModeRejected:
		fmt.Fprintf(b, "1. Correct the cost list per the validation notes above and resubmit\n")
		fmt.Fprintf(b, "2. Add any missing mandatory costs before re-running the analysis\n\n")
	case costreview.RunModeDegraded:
		fmt.Fprintf(b, "1. Re-run the analysis; the failure was transient or a malformed reasoning response\n")
		fmt.Fprintf(b, "2. Use the validated costs and the financial figures above in the meantime\n\n")
	default:
		fmt.Fprintf(b, "1. Work through the action plan starting with the high priority items\n")
		fmt.Fprintf(b, "2. Re-run the analysis after material cost changes to keep the picture current\n")
		fmt.Fprintf(b, "3. Compare the break-even volume against the pessimistic scenario before committing to new fixed costs\n\n")
	}
}

func evaluationLabel(e costreview.CostEvaluation) string {
	switch e {
	case costreview.EvaluationWithinRange:
		return "within range"
	case costreview.EvaluationBelowRange:
		return "below range"
	case costreview.EvaluationAboveRange:
		return "above range"
	default:
		return string(e)
	}
}

func fmtMoney(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func sanitize(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}

func sanitizeCell(s string) string {
	return strings.ReplaceAll(sanitize(s), "|", "\\|")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return sanitize(s)
}
