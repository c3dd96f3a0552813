package costreview

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/emprendia/viability/internal/finance"
)

const validationRules = `A cost list is acceptable only when every item follows these rules:

FIXED, NOT VARIABLE
  Each cost must be a fixed operating cost. Reject variable costs that scale
  with sales volume and reject inventory or raw-material purchases.

ATOMIC, NOT BUNDLED
  Each cost must be a single concept. Reject bundled entries such as
  "rent and utilities" — they must be submitted as separate items.

SPECIFIC, NOT VAGUE
  Each cost must name a concrete concept. Reject entries like "various",
  "other", "miscellaneous", or any name that does not identify what is paid.

NO PERSONNEL COMPENSATION
  Reject every cost related to compensating people, regardless of how
  necessary it is: salaries, wages, honoraria, payroll, social benefits,
  bonuses, staff training, and uniforms all fall under this rule.

PLAUSIBLE VALUES
  Flag amounts that are economically implausible for the stated business
  type, size, and location — either suspiciously low or suspiciously high.`

const validationSchemaPrompt = `Required JSON schema:
{
  "item_results":[{"name":"string","amount":"number","is_valid":"boolean","justification":"string"}],
  "missing_mandatory":[{"name":"string","reason":"string"}],
  "missing_recommended":[{"name":"string","benefit":"string"}],
  "can_proceed":"boolean",
  "summary_message":"string"
}`

const validationMissingGuidance = `Optionally report costs the business appears to be missing, using the
candidate lists below as reference. missing_mandatory is for costs the
business almost certainly cannot operate without. missing_recommended is for
costs that would reduce risk but are not required. Missing recommended costs
must NOT by themselves make can_proceed false.`

const analysisSchemaPrompt = `Required JSON schema:
{
  "analyzed_costs":[{"cost_name":"string","received_value":"number","estimated_range":"string","evaluation":"within_range|below_range|above_range","comment":"string"}],
  "detected_risks":[{"risk":"string","direct_cause":"string","potential_impact":"string"}],
  "summary":"string"
}`

const analysisPromptContext = `For each cost, compare the received monthly value against the typical market
range for this kind of business and report:
- estimated_range: the plausible monthly range as a human-readable string
- evaluation: within_range, below_range, or above_range
- comment: one or two sentences on what the deviation means for viability

Then list the concrete risks the cost structure exposes. Each risk must name
its direct cause in the submitted costs and its potential impact on the
business. Do not invent risks that the numbers do not support.`

const actionPlanSchemaPrompt = `Required JSON schema:
{
  "action_plan":[{"title":"string","description":"string","priority":"high|medium|low"}],
  "summary":"string"
}`

const actionPlanPromptContext = `Write an action plan the owner can execute. Each item needs a short title, a
concrete description of what to do and why, and a priority. Order items so
that the highest-impact corrections come first. Anchor every item to the
analyzed costs and detected risks; do not recommend generic business advice
that the analysis does not support.`

// BuildValidationPrompt renders the validate-stage prompt from the cost list
// and business context. Pure function, deterministic for equal inputs.
func BuildValidationPrompt(costs []CostItem, profile BusinessProfile) string {
	bench := BenchmarksFor(profile.Type, profile.SizeClass)
	return fmt.Sprintf(
		"Cost validation for a small business.\n%s\n\n%s\n\n%s\n\nCandidate mandatory costs:\n%s\nCandidate recommended costs:\n%s\nBusiness profile:\n%s\nSubmitted costs:\n%s",
		validationRules,
		validationMissingGuidance,
		validationSchemaPrompt,
		benchmarkList(bench, true),
		benchmarkList(bench, false),
		profileBlock(profile),
		costBlock(costs),
	)
}

// BuildAnalysisPrompt renders the detailed-analysis prompt, carrying the
// prior validation verdict as opaque context.
func BuildAnalysisPrompt(costs []CostItem, profile BusinessProfile, verdict *ValidationVerdict) string {
	bench := BenchmarksFor(profile.Type, profile.SizeClass)
	prior := "none"
	if verdict != nil {
		prior = mustJSON(verdict)
	}
	return fmt.Sprintf(
		"Detailed cost analysis for a small business.\n%s\n\n%s\n\nReference monthly ranges for %s businesses (%s size):\n%s\nBusiness profile:\n%s\nSubmitted costs (monthly-normalized values included):\n%s\nPrior validation verdict:\n%s",
		analysisPromptContext,
		analysisSchemaPrompt,
		bench.BusinessType,
		orDefault(profile.SizeClass, "unspecified"),
		benchmarkRanges(bench),
		profileBlock(profile),
		costBlock(costs),
		prior,
	)
}

// BuildActionPlanPrompt renders the final-recommendation prompt from the
// analyze-stage output.
func BuildActionPlanPrompt(analysis CostAnalysis, profile BusinessProfile) string {
	return fmt.Sprintf(
		"Action plan synthesis for a small business.\n%s\n\n%s\n\nBusiness profile:\n%s\nCost analysis:\n%s",
		actionPlanPromptContext,
		actionPlanSchemaPrompt,
		profileBlock(profile),
		mustJSON(analysis),
	)
}

func costBlock(costs []CostItem) string {
	var sb strings.Builder
	for _, c := range costs {
		monthly := finance.ToMonthly(c.Amount, c.Frequency)
		fmt.Fprintf(&sb, "- %s: %.2f (%s, %.2f/month)\n", c.Name, c.Amount, orDefault(string(c.Frequency), "monthly"), monthly)
	}
	if sb.Len() == 0 {
		return "(none)\n"
	}
	return sb.String()
}

func profileBlock(p BusinessProfile) string {
	return fmt.Sprintf("- type: %s\n- size: %s\n- location: %s\n",
		orDefault(p.Type, "unspecified"),
		orDefault(p.SizeClass, "unspecified"),
		orDefault(p.Location, "unspecified"))
}

func benchmarkList(b BusinessBenchmarks, mandatory bool) string {
	var sb strings.Builder
	for _, c := range b.Costs {
		if c.Mandatory != mandatory {
			continue
		}
		if mandatory {
			fmt.Fprintf(&sb, "- %s\n", c.Name)
		} else {
			fmt.Fprintf(&sb, "- %s: %s\n", c.Name, c.Benefit)
		}
	}
	if sb.Len() == 0 {
		return "(none)\n"
	}
	return sb.String()
}

func benchmarkRanges(b BusinessBenchmarks) string {
	var sb strings.Builder
	for _, c := range b.Costs {
		fmt.Fprintf(&sb, "- %s: %.0f to %.0f per month\n", c.Name, c.MonthlyLowUSD, c.MonthlyHighUSD)
	}
	return sb.String()
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func mustJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
