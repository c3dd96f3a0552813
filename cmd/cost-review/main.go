package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/emprendia/viability/internal/config"
	"github.com/emprendia/viability/internal/costreview"
	"github.com/emprendia/viability/internal/finance"
	"github.com/emprendia/viability/internal/resultstore"
)

// reviewRequest is the input file shape: the cost list and business context,
// plus the optional unit economics needed for the financial calculations.
type reviewRequest struct {
	BusinessID        int64                      `json:"business_id"`
	ModuleID          int64                      `json:"module_id"`
	BusinessName      string                     `json:"business_name"`
	Profile           costreview.BusinessProfile `json:"profile"`
	Costs             []costreview.CostItem      `json:"costs"`
	Products          []finance.Product          `json:"products"`
	InitialInvestment float64                    `json:"initial_investment"`
}

type reviewOutput struct {
	Run           costreview.RunResult         `json:"run"`
	Profitability *finance.ProfitabilityResult `json:"profitability,omitempty"`
	Pricing       *finance.PricingResult       `json:"pricing,omitempty"`
	BreakEven     *finance.BreakEvenResult     `json:"break_even,omitempty"`
	Scenarios     *finance.ScenarioSet         `json:"scenarios,omitempty"`
}

func main() {
	inputPath := flag.String("input", "", "Path to review request JSON")
	configPath := flag.String("config", "", "Optional path to config YAML")
	outputPath := flag.String("output", "", "Path to write the run result JSON (defaults to stdout)")
	dbPath := flag.String("db", "", "SQLite path (overrides config)")
	flag.Parse()

	_ = godotenv.Load()

	if *inputPath == "" {
		log.Fatal("missing required -input")
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}
	if *dbPath != "" {
		cfg.Store.Path = *dbPath
	}

	in, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("read input: %v", err)
	}
	var req reviewRequest
	if err := json.Unmarshal(in, &req); err != nil {
		log.Fatalf("decode input JSON: %v", err)
	}

	caller, err := newCaller(cfg)
	if err != nil {
		log.Fatal(err)
	}
	pipeline := costreview.NewPipeline(costreview.NewStages(costreview.NewGateway(caller, cfg.LLM.MaxAttempts)))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Printf("starting cost review (business=%d, module=%d, costs=%d)", req.BusinessID, req.ModuleID, len(req.Costs))
	run, err := pipeline.RunWithProgress(ctx, costreview.RunRequest{
		BusinessID: req.BusinessID,
		ModuleID:   req.ModuleID,
		Costs:      req.Costs,
		Profile:    req.Profile,
	}, func(stage, message string) {
		log.Printf("stage %s: %s", stage, message)
	})
	if err != nil {
		log.Fatalf("pipeline: %v", err)
	}
	log.Printf("pipeline finished (mode=%s)", run.Mode)

	out := reviewOutput{Run: run}
	if len(req.Products) > 0 {
		attachFinancials(&out, req)
	}

	if run.Mode != costreview.RunModeRejected {
		if err := persist(ctx, cfg.Store.Path, req, run); err != nil {
			log.Fatalf("persist result: %v", err)
		}
	}

	if err := writeOutput(*outputPath, out); err != nil {
		log.Fatalf("write output: %v", err)
	}
}

func newCaller(cfg *config.Config) (costreview.LLMCaller, error) {
	switch cfg.LLM.Provider {
	case "openai":
		return costreview.NewOpenAICallerFromEnv(cfg.LLM.Model)
	case "anthropic", "":
		return costreview.NewAnthropicCallerFromEnv(cfg.LLM.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

func attachFinancials(out *reviewOutput, req reviewRequest) {
	costs := make([]finance.CostEntry, 0, len(req.Costs))
	for _, c := range req.Costs {
		costs = append(costs, finance.CostEntry{Name: c.Name, Amount: c.Amount, Frequency: c.Frequency})
	}

	if prof, err := finance.ComputeProfitability(costs, req.Products, req.InitialInvestment); err == nil {
		out.Profitability = &prof
	} else {
		log.Printf("profitability skipped: %v", err)
	}
	if pricing, err := finance.ComputePricing(req.Products, finance.DefaultTargetMarginPct); err == nil {
		out.Pricing = &pricing
	} else {
		log.Printf("pricing skipped: %v", err)
	}
	if be, err := finance.ComputeBreakEven(costs, req.Products, finance.StrategySimpleAverage); err == nil {
		out.BreakEven = &be
	} else {
		log.Printf("break-even skipped: %v", err)
	}
	var volume float64
	for _, p := range req.Products {
		volume += p.SalesVolume
	}
	sc := finance.GenerateScenarios(volume)
	out.Scenarios = &sc
}

func persist(ctx context.Context, dbPath string, req reviewRequest, run costreview.RunResult) error {
	store, err := resultstore.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	sess, err := store.GetOrCreateSession(ctx, req.BusinessID)
	if err != nil {
		return err
	}

	res := resultstore.CompleteAnalysisResult{
		BusinessID: req.BusinessID,
		ModuleID:   req.ModuleID,
		SessionID:  sess.SessionID,
		SavedState: string(run.Mode),
	}
	if run.Analysis != nil {
		res.AnalyzedCosts = run.Analysis.AnalyzedCosts
		res.DetectedRisks = run.Analysis.DetectedRisks
		res.Summary = run.Analysis.Summary
	}
	if run.Plan != nil {
		res.ActionPlan = run.Plan.Items
	}
	return store.Save(ctx, res)
}

func writeOutput(path string, out reviewOutput) error {
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	if path == "" {
		_, err := fmt.Println(string(b))
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
