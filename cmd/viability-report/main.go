package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/emprendia/viability/internal/config"
	"github.com/emprendia/viability/internal/costreview"
	"github.com/emprendia/viability/internal/finance"
	"github.com/emprendia/viability/internal/report"
	"github.com/emprendia/viability/internal/resultstore"
)

// runOutput mirrors the cost-review output file.
type runOutput struct {
	Run           costreview.RunResult         `json:"run"`
	Profitability *finance.ProfitabilityResult `json:"profitability,omitempty"`
	Pricing       *finance.PricingResult       `json:"pricing,omitempty"`
	BreakEven     *finance.BreakEvenResult     `json:"break_even,omitempty"`
	Scenarios     *finance.ScenarioSet         `json:"scenarios,omitempty"`
}

func main() {
	inputPath := flag.String("input", "", "Path to a cost-review output JSON")
	dbPath := flag.String("db", "", "SQLite path to load a saved result instead of -input")
	businessID := flag.Int64("business-id", 0, "Business ID (with -db)")
	moduleID := flag.Int64("module-id", 0, "Module ID (with -db)")
	businessName := flag.String("business-name", "", "Business display name")
	outputPath := flag.String("output", "", "Path to write markdown (defaults to stdout)")
	pdfPath := flag.String("pdf", "", "Optional path to also render a PDF")
	configPath := flag.String("config", "", "Optional path to config YAML")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}

	var in report.Input
	in.BusinessName = *businessName

	switch {
	case *inputPath != "":
		raw, err := os.ReadFile(*inputPath)
		if err != nil {
			log.Fatalf("read input: %v", err)
		}
		var out runOutput
		if err := json.Unmarshal(raw, &out); err != nil {
			log.Fatalf("decode input JSON: %v", err)
		}
		in.Run = out.Run
		in.Financials = report.Financials{
			Profitability: out.Profitability,
			Pricing:       out.Pricing,
			BreakEven:     out.BreakEven,
			Scenarios:     out.Scenarios,
		}
	case *dbPath != "" && *businessID != 0:
		run, err := loadFromStore(*dbPath, *businessID, *moduleID)
		if err != nil {
			log.Fatalf("load saved result: %v", err)
		}
		in.Run = run
	default:
		log.Fatal("either -input or -db with -business-id is required")
	}

	md := report.BuildMarkdown(in)
	if err := writeMarkdown(*outputPath, md); err != nil {
		log.Fatalf("write markdown: %v", err)
	}

	if *pdfPath != "" {
		renderer := report.NewChromiumPDFRenderer(cfg.Report.ChromePath)
		pdf, err := renderer.Render(context.Background(), md, "Financial Viability Report")
		if err != nil {
			log.Fatalf("render pdf: %v", err)
		}
		if err := os.WriteFile(*pdfPath, pdf, 0o644); err != nil {
			log.Fatalf("write pdf: %v", err)
		}
		log.Printf("wrote %s (%d bytes)", *pdfPath, len(pdf))
	}
}

// loadFromStore rebuilds a run result from a persisted analysis. Validation
// details are not persisted, so the verdict section is minimal.
func loadFromStore(dbPath string, businessID, moduleID int64) (costreview.RunResult, error) {
	store, err := resultstore.Open(dbPath)
	if err != nil {
		return costreview.RunResult{}, err
	}
	defer store.Close()

	saved, err := store.Get(context.Background(), businessID, moduleID)
	if err != nil {
		return costreview.RunResult{}, err
	}

	run := costreview.RunResult{
		RunID: saved.SessionID,
		Mode:  costreview.RunMode(saved.SavedState),
		Analysis: &costreview.CostAnalysis{
			AnalyzedCosts: saved.AnalyzedCosts,
			DetectedRisks: saved.DetectedRisks,
			Summary:       saved.Summary,
		},
	}
	if len(saved.ActionPlan) > 0 {
		run.Plan = &costreview.ActionPlan{Items: saved.ActionPlan}
	}
	return run, nil
}

func writeMarkdown(path, markdown string) error {
	if path == "" {
		_, err := fmt.Print(markdown)
		return err
	}
	return os.WriteFile(path, []byte(markdown), 0o644)
}
