package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"claimsight/adapters/export"
	"claimsight/adapters/ingest"
	"claimsight/app"
	"claimsight/domain/roi"
	"claimsight/internal"
	"claimsight/internal/config"
	"claimsight/internal/report"
	"claimsight/internal/testkit"
)

func main() {
	// Load .env file if present
	godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "claimsight",
		Short: "Batch claim risk scoring: data quality, baselines, anomaly detection, fused shortlists",
	}

	rootCmd.AddCommand(
		newScoreCmd(),
		newROICmd(),
		newSynthCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newScoreCmd() *cobra.Command {
	var (
		outCSV     string
		outXLSX    string
		reportPath string
		htmlPath   string
		roiPreset  string
		jsonOut    bool
	)

	cmd := &cobra.Command{
		Use:   "score [data-file]",
		Short: "Score a claims snapshot and rank a risk shortlist",
		Long: `Run the full scoring pipeline over a CSV or XLSX claims file:
data quality remediation, category baselines, anomaly scoring, score fusion.

Configuration is read from the environment; a .env file in the working
directory is loaded when present.

Example: claimsight score claims.csv --out shortlist.csv --report report.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(args[0], outCSV, outXLSX, reportPath, htmlPath, roiPreset, jsonOut)
		},
	}

	cmd.Flags().StringVar(&outCSV, "out", "", "Write the shortlist as CSV to this path (default: stdout)")
	cmd.Flags().StringVar(&outXLSX, "out-xlsx", "", "Write the shortlist as an Excel workbook to this path")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write the markdown run report to this path")
	cmd.Flags().StringVar(&htmlPath, "report-html", "", "Write the HTML run report to this path")
	cmd.Flags().StringVar(&roiPreset, "roi-preset", "", "Include a savings projection using this preset with dataset volumes")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the full result as JSON instead of the CSV shortlist")

	return cmd
}

func runScore(dataFile, outCSV, outXLSX, reportPath, htmlPath, roiPreset string, jsonOut bool) error {
	log := internal.DefaultLogger

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	records, err := ingest.NewReader(dataFile).Read()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dataFile, err)
	}
	log.Info("loaded %d records from %s", len(records), dataFile)

	pipeline, err := app.New(cfg)
	if err != nil {
		return err
	}
	result, err := pipeline.Run(records)
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	var savings *report.Savings
	if roiPreset != "" {
		scenario, err := roi.Preset(roiPreset)
		if err != nil {
			return err
		}
		scenario = result.DeriveScenario(scenario)
		projection, err := roi.Estimate(scenario)
		if err != nil {
			return err
		}
		savings = &report.Savings{Scenario: scenario, Projection: projection}
	}

	if outCSV != "" {
		if err := writeCSVFile(outCSV, result); err != nil {
			return err
		}
		log.Info("shortlist written to %s", outCSV)
	}
	if outXLSX != "" {
		if err := export.WriteXLSX(outXLSX, result.Shortlist); err != nil {
			return err
		}
		log.Info("shortlist workbook written to %s", outXLSX)
	}
	if reportPath != "" {
		if err := os.WriteFile(reportPath, []byte(report.Markdown(result, savings)), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		log.Info("report written to %s", reportPath)
	}
	if htmlPath != "" {
		if err := os.WriteFile(htmlPath, report.HTML(result, savings), 0644); err != nil {
			return fmt.Errorf("failed to write HTML report: %w", err)
		}
		log.Info("HTML report written to %s", htmlPath)
	}

	switch {
	case jsonOut:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case outCSV == "":
		return export.NewCSVExporter().Write(os.Stdout, result.Shortlist)
	}
	return nil
}

func writeCSVFile(path string, result *app.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := export.NewCSVExporter().Write(f, result.Shortlist); err != nil {
		return err
	}
	return f.Close()
}

func newROICmd() *cobra.Command {
	var (
		preset      string
		fraudRate   float64
		avgClaim    float64
		improvement float64
		volume      float64
	)

	cmd := &cobra.Command{
		Use:   "roi",
		Short: "Project fraud-detection savings for a scenario",
		Long: `Project monthly and annual savings from improved fraud detection.

Start from a preset (conservative, moderate, optimistic) or set every
parameter explicitly. Rates are fractions, not percents.

Example: claimsight roi --preset moderate
Example: claimsight roi --fraud-rate 0.05 --avg-claim 8500 --improvement 0.25 --volume 2500`,
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario := roi.Scenario{
				FraudRate:            fraudRate,
				AvgClaimAmount:       avgClaim,
				DetectionImprovement: improvement,
				MonthlyVolume:        volume,
			}
			if preset != "" {
				base, err := roi.Preset(preset)
				if err != nil {
					return err
				}
				scenario = base
				if cmd.Flags().Changed("fraud-rate") {
					scenario.FraudRate = fraudRate
				}
				if cmd.Flags().Changed("avg-claim") {
					scenario.AvgClaimAmount = avgClaim
				}
				if cmd.Flags().Changed("improvement") {
					scenario.DetectionImprovement = improvement
				}
				if cmd.Flags().Changed("volume") {
					scenario.MonthlyVolume = volume
				}
			}

			projection, err := roi.Estimate(scenario)
			if err != nil {
				return err
			}

			fmt.Printf("Scenario: %.1f%% fraud rate, $%.2f avg claim, %.1f%% improvement, %.0f claims/month\n",
				scenario.FraudRate*100, scenario.AvgClaimAmount, scenario.DetectionImprovement*100, scenario.MonthlyVolume)
			fmt.Printf("Monthly savings: $%.2f\n", projection.MonthlySavings)
			fmt.Printf("Annual savings:  $%.2f\n", projection.AnnualSavings)
			return nil
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", "Scenario preset: conservative|moderate|optimistic")
	cmd.Flags().Float64Var(&fraudRate, "fraud-rate", 0.05, "Fraction of claims that are fraudulent [0,1]")
	cmd.Flags().Float64Var(&avgClaim, "avg-claim", 8500, "Average claim amount in dollars")
	cmd.Flags().Float64Var(&improvement, "improvement", 0.25, "Fraction of fraud newly caught [0,1]")
	cmd.Flags().Float64Var(&volume, "volume", 2500, "Claims per month")

	return cmd
}

func newSynthCmd() *cobra.Command {
	var (
		count int
		seed  int64
		out   string
	)

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Generate a synthetic claims CSV for demos and smoke tests",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := testkit.DefaultGeneratorConfig()
			cfg.Count = count
			cfg.Seed = seed
			records := testkit.NewGenerator(cfg).Generate()

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			defer f.Close()
			if err := ingest.WriteCSV(f, records); err != nil {
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Printf("wrote %d synthetic records to %s\n", len(records), out)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 200, "Number of records to generate")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	cmd.Flags().StringVar(&out, "out", "claims_synthetic.csv", "Output CSV path")

	return cmd
}
