// Package report renders a pipeline run into a markdown summary and an
// optional HTML document.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"claimsight/adapters/remediate"
	"claimsight/app"
	"claimsight/domain/claims"
	"claimsight/domain/roi"
)

// maxShortlistRows caps the shortlist table; the full shortlist goes to the
// exporters, the report shows the top of the ranking.
const maxShortlistRows = 25

// Savings pairs a projection with the scenario it was computed from.
type Savings struct {
	Scenario   roi.Scenario
	Projection roi.Projection
}

// Markdown renders the run summary. The savings section is optional; pass
// nil to omit it.
func Markdown(result *app.Result, savings *Savings) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Claim Risk Report\n\n")
	fmt.Fprintf(&b, "Run `%s`, seed %d.\n\n", result.RunID, result.Seed)

	writeKPIs(&b, result.KPIs)
	writeQuality(&b, result.Remediation)
	writeProfiles(&b, result.Profiles)
	writeScoring(&b, result)
	if savings != nil {
		writeROI(&b, savings)
	}

	return b.String()
}

// HTML renders the markdown report as a standalone HTML page.
func HTML(result *app.Result, savings *Savings) []byte {
	md := Markdown(result, savings)
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	opts := html.RendererOptions{
		Title: "Claim Risk Report",
		Flags: html.CommonFlags | html.CompletePage,
	}
	return markdown.ToHTML([]byte(md), p, html.NewRenderer(opts))
}

func writeKPIs(b *strings.Builder, kpis app.KPIs) {
	fmt.Fprintf(b, "## Portfolio\n\n")
	fmt.Fprintf(b, "- Claims: %d\n", kpis.ClaimCount)
	fmt.Fprintf(b, "- Total claim amount: $%.2f\n", kpis.TotalClaimAmount)
	fmt.Fprintf(b, "- Average claim amount: $%.2f\n", kpis.AvgClaimAmount)
	if kpis.LossRatioProxy != nil {
		fmt.Fprintf(b, "- Loss ratio proxy: %.2f\n", *kpis.LossRatioProxy)
	}
	fmt.Fprintf(b, "\n")
}

func writeQuality(b *strings.Builder, rem *remediate.Result) {
	fmt.Fprintf(b, "## Data Quality\n\n")

	clean := rem.RemovedRows == 0 && rem.DuplicateRows == 0
	for _, col := range rem.Columns {
		if col.Affected > 0 {
			clean = false
		}
		fmt.Fprintf(b, "- %s\n", columnMessage(col))
	}
	if rem.RemovedRows > 0 {
		fmt.Fprintf(b, "- %d row(s) excluded (%d of %d kept)\n",
			rem.RemovedRows, len(rem.Records), rem.OriginalCount)
	}
	if rem.DuplicateRows > 0 {
		fmt.Fprintf(b, "- %d row(s) flagged for suspicious duplicate values\n", rem.DuplicateRows)
	}
	if clean {
		fmt.Fprintf(b, "- No quality issues detected\n")
	}
	fmt.Fprintf(b, "\n")
}

// columnMessage mirrors the per-column outcome in plain language, e.g.
// "age: 2 out-of-range value(s) imputed to mean = 33".
func columnMessage(col remediate.ColumnOutcome) string {
	switch col.Strategy {
	case claims.StrategyImputeMean:
		if col.Imputed != nil {
			return fmt.Sprintf("%s: %d out-of-range value(s) imputed to mean = %g", col.Field, col.Affected, *col.Imputed)
		}
		return fmt.Sprintf("%s: no values imputed", col.Field)
	case claims.StrategyExclude:
		return fmt.Sprintf("%s: %d out-of-range row(s) excluded", col.Field, col.Affected)
	default:
		return fmt.Sprintf("%s: %d out-of-range value(s) left unchanged", col.Field, col.Affected)
	}
}

func writeProfiles(b *strings.Builder, profiles []app.ColumnProfile) {
	if len(profiles) == 0 {
		return
	}
	fmt.Fprintf(b, "## Numeric Columns\n\n")
	fmt.Fprintf(b, "| Column | Present | Missing | Min | Max | Mean |\n")
	fmt.Fprintf(b, "|---|---|---|---|---|---|\n")
	for _, p := range profiles {
		fmt.Fprintf(b, "| %s | %d | %d (%.1f%%) | %.2f | %.2f | %.2f |\n",
			p.Field, p.Present, p.Missing, p.MissingPct(), p.Min, p.Max, p.Mean)
	}
	fmt.Fprintf(b, "\n")
}

func writeScoring(b *strings.Builder, result *app.Result) {
	fmt.Fprintf(b, "## Risk Shortlist\n\n")
	if result.AnomalyNeutral {
		fmt.Fprintf(b, "Anomaly model fell back to neutral scores; the ranking below rests on statistical baselines only.\n\n")
	} else {
		fmt.Fprintf(b, "Anomaly scores at or above %.2f fall in the configured contamination tail.\n\n", result.AnomalyCutoff)
	}
	fmt.Fprintf(b, "%d of %d record(s) flagged.\n\n", len(result.Shortlist), len(result.Scores))
	if len(result.Shortlist) == 0 {
		return
	}

	fmt.Fprintf(b, "| Claim | Category | Z | Anomaly | Fused | Reasons |\n")
	fmt.Fprintf(b, "|---|---|---|---|---|---|\n")
	for i, s := range result.Shortlist {
		if i == maxShortlistRows {
			fmt.Fprintf(b, "\n...and %d more.\n", len(result.Shortlist)-maxShortlistRows)
			break
		}
		fmt.Fprintf(b, "| %s | %s | %.2f | %.2f | %.2f | %s |\n",
			s.ClaimID, s.Category, s.ZScore, s.AnomalyScore, s.FusedScore,
			strings.Join(s.ReasonCodes, ", "))
	}
	fmt.Fprintf(b, "\n")
}

func writeROI(b *strings.Builder, savings *Savings) {
	fmt.Fprintf(b, "## Savings Projection\n\n")
	s := savings.Scenario
	fmt.Fprintf(b, "Assuming %.1f%% fraud rate, $%.2f average claim, %.1f%% detection improvement over %.0f claims/month:\n\n",
		s.FraudRate*100, s.AvgClaimAmount, s.DetectionImprovement*100, s.MonthlyVolume)
	fmt.Fprintf(b, "- Monthly savings: $%.2f\n", savings.Projection.MonthlySavings)
	fmt.Fprintf(b, "- Annual savings: $%.2f\n\n", savings.Projection.AnnualSavings)
}
