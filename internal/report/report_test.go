package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimsight/app"
	"claimsight/domain/claims"
	"claimsight/domain/roi"
	"claimsight/internal/config"
	"claimsight/internal/testkit"
)

func sampleResult(t *testing.T) *app.Result {
	t.Helper()
	cfg := testkit.DefaultGeneratorConfig()
	cfg.Count = 150
	records := testkit.NewGenerator(cfg).Generate()

	p, err := app.New(config.Default())
	require.NoError(t, err)
	result, err := p.Run(records)
	require.NoError(t, err)
	return result
}

func TestMarkdownSections(t *testing.T) {
	result := sampleResult(t)
	md := Markdown(result, nil)

	assert.Contains(t, md, "# Claim Risk Report")
	assert.Contains(t, md, "## Portfolio")
	assert.Contains(t, md, "## Data Quality")
	assert.Contains(t, md, "## Numeric Columns")
	assert.Contains(t, md, "## Risk Shortlist")
	assert.Contains(t, md, "contamination tail", "the fitted cutoff is reported")
	assert.NotContains(t, md, "## Savings Projection", "no savings section without a scenario")
	assert.Contains(t, md, string(result.RunID))
}

func TestMarkdownWithSavings(t *testing.T) {
	result := sampleResult(t)

	scenario, err := roi.Preset("moderate")
	require.NoError(t, err)
	scenario = result.DeriveScenario(scenario)
	projection, err := roi.Estimate(scenario)
	require.NoError(t, err)

	md := Markdown(result, &Savings{Scenario: scenario, Projection: projection})
	assert.Contains(t, md, "## Savings Projection")
	assert.Contains(t, md, "Monthly savings")
	assert.Contains(t, md, "Annual savings")
}

func TestMarkdownQualityMessages(t *testing.T) {
	cfg := testkit.DefaultGeneratorConfig()
	cfg.Count = 60
	cfg.BadAgeRate = 0
	cfg.MissingRate = 0
	records := testkit.NewGenerator(cfg).Generate()
	records = append(records, claims.Record{
		claims.FieldClaimID:      "CLM-BAD",
		claims.FieldClaimType:    "auto",
		claims.FieldClaimAmount:  4000.0,
		claims.FieldAge:          150.0,
		claims.FieldAnnualIncome: 50000.0,
	})

	p, err := app.New(config.Default())
	require.NoError(t, err)
	result, err := p.Run(records)
	require.NoError(t, err)

	md := Markdown(result, nil)
	assert.Contains(t, md, "age: 1 out-of-range value(s) imputed to mean")
}

func TestHTMLRendering(t *testing.T) {
	result := sampleResult(t)
	out := HTML(result, nil)

	html := string(out)
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "Claim Risk Report")
	assert.Contains(t, html, "<h2")
}
