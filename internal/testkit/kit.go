// Package testkit generates deterministic synthetic claim datasets for
// tests and demos.
package testkit

import (
	"fmt"
	"math/rand"

	"claimsight/domain/claims"
)

// GeneratorConfig configures the synthetic claims generator.
type GeneratorConfig struct {
	Count        int     `json:"count"`
	Seed         int64   `json:"seed"`
	OutlierRate  float64 `json:"outlier_rate"`  // fraction of inflated claim amounts
	MissingRate  float64 `json:"missing_rate"`  // fraction of records with a missing field
	BadAgeRate   float64 `json:"bad_age_rate"`  // fraction of out-of-range ages
	ClaimTypes   []string
	Regions      []string
}

// DefaultGeneratorConfig returns a small clean portfolio with a sprinkle of
// outliers and quality defects.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Count:       200,
		Seed:        42,
		OutlierRate: 0.04,
		MissingRate: 0.05,
		BadAgeRate:  0.02,
		ClaimTypes:  []string{"auto", "property", "health"},
		Regions:     []string{"north", "south", "east", "west"},
	}
}

// Generator produces synthetic claim records. Same config, same records.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// NewGenerator creates a generator with its own seeded RNG.
func NewGenerator(cfg GeneratorConfig) *Generator {
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// Generate builds the full synthetic dataset.
func (g *Generator) Generate() []claims.Record {
	records := make([]claims.Record, 0, g.cfg.Count)
	for i := 0; i < g.cfg.Count; i++ {
		records = append(records, g.record(i))
	}
	return records
}

func (g *Generator) record(i int) claims.Record {
	claimType := g.cfg.ClaimTypes[g.rng.Intn(len(g.cfg.ClaimTypes))]
	region := g.cfg.Regions[g.rng.Intn(len(g.cfg.Regions))]

	amount := g.claimAmount(claimType)
	if g.rng.Float64() < g.cfg.OutlierRate {
		amount *= 8 + g.rng.Float64()*10
	}

	age := 25 + g.rng.Float64()*45
	if g.rng.Float64() < g.cfg.BadAgeRate {
		if g.rng.Float64() < 0.5 {
			age = -5
		} else {
			age = 150
		}
	}

	rec := claims.Record{
		claims.FieldClaimID:       fmt.Sprintf("CLM-%05d", i+1),
		claims.FieldClaimType:     claimType,
		claims.FieldRegion:        region,
		claims.FieldClaimAmount:   round2(amount),
		claims.FieldAge:           float64(int(age)),
		claims.FieldAnnualIncome:  round2(30000 + g.rng.Float64()*90000),
		claims.FieldPolicyPremium: round2(amount*0.08 + 400 + g.rng.Float64()*300),
		claims.FieldTenureMonths:  float64(1 + g.rng.Intn(240)),
	}

	if g.rng.Float64() < g.cfg.MissingRate {
		switch g.rng.Intn(3) {
		case 0:
			delete(rec, claims.FieldAge)
		case 1:
			delete(rec, claims.FieldAnnualIncome)
		default:
			delete(rec, claims.FieldPolicyPremium)
		}
	}

	return rec
}

// claimAmount draws from a per-type base so category baselines differ.
func (g *Generator) claimAmount(claimType string) float64 {
	base := 3000.0
	switch claimType {
	case "property":
		base = 9000
	case "health":
		base = 5500
	}
	return base * (0.5 + g.rng.Float64())
}

func round2(v float64) float64 {
	return float64(int(v*100)) / 100
}
