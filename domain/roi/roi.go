// Package roi projects fraud-detection savings from a handful of scenario
// parameters. Pure value computations: no persisted identity, no state.
package roi

import (
	"sort"
	"strings"

	"claimsight/domain/core"
)

// Scenario holds the projection inputs. Rates are fractions, not percents.
type Scenario struct {
	FraudRate            float64 `json:"fraud_rate"`            // fraction of claims that are fraudulent, [0,1]
	AvgClaimAmount       float64 `json:"avg_claim_amount"`      // dollars, >= 0
	DetectionImprovement float64 `json:"detection_improvement"` // fraction of fraud newly caught, [0,1]
	MonthlyVolume        float64 `json:"monthly_volume"`        // claims per month, >= 0
}

// Projection is the savings output.
type Projection struct {
	MonthlySavings float64 `json:"monthly_savings"`
	AnnualSavings  float64 `json:"annual_savings"`
}

// Validate rejects out-of-range inputs before any computation.
func (s Scenario) Validate() error {
	if s.FraudRate < 0 || s.FraudRate > 1 {
		return core.NewConfigError("roi.fraud_rate", "must be in [0, 1]")
	}
	if s.DetectionImprovement < 0 || s.DetectionImprovement > 1 {
		return core.NewConfigError("roi.detection_improvement", "must be in [0, 1]")
	}
	if s.AvgClaimAmount < 0 {
		return core.NewConfigError("roi.avg_claim_amount", "must be non-negative")
	}
	if s.MonthlyVolume < 0 {
		return core.NewConfigError("roi.monthly_volume", "must be non-negative")
	}
	return nil
}

// Estimate computes the savings projection:
//
//	monthly = avg_claim * volume * fraud_rate * detection_improvement
//	annual  = monthly * 12
func Estimate(s Scenario) (Projection, error) {
	if err := s.Validate(); err != nil {
		return Projection{}, err
	}
	monthly := s.AvgClaimAmount * s.MonthlyVolume * s.FraudRate * s.DetectionImprovement
	return Projection{
		MonthlySavings: monthly,
		AnnualSavings:  monthly * 12,
	}, nil
}

// WithDataset substitutes the dataset-derived inputs, keeping the rates.
func (s Scenario) WithDataset(avgClaimAmount float64, monthlyVolume int) Scenario {
	s.AvgClaimAmount = avgClaimAmount
	s.MonthlyVolume = float64(monthlyVolume)
	return s
}

// Named presets mirroring typical program maturities.
var presets = map[string]Scenario{
	"conservative": {FraudRate: 0.03, AvgClaimAmount: 5000, DetectionImprovement: 0.15, MonthlyVolume: 1000},
	"moderate":     {FraudRate: 0.05, AvgClaimAmount: 8500, DetectionImprovement: 0.25, MonthlyVolume: 2500},
	"optimistic":   {FraudRate: 0.08, AvgClaimAmount: 12000, DetectionImprovement: 0.35, MonthlyVolume: 5000},
}

// Preset looks up a named scenario (case-insensitive).
func Preset(name string) (Scenario, error) {
	s, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Scenario{}, core.NewConfigErrorf("roi.preset", "unknown preset %q (known: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return s, nil
}

// PresetNames lists the known presets in stable order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
