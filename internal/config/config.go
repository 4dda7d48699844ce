// Package config loads pipeline configuration from the environment with
// typed defaults and validates it before any processing runs.
package config

import (
	"os"
	"strconv"

	"claimsight/adapters/anomaly"
	"claimsight/adapters/baseline"
	"claimsight/adapters/remediate"
	"claimsight/domain/claims"
	"claimsight/domain/core"
	"claimsight/domain/scoring"
)

// Data quality defaults (conservative ranges for health insurance).
const (
	AgeMinDefault    = 18.0
	AgeMaxDefault    = 90.0
	IncomeMinDefault = 10000.0
	IncomeMaxDefault = 500000.0
)

// Config is the complete pipeline configuration.
type Config struct {
	Seed int64

	AgeStrategy    claims.Strategy
	AgeBounds      claims.Bounds
	IncomeStrategy claims.Strategy
	IncomeBounds   claims.Bounds

	DuplicateFields    []claims.FieldKey
	DuplicateThreshold int

	BaselineGroupBy    []claims.FieldKey
	BaselineMinSamples int

	Fusion  scoring.Config
	Anomaly anomaly.Config
}

// Default returns the full default configuration.
func Default() *Config {
	return &Config{
		Seed:               42,
		AgeStrategy:        claims.StrategyImputeMean,
		AgeBounds:          claims.NewBounds(AgeMinDefault, AgeMaxDefault),
		IncomeStrategy:     claims.StrategyImputeMean,
		IncomeBounds:       claims.NewBounds(IncomeMinDefault, IncomeMaxDefault),
		DuplicateFields:    []claims.FieldKey{claims.FieldAnnualIncome},
		DuplicateThreshold: remediate.DefaultDuplicateThreshold,
		BaselineGroupBy:    []claims.FieldKey{claims.FieldClaimType},
		BaselineMinSamples: baseline.DefaultMinSamples,
		Fusion:             scoring.DefaultConfig(),
		Anomaly:            anomaly.DefaultConfig(),
	}
}

// Load reads configuration from environment variables on top of the
// defaults, then validates it.
func Load() (*Config, error) {
	cfg := Default()

	cfg.Seed = getEnvInt64OrDefault("SEED", cfg.Seed)
	cfg.Anomaly.Seed = cfg.Seed

	ageStrategy, err := claims.ParseStrategy(getEnvOrDefault("AGE_STRATEGY", string(cfg.AgeStrategy)))
	if err != nil {
		return nil, core.NewConfigError("AGE_STRATEGY", err.Error())
	}
	cfg.AgeStrategy = ageStrategy
	cfg.AgeBounds = claims.NewBounds(
		getEnvFloatOrDefault("AGE_MIN", *cfg.AgeBounds.Min),
		getEnvFloatOrDefault("AGE_MAX", *cfg.AgeBounds.Max),
	)

	incomeStrategy, err := claims.ParseStrategy(getEnvOrDefault("INCOME_STRATEGY", string(cfg.IncomeStrategy)))
	if err != nil {
		return nil, core.NewConfigError("INCOME_STRATEGY", err.Error())
	}
	cfg.IncomeStrategy = incomeStrategy
	cfg.IncomeBounds = claims.NewBounds(
		getEnvFloatOrDefault("INCOME_MIN", *cfg.IncomeBounds.Min),
		getEnvFloatOrDefault("INCOME_MAX", *cfg.IncomeBounds.Max),
	)

	cfg.DuplicateThreshold = getEnvIntOrDefault("DUPLICATE_THRESHOLD", cfg.DuplicateThreshold)
	cfg.BaselineMinSamples = getEnvIntOrDefault("BASELINE_MIN_SAMPLES", cfg.BaselineMinSamples)

	cfg.Fusion.ZThreshold = getEnvFloatOrDefault("Z_THRESHOLD", cfg.Fusion.ZThreshold)
	cfg.Fusion.AnomalyThreshold = getEnvFloatOrDefault("ANOMALY_THRESHOLD", cfg.Fusion.AnomalyThreshold)
	cfg.Fusion.ScoreThreshold = getEnvFloatOrDefault("SCORE_THRESHOLD", cfg.Fusion.ScoreThreshold)
	cfg.Fusion.ZCap = getEnvFloatOrDefault("Z_CAP", cfg.Fusion.ZCap)
	cfg.Fusion.AnomalyWeight = getEnvFloatOrDefault("ANOMALY_WEIGHT", cfg.Fusion.AnomalyWeight)
	cfg.Fusion.ZWeight = getEnvFloatOrDefault("Z_WEIGHT", cfg.Fusion.ZWeight)

	cfg.Anomaly.Contamination = getEnvFloatOrDefault("CONTAMINATION", cfg.Anomaly.Contamination)
	cfg.Anomaly.Trees = getEnvIntOrDefault("ANOMALY_TREES", cfg.Anomaly.Trees)
	cfg.Anomaly.MinRecords = getEnvIntOrDefault("ANOMALY_MIN_RECORDS", cfg.Anomaly.MinRecords)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails fast on any invalid parameter; nothing downstream runs on a
// bad configuration.
func (c *Config) Validate() error {
	if err := c.AgeBounds.Validate("age.bounds"); err != nil {
		return err
	}
	if err := c.IncomeBounds.Validate("income.bounds"); err != nil {
		return err
	}
	if !c.AgeStrategy.Valid() {
		return core.NewConfigErrorf("age.strategy", "unknown remediation strategy %q", string(c.AgeStrategy))
	}
	if !c.IncomeStrategy.Valid() {
		return core.NewConfigErrorf("income.strategy", "unknown remediation strategy %q", string(c.IncomeStrategy))
	}
	if len(c.DuplicateFields) > 0 && c.DuplicateThreshold < 2 {
		return core.NewConfigError("duplicate_threshold", "must be at least 2")
	}
	if c.BaselineMinSamples < 1 {
		return core.NewConfigError("baseline_min_samples", "must be at least 1")
	}
	if err := c.Fusion.Validate(); err != nil {
		return err
	}
	return c.Anomaly.Validate()
}

// RemediationConfig assembles the remediator settings from the column
// strategies and duplicate options.
func (c *Config) RemediationConfig() remediate.Config {
	return remediate.Config{
		Rules: []claims.ColumnRule{
			{Field: claims.FieldAge, Strategy: c.AgeStrategy, Bounds: c.AgeBounds, RoundToInt: true},
			{Field: claims.FieldAnnualIncome, Strategy: c.IncomeStrategy, Bounds: c.IncomeBounds, RoundToInt: true},
		},
		DuplicateFields:    c.DuplicateFields,
		DuplicateThreshold: c.DuplicateThreshold,
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
