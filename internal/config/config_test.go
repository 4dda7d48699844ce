package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimsight/domain/claims"
	"claimsight/domain/core"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, claims.StrategyImputeMean, cfg.AgeStrategy)
	assert.Equal(t, 18.0, *cfg.AgeBounds.Min)
	assert.Equal(t, 90.0, *cfg.AgeBounds.Max)
	assert.Equal(t, []claims.FieldKey{claims.FieldClaimType}, cfg.BaselineGroupBy)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SEED", "7")
	t.Setenv("AGE_STRATEGY", "exclude")
	t.Setenv("AGE_MIN", "21")
	t.Setenv("Z_THRESHOLD", "3.0")
	t.Setenv("CONTAMINATION", "0.1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, int64(7), cfg.Anomaly.Seed, "the anomaly model inherits the run seed")
	assert.Equal(t, claims.StrategyExclude, cfg.AgeStrategy)
	assert.Equal(t, 21.0, *cfg.AgeBounds.Min)
	assert.Equal(t, 3.0, cfg.Fusion.ZThreshold)
	assert.Equal(t, 0.1, cfg.Anomaly.Contamination)
}

func TestLoadRejectsBadStrategy(t *testing.T) {
	t.Setenv("AGE_STRATEGY", "drop")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, core.IsConfigError(err))
	assert.Equal(t, "AGE_STRATEGY", core.ConfigParam(err))
}

func TestLoadRejectsInvertedBounds(t *testing.T) {
	t.Setenv("INCOME_MIN", "600000")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, core.IsConfigError(err))
}

func TestLoadRejectsBadWeights(t *testing.T) {
	t.Setenv("ANOMALY_WEIGHT", "0.9")

	_, err := Load()
	assert.Error(t, err, "weights no longer sum to 1")
}

func TestLoadIgnoresUnparseableNumbers(t *testing.T) {
	t.Setenv("Z_THRESHOLD", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Fusion.ZThreshold, cfg.Fusion.ZThreshold,
		"unparseable env values fall back to defaults")
}

func TestValidateDuplicateThreshold(t *testing.T) {
	cfg := Default()
	cfg.DuplicateThreshold = 1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.DuplicateFields = nil
	cfg.DuplicateThreshold = 0
	assert.NoError(t, cfg.Validate(), "threshold is irrelevant with detection disabled")
}

func TestRemediationConfig(t *testing.T) {
	cfg := Default()
	rc := cfg.RemediationConfig()

	require.Len(t, rc.Rules, 2)
	assert.Equal(t, claims.FieldAge, rc.Rules[0].Field)
	assert.True(t, rc.Rules[0].RoundToInt)
	assert.Equal(t, claims.FieldAnnualIncome, rc.Rules[1].Field)
	assert.Equal(t, cfg.DuplicateThreshold, rc.DuplicateThreshold)
	assert.NoError(t, rc.Validate())
}
