package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"claimsight/domain/claims"
)

func TestZScoreZeroVarianceGuard(t *testing.T) {
	assert.Equal(t, 0.0, ZScore(5000, 3000, 0), "zero std must yield z = 0, not a division by zero")
	assert.Equal(t, 2.0, ZScore(5000, 3000, 1000))
	assert.Equal(t, -2.0, ZScore(1000, 3000, 1000))
}

func TestNormalizeZ(t *testing.T) {
	assert.Equal(t, 0.5, NormalizeZ(3, 6))
	assert.Equal(t, 0.5, NormalizeZ(-3, 6), "normalization uses |z|")
	assert.Equal(t, 1.0, NormalizeZ(12, 6), "values beyond the cap saturate at 1")
	assert.Equal(t, 0.0, NormalizeZ(0, 6))
}

func TestFuseStaysInUnitInterval(t *testing.T) {
	cfg := DefaultConfig()
	for _, tc := range []struct{ z, anomaly float64 }{
		{0, 0}, {100, 1}, {-100, 1}, {2.5, 0.6}, {0.1, 0.99},
	} {
		fused := Fuse(tc.z, tc.anomaly, cfg)
		assert.GreaterOrEqual(t, fused, 0.0)
		assert.LessOrEqual(t, fused, 1.0)
	}

	// Exact value for a simple case: 0.6*0.5 + 0.4*(3/6) = 0.5
	assert.InDelta(t, 0.5, Fuse(3, 0.5, cfg), 1e-12)
}

func TestFuseMonotonic(t *testing.T) {
	cfg := DefaultConfig()
	low := Fuse(1, 0.2, cfg)
	moreAnomalous := Fuse(1, 0.4, cfg)
	moreDeviant := Fuse(2, 0.2, cfg)

	assert.Greater(t, moreAnomalous, low)
	assert.Greater(t, moreDeviant, low)
}

func TestScoreFlaggingPaths(t *testing.T) {
	cfg := DefaultConfig()

	byZ := Score("CLM-1", "auto", 3.0, 0.1, false, nil, cfg)
	assert.True(t, byZ.Flagged, "z at threshold flags regardless of fused score")
	assert.Contains(t, byZ.ReasonCodes, "statistical_outlier:auto:3.00")

	byAnomaly := Score("CLM-2", "auto", 0.5, 0.8, false, nil, cfg)
	assert.True(t, byAnomaly.Flagged)
	assert.Contains(t, byAnomaly.ReasonCodes, "ml_anomaly:0.80")

	quiet := Score("CLM-3", "auto", 0.5, 0.1, false, nil, cfg)
	assert.False(t, quiet.Flagged)
	assert.Empty(t, quiet.ReasonCodes)
}

func TestScoreReasonCodeOrder(t *testing.T) {
	cfg := DefaultConfig()
	flags := []claims.QualityFlag{
		{Field: claims.FieldAge, Violation: claims.ViolationOutOfRange, Resolution: claims.ResolutionImputed},
		{Field: claims.FieldAnnualIncome, Violation: claims.ViolationDuplicate, Resolution: claims.ResolutionFlagged},
	}

	s := Score("CLM-1", "auto", 4.0, 0.9, false, flags, cfg)
	assert.Equal(t, []string{
		"statistical_outlier:auto:4.00",
		"ml_anomaly:0.90",
		"data_quality:age:out_of_range",
		"data_quality:annual_income:suspicious_duplicate",
	}, s.ReasonCodes, "reason codes carry a stable order")

	// Quality codes appear even when nothing else fires.
	unflagged := Score("CLM-2", "auto", 0.1, 0.1, false, flags[:1], cfg)
	assert.False(t, unflagged.Flagged)
	assert.Equal(t, []string{"data_quality:age:out_of_range"}, unflagged.ReasonCodes)
}

func TestShortlistOrdering(t *testing.T) {
	scores := []RiskScore{
		{ClaimID: "CLM-3", FusedScore: 0.7, Flagged: true},
		{ClaimID: "CLM-1", FusedScore: 0.9, Flagged: true},
		{ClaimID: "CLM-4", FusedScore: 0.2, Flagged: false},
		{ClaimID: "CLM-2", FusedScore: 0.7, Flagged: true},
	}

	shortlist := Shortlist(scores)
	ids := make([]string, len(shortlist))
	for i, s := range shortlist {
		ids[i] = s.ClaimID
	}
	assert.Equal(t, []string{"CLM-1", "CLM-2", "CLM-3"}, ids,
		"descending fused score, ties broken by ascending claim ID")
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	badWeights := DefaultConfig()
	badWeights.AnomalyWeight = 0.7
	assert.Error(t, badWeights.Validate(), "weights must sum to 1")

	negative := DefaultConfig()
	negative.ZWeight = -0.1
	negative.AnomalyWeight = 1.1
	assert.Error(t, negative.Validate())

	badThreshold := DefaultConfig()
	badThreshold.AnomalyThreshold = 1.5
	assert.Error(t, badThreshold.Validate())

	badCap := DefaultConfig()
	badCap.ZCap = 0
	assert.Error(t, badCap.Validate())
}
