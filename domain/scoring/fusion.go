package scoring

import (
	"fmt"
	"math"
	"sort"

	"claimsight/domain/claims"
	"claimsight/domain/core"
)

const weightSumTolerance = 1e-9

// Config holds the fusion thresholds and weights. Every value has a default;
// Validate runs at the boundary before any scoring happens.
type Config struct {
	ZThreshold       float64 `json:"z_threshold"`       // |z| at or above this flags a statistical outlier
	AnomalyThreshold float64 `json:"anomaly_threshold"` // anomaly score at or above this flags the model signal
	ScoreThreshold   float64 `json:"score_threshold"`   // fused score at or above this flags the record
	ZCap             float64 `json:"z_cap"`             // |z| mapped onto [0,1] by dividing by this cap
	AnomalyWeight    float64 `json:"anomaly_weight"`
	ZWeight          float64 `json:"z_weight"`
}

// DefaultConfig returns the standard fusion settings.
func DefaultConfig() Config {
	return Config{
		ZThreshold:       2.5,
		AnomalyThreshold: 0.6,
		ScoreThreshold:   0.65,
		ZCap:             6.0,
		AnomalyWeight:    0.6,
		ZWeight:          0.4,
	}
}

// Validate rejects weight pairs that do not form a convex combination and
// thresholds outside their domains.
func (c Config) Validate() error {
	if c.AnomalyWeight < 0 || c.ZWeight < 0 {
		return core.NewConfigError("fusion.weights", "weights must be non-negative")
	}
	if math.Abs(c.AnomalyWeight+c.ZWeight-1.0) > weightSumTolerance {
		return core.NewConfigErrorf("fusion.weights", "anomaly_weight %v + z_weight %v must sum to 1", c.AnomalyWeight, c.ZWeight)
	}
	if c.ZThreshold <= 0 {
		return core.NewConfigError("fusion.z_threshold", "must be positive")
	}
	if c.AnomalyThreshold < 0 || c.AnomalyThreshold > 1 {
		return core.NewConfigError("fusion.anomaly_threshold", "must be in [0, 1]")
	}
	if c.ScoreThreshold < 0 || c.ScoreThreshold > 1 {
		return core.NewConfigError("fusion.score_threshold", "must be in [0, 1]")
	}
	if c.ZCap <= 0 {
		return core.NewConfigError("fusion.z_cap", "must be positive")
	}
	return nil
}

// RiskScore is the per-record scoring output.
type RiskScore struct {
	ClaimID          string   `json:"claim_id"`
	Category         string   `json:"category"`
	ZScore           float64  `json:"z_score"`
	AnomalyScore     float64  `json:"anomaly_score"`
	FusedScore       float64  `json:"fused_score"`
	Flagged          bool     `json:"flagged"`
	BaselineFallback bool     `json:"baseline_fallback"` // category baseline fell back to the global one
	ReasonCodes      []string `json:"reason_codes"`
}

// ZScore computes the group-relative z-score with a zero-variance guard:
// a degenerate baseline yields z = 0 instead of dividing by zero.
func ZScore(amount, mean, std float64) float64 {
	if std == 0 {
		return 0
	}
	return (amount - mean) / std
}

// NormalizeZ clamps |z|/cap into [0,1].
func NormalizeZ(z, cap float64) float64 {
	return math.Min(math.Abs(z)/cap, 1.0)
}

// Fuse combines the normalized signals into one [0,1] risk score. For valid
// weights the result is monotonically non-decreasing in each input.
func Fuse(z, anomalyScore float64, cfg Config) float64 {
	fused := cfg.AnomalyWeight*anomalyScore + cfg.ZWeight*NormalizeZ(z, cfg.ZCap)
	// Guard against float drift at the edges.
	return math.Max(0, math.Min(fused, 1))
}

// Score evaluates one record's signals against the config and builds its
// deterministic reason codes. Quality flags must be passed in the stable
// order they were attached.
func Score(claimID, category string, z, anomalyScore float64, fallback bool, flags []claims.QualityFlag, cfg Config) RiskScore {
	fused := Fuse(z, anomalyScore, cfg)
	zFlag := math.Abs(z) >= cfg.ZThreshold
	anomalyFlag := anomalyScore >= cfg.AnomalyThreshold

	return RiskScore{
		ClaimID:          claimID,
		Category:         category,
		ZScore:           z,
		AnomalyScore:     anomalyScore,
		FusedScore:       fused,
		Flagged:          zFlag || anomalyFlag || fused >= cfg.ScoreThreshold,
		BaselineFallback: fallback,
		ReasonCodes:      ReasonCodes(category, z, anomalyScore, zFlag, anomalyFlag, flags),
	}
}

// ReasonCodes builds the ordered explanation list: statistical outlier first,
// then the model signal, then one data-quality code per attached flag.
// Quality codes are always appended, flagged or not, for transparency.
func ReasonCodes(category string, z, anomalyScore float64, zFlag, anomalyFlag bool, flags []claims.QualityFlag) []string {
	codes := make([]string, 0, 2+len(flags))
	if zFlag {
		codes = append(codes, fmt.Sprintf("statistical_outlier:%s:%.2f", category, z))
	}
	if anomalyFlag {
		codes = append(codes, fmt.Sprintf("ml_anomaly:%.2f", anomalyScore))
	}
	for _, f := range flags {
		codes = append(codes, "data_quality:"+f.Code())
	}
	return codes
}

// Shortlist returns the flagged subset ordered by fused score descending,
// ties broken by ascending claim ID so repeated runs produce identical
// orderings.
func Shortlist(scores []RiskScore) []RiskScore {
	out := make([]RiskScore, 0, len(scores))
	for _, s := range scores {
		if s.Flagged {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FusedScore != out[j].FusedScore {
			return out[i].FusedScore > out[j].FusedScore
		}
		return out[i].ClaimID < out[j].ClaimID
	})
	return out
}
