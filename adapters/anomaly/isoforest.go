// Package anomaly provides the unsupervised multivariate outlier scorer
// behind ports.AnomalyDetector: an isolation forest with a fixed seed,
// contamination-derived cutoff, and min-max normalized [0,1] scores.
package anomaly

import (
	"math"
	"math/rand"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"claimsight/domain/core"
)

// seedStride decorrelates per-tree RNG streams while keeping the whole
// ensemble a pure function of the configured seed.
const seedStride = 0x9E3779B9

// Config holds the forest settings.
type Config struct {
	Trees         int     `json:"trees"`
	SampleSize    int     `json:"sample_size"`   // per-tree subsample ceiling
	Contamination float64 `json:"contamination"` // expected anomaly fraction
	Seed          int64   `json:"seed"`
	MinRecords    int     `json:"min_records"` // below this, all scores are neutral
}

// DefaultConfig returns the standard forest settings.
func DefaultConfig() Config {
	return Config{
		Trees:         200,
		SampleSize:    256,
		Contamination: 0.05,
		Seed:          42,
		MinRecords:    10,
	}
}

// Validate rejects unusable settings at the boundary.
func (c Config) Validate() error {
	if c.Trees <= 0 {
		return core.NewConfigError("anomaly.trees", "must be positive")
	}
	if c.SampleSize < 2 {
		return core.NewConfigError("anomaly.sample_size", "must be at least 2")
	}
	if c.Contamination < 0 || c.Contamination > 1 {
		return core.NewConfigError("anomaly.contamination", "must be in [0, 1]")
	}
	if c.MinRecords < 0 {
		return core.NewConfigError("anomaly.min_records", "must be non-negative")
	}
	return nil
}

// IsolationForest implements ports.AnomalyDetector.
type IsolationForest struct {
	cfg Config

	trees      []*node
	sampleSize int
	degenerate bool
	cutoff     float64
}

type node struct {
	feature     int
	split       float64
	left, right *node
	size        int // leaf population
}

// New creates an unfitted forest.
func New(cfg Config) (*IsolationForest, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &IsolationForest{cfg: cfg}, nil
}

// Fit builds the ensemble over the feature matrix. Degenerate input (fewer
// rows than the configured floor, or no features) switches the forest into
// neutral-score mode instead of fitting an unstable model.
func (f *IsolationForest) Fit(data [][]float64) error {
	n := len(data)
	if n < f.cfg.MinRecords || n == 0 || len(data[0]) == 0 {
		f.degenerate = true
		f.trees = nil
		f.cutoff = 0
		return nil
	}
	f.degenerate = false

	f.sampleSize = f.cfg.SampleSize
	if n < f.sampleSize {
		f.sampleSize = n
	}
	maxDepth := int(math.Ceil(math.Log2(float64(f.sampleSize)))) + 1

	// Each tree owns an RNG derived from the base seed, so the fit is
	// deterministic no matter how the goroutines are scheduled.
	f.trees = make([]*node, f.cfg.Trees)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range f.trees {
		i := i
		g.Go(func() error {
			rng := rand.New(rand.NewSource(f.cfg.Seed + int64(i)*seedStride))
			indices := rng.Perm(n)[:f.sampleSize]
			f.trees[i] = buildNode(data, indices, 0, maxDepth, rng)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	scores := normalize(f.rawScores(data))
	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	f.cutoff = stat.Quantile(1-f.cfg.Contamination, stat.Empirical, sorted, nil)
	return nil
}

// Predict returns one score per row, min-max normalized to [0,1] with 1 the
// most anomalous. In neutral mode every row scores 0.
func (f *IsolationForest) Predict(data [][]float64) ([]float64, error) {
	if f.degenerate || len(f.trees) == 0 || len(data) == 0 {
		return make([]float64, len(data)), nil
	}
	return normalize(f.rawScores(data)), nil
}

// Cutoff returns the normalized-score threshold implied by the contamination
// rate: the training-set quantile above which the expected anomaly fraction
// sits. Zero while the forest is degenerate or unfitted.
func (f *IsolationForest) Cutoff() float64 {
	return f.cutoff
}

// Degenerate reports whether the forest is in neutral-score mode.
func (f *IsolationForest) Degenerate() bool {
	return f.degenerate
}

// normalize rescales raw isolation scores into [0,1] by min-max. A uniform
// batch carries no anomaly signal and maps to all zeros.
func normalize(raw []float64) []float64 {
	scores := make([]float64, len(raw))
	min, max := raw[0], raw[0]
	for _, s := range raw[1:] {
		min = math.Min(min, s)
		max = math.Max(max, s)
	}
	if max == min {
		return scores
	}
	for i, s := range raw {
		scores[i] = (s - min) / (max - min)
	}
	return scores
}

// rawScores computes the isolation score s(x) = 2^(-E[h(x)] / c(psi)).
func (f *IsolationForest) rawScores(data [][]float64) []float64 {
	norm := avgPathLength(f.sampleSize)
	out := make([]float64, len(data))
	for i, sample := range data {
		sum := 0.0
		for _, tree := range f.trees {
			sum += pathLength(tree, sample, 0)
		}
		avg := sum / float64(len(f.trees))
		out[i] = math.Exp2(-avg / norm)
	}
	return out
}

func buildNode(data [][]float64, indices []int, depth, maxDepth int, rng *rand.Rand) *node {
	if depth >= maxDepth || len(indices) <= 1 {
		return &node{feature: -1, size: len(indices)}
	}

	dims := len(data[indices[0]])
	splittable := make([]int, 0, dims)
	mins := make([]float64, dims)
	maxs := make([]float64, dims)
	for d := 0; d < dims; d++ {
		mins[d], maxs[d] = data[indices[0]][d], data[indices[0]][d]
		for _, idx := range indices[1:] {
			v := data[idx][d]
			mins[d] = math.Min(mins[d], v)
			maxs[d] = math.Max(maxs[d], v)
		}
		if maxs[d] > mins[d] {
			splittable = append(splittable, d)
		}
	}
	if len(splittable) == 0 {
		return &node{feature: -1, size: len(indices)}
	}

	feature := splittable[rng.Intn(len(splittable))]
	split := mins[feature] + rng.Float64()*(maxs[feature]-mins[feature])

	var left, right []int
	for _, idx := range indices {
		if data[idx][feature] < split {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	return &node{
		feature: feature,
		split:   split,
		left:    buildNode(data, left, depth+1, maxDepth, rng),
		right:   buildNode(data, right, depth+1, maxDepth, rng),
	}
}

func pathLength(n *node, sample []float64, depth int) float64 {
	if n.feature < 0 {
		return float64(depth) + avgPathLength(n.size)
	}
	if sample[n.feature] < n.split {
		return pathLength(n.left, sample, depth+1)
	}
	return pathLength(n.right, sample, depth+1)
}

// avgPathLength is c(n), the expected unsuccessful-search path length in a
// binary search tree of n nodes.
func avgPathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	if n == 2 {
		return 1
	}
	h := math.Log(float64(n-1)) + 0.5772156649015329
	return 2*h - 2*float64(n-1)/float64(n)
}
