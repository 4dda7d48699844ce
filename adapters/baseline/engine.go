// Package baseline computes per-category claim amount statistics used for
// group-relative z-scores.
package baseline

import (
	"strings"

	"github.com/montanaflynn/stats"

	"claimsight/domain/claims"
	"claimsight/domain/core"
)

// DefaultMinSamples is the per-category sample floor below which the global
// baseline is used instead of unstable per-category statistics.
const DefaultMinSamples = 5

// Baseline holds the statistics for one category of claims.
type Baseline struct {
	Category   string  `json:"category"`
	Mean       float64 `json:"mean"`
	Std        float64 `json:"std"` // population standard deviation
	Count      int     `json:"count"`
	IsFallback bool    `json:"is_fallback"`
}

// Engine groups remediated records by a category key and exposes baselines
// with global fallback. Baselines are recomputed in full on every Fit; there
// is no incremental update path.
type Engine struct {
	groupBy    []claims.FieldKey
	minSamples int

	byCategory map[string]Baseline
	global     Baseline
	fitted     bool
}

// NewEngine creates an engine grouping by the given fields. A minSamples of
// zero or less selects DefaultMinSamples.
func NewEngine(groupBy []claims.FieldKey, minSamples int) *Engine {
	if len(groupBy) == 0 {
		groupBy = []claims.FieldKey{claims.FieldClaimType}
	}
	if minSamples <= 0 {
		minSamples = DefaultMinSamples
	}
	return &Engine{groupBy: groupBy, minSamples: minSamples}
}

// CategoryOf derives the record's grouping key. Missing grouping fields
// collapse into the "unknown" bucket rather than being dropped.
func (e *Engine) CategoryOf(rec claims.Record) string {
	parts := make([]string, len(e.groupBy))
	for i, field := range e.groupBy {
		if v, ok := rec.Categorical(field); ok {
			parts[i] = v
		} else {
			parts[i] = "unknown"
		}
	}
	return strings.Join(parts, "/")
}

// Fit computes per-category and global mean/std of claim amount. Records
// without a usable claim amount contribute to no baseline.
func (e *Engine) Fit(records []claims.Record) error {
	samples := make(map[string][]float64)
	all := make([]float64, 0, len(records))

	for _, rec := range records {
		amount, ok := rec.Numeric(claims.FieldClaimAmount)
		if !ok {
			continue
		}
		cat := e.CategoryOf(rec)
		samples[cat] = append(samples[cat], amount)
		all = append(all, amount)
	}

	if len(all) == 0 {
		return core.ErrFieldUnavailable
	}

	e.global = summarize("", all)
	e.byCategory = make(map[string]Baseline, len(samples))
	for cat, vals := range samples {
		if len(vals) < e.minSamples {
			fallback := e.global
			fallback.Category = cat
			fallback.IsFallback = true
			e.byCategory[cat] = fallback
			continue
		}
		e.byCategory[cat] = summarize(cat, vals)
	}
	e.fitted = true
	return nil
}

// Baseline returns the statistics for a category. Unknown categories fall
// back to the global baseline, marked accordingly.
func (e *Engine) Baseline(category string) Baseline {
	if e.fitted {
		if b, ok := e.byCategory[category]; ok {
			return b
		}
	}
	fallback := e.global
	fallback.Category = category
	fallback.IsFallback = true
	return fallback
}

// Global returns the whole-dataset baseline.
func (e *Engine) Global() Baseline {
	return e.global
}

// Categories lists the fitted category keys.
func (e *Engine) Categories() []string {
	out := make([]string, 0, len(e.byCategory))
	for cat := range e.byCategory {
		out = append(out, cat)
	}
	return out
}

func summarize(category string, vals []float64) Baseline {
	mean, _ := stats.Mean(vals)
	std, _ := stats.StandardDeviationPopulation(vals)
	return Baseline{
		Category: category,
		Mean:     mean,
		Std:      std,
		Count:    len(vals),
	}
}
