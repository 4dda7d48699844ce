// Package app orchestrates the scoring pipeline:
// remediation -> baselines -> anomaly scoring -> fusion -> shortlist.
//
// Each stage consumes an immutable context value and returns a new one; the
// input snapshot is never mutated, and any configuration change means a full
// stateless recomputation of a fresh run.
package app

import (
	"errors"

	"github.com/montanaflynn/stats"

	"claimsight/adapters/anomaly"
	"claimsight/adapters/baseline"
	"claimsight/adapters/remediate"
	"claimsight/domain/claims"
	"claimsight/domain/core"
	"claimsight/domain/roi"
	"claimsight/domain/scoring"
	"claimsight/internal"
	"claimsight/internal/config"
	"claimsight/ports"
)

// ColumnProfile summarizes one numeric column of the remediated working set.
type ColumnProfile struct {
	Field   claims.FieldKey `json:"field"`
	Present int             `json:"present"`
	Missing int             `json:"missing"`
	Min     float64         `json:"min"`
	Max     float64         `json:"max"`
	Mean    float64         `json:"mean"`
}

// MissingPct is the missing share of the working set, in percent.
func (p ColumnProfile) MissingPct() float64 {
	total := p.Present + p.Missing
	if total == 0 {
		return 0
	}
	return float64(p.Missing) / float64(total) * 100
}

// KPIs are dataset-level aggregates over the remediated working set.
type KPIs struct {
	ClaimCount       int      `json:"claim_count"`
	TotalClaimAmount float64  `json:"total_claim_amount"`
	AvgClaimAmount   float64  `json:"avg_claim_amount"`
	LossRatioProxy   *float64 `json:"loss_ratio_proxy,omitempty"` // claims / premiums, when premiums exist
}

// Context is the value threaded through the stages. Stages return a new
// context instead of mutating shared state.
type Context struct {
	RunID         core.RunID
	Input         []claims.Record
	Remediation   *remediate.Result
	Capabilities  claims.Capabilities
	Baselines     *baseline.Engine
	Features      []claims.FieldKey
	AnomalyRaw    []float64
	AnomalyCutoff float64
	Neutral       bool // anomaly model fell back to neutral scores
	Scores        []scoring.RiskScore
	Shortlist     []scoring.RiskScore
	KPIs          KPIs
	Profiles      []ColumnProfile
}

// Result is the complete output of one pipeline run.
type Result struct {
	RunID          core.RunID          `json:"run_id"`
	Seed           int64               `json:"seed"`
	Remediation    *remediate.Result   `json:"-"`
	Features       []claims.FieldKey   `json:"features"`
	Baselines      *baseline.Engine    `json:"-"`
	AnomalyNeutral bool                `json:"anomaly_neutral"`
	AnomalyCutoff  float64             `json:"anomaly_cutoff"`
	Scores         []scoring.RiskScore `json:"scores"`
	Shortlist      []scoring.RiskScore `json:"shortlist"`
	KPIs           KPIs                `json:"kpis"`
	Profiles       []ColumnProfile     `json:"profiles"`
}

// Pipeline runs the batch scoring flow for one validated configuration.
type Pipeline struct {
	cfg *config.Config
	log *internal.Logger

	// newDetector is swappable for tests.
	newDetector func(anomaly.Config) (ports.AnomalyDetector, error)
}

// New validates the configuration and builds a pipeline. Invalid
// configuration fails here, before any records are touched.
func New(cfg *config.Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg: cfg,
		log: internal.DefaultLogger,
		newDetector: func(c anomaly.Config) (ports.AnomalyDetector, error) {
			return anomaly.New(c)
		},
	}, nil
}

// Run executes the full pipeline over the input snapshot. A valid
// configuration always yields a complete result set; degraded components
// (fallback baselines, neutral anomaly scores) are marked, never omitted.
func (p *Pipeline) Run(records []claims.Record) (*Result, error) {
	ctx := Context{
		RunID: core.NewRunID(),
		Input: records,
	}

	ctx, err := p.remediateStage(ctx)
	if err != nil {
		return nil, err
	}
	ctx = p.baselineStage(ctx)
	ctx, err = p.anomalyStage(ctx)
	if err != nil {
		return nil, err
	}
	ctx = p.fusionStage(ctx)
	ctx = p.kpiStage(ctx)
	ctx = p.profileStage(ctx)

	p.log.Info("run %s: %d records in, %d after remediation, %d flagged",
		ctx.RunID, len(records), len(ctx.Remediation.Records), len(ctx.Shortlist))

	return &Result{
		RunID:          ctx.RunID,
		Seed:           p.cfg.Seed,
		Remediation:    ctx.Remediation,
		Features:       ctx.Features,
		Baselines:      ctx.Baselines,
		AnomalyNeutral: ctx.Neutral,
		AnomalyCutoff:  ctx.AnomalyCutoff,
		Scores:         ctx.Scores,
		Shortlist:      ctx.Shortlist,
		KPIs:           ctx.KPIs,
		Profiles:       ctx.Profiles,
	}, nil
}

func (p *Pipeline) remediateStage(ctx Context) (Context, error) {
	rem, err := remediate.New(p.cfg.RemediationConfig())
	if err != nil {
		return ctx, err
	}
	ctx.Remediation = rem.Apply(ctx.Input)
	ctx.Capabilities = claims.DetectCapabilities(ctx.Remediation.Records)
	if ctx.Remediation.RemovedRows > 0 {
		p.log.Debug("remediation excluded %d of %d rows", ctx.Remediation.RemovedRows, ctx.Remediation.OriginalCount)
	}
	return ctx, nil
}

func (p *Pipeline) baselineStage(ctx Context) Context {
	engine := baseline.NewEngine(p.cfg.BaselineGroupBy, p.cfg.BaselineMinSamples)
	if err := engine.Fit(ctx.Remediation.Records); err != nil {
		// No usable claim amounts: every z-score degrades to 0 instead of
		// aborting the batch.
		if errors.Is(err, core.ErrFieldUnavailable) {
			p.log.Warn("no claim amounts available; z-scores neutralized")
		}
	}
	ctx.Baselines = engine
	return ctx
}

func (p *Pipeline) anomalyStage(ctx Context) (Context, error) {
	ctx.Features = ctx.Capabilities.Available(anomaly.DefaultFeatures...)

	detector, err := p.newDetector(p.cfg.Anomaly)
	if err != nil {
		return ctx, err
	}

	matrix := anomaly.BuildMatrix(ctx.Remediation.Records, ctx.Features)
	if err := detector.Fit(matrix); err != nil {
		return ctx, err
	}
	scores, err := detector.Predict(matrix)
	if err != nil {
		return ctx, err
	}
	ctx.AnomalyRaw = scores
	ctx.AnomalyCutoff = detector.Cutoff()

	if detector.Degenerate() {
		ctx.Neutral = true
		p.log.Warn("anomaly model degenerate (%d records, %d features); neutral scores emitted",
			len(matrix), len(ctx.Features))
	}
	return ctx, nil
}

func (p *Pipeline) fusionStage(ctx Context) Context {
	records := ctx.Remediation.Records
	scores := make([]scoring.RiskScore, len(records))
	for i, rec := range records {
		category := ctx.Baselines.CategoryOf(rec)
		b := ctx.Baselines.Baseline(category)

		z := 0.0
		if amount, ok := rec.Numeric(claims.FieldClaimAmount); ok {
			z = scoring.ZScore(amount, b.Mean, b.Std)
		}

		scores[i] = scoring.Score(rec.ClaimID(), category, z, ctx.AnomalyRaw[i], b.IsFallback, ctx.Remediation.Flags[i], p.cfg.Fusion)
	}
	ctx.Scores = scores
	ctx.Shortlist = scoring.Shortlist(scores)
	return ctx
}

func (p *Pipeline) kpiStage(ctx Context) Context {
	records := ctx.Remediation.Records
	kpis := KPIs{ClaimCount: len(records)}

	amounts := make([]float64, 0, len(records))
	premiums := make([]float64, 0, len(records))
	for _, rec := range records {
		if v, ok := rec.Numeric(claims.FieldClaimAmount); ok {
			amounts = append(amounts, v)
		}
		if v, ok := rec.Numeric(claims.FieldPolicyPremium); ok {
			premiums = append(premiums, v)
		}
	}

	if len(amounts) > 0 {
		kpis.TotalClaimAmount, _ = stats.Sum(amounts)
		kpis.AvgClaimAmount, _ = stats.Mean(amounts)
	}
	if len(premiums) > 0 && len(amounts) > 0 {
		premiumTotal, _ := stats.Sum(premiums)
		if premiumTotal > 0 {
			ratio := kpis.TotalClaimAmount / premiumTotal
			kpis.LossRatioProxy = &ratio
		}
	}

	ctx.KPIs = kpis
	return ctx
}

// profileStage summarizes every numeric column the working set carries.
// Columns with no usable values at all are skipped.
func (p *Pipeline) profileStage(ctx Context) Context {
	records := ctx.Remediation.Records
	profiles := make([]ColumnProfile, 0, len(claims.NumericFields))
	for _, field := range claims.NumericFields {
		if !ctx.Capabilities.HasNumeric(field) {
			continue
		}
		values := make([]float64, 0, len(records))
		for _, rec := range records {
			if v, ok := rec.Numeric(field); ok {
				values = append(values, v)
			}
		}
		min, _ := stats.Min(values)
		max, _ := stats.Max(values)
		mean, _ := stats.Mean(values)
		profiles = append(profiles, ColumnProfile{
			Field:   field,
			Present: len(values),
			Missing: len(records) - len(values),
			Min:     min,
			Max:     max,
			Mean:    mean,
		})
	}
	ctx.Profiles = profiles
	return ctx
}

// DeriveScenario substitutes the run's dataset aggregates into an ROI
// scenario: average claim amount and monthly volume come from the remediated
// working set, the rates stay as configured.
func (r *Result) DeriveScenario(base roi.Scenario) roi.Scenario {
	return base.WithDataset(r.KPIs.AvgClaimAmount, r.KPIs.ClaimCount)
}
