// Package remediate implements the data quality stage: numeric range
// validation with configurable handling, and suspicious duplicate detection.
package remediate

import (
	"math"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"

	"claimsight/domain/claims"
	"claimsight/domain/core"
)

// DefaultDuplicateThreshold flags values repeated this often or more.
const DefaultDuplicateThreshold = 10

// Config drives one remediation pass.
type Config struct {
	Rules              []claims.ColumnRule
	DuplicateFields    []claims.FieldKey // composite duplicate key; empty disables detection
	DuplicateThreshold int
}

// Validate checks every rule and the duplicate settings up front.
func (c Config) Validate() error {
	for _, rule := range c.Rules {
		if err := rule.Validate(); err != nil {
			return err
		}
	}
	if len(c.DuplicateFields) > 0 && c.DuplicateThreshold < 2 {
		return core.NewConfigError("remediation.duplicate_threshold", "must be at least 2")
	}
	return nil
}

// ColumnOutcome reports what happened to one configured column.
type ColumnOutcome struct {
	Field    claims.FieldKey `json:"field"`
	Strategy claims.Strategy `json:"strategy"`
	Affected int             `json:"affected"`
	Imputed  *float64        `json:"imputed,omitempty"`
}

// Result is the remediated working set. Records is a fresh copy; the input
// snapshot is never mutated. Flags is parallel to Records and holds each
// record's quality annotations in the order they were attached.
type Result struct {
	Records       []claims.Record
	Flags         [][]claims.QualityFlag
	Columns       []ColumnOutcome
	OriginalCount int
	RemovedRows   int
	DuplicateRows int
}

// Remediator applies a validated Config to record snapshots.
type Remediator struct {
	cfg Config
}

// New validates the configuration and returns a remediator.
func New(cfg Config) (*Remediator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Remediator{cfg: cfg}, nil
}

// Apply runs the full remediation pass: exclusions first (as a single-pass
// union over all exclude rules, so a row failing several checks is removed
// exactly once), then imputation and leave-mode reporting on the survivors,
// then duplicate flagging.
func (r *Remediator) Apply(records []claims.Record) *Result {
	work := claims.CloneAll(records)
	flags := make([][]claims.QualityFlag, len(work))

	res := &Result{
		OriginalCount: len(records),
		Columns:       make([]ColumnOutcome, 0, len(r.cfg.Rules)),
	}

	work, flags = r.applyExclusions(work, flags, res)

	for _, rule := range r.cfg.Rules {
		switch rule.Strategy {
		case claims.StrategyImputeMean:
			res.Columns = append(res.Columns, imputeColumn(work, flags, rule))
		case claims.StrategyLeave:
			res.Columns = append(res.Columns, leaveColumn(work, flags, rule))
		}
	}

	res.DuplicateRows = r.flagDuplicates(work, flags)
	res.Records = work
	res.Flags = flags
	return res
}

// applyExclusions evaluates every exclude rule against the original working
// set and removes the union of violating rows. Missing values are not
// violations; they stay in the set.
func (r *Remediator) applyExclusions(work []claims.Record, flags [][]claims.QualityFlag, res *Result) ([]claims.Record, [][]claims.QualityFlag) {
	keep := make([]bool, len(work))
	for i := range keep {
		keep[i] = true
	}

	excluded := false
	for _, rule := range r.cfg.Rules {
		if rule.Strategy != claims.StrategyExclude {
			continue
		}
		affected := 0
		for i, rec := range work {
			v, ok := rec.Numeric(rule.Field)
			if ok && !rule.Bounds.Contains(v) {
				affected++
				keep[i] = false
			}
		}
		excluded = excluded || affected > 0
		res.Columns = append(res.Columns, ColumnOutcome{
			Field:    rule.Field,
			Strategy: rule.Strategy,
			Affected: affected,
		})
	}

	if !excluded {
		return work, flags
	}

	kept := make([]claims.Record, 0, len(work))
	keptFlags := make([][]claims.QualityFlag, 0, len(flags))
	for i, rec := range work {
		if keep[i] {
			kept = append(kept, rec)
			keptFlags = append(keptFlags, flags[i])
		}
	}
	res.RemovedRows = len(work) - len(kept)
	return kept, keptFlags
}

// imputeColumn replaces out-of-range and missing values with the mean of the
// valid values. With zero valid values to average, the column is left
// unchanged and zero rows are reported affected; an undefined mean is never
// imputed.
func imputeColumn(work []claims.Record, flags [][]claims.QualityFlag, rule claims.ColumnRule) ColumnOutcome {
	outcome := ColumnOutcome{Field: rule.Field, Strategy: rule.Strategy}

	valid := make([]float64, 0, len(work))
	outOfRange := make([]int, 0)
	missing := make([]int, 0)
	for i, rec := range work {
		v, ok := rec.Numeric(rule.Field)
		switch {
		case !ok:
			missing = append(missing, i)
		case rule.Bounds.Contains(v):
			valid = append(valid, v)
		default:
			outOfRange = append(outOfRange, i)
		}
	}

	if len(outOfRange) == 0 && len(missing) == 0 {
		return outcome
	}

	if len(valid) == 0 {
		for _, i := range outOfRange {
			flags[i] = append(flags[i], claims.QualityFlag{
				Field:      rule.Field,
				Violation:  claims.ViolationOutOfRange,
				Resolution: claims.ResolutionLeft,
			})
		}
		for _, i := range missing {
			flags[i] = append(flags[i], claims.QualityFlag{
				Field:      rule.Field,
				Violation:  claims.ViolationMissing,
				Resolution: claims.ResolutionLeft,
			})
		}
		return outcome
	}

	mean, _ := stats.Mean(valid)
	if rule.RoundToInt {
		mean = math.Round(mean)
	}

	for _, i := range outOfRange {
		work[i][rule.Field] = mean
		flags[i] = append(flags[i], claims.QualityFlag{
			Field:      rule.Field,
			Violation:  claims.ViolationOutOfRange,
			Resolution: claims.ResolutionImputed,
			Imputed:    &mean,
		})
	}
	for _, i := range missing {
		work[i][rule.Field] = mean
		flags[i] = append(flags[i], claims.QualityFlag{
			Field:      rule.Field,
			Violation:  claims.ViolationMissing,
			Resolution: claims.ResolutionImputed,
			Imputed:    &mean,
		})
	}

	// Affected counts measurable violations; filled-in missing values are
	// annotated but reported separately.
	outcome.Affected = len(outOfRange)
	outcome.Imputed = &mean
	return outcome
}

// leaveColumn reports violations without changing anything.
func leaveColumn(work []claims.Record, flags [][]claims.QualityFlag, rule claims.ColumnRule) ColumnOutcome {
	outcome := ColumnOutcome{Field: rule.Field, Strategy: rule.Strategy}
	for i, rec := range work {
		v, ok := rec.Numeric(rule.Field)
		if ok && !rule.Bounds.Contains(v) {
			outcome.Affected++
			flags[i] = append(flags[i], claims.QualityFlag{
				Field:      rule.Field,
				Violation:  claims.ViolationOutOfRange,
				Resolution: claims.ResolutionLeft,
			})
		}
	}
	return outcome
}

// flagDuplicates annotates rows whose duplicate key repeats at or above the
// threshold. Annotation only; nothing is removed.
func (r *Remediator) flagDuplicates(work []claims.Record, flags [][]claims.QualityFlag) int {
	if len(r.cfg.DuplicateFields) == 0 {
		return 0
	}

	keys := make([]string, len(work))
	counts := make(map[string]int, len(work))
	for i, rec := range work {
		key, ok := duplicateKey(rec, r.cfg.DuplicateFields)
		if !ok {
			continue
		}
		keys[i] = key
		counts[key]++
	}

	flagField := claims.FieldKey(joinFields(r.cfg.DuplicateFields))
	flagged := 0
	for i := range work {
		key := keys[i]
		if key == "" || counts[key] < r.cfg.DuplicateThreshold {
			continue
		}
		flagged++
		flags[i] = append(flags[i], claims.QualityFlag{
			Field:       flagField,
			Violation:   claims.ViolationDuplicate,
			Resolution:  claims.ResolutionFlagged,
			Occurrences: counts[key],
		})
	}
	return flagged
}

// duplicateKey builds the composite key; rows missing any component are not
// comparable and never flagged.
func duplicateKey(rec claims.Record, fields []claims.FieldKey) (string, bool) {
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		if v, ok := rec.Numeric(field); ok {
			parts = append(parts, strconv.FormatFloat(v, 'f', -1, 64))
			continue
		}
		s, ok := rec.Categorical(field)
		if !ok {
			return "", false
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "|"), true
}

func joinFields(fields []claims.FieldKey) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = string(f)
	}
	return strings.Join(parts, "+")
}
