package claims

import (
	"fmt"

	"claimsight/domain/core"
)

// Strategy is the closed set of remediation policies for out-of-range
// numeric values. Modeled as a validated tagged variant rather than a
// free-form string so invalid configurations are caught at the boundary.
type Strategy string

const (
	// StrategyImputeMean replaces out-of-range and missing values with the
	// mean of the valid values.
	StrategyImputeMean Strategy = "impute_mean"
	// StrategyExclude removes violating rows from the working set.
	StrategyExclude Strategy = "exclude"
	// StrategyLeave keeps values unchanged but still reports violations.
	StrategyLeave Strategy = "leave"
)

// Valid reports whether s is one of the known strategies.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyImputeMean, StrategyExclude, StrategyLeave:
		return true
	}
	return false
}

// ParseStrategy validates a raw strategy string.
func ParseStrategy(raw string) (Strategy, error) {
	s := Strategy(raw)
	if !s.Valid() {
		return "", core.NewConfigErrorf("strategy", "unknown remediation strategy %q", raw)
	}
	return s, nil
}

// ViolationKind classifies a data quality issue on a single field.
type ViolationKind string

const (
	ViolationOutOfRange ViolationKind = "out_of_range"
	ViolationMissing    ViolationKind = "missing"
	ViolationDuplicate  ViolationKind = "suspicious_duplicate"
)

// ResolutionKind records what the remediator actually did about a violation.
type ResolutionKind string

const (
	ResolutionImputed  ResolutionKind = "imputed"
	ResolutionExcluded ResolutionKind = "excluded"
	ResolutionLeft     ResolutionKind = "left"
	ResolutionFlagged  ResolutionKind = "flagged"
)

// QualityFlag is a descriptive annotation attached to a record. It never
// mutates the record's business fields itself; only the remediator's output
// does that.
type QualityFlag struct {
	Field       FieldKey       `json:"field"`
	Violation   ViolationKind  `json:"violation"`
	Resolution  ResolutionKind `json:"resolution"`
	Occurrences int            `json:"occurrences,omitempty"` // duplicate cluster size
	Imputed     *float64       `json:"imputed,omitempty"`
}

// Code renders the flag as a stable machine-readable token, the same form
// used inside reason codes.
func (f QualityFlag) Code() string {
	return fmt.Sprintf("%s:%s", f.Field, f.Violation)
}

// Bounds is an optional inclusive [Min, Max] validity range. A nil end is
// open on that side.
type Bounds struct {
	Min *float64
	Max *float64
}

// NewBounds builds a closed range.
func NewBounds(min, max float64) Bounds {
	return Bounds{Min: &min, Max: &max}
}

// Validate rejects inverted ranges.
func (b Bounds) Validate(param string) error {
	if b.Min != nil && b.Max != nil && *b.Min > *b.Max {
		return core.NewConfigErrorf(param, "min %v must not exceed max %v", *b.Min, *b.Max)
	}
	return nil
}

// Contains reports whether v falls inside the range.
func (b Bounds) Contains(v float64) bool {
	if b.Min != nil && v < *b.Min {
		return false
	}
	if b.Max != nil && v > *b.Max {
		return false
	}
	return true
}

// Open reports whether the range constrains nothing.
func (b Bounds) Open() bool {
	return b.Min == nil && b.Max == nil
}

// ColumnRule configures remediation for one numeric column.
type ColumnRule struct {
	Field      FieldKey
	Strategy   Strategy
	Bounds     Bounds
	RoundToInt bool // round the imputed mean to the nearest integer
}

// Validate checks the rule at configuration time.
func (r ColumnRule) Validate() error {
	if r.Field == "" {
		return core.NewConfigError("remediation.field", "field key must be set")
	}
	if !r.Strategy.Valid() {
		return core.NewConfigErrorf(string(r.Field)+".strategy", "unknown remediation strategy %q", string(r.Strategy))
	}
	return r.Bounds.Validate(string(r.Field) + ".bounds")
}
