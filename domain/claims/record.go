package claims

import (
	"strconv"
	"strings"
)

// FieldKey names a canonical claim record field. Upstream normalization is
// expected to have already mapped source column aliases onto these keys.
type FieldKey string

const (
	FieldClaimID       FieldKey = "claim_id"
	FieldAge           FieldKey = "age"
	FieldAnnualIncome  FieldKey = "annual_income"
	FieldClaimAmount   FieldKey = "claim_amount"
	FieldClaimType     FieldKey = "claim_type"
	FieldRegion        FieldKey = "region"
	FieldPolicyPremium FieldKey = "policy_premium"
	FieldTenureMonths  FieldKey = "tenure_months"
)

// NumericFields are the candidate numeric features, in canonical order.
var NumericFields = []FieldKey{
	FieldClaimAmount, FieldAge, FieldAnnualIncome, FieldPolicyPremium, FieldTenureMonths,
}

// Record is a canonical claim record: a mapping from field key to value.
// Optional fields are simply absent. Records are treated as immutable once
// ingested; remediation always works on cloned copies.
type Record map[FieldKey]interface{}

// ClaimID returns the record's claim identifier, or "" when absent.
func (r Record) ClaimID() string {
	s, _ := r.Categorical(FieldClaimID)
	return s
}

// Numeric returns the field coerced to float64. The second return is false
// for absent, nil, empty, or unparseable values.
func (r Record) Numeric(field FieldKey) (float64, bool) {
	raw, ok := r[field]
	if !ok || raw == nil {
		return 0, false
	}

	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// Categorical returns the field as a trimmed string. The second return is
// false for absent, nil, or empty values.
func (r Record) Categorical(field FieldKey) (string, bool) {
	raw, ok := r[field]
	if !ok || raw == nil {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		return trimmed, trimmed != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	default:
		return "", false
	}
}

// Has reports whether the field carries any value at all.
func (r Record) Has(field FieldKey) bool {
	raw, ok := r[field]
	return ok && raw != nil
}

// Clone returns a shallow copy of the record. Values are scalars, so a
// shallow copy is a full copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// CloneAll copies a record slice so downstream stages can never mutate the
// caller's snapshot.
func CloneAll(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

// Capabilities describes which numeric features the dataset can actually
// supply. It is computed once, before model fitting, and consulted by every
// downstream stage instead of ad-hoc per-column presence checks.
type Capabilities struct {
	NumericCount map[FieldKey]int // records with a parseable numeric value
	Total        int
}

// DetectCapabilities scans records once and counts usable numeric values for
// each candidate field.
func DetectCapabilities(records []Record, fields ...FieldKey) Capabilities {
	if len(fields) == 0 {
		fields = NumericFields
	}
	caps := Capabilities{
		NumericCount: make(map[FieldKey]int, len(fields)),
		Total:        len(records),
	}
	for _, field := range fields {
		caps.NumericCount[field] = 0
	}
	for _, rec := range records {
		for _, field := range fields {
			if _, ok := rec.Numeric(field); ok {
				caps.NumericCount[field]++
			}
		}
	}
	return caps
}

// HasNumeric reports whether at least one record supplies the field.
func (c Capabilities) HasNumeric(field FieldKey) bool {
	return c.NumericCount[field] > 0
}

// Available filters the given fields down to those the dataset supplies,
// preserving order.
func (c Capabilities) Available(fields ...FieldKey) []FieldKey {
	out := make([]FieldKey, 0, len(fields))
	for _, field := range fields {
		if c.HasNumeric(field) {
			out = append(out, field)
		}
	}
	return out
}
