package anomaly

import (
	"claimsight/domain/claims"
)

// DefaultFeatures is the canonical feature set for claim anomaly scoring.
var DefaultFeatures = []claims.FieldKey{
	claims.FieldClaimAmount,
	claims.FieldAge,
	claims.FieldAnnualIncome,
}

// BuildMatrix assembles the feature matrix for the given fields. The caller
// is expected to pass only fields the dataset actually supplies (see
// claims.Capabilities.Available); within a supplied column, records missing
// the value contribute 0.
func BuildMatrix(records []claims.Record, fields []claims.FieldKey) [][]float64 {
	matrix := make([][]float64, len(records))
	for i, rec := range records {
		row := make([]float64, len(fields))
		for j, field := range fields {
			if v, ok := rec.Numeric(field); ok {
				row[j] = v
			}
		}
		matrix[i] = row
	}
	return matrix
}
