package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"claimsight/domain/claims"
)

// canonicalColumns is the column order for written files.
var canonicalColumns = []claims.FieldKey{
	claims.FieldClaimID,
	claims.FieldClaimType,
	claims.FieldRegion,
	claims.FieldClaimAmount,
	claims.FieldAge,
	claims.FieldAnnualIncome,
	claims.FieldPolicyPremium,
	claims.FieldTenureMonths,
}

// WriteCSV writes records as CSV in the canonical column order. Missing
// values become empty cells.
func WriteCSV(w io.Writer, records []claims.Record) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(canonicalColumns))
	for i, f := range canonicalColumns {
		header[i] = string(f)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, rec := range records {
		row := make([]string, len(canonicalColumns))
		for j, field := range canonicalColumns {
			row[j] = cellString(rec, field)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func cellString(rec claims.Record, field claims.FieldKey) string {
	if v, ok := rec.Numeric(field); ok {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	if s, ok := rec.Categorical(field); ok {
		return s
	}
	return ""
}
