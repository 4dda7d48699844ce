// Package export serializes ranked shortlists into flat tabular formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"claimsight/domain/scoring"
	"claimsight/ports"
)

var _ ports.ShortlistExporter = (*CSVExporter)(nil)

// ReasonDelimiter joins a record's reason codes into one exported field.
const ReasonDelimiter = "|"

var header = []string{"claim_id", "category", "z_score", "anomaly_score", "fused_score", "flagged", "reason_codes"}

// CSVExporter writes one CSV row per shortlisted record.
type CSVExporter struct{}

// NewCSVExporter creates a CSV shortlist exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Write emits the header and the shortlist in its given (already ranked)
// order.
func (e *CSVExporter) Write(w io.Writer, shortlist []scoring.RiskScore) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, s := range shortlist {
		if err := cw.Write(row(s)); err != nil {
			return fmt.Errorf("failed to write row for claim %s: %w", s.ClaimID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the shortlist to an Excel workbook at path, one row per
// record on Sheet1.
func WriteXLSX(path string, shortlist []scoring.RiskScore) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, s := range shortlist {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			s.ClaimID, s.Category, s.ZScore, s.AnomalyScore, s.FusedScore,
			s.Flagged, strings.Join(s.ReasonCodes, ReasonDelimiter),
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func row(s scoring.RiskScore) []string {
	return []string{
		s.ClaimID,
		s.Category,
		strconv.FormatFloat(s.ZScore, 'f', 4, 64),
		strconv.FormatFloat(s.AnomalyScore, 'f', 4, 64),
		strconv.FormatFloat(s.FusedScore, 'f', 4, 64),
		strconv.FormatBool(s.Flagged),
		strings.Join(s.ReasonCodes, ReasonDelimiter),
	}
}
