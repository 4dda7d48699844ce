// Package ingest reads claim snapshots from CSV and Excel files and
// normalizes their column names into the canonical field set.
package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"claimsight/domain/claims"
)

// aliasMap folds common column-name variants into the canonical fields.
// A variant only renames when the canonical column is not already present.
var aliasMap = map[string]claims.FieldKey{
	// claim amount variations
	"total_claim_amount": claims.FieldClaimAmount,
	"total_claim_value":  claims.FieldClaimAmount,
	"claim_value":        claims.FieldClaimAmount,
	"amount":             claims.FieldClaimAmount,
	"coverage_amount":    claims.FieldClaimAmount,

	// premium variations
	"premium":               claims.FieldPolicyPremium,
	"policy_annual_premium": claims.FieldPolicyPremium,
	"premium_amount":        claims.FieldPolicyPremium,

	// income variations
	"salary":       claims.FieldAnnualIncome,
	"income":       claims.FieldAnnualIncome,
	"income_level": claims.FieldAnnualIncome,

	// id variations
	"customer_id": claims.FieldClaimID,

	// tenure variations
	"months_since_policy_inception": claims.FieldTenureMonths,
	"policy_tenure":                 claims.FieldTenureMonths,
}

// Reader handles reading claim data from Excel and CSV files.
type Reader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewReader creates a reader for the given file; the format is chosen by
// extension, anything that is not .csv is treated as xlsx.
func NewReader(filePath string) *Reader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &Reader{filePath: filePath, fileType: fileType}
}

// Read loads the file into records. Headers are normalized (trimmed,
// lowercased, spaces to underscores) and aliased before cell values are
// typed; empty cells stay absent from the record.
func (r *Reader) Read() ([]claims.Record, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("%s file must have at least a header row and one data row", strings.ToUpper(r.fileType))
	}
	return processRows(rows), nil
}

func (r *Reader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func (r *Reader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func processRows(rows [][]string) []claims.Record {
	fields := coalesceHeaders(rows[0])

	records := make([]claims.Record, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		rec := make(claims.Record, len(fields))
		for j, cell := range rows[i] {
			if j >= len(fields) {
				break
			}
			value := strings.TrimSpace(cell)
			if value == "" {
				continue
			}
			rec[fields[j]] = typeCell(fields[j], value)
		}
		records = append(records, rec)
	}
	return records
}

// coalesceHeaders normalizes raw header names and applies the alias map.
// An alias loses to a column that already carries the canonical name.
func coalesceHeaders(headerRow []string) []claims.FieldKey {
	fields := make([]claims.FieldKey, len(headerRow))
	seen := make(map[claims.FieldKey]bool, len(headerRow))
	for i, raw := range headerRow {
		name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "_")
		fields[i] = claims.FieldKey(name)
		seen[fields[i]] = true
	}
	for i := range fields {
		canonical, ok := aliasMap[string(fields[i])]
		if ok && !seen[canonical] {
			fields[i] = canonical
		}
	}
	return fields
}

var numericFields = func() map[claims.FieldKey]bool {
	m := make(map[claims.FieldKey]bool, len(claims.NumericFields))
	for _, f := range claims.NumericFields {
		m[f] = true
	}
	return m
}()

// typeCell parses numeric candidates into float64; unparseable values stay
// strings so remediation can count and handle them.
func typeCell(field claims.FieldKey, value string) interface{} {
	if !numericFields[field] {
		return value
	}
	cleaned := strings.ReplaceAll(strings.TrimPrefix(value, "$"), ",", "")
	if v, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return v
	}
	return value
}
