package ingest

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"claimsight/domain/claims"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "claims.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeTempCSV(t, `claim_id,claim_type,Claim Amount,age,region
CLM-1,auto,1200.50,34,north
CLM-2,property,9800,51,
CLM-3,auto,,29,south
`)

	records, err := NewReader(path).Read()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "CLM-1", records[0].ClaimID())
	amount, ok := records[0].Numeric(claims.FieldClaimAmount)
	require.True(t, ok, "header 'Claim Amount' normalizes to claim_amount")
	assert.Equal(t, 1200.50, amount)

	assert.False(t, records[1].Has(claims.FieldRegion), "empty cells stay absent")
	assert.False(t, records[2].Has(claims.FieldClaimAmount))
}

func TestReadCSVAliases(t *testing.T) {
	path := writeTempCSV(t, `customer_id,total_claim_amount,salary,premium
C-1,5000,52000,600
C-2,7000,61000,720
`)

	records, err := NewReader(path).Read()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "C-1", records[0].ClaimID())
	amount, ok := records[0].Numeric(claims.FieldClaimAmount)
	require.True(t, ok)
	assert.Equal(t, 5000.0, amount)

	income, ok := records[0].Numeric(claims.FieldAnnualIncome)
	require.True(t, ok)
	assert.Equal(t, 52000.0, income)

	premium, ok := records[1].Numeric(claims.FieldPolicyPremium)
	require.True(t, ok)
	assert.Equal(t, 720.0, premium)
}

func TestAliasLosesToCanonical(t *testing.T) {
	path := writeTempCSV(t, `claim_amount,total_claim_amount
100,999
`)

	records, err := NewReader(path).Read()
	require.NoError(t, err)

	amount, ok := records[0].Numeric(claims.FieldClaimAmount)
	require.True(t, ok)
	assert.Equal(t, 100.0, amount, "a present canonical column wins over its alias")
}

func TestReadCSVCurrencyFormats(t *testing.T) {
	path := writeTempCSV(t, `claim_id,claim_amount
CLM-1,"$1,250.75"
CLM-2,n/a
`)

	records, err := NewReader(path).Read()
	require.NoError(t, err)

	amount, ok := records[0].Numeric(claims.FieldClaimAmount)
	require.True(t, ok, "currency symbols and thousands separators strip off")
	assert.Equal(t, 1250.75, amount)

	_, ok = records[1].Numeric(claims.FieldClaimAmount)
	assert.False(t, ok, "unparseable values stay non-numeric for remediation to see")
}

func TestReadErrors(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "missing.csv")).Read()
	assert.Error(t, err)

	_, err = NewReader(writeTempCSV(t, "claim_id,claim_amount\n")).Read()
	assert.Error(t, err, "header-only files are rejected")
}

func TestReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claims.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"claim_id", "claim_type", "claim_amount"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"CLM-1", "auto", 1200.5}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"CLM-2", "property", 9800}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	records, err := NewReader(path).Read()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "CLM-1", records[0].ClaimID())
	amount, ok := records[0].Numeric(claims.FieldClaimAmount)
	require.True(t, ok)
	assert.Equal(t, 1200.5, amount)
}

func TestWriteReadRoundTrip(t *testing.T) {
	records := []claims.Record{
		{
			claims.FieldClaimID:     "CLM-1",
			claims.FieldClaimType:   "auto",
			claims.FieldClaimAmount: 1200.5,
			claims.FieldAge:         34.0,
		},
		{
			claims.FieldClaimID:   "CLM-2",
			claims.FieldClaimType: "property",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "claim_id", rows[0][0])

	path := filepath.Join(t.TempDir(), "roundtrip.csv")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	back, err := NewReader(path).Read()
	require.NoError(t, err)
	require.Len(t, back, 2)
	amount, ok := back[0].Numeric(claims.FieldClaimAmount)
	require.True(t, ok)
	assert.Equal(t, 1200.5, amount)
	assert.False(t, back[1].Has(claims.FieldClaimAmount))
}
