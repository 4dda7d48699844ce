package claims

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordNumeric(t *testing.T) {
	rec := Record{
		FieldAge:          float64(34),
		FieldClaimAmount:  "1250.50",
		FieldTenureMonths: 12,
		FieldClaimType:    "auto",
		FieldRegion:       "",
	}

	v, ok := rec.Numeric(FieldAge)
	assert.True(t, ok)
	assert.Equal(t, 34.0, v)

	v, ok = rec.Numeric(FieldClaimAmount)
	assert.True(t, ok, "numeric strings should parse")
	assert.Equal(t, 1250.50, v)

	v, ok = rec.Numeric(FieldTenureMonths)
	assert.True(t, ok)
	assert.Equal(t, 12.0, v)

	_, ok = rec.Numeric(FieldClaimType)
	assert.False(t, ok, "non-numeric strings are not numeric")

	_, ok = rec.Numeric(FieldRegion)
	assert.False(t, ok, "empty values are not numeric")

	_, ok = rec.Numeric(FieldAnnualIncome)
	assert.False(t, ok, "absent fields are not numeric")
}

func TestRecordCategorical(t *testing.T) {
	rec := Record{
		FieldClaimType: "  auto  ",
		FieldClaimID:   "CLM-001",
		FieldAge:       float64(34),
	}

	v, ok := rec.Categorical(FieldClaimType)
	assert.True(t, ok)
	assert.Equal(t, "auto", v)

	assert.Equal(t, "CLM-001", rec.ClaimID())

	v, ok = rec.Categorical(FieldAge)
	assert.True(t, ok, "numbers render as categorical strings")
	assert.Equal(t, "34", v)

	assert.Equal(t, "", Record{}.ClaimID())
}

func TestCloneIsolation(t *testing.T) {
	original := Record{FieldAge: 30.0, FieldClaimID: "CLM-001"}
	clone := original.Clone()
	clone[FieldAge] = 99.0

	v, _ := original.Numeric(FieldAge)
	assert.Equal(t, 30.0, v, "mutating a clone must not touch the original")
}

func TestDetectCapabilities(t *testing.T) {
	records := []Record{
		{FieldClaimAmount: 1000.0, FieldAge: 30.0},
		{FieldClaimAmount: 2000.0},
		{FieldClaimAmount: "bad"},
	}

	caps := DetectCapabilities(records)
	assert.Equal(t, 3, caps.Total)
	assert.Equal(t, 2, caps.NumericCount[FieldClaimAmount])
	assert.Equal(t, 1, caps.NumericCount[FieldAge])
	assert.True(t, caps.HasNumeric(FieldClaimAmount))
	assert.False(t, caps.HasNumeric(FieldAnnualIncome))

	available := caps.Available(FieldClaimAmount, FieldAge, FieldAnnualIncome)
	assert.Equal(t, []FieldKey{FieldClaimAmount, FieldAge}, available)
}
