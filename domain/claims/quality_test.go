package claims

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"claimsight/domain/core"
)

func TestParseStrategy(t *testing.T) {
	for _, raw := range []string{"impute_mean", "exclude", "leave"} {
		s, err := ParseStrategy(raw)
		assert.NoError(t, err)
		assert.True(t, s.Valid())
	}

	_, err := ParseStrategy("drop")
	assert.Error(t, err)
	assert.True(t, core.IsConfigError(err))
}

func TestBounds(t *testing.T) {
	b := NewBounds(18, 90)

	assert.True(t, b.Contains(18))
	assert.True(t, b.Contains(90))
	assert.False(t, b.Contains(17.9))
	assert.False(t, b.Contains(90.1))
	assert.NoError(t, b.Validate("age.bounds"))

	inverted := NewBounds(90, 18)
	assert.Error(t, inverted.Validate("age.bounds"))

	open := Bounds{}
	assert.True(t, open.Open())
	assert.True(t, open.Contains(-1e9))

	max := 100.0
	halfOpen := Bounds{Max: &max}
	assert.True(t, halfOpen.Contains(-50))
	assert.False(t, halfOpen.Contains(101))
}

func TestQualityFlagCode(t *testing.T) {
	f := QualityFlag{Field: FieldAge, Violation: ViolationOutOfRange, Resolution: ResolutionImputed}
	assert.Equal(t, "age:out_of_range", f.Code())

	d := QualityFlag{Field: FieldKey("annual_income"), Violation: ViolationDuplicate, Occurrences: 12}
	assert.Equal(t, "annual_income:suspicious_duplicate", d.Code())
}

func TestColumnRuleValidate(t *testing.T) {
	valid := ColumnRule{Field: FieldAge, Strategy: StrategyImputeMean, Bounds: NewBounds(18, 90)}
	assert.NoError(t, valid.Validate())

	assert.Error(t, ColumnRule{Strategy: StrategyLeave}.Validate(), "field key is required")
	assert.Error(t, ColumnRule{Field: FieldAge, Strategy: "drop"}.Validate())
	assert.Error(t, ColumnRule{Field: FieldAge, Strategy: StrategyLeave, Bounds: NewBounds(90, 18)}.Validate())
}
