package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigErrorClass(t *testing.T) {
	err := NewConfigError("fusion.z_cap", "must be positive")

	assert.True(t, IsConfigError(err))
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Equal(t, "fusion.z_cap", ConfigParam(err))
	assert.Equal(t, "invalid configuration: fusion.z_cap: must be positive", err.Error())
}

func TestConfigErrorSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("loading settings: %w", NewConfigErrorf("seed", "bad value %d", -1))

	assert.True(t, IsConfigError(err))
	assert.Equal(t, "seed", ConfigParam(err))
}

func TestConfigParamOtherErrors(t *testing.T) {
	assert.Equal(t, "", ConfigParam(errors.New("boom")))
	assert.False(t, IsConfigError(ErrInsufficientData))
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.False(t, a.IsEmpty())
	assert.NotEqual(t, a, b)
	assert.Len(t, a.String(), 36)

	run := NewRunID()
	assert.NotEmpty(t, run.String())
}
