package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateIMC(t *testing.T) {
	imc, err := CalculateIMC(80, 1.80)
	require.NoError(t, err)
	assert.Equal(t, 24.69, imc)
	assert.Equal(t, "Normal weight", IMCCategory(imc))

	_, err = CalculateIMC(80, 180)
	assert.Error(t, err, "centimeters must be rejected")

	_, err = CalculateIMC(0, 1.80)
	assert.Error(t, err)
}

func TestBodyComposition(t *testing.T) {
	fat, lean, err := BodyComposition(80, 20)
	require.NoError(t, err)
	assert.Equal(t, 16.0, fat)
	assert.Equal(t, 64.0, lean)

	_, _, err = BodyComposition(80, 120)
	assert.Error(t, err)
}
