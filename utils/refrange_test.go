package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestParseReferenceRange(t *testing.T) {
	lo, hi, ok := ParseReferenceRange("70-99 mg/dL")
	require.True(t, ok)
	assert.Equal(t, 70.0, *lo)
	assert.Equal(t, 99.0, *hi)

	lo, hi, ok = ParseReferenceRange("4,5 a 11,0")
	require.True(t, ok)
	assert.Equal(t, 4.5, *lo)
	assert.Equal(t, 11.0, *hi)

	lo, hi, ok = ParseReferenceRange("< 200")
	require.True(t, ok)
	assert.Nil(t, lo)
	assert.Equal(t, 200.0, *hi)

	lo, hi, ok = ParseReferenceRange("> 40")
	require.True(t, ok)
	assert.Equal(t, 40.0, *lo)
	assert.Nil(t, hi)

	_, _, ok = ParseReferenceRange("negativo")
	assert.False(t, ok)

	_, _, ok = ParseReferenceRange("99-70")
	assert.False(t, ok)
}

func TestClassifyReference(t *testing.T) {
	assert.Equal(t, RefNormal, ClassifyReference(f(85), "70-99"))
	assert.Equal(t, RefLow, ClassifyReference(f(60), "70-99"))
	assert.Equal(t, RefHigh, ClassifyReference(f(120), "70-99"))
	assert.Equal(t, RefHigh, ClassifyReference(f(230), "< 200"))
	assert.Equal(t, RefUnknown, ClassifyReference(nil, "70-99"))
	assert.Equal(t, RefUnknown, ClassifyReference(f(1), ""))
}
