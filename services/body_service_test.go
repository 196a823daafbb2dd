package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveComputesIMCAndComposition(t *testing.T) {
	d, err := Derive(MeasurementInput{WeightKg: 80, HeightM: fp(1.80), FatPercent: fp(20)})
	require.NoError(t, err)
	require.NotNil(t, d.IMC)
	assert.Equal(t, 24.69, *d.IMC)
	assert.Equal(t, "Normal weight", d.IMCCategory)
	assert.Equal(t, 16.0, *d.FatWeightKg)
	assert.Equal(t, 64.0, *d.LeanMassKg)
}

func TestDeriveKeepsSuppliedValues(t *testing.T) {
	d, err := Derive(MeasurementInput{WeightKg: 80, HeightM: fp(1.80), IMC: fp(25), FatPercent: fp(20), LeanMassKg: fp(63.5)})
	require.NoError(t, err)
	assert.Equal(t, 25.0, *d.IMC)
	assert.Equal(t, 16.0, *d.FatWeightKg)
	assert.Equal(t, 63.5, *d.LeanMassKg)
}

func TestDeriveWithoutHeight(t *testing.T) {
	d, err := Derive(MeasurementInput{WeightKg: 72})
	require.NoError(t, err)
	assert.Nil(t, d.IMC)
	assert.Nil(t, d.FatWeightKg)
}

func TestDeriveRejects(t *testing.T) {
	cases := map[string]MeasurementInput{
		"no weight":       {HeightM: fp(1.8)},
		"fat over 100":    {WeightKg: 80, FatPercent: fp(120)},
		"negative water":  {WeightKg: 80, WaterPercent: fp(-1)},
		"height in cm":    {WeightKg: 80, HeightM: fp(180)},
		"negative height": {WeightKg: 80, HeightM: fp(-1.8)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Derive(in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestFilledSegments(t *testing.T) {
	out, err := filledSegments([]SegmentInput{
		{Region: "trunk", LeanMassKg: fp(25)},
		{Region: "left_arm"},
		{Region: "right_thigh", FatMassKg: fp(2.1)},
		{Region: "abdomen", FatMassKg: fp(3.4)},
		{Region: "calves", LeanMassKg: fp(7.8)},
	})
	require.NoError(t, err)
	require.Len(t, out, 4)
	assert.Equal(t, "trunk", out[0].Region)
	assert.Equal(t, "right_thigh", out[1].Region)
	assert.Equal(t, "abdomen", out[2].Region)
	assert.Equal(t, "calves", out[3].Region)

	_, err = filledSegments([]SegmentInput{{Region: "head", LeanMassKg: fp(1)}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFilledSegmentsAcceptsReportLabels(t *testing.T) {
	out, err := filledSegments([]SegmentInput{
		{Region: "Braço Direito", LeanMassKg: fp(3.1)},
		{Region: "Abdômen", FatMassKg: fp(4)},
		{Region: "Panturrilhas", LeanMassKg: fp(8)},
		{Region: "Coxa Esquerda", LeanMassKg: fp(9.2)},
	})
	require.NoError(t, err)
	require.Len(t, out, 4)
	assert.Equal(t, []string{"right_arm", "abdomen", "calves", "left_thigh"},
		[]string{out[0].Region, out[1].Region, out[2].Region, out[3].Region})
}
