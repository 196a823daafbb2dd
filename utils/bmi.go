package utils

import (
	"errors"
	"math"
)

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CalculateIMC expects height in meters and weight in kilograms.
func CalculateIMC(weightKg, heightM float64) (float64, error) {
	if heightM <= 0 || weightKg <= 0 {
		return 0, errors.New("height and weight must be positive")
	}
	// centimeters sent by mistake
	if heightM > 3 {
		return 0, errors.New("height must be in meters")
	}
	return Round2(weightKg / (heightM * heightM)), nil
}

// BodyComposition splits weight into fat and lean mass from a fat percentage.
func BodyComposition(weightKg, fatPercent float64) (fatKg, leanKg float64, err error) {
	if weightKg <= 0 {
		return 0, 0, errors.New("weight must be positive")
	}
	if fatPercent < 0 || fatPercent > 100 {
		return 0, 0, errors.New("fat percent must be between 0 and 100")
	}
	fat := Round2(weightKg * fatPercent / 100)
	return fat, Round2(weightKg - fat), nil
}

func IMCCategory(imc float64) string {
	switch {
	case imc < 18.5:
		return "Underweight"
	case imc < 25.0:
		return "Normal weight"
	case imc < 30.0:
		return "Overweight"
	case imc < 35.0:
		return "Obesity class I"
	case imc < 40.0:
		return "Obesity class II"
	default:
		return "Obesity class III"
	}
}
