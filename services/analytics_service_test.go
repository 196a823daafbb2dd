package services

import (
	"testing"
	"time"

	"github.com/brfrauches/augmend-71119/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(day, hour int) time.Time { return time.Date(2024, 5, day, hour, 0, 0, 0, time.UTC) }

func TestBuildAnalyticsSummary(t *testing.T) {
	meals := []models.NutritionMeal{
		{TotalCalories: 1500, ProteinG: 100, EatenAt: at(13, 12)},
		{TotalCalories: 500, ProteinG: 50, EatenAt: at(13, 20)},
		{TotalCalories: 1000, ProteinG: 75, EatenAt: at(15, 12)},
	}
	water := []models.WaterLog{{AmountML: 2500, LoggedAt: at(13, 9)}}
	from, to := at(12, 0), at(16, 0)

	s := BuildAnalyticsSummary(from, to, meals, water, false)
	assert.Equal(t, "2024-05-12", s.Range.From)
	assert.Equal(t, 2, s.Metadata.DaysCounted)
	require.Len(t, s.Days, 2)
	assert.Equal(t, 2000.0, s.Days[0].Calories)
	assert.Equal(t, 2, s.Days[0].Meals)
	assert.Equal(t, 1500.0, s.Macros["calories"].AvgConsumed)
	assert.Equal(t, 75.0, s.Macros["calories"].AvgPercent)
	assert.Equal(t, 1250.0, s.Other["hydration"].AvgConsumed)

	all := BuildAnalyticsSummary(from, to, meals, water, true)
	assert.Equal(t, 5, all.Metadata.DaysCounted)
	assert.Equal(t, 600.0, all.Macros["calories"].AvgConsumed)
}

func TestBuildAnalyticsSummaryEmpty(t *testing.T) {
	s := BuildAnalyticsSummary(at(1, 0), at(7, 0), nil, nil, false)
	assert.Equal(t, 0, s.Metadata.DaysCounted)
	assert.NotNil(t, s.Days)
	assert.Equal(t, 0.0, s.Macros["protein"].AvgConsumed)
	assert.Equal(t, 0.0, s.Macros["protein"].AvgGoal)
}

func TestBuildBodyTrend(t *testing.T) {
	assert.Nil(t, BuildBodyTrend(nil))

	tr := BuildBodyTrend([]models.BodyMeasurement{
		{WeightKg: 82.4, IMC: fp(25.43)},
		{WeightKg: 81},
		{WeightKg: 80.1},
	})
	assert.Equal(t, 3, tr.Measurements)
	assert.Equal(t, -2.3, tr.WeightChange)
	require.NotNil(t, tr.LatestIMC)
	assert.Equal(t, 25.43, *tr.LatestIMC)
	assert.Equal(t, "Overweight", tr.IMCCategory)
}

func TestBuildWeeklyOverview(t *testing.T) {
	meals := []models.NutritionMeal{{TotalCalories: 1000, EatenAt: at(14, 12)}}

	out, err := BuildWeeklyOverview(at(15, 0), OverviewChart, meals, nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-12", out.WeekStart)
	days, ok := out.Days.([]DayChart)
	require.True(t, ok)
	require.Len(t, days, 7)
	assert.Equal(t, 50.0, days[2].Percentages["calories"])

	out, err = BuildWeeklyOverview(at(15, 0), OverviewDetailed, meals, nil)
	require.NoError(t, err)
	detailed := out.Days.([]DayDetailed)
	assert.Equal(t, Metric{Actual: 1000, Target: GoalCalories, Percent: 50}, detailed[2].Metrics["calories"])

	_, err = BuildWeeklyOverview(at(15, 0), "pie", meals, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
