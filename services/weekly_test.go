package services

import (
	"testing"
	"time"

	"github.com/brfrauches/augmend-71119/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWeeklyUsage(t *testing.T) {
	now := time.Date(2024, 5, 15, 14, 0, 0, 0, time.UTC)
	taken := []time.Time{
		time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), // outside the window
	}

	w := BuildWeeklyUsage(taken, now)
	require.Len(t, w.Days, 7)
	assert.Equal(t, "2024-05-09", w.Days[0].Date)
	assert.Equal(t, "2024-05-15", w.Days[6].Date)
	assert.True(t, w.Days[0].HasUsage)
	assert.False(t, w.Days[1].HasUsage)
	assert.Equal(t, 3, w.DaysTaken)
	assert.Equal(t, 43, w.Adherence)
}

func TestBuildWeeklyConsistency(t *testing.T) {
	weekStart := time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC) // Sunday
	checkins := []models.WorkoutCheckin{
		{CompletedAt: time.Date(2024, 5, 13, 7, 0, 0, 0, time.UTC)},
		{CompletedAt: time.Date(2024, 5, 13, 19, 0, 0, 0, time.UTC)},
		{CompletedAt: time.Date(2024, 5, 15, 7, 0, 0, 0, time.UTC)},
		{CompletedAt: time.Date(2024, 5, 20, 7, 0, 0, 0, time.UTC)}, // next week
	}
	workouts := []models.Workout{
		{WeekDays: weekDaysJSON([]string{"monday", "wednesday", "friday"})},
		{WeekDays: weekDaysJSON([]string{"monday"})},
		{},
	}

	c := BuildWeeklyConsistency(weekStart, checkins, workouts)
	require.Len(t, c.Days, 7)
	assert.Equal(t, "sunday", c.Days[0].Weekday)
	assert.True(t, c.Days[1].Completed)
	assert.Equal(t, 2, c.Days[1].Checkins)
	assert.True(t, c.Days[3].Completed)
	assert.False(t, c.Days[5].Completed)
	assert.Equal(t, 2, c.CompletedDays)
	assert.Equal(t, 3, c.TotalCheckins)
	assert.Equal(t, 4, c.PlannedDays, "monday is planned by two workouts")
	assert.Equal(t, 50, c.ConsistencyPct)
}
