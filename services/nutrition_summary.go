package services

import (
	"context"
	"math"
	"time"

	"github.com/brfrauches/augmend-71119/models"
	"github.com/brfrauches/augmend-71119/utils"

	"github.com/google/uuid"
)

// Fixed daily goals.
const (
	GoalCalories = 2000.0
	GoalProteinG = 150.0
	GoalCarbsG   = 250.0
	GoalFatG     = 70.0
	GoalWaterML  = 2500.0
)

const (
	TrendBelow   = "below"
	TrendOnTrack = "on_track"
	TrendAbove   = "above"
)

type Progress struct {
	Consumed float64 `json:"consumed"`
	Goal     float64 `json:"goal"`
	Percent  float64 `json:"percent"` // capped at 100
	Trend    string  `json:"trend"`
}

type DailySummary struct {
	Date     string   `json:"date"`
	Calories Progress `json:"calories"`
	Protein  Progress `json:"protein"`
	Carbs    Progress `json:"carbs"`
	Fat      Progress `json:"fat"`
	Water    Progress `json:"water"`
	Meals    int      `json:"meals"`
}

func progress(consumed, goal float64) Progress {
	p := Progress{Consumed: utils.Round2(consumed), Goal: goal}
	if goal <= 0 {
		return p
	}
	pc := consumed * 100 / goal
	p.Percent = math.Min(100, math.Round(pc))
	// on track strictly between 90% and 110%
	switch {
	case pc >= 110:
		p.Trend = TrendAbove
	case pc > 90:
		p.Trend = TrendOnTrack
	default:
		p.Trend = TrendBelow
	}
	return p
}

func BuildDailySummary(day time.Time, meals []models.NutritionMeal, waterML int) *DailySummary {
	var cal, prot, carbs, fat float64
	for _, m := range meals {
		cal += m.TotalCalories
		prot += m.ProteinG
		carbs += m.CarbsG
		fat += m.FatG
	}
	return &DailySummary{
		Date:     day.Format(utils.DateLayout),
		Calories: progress(cal, GoalCalories),
		Protein:  progress(prot, GoalProteinG),
		Carbs:    progress(carbs, GoalCarbsG),
		Fat:      progress(fat, GoalFatG),
		Water:    progress(float64(waterML), GoalWaterML),
		Meals:    len(meals),
	}
}

// SummaryService aggregates the day's meals and water against the goals.
type SummaryService struct {
	meals *MealService
	water *WaterService
}

func NewSummaryService(meals *MealService, water *WaterService) *SummaryService {
	return &SummaryService{meals: meals, water: water}
}

func (s *SummaryService) Daily(ctx context.Context, userID uuid.UUID, day time.Time) (*DailySummary, []models.NutritionMeal, error) {
	meals, err := s.meals.ListByDay(ctx, userID, day)
	if err != nil {
		return nil, nil, err
	}
	water, err := s.water.TotalByDay(ctx, userID, day)
	if err != nil {
		return nil, nil, err
	}
	return BuildDailySummary(day, meals, water), meals, nil
}
