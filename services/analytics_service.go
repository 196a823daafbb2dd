package services

import (
	"context"
	"time"

	"github.com/brfrauches/augmend-71119/models"
	"github.com/brfrauches/augmend-71119/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AnalyticsService serves the dashboard aggregates over a date range.
type AnalyticsService struct {
	db       *gorm.DB
	workouts *WorkoutService
}

func NewAnalyticsService(db *gorm.DB, workouts *WorkoutService) *AnalyticsService {
	return &AnalyticsService{db: db, workouts: workouts}
}

// ---------- Summary ----------

type NutrAvg struct {
	AvgConsumed float64 `json:"avg_consumed"`
	AvgGoal     float64 `json:"avg_goal"`
	AvgPercent  float64 `json:"avg_percent"`
	Unit        string  `json:"unit"`
}

type DayNutrition struct {
	Date     string  `json:"date"`
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	WaterML  int     `json:"water_ml"`
	Meals    int     `json:"meals"`
}

type BodyTrend struct {
	Measurements int      `json:"measurements"`
	FirstWeight  float64  `json:"first_weight_kg"`
	LastWeight   float64  `json:"last_weight_kg"`
	WeightChange float64  `json:"weight_change_kg"`
	LatestIMC    *float64 `json:"latest_imc,omitempty"`
	IMCCategory  string   `json:"imc_category,omitempty"`
}

type AnalyticsSummary struct {
	Range struct {
		From string `json:"from"`
		To   string `json:"to"`
	} `json:"range"`

	Macros map[string]NutrAvg `json:"macros"` // calories, protein, carbs, fat
	Other  map[string]NutrAvg `json:"other"`  // hydration
	Days   []DayNutrition     `json:"days"`

	Body     *BodyTrend `json:"body,omitempty"`
	Training struct {
		Checkins   int `json:"checkins"`
		ActiveDays int `json:"active_days"`
	} `json:"training"`

	Metadata struct {
		DaysCounted        int  `json:"days_counted"`
		IncludeMissingDays bool `json:"include_missing_days"`
	} `json:"metadata"`
}

// NutritionByDay buckets meals and water logs by local calendar day.
func NutritionByDay(meals []models.NutritionMeal, water []models.WaterLog) map[string]*DayNutrition {
	idx := map[string]*DayNutrition{}
	get := func(t time.Time) *DayNutrition {
		key := t.Format(utils.DateLayout)
		d, ok := idx[key]
		if !ok {
			d = &DayNutrition{Date: key}
			idx[key] = d
		}
		return d
	}
	for _, m := range meals {
		d := get(m.EatenAt)
		d.Calories += m.TotalCalories
		d.ProteinG += m.ProteinG
		d.CarbsG += m.CarbsG
		d.FatG += m.FatG
		d.Meals++
	}
	for _, w := range water {
		get(w.LoggedAt).WaterML += w.AmountML
	}
	for _, d := range idx {
		d.Calories = utils.Round2(d.Calories)
		d.ProteinG = utils.Round2(d.ProteinG)
		d.CarbsG = utils.Round2(d.CarbsG)
		d.FatG = utils.Round2(d.FatG)
	}
	return idx
}

// BuildAnalyticsSummary averages daily nutrition over [from, to]. Without
// includeMissing only days with at least one record are counted.
func BuildAnalyticsSummary(from, to time.Time, meals []models.NutritionMeal, water []models.WaterLog, includeMissing bool) *AnalyticsSummary {
	idx := NutritionByDay(meals, water)

	var days []DayNutrition
	for d := utils.DayStart(from); !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(utils.DateLayout)
		if dn, ok := idx[key]; ok {
			days = append(days, *dn)
		} else if includeMissing {
			days = append(days, DayNutrition{Date: key})
		}
	}

	type acc struct{ sum, psum float64 }
	m := map[string]*acc{"calories": {}, "protein": {}, "carbs": {}, "fat": {}, "hydration": {}}
	for _, d := range days {
		for k, v := range map[string][2]float64{
			"calories":  {d.Calories, GoalCalories},
			"protein":   {d.ProteinG, GoalProteinG},
			"carbs":     {d.CarbsG, GoalCarbsG},
			"fat":       {d.FatG, GoalFatG},
			"hydration": {float64(d.WaterML), GoalWaterML},
		} {
			m[k].sum += v[0]
			m[k].psum += pct(v[0], v[1])
		}
	}
	n := len(days)
	nutr := func(k string, goal float64, unit string) NutrAvg {
		a := NutrAvg{AvgConsumed: avg(m[k].sum, n), AvgPercent: avg(m[k].psum, n), Unit: unit}
		if n > 0 {
			a.AvgGoal = goal
		}
		return a
	}

	out := &AnalyticsSummary{Days: days}
	if out.Days == nil {
		out.Days = []DayNutrition{}
	}
	out.Range.From = from.Format(utils.DateLayout)
	out.Range.To = to.Format(utils.DateLayout)
	out.Metadata.DaysCounted = n
	out.Metadata.IncludeMissingDays = includeMissing
	out.Macros = map[string]NutrAvg{
		"calories": nutr("calories", GoalCalories, "kcal"),
		"protein":  nutr("protein", GoalProteinG, "g"),
		"carbs":    nutr("carbs", GoalCarbsG, "g"),
		"fat":      nutr("fat", GoalFatG, "g"),
	}
	out.Other = map[string]NutrAvg{
		"hydration": nutr("hydration", GoalWaterML, "ml"),
	}
	return out
}

// BuildBodyTrend expects measurements ascending by measured_at.
func BuildBodyTrend(ms []models.BodyMeasurement) *BodyTrend {
	if len(ms) == 0 {
		return nil
	}
	first, last := ms[0], ms[len(ms)-1]
	t := &BodyTrend{
		Measurements: len(ms),
		FirstWeight:  first.WeightKg,
		LastWeight:   last.WeightKg,
		WeightChange: utils.Round2(last.WeightKg - first.WeightKg),
	}
	for i := len(ms) - 1; i >= 0; i-- {
		if ms[i].IMC != nil {
			t.LatestIMC = ms[i].IMC
			t.IMCCategory = utils.IMCCategory(*ms[i].IMC)
			break
		}
	}
	return t
}

func (s *AnalyticsService) load(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.NutritionMeal, []models.WaterLog, error) {
	lo, hi := utils.DayStart(from), utils.DayEnd(to)
	var meals []models.NutritionMeal
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND eaten_at >= ? AND eaten_at < ?", userID, lo, hi).
		Order("eaten_at ASC").
		Find(&meals).Error; err != nil {
		return nil, nil, err
	}
	var water []models.WaterLog
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND logged_at >= ? AND logged_at < ?", userID, lo, hi).
		Order("logged_at ASC").
		Find(&water).Error; err != nil {
		return nil, nil, err
	}
	return meals, water, nil
}

func (s *AnalyticsService) Summary(
	ctx context.Context, userID uuid.UUID, from, to time.Time, includeMissing bool,
) (*AnalyticsSummary, error) {
	if to.Before(from) {
		return nil, invalidf("`to` must be on/after `from`")
	}
	meals, water, err := s.load(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	out := BuildAnalyticsSummary(from, to, meals, water, includeMissing)

	var ms []models.BodyMeasurement
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND measured_at >= ? AND measured_at < ?", userID, utils.DayStart(from), utils.DayEnd(to)).
		Order("measured_at ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	out.Body = BuildBodyTrend(ms)

	if s.workouts != nil {
		checkins, err := s.workouts.CheckinsBetween(ctx, userID, utils.DayStart(from), utils.DayEnd(to))
		if err != nil {
			return nil, err
		}
		active := map[string]bool{}
		for _, c := range checkins {
			active[c.CompletedAt.Format(utils.DateLayout)] = true
		}
		out.Training.Checkins = len(checkins)
		out.Training.ActiveDays = len(active)
	}
	return out, nil
}

// ---------- Weekly Overview ----------

const (
	OverviewChart    = "chart"
	OverviewDetailed = "detailed"
)

type WeeklyOverviewResponse struct {
	WeekStart string `json:"week_start"`
	Mode      string `json:"mode"` // chart|detailed
	Days      any    `json:"days"`
}

type DayChart struct {
	Date        string             `json:"date"`
	Percentages map[string]float64 `json:"percentages"`
}

type Metric struct {
	Actual  float64 `json:"actual"`
	Target  float64 `json:"target"`
	Percent float64 `json:"percent"`
}

type DayDetailed struct {
	Date    string            `json:"date"`
	Metrics map[string]Metric `json:"metrics"`
}

func BuildWeeklyOverview(weekStart time.Time, mode string, meals []models.NutritionMeal, water []models.WaterLog) (*WeeklyOverviewResponse, error) {
	if mode != OverviewChart && mode != OverviewDetailed {
		return nil, invalidf("mode must be 'chart' or 'detailed'")
	}
	from := utils.StartOfWeek(weekStart)
	idx := NutritionByDay(meals, water)
	out := &WeeklyOverviewResponse{WeekStart: from.Format(utils.DateLayout), Mode: mode}

	charts := make([]DayChart, 0, 7)
	detailed := make([]DayDetailed, 0, 7)
	for i := 0; i < 7; i++ {
		key := from.AddDate(0, 0, i).Format(utils.DateLayout)
		dn := DayNutrition{Date: key}
		if d, ok := idx[key]; ok {
			dn = *d
		}
		if mode == OverviewChart {
			charts = append(charts, DayChart{
				Date: key,
				Percentages: map[string]float64{
					"calories":      pct(dn.Calories, GoalCalories),
					"protein":       pct(dn.ProteinG, GoalProteinG),
					"carbohydrates": pct(dn.CarbsG, GoalCarbsG),
					"fat":           pct(dn.FatG, GoalFatG),
					"hydration":     pct(float64(dn.WaterML), GoalWaterML),
				},
			})
			continue
		}
		detailed = append(detailed, DayDetailed{
			Date: key,
			Metrics: map[string]Metric{
				"calories":  {Actual: dn.Calories, Target: GoalCalories, Percent: pct(dn.Calories, GoalCalories)},
				"protein_g": {Actual: dn.ProteinG, Target: GoalProteinG, Percent: pct(dn.ProteinG, GoalProteinG)},
				"carbs_g":   {Actual: dn.CarbsG, Target: GoalCarbsG, Percent: pct(dn.CarbsG, GoalCarbsG)},
				"fat_g":     {Actual: dn.FatG, Target: GoalFatG, Percent: pct(dn.FatG, GoalFatG)},
				"water_ml":  {Actual: float64(dn.WaterML), Target: GoalWaterML, Percent: pct(float64(dn.WaterML), GoalWaterML)},
			},
		})
	}
	if mode == OverviewChart {
		out.Days = charts
	} else {
		out.Days = detailed
	}
	return out, nil
}

func (s *AnalyticsService) WeeklyOverview(
	ctx context.Context, userID uuid.UUID, weekStart time.Time, mode string,
) (*WeeklyOverviewResponse, error) {
	from := utils.StartOfWeek(weekStart)
	meals, water, err := s.load(ctx, userID, from, from.AddDate(0, 0, 6))
	if err != nil {
		return nil, err
	}
	return BuildWeeklyOverview(from, mode, meals, water)
}

// ---------- internals ----------

// pct is uncapped here; the daily summary caps its own percentages.
func pct(actual, goal float64) float64 {
	if goal <= 0 {
		if actual <= 0 {
			return 0
		}
		return 100
	}
	return utils.Round2((actual / goal) * 100.0)
}

func avg(sum float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return utils.Round2(sum / float64(n))
}
