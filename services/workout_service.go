package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/brfrauches/augmend-71119/models"
	"github.com/brfrauches/augmend-71119/prompts"
	"github.com/brfrauches/augmend-71119/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var weekDayNames = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

type WorkoutService struct{ db *gorm.DB }

func NewWorkoutService(db *gorm.DB) *WorkoutService { return &WorkoutService{db: db} }

type ExerciseInput struct {
	Name  string   `json:"name"`
	Sets  int      `json:"sets"`
	Reps  string   `json:"reps"`
	Load  *float64 `json:"load"`
	Notes string   `json:"notes"`
}

type WorkoutInput struct {
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Category          string          `json:"category"`
	DifficultyLevel   string          `json:"difficulty_level"`
	EstimatedDuration int             `json:"estimated_duration"`
	WeekDays          []string        `json:"week_days"`
	Exercises         []ExerciseInput `json:"exercises"`
}

type CheckinReq struct {
	CompletedAt *time.Time `json:"completed_at"`
	Notes       string     `json:"notes"`
}

type ConsistencyDay struct {
	Date      string `json:"date"`
	Weekday   string `json:"weekday"`
	Completed bool   `json:"completed"`
	Checkins  int    `json:"checkins"`
}

type WeeklyConsistency struct {
	WeekStart      string           `json:"week_start"`
	Days           []ConsistencyDay `json:"days"`
	CompletedDays  int              `json:"completed_days"`
	TotalCheckins  int              `json:"total_checkins"`
	PlannedDays    int              `json:"planned_days"`
	ConsistencyPct int              `json:"consistency_pct"`
}

func (in *WorkoutInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalidf("name is required")
	}
	if in.EstimatedDuration < 0 {
		return invalidf("estimated_duration must not be negative")
	}
	days := make([]string, 0, len(in.WeekDays))
	seen := map[string]bool{}
	for _, d := range in.WeekDays {
		d = strings.ToLower(strings.TrimSpace(d))
		if !validWeekDay(d) {
			return invalidf("invalid week day %q", d)
		}
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	in.WeekDays = days
	for i := range in.Exercises {
		ex := &in.Exercises[i]
		ex.Name = strings.TrimSpace(ex.Name)
		if ex.Name == "" {
			return invalidf("exercise %d: name is required", i+1)
		}
		if ex.Sets < 0 {
			return invalidf("exercise %d: sets must not be negative", i+1)
		}
		if err := nonNegative(fmt.Sprintf("exercise %d load", i+1), ex.Load); err != nil {
			return err
		}
	}
	return nil
}

func validWeekDay(d string) bool {
	for _, n := range weekDayNames {
		if n == d {
			return true
		}
	}
	return false
}

func exercisesFrom(workoutID uuid.UUID, in []ExerciseInput) []models.WorkoutExercise {
	out := make([]models.WorkoutExercise, len(in))
	for i, ex := range in {
		out[i] = models.WorkoutExercise{
			WorkoutID:  workoutID,
			Name:       ex.Name,
			Sets:       ex.Sets,
			Reps:       ex.Reps,
			Load:       ex.Load,
			Notes:      ex.Notes,
			OrderIndex: i,
		}
	}
	return out
}

func weekDaysJSON(days []string) datatypes.JSON {
	if days == nil {
		days = []string{}
	}
	raw, _ := json.Marshal(days)
	return datatypes.JSON(raw)
}

// createWorkoutTx writes a workout and its exercises; in must be normalized.
func createWorkoutTx(tx *gorm.DB, userID uuid.UUID, in WorkoutInput) (*models.Workout, error) {
	w := &models.Workout{
		UserID:            userID,
		Name:              in.Name,
		Description:       in.Description,
		Category:          in.Category,
		DifficultyLevel:   in.DifficultyLevel,
		EstimatedDuration: in.EstimatedDuration,
		WeekDays:          weekDaysJSON(in.WeekDays),
	}
	if err := tx.Omit("Exercises").Create(w).Error; err != nil {
		return nil, err
	}
	w.Exercises = exercisesFrom(w.ID, in.Exercises)
	if len(w.Exercises) > 0 {
		if err := tx.Create(&w.Exercises).Error; err != nil {
			return nil, err
		}
	}
	return w, nil
}

func (s *WorkoutService) Create(ctx context.Context, userID uuid.UUID, in WorkoutInput) (*models.Workout, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	var w *models.Workout
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		w, err = createWorkoutTx(tx, userID, in)
		return err
	})
	return w, err
}

func byOrderIndex(db *gorm.DB) *gorm.DB { return db.Order("order_index ASC") }

func (s *WorkoutService) List(ctx context.Context, userID uuid.UUID) ([]models.Workout, error) {
	var out []models.Workout
	err := s.db.WithContext(ctx).
		Preload("Exercises", byOrderIndex).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (s *WorkoutService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Workout, error) {
	var w models.Workout
	if err := s.db.WithContext(ctx).
		Preload("Exercises", byOrderIndex).
		Where("id = ? AND user_id = ?", id, userID).
		First(&w).Error; err != nil {
		return nil, notFound(err, "workout")
	}
	return &w, nil
}

// Update replaces the workout fields and its whole exercise list.
func (s *WorkoutService) Update(ctx context.Context, userID, id uuid.UUID, in WorkoutInput) (*models.Workout, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	var w models.Workout
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&w).Error; err != nil {
			return notFound(err, "workout")
		}
		w.Name = in.Name
		w.Description = in.Description
		w.Category = in.Category
		w.DifficultyLevel = in.DifficultyLevel
		w.EstimatedDuration = in.EstimatedDuration
		w.WeekDays = weekDaysJSON(in.WeekDays)
		if err := tx.Omit("Exercises").Save(&w).Error; err != nil {
			return err
		}
		if err := tx.Where("workout_id = ?", w.ID).Delete(&models.WorkoutExercise{}).Error; err != nil {
			return err
		}
		w.Exercises = exercisesFrom(w.ID, in.Exercises)
		if len(w.Exercises) > 0 {
			return tx.Create(&w.Exercises).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *WorkoutService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Workout{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("workout: %w", ErrNotFound)
	}
	return nil
}

func (s *WorkoutService) Templates() []prompts.WorkoutPreset {
	return prompts.Workouts()
}

// TemplateInput turns a built-in template into a workout draft.
func TemplateInput(p prompts.WorkoutPreset) WorkoutInput {
	in := WorkoutInput{
		Name:              p.Name,
		Description:       p.Description,
		Category:          p.Category,
		DifficultyLevel:   p.Difficulty,
		EstimatedDuration: p.Duration,
		WeekDays:          append([]string(nil), p.WeekDays...),
	}
	for _, ex := range p.Exercises {
		in.Exercises = append(in.Exercises, ExerciseInput{Name: ex.Name, Sets: ex.Sets, Reps: ex.Reps, Notes: ex.Notes})
	}
	return in
}

// UseTemplate copies template number index into the user's workouts.
func (s *WorkoutService) UseTemplate(ctx context.Context, userID uuid.UUID, index int) (*models.Workout, error) {
	tpls := s.Templates()
	if index < 0 || index >= len(tpls) {
		return nil, fmt.Errorf("template: %w", ErrNotFound)
	}
	return s.Create(ctx, userID, TemplateInput(tpls[index]))
}

func (s *WorkoutService) Checkin(ctx context.Context, userID, workoutID uuid.UUID, req CheckinReq) (*models.WorkoutCheckin, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Workout{}).
		Where("id = ? AND user_id = ?", workoutID, userID).
		Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("workout: %w", ErrNotFound)
	}
	c := &models.WorkoutCheckin{
		WorkoutID:   workoutID,
		UserID:      userID,
		CompletedAt: time.Now(),
		Notes:       strings.TrimSpace(req.Notes),
	}
	if req.CompletedAt != nil {
		c.CompletedAt = *req.CompletedAt
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (s *WorkoutService) Checkins(ctx context.Context, userID, workoutID uuid.UUID) ([]models.WorkoutCheckin, error) {
	var out []models.WorkoutCheckin
	err := s.db.WithContext(ctx).
		Where("workout_id = ? AND user_id = ?", workoutID, userID).
		Order("completed_at DESC").
		Find(&out).Error
	return out, err
}

// CheckinsBetween returns the user's check-ins in [from, to).
func (s *WorkoutService) CheckinsBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.WorkoutCheckin, error) {
	var out []models.WorkoutCheckin
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND completed_at >= ? AND completed_at < ?", userID, from, to).
		Order("completed_at ASC").
		Find(&out).Error
	return out, err
}

// Weekly reports the Sunday-start week containing now.
func (s *WorkoutService) Weekly(ctx context.Context, userID uuid.UUID, now time.Time) (*WeeklyConsistency, error) {
	start := utils.StartOfWeek(now)
	checkins, err := s.CheckinsBetween(ctx, userID, start, start.AddDate(0, 0, 7))
	if err != nil {
		return nil, err
	}
	var workouts []models.Workout
	if err := s.db.WithContext(ctx).
		Select("id", "week_days").
		Where("user_id = ?", userID).
		Find(&workouts).Error; err != nil {
		return nil, err
	}
	return BuildWeeklyConsistency(start, checkins, workouts), nil
}

func BuildWeeklyConsistency(weekStart time.Time, checkins []models.WorkoutCheckin, workouts []models.Workout) *WeeklyConsistency {
	out := &WeeklyConsistency{WeekStart: weekStart.Format(utils.DateLayout), Days: make([]ConsistencyDay, 7)}
	for i := 0; i < 7; i++ {
		d := weekStart.AddDate(0, 0, i)
		out.Days[i] = ConsistencyDay{Date: d.Format(utils.DateLayout), Weekday: weekDayNames[d.Weekday()]}
	}
	for _, c := range checkins {
		at := c.CompletedAt.In(weekStart.Location())
		idx := int(math.Round(utils.DayStart(at).Sub(weekStart).Hours() / 24))
		if idx < 0 || idx > 6 {
			continue
		}
		out.Days[idx].Checkins++
		out.Days[idx].Completed = true
		out.TotalCheckins++
	}
	// planned sessions: every scheduled day of every workout counts
	for _, w := range workouts {
		var days []string
		if len(w.WeekDays) > 0 {
			_ = json.Unmarshal(w.WeekDays, &days)
		}
		out.PlannedDays += len(days)
	}
	for _, d := range out.Days {
		if d.Completed {
			out.CompletedDays++
		}
	}
	if out.PlannedDays > 0 {
		pct := out.CompletedDays * 100 / out.PlannedDays
		if pct > 100 {
			pct = 100
		}
		out.ConsistencyPct = pct
	}
	return out
}
