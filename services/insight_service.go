package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brfrauches/augmend-71119/models"
	"github.com/brfrauches/augmend-71119/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AILogInsight        = "insight"
	AILogAlert          = "alert"
	AILogRecommendation = "recommendation"
)

// InsightService asks the assistant about the user's day and keeps the answers.
type InsightService struct {
	db       *gorm.DB
	ai       *AIGateway
	summary  *SummaryService
	workouts *WorkoutService
}

func NewInsightService(db *gorm.DB, ai *AIGateway, summary *SummaryService, workouts *WorkoutService) *InsightService {
	return &InsightService{db: db, ai: ai, summary: summary, workouts: workouts}
}

// dayContext is what the assistant sees about the user's day.
func (s *InsightService) dayContext(ctx context.Context, userID uuid.UUID, now time.Time) (map[string]any, error) {
	sum, meals, err := s.summary.Daily(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	checkins, err := s.workouts.CheckinsBetween(ctx, userID, utils.DayStart(now), utils.DayEnd(now))
	if err != nil {
		return nil, err
	}

	mealData := make([]map[string]any, 0, len(meals))
	for _, m := range meals {
		mealData = append(mealData, map[string]any{
			"name":      m.Name,
			"category":  m.Category,
			"calories":  m.TotalCalories,
			"protein_g": m.ProteinG,
			"carbs_g":   m.CarbsG,
			"fat_g":     m.FatG,
			"eaten_at":  m.EatenAt.Format("15:04"),
		})
	}
	return map[string]any{
		"current_hour":       now.Hour(),
		"summary":            sum,
		"meals":              mealData,
		"workouts_completed": len(checkins),
	}, nil
}

// Analyze runs the analyze-nutrition feature and records insights and alerts.
func (s *InsightService) Analyze(ctx context.Context, userID uuid.UUID, now time.Time) (*NutritionAnalysis, error) {
	data, err := s.dayContext(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	out, err := s.ai.AnalyzeNutrition(ctx, data)
	if err != nil {
		return nil, err
	}

	var logs []models.NutritionAILog
	add := func(typ string, texts []string) {
		for _, t := range texts {
			if t = strings.TrimSpace(t); t != "" {
				logs = append(logs, models.NutritionAILog{UserID: userID, Type: typ, SuggestionText: t})
			}
		}
	}
	add(AILogInsight, out.Insights)
	add(AILogAlert, out.Alerts)
	if len(logs) > 0 {
		if err := s.db.WithContext(ctx).Create(&logs).Error; err != nil {
			return nil, fmt.Errorf("save ai logs: %w", err)
		}
	}
	return out, nil
}

// SuggestMeal merges the caller's preferences (goal, restrictions...) with the day's context.
func (s *InsightService) SuggestMeal(ctx context.Context, userID uuid.UUID, prefs map[string]any, now time.Time) (*MealSuggestion, error) {
	data, err := s.dayContext(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	for k, v := range prefs {
		data[k] = v
	}
	out, err := s.ai.SuggestMeal(ctx, data)
	if err != nil {
		return nil, err
	}
	if out.Name != "" {
		log := models.NutritionAILog{UserID: userID, Type: AILogRecommendation, SuggestionText: out.Name + ": " + out.Reasoning}
		if err := s.db.WithContext(ctx).Create(&log).Error; err != nil {
			return nil, fmt.Errorf("save ai log: %w", err)
		}
	}
	return out, nil
}

func (s *InsightService) History(ctx context.Context, userID uuid.UUID, limit int) ([]models.NutritionAILog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []models.NutritionAILog
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
