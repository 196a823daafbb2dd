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

const DefaultMealCategory = "livre"

var mealCategories = map[string]bool{
	"cafe-manha": true, "lanche-manha": true, "almoco": true, "lanche-tarde": true, "jantar": true,
	"ceia": true, "pre-treino": true, "pos-treino": true, "livre": true,
}

type MealService struct {
	db    *gorm.DB
	files FileStore
}

func NewMealService(db *gorm.DB, files FileStore) *MealService {
	return &MealService{db: db, files: files}
}

type MealItemInput struct {
	Name     string   `json:"name"`
	Quantity string   `json:"quantity"`
	Calories *float64 `json:"calories"`
	ProteinG *float64 `json:"protein_g"`
	CarbsG   *float64 `json:"carbs_g"`
	FatG     *float64 `json:"fat_g"`
}

type MealInput struct {
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	EatenAt       *time.Time      `json:"eaten_at"`
	Notes         string          `json:"notes"`
	Image         string          `json:"image,omitempty"` // base64 photo, uploaded on create
	ImageURL      string          `json:"image_url"`
	IsAIGenerated bool            `json:"is_ai_generated"`
	Items         []MealItemInput `json:"items"`
}

type MacroTotals struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

func val(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// SumItems adds item macros; missing values count as zero.
func SumItems(items []MealItemInput) MacroTotals {
	var t MacroTotals
	for _, it := range items {
		t.Calories += val(it.Calories)
		t.ProteinG += val(it.ProteinG)
		t.CarbsG += val(it.CarbsG)
		t.FatG += val(it.FatG)
	}
	t.Calories = utils.Round2(t.Calories)
	t.ProteinG = utils.Round2(t.ProteinG)
	t.CarbsG = utils.Round2(t.CarbsG)
	t.FatG = utils.Round2(t.FatG)
	return t
}

func (in *MealInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalidf("name is required")
	}
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	if in.Category == "" {
		in.Category = DefaultMealCategory
	}
	if !mealCategories[in.Category] {
		return invalidf("invalid category %q", in.Category)
	}
	for i := range in.Items {
		it := &in.Items[i]
		it.Name = strings.TrimSpace(it.Name)
		if it.Name == "" {
			return invalidf("item %d: name is required", i+1)
		}
		for field, v := range map[string]*float64{
			"calories": it.Calories, "protein_g": it.ProteinG, "carbs_g": it.CarbsG, "fat_g": it.FatG,
		} {
			if err := nonNegative(fmt.Sprintf("item %d %s", i+1, field), v); err != nil {
				return err
			}
		}
	}
	return nil
}

// createMealTx writes the meal with totals derived from its items; in must be normalized.
func createMealTx(tx *gorm.DB, userID uuid.UUID, in MealInput) (*models.NutritionMeal, error) {
	totals := SumItems(in.Items)
	meal := &models.NutritionMeal{
		UserID:        userID,
		Name:          in.Name,
		Category:      in.Category,
		TotalCalories: totals.Calories,
		ProteinG:      totals.ProteinG,
		CarbsG:        totals.CarbsG,
		FatG:          totals.FatG,
		Notes:         in.Notes,
		ImageURL:      in.ImageURL,
		IsAIGenerated: in.IsAIGenerated,
		EatenAt:       time.Now(),
	}
	if in.EatenAt != nil {
		meal.EatenAt = *in.EatenAt
	}
	if err := tx.Omit("Items").Create(meal).Error; err != nil {
		return nil, err
	}

	meal.Items = make([]models.NutritionItem, len(in.Items))
	for i, it := range in.Items {
		meal.Items[i] = models.NutritionItem{
			MealID:   meal.ID,
			Name:     it.Name,
			Quantity: it.Quantity,
			Calories: val(it.Calories),
			ProteinG: val(it.ProteinG),
			CarbsG:   val(it.CarbsG),
			FatG:     val(it.FatG),
		}
	}
	if len(meal.Items) > 0 {
		if err := tx.Create(&meal.Items).Error; err != nil {
			return nil, err
		}
	}
	return meal, nil
}

func (s *MealService) Create(ctx context.Context, userID uuid.UUID, in MealInput) (*models.NutritionMeal, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if in.Image != "" {
		f, err := utils.DecodeBase64File(in.Image, "")
		if err != nil {
			return nil, invalidf("%v", err)
		}
		if !f.IsImage() {
			return nil, invalidf("meal photo must be an image")
		}
		if s.files != nil {
			url, err := s.files.Upload(ctx, f, "meals", userID)
			if err != nil {
				return nil, err
			}
			in.ImageURL = url
		}
	}

	var meal *models.NutritionMeal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		meal, err = createMealTx(tx, userID, in)
		return err
	})
	return meal, err
}

func (s *MealService) ListByDay(ctx context.Context, userID uuid.UUID, day time.Time) ([]models.NutritionMeal, error) {
	return s.ListByRange(ctx, userID, utils.DayStart(day), utils.DayEnd(day))
}

func (s *MealService) ListByRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.NutritionMeal, error) {
	var meals []models.NutritionMeal
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND eaten_at >= ? AND eaten_at < ?", userID, from, to).
		Order("eaten_at ASC").
		Find(&meals).Error
	return meals, err
}

func (s *MealService) Get(ctx context.Context, userID, id uuid.UUID) (*models.NutritionMeal, error) {
	var meal models.NutritionMeal
	if err := s.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", id, userID).
		First(&meal).Error; err != nil {
		return nil, notFound(err, "meal")
	}
	return &meal, nil
}

func (s *MealService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.NutritionMeal{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("meal: %w", ErrNotFound)
	}
	return nil
}

// MealInputFromEstimate converts an assistant estimate into a meal draft.
func MealInputFromEstimate(name, category string, est *MacroEstimate) MealInput {
	in := MealInput{Name: name, Category: category, IsAIGenerated: true}
	for _, it := range est.Items {
		in.Items = append(in.Items, MealItemInput{
			Name:     it.Name,
			Quantity: string(it.Quantity),
			Calories: it.Calories.Ptr(),
			ProteinG: it.ProteinG.Ptr(),
			CarbsG:   it.CarbsG.Ptr(),
			FatG:     it.FatG.Ptr(),
		})
	}
	// a bare total without items still becomes one line
	if len(in.Items) == 0 && est.TotalCalories.Valid {
		in.Items = []MealItemInput{{
			Name:     name,
			Calories: est.TotalCalories.Ptr(),
			ProteinG: est.ProteinG.Ptr(),
			CarbsG:   est.CarbsG.Ptr(),
			FatG:     est.FatG.Ptr(),
		}}
	}
	return in
}
