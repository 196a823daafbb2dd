package models

import (
	"time"

	"github.com/google/uuid"
)

type NutritionMeal struct {
	Base
	UserID        uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name          string    `gorm:"size:160;not null" json:"name"`
	Category      string    `gorm:"size:20" json:"category"` // cafe-manha, lanche-manha, almoco, lanche-tarde, jantar, ceia, pre-treino, pos-treino, livre
	TotalCalories float64   `json:"total_calories"`
	ProteinG      float64   `json:"protein_g"`
	CarbsG        float64   `json:"carbs_g"`
	FatG          float64   `json:"fat_g"`
	Notes         string    `gorm:"type:text" json:"notes"`
	ImageURL      string    `json:"image_url"`
	IsAIGenerated bool      `json:"is_ai_generated"`
	EatenAt       time.Time `gorm:"not null;index" json:"eaten_at"`

	Items []NutritionItem `gorm:"foreignKey:MealID;constraint:OnDelete:CASCADE" json:"items"`
}

type NutritionItem struct {
	Base
	MealID   uuid.UUID `gorm:"type:uuid;not null;index" json:"meal_id"`
	Name     string    `gorm:"size:160;not null" json:"name"`
	Quantity string    `gorm:"size:60" json:"quantity"` // "150g", "1 xícara"
	Calories float64   `json:"calories"`
	ProteinG float64   `json:"protein_g"`
	CarbsG   float64   `json:"carbs_g"`
	FatG     float64   `json:"fat_g"`
}

// NutritionAILog keeps what the assistant told the user.
type NutritionAILog struct {
	Base
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Type           string    `gorm:"size:20" json:"type"` // insight | alert | recommendation
	SuggestionText string    `gorm:"type:text" json:"suggestion_text"`
}

func (NutritionAILog) TableName() string { return "nutrition_ai_logs" }

type WaterLog struct {
	Base
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	AmountML int       `gorm:"not null" json:"amount_ml"`
	LoggedAt time.Time `gorm:"not null;index" json:"logged_at"`
}
