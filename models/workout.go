package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Workout struct {
	Base
	UserID            uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name              string         `gorm:"size:160;not null" json:"name"`
	Description       string         `gorm:"type:text" json:"description"`
	Category          string         `gorm:"size:40" json:"category"`         // strength, cardio, hiit, flexibility, mixed
	DifficultyLevel   string         `gorm:"size:20" json:"difficulty_level"` // beginner | intermediate | advanced
	EstimatedDuration int            `json:"estimated_duration"`              // minutes
	WeekDays          datatypes.JSON `json:"week_days"`                       // ["monday","wednesday"]
	IsTemplate        bool           `json:"is_template"`

	Exercises []WorkoutExercise `gorm:"foreignKey:WorkoutID;constraint:OnDelete:CASCADE" json:"exercises"`
}

type WorkoutExercise struct {
	Base
	WorkoutID  uuid.UUID `gorm:"type:uuid;not null;index" json:"workout_id"`
	Name       string    `gorm:"size:160;not null" json:"name"`
	Sets       int       `json:"sets"`
	Reps       string    `gorm:"size:40" json:"reps"` // "12" or "8-10"
	Load       *float64  `json:"load"`
	Notes      string    `gorm:"type:text" json:"notes"`
	OrderIndex int       `gorm:"not null" json:"order_index"`
}

type WorkoutCheckin struct {
	Base
	WorkoutID   uuid.UUID `gorm:"type:uuid;not null;index" json:"workout_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	CompletedAt time.Time `gorm:"not null;index" json:"completed_at"`
	Notes       string    `gorm:"type:text" json:"notes"`
}
