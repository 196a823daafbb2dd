package models

import (
	"time"

	"github.com/google/uuid"
)

type HealthMarker struct {
	Base
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_marker_user_name" json:"user_id"`
	Name         string    `gorm:"size:120;not null;uniqueIndex:idx_marker_user_name" json:"name"`
	Unit         string    `gorm:"size:32;not null" json:"unit"`
	MinReference *float64  `json:"min_reference"`
	MaxReference *float64  `json:"max_reference"`
	PersonalGoal *float64  `json:"personal_goal"`

	Values []MarkerValue `gorm:"foreignKey:MarkerID;constraint:OnDelete:CASCADE" json:"values,omitempty"`
}

func (HealthMarker) TableName() string { return "health_markers" }

type MarkerValue struct {
	Base
	MarkerID                 uuid.UUID  `gorm:"type:uuid;not null;index" json:"marker_id"`
	Value                    float64    `gorm:"not null" json:"value"`
	MeasuredAt               time.Time  `gorm:"not null;index" json:"measured_at"`
	Notes                    string     `gorm:"type:text" json:"notes"`
	SupplementInterventionID *uuid.UUID `gorm:"type:uuid" json:"supplement_intervention_id"`
}

func (MarkerValue) TableName() string { return "health_marker_values" }
