package models

import (
	"time"

	"github.com/google/uuid"
)

type BodyMeasurement struct {
	Base
	UserID             uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	MeasuredAt         time.Time `gorm:"not null;index" json:"measured_at"`
	WeightKg           float64   `gorm:"not null" json:"weight_kg"`
	HeightM            *float64  `json:"height_m"`
	IMC                *float64  `gorm:"column:imc" json:"imc"`
	FatPercent         *float64  `json:"fat_percent"`
	FatWeightKg        *float64  `json:"fat_weight_kg"`
	LeanMassKg         *float64  `json:"lean_mass_kg"`
	WaterPercent       *float64  `json:"water_percent"`
	BasalMetabolicRate *float64  `json:"basal_metabolic_rate"` // kcal
	AttachmentURL      string    `json:"attachment_url"`
	Notes              string    `gorm:"type:text" json:"notes"`

	Segments []BodySegment `gorm:"foreignKey:MeasurementID;constraint:OnDelete:CASCADE" json:"segments"`
}

type BodySegment struct {
	Base
	MeasurementID uuid.UUID `gorm:"type:uuid;not null;index" json:"measurement_id"`
	Region        string    `gorm:"size:20;not null" json:"region"` // right_arm, left_arm, trunk, abdomen, right_thigh, left_thigh, calves
	LeanMassKg    *float64  `json:"lean_mass_kg"`
	FatMassKg     *float64  `json:"fat_mass_kg"`
}
