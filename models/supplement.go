package models

import (
	"time"

	"github.com/google/uuid"
)

type Supplement struct {
	Base
	UserID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_supplement_user_name" json:"user_id"`
	Name           string     `gorm:"size:120;not null;uniqueIndex:idx_supplement_user_name" json:"name"`
	Dosage         string     `gorm:"size:80" json:"dosage"`
	Form           string     `gorm:"size:40" json:"form"`      // capsule, powder, drops...
	Frequency      string     `gorm:"size:80" json:"frequency"` // free text, e.g. "2x ao dia"
	StartDate      *time.Time `gorm:"type:date" json:"start_date"`
	EndDate        *time.Time `gorm:"type:date" json:"end_date"`
	IsActive       bool       `gorm:"not null" json:"is_active"`
	LinkedMarkerID *uuid.UUID `gorm:"type:uuid" json:"linked_marker_id"`
	Notes          string     `gorm:"type:text" json:"notes"`

	Logs []SupplementLog `gorm:"foreignKey:SupplementID;constraint:OnDelete:CASCADE" json:"logs,omitempty"`
}

type SupplementLog struct {
	Base
	SupplementID uuid.UUID `gorm:"type:uuid;not null;index" json:"supplement_id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	TakenAt      time.Time `gorm:"type:date;not null" json:"taken_at"`
	Dose         string    `gorm:"size:80" json:"dose"`
	Notes        string    `gorm:"type:text" json:"notes"`
}
