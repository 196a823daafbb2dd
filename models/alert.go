package models

import "github.com/google/uuid"

type Alert struct {
	Base
	UserID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Type     string     `gorm:"size:20" json:"type"` // "warning" | "info"
	Message  string     `gorm:"type:text" json:"message"`
	MarkerID *uuid.UUID `gorm:"type:uuid;index" json:"marker_id"`
}
