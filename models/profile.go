package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile shares its id with the auth subject.
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName  string    `gorm:"size:160" json:"full_name"`
	Phone     string    `gorm:"size:40" json:"phone"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
