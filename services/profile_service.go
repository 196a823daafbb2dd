package services

import (
	"context"
	"errors"
	"strings"

	"github.com/brfrauches/augmend-71119/models"
	"github.com/brfrauches/augmend-71119/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileService struct {
	db    *gorm.DB
	files FileStore
}

func NewProfileService(db *gorm.DB, files FileStore) *ProfileService {
	return &ProfileService{db: db, files: files}
}

type UpdateProfileReq struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Avatar   string  `json:"avatar"` // base64 image
}

// Get returns the profile, creating an empty one on first access.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		p = models.Profile{ID: userID}
		if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
			return nil, err
		}
		return &p, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, req UpdateProfileReq) (*models.Profile, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.FullName != nil {
		p.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		p.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Avatar != "" {
		f, err := utils.DecodeBase64File(req.Avatar, "")
		if err != nil {
			return nil, invalidf("%v", err)
		}
		if !f.IsImage() {
			return nil, invalidf("avatar must be an image")
		}
		if s.files == nil {
			return nil, errors.New("file storage not configured")
		}
		url, err := s.files.Upload(ctx, f, "avatars", userID)
		if err != nil {
			return nil, err
		}
		p.AvatarURL = url
	}
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}
