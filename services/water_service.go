package services

import (
	"context"
	"fmt"
	"time"

	"github.com/brfrauches/augmend-71119/models"
	"github.com/brfrauches/augmend-71119/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WaterService struct{ db *gorm.DB }

func NewWaterService(db *gorm.DB) *WaterService { return &WaterService{db: db} }

type WaterReq struct {
	AmountML int        `json:"amount_ml"`
	LoggedAt *time.Time `json:"logged_at"`
}

func (s *WaterService) Log(ctx context.Context, userID uuid.UUID, req WaterReq) (*models.WaterLog, error) {
	if req.AmountML <= 0 {
		return nil, invalidf("amount_ml must be positive")
	}
	w := &models.WaterLog{UserID: userID, AmountML: req.AmountML, LoggedAt: time.Now()}
	if req.LoggedAt != nil {
		w.LoggedAt = *req.LoggedAt
	}
	if err := s.db.WithContext(ctx).Create(w).Error; err != nil {
		return nil, err
	}
	return w, nil
}

func (s *WaterService) ListByDay(ctx context.Context, userID uuid.UUID, day time.Time) ([]models.WaterLog, error) {
	var out []models.WaterLog
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND logged_at >= ? AND logged_at < ?", userID, utils.DayStart(day), utils.DayEnd(day)).
		Order("logged_at ASC").
		Find(&out).Error
	return out, err
}

// TotalByDay sums the day's intake in ml.
func (s *WaterService) TotalByDay(ctx context.Context, userID uuid.UUID, day time.Time) (int, error) {
	var total int
	err := s.db.WithContext(ctx).Model(&models.WaterLog{}).
		Select("COALESCE(SUM(amount_ml), 0)").
		Where("user_id = ? AND logged_at >= ? AND logged_at < ?", userID, utils.DayStart(day), utils.DayEnd(day)).
		Scan(&total).Error
	return total, err
}

func (s *WaterService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.WaterLog{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("water log: %w", ErrNotFound)
	}
	return nil
}
