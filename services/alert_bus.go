package services

import (
	"context"

	"github.com/brfrauches/augmend-71119/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notifier is what the alert bus needs from a push backend.
type Notifier interface {
	PushToUser(ctx context.Context, userID uuid.UUID, title, body string, data map[string]string)
}

// AlertBus stores an alert, then fans it out to open sockets and phones.
// A nil *AlertBus drops everything.
type AlertBus struct {
	db   *gorm.DB
	rt   *RealtimeHub
	push Notifier
	log  *zap.Logger
}

func NewAlertBus(db *gorm.DB, rt *RealtimeHub, push Notifier, log *zap.Logger) *AlertBus {
	if log == nil {
		log = zap.NewNop()
	}
	return &AlertBus{db: db, rt: rt, push: push, log: log}
}

func (b *AlertBus) Emit(ctx context.Context, userID uuid.UUID, typ, message string, markerID *uuid.UUID) {
	if b == nil {
		return
	}
	a := &models.Alert{UserID: userID, Type: typ, Message: message, MarkerID: markerID}
	if err := b.db.WithContext(ctx).Create(a).Error; err != nil {
		b.log.Warn("persist alert", zap.Error(err))
		return
	}

	if b.rt != nil {
		b.rt.Broadcast(userID, map[string]any{
			"kind":  "alert.created",
			"alert": a,
		})
	}
	if b.push != nil {
		b.push.PushToUser(ctx, userID, "Novo alerta", message, map[string]string{
			"type": typ, "alertId": a.ID.String(),
		})
	}
}

// Notify pushes without persisting (reminders).
func (b *AlertBus) Notify(ctx context.Context, userID uuid.UUID, title, message string, data map[string]string) {
	if b == nil {
		return
	}
	if b.rt != nil {
		b.rt.Broadcast(userID, map[string]any{"kind": "notification", "title": title, "message": message, "data": data})
	}
	if b.push != nil {
		b.push.PushToUser(ctx, userID, title, message, data)
	}
}

func (b *AlertBus) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Alert, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []models.Alert
	err := b.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
