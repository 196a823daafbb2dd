package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReminderService nudges users about supplements not yet logged today.
type ReminderService struct {
	supplements *SupplementService
	alerts      *AlertBus
	log         *zap.Logger
	cron        *cron.Cron
}

func NewReminderService(supplements *SupplementService, alerts *AlertBus, log *zap.Logger) *ReminderService {
	return &ReminderService{supplements: supplements, alerts: alerts, log: log, cron: cron.New()}
}

// Start schedules the reminder job with a five-field cron expression.
func (r *ReminderService) Start(schedule string) error {
	if _, err := r.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		n, err := r.SendReminders(ctx, time.Now())
		if err != nil {
			r.log.Error("supplement reminders failed", zap.Error(err))
			return
		}
		r.log.Info("supplement reminders sent", zap.Int("users", n))
	}); err != nil {
		return fmt.Errorf("schedule reminders %q: %w", schedule, err)
	}
	r.cron.Start()
	return nil
}

// Stop waits for a running job to finish.
func (r *ReminderService) Stop() {
	<-r.cron.Stop().Done()
}

// SendReminders notifies every user with pending supplements and returns how many were notified.
func (r *ReminderService) SendReminders(ctx context.Context, now time.Time) (int, error) {
	pending, err := r.supplements.PendingToday(ctx, now)
	if err != nil {
		return 0, err
	}
	for userID, sups := range pending {
		names := make([]string, len(sups))
		for i, s := range sups {
			names[i] = s.Name
		}
		msg := fmt.Sprintf("Não esqueça de registrar: %s", strings.Join(names, ", "))
		r.alerts.Notify(ctx, userID, "Lembrete de suplementos", msg, map[string]string{"type": "supplement_reminder"})
	}
	return len(pending), nil
}
