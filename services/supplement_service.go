package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/brfrauches/augmend-71119/models"
	"github.com/brfrauches/augmend-71119/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupplementService struct{ db *gorm.DB }

func NewSupplementService(db *gorm.DB) *SupplementService { return &SupplementService{db: db} }

type SupplementInput struct {
	Name           string     `json:"name"`
	Dosage         string     `json:"dosage"`
	Form           string     `json:"form"`
	Frequency      string     `json:"frequency"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	IsActive       *bool      `json:"is_active"`
	LinkedMarkerID *uuid.UUID `json:"linked_marker_id"`
	Notes          string     `json:"notes"`
}

type LogUsageReq struct {
	Dates []string `json:"dates"` // YYYY-MM-DD, one or many
	Dose  string   `json:"dose"`
	Notes string   `json:"notes"`
}

type DayUsage struct {
	Date     string `json:"date"`
	HasUsage bool   `json:"has_usage"`
}

type WeeklyUsage struct {
	Days      []DayUsage `json:"days"`
	DaysTaken int        `json:"days_taken"`
	Adherence int        `json:"adherence"` // percent of the last 7 days
}

const (
	FilterActive   = "active"
	FilterFinished = "finished"
	FilterAll      = "all"
)

func (s *SupplementService) validate(ctx context.Context, userID uuid.UUID, in *SupplementInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalidf("name is required")
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return invalidf("end_date must not be before start_date")
	}
	if in.LinkedMarkerID != nil {
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.HealthMarker{}).
			Where("id = ? AND user_id = ?", *in.LinkedMarkerID, userID).
			Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("linked marker: %w", ErrNotFound)
		}
	}
	return nil
}

func (s *SupplementService) nameTaken(ctx context.Context, userID uuid.UUID, name string, except *uuid.UUID) (bool, error) {
	q := s.db.WithContext(ctx).Model(&models.Supplement{}).Where("user_id = ? AND name = ?", userID, name)
	if except != nil {
		q = q.Where("id <> ?", *except)
	}
	var n int64
	err := q.Count(&n).Error
	return n > 0, err
}

func (s *SupplementService) Create(ctx context.Context, userID uuid.UUID, in SupplementInput) (*models.Supplement, error) {
	if err := s.validate(ctx, userID, &in); err != nil {
		return nil, err
	}
	taken, err := s.nameTaken(ctx, userID, in.Name, nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("supplement %q: %w", in.Name, ErrConflict)
	}

	sup := &models.Supplement{
		UserID:         userID,
		Name:           in.Name,
		Dosage:         in.Dosage,
		Form:           in.Form,
		Frequency:      in.Frequency,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		IsActive:       in.IsActive == nil || *in.IsActive,
		LinkedMarkerID: in.LinkedMarkerID,
		Notes:          in.Notes,
	}
	if err := s.db.WithContext(ctx).Create(sup).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("supplement %q: %w", in.Name, ErrConflict)
		}
		return nil, err
	}
	return sup, nil
}

func (s *SupplementService) find(ctx context.Context, userID, id uuid.UUID) (*models.Supplement, error) {
	var sup models.Supplement
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&sup).Error; err != nil {
		return nil, notFound(err, "supplement")
	}
	return &sup, nil
}

// List filters by active flag: "active", "finished" or "all".
func (s *SupplementService) List(ctx context.Context, userID uuid.UUID, filter string) ([]models.Supplement, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	switch filter {
	case FilterActive:
		q = q.Where("is_active = ?", true)
	case FilterFinished:
		q = q.Where("is_active = ?", false)
	case FilterAll, "":
	default:
		return nil, invalidf("unknown filter %q", filter)
	}
	var out []models.Supplement
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}

func (s *SupplementService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Supplement, error) {
	var sup models.Supplement
	if err := s.db.WithContext(ctx).
		Preload("Logs", func(db *gorm.DB) *gorm.DB { return db.Order("taken_at DESC") }).
		Where("id = ? AND user_id = ?", id, userID).
		First(&sup).Error; err != nil {
		return nil, notFound(err, "supplement")
	}
	return &sup, nil
}

func (s *SupplementService) Update(ctx context.Context, userID, id uuid.UUID, in SupplementInput) (*models.Supplement, error) {
	sup, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, userID, &in); err != nil {
		return nil, err
	}
	if in.Name != sup.Name {
		taken, err := s.nameTaken(ctx, userID, in.Name, &id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("supplement %q: %w", in.Name, ErrConflict)
		}
	}
	sup.Name = in.Name
	sup.Dosage = in.Dosage
	sup.Form = in.Form
	sup.Frequency = in.Frequency
	sup.StartDate = in.StartDate
	sup.EndDate = in.EndDate
	sup.LinkedMarkerID = in.LinkedMarkerID
	sup.Notes = in.Notes
	if in.IsActive != nil {
		sup.IsActive = *in.IsActive
	}
	if err := s.db.WithContext(ctx).Save(sup).Error; err != nil {
		return nil, err
	}
	return sup, nil
}

func (s *SupplementService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Supplement{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("supplement: %w", ErrNotFound)
	}
	return nil
}

func (s *SupplementService) Toggle(ctx context.Context, userID, id uuid.UUID) (*models.Supplement, error) {
	sup, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	sup.IsActive = !sup.IsActive
	if err := s.db.WithContext(ctx).Model(sup).Update("is_active", sup.IsActive).Error; err != nil {
		return nil, err
	}
	return sup, nil
}

// LogUsage records one usage row per date. Dose defaults to the dosage.
func (s *SupplementService) LogUsage(ctx context.Context, userID, id uuid.UUID, req LogUsageReq) ([]models.SupplementLog, error) {
	if len(req.Dates) == 0 {
		return nil, invalidf("at least one date is required")
	}
	sup, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	dose := strings.TrimSpace(req.Dose)
	if dose == "" {
		dose = sup.Dosage
	}

	logs := make([]models.SupplementLog, 0, len(req.Dates))
	seen := map[string]bool{}
	for _, d := range req.Dates {
		day, err := time.ParseInLocation(utils.DateLayout, strings.TrimSpace(d), time.Local)
		if err != nil {
			return nil, invalidf("invalid date %q", d)
		}
		key := day.Format(utils.DateLayout)
		if seen[key] {
			continue
		}
		seen[key] = true
		logs = append(logs, models.SupplementLog{
			SupplementID: sup.ID,
			UserID:       userID,
			TakenAt:      day,
			Dose:         dose,
			Notes:        req.Notes,
		})
	}
	if err := s.db.WithContext(ctx).Create(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *SupplementService) DeleteLog(ctx context.Context, userID, supplementID, logID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND supplement_id = ? AND user_id = ?", logID, supplementID, userID).
		Delete(&models.SupplementLog{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("supplement log: %w", ErrNotFound)
	}
	return nil
}

// Weekly reports the last seven days ending today. supplementID nil means
// any supplement counts.
func (s *SupplementService) Weekly(ctx context.Context, userID uuid.UUID, supplementID *uuid.UUID, now time.Time) (*WeeklyUsage, error) {
	if supplementID != nil {
		if _, err := s.find(ctx, userID, *supplementID); err != nil {
			return nil, err
		}
	}
	from := utils.DayStart(now).AddDate(0, 0, -6).Format(utils.DateLayout)
	q := s.db.WithContext(ctx).Model(&models.SupplementLog{}).
		Where("user_id = ? AND taken_at >= ?", userID, from)
	if supplementID != nil {
		q = q.Where("supplement_id = ?", *supplementID)
	}
	var taken []time.Time
	if err := q.Pluck("taken_at", &taken).Error; err != nil {
		return nil, err
	}
	return BuildWeeklyUsage(taken, now), nil
}

func BuildWeeklyUsage(taken []time.Time, now time.Time) *WeeklyUsage {
	set := make(map[string]bool, len(taken))
	for _, t := range taken {
		set[t.Format(utils.DateLayout)] = true
	}
	today := utils.DayStart(now)
	out := &WeeklyUsage{Days: make([]DayUsage, 0, 7)}
	for i := 6; i >= 0; i-- {
		d := today.AddDate(0, 0, -i).Format(utils.DateLayout)
		has := set[d]
		if has {
			out.DaysTaken++
		}
		out.Days = append(out.Days, DayUsage{Date: d, HasUsage: has})
	}
	out.Adherence = int(math.Round(float64(out.DaysTaken) / 7 * 100))
	return out
}

// PendingToday lists active supplements without a usage row for today,
// grouped by owner. Used by the reminder job. Date columns are compared
// against the local calendar day, not a timestamp.
func (s *SupplementService) PendingToday(ctx context.Context, now time.Time) (map[uuid.UUID][]models.Supplement, error) {
	today := now.Format(utils.DateLayout)
	var sups []models.Supplement
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("(start_date IS NULL OR start_date <= ?) AND (end_date IS NULL OR end_date >= ?)", today, today).
		Where("NOT EXISTS (SELECT 1 FROM supplement_logs l WHERE l.supplement_id = supplements.id AND l.taken_at = ?)", today).
		Find(&sups).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID][]models.Supplement)
	for _, sup := range sups {
		out[sup.UserID] = append(out[sup.UserID], sup)
	}
	return out, nil
}
