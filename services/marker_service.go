package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/brfrauches/augmend-71119/models"
	"github.com/brfrauches/augmend-71119/prompts"
	"github.com/brfrauches/augmend-71119/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MarkerService struct {
	db     *gorm.DB
	alerts *AlertBus
	log    *zap.Logger
}

func NewMarkerService(db *gorm.DB, alerts *AlertBus, log *zap.Logger) *MarkerService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MarkerService{db: db, alerts: alerts, log: log}
}

type CreateMarkerReq struct {
	Name         string   `json:"name"`
	Unit         string   `json:"unit"`
	MinReference *float64 `json:"min_reference"`
	MaxReference *float64 `json:"max_reference"`
	PersonalGoal *float64 `json:"personal_goal"`
	// optional first reading
	InitialValue *float64   `json:"initial_value"`
	InitialDate  *time.Time `json:"initial_date"`
}

type UpdateMarkerReq struct {
	Name         *string  `json:"name"`
	Unit         *string  `json:"unit"`
	MinReference *float64 `json:"min_reference"`
	MaxReference *float64 `json:"max_reference"`
	PersonalGoal *float64 `json:"personal_goal"`
	ClearGoal    bool     `json:"clear_goal"`
}

type AddValueReq struct {
	Value                    *float64   `json:"value"`
	MeasuredAt               *time.Time `json:"measured_at"`
	Notes                    string     `json:"notes"`
	SupplementInterventionID *uuid.UUID `json:"supplement_intervention_id"`
}

type MarkerSummary struct {
	models.HealthMarker
	LatestValue *models.MarkerValue `json:"latest_value"`
	Status      string              `json:"status"`
}

type MarkerDetail struct {
	Marker models.HealthMarker  `json:"marker"`
	Values []models.MarkerValue `json:"values"`
	Latest *models.MarkerValue  `json:"latest_value"`
	Status string               `json:"status"`
	Alerts []MarkerAlert        `json:"alerts"`
}

type ExamSummary struct {
	ExamDate    time.Time `json:"exam_date"`
	MarkerCount int       `json:"marker_count"`
}

type ExamEntry struct {
	ValueID    uuid.UUID `json:"value_id"`
	MarkerID   uuid.UUID `json:"marker_id"`
	MarkerName string    `json:"marker_name"`
	Unit       string    `json:"unit"`
	Value      float64   `json:"value"`
	MeasuredAt time.Time `json:"measured_at"`
	Status     string    `json:"status"`
}

func validateBounds(lo, hi, goal *float64) error {
	if err := nonNegative("min_reference", lo); err != nil {
		return err
	}
	if err := nonNegative("max_reference", hi); err != nil {
		return err
	}
	if err := nonNegative("personal_goal", goal); err != nil {
		return err
	}
	if lo != nil && hi != nil && *lo > *hi {
		return invalidf("min_reference must not exceed max_reference")
	}
	return nil
}

func (s *MarkerService) Create(ctx context.Context, userID uuid.UUID, req CreateMarkerReq) (*models.HealthMarker, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Unit = strings.TrimSpace(req.Unit)
	if req.Name == "" || req.Unit == "" {
		return nil, invalidf("name and unit are required")
	}
	if err := validateBounds(req.MinReference, req.MaxReference, req.PersonalGoal); err != nil {
		return nil, err
	}
	if err := nonNegative("initial_value", req.InitialValue); err != nil {
		return nil, err
	}

	marker := &models.HealthMarker{
		UserID:       userID,
		Name:         req.Name,
		Unit:         req.Unit,
		MinReference: req.MinReference,
		MaxReference: req.MaxReference,
		PersonalGoal: req.PersonalGoal,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.HealthMarker{}).
			Where("user_id = ? AND name = ?", userID, req.Name).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("marker %q: %w", req.Name, ErrConflict)
		}
		if err := tx.Create(marker).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("marker %q: %w", req.Name, ErrConflict)
			}
			return err
		}
		if req.InitialValue != nil {
			at := time.Now()
			if req.InitialDate != nil {
				at = *req.InitialDate
			}
			v := models.MarkerValue{MarkerID: marker.ID, Value: *req.InitialValue, MeasuredAt: at}
			if err := tx.Create(&v).Error; err != nil {
				return err
			}
			marker.Values = []models.MarkerValue{v}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return marker, nil
}

func (s *MarkerService) find(ctx context.Context, userID, id uuid.UUID) (*models.HealthMarker, error) {
	var m models.HealthMarker
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&m).Error; err != nil {
		return nil, notFound(err, "marker")
	}
	return &m, nil
}

func (s *MarkerService) List(ctx context.Context, userID uuid.UUID) ([]MarkerSummary, error) {
	var markers []models.HealthMarker
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&markers).Error; err != nil {
		return nil, err
	}
	if len(markers) == 0 {
		return []MarkerSummary{}, nil
	}

	ids := make([]uuid.UUID, len(markers))
	for i, m := range markers {
		ids[i] = m.ID
	}
	var values []models.MarkerValue
	if err := s.db.WithContext(ctx).
		Where("marker_id IN ?", ids).
		Find(&values).Error; err != nil {
		return nil, err
	}
	latest := LatestByMarker(values)

	out := make([]MarkerSummary, len(markers))
	for i := range markers {
		out[i] = MarkerSummary{HealthMarker: markers[i]}
		if v, ok := latest[markers[i].ID]; ok {
			out[i].LatestValue = &v
		}
		out[i].Status = MarkerStatus(&markers[i], out[i].LatestValue)
	}
	return out, nil
}

func (s *MarkerService) values(ctx context.Context, markerID uuid.UUID) ([]models.MarkerValue, error) {
	var values []models.MarkerValue
	err := s.db.WithContext(ctx).
		Where("marker_id = ?", markerID).
		Order("measured_at ASC, created_at ASC").
		Find(&values).Error
	return values, err
}

func (s *MarkerService) Get(ctx context.Context, userID, id uuid.UUID) (*MarkerDetail, error) {
	m, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	values, err := s.values(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	d := &MarkerDetail{Marker: *m, Values: values, Alerts: MarkerAlerts(m, values)}
	if len(values) > 0 {
		last := values[len(values)-1]
		d.Latest = &last
	}
	d.Status = MarkerStatus(m, d.Latest)
	return d, nil
}

func (s *MarkerService) Update(ctx context.Context, userID, id uuid.UUID, req UpdateMarkerReq) (*models.HealthMarker, error) {
	m, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalidf("name must not be empty")
		}
		if name != m.Name {
			var n int64
			if err := s.db.WithContext(ctx).Model(&models.HealthMarker{}).
				Where("user_id = ? AND name = ? AND id <> ?", userID, name, id).
				Count(&n).Error; err != nil {
				return nil, err
			}
			if n > 0 {
				return nil, fmt.Errorf("marker %q: %w", name, ErrConflict)
			}
		}
		m.Name = name
	}
	if req.Unit != nil {
		if strings.TrimSpace(*req.Unit) == "" {
			return nil, invalidf("unit must not be empty")
		}
		m.Unit = strings.TrimSpace(*req.Unit)
	}
	if req.MinReference != nil {
		m.MinReference = req.MinReference
	}
	if req.MaxReference != nil {
		m.MaxReference = req.MaxReference
	}
	if req.PersonalGoal != nil {
		m.PersonalGoal = req.PersonalGoal
	}
	if req.ClearGoal {
		m.PersonalGoal = nil
	}
	if err := validateBounds(m.MinReference, m.MaxReference, m.PersonalGoal); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(m).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("marker %q: %w", m.Name, ErrConflict)
		}
		return nil, err
	}
	return m, nil
}

// Delete removes the marker; its values go with it (FK cascade).
func (s *MarkerService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.HealthMarker{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("marker: %w", ErrNotFound)
	}
	return nil
}

func (s *MarkerService) AddValue(ctx context.Context, userID, markerID uuid.UUID, req AddValueReq) (*models.MarkerValue, error) {
	if req.Value == nil {
		return nil, invalidf("value is required")
	}
	if err := nonNegative("value", req.Value); err != nil {
		return nil, err
	}
	m, err := s.find(ctx, userID, markerID)
	if err != nil {
		return nil, err
	}
	if req.SupplementInterventionID != nil {
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.Supplement{}).
			Where("id = ? AND user_id = ?", *req.SupplementInterventionID, userID).
			Count(&n).Error; err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, fmt.Errorf("supplement: %w", ErrNotFound)
		}
	}

	v := &models.MarkerValue{
		MarkerID:                 m.ID,
		Value:                    *req.Value,
		MeasuredAt:               time.Now(),
		Notes:                    strings.TrimSpace(req.Notes),
		SupplementInterventionID: req.SupplementInterventionID,
	}
	if req.MeasuredAt != nil {
		v.MeasuredAt = *req.MeasuredAt
	}
	if err := s.db.WithContext(ctx).Create(v).Error; err != nil {
		return nil, err
	}

	s.checkAlerts(ctx, userID, m, v)
	return v, nil
}

// checkAlerts emits marker alerts when the new value is the latest reading.
func (s *MarkerService) checkAlerts(ctx context.Context, userID uuid.UUID, m *models.HealthMarker, added *models.MarkerValue) {
	if s.alerts == nil {
		return
	}
	values, err := s.values(ctx, m.ID)
	if err != nil {
		s.log.Warn("load values for alerts", zap.Error(err))
		return
	}
	if len(values) == 0 || values[len(values)-1].ID != added.ID {
		return
	}
	markerID := m.ID
	for _, a := range MarkerAlerts(m, values) {
		s.alerts.Emit(ctx, userID, a.Type, a.Message, &markerID)
	}
}

// evaluate runs the alert check for a value written elsewhere (imports).
func (s *MarkerService) evaluate(ctx context.Context, userID uuid.UUID, added *models.MarkerValue) {
	if s.alerts == nil {
		return
	}
	m, err := s.find(ctx, userID, added.MarkerID)
	if err != nil {
		s.log.Warn("load marker for alerts", zap.Error(err))
		return
	}
	s.checkAlerts(ctx, userID, m, added)
}

func markerValueFor(markerID uuid.UUID, value float64, at time.Time, source string) models.MarkerValue {
	notes := "Importado de exame"
	if source != "" {
		notes += ": " + source
	}
	return models.MarkerValue{MarkerID: markerID, Value: value, MeasuredAt: at, Notes: notes}
}

// DeleteValue removes exactly one reading of a marker the user owns.
func (s *MarkerService) DeleteValue(ctx context.Context, userID, markerID, valueID uuid.UUID) error {
	if _, err := s.find(ctx, userID, markerID); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Where("id = ? AND marker_id = ?", valueID, markerID).
		Delete(&models.MarkerValue{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("marker value: %w", ErrNotFound)
	}
	return nil
}

// Exams groups readings by the local day they were measured, the same
// day boundaries ExamByDate queries with.
func (s *MarkerService) Exams(ctx context.Context, userID uuid.UUID) ([]ExamSummary, error) {
	var taken []time.Time
	if err := s.db.WithContext(ctx).
		Table("health_marker_values AS v").
		Joins("JOIN health_markers m ON m.id = v.marker_id").
		Where("m.user_id = ?", userID).
		Pluck("v.measured_at", &taken).Error; err != nil {
		return nil, err
	}
	return GroupExamDays(taken, time.Local), nil
}

// GroupExamDays counts readings per calendar day in loc, newest day first.
func GroupExamDays(taken []time.Time, loc *time.Location) []ExamSummary {
	byDay := make(map[string]*ExamSummary)
	for _, t := range taken {
		day := utils.DayStart(t.In(loc))
		key := day.Format(utils.DateLayout)
		if e, ok := byDay[key]; ok {
			e.MarkerCount++
			continue
		}
		byDay[key] = &ExamSummary{ExamDate: day, MarkerCount: 1}
	}
	out := make([]ExamSummary, 0, len(byDay))
	for _, e := range byDay {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExamDate.After(out[j].ExamDate) })
	return out
}

func (s *MarkerService) ExamByDate(ctx context.Context, userID uuid.UUID, day time.Time) ([]ExamEntry, error) {
	var markers []models.HealthMarker
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&markers).Error; err != nil {
		return nil, err
	}
	if len(markers) == 0 {
		return []ExamEntry{}, nil
	}
	byID := make(map[uuid.UUID]*models.HealthMarker, len(markers))
	ids := make([]uuid.UUID, 0, len(markers))
	for i := range markers {
		byID[markers[i].ID] = &markers[i]
		ids = append(ids, markers[i].ID)
	}

	var values []models.MarkerValue
	if err := s.db.WithContext(ctx).
		Where("marker_id IN ? AND measured_at >= ? AND measured_at < ?", ids, utils.DayStart(day), utils.DayEnd(day)).
		Find(&values).Error; err != nil {
		return nil, err
	}

	out := make([]ExamEntry, 0, len(values))
	for i := range values {
		m := byID[values[i].MarkerID]
		out = append(out, ExamEntry{
			ValueID:    values[i].ID,
			MarkerID:   m.ID,
			MarkerName: m.Name,
			Unit:       m.Unit,
			Value:      values[i].Value,
			MeasuredAt: values[i].MeasuredAt,
			Status:     MarkerStatus(m, &values[i]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MarkerName < out[j].MarkerName })
	return out, nil
}

func (s *MarkerService) Catalog() []prompts.MarkerPreset {
	return prompts.Markers()
}

// findOrCreateMarkerTx matches markers by (user, name) for imports. The
// caller owns the transaction.
func findOrCreateMarkerTx(tx *gorm.DB, userID uuid.UUID, name, unit string, lo, hi *float64) (*models.HealthMarker, bool, error) {
	var m models.HealthMarker
	err := tx.Where("user_id = ? AND name = ?", userID, name).First(&m).Error
	if err == nil {
		return &m, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	m = models.HealthMarker{UserID: userID, Name: name, Unit: unit, MinReference: lo, MaxReference: hi}
	if err := tx.Create(&m).Error; err != nil {
		return nil, false, err
	}
	return &m, true, nil
}
