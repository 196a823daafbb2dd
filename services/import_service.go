package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brfrauches/augmend-71119/metrics"
	"github.com/brfrauches/augmend-71119/models"
	"github.com/brfrauches/augmend-71119/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ImportKind string

const (
	ImportExam    ImportKind = "exam"
	ImportWorkout ImportKind = "workout"
	ImportMeal    ImportKind = "meal"

	DefaultImportTTL = 30 * time.Minute
)

// StagedMarker is one exam reading waiting for review.
type StagedMarker struct {
	Name           string   `json:"marker_name"`
	Value          *float64 `json:"value"`
	Unit           string   `json:"unit"`
	ReferenceRange string   `json:"reference_range"`
	AnaRef         string   `json:"ana_ref"` // NORMAL | LOW | HIGH | UNKNOWN
}

// StagedImport is extracted data that has not touched the database yet.
type StagedImport struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Kind      ImportKind     `json:"kind"`
	Source    string         `json:"source"` // filename or prompt
	FileURL   string         `json:"file_url,omitempty"`
	ExamDate  string         `json:"exam_date,omitempty"`
	Markers   []StagedMarker `json:"markers,omitempty"`
	Workout   *WorkoutInput  `json:"workout,omitempty"`
	Meal      *MealInput     `json:"meal,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`
}

type ExamUploadReq struct {
	File     string `json:"file"` // data URI or bare base64
	Filename string `json:"filename"`
	ExamDate string `json:"exam_date"` // YYYY-MM-DD, defaults to today
}

type MealStageReq struct {
	Description string `json:"description"`
	Image       string `json:"image"` // base64 photo
	Name        string `json:"name"`
	Category    string `json:"category"`
}

type CommitResult struct {
	ImportID       uuid.UUID  `json:"import_id"`
	Kind           ImportKind `json:"kind"`
	MarkersCreated int        `json:"markers_created,omitempty"`
	ValuesCreated  int        `json:"values_created,omitempty"`
	WorkoutID      *uuid.UUID `json:"workout_id,omitempty"`
	MealID         *uuid.UUID `json:"meal_id,omitempty"`
}

type ImportService struct {
	db      *gorm.DB
	ai      *AIGateway
	store   StagingStore
	files   FileStore
	vision  FoodDetector
	markers *MarkerService
	ttl     time.Duration
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

type ImportDeps struct {
	DB      *gorm.DB
	AI      *AIGateway
	Store   StagingStore
	Files   FileStore    // optional
	Vision  FoodDetector // optional
	Markers *MarkerService
	TTL     time.Duration
	Metrics *metrics.Metrics
	Log     *zap.Logger
}

func NewImportService(d ImportDeps) *ImportService {
	if d.TTL <= 0 {
		d.TTL = DefaultImportTTL
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &ImportService{
		db: d.DB, ai: d.AI, store: d.Store, files: d.Files, vision: d.Vision,
		markers: d.Markers, ttl: d.TTL, metrics: d.Metrics, log: d.Log, now: time.Now,
	}
}

func (s *ImportService) newImport(userID uuid.UUID, kind ImportKind, source string) *StagedImport {
	now := s.now()
	return &StagedImport{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		Source:    source,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
}

func (s *ImportService) save(ctx context.Context, imp *StagedImport) error {
	imp.ExpiresAt = s.now().Add(s.ttl)
	return s.store.Save(ctx, imp, s.ttl)
}

// StageMarkers turns extracted markers into reviewable candidates.
func StageMarkers(in []ExtractedMarker) []StagedMarker {
	out := make([]StagedMarker, 0, len(in))
	for _, m := range in {
		sm := StagedMarker{
			Name:           strings.TrimSpace(m.Name),
			Value:          m.Value.Ptr(),
			Unit:           strings.TrimSpace(m.Unit),
			ReferenceRange: strings.TrimSpace(m.ReferenceRange),
		}
		sm.AnaRef = anaRef(m.AnaRef, sm.Value, sm.ReferenceRange)
		out = append(out, sm)
	}
	return out
}

// StageExam extracts markers from an exam file. The file is only uploaded
// once extraction succeeded.
func (s *ImportService) StageExam(ctx context.Context, userID uuid.UUID, req ExamUploadReq) (*StagedImport, error) {
	examDate := strings.TrimSpace(req.ExamDate)
	if examDate == "" {
		examDate = s.now().Format(utils.DateLayout)
	} else if _, err := time.Parse(utils.DateLayout, examDate); err != nil {
		return nil, invalidf("invalid exam_date %q", req.ExamDate)
	}
	f, err := utils.DecodeBase64File(req.File, req.Filename)
	if err != nil {
		return nil, invalidf("%v", err)
	}

	extracted, err := s.ai.ExtractExamMarkers(ctx, f.DataURI())
	if err != nil {
		s.metrics.RecordImport(string(ImportExam), "failed")
		return nil, err
	}

	imp := s.newImport(userID, ImportExam, req.Filename)
	imp.ExamDate = examDate
	imp.Markers = StageMarkers(extracted)
	if s.files != nil {
		url, err := s.files.Upload(ctx, f, "exams", userID)
		if err != nil {
			s.log.Warn("exam file upload failed", zap.Error(err))
		} else {
			imp.FileURL = url
		}
	}
	if err := s.save(ctx, imp); err != nil {
		return nil, err
	}
	s.metrics.RecordImport(string(ImportExam), "staged")
	return imp, nil
}

func WorkoutInputFromGenerated(g *GeneratedWorkout) WorkoutInput {
	in := WorkoutInput{
		Name:              g.Name,
		Description:       g.Description,
		Category:          g.Category,
		DifficultyLevel:   g.Difficulty,
		EstimatedDuration: int(g.Duration.Value),
	}
	for _, d := range g.WeekDays {
		d = strings.ToLower(strings.TrimSpace(d))
		if validWeekDay(d) {
			in.WeekDays = append(in.WeekDays, d)
		}
	}
	for _, ex := range g.Exercises {
		e := ExerciseInput{Name: ex.Name, Sets: int(ex.Sets.Value), Reps: string(ex.Reps), Notes: ex.Notes}
		if ex.Load.Valid && ex.Load.Value > 0 {
			e.Load = ex.Load.Ptr()
		}
		in.Exercises = append(in.Exercises, e)
	}
	return in
}

func (s *ImportService) StageWorkout(ctx context.Context, userID uuid.UUID, prompt string) (*StagedImport, error) {
	g, err := s.ai.GenerateWorkout(ctx, prompt)
	if err != nil {
		if !errors.Is(err, ErrInvalidInput) {
			s.metrics.RecordImport(string(ImportWorkout), "failed")
		}
		return nil, err
	}
	in := WorkoutInputFromGenerated(g)
	imp := s.newImport(userID, ImportWorkout, prompt)
	imp.Workout = &in
	if err := s.save(ctx, imp); err != nil {
		return nil, err
	}
	s.metrics.RecordImport(string(ImportWorkout), "staged")
	return imp, nil
}

// StageMeal estimates macros from a description or a photo.
func (s *ImportService) StageMeal(ctx context.Context, userID uuid.UUID, req MealStageReq) (*StagedImport, error) {
	var (
		est    *MacroEstimate
		photo  *utils.DecodedFile
		err    error
		source = strings.TrimSpace(req.Description)
	)
	switch {
	case req.Image != "":
		photo, err = utils.DecodeBase64File(req.Image, "")
		if err != nil {
			return nil, invalidf("%v", err)
		}
		if !photo.IsImage() {
			return nil, invalidf("meal photo must be an image")
		}
		if s.vision != nil {
			ok, labels, err := s.vision.LooksLikeFood(ctx, photo.Data)
			if err != nil {
				s.log.Warn("vision pre-check failed, continuing", zap.Error(err))
			} else if !ok {
				return nil, fmt.Errorf("%w (labels: %s)", ErrNotFood, strings.Join(labels, ", "))
			}
		}
		est, err = s.ai.AnalyzePhoto(ctx, photo.DataURI())
		if source == "" {
			source = "photo"
		}
	case source != "":
		est, err = s.ai.CalculateMacros(ctx, source)
	default:
		return nil, invalidf("description or image is required")
	}
	if err != nil {
		s.metrics.RecordImport(string(ImportMeal), "failed")
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = mealNameFrom(req.Description, est)
	}
	in := MealInputFromEstimate(name, req.Category, est)
	if photo != nil && s.files != nil {
		url, err := s.files.Upload(ctx, photo, "meals", userID)
		if err != nil {
			s.log.Warn("meal photo upload failed", zap.Error(err))
		} else {
			in.ImageURL = url
		}
	}

	imp := s.newImport(userID, ImportMeal, source)
	imp.Meal = &in
	if err := s.save(ctx, imp); err != nil {
		return nil, err
	}
	s.metrics.RecordImport(string(ImportMeal), "staged")
	return imp, nil
}

func mealNameFrom(description string, est *MacroEstimate) string {
	if d := strings.TrimSpace(description); d != "" {
		if len([]rune(d)) > 60 {
			d = string([]rune(d)[:60])
		}
		return d
	}
	if len(est.Items) > 0 && est.Items[0].Name != "" {
		return est.Items[0].Name
	}
	return "Refeição"
}

// Get returns a staged import owned by userID.
func (s *ImportService) Get(ctx context.Context, userID, id uuid.UUID) (*StagedImport, error) {
	imp, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if imp.UserID != userID {
		return nil, fmt.Errorf("import: %w", ErrNotFound)
	}
	return imp, nil
}

func (s *ImportService) edit(ctx context.Context, userID, id uuid.UUID, kind ImportKind, fn func(*StagedImport) error) (*StagedImport, error) {
	imp, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if imp.Kind != kind {
		return nil, invalidf("import %s is a %s import", id, imp.Kind)
	}
	if err := fn(imp); err != nil {
		return nil, err
	}
	if err := s.save(ctx, imp); err != nil {
		return nil, err
	}
	return imp, nil
}

func normalizeStaged(m StagedMarker) StagedMarker {
	m.Name = strings.TrimSpace(m.Name)
	m.Unit = strings.TrimSpace(m.Unit)
	m.ReferenceRange = strings.TrimSpace(m.ReferenceRange)
	m.AnaRef = anaRef(m.AnaRef, m.Value, m.ReferenceRange)
	return m
}

// anaRef keeps a recognised classification and derives one from the
// reference range otherwise.
func anaRef(supplied string, value *float64, reference string) string {
	switch v := strings.ToUpper(strings.TrimSpace(supplied)); v {
	case utils.RefNormal, utils.RefLow, utils.RefHigh, utils.RefUnknown:
		return v
	}
	return utils.ClassifyReference(value, reference)
}

func (s *ImportService) UpdateMarker(ctx context.Context, userID, id uuid.UUID, index int, m StagedMarker) (*StagedImport, error) {
	return s.edit(ctx, userID, id, ImportExam, func(imp *StagedImport) error {
		if index < 0 || index >= len(imp.Markers) {
			return fmt.Errorf("marker %d: %w", index, ErrNotFound)
		}
		imp.Markers[index] = normalizeStaged(m)
		return nil
	})
}

func (s *ImportService) AddMarker(ctx context.Context, userID, id uuid.UUID, m StagedMarker) (*StagedImport, error) {
	return s.edit(ctx, userID, id, ImportExam, func(imp *StagedImport) error {
		imp.Markers = append(imp.Markers, normalizeStaged(m))
		return nil
	})
}

func (s *ImportService) RemoveMarker(ctx context.Context, userID, id uuid.UUID, index int) (*StagedImport, error) {
	return s.edit(ctx, userID, id, ImportExam, func(imp *StagedImport) error {
		if index < 0 || index >= len(imp.Markers) {
			return fmt.Errorf("marker %d: %w", index, ErrNotFound)
		}
		imp.Markers = append(imp.Markers[:index], imp.Markers[index+1:]...)
		return nil
	})
}

func (s *ImportService) SetExamDate(ctx context.Context, userID, id uuid.UUID, date string) (*StagedImport, error) {
	if _, err := time.Parse(utils.DateLayout, date); err != nil {
		return nil, invalidf("invalid exam_date %q", date)
	}
	return s.edit(ctx, userID, id, ImportExam, func(imp *StagedImport) error {
		imp.ExamDate = date
		return nil
	})
}

func (s *ImportService) ReplaceWorkout(ctx context.Context, userID, id uuid.UUID, in WorkoutInput) (*StagedImport, error) {
	return s.edit(ctx, userID, id, ImportWorkout, func(imp *StagedImport) error {
		imp.Workout = &in
		return nil
	})
}

func (s *ImportService) ReplaceMeal(ctx context.Context, userID, id uuid.UUID, in MealInput) (*StagedImport, error) {
	return s.edit(ctx, userID, id, ImportMeal, func(imp *StagedImport) error {
		// photo stays the one uploaded at staging time
		in.Image = ""
		if in.ImageURL == "" && imp.Meal != nil {
			in.ImageURL = imp.Meal.ImageURL
		}
		in.IsAIGenerated = true
		imp.Meal = &in
		return nil
	})
}

// validateExam rejects candidates with no name or no value before any write.
func validateExam(imp *StagedImport) (time.Time, error) {
	if len(imp.Markers) == 0 {
		return time.Time{}, invalidf("import has no markers")
	}
	for i, m := range imp.Markers {
		if strings.TrimSpace(m.Name) == "" {
			return time.Time{}, invalidf("marker %d: name is required", i+1)
		}
		if m.Value == nil {
			return time.Time{}, invalidf("marker %q: value is required", m.Name)
		}
		if *m.Value < 0 {
			return time.Time{}, invalidf("marker %q: value must not be negative", m.Name)
		}
	}
	day, err := time.ParseInLocation(utils.DateLayout, imp.ExamDate, time.Local)
	if err != nil {
		return time.Time{}, invalidf("invalid exam_date %q", imp.ExamDate)
	}
	return day, nil
}

// Commit writes the reviewed import in a single transaction. On failure
// nothing is written and the import stays staged for another attempt.
func (s *ImportService) Commit(ctx context.Context, userID, id uuid.UUID) (*CommitResult, error) {
	imp, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	res := &CommitResult{ImportID: imp.ID, Kind: imp.Kind}

	var write func(tx *gorm.DB) error
	var touched []models.MarkerValue
	switch imp.Kind {
	case ImportExam:
		examDate, err := validateExam(imp)
		if err != nil {
			return nil, err
		}
		write = func(tx *gorm.DB) error {
			res.MarkersCreated, res.ValuesCreated, touched = 0, 0, nil
			for _, c := range imp.Markers {
				lo, hi, _ := utils.ParseReferenceRange(c.ReferenceRange)
				m, created, err := findOrCreateMarkerTx(tx, userID, strings.TrimSpace(c.Name), c.Unit, lo, hi)
				if err != nil {
					return fmt.Errorf("marker %q: %w", c.Name, err)
				}
				if created {
					res.MarkersCreated++
				}
				v := markerValueFor(m.ID, *c.Value, examDate, imp.Source)
				if err := tx.Create(&v).Error; err != nil {
					return fmt.Errorf("value for %q: %w", c.Name, err)
				}
				res.ValuesCreated++
				touched = append(touched, v)
			}
			return nil
		}
	case ImportWorkout:
		if imp.Workout == nil {
			return nil, invalidf("import has no workout")
		}
		in := *imp.Workout
		if err := in.normalize(); err != nil {
			return nil, err
		}
		write = func(tx *gorm.DB) error {
			w, err := createWorkoutTx(tx, userID, in)
			if err != nil {
				return err
			}
			res.WorkoutID = &w.ID
			return nil
		}
	case ImportMeal:
		if imp.Meal == nil {
			return nil, invalidf("import has no meal")
		}
		in := *imp.Meal
		if err := in.normalize(); err != nil {
			return nil, err
		}
		write = func(tx *gorm.DB) error {
			meal, err := createMealTx(tx, userID, in)
			if err != nil {
				return err
			}
			res.MealID = &meal.ID
			return nil
		}
	default:
		return nil, invalidf("unknown import kind %q", imp.Kind)
	}

	if err := s.db.WithContext(ctx).Transaction(write); err != nil {
		s.metrics.RecordImport(string(imp.Kind), "commit_failed")
		return nil, fmt.Errorf("commit import: %w", err)
	}
	if err := s.store.Delete(ctx, imp.ID); err != nil {
		s.log.Warn("staged import not cleared after commit", zap.String("import", imp.ID.String()), zap.Error(err))
	}
	s.metrics.RecordImport(string(imp.Kind), "committed")

	if s.markers != nil {
		for i := range touched {
			s.markers.evaluate(ctx, userID, &touched[i])
		}
	}
	return res, nil
}

func (s *ImportService) Discard(ctx context.Context, userID, id uuid.UUID) error {
	imp, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, imp.ID); err != nil {
		return err
	}
	s.metrics.RecordImport(string(imp.Kind), "discarded")
	return nil
}
