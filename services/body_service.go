package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brfrauches/augmend-71119/models"
	"github.com/brfrauches/augmend-71119/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var bodyRegions = map[string]bool{
	"right_arm": true, "left_arm": true, "trunk": true, "abdomen": true,
	"right_thigh": true, "left_thigh": true, "calves": true,
}

// regionLabels maps the bioimpedance report labels onto region keys.
var regionLabels = map[string]string{
	"braço direito":  "right_arm",
	"braço esquerdo": "left_arm",
	"tronco":         "trunk",
	"abdômen":        "abdomen",
	"abdomen":        "abdomen",
	"coxa direita":   "right_thigh",
	"coxa esquerda":  "left_thigh",
	"panturrilhas":   "calves",
}

func regionKey(r string) (string, bool) {
	r = strings.ToLower(strings.TrimSpace(r))
	if bodyRegions[r] {
		return r, true
	}
	k, ok := regionLabels[r]
	return k, ok
}

type BodyService struct {
	db    *gorm.DB
	files FileStore
}

func NewBodyService(db *gorm.DB, files FileStore) *BodyService {
	return &BodyService{db: db, files: files}
}

type SegmentInput struct {
	Region     string   `json:"region"`
	LeanMassKg *float64 `json:"lean_mass_kg"`
	FatMassKg  *float64 `json:"fat_mass_kg"`
}

type MeasurementInput struct {
	MeasuredAt         *time.Time     `json:"measured_at"`
	WeightKg           float64        `json:"weight_kg"`
	HeightM            *float64       `json:"height_m"`
	IMC                *float64       `json:"imc"`
	FatPercent         *float64       `json:"fat_percent"`
	FatWeightKg        *float64       `json:"fat_weight_kg"`
	LeanMassKg         *float64       `json:"lean_mass_kg"`
	WaterPercent       *float64       `json:"water_percent"`
	BasalMetabolicRate *float64       `json:"basal_metabolic_rate"`
	Attachment         string         `json:"attachment,omitempty"` // base64 report (image or PDF)
	Notes              string         `json:"notes"`
	Segments           []SegmentInput `json:"segments"`
}

type Derived struct {
	IMC         *float64 `json:"imc"`
	IMCCategory string   `json:"imc_category,omitempty"`
	FatWeightKg *float64 `json:"fat_weight_kg"`
	LeanMassKg  *float64 `json:"lean_mass_kg"`
}

func ptr(v float64) *float64 { return &v }

// Derive fills IMC and the fat/lean split from weight, height and fat%.
// Values supplied by the caller win.
func Derive(in MeasurementInput) (Derived, error) {
	if in.WeightKg <= 0 {
		return Derived{}, invalidf("weight_kg must be positive")
	}
	for name, v := range map[string]*float64{
		"height_m": in.HeightM, "imc": in.IMC, "fat_weight_kg": in.FatWeightKg,
		"lean_mass_kg": in.LeanMassKg, "basal_metabolic_rate": in.BasalMetabolicRate,
	} {
		if err := nonNegative(name, v); err != nil {
			return Derived{}, err
		}
	}
	if err := percent("fat_percent", in.FatPercent); err != nil {
		return Derived{}, err
	}
	if err := percent("water_percent", in.WaterPercent); err != nil {
		return Derived{}, err
	}

	d := Derived{IMC: in.IMC, FatWeightKg: in.FatWeightKg, LeanMassKg: in.LeanMassKg}
	if d.IMC == nil && in.HeightM != nil && *in.HeightM > 0 {
		imc, err := utils.CalculateIMC(in.WeightKg, *in.HeightM)
		if err != nil {
			return Derived{}, invalidf("%v", err)
		}
		d.IMC = ptr(imc)
	}
	if d.IMC != nil {
		d.IMCCategory = utils.IMCCategory(*d.IMC)
	}
	if in.FatPercent != nil {
		fat, lean, err := utils.BodyComposition(in.WeightKg, *in.FatPercent)
		if err != nil {
			return Derived{}, invalidf("%v", err)
		}
		if d.FatWeightKg == nil {
			d.FatWeightKg = ptr(fat)
		}
		if d.LeanMassKg == nil {
			d.LeanMassKg = ptr(lean)
		}
	}
	return d, nil
}

// filledSegments drops regions where nothing was measured.
func filledSegments(in []SegmentInput) ([]SegmentInput, error) {
	out := make([]SegmentInput, 0, len(in))
	for _, s := range in {
		key, ok := regionKey(s.Region)
		if !ok {
			return nil, invalidf("invalid region %q", s.Region)
		}
		s.Region = key
		if err := nonNegative(s.Region+" lean_mass_kg", s.LeanMassKg); err != nil {
			return nil, err
		}
		if err := nonNegative(s.Region+" fat_mass_kg", s.FatMassKg); err != nil {
			return nil, err
		}
		if s.LeanMassKg == nil && s.FatMassKg == nil {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (s *BodyService) Preview(in MeasurementInput) (Derived, error) {
	return Derive(in)
}

func (s *BodyService) Create(ctx context.Context, userID uuid.UUID, in MeasurementInput) (*models.BodyMeasurement, error) {
	d, err := Derive(in)
	if err != nil {
		return nil, err
	}
	segments, err := filledSegments(in.Segments)
	if err != nil {
		return nil, err
	}

	m := &models.BodyMeasurement{
		UserID:             userID,
		MeasuredAt:         time.Now(),
		WeightKg:           in.WeightKg,
		HeightM:            in.HeightM,
		IMC:                d.IMC,
		FatPercent:         in.FatPercent,
		FatWeightKg:        d.FatWeightKg,
		LeanMassKg:         d.LeanMassKg,
		WaterPercent:       in.WaterPercent,
		BasalMetabolicRate: in.BasalMetabolicRate,
		Notes:              in.Notes,
	}
	if in.MeasuredAt != nil {
		m.MeasuredAt = *in.MeasuredAt
	}

	if in.Attachment != "" {
		f, err := utils.DecodeBase64File(in.Attachment, "")
		if err != nil {
			return nil, invalidf("%v", err)
		}
		if s.files != nil {
			url, err := s.files.Upload(ctx, f, "body", userID)
			if err != nil {
				return nil, err
			}
			m.AttachmentURL = url
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Segments").Create(m).Error; err != nil {
			return err
		}
		m.Segments = make([]models.BodySegment, len(segments))
		for i, seg := range segments {
			m.Segments[i] = models.BodySegment{
				MeasurementID: m.ID,
				Region:        seg.Region,
				LeanMassKg:    seg.LeanMassKg,
				FatMassKg:     seg.FatMassKg,
			}
		}
		if len(m.Segments) > 0 {
			return tx.Create(&m.Segments).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *BodyService) List(ctx context.Context, userID uuid.UUID) ([]models.BodyMeasurement, error) {
	var out []models.BodyMeasurement
	err := s.db.WithContext(ctx).
		Preload("Segments").
		Where("user_id = ?", userID).
		Order("measured_at DESC").
		Find(&out).Error
	return out, err
}

func (s *BodyService) Get(ctx context.Context, userID, id uuid.UUID) (*models.BodyMeasurement, error) {
	var m models.BodyMeasurement
	if err := s.db.WithContext(ctx).
		Preload("Segments").
		Where("id = ? AND user_id = ?", id, userID).
		First(&m).Error; err != nil {
		return nil, notFound(err, "measurement")
	}
	return &m, nil
}

func (s *BodyService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.BodyMeasurement{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("measurement: %w", ErrNotFound)
	}
	return nil
}
