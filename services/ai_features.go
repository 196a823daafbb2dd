package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/brfrauches/augmend-71119/prompts"
)

var leadingNumber = regexp.MustCompile(`-?\d+(?:[.,]\d+)?`)

// FlexFloat decodes numbers the model sometimes sends as strings
// ("5,7", "12 mg/dL"). Anything non-numeric decodes as null.
type FlexFloat struct {
	Value float64
	Valid bool
}

func Float(v float64) FlexFloat { return FlexFloat{Value: v, Valid: true} }

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	*f = FlexFloat{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = leadingNumber.FindString(s)
		if s == "" {
			return nil
		}
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return nil
	}
	*f = FlexFloat{Value: v, Valid: true}
	return nil
}

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Ptr is nil for null values.
func (f FlexFloat) Ptr() *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// FlexString accepts either a JSON string or a number (reps: 12 vs "8-10").
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	*s = FlexString(string(b))
	return nil
}

type MacroItem struct {
	Name     string     `json:"name"`
	Quantity FlexString `json:"quantity"`
	Calories FlexFloat  `json:"calories"`
	ProteinG FlexFloat  `json:"protein_g"`
	CarbsG   FlexFloat  `json:"carbs_g"`
	FatG     FlexFloat  `json:"fat_g"`
}

type MacroEstimate struct {
	TotalCalories FlexFloat   `json:"total_calories"`
	ProteinG      FlexFloat   `json:"protein_g"`
	CarbsG        FlexFloat   `json:"carbs_g"`
	FatG          FlexFloat   `json:"fat_g"`
	Items         []MacroItem `json:"items"`
}

type MealSuggestion struct {
	Name      string `json:"name"`
	Reasoning string `json:"reasoning"`
	MacroEstimate
}

type NutritionAnalysis struct {
	Insights        []string `json:"insights"`
	Alerts          []string `json:"alerts"`
	Recommendations []string `json:"recommendations"`
}

type ExtractedMarker struct {
	Name           string    `json:"name"`
	Value          FlexFloat `json:"value"`
	Unit           string    `json:"unit"`
	ReferenceRange string    `json:"reference_range,omitempty"`
	AnaRef         string    `json:"ana_ref,omitempty"`
}

type GeneratedExercise struct {
	Name  string     `json:"name"`
	Sets  FlexFloat  `json:"sets"`
	Reps  FlexString `json:"reps"`
	Load  FlexFloat  `json:"load"`
	Notes string     `json:"notes"`
}

type GeneratedWorkout struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	Difficulty  string              `json:"difficulty"`
	Duration    FlexFloat           `json:"duration"`
	WeekDays    []string            `json:"week_days"`
	Exercises   []GeneratedExercise `json:"exercises"`
}

func (g *AIGateway) CalculateMacros(ctx context.Context, description string) (*MacroEstimate, error) {
	if strings.TrimSpace(description) == "" {
		return nil, invalidf("description is required")
	}
	var out MacroEstimate
	if err := g.CompleteJSON(ctx, prompts.CalculateMacros, map[string]any{"description": description}, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *AIGateway) AnalyzePhoto(ctx context.Context, imageURL string) (*MacroEstimate, error) {
	if imageURL == "" {
		return nil, invalidf("image is required")
	}
	var out MacroEstimate
	if err := g.CompleteJSON(ctx, prompts.AnalyzePhoto, nil, imageURL, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *AIGateway) SuggestMeal(ctx context.Context, data map[string]any) (*MealSuggestion, error) {
	var out MealSuggestion
	if err := g.CompleteJSON(ctx, prompts.SuggestMeal, jsonData(data), imageFrom(data), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *AIGateway) AnalyzeNutrition(ctx context.Context, data map[string]any) (*NutritionAnalysis, error) {
	var out NutritionAnalysis
	if err := g.CompleteJSON(ctx, prompts.AnalyzeNutrition, jsonData(data), imageFrom(data), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExtractExamMarkers reads an exam (image or PDF data URI).
func (g *AIGateway) ExtractExamMarkers(ctx context.Context, fileDataURI string) ([]ExtractedMarker, error) {
	if fileDataURI == "" {
		return nil, invalidf("file is required")
	}
	var out struct {
		Markers []ExtractedMarker `json:"markers"`
	}
	if err := g.CompleteJSON(ctx, prompts.ProcessExam, nil, fileDataURI, &out); err != nil {
		return nil, err
	}
	if out.Markers == nil {
		return nil, fmt.Errorf("%w: markers missing", ErrAIResponse)
	}
	return out.Markers, nil
}

func (g *AIGateway) GenerateWorkout(ctx context.Context, prompt string) (*GeneratedWorkout, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, invalidf("Prompt is required")
	}
	var out GeneratedWorkout
	if err := g.CompleteJSON(ctx, prompts.GenerateWorkout, map[string]any{"prompt": prompt}, "", &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Name) == "" {
		return nil, fmt.Errorf("%w: workout name missing", ErrAIResponse)
	}
	return &out, nil
}

func jsonData(data map[string]any) map[string]any {
	raw, _ := json.Marshal(data)
	return map[string]any{"json": string(raw)}
}

func imageFrom(data map[string]any) string {
	s, _ := data["imageUrl"].(string)
	return s
}
