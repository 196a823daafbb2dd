// Package prompts holds the assistant prompt templates and the built-in
// catalogs (common markers, workout templates) shipped with the binary.
package prompts

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var promptsYAML []byte

//go:embed catalog.yaml
var catalogYAML []byte

const (
	CalculateMacros  = "calculate-macros"
	AnalyzePhoto     = "analyze-photo"
	SuggestMeal      = "suggest-meal"
	AnalyzeNutrition = "analyze-nutrition"
	ProcessExam      = "process-exam"
	GenerateWorkout  = "generate-workout"
)

type Prompt struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

type MarkerPreset struct {
	Name string  `yaml:"name" json:"name"`
	Unit string  `yaml:"unit" json:"unit"`
	Min  float64 `yaml:"min" json:"min_reference"`
	Max  float64 `yaml:"max" json:"max_reference"`
}

type ExercisePreset struct {
	Name  string `yaml:"name" json:"name"`
	Sets  int    `yaml:"sets" json:"sets"`
	Reps  string `yaml:"reps" json:"reps"`
	Notes string `yaml:"notes" json:"notes,omitempty"`
}

type WorkoutPreset struct {
	Name        string           `yaml:"name" json:"name"`
	Description string           `yaml:"description" json:"description"`
	Category    string           `yaml:"category" json:"category"`
	Difficulty  string           `yaml:"difficulty" json:"difficulty_level"`
	Duration    int              `yaml:"duration" json:"estimated_duration"`
	WeekDays    []string         `yaml:"week_days" json:"week_days"`
	Exercises   []ExercisePreset `yaml:"exercises" json:"exercises"`
}

type Catalog struct {
	Markers  []MarkerPreset  `yaml:"markers"`
	Workouts []WorkoutPreset `yaml:"workouts"`
}

var (
	loadOnce sync.Once
	loadErr  error
	prompts  map[string]Prompt
	catalog  Catalog
)

// Load parses the embedded files. Safe to call more than once.
func Load() error {
	loadOnce.Do(func() {
		if err := yaml.Unmarshal(promptsYAML, &prompts); err != nil {
			loadErr = fmt.Errorf("parse prompts.yaml: %w", err)
			return
		}
		if err := yaml.Unmarshal(catalogYAML, &catalog); err != nil {
			loadErr = fmt.Errorf("parse catalog.yaml: %w", err)
		}
	})
	return loadErr
}

// Render returns the system prompt and the rendered user prompt of a feature.
func Render(feature string, data map[string]any) (system, user string, err error) {
	if err := Load(); err != nil {
		return "", "", err
	}
	p, ok := prompts[feature]
	if !ok {
		return "", "", fmt.Errorf("unknown prompt %q", feature)
	}
	tpl, err := template.New(feature).Option("missingkey=zero").Parse(p.User)
	if err != nil {
		return "", "", fmt.Errorf("parse %s user prompt: %w", feature, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render %s user prompt: %w", feature, err)
	}
	return p.System, buf.String(), nil
}

func Markers() []MarkerPreset {
	_ = Load()
	return catalog.Markers
}

func Workouts() []WorkoutPreset {
	_ = Load()
	return catalog.Workouts
}
