package services

import (
	"fmt"

	"github.com/brfrauches/augmend-71119/models"
	"github.com/google/uuid"
)

const (
	StatusNoData     = "no_data"
	StatusInRange    = "in_range"
	StatusBelowRange = "below_range"
	StatusAboveRange = "above_range"
	StatusRecorded   = "recorded" // value present but the marker has no bounds

	AlertWarning = "warning"
	AlertInfo    = "info"

	alertWindow = 3
)

type MarkerAlert struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// LatestByMarker picks, per marker, the value with the greatest MeasuredAt.
// Ties go to the row created last.
func LatestByMarker(values []models.MarkerValue) map[uuid.UUID]models.MarkerValue {
	out := make(map[uuid.UUID]models.MarkerValue, len(values))
	for _, v := range values {
		cur, ok := out[v.MarkerID]
		if !ok || v.MeasuredAt.After(cur.MeasuredAt) ||
			(v.MeasuredAt.Equal(cur.MeasuredAt) && v.CreatedAt.After(cur.CreatedAt)) {
			out[v.MarkerID] = v
		}
	}
	return out
}

func MarkerStatus(m *models.HealthMarker, latest *models.MarkerValue) string {
	if latest == nil {
		return StatusNoData
	}
	if m.MinReference != nil && latest.Value < *m.MinReference {
		return StatusBelowRange
	}
	if m.MaxReference != nil && latest.Value > *m.MaxReference {
		return StatusAboveRange
	}
	if m.MinReference == nil && m.MaxReference == nil {
		return StatusRecorded
	}
	return StatusInRange
}

func outOfRange(m *models.HealthMarker, v float64) bool {
	return (m.MinReference != nil && v < *m.MinReference) ||
		(m.MaxReference != nil && v > *m.MaxReference)
}

// MarkerAlerts inspects the three most recent values (values sorted by
// measured_at ascending).
func MarkerAlerts(m *models.HealthMarker, values []models.MarkerValue) []MarkerAlert {
	if len(values) < alertWindow {
		return nil
	}
	recent := values[len(values)-alertWindow:]

	var alerts []MarkerAlert
	if m.MinReference != nil || m.MaxReference != nil {
		all := true
		for _, v := range recent {
			if !outOfRange(m, v.Value) {
				all = false
				break
			}
		}
		if all {
			alerts = append(alerts, MarkerAlert{
				Type:    AlertWarning,
				Message: fmt.Sprintf("%s está fora da faixa de referência nas últimas %d medições", m.Name, alertWindow),
			})
		}
	}
	if m.PersonalGoal != nil {
		all := true
		for _, v := range recent {
			if v.Value >= *m.PersonalGoal {
				all = false
				break
			}
		}
		if all {
			alerts = append(alerts, MarkerAlert{
				Type:    AlertInfo,
				Message: fmt.Sprintf("%s está abaixo da sua meta pessoal nas últimas %d medições", m.Name, alertWindow),
			})
		}
	}
	return alerts
}
