package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stagedExam(t *testing.T, store StagingStore, userID uuid.UUID, markers ...StagedMarker) *StagedImport {
	t.Helper()
	imp := &StagedImport{
		ID:       uuid.New(),
		UserID:   userID,
		Kind:     ImportExam,
		Source:   "hemograma.pdf",
		ExamDate: "2024-05-10",
		Markers:  markers,
	}
	require.NoError(t, store.Save(context.Background(), imp, time.Hour))
	return imp
}

func TestStageMarkersClassifiesReference(t *testing.T) {
	out := StageMarkers([]ExtractedMarker{
		{Name: " Glicose ", Value: Float(120), Unit: "mg/dL", ReferenceRange: "70-99"},
		{Name: "HDL", Value: Float(55), Unit: "mg/dL", ReferenceRange: "> 40"},
		{Name: "PCR", Unit: "mg/L", ReferenceRange: "< 5"},
	})
	require.Len(t, out, 3)
	assert.Equal(t, "Glicose", out[0].Name)
	assert.Equal(t, "HIGH", out[0].AnaRef)
	assert.Equal(t, "NORMAL", out[1].AnaRef)
	assert.Nil(t, out[2].Value)
	assert.Equal(t, "UNKNOWN", out[2].AnaRef)
}

func TestStageMarkersKeepsLabFlag(t *testing.T) {
	out := StageMarkers([]ExtractedMarker{
		{Name: "Ferro", Value: Float(40), AnaRef: "low"},
		{Name: "TSH", Value: Float(2), ReferenceRange: "0.4-4.0", AnaRef: "weird"},
	})
	require.Len(t, out, 2)
	assert.Equal(t, "LOW", out[0].AnaRef, "lab flag kept without a range")
	assert.Equal(t, "NORMAL", out[1].AnaRef, "unrecognised flag is derived from the range")
}

func TestUpdateMarkerKeepsChosenFlag(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStagingStore()
	svc := NewImportService(ImportDeps{Store: store})
	userID := uuid.New()
	imp := stagedExam(t, store, userID, StagedMarker{Name: "Vitamina D", Value: fp(20)})

	got, err := svc.UpdateMarker(ctx, userID, imp.ID, 0, StagedMarker{Name: "Vitamina D", Value: fp(20), AnaRef: "HIGH"})
	require.NoError(t, err)
	assert.Equal(t, "HIGH", got.Markers[0].AnaRef)

	got, err = svc.UpdateMarker(ctx, userID, imp.ID, 0, StagedMarker{Name: "Vitamina D", Value: fp(20)})
	require.NoError(t, err)
	assert.Equal(t, "UNKNOWN", got.Markers[0].AnaRef, "empty flag with no range is derived")
}

func TestWorkoutInputFromGenerated(t *testing.T) {
	in := WorkoutInputFromGenerated(&GeneratedWorkout{
		Name:     "Full body",
		Duration: Float(45),
		WeekDays: []string{"Monday", "funday", "friday"},
		Exercises: []GeneratedExercise{
			{Name: "Agachamento", Sets: Float(4), Reps: "8-10", Load: Float(60)},
			{Name: "Prancha", Sets: Float(3), Reps: "30s"},
		},
	})
	assert.Equal(t, 45, in.EstimatedDuration)
	assert.Equal(t, []string{"monday", "friday"}, in.WeekDays)
	require.Len(t, in.Exercises, 2)
	assert.Equal(t, 60.0, *in.Exercises[0].Load)
	assert.Nil(t, in.Exercises[1].Load)
	require.NoError(t, in.normalize())
}

func TestImportReviewEditsAndOwnership(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStagingStore()
	svc := NewImportService(ImportDeps{Store: store})
	userID := uuid.New()
	imp := stagedExam(t, store, userID, StagedMarker{Name: "Glicose", Value: fp(90), ReferenceRange: "70-99"})

	_, err := svc.Get(ctx, uuid.New(), imp.ID)
	assert.ErrorIs(t, err, ErrNotFound, "another user's import is invisible")

	got, err := svc.UpdateMarker(ctx, userID, imp.ID, 0, StagedMarker{Name: "Glicose", Value: fp(110), ReferenceRange: "70-99"})
	require.NoError(t, err)
	assert.Equal(t, "HIGH", got.Markers[0].AnaRef)

	got, err = svc.AddMarker(ctx, userID, imp.ID, StagedMarker{Name: "Ferritina", Value: fp(80), Unit: "ng/mL"})
	require.NoError(t, err)
	require.Len(t, got.Markers, 2)

	got, err = svc.RemoveMarker(ctx, userID, imp.ID, 0)
	require.NoError(t, err)
	require.Len(t, got.Markers, 1)
	assert.Equal(t, "Ferritina", got.Markers[0].Name)

	_, err = svc.RemoveMarker(ctx, userID, imp.ID, 5)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.SetExamDate(ctx, userID, imp.ID, "10/05/2024")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.ReplaceWorkout(ctx, userID, imp.ID, WorkoutInput{Name: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput, "exam imports hold no workout")

	stored, err := store.Get(ctx, imp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ferritina", stored.Markers[0].Name)
}

func TestImportCommitExamInOneTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewMemoryStagingStore()
	svc := NewImportService(ImportDeps{DB: db, Store: store})
	userID := uuid.New()
	imp := stagedExam(t, store, userID, StagedMarker{Name: "Glicose", Value: fp(92), Unit: "mg/dL", ReferenceRange: "70-99"})

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "health_markers" WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "unit"}))
	mock.ExpectExec(`INSERT INTO "health_markers"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "health_marker_values"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.Commit(context.Background(), userID, imp.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.MarkersCreated)
	assert.Equal(t, 1, res.ValuesCreated)
	assert.NoError(t, mock.ExpectationsWereMet())

	_, err = store.Get(context.Background(), imp.ID)
	assert.ErrorIs(t, err, ErrNotFound, "committed imports are cleared")
}

func TestImportCommitRollsBackAndKeepsStaged(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewMemoryStagingStore()
	svc := NewImportService(ImportDeps{DB: db, Store: store})
	userID, markerID := uuid.New(), uuid.New()
	imp := stagedExam(t, store, userID,
		StagedMarker{Name: "Glicose", Value: fp(92), Unit: "mg/dL"},
		StagedMarker{Name: "Colesterol", Value: fp(180), Unit: "mg/dL"},
	)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "health_markers" WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "unit"}).
			AddRow(markerID.String(), userID.String(), "Glicose", "mg/dL"))
	mock.ExpectExec(`INSERT INTO "health_marker_values"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "health_markers" WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "unit"}))
	mock.ExpectExec(`INSERT INTO "health_markers"`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := svc.Commit(context.Background(), userID, imp.ID)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	still, err := store.Get(context.Background(), imp.ID)
	require.NoError(t, err, "failed commits stay staged for retry")
	assert.Len(t, still.Markers, 2)
}

func TestImportCommitRejectsIncompleteCandidates(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewMemoryStagingStore()
	svc := NewImportService(ImportDeps{DB: db, Store: store})
	userID := uuid.New()
	imp := stagedExam(t, store, userID,
		StagedMarker{Name: "Glicose", Value: fp(92)},
		StagedMarker{Name: "PCR"},
	)

	_, err := svc.Commit(context.Background(), userID, imp.ID)
	assert.ErrorIs(t, err, ErrInvalidInput)
	// no Begin expected: nothing reached the database
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportDiscard(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStagingStore()
	svc := NewImportService(ImportDeps{Store: store})
	userID := uuid.New()
	imp := stagedExam(t, store, userID, StagedMarker{Name: "Glicose", Value: fp(92)})

	assert.ErrorIs(t, svc.Discard(ctx, uuid.New(), imp.ID), ErrNotFound)
	require.NoError(t, svc.Discard(ctx, userID, imp.ID))
	_, err := svc.Get(ctx, userID, imp.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
