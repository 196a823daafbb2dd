package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkoutCreateOrdersExercises(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewWorkoutService(db)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "workouts"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "workout_exercises"`).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	w, err := svc.Create(context.Background(), userID, WorkoutInput{
		Name:     "Treino A",
		WeekDays: []string{"Monday", "monday", "thursday"},
		Exercises: []ExerciseInput{
			{Name: "Supino", Sets: 4, Reps: "8-10"},
			{Name: "Remada", Sets: 4, Reps: "10"},
			{Name: "Prancha", Sets: 3, Reps: "30s"},
		},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `["monday","thursday"]`, string(w.WeekDays))
	require.Len(t, w.Exercises, 3)
	for i, ex := range w.Exercises {
		assert.Equal(t, i, ex.OrderIndex)
		assert.Equal(t, w.ID, ex.WorkoutID)
	}
	assert.Equal(t, "Prancha", w.Exercises[2].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkoutCreateRollsBackOnExerciseFailure(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewWorkoutService(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "workouts"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "workout_exercises"`).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), uuid.New(), WorkoutInput{
		Name:      "Treino B",
		Exercises: []ExerciseInput{{Name: "Agachamento", Sets: 4}},
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkoutUpdateReplacesExercises(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewWorkoutService(db)
	userID, id := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "workouts" WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "week_days"}).
			AddRow(id.String(), userID.String(), "Treino A", []byte(`["monday"]`)))
	mock.ExpectExec(`UPDATE "workouts" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "workout_exercises" WHERE workout_id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`INSERT INTO "workout_exercises"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w, err := svc.Update(context.Background(), userID, id, WorkoutInput{
		Name:      "Treino A2",
		WeekDays:  []string{"tuesday"},
		Exercises: []ExerciseInput{{Name: "Levantamento terra", Sets: 5, Reps: "5"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Treino A2", w.Name)
	require.Len(t, w.Exercises, 1)
	assert.Equal(t, 0, w.Exercises[0].OrderIndex)
	assert.Equal(t, id, w.Exercises[0].WorkoutID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkoutUpdateOtherUsersWorkout(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewWorkoutService(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "workouts" WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name"}))
	mock.ExpectRollback()

	_, err := svc.Update(context.Background(), uuid.New(), uuid.New(), WorkoutInput{Name: "Treino C"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkoutCheckinRequiresOwnership(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewWorkoutService(db)
	userID, workoutID := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "workouts" WHERE`).
		WithArgs(workoutID, userID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, err := svc.Checkin(context.Background(), userID, workoutID, CheckinReq{})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet(), "no check-in row is written")
}

func TestWorkoutCheckinRecorded(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewWorkoutService(db)
	userID, workoutID := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "workouts" WHERE`).
		WithArgs(workoutID, userID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(`INSERT INTO "workout_checkins"`).WillReturnResult(sqlmock.NewResult(0, 1))

	c, err := svc.Checkin(context.Background(), userID, workoutID, CheckinReq{Notes: "  pesado hoje "})
	require.NoError(t, err)
	assert.Equal(t, workoutID, c.WorkoutID)
	assert.Equal(t, "pesado hoje", c.Notes)
	assert.False(t, c.CompletedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
