package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMealCreateWritesMealAndItemsTogether(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewMealService(db, nil)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "nutrition_meals"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "nutrition_items"`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	meal, err := svc.Create(context.Background(), userID, MealInput{
		Name: "Almoço",
		Items: []MealItemInput{
			{Name: "Arroz", Quantity: "150g", Calories: fp(195), CarbsG: fp(42.3), ProteinG: fp(3.8)},
			{Name: "Frango", Quantity: "120g", Calories: fp(198), ProteinG: fp(37.2), FatG: fp(4.3)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultMealCategory, meal.Category)
	assert.Equal(t, 393.0, meal.TotalCalories)
	assert.Equal(t, 41.0, meal.ProteinG)
	require.Len(t, meal.Items, 2)
	assert.Equal(t, meal.ID, meal.Items[1].MealID)
	assert.Zero(t, meal.Items[1].CarbsG)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMealCreateRollsBackWhenItemsFail(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewMealService(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "nutrition_meals"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "nutrition_items"`).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), uuid.New(), MealInput{
		Name:     "Jantar",
		Category: "jantar",
		Items:    []MealItemInput{{Name: "Sopa", Calories: fp(180)}},
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMealCreateRejectsBadInputBeforeTouchingDB(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewMealService(db, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.New(), MealInput{Name: "Brunch", Category: "brunch"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, uuid.New(), MealInput{Name: "Lanche", Items: []MealItemInput{{Name: "Pão", Calories: fp(-1)}}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.NoError(t, mock.ExpectationsWereMet())
}
