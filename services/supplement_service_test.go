package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func supplementRow(id, userID uuid.UUID, name, dosage string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "name", "dosage", "is_active"}).
		AddRow(id.String(), userID.String(), name, dosage, true)
}

func TestSupplementCreateNameTaken(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSupplementService(db)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "supplements" WHERE`).
		WithArgs(userID, "Creatina").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, err := svc.Create(context.Background(), userID, SupplementInput{Name: " Creatina ", Dosage: "5g"})
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSupplementCreateRejectsEndBeforeStart(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSupplementService(db)
	start := time.Date(2024, 5, 10, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 0, -1)

	_, err := svc.Create(context.Background(), uuid.New(), SupplementInput{Name: "Ômega 3", StartDate: &start, EndDate: &end})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.NoError(t, mock.ExpectationsWereMet(), "nothing reaches the database")
}

func TestSupplementCreateDefaultsActive(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSupplementService(db)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "supplements" WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO "supplements"`).WillReturnResult(sqlmock.NewResult(0, 1))

	sup, err := svc.Create(context.Background(), userID, SupplementInput{Name: "Magnésio", Dosage: "300mg"})
	require.NoError(t, err)
	assert.True(t, sup.IsActive)
	assert.Equal(t, userID, sup.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSupplementLogUsageDedupsAndDefaultsDose(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSupplementService(db)
	userID, supID := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "supplements" WHERE`).
		WillReturnRows(supplementRow(supID, userID, "Creatina", "5g"))
	mock.ExpectExec(`INSERT INTO "supplement_logs"`).WillReturnResult(sqlmock.NewResult(0, 2))

	logs, err := svc.LogUsage(context.Background(), userID, supID, LogUsageReq{
		Dates: []string{"2024-05-10", " 2024-05-10", "2024-05-11"},
	})
	require.NoError(t, err)
	require.Len(t, logs, 2, "repeated dates collapse to one row")
	for _, l := range logs {
		assert.Equal(t, "5g", l.Dose, "dose falls back to the supplement dosage")
		assert.Equal(t, supID, l.SupplementID)
		assert.Equal(t, userID, l.UserID)
	}
	assert.Equal(t, "2024-05-10", logs[0].TakenAt.Format("2006-01-02"))
	assert.Equal(t, "2024-05-11", logs[1].TakenAt.Format("2006-01-02"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSupplementLogUsageValidation(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSupplementService(db)
	userID, supID := uuid.New(), uuid.New()
	ctx := context.Background()

	_, err := svc.LogUsage(ctx, userID, supID, LogUsageReq{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	mock.ExpectQuery(`SELECT \* FROM "supplements" WHERE`).
		WillReturnRows(supplementRow(supID, userID, "Creatina", "5g"))
	_, err = svc.LogUsage(ctx, userID, supID, LogUsageReq{Dates: []string{"10/05/2024"}, Dose: "3g"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	mock.ExpectQuery(`SELECT \* FROM "supplements" WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name"}))
	_, err = svc.LogUsage(ctx, uuid.New(), supID, LogUsageReq{Dates: []string{"2024-05-10"}})
	assert.ErrorIs(t, err, ErrNotFound, "another user's supplement")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSupplementDeleteLogIsScoped(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSupplementService(db)
	userID, supID, logID := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectExec(`DELETE FROM "supplement_logs" WHERE \(?id = \$1 AND supplement_id = \$2 AND user_id = \$3`).
		WithArgs(logID, supID, userID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.DeleteLog(context.Background(), userID, supID, logID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSupplementPendingTodayGroupsByOwner(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSupplementService(db)
	ana, bia := uuid.New(), uuid.New()
	now := time.Date(2024, 5, 10, 20, 0, 0, 0, time.Local)

	mock.ExpectQuery(`SELECT \* FROM "supplements" WHERE .*NOT EXISTS`).
		WithArgs(true, "2024-05-10", "2024-05-10", "2024-05-10").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "is_active"}).
			AddRow(uuid.NewString(), ana.String(), "Creatina", true).
			AddRow(uuid.NewString(), bia.String(), "Vitamina D", true).
			AddRow(uuid.NewString(), ana.String(), "Ômega 3", true))

	pending, err := svc.PendingToday(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Len(t, pending[ana], 2)
	assert.Equal(t, "Vitamina D", pending[bia][0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSupplementWeeklyComparesCalendarDays(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSupplementService(db)
	userID := uuid.New()
	now := time.Date(2024, 5, 10, 21, 0, 0, 0, time.Local)

	mock.ExpectQuery(`SELECT "?taken_at"? FROM "supplement_logs" WHERE user_id = \$1 AND taken_at >= \$2`).
		WithArgs(userID, "2024-05-04").
		WillReturnRows(sqlmock.NewRows([]string{"taken_at"}).
			AddRow(time.Date(2024, 5, 4, 0, 0, 0, 0, time.Local)).
			AddRow(time.Date(2024, 5, 10, 0, 0, 0, 0, time.Local)))

	w, err := svc.Weekly(context.Background(), userID, nil, now)
	require.NoError(t, err)
	assert.Equal(t, 2, w.DaysTaken)
	assert.True(t, w.Days[0].HasUsage)
	assert.True(t, w.Days[6].HasUsage)
	assert.Equal(t, 29, w.Adherence)
	assert.NoError(t, mock.ExpectationsWereMet())
}
