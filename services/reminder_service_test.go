package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls map[uuid.UUID]string
}

func (n *recordingNotifier) PushToUser(_ context.Context, userID uuid.UUID, _, body string, _ map[string]string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.calls == nil {
		n.calls = map[uuid.UUID]string{}
	}
	n.calls[userID] = body
}

func TestSendRemindersNotifiesEachUserOnce(t *testing.T) {
	db, mock := newMockDB(t)
	push := &recordingNotifier{}
	bus := NewAlertBus(db, nil, push, nil)
	svc := NewReminderService(NewSupplementService(db), bus, nil)
	ana, bia := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "supplements" WHERE .*NOT EXISTS`).
		WithArgs(true, "2024-05-10", "2024-05-10", "2024-05-10").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "is_active"}).
			AddRow(uuid.NewString(), ana.String(), "Creatina", true).
			AddRow(uuid.NewString(), ana.String(), "Magnésio", true).
			AddRow(uuid.NewString(), bia.String(), "Ferro", true))

	n, err := svc.SendReminders(context.Background(), time.Date(2024, 5, 10, 20, 0, 0, 0, time.Local))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, push.calls, 2)
	assert.Contains(t, push.calls[ana], "Creatina")
	assert.Contains(t, push.calls[ana], "Magnésio")
	assert.Contains(t, push.calls[bia], "Ferro")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendRemindersNothingPending(t *testing.T) {
	db, mock := newMockDB(t)
	push := &recordingNotifier{}
	svc := NewReminderService(NewSupplementService(db), NewAlertBus(db, nil, push, nil), nil)

	mock.ExpectQuery(`SELECT \* FROM "supplements" WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name"}))

	n, err := svc.SendReminders(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, push.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderStartRejectsBadSchedule(t *testing.T) {
	svc := NewReminderService(nil, nil, nil)
	assert.Error(t, svc.Start("every day at nine"))
}
