package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docnotify/docnotify-api/internal/models"
)

func TestWasSent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationLogRepository(db)

	rows := sqlmock.NewRows([]string{"exists"}).AddRow(true)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM notification_log WHERE document_id = $1 AND kind = $2 AND window_id = $3)")).
		WithArgs("d1", models.NotificationKindExpiryWarning, "2026-09-15").
		WillReturnRows(rows)

	sent, err := repo.WasSent(context.Background(), "d1", models.NotificationKindExpiryWarning, "2026-09-15")
	require.NoError(t, err)
	assert.True(t, sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationLogRepository(db)

	mock.ExpectExec("INSERT INTO notification_log").WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.NotificationLog{
		UserID:     "sub-1",
		DocumentID: "d1",
		Kind:       models.NotificationKindDocumentExpired,
		WindowID:   "2026-08-01",
	}
	err := repo.RecordSent(context.Background(), entry)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.SentAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
