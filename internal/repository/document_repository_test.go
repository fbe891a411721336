package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docnotify/docnotify-api/internal/models"
)

func TestCreateDocument(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectExec("INSERT INTO documents").WillReturnResult(sqlmock.NewResult(1, 1))

	doc := &models.Document{UserID: "sub-1", Title: "Passport", Reminders: true}
	err := repo.Create(context.Background(), doc)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.NotNil(t, doc.FileURLs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListReminderEnabled(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "description", "expiry_date", "reminders", "file_urls", "created_at", "updated_at"}).
		AddRow("d1", "sub-1", "Passport", nil, "2026-09-15", true, "{}", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, title, description, expiry_date, reminders, file_urls, created_at, updated_at FROM documents WHERE user_id = $1 AND reminders = TRUE")).
		WithArgs("sub-1").
		WillReturnRows(rows)

	docs, err := repo.ListReminderEnabled(context.Background(), "sub-1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Passport", docs[0].Title)
	assert.True(t, docs[0].Reminders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendFileURL(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents SET file_urls = array_append(file_urls, $2), updated_at = $3 WHERE id = $1")).
		WithArgs("d1", "docs/d1/passport.pdf", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AppendFileURL(context.Background(), "d1", "docs/d1/passport.pdf")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteDocument(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents WHERE id = $1")).
		WithArgs("d1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), "d1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
