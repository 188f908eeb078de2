package attachments

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "postgres")
	return NewStore(db), mock
}

func TestGetExtractedText(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT extracted_text FROM attachment_texts").
		WithArgs("msg-1").
		WillReturnRows(sqlmock.NewRows([]string{"extracted_text"}).AddRow("report body"))

	text, found, err := store.GetExtractedText(context.Background(), "msg-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "report body", text)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetExtractedTextNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT extracted_text FROM attachment_texts").
		WithArgs("msg-none").
		WillReturnRows(sqlmock.NewRows([]string{"extracted_text"}))

	text, found, err := store.GetExtractedText(context.Background(), "msg-none")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, text)
}

func TestGetExtractedTextServedFromCache(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT extracted_text FROM attachment_texts").
		WithArgs("msg-1").
		WillReturnRows(sqlmock.NewRows([]string{"extracted_text"}).AddRow("cached body"))

	_, _, err := store.GetExtractedText(context.Background(), "msg-1")
	require.NoError(t, err)

	// Second read must not hit the database
	text, found, err := store.GetExtractedText(context.Background(), "msg-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "cached body", text)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveExtractedTextInvalidatesCache(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT extracted_text FROM attachment_texts").
		WithArgs("msg-1").
		WillReturnRows(sqlmock.NewRows([]string{"extracted_text"}).AddRow("old text"))
	mock.ExpectExec("INSERT INTO attachment_texts").
		WithArgs("msg-1", "new text").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT extracted_text FROM attachment_texts").
		WithArgs("msg-1").
		WillReturnRows(sqlmock.NewRows([]string{"extracted_text"}).AddRow("new text"))

	_, _, err := store.GetExtractedText(context.Background(), "msg-1")
	require.NoError(t, err)

	require.NoError(t, store.SaveExtractedText(context.Background(), "msg-1", "new text"))

	text, found, err := store.GetExtractedText(context.Background(), "msg-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "new text", text)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteForMessage(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM attachment_texts").
		WithArgs("msg-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.DeleteForMessage(context.Background(), "msg-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
