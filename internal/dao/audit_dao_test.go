package dao

import (
	"context"
	"io"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/libreclinica/api-gateway/internal/database"
	"github.com/libreclinica/api-gateway/internal/models"
)

func newMockDB(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return database.New(sqlx.NewDb(mockDB, "sqlmock"), logger), mock
}

func TestAuditDAO_CreateReturnsGeneratedID(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewAuditDAO(db)

	record := &models.AuditEventRecord{
		AuditTable:  "study",
		EntityID:    7,
		UserID:      3,
		Username:    "jdoe",
		EventTypeID: models.AuditEventTypeEntityUpdated,
	}

	mock.ExpectQuery("INSERT INTO audit_log_event").
		WithArgs("study", int64(3), int64(7), nil, models.AuditEventTypeEntityUpdated,
			nil, nil, nil, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"audit_id"}).AddRow(int64(150)))

	auditID, err := dao.Create(context.Background(), record)

	assert.NoError(t, err)
	assert.Equal(t, int64(150), auditID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditDAO_CreateWithTxUsesTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewAuditDAO(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO audit_log_event").
		WillReturnRows(sqlmock.NewRows([]string{"audit_id"}).AddRow(int64(151)))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx)
	assert.NoError(t, err)

	auditID, err := dao.CreateWithTx(ctx, tx, &models.AuditEventRecord{
		AuditTable:  "study_subject",
		EntityID:    5,
		UserID:      3,
		Username:    "jdoe",
		EventTypeID: models.AuditEventTypeSubjectCreated,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(151), auditID)

	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditDAO_SearchAppliesFiltersAndPagination(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewAuditDAO(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM audit_log_event").
		WithArgs("study").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT (.+) FROM audit_log_event a").
		WithArgs("study", 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"audit_id", "audit_date", "audit_table", "user_id", "user_name", "entity_id", "audit_log_event_type_id"}).
			AddRow(int64(2), "2026-08-30 10:00:00", "study", int64(3), "jdoe", int64(7), 2).
			AddRow(int64(1), "2026-08-29 09:00:00", "study", int64(3), "jdoe", int64(7), 1))

	events, total, err := dao.Search(context.Background(),
		&models.AuditLogFilters{AuditTable: "study"}, 10, 0)

	assert.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, events, 2)
	assert.Equal(t, "jdoe", events[0].UserName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditDAO_GetByEventCRF(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewAuditDAO(db)

	mock.ExpectQuery("SELECT (.+) FROM audit_log_event a").
		WithArgs(int64(44)).
		WillReturnRows(sqlmock.NewRows([]string{"audit_id", "audit_table", "entity_id"}).
			AddRow(int64(9), "event_crf", int64(44)))

	events, err := dao.GetByEventCRF(context.Background(), 44)

	assert.NoError(t, err)
	assert.Len(t, events, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditDAO_GetSignaturesFiltersByEventType(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewAuditDAO(db)

	mock.ExpectQuery("SELECT (.+) FROM audit_log_event a").
		WithArgs("subject", int64(42), models.AuditEventTypeElectronicSignature).
		WillReturnRows(sqlmock.NewRows([]string{"audit_id", "audit_table", "entity_id", "new_value"}).
			AddRow(int64(150), "subject", int64(42), "Approval"))

	signatures, err := dao.GetSignatures(context.Background(), "subject", 42)

	assert.NoError(t, err)
	assert.Len(t, signatures, 1)
	assert.Equal(t, "Approval", *signatures[0].NewValue)
	assert.NoError(t, mock.ExpectationsWereMet())
}
