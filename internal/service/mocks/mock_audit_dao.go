package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/libreclinica/api-gateway/internal/database"
	"github.com/libreclinica/api-gateway/internal/models"
)

// MockAuditDAO is a mock implementation of service.AuditDAO
type MockAuditDAO struct {
	mock.Mock
}

func (m *MockAuditDAO) Create(ctx context.Context, record *models.AuditEventRecord) (int64, error) {
	args := m.Called(ctx, record)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuditDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, record *models.AuditEventRecord) (int64, error) {
	args := m.Called(ctx, tx, record)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuditDAO) Search(ctx context.Context, filters *models.AuditLogFilters, limit, offset int) ([]models.AuditEvent, int, error) {
	args := m.Called(ctx, filters, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.AuditEvent), args.Int(1), args.Error(2)
}

func (m *MockAuditDAO) GetByStudySubject(ctx context.Context, studySubjectID int64) ([]models.AuditEvent, error) {
	args := m.Called(ctx, studySubjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AuditEvent), args.Error(1)
}

func (m *MockAuditDAO) GetByEventCRF(ctx context.Context, eventCRFID int64) ([]models.AuditEvent, error) {
	args := m.Called(ctx, eventCRFID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AuditEvent), args.Error(1)
}

func (m *MockAuditDAO) GetSignatures(ctx context.Context, auditTable string, entityID int64) ([]models.AuditEvent, error) {
	args := m.Called(ctx, auditTable, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AuditEvent), args.Error(1)
}
