package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/libreclinica/api-gateway/internal/database"
	"github.com/libreclinica/api-gateway/internal/models"
)

// MockFormDAO is a mock implementation of service.FormDAO
type MockFormDAO struct {
	mock.Mock
}

func (m *MockFormDAO) ListByStudySubject(ctx context.Context, studySubjectID int64) ([]models.Form, error) {
	args := m.Called(ctx, studySubjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Form), args.Error(1)
}

func (m *MockFormDAO) GetByID(ctx context.Context, eventCRFID int64) (*models.Form, error) {
	args := m.Called(ctx, eventCRFID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Form), args.Error(1)
}

func (m *MockFormDAO) GetByIDWithTx(ctx context.Context, tx *database.Transaction, eventCRFID int64) (*models.Form, error) {
	args := m.Called(ctx, tx, eventCRFID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Form), args.Error(1)
}

func (m *MockFormDAO) UpdateStatusWithTx(ctx context.Context, tx *database.Transaction, eventCRFID int64, statusID int) error {
	args := m.Called(ctx, tx, eventCRFID, statusID)
	return args.Error(0)
}
