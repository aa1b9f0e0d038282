package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/libreclinica/api-gateway/internal/database"
	"github.com/libreclinica/api-gateway/internal/models"
)

// MockSubjectDAO is a mock implementation of service.SubjectDAO
type MockSubjectDAO struct {
	mock.Mock
}

func (m *MockSubjectDAO) List(ctx context.Context, studyID int64, filters *models.SubjectFilters, limit, offset int) ([]models.StudySubject, int, error) {
	args := m.Called(ctx, studyID, filters, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.StudySubject), args.Int(1), args.Error(2)
}

func (m *MockSubjectDAO) GetByID(ctx context.Context, studySubjectID int64) (*models.StudySubject, error) {
	args := m.Called(ctx, studySubjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudySubject), args.Error(1)
}

func (m *MockSubjectDAO) ExistsByLabelWithTx(ctx context.Context, tx *database.Transaction, studyID int64, label string) (bool, error) {
	args := m.Called(ctx, tx, studyID, label)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubjectDAO) ExistsByPersonIDWithTx(ctx context.Context, tx *database.Transaction, studyID int64, personID string) (bool, error) {
	args := m.Called(ctx, tx, studyID, personID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubjectDAO) CreateSubjectWithTx(ctx context.Context, tx *database.Transaction, request *models.SubjectEnrollRequest, ownerID int64) (int64, error) {
	args := m.Called(ctx, tx, request, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSubjectDAO) EnrollWithTx(ctx context.Context, tx *database.Transaction, studyID, subjectID int64, request *models.SubjectEnrollRequest, oid string, ownerID int64) (int64, error) {
	args := m.Called(ctx, tx, studyID, subjectID, request, oid, ownerID)
	return args.Get(0).(int64), args.Error(1)
}
