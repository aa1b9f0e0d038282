package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/libreclinica/api-gateway/internal/database"
	"github.com/libreclinica/api-gateway/internal/models"
)

// MockStudyDAO is a mock implementation of service.StudyDAO
type MockStudyDAO struct {
	mock.Mock
}

func (m *MockStudyDAO) GetByID(ctx context.Context, studyID int64) (*models.Study, error) {
	args := m.Called(ctx, studyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Study), args.Error(1)
}

func (m *MockStudyDAO) GetOID(ctx context.Context, studyID int64) (string, error) {
	args := m.Called(ctx, studyID)
	return args.String(0), args.Error(1)
}

func (m *MockStudyDAO) ListVisible(ctx context.Context, userID int64, isAdmin bool, statusFilter string, limit, offset int) ([]models.Study, int, error) {
	args := m.Called(ctx, userID, isAdmin, statusFilter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Study), args.Int(1), args.Error(2)
}

func (m *MockStudyDAO) GetStatsByIdentifiers(ctx context.Context, oids, uniqueIdentifiers []string) ([]models.StudyStats, error) {
	args := m.Called(ctx, oids, uniqueIdentifiers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StudyStats), args.Error(1)
}

func (m *MockStudyDAO) ExistsByUniqueIdentifierWithTx(ctx context.Context, tx *database.Transaction, uniqueIdentifier string, excludeStudyID int64) (bool, error) {
	args := m.Called(ctx, tx, uniqueIdentifier, excludeStudyID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStudyDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, request *models.StudyCreateRequest, ownerID int64, oid string) (int64, error) {
	args := m.Called(ctx, tx, request, ownerID, oid)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStudyDAO) InsertDefaultParametersWithTx(ctx context.Context, tx *database.Transaction, studyID int64) error {
	args := m.Called(ctx, tx, studyID)
	return args.Error(0)
}

func (m *MockStudyDAO) InsertOwnerRoleWithTx(ctx context.Context, tx *database.Transaction, studyID int64, username string) error {
	args := m.Called(ctx, tx, studyID, username)
	return args.Error(0)
}

func (m *MockStudyDAO) UpdateWithTx(ctx context.Context, tx *database.Transaction, study *models.Study) error {
	args := m.Called(ctx, tx, study)
	return args.Error(0)
}

func (m *MockStudyDAO) UpdateStatusWithTx(ctx context.Context, tx *database.Transaction, studyID int64, statusID int) error {
	args := m.Called(ctx, tx, studyID, statusID)
	return args.Error(0)
}

func (m *MockStudyDAO) CountEnrolledSubjects(ctx context.Context, studyID int64) (int, error) {
	args := m.Called(ctx, studyID)
	return args.Int(0), args.Error(1)
}

func (m *MockStudyDAO) GetEventDefinitions(ctx context.Context, studyID int64) ([]models.EventDefinition, error) {
	args := m.Called(ctx, studyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EventDefinition), args.Error(1)
}

func (m *MockStudyDAO) GetCRFs(ctx context.Context, studyID int64) ([]models.CRFDefinition, error) {
	args := m.Called(ctx, studyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CRFDefinition), args.Error(1)
}
