package service

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/libreclinica/api-gateway/internal/models"
	"github.com/libreclinica/api-gateway/internal/service/mocks"
)

type subjectServiceMocks struct {
	subjectDAO *mocks.MockSubjectDAO
	studyDAO   *mocks.MockStudyDAO
	auditDAO   *mocks.MockAuditDAO
	soap       *mocks.MockSOAPClient
}

func newSubjectService(t *testing.T, soapEnabled bool) (*SubjectService, *subjectServiceMocks, sqlmock.Sqlmock) {
	db, dbMock := newMockDB(t)
	m := &subjectServiceMocks{
		subjectDAO: &mocks.MockSubjectDAO{},
		studyDAO:   &mocks.MockStudyDAO{},
		auditDAO:   &mocks.MockAuditDAO{},
		soap:       &mocks.MockSOAPClient{},
	}
	svc := NewSubjectService(m.subjectDAO, m.studyDAO, m.auditDAO, m.soap, db, soapEnabled, newTestLogger())
	return svc, m, dbMock
}

func enrollRequest() *models.SubjectEnrollRequest {
	return &models.SubjectEnrollRequest{
		Label:          "SUBJ-001",
		EnrollmentDate: "2026-05-01",
	}
}

func TestGetSubjects_ListsWithPagination(t *testing.T) {
	svc, m, _ := newSubjectService(t, true)

	m.studyDAO.On("GetByID", mock.Anything, int64(1)).Return(&models.Study{StudyID: 1}, nil)
	filters := &models.SubjectFilters{Page: 1, Limit: 10}
	m.subjectDAO.On("List", mock.Anything, int64(1), filters, 10, 0).
		Return([]models.StudySubject{{StudySubjectID: 5, Label: "SUBJ-001"}}, 1, nil)

	result, err := svc.GetSubjects(context.Background(), 1, filters)

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Pagination.Total)
}

func TestGetSubjects_UnknownStudy(t *testing.T) {
	svc, m, _ := newSubjectService(t, true)

	m.studyDAO.On("GetByID", mock.Anything, int64(99)).Return(nil, errors.New("study not found: 99"))

	result, err := svc.GetSubjects(context.Background(), 99, &models.SubjectFilters{})

	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Study not found", result.Message)
}

func TestGetSubject_WrongStudyIsNotFound(t *testing.T) {
	svc, m, _ := newSubjectService(t, true)

	m.subjectDAO.On("GetByID", mock.Anything, int64(5)).
		Return(&models.StudySubject{StudySubjectID: 5, StudyID: 2}, nil)

	result, err := svc.GetSubject(context.Background(), 1, 5)

	assert.NoError(t, err)
	assert.False(t, result.Success)
}

func TestEnrollSubject_DuplicateLabelRejected(t *testing.T) {
	svc, m, dbMock := newSubjectService(t, true)

	m.studyDAO.On("GetByID", mock.Anything, int64(1)).
		Return(&models.Study{StudyID: 1, StatusID: models.StatusAvailable}, nil)
	dbMock.ExpectBegin()
	dbMock.ExpectRollback()
	m.subjectDAO.On("ExistsByLabelWithTx", mock.Anything, mock.Anything, int64(1), "SUBJ-001").
		Return(true, nil)

	result, err := svc.EnrollSubject(context.Background(), 1, enrollRequest(), 3, "jdoe")

	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Subject with this label already exists in study", result.Message)
	m.subjectDAO.AssertNotCalled(t, "CreateSubjectWithTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestEnrollSubject_DuplicatePersonIDRejected(t *testing.T) {
	svc, m, dbMock := newSubjectService(t, true)

	m.studyDAO.On("GetByID", mock.Anything, int64(1)).
		Return(&models.Study{StudyID: 1, StatusID: models.StatusAvailable}, nil)
	dbMock.ExpectBegin()
	dbMock.ExpectRollback()
	m.subjectDAO.On("ExistsByLabelWithTx", mock.Anything, mock.Anything, int64(1), "SUBJ-001").
		Return(false, nil)
	m.subjectDAO.On("ExistsByPersonIDWithTx", mock.Anything, mock.Anything, int64(1), "P-42").
		Return(true, nil)

	req := enrollRequest()
	req.UniquePersonID = strPtr("P-42")
	result, err := svc.EnrollSubject(context.Background(), 1, req, 3, "jdoe")

	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestEnrollSubject_ClosedStudyRejected(t *testing.T) {
	svc, m, dbMock := newSubjectService(t, true)

	m.studyDAO.On("GetByID", mock.Anything, int64(1)).
		Return(&models.Study{StudyID: 1, StatusID: models.StatusLocked}, nil)

	result, err := svc.EnrollSubject(context.Background(), 1, enrollRequest(), 3, "jdoe")

	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Study is not open for enrollment", result.Message)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestEnrollSubject_AtomicWithAuditAndMirror(t *testing.T) {
	svc, m, dbMock := newSubjectService(t, true)

	m.studyDAO.On("GetByID", mock.Anything, int64(1)).
		Return(&models.Study{StudyID: 1, StatusID: models.StatusAvailable}, nil)
	dbMock.ExpectBegin()
	dbMock.ExpectCommit()
	m.subjectDAO.On("ExistsByLabelWithTx", mock.Anything, mock.Anything, int64(1), "SUBJ-001").
		Return(false, nil)
	m.subjectDAO.On("CreateSubjectWithTx", mock.Anything, mock.Anything, mock.Anything, int64(3)).
		Return(int64(70), nil)
	m.subjectDAO.On("EnrollWithTx", mock.Anything, mock.Anything, int64(1), int64(70), mock.Anything, "SS_SUBJ001", int64(3)).
		Return(int64(500), nil)
	m.auditDAO.On("CreateWithTx", mock.Anything, mock.Anything, mock.MatchedBy(func(r *models.AuditEventRecord) bool {
		return r.AuditTable == "study_subject" && r.EntityID == 500 &&
			r.EventTypeID == models.AuditEventTypeSubjectCreated
	})).Return(int64(310), nil)
	m.soap.On("RecordAuditEvent", mock.Anything, mock.Anything).
		Return(nil, errors.New("legacy down"))
	m.subjectDAO.On("GetByID", mock.Anything, int64(500)).
		Return(&models.StudySubject{StudySubjectID: 500, Label: "SUBJ-001", StudyID: 1}, nil)

	result, err := svc.EnrollSubject(context.Background(), 1, enrollRequest(), 3, "jdoe")

	// The mirror failure never surfaces.
	assert.NoError(t, err)
	assert.True(t, result.Success)
	subject := result.Data.(*models.StudySubject)
	assert.Equal(t, int64(500), subject.StudySubjectID)
	m.soap.AssertExpectations(t)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestEnrollSubject_MirrorSkippedWhenSOAPDisabled(t *testing.T) {
	svc, m, dbMock := newSubjectService(t, false)

	m.studyDAO.On("GetByID", mock.Anything, int64(1)).
		Return(&models.Study{StudyID: 1, StatusID: models.StatusAvailable}, nil)
	dbMock.ExpectBegin()
	dbMock.ExpectCommit()
	m.subjectDAO.On("ExistsByLabelWithTx", mock.Anything, mock.Anything, int64(1), "SUBJ-001").
		Return(false, nil)
	m.subjectDAO.On("CreateSubjectWithTx", mock.Anything, mock.Anything, mock.Anything, int64(3)).
		Return(int64(70), nil)
	m.subjectDAO.On("EnrollWithTx", mock.Anything, mock.Anything, int64(1), int64(70), mock.Anything, mock.Anything, int64(3)).
		Return(int64(501), nil)
	m.auditDAO.On("CreateWithTx", mock.Anything, mock.Anything, mock.Anything).Return(int64(311), nil)
	m.subjectDAO.On("GetByID", mock.Anything, int64(501)).
		Return(&models.StudySubject{StudySubjectID: 501, StudyID: 1}, nil)

	result, err := svc.EnrollSubject(context.Background(), 1, enrollRequest(), 3, "jdoe")

	assert.NoError(t, err)
	assert.True(t, result.Success)
	m.soap.AssertNotCalled(t, "RecordAuditEvent", mock.Anything, mock.Anything)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}
