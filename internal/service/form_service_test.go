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
	client "github.com/libreclinica/api-gateway/internal/soap-client"
)

type formServiceMocks struct {
	formDAO    *mocks.MockFormDAO
	subjectDAO *mocks.MockSubjectDAO
	auditDAO   *mocks.MockAuditDAO
	soap       *mocks.MockSOAPClient
}

func newFormService(t *testing.T, soapEnabled bool) (*FormService, *formServiceMocks, sqlmock.Sqlmock) {
	db, dbMock := newMockDB(t)
	m := &formServiceMocks{
		formDAO:    &mocks.MockFormDAO{},
		subjectDAO: &mocks.MockSubjectDAO{},
		auditDAO:   &mocks.MockAuditDAO{},
		soap:       &mocks.MockSOAPClient{},
	}
	svc := NewFormService(m.formDAO, m.subjectDAO, m.auditDAO, m.soap, db, soapEnabled, newTestLogger())
	return svc, m, dbMock
}

func TestGetForms_ListsForSubject(t *testing.T) {
	svc, m, _ := newFormService(t, true)

	m.subjectDAO.On("GetByID", mock.Anything, int64(5)).
		Return(&models.StudySubject{StudySubjectID: 5}, nil)
	m.formDAO.On("ListByStudySubject", mock.Anything, int64(5)).
		Return([]models.Form{{EventCRFID: 44, CRFName: "Vitals"}}, nil)

	result, err := svc.GetForms(context.Background(), 5)

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, result.Data, 1)
}

func TestGetForms_UnknownSubject(t *testing.T) {
	svc, m, _ := newFormService(t, true)

	m.subjectDAO.On("GetByID", mock.Anything, int64(99)).
		Return(nil, errors.New("study subject not found: 99"))

	result, err := svc.GetForms(context.Background(), 99)

	assert.NoError(t, err)
	assert.False(t, result.Success)
	m.formDAO.AssertNotCalled(t, "ListByStudySubject", mock.Anything, mock.Anything)
}

func TestUpdateFormStatus_InvalidStatusRejected(t *testing.T) {
	svc, _, dbMock := newFormService(t, true)

	req := &models.FormStatusUpdateRequest{StatusID: 42}
	result, err := svc.UpdateFormStatus(context.Background(), 44, req, 3, "jdoe")

	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Invalid form status", result.Message)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestUpdateFormStatus_LockedFormRejected(t *testing.T) {
	svc, m, dbMock := newFormService(t, true)

	dbMock.ExpectBegin()
	dbMock.ExpectRollback()
	m.formDAO.On("GetByIDWithTx", mock.Anything, mock.Anything, int64(44)).
		Return(&models.Form{EventCRFID: 44, StatusID: models.FormStatusLocked}, nil)

	req := &models.FormStatusUpdateRequest{StatusID: models.FormStatusCompleted}
	result, err := svc.UpdateFormStatus(context.Background(), 44, req, 3, "jdoe")

	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Form is locked", result.Message)
	m.formDAO.AssertNotCalled(t, "UpdateStatusWithTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestUpdateFormStatus_SameStatusRejected(t *testing.T) {
	svc, m, dbMock := newFormService(t, true)

	dbMock.ExpectBegin()
	dbMock.ExpectRollback()
	m.formDAO.On("GetByIDWithTx", mock.Anything, mock.Anything, int64(44)).
		Return(&models.Form{EventCRFID: 44, StatusID: models.FormStatusCompleted}, nil)

	req := &models.FormStatusUpdateRequest{StatusID: models.FormStatusCompleted}
	result, err := svc.UpdateFormStatus(context.Background(), 44, req, 3, "jdoe")

	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestUpdateFormStatus_TransitionWithAuditAndMirror(t *testing.T) {
	svc, m, dbMock := newFormService(t, true)

	dbMock.ExpectBegin()
	dbMock.ExpectCommit()
	m.formDAO.On("GetByIDWithTx", mock.Anything, mock.Anything, int64(44)).
		Return(&models.Form{EventCRFID: 44, StatusID: models.FormStatusInitialDataEntry}, nil)
	m.formDAO.On("UpdateStatusWithTx", mock.Anything, mock.Anything, int64(44), models.FormStatusCompleted).
		Return(nil)
	m.auditDAO.On("CreateWithTx", mock.Anything, mock.Anything, mock.MatchedBy(func(r *models.AuditEventRecord) bool {
		return r.AuditTable == "event_crf" && r.EntityID == 44 &&
			r.EventTypeID == models.AuditEventTypeFormStatusChanged &&
			*r.OldValue == "initial_data_entry" && *r.NewValue == "completed" &&
			*r.ReasonForChange == "entry verified"
	})).Return(int64(320), nil)
	m.soap.On("RecordAuditEvent", mock.Anything, mock.Anything).
		Return(&client.AuditEventResult{Success: false}, nil)
	m.formDAO.On("GetByID", mock.Anything, int64(44)).
		Return(&models.Form{EventCRFID: 44, StatusID: models.FormStatusCompleted}, nil)

	req := &models.FormStatusUpdateRequest{StatusID: models.FormStatusCompleted, Reason: "entry verified"}
	result, err := svc.UpdateFormStatus(context.Background(), 44, req, 3, "jdoe")

	assert.NoError(t, err)
	assert.True(t, result.Success)
	form := result.Data.(*models.Form)
	assert.Equal(t, models.FormStatusCompleted, form.StatusID)
	m.auditDAO.AssertExpectations(t)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}
