package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/libreclinica/api-gateway/internal/models"
	"github.com/libreclinica/api-gateway/internal/service/mocks"
	client "github.com/libreclinica/api-gateway/internal/soap-client"
)

// sha1 hex of "secret", the legacy credential format
const legacySecretDigest = "e5e9fa1ba31ecd1ae84f75caaa474f3a663f05f4"

func validAuditRecord() *models.AuditEventRecord {
	return &models.AuditEventRecord{
		AuditTable:  "study",
		EntityID:    7,
		UserID:      3,
		Username:    "jdoe",
		EventTypeID: models.AuditEventTypeEntityUpdated,
	}
}

func TestRecordAuditEvent_DatabaseIsSourceOfTruth(t *testing.T) {
	auditDAO := &mocks.MockAuditDAO{}
	soap := &mocks.MockSOAPClient{}
	svc := NewAuditService(auditDAO, &mocks.MockUserDAO{}, soap, true, newTestLogger())

	record := validAuditRecord()
	auditDAO.On("Create", mock.Anything, record).Return(int64(101), nil)
	soap.On("RecordAuditEvent", mock.Anything, record).Return(nil, errors.New("connection refused"))

	result, err := svc.RecordAuditEvent(context.Background(), record)

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, AuditEventCreated{AuditID: 101}, result.Data)
	soap.AssertExpectations(t)
}

func TestRecordAuditEvent_MirrorUnsuccessfulResultAbsorbed(t *testing.T) {
	auditDAO := &mocks.MockAuditDAO{}
	soap := &mocks.MockSOAPClient{}
	svc := NewAuditService(auditDAO, &mocks.MockUserDAO{}, soap, true, newTestLogger())

	record := validAuditRecord()
	auditDAO.On("Create", mock.Anything, record).Return(int64(102), nil)
	soap.On("RecordAuditEvent", mock.Anything, record).Return(&client.AuditEventResult{Success: false}, nil)

	result, err := svc.RecordAuditEvent(context.Background(), record)

	assert.NoError(t, err)
	assert.True(t, result.Success)
}

func TestRecordAuditEvent_SOAPDisabledSkipsMirror(t *testing.T) {
	auditDAO := &mocks.MockAuditDAO{}
	soap := &mocks.MockSOAPClient{}
	svc := NewAuditService(auditDAO, &mocks.MockUserDAO{}, soap, false, newTestLogger())

	record := validAuditRecord()
	auditDAO.On("Create", mock.Anything, record).Return(int64(103), nil)

	result, err := svc.RecordAuditEvent(context.Background(), record)

	assert.NoError(t, err)
	assert.True(t, result.Success)
	soap.AssertNotCalled(t, "RecordAuditEvent", mock.Anything, mock.Anything)
}

func TestRecordAuditEvent_DatabaseFailureIsFatal(t *testing.T) {
	auditDAO := &mocks.MockAuditDAO{}
	soap := &mocks.MockSOAPClient{}
	svc := NewAuditService(auditDAO, &mocks.MockUserDAO{}, soap, true, newTestLogger())

	record := validAuditRecord()
	auditDAO.On("Create", mock.Anything, record).Return(int64(0), errors.New("deadlock detected"))

	result, err := svc.RecordAuditEvent(context.Background(), record)

	assert.Error(t, err)
	assert.Nil(t, result)
	soap.AssertNotCalled(t, "RecordAuditEvent", mock.Anything, mock.Anything)
}

func TestRecordAuditEvent_ValidatesRequiredFields(t *testing.T) {
	auditDAO := &mocks.MockAuditDAO{}
	svc := NewAuditService(auditDAO, &mocks.MockUserDAO{}, &mocks.MockSOAPClient{}, true, newTestLogger())

	record := validAuditRecord()
	record.AuditTable = ""

	result, err := svc.RecordAuditEvent(context.Background(), record)

	assert.NoError(t, err)
	assert.False(t, result.Success)
	auditDAO.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetSubjectAuditTrail_EmptySOAPTrailIsValid(t *testing.T) {
	auditDAO := &mocks.MockAuditDAO{}
	soap := &mocks.MockSOAPClient{}
	svc := NewAuditService(auditDAO, &mocks.MockUserDAO{}, soap, true, newTestLogger())

	soap.On("GetSubjectAuditTrail", mock.Anything, int64(1), int64(5), int64(3), "jdoe").
		Return(&client.AuditTrailResult{Success: true, Data: []models.ODMAuditRecord{}}, nil)

	result, err := svc.GetSubjectAuditTrail(context.Background(), 1, 5, 3, "jdoe")

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, result.Data, 0)
	auditDAO.AssertNotCalled(t, "GetByStudySubject", mock.Anything, mock.Anything)
}

func TestGetSubjectAuditTrail_FallsBackOnSOAPError(t *testing.T) {
	auditDAO := &mocks.MockAuditDAO{}
	soap := &mocks.MockSOAPClient{}
	svc := NewAuditService(auditDAO, &mocks.MockUserDAO{}, soap, true, newTestLogger())

	soap.On("GetSubjectAuditTrail", mock.Anything, int64(1), int64(5), int64(3), "jdoe").
		Return(nil, errors.New("timeout"))
	dbEvents := []models.AuditEvent{{AuditID: 9, AuditTable: "study_subject", EntityID: 5}}
	auditDAO.On("GetByStudySubject", mock.Anything, int64(5)).Return(dbEvents, nil)

	result, err := svc.GetSubjectAuditTrail(context.Background(), 1, 5, 3, "jdoe")

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, dbEvents, result.Data)
}

func TestGetFormAuditTrail_FallsBackOnUnsuccessfulResult(t *testing.T) {
	auditDAO := &mocks.MockAuditDAO{}
	soap := &mocks.MockSOAPClient{}
	svc := NewAuditService(auditDAO, &mocks.MockUserDAO{}, soap, true, newTestLogger())

	soap.On("GetFormAuditTrail", mock.Anything, int64(44), int64(3), "jdoe").
		Return(&client.AuditTrailResult{Success: false}, nil)
	auditDAO.On("GetByEventCRF", mock.Anything, int64(44)).Return([]models.AuditEvent{}, nil)

	result, err := svc.GetFormAuditTrail(context.Background(), 44, 3, "jdoe")

	assert.NoError(t, err)
	assert.True(t, result.Success)
	auditDAO.AssertExpectations(t)
}

func TestGetAuditLogs_FormScopeRoutesToFormTrail(t *testing.T) {
	auditDAO := &mocks.MockAuditDAO{}
	soap := &mocks.MockSOAPClient{}
	svc := NewAuditService(auditDAO, &mocks.MockUserDAO{}, soap, true, newTestLogger())

	soap.On("GetFormAuditTrail", mock.Anything, int64(44), int64(3), "jdoe").
		Return(&client.AuditTrailResult{Success: true, Data: []models.ODMAuditRecord{{ID: "AE_1"}}}, nil)

	filters := &models.AuditLogFilters{EventCRFID: 44}
	result, err := svc.GetAuditLogs(context.Background(), filters, 3, "jdoe")

	assert.NoError(t, err)
	assert.True(t, result.Success)
	auditDAO.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetAuditLogs_UnscopedIsDatabaseOnly(t *testing.T) {
	auditDAO := &mocks.MockAuditDAO{}
	soap := &mocks.MockSOAPClient{}
	svc := NewAuditService(auditDAO, &mocks.MockUserDAO{}, soap, true, newTestLogger())

	filters := &models.AuditLogFilters{AuditTable: "study", Page: 2, Limit: 10}
	auditDAO.On("Search", mock.Anything, filters, 10, 10).
		Return([]models.AuditEvent{{AuditID: 1}}, 11, nil)

	result, err := svc.GetAuditLogs(context.Background(), filters, 3, "jdoe")

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Pagination.Page)
	assert.Equal(t, 11, result.Pagination.Total)
	assert.Equal(t, 2, result.Pagination.TotalPages)
	soap.AssertNotCalled(t, "GetSubjectAuditTrail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordElectronicSignature_RejectsInvalidCredential(t *testing.T) {
	auditDAO := &mocks.MockAuditDAO{}
	userDAO := &mocks.MockUserDAO{}
	soap := &mocks.MockSOAPClient{}
	svc := NewAuditService(auditDAO, userDAO, soap, true, newTestLogger())

	userDAO.On("GetByUsername", mock.Anything, "jdoe").
		Return(&models.UserAccount{UserID: 3, UserName: "jdoe", Passwd: legacySecretDigest}, nil)

	sig := &models.SignatureRequest{Username: "jdoe", Password: "wrong", Meaning: models.SignatureMeaningApproval}
	result, err := svc.RecordElectronicSignature(context.Background(), "event_crf", 42, sig, 3, "jdoe")

	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Invalid signer credentials", result.Message)
	soap.AssertNotCalled(t, "RecordElectronicSignature", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	auditDAO.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRecordElectronicSignature_SOAPPreferredWithDatabaseBackup(t *testing.T) {
	auditDAO := &mocks.MockAuditDAO{}
	userDAO := &mocks.MockUserDAO{}
	soap := &mocks.MockSOAPClient{}
	svc := NewAuditService(auditDAO, userDAO, soap, true, newTestLogger())

	userDAO.On("GetByUsername", mock.Anything, "jdoe").
		Return(&models.UserAccount{UserID: 3, UserName: "jdoe", Passwd: legacySecretDigest}, nil)
	sig := &models.SignatureRequest{Username: "jdoe", Password: "secret", Meaning: models.SignatureMeaningApproval}
	soap.On("RecordElectronicSignature", mock.Anything, "event_crf", int64(42), sig, int64(3), "jdoe").
		Return(&client.SignatureCallResult{Success: true, SignatureID: 777}, nil)
	auditDAO.On("Create", mock.Anything, mock.MatchedBy(func(r *models.AuditEventRecord) bool {
		return r.EventTypeID == models.AuditEventTypeElectronicSignature && r.EntityID == 42
	})).Return(int64(200), nil)

	result, err := svc.RecordElectronicSignature(context.Background(), "event_crf", 42, sig, 3, "jdoe")

	assert.NoError(t, err)
	assert.True(t, result.Success)
	data := result.Data.(models.SignatureResult)
	assert.Equal(t, int64(777), data.SignatureID)
	assert.Equal(t, models.SignatureMeaningApproval, data.Meaning)
	auditDAO.AssertExpectations(t)
}

func TestRecordElectronicSignature_FallbackSynthesizesSignatureID(t *testing.T) {
	auditDAO := &mocks.MockAuditDAO{}
	userDAO := &mocks.MockUserDAO{}
	soap := &mocks.MockSOAPClient{}
	svc := NewAuditService(auditDAO, userDAO, soap, true, newTestLogger())

	userDAO.On("GetByUsername", mock.Anything, "jdoe").
		Return(&models.UserAccount{UserID: 3, UserName: "jdoe", Passwd: legacySecretDigest}, nil)
	sig := &models.SignatureRequest{Username: "jdoe", Password: "secret", Meaning: models.SignatureMeaningReview}
	soap.On("RecordElectronicSignature", mock.Anything, "event_crf", int64(42), sig, int64(3), "jdoe").
		Return(&client.SignatureCallResult{Success: false}, nil)
	auditDAO.On("Create", mock.Anything, mock.Anything).Return(int64(201), nil)

	result, err := svc.RecordElectronicSignature(context.Background(), "event_crf", 42, sig, 3, "jdoe")

	assert.NoError(t, err)
	assert.True(t, result.Success)
	data := result.Data.(models.SignatureResult)
	assert.Equal(t, int64(42), data.SignatureID)
	assert.NotZero(t, data.SignatureID)
}

func TestRecordElectronicSignature_FallbackDatabaseFailureIsFatal(t *testing.T) {
	auditDAO := &mocks.MockAuditDAO{}
	userDAO := &mocks.MockUserDAO{}
	soap := &mocks.MockSOAPClient{}
	svc := NewAuditService(auditDAO, userDAO, soap, false, newTestLogger())

	userDAO.On("GetByUsername", mock.Anything, "jdoe").
		Return(&models.UserAccount{UserID: 3, UserName: "jdoe", Passwd: legacySecretDigest}, nil)
	sig := &models.SignatureRequest{Username: "jdoe", Password: "secret", Meaning: models.SignatureMeaningReview}
	auditDAO.On("Create", mock.Anything, mock.Anything).Return(int64(0), errors.New("disk full"))

	result, err := svc.RecordElectronicSignature(context.Background(), "event_crf", 42, sig, 3, "jdoe")

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestGetSignatures_ReadsFromAuditTable(t *testing.T) {
	auditDAO := &mocks.MockAuditDAO{}
	soap := &mocks.MockSOAPClient{}
	svc := NewAuditService(auditDAO, &mocks.MockUserDAO{}, soap, true, newTestLogger())

	meaning := "Approval"
	rows := []models.AuditEvent{{AuditID: 150, AuditTable: "subject", EntityID: 42, NewValue: &meaning}}
	auditDAO.On("GetSignatures", mock.Anything, "subject", int64(42)).Return(rows, nil)

	result, err := svc.GetSignatures(context.Background(), "subject", 42)

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, rows, result.Data)
	assert.Empty(t, soap.Calls)
}

func TestGetSignatures_NoRowsIsEmptyList(t *testing.T) {
	auditDAO := &mocks.MockAuditDAO{}
	svc := NewAuditService(auditDAO, &mocks.MockUserDAO{}, &mocks.MockSOAPClient{}, false, newTestLogger())

	auditDAO.On("GetSignatures", mock.Anything, "subject", int64(42)).
		Return([]models.AuditEvent(nil), nil)

	result, err := svc.GetSignatures(context.Background(), "subject", 42)

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []models.AuditEvent{}, result.Data)
}

func TestGetServiceStatus_ReflectsConfiguration(t *testing.T) {
	enabled := NewAuditService(&mocks.MockAuditDAO{}, &mocks.MockUserDAO{}, &mocks.MockSOAPClient{}, true, newTestLogger())
	disabled := NewAuditService(&mocks.MockAuditDAO{}, &mocks.MockUserDAO{}, &mocks.MockSOAPClient{}, false, newTestLogger())

	on := enabled.GetServiceStatus()
	assert.True(t, on.SOAPEnabled)
	assert.Equal(t, models.ModeSOAPPrimary, on.Mode)

	off := disabled.GetServiceStatus()
	assert.False(t, off.SOAPEnabled)
	assert.Equal(t, models.ModeDatabaseOnly, off.Mode)
	assert.Equal(t, "Database only mode (SOAP disabled)", off.Description)
}
