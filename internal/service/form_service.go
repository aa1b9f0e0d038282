package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/libreclinica/api-gateway/internal/database"
	"github.com/libreclinica/api-gateway/internal/models"
)

// FormService manages event CRF listings and workflow status transitions.
// Form state is database-only; the legacy surface exposes no form listing,
// and the workflow status lives in the event_crf table the gateway writes.
type FormService struct {
	formDAO     FormDAO
	subjectDAO  SubjectDAO
	auditDAO    AuditDAO
	soap        SOAPClient
	db          *database.DB
	soapEnabled bool
	logger      *logrus.Logger
}

// NewFormService creates a new form service instance
func NewFormService(formDAO FormDAO, subjectDAO SubjectDAO, auditDAO AuditDAO, soap SOAPClient, db *database.DB, soapEnabled bool, logger *logrus.Logger) *FormService {
	return &FormService{
		formDAO:     formDAO,
		subjectDAO:  subjectDAO,
		auditDAO:    auditDAO,
		soap:        soap,
		db:          db,
		soapEnabled: soapEnabled,
		logger:      logger,
	}
}

// GetForms lists the event CRFs recorded for a study subject.
func (s *FormService) GetForms(ctx context.Context, studySubjectID int64) (*models.ServiceResult, error) {
	if _, err := s.subjectDAO.GetByID(ctx, studySubjectID); err != nil {
		return &models.ServiceResult{Success: false, Message: "Subject not found"}, nil
	}

	forms, err := s.formDAO.ListByStudySubject(ctx, studySubjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	if forms == nil {
		forms = []models.Form{}
	}

	return &models.ServiceResult{Success: true, Data: forms}, nil
}

// GetForm retrieves one event CRF by id.
func (s *FormService) GetForm(ctx context.Context, eventCRFID int64) (*models.ServiceResult, error) {
	form, err := s.formDAO.GetByID(ctx, eventCRFID)
	if err != nil {
		return &models.ServiceResult{Success: false, Message: "Form not found"}, nil
	}
	return &models.ServiceResult{Success: true, Data: form}, nil
}

// UpdateFormStatus transitions an event CRF through the data entry
// workflow. The status change and its audit row commit atomically; a locked
// form rejects further transitions until it is unlocked by an update to a
// different status performed by an administrator flow outside this gateway.
func (s *FormService) UpdateFormStatus(ctx context.Context, eventCRFID int64, req *models.FormStatusUpdateRequest, userID int64, username string) (*models.ServiceResult, error) {
	if !models.IsValidFormStatus(req.StatusID) {
		return &models.ServiceResult{Success: false, Message: "Invalid form status"}, nil
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	form, err := s.formDAO.GetByIDWithTx(ctx, tx, eventCRFID)
	if err != nil {
		return &models.ServiceResult{Success: false, Message: "Form not found"}, nil
	}
	if form.StatusID == models.FormStatusLocked {
		return &models.ServiceResult{Success: false, Message: "Form is locked"}, nil
	}
	if form.StatusID == req.StatusID {
		return &models.ServiceResult{Success: false, Message: "Form is already in the requested status"}, nil
	}

	if err := s.formDAO.UpdateStatusWithTx(ctx, tx, eventCRFID, req.StatusID); err != nil {
		return nil, fmt.Errorf("failed to update form status: %w", err)
	}

	oldValue := models.FormStatusName(form.StatusID)
	newValue := models.FormStatusName(req.StatusID)
	record := &models.AuditEventRecord{
		AuditTable:  "event_crf",
		EntityID:    eventCRFID,
		UserID:      userID,
		Username:    username,
		EventTypeID: models.AuditEventTypeFormStatusChanged,
		OldValue:    &oldValue,
		NewValue:    &newValue,
	}
	if req.Reason != "" {
		reason := req.Reason
		record.ReasonForChange = &reason
	}
	if _, err := s.auditDAO.CreateWithTx(ctx, tx, record); err != nil {
		return nil, fmt.Errorf("failed to record form status audit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.mirrorFormStatusChange(ctx, record)

	updated, err := s.formDAO.GetByID(ctx, eventCRFID)
	if err != nil {
		return nil, fmt.Errorf("failed to load updated form: %w", err)
	}

	return &models.ServiceResult{Success: true, Data: updated, Message: "Form status updated successfully"}, nil
}

func (s *FormService) mirrorFormStatusChange(ctx context.Context, record *models.AuditEventRecord) {
	if !s.soapEnabled {
		return
	}
	resource := fmt.Sprintf("event_crf/%d", record.EntityID)
	result, err := s.soap.RecordAuditEvent(ctx, record)
	if err != nil {
		logSOAPMirrorFailure(s.logger, "recordAuditEvent", resource, err.Error())
		return
	}
	if !result.Success {
		logSOAPMirrorFailure(s.logger, "recordAuditEvent", resource, "unsuccessful soap result")
	}
}
