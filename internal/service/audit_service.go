package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/libreclinica/api-gateway/internal/models"
	"github.com/libreclinica/api-gateway/pkg/utils"
)

// AuditService reconciles the regulatory audit trail between the database
// and the legacy SOAP services. The database is the durability boundary for
// every write: loss of the Part 11 audit trail is unacceptable, but
// availability must not depend on the legacy endpoint being reachable.
type AuditService struct {
	auditDAO    AuditDAO
	userDAO     UserDAO
	soap        SOAPClient
	soapEnabled bool
	logger      *logrus.Logger
}

// NewAuditService creates a new audit service instance. The soapEnabled
// flag is injected at construction so both branches are deterministically
// testable.
func NewAuditService(auditDAO AuditDAO, userDAO UserDAO, soap SOAPClient, soapEnabled bool, logger *logrus.Logger) *AuditService {
	return &AuditService{
		auditDAO:    auditDAO,
		userDAO:     userDAO,
		soap:        soap,
		soapEnabled: soapEnabled,
		logger:      logger,
	}
}

// AuditEventCreated identifies the durable audit row
type AuditEventCreated struct {
	AuditID int64 `json:"auditId"`
}

// RecordAuditEvent persists one audit event. The database insert is the
// single source of truth for whether the event happened; the SOAP call is
// best-effort duplication for legacy-system parity, and its outcome is
// recorded only in logs, never in the return value.
func (s *AuditService) RecordAuditEvent(ctx context.Context, record *models.AuditEventRecord) (*models.ServiceResult, error) {
	if msg := validateAuditRecord(record); msg != "" {
		return &models.ServiceResult{Success: false, Message: msg}, nil
	}

	auditID, err := s.auditDAO.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to record audit event: %w", err)
	}

	if s.soapEnabled {
		s.mirrorAuditEvent(ctx, record, auditID)
	}

	return &models.ServiceResult{
		Success: true,
		Data:    AuditEventCreated{AuditID: auditID},
	}, nil
}

// mirrorAuditEvent attempts the best-effort SOAP duplicate of an audit
// event after the database write has succeeded. Failures are confined here;
// nothing they do can unwind into the primary call's error channel.
func (s *AuditService) mirrorAuditEvent(ctx context.Context, record *models.AuditEventRecord, auditID int64) {
	resource := fmt.Sprintf("%s/%d", record.AuditTable, record.EntityID)

	result, err := s.soap.RecordAuditEvent(ctx, record)
	if err != nil {
		logSOAPMirrorFailure(s.logger, "recordAuditEvent", resource, err.Error())
		return
	}
	if !result.Success {
		logSOAPMirrorFailure(s.logger, "recordAuditEvent", resource, "unsuccessful soap result")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"auditId":     auditID,
		"soapAuditId": result.AuditID,
	}).Debug("Audit event mirrored to legacy system")
}

// GetAuditLogs retrieves audit events matching the filters. A form or
// subject scope is routed through the corresponding legacy trail endpoint
// with database fallback; unscoped queries have no SOAP equivalent and are
// served from the database only.
func (s *AuditService) GetAuditLogs(ctx context.Context, filters *models.AuditLogFilters, userID int64, username string) (*models.ServiceResult, error) {
	if filters.EventCRFID > 0 {
		return s.GetFormAuditTrail(ctx, filters.EventCRFID, userID, username)
	}
	if filters.StudySubjectID > 0 {
		return s.GetSubjectAuditTrail(ctx, filters.StudyID, filters.StudySubjectID, userID, username)
	}

	page, limit, offset := normalizePage(filters.Page, filters.Limit)

	events, total, err := s.auditDAO.Search(ctx, filters, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search audit logs: %w", err)
	}
	if events == nil {
		events = []models.AuditEvent{}
	}

	return &models.ServiceResult{
		Success:    true,
		Data:       events,
		Pagination: paginationFor(page, limit, total),
	}, nil
}

// GetSubjectAuditTrail retrieves the audit trail for a study subject.
// SOAP-primary: when the legacy system answers successfully its ODM-shaped
// trail is returned as-is (the richer, canonical representation); otherwise
// the database rows are returned. An empty ODM trail is a legitimate result
// on this endpoint, not a degradation.
func (s *AuditService) GetSubjectAuditTrail(ctx context.Context, studyID, studySubjectID int64, userID int64, username string) (*models.ServiceResult, error) {
	resource := fmt.Sprintf("study_subject/%d", studySubjectID)

	if s.soapEnabled {
		result, err := s.soap.GetSubjectAuditTrail(ctx, studyID, studySubjectID, userID, username)
		if err == nil && soapResultUsable(result.Success, len(result.Data), false) {
			return &models.ServiceResult{Success: true, Data: result.Data}, nil
		}
		logSOAPFallback(s.logger, "getSubjectAuditTrail", resource, causeOf(err))
	}

	events, err := s.auditDAO.GetByStudySubject(ctx, studySubjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subject audit trail: %w", err)
	}
	if events == nil {
		events = []models.AuditEvent{}
	}

	return &models.ServiceResult{Success: true, Data: events}, nil
}

// GetFormAuditTrail retrieves the audit trail for an event CRF, with the
// same SOAP-primary policy and shape compromise as the subject trail.
func (s *AuditService) GetFormAuditTrail(ctx context.Context, eventCRFID int64, userID int64, username string) (*models.ServiceResult, error) {
	resource := fmt.Sprintf("event_crf/%d", eventCRFID)

	if s.soapEnabled {
		result, err := s.soap.GetFormAuditTrail(ctx, eventCRFID, userID, username)
		if err == nil && soapResultUsable(result.Success, len(result.Data), false) {
			return &models.ServiceResult{Success: true, Data: result.Data}, nil
		}
		logSOAPFallback(s.logger, "getFormAuditTrail", resource, causeOf(err))
	}

	events, err := s.auditDAO.GetByEventCRF(ctx, eventCRFID)
	if err != nil {
		return nil, fmt.Errorf("failed to get form audit trail: %w", err)
	}
	if events == nil {
		events = []models.AuditEvent{}
	}

	return &models.ServiceResult{Success: true, Data: events}, nil
}

// RecordElectronicSignature records a Part 11 electronic signature. Policy
// is SOAP preferred, database required: when the legacy call succeeds a
// database mirror is written for backup and the SOAP result is returned;
// when SOAP is disabled or fails, the signature is written directly to the
// database and a success result is synthesized with the entity id as the
// placeholder signature id. Either path leaves exactly one durable
// signature record reachable by subsequent reads.
func (s *AuditService) RecordElectronicSignature(ctx context.Context, entityType string, entityID int64, signature *models.SignatureRequest, actingUserID int64, actingUsername string) (*models.ServiceResult, error) {
	if signature.Username == "" || signature.Password == "" || signature.Meaning == "" {
		return &models.ServiceResult{Success: false, Message: "Signature username, password and meaning are required"}, nil
	}

	// A signature record is created only after the signer's credential has
	// been verified.
	signer, err := s.userDAO.GetByUsername(ctx, signature.Username)
	if err != nil {
		return &models.ServiceResult{Success: false, Message: "Invalid signer credentials"}, nil
	}
	if !utils.VerifyPassword(signer.Passwd, signature.Password) {
		return &models.ServiceResult{Success: false, Message: "Invalid signer credentials"}, nil
	}

	resource := fmt.Sprintf("%s/%d", entityType, entityID)

	if s.soapEnabled {
		result, err := s.soap.RecordElectronicSignature(ctx, entityType, entityID, signature, actingUserID, actingUsername)
		if err == nil && result.Success {
			s.mirrorSignature(ctx, entityType, entityID, signature, signer, actingUsername)
			return &models.ServiceResult{
				Success: true,
				Data:    s.signatureResult(result.SignatureID, entityType, entityID, signature),
			}, nil
		}
		logSOAPFallback(s.logger, "recordElectronicSignature", resource, causeOf(err))
	}

	if _, err := s.auditDAO.Create(ctx, signatureAuditRecord(entityType, entityID, signature, signer)); err != nil {
		return nil, fmt.Errorf("failed to record electronic signature: %w", err)
	}

	return &models.ServiceResult{
		Success: true,
		Data:    s.signatureResult(entityID, entityType, entityID, signature),
	}, nil
}

// mirrorSignature writes the database backup record after a successful SOAP
// signature. The legacy system already holds the durable record, so a
// mirror failure is logged and absorbed.
func (s *AuditService) mirrorSignature(ctx context.Context, entityType string, entityID int64, signature *models.SignatureRequest, signer *models.UserAccount, actingUsername string) {
	if _, err := s.auditDAO.Create(ctx, signatureAuditRecord(entityType, entityID, signature, signer)); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"entityType": entityType,
			"entityId":   entityID,
			"actingUser": actingUsername,
		}).Error("Failed to write signature backup record")
	}
}

func (s *AuditService) signatureResult(signatureID int64, entityType string, entityID int64, signature *models.SignatureRequest) models.SignatureResult {
	return models.SignatureResult{
		SignatureID: signatureID,
		EntityType:  entityType,
		EntityID:    entityID,
		Signer:      signature.Username,
		Meaning:     signature.Meaning,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
}

// GetSignatures returns the signature records held against one entity,
// newest first. Database-only: both signing paths leave their durable
// record in the audit table, so reads never consult SOAP.
func (s *AuditService) GetSignatures(ctx context.Context, entityType string, entityID int64) (*models.ServiceResult, error) {
	signatures, err := s.auditDAO.GetSignatures(ctx, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to get signatures: %w", err)
	}
	if signatures == nil {
		signatures = []models.AuditEvent{}
	}

	return &models.ServiceResult{Success: true, Data: signatures}, nil
}

// GetServiceStatus reports the execution mode derived from configuration.
// Pure function of the soap enabled flag; never fails and has no side
// effects.
func (s *AuditService) GetServiceStatus() models.ServiceStatus {
	return ComputeServiceStatus(s.soapEnabled)
}

// entity_name is nullable in audit_log_event and absent from most legacy
// rows, so it stays optional here along with old/new value and reason.
func validateAuditRecord(record *models.AuditEventRecord) string {
	if record.AuditTable == "" {
		return "auditTable is required"
	}
	if record.EntityID <= 0 {
		return "entityId is required"
	}
	if record.UserID <= 0 {
		return "userId is required"
	}
	if record.Username == "" {
		return "username is required"
	}
	if record.EventTypeID <= 0 {
		return "eventTypeId is required"
	}
	return ""
}

// signatureAuditRecord shapes a signature as an append-only audit row. The
// schema has no dedicated signature table; the meaning lands in new_value
// under the electronic-signature event type, mirroring how the legacy
// application records its own signings.
func signatureAuditRecord(entityType string, entityID int64, signature *models.SignatureRequest, signer *models.UserAccount) *models.AuditEventRecord {
	meaning := signature.Meaning
	record := &models.AuditEventRecord{
		AuditTable:  entityType,
		EntityID:    entityID,
		UserID:      signer.UserID,
		Username:    signer.UserName,
		EventTypeID: models.AuditEventTypeElectronicSignature,
		NewValue:    &meaning,
	}
	if signature.Reason != "" {
		reason := signature.Reason
		record.ReasonForChange = &reason
	}
	return record
}
