package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/libreclinica/api-gateway/internal/database"
	"github.com/libreclinica/api-gateway/internal/models"
	"github.com/libreclinica/api-gateway/pkg/utils"
)

// SubjectService manages study subject listings and enrollment. Subject
// reads are served from the database only; the legacy SOAP surface has no
// listing endpoint for subjects, and enrollment state lives in the same
// schema the gateway already reads.
type SubjectService struct {
	subjectDAO  SubjectDAO
	studyDAO    StudyDAO
	auditDAO    AuditDAO
	soap        SOAPClient
	db          *database.DB
	soapEnabled bool
	logger      *logrus.Logger
}

// NewSubjectService creates a new subject service instance
func NewSubjectService(subjectDAO SubjectDAO, studyDAO StudyDAO, auditDAO AuditDAO, soap SOAPClient, db *database.DB, soapEnabled bool, logger *logrus.Logger) *SubjectService {
	return &SubjectService{
		subjectDAO:  subjectDAO,
		studyDAO:    studyDAO,
		auditDAO:    auditDAO,
		soap:        soap,
		db:          db,
		soapEnabled: soapEnabled,
		logger:      logger,
	}
}

// GetSubjects lists the subjects enrolled in a study with their event and
// form counts.
func (s *SubjectService) GetSubjects(ctx context.Context, studyID int64, filters *models.SubjectFilters) (*models.ServiceResult, error) {
	if _, err := s.studyDAO.GetByID(ctx, studyID); err != nil {
		return &models.ServiceResult{Success: false, Message: "Study not found"}, nil
	}

	page, limit, offset := normalizePage(filters.Page, filters.Limit)

	subjects, total, err := s.subjectDAO.List(ctx, studyID, filters, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	if subjects == nil {
		subjects = []models.StudySubject{}
	}

	return &models.ServiceResult{
		Success:    true,
		Data:       subjects,
		Pagination: paginationFor(page, limit, total),
	}, nil
}

// GetSubject retrieves one study subject by its study_subject id.
func (s *SubjectService) GetSubject(ctx context.Context, studyID, studySubjectID int64) (*models.ServiceResult, error) {
	subject, err := s.subjectDAO.GetByID(ctx, studySubjectID)
	if err != nil || subject.StudyID != studyID {
		return &models.ServiceResult{Success: false, Message: "Subject not found"}, nil
	}
	return &models.ServiceResult{Success: true, Data: subject}, nil
}

// EnrollSubject enrolls a new subject into a study. The subject row, the
// study_subject row and the enrollment audit row commit atomically; the
// label and the person id must each be unique within the study. A
// best-effort legacy duplicate of the audit event follows the commit.
func (s *SubjectService) EnrollSubject(ctx context.Context, studyID int64, req *models.SubjectEnrollRequest, userID int64, username string) (*models.ServiceResult, error) {
	study, err := s.studyDAO.GetByID(ctx, studyID)
	if err != nil {
		return &models.ServiceResult{Success: false, Message: "Study not found"}, nil
	}
	if study.StatusID != models.StatusAvailable {
		return &models.ServiceResult{Success: false, Message: "Study is not open for enrollment"}, nil
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	labelExists, err := s.subjectDAO.ExistsByLabelWithTx(ctx, tx, studyID, req.Label)
	if err != nil {
		return nil, fmt.Errorf("failed to check subject label: %w", err)
	}
	if labelExists {
		return &models.ServiceResult{Success: false, Message: "Subject with this label already exists in study"}, nil
	}

	if req.UniquePersonID != nil && *req.UniquePersonID != "" {
		personExists, err := s.subjectDAO.ExistsByPersonIDWithTx(ctx, tx, studyID, *req.UniquePersonID)
		if err != nil {
			return nil, fmt.Errorf("failed to check person id: %w", err)
		}
		if personExists {
			return &models.ServiceResult{Success: false, Message: "Subject with this person id is already enrolled in study"}, nil
		}
	}

	subjectID, err := s.subjectDAO.CreateSubjectWithTx(ctx, tx, req, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create subject: %w", err)
	}

	studySubjectID, err := s.subjectDAO.EnrollWithTx(ctx, tx, studyID, subjectID, req, utils.GenerateSubjectOID(req.Label), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to enroll subject: %w", err)
	}

	label := req.Label
	if _, err := s.auditDAO.CreateWithTx(ctx, tx, &models.AuditEventRecord{
		AuditTable:  "study_subject",
		EntityID:    studySubjectID,
		UserID:      userID,
		Username:    username,
		EventTypeID: models.AuditEventTypeSubjectCreated,
		NewValue:    &label,
	}); err != nil {
		return nil, fmt.Errorf("failed to record enrollment audit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.mirrorEnrollment(ctx, studySubjectID, req.Label, userID, username)

	subject, err := s.subjectDAO.GetByID(ctx, studySubjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load enrolled subject: %w", err)
	}

	return &models.ServiceResult{Success: true, Data: subject, Message: "Subject enrolled successfully"}, nil
}

func (s *SubjectService) mirrorEnrollment(ctx context.Context, studySubjectID int64, label string, userID int64, username string) {
	if !s.soapEnabled {
		return
	}
	record := &models.AuditEventRecord{
		AuditTable:  "study_subject",
		EntityID:    studySubjectID,
		UserID:      userID,
		Username:    username,
		EventTypeID: models.AuditEventTypeSubjectCreated,
		NewValue:    &label,
	}
	resource := fmt.Sprintf("study_subject/%d", studySubjectID)
	result, err := s.soap.RecordAuditEvent(ctx, record)
	if err != nil {
		logSOAPMirrorFailure(s.logger, "recordAuditEvent", resource, err.Error())
		return
	}
	if !result.Success {
		logSOAPMirrorFailure(s.logger, "recordAuditEvent", resource, "unsuccessful soap result")
	}
}
