package service

import (
	"context"

	"github.com/libreclinica/api-gateway/internal/database"
	"github.com/libreclinica/api-gateway/internal/models"
	client "github.com/libreclinica/api-gateway/internal/soap-client"
)

// SOAPClient is the accessor for the legacy LibreClinica web services.
// Implemented by soap-client.Client; mocked in tests to drive both branches
// of every hybrid policy.
type SOAPClient interface {
	ListStudies(ctx context.Context, userID int64, username string) (*client.ListStudiesResult, error)
	GetStudyMetadata(ctx context.Context, oid string, userID int64, username string) (*client.StudyMetadataResult, error)
	RecordAuditEvent(ctx context.Context, record *models.AuditEventRecord) (*client.AuditEventResult, error)
	RecordElectronicSignature(ctx context.Context, entityType string, entityID int64, signature *models.SignatureRequest, userID int64, username string) (*client.SignatureCallResult, error)
	GetSubjectAuditTrail(ctx context.Context, studyID, subjectID, userID int64, username string) (*client.AuditTrailResult, error)
	GetFormAuditTrail(ctx context.Context, eventCRFID, userID int64, username string) (*client.AuditTrailResult, error)
}

// AuditDAO is the database accessor for audit events
type AuditDAO interface {
	Create(ctx context.Context, record *models.AuditEventRecord) (int64, error)
	CreateWithTx(ctx context.Context, tx *database.Transaction, record *models.AuditEventRecord) (int64, error)
	Search(ctx context.Context, filters *models.AuditLogFilters, limit, offset int) ([]models.AuditEvent, int, error)
	GetByStudySubject(ctx context.Context, studySubjectID int64) ([]models.AuditEvent, error)
	GetByEventCRF(ctx context.Context, eventCRFID int64) ([]models.AuditEvent, error)
	GetSignatures(ctx context.Context, auditTable string, entityID int64) ([]models.AuditEvent, error)
}

// UserDAO is the database accessor for user accounts
type UserDAO interface {
	GetByUsername(ctx context.Context, username string) (*models.UserAccount, error)
	GetByID(ctx context.Context, userID int64) (*models.UserAccount, error)
}

// StudyDAO is the database accessor for studies
type StudyDAO interface {
	GetByID(ctx context.Context, studyID int64) (*models.Study, error)
	GetOID(ctx context.Context, studyID int64) (string, error)
	ListVisible(ctx context.Context, userID int64, isAdmin bool, statusFilter string, limit, offset int) ([]models.Study, int, error)
	GetStatsByIdentifiers(ctx context.Context, oids, uniqueIdentifiers []string) ([]models.StudyStats, error)
	ExistsByUniqueIdentifierWithTx(ctx context.Context, tx *database.Transaction, uniqueIdentifier string, excludeStudyID int64) (bool, error)
	CreateWithTx(ctx context.Context, tx *database.Transaction, request *models.StudyCreateRequest, ownerID int64, oid string) (int64, error)
	InsertDefaultParametersWithTx(ctx context.Context, tx *database.Transaction, studyID int64) error
	InsertOwnerRoleWithTx(ctx context.Context, tx *database.Transaction, studyID int64, username string) error
	UpdateWithTx(ctx context.Context, tx *database.Transaction, study *models.Study) error
	UpdateStatusWithTx(ctx context.Context, tx *database.Transaction, studyID int64, statusID int) error
	CountEnrolledSubjects(ctx context.Context, studyID int64) (int, error)
	GetEventDefinitions(ctx context.Context, studyID int64) ([]models.EventDefinition, error)
	GetCRFs(ctx context.Context, studyID int64) ([]models.CRFDefinition, error)
}

// SubjectDAO is the database accessor for subjects and enrollment
type SubjectDAO interface {
	List(ctx context.Context, studyID int64, filters *models.SubjectFilters, limit, offset int) ([]models.StudySubject, int, error)
	GetByID(ctx context.Context, studySubjectID int64) (*models.StudySubject, error)
	ExistsByLabelWithTx(ctx context.Context, tx *database.Transaction, studyID int64, label string) (bool, error)
	ExistsByPersonIDWithTx(ctx context.Context, tx *database.Transaction, studyID int64, personID string) (bool, error)
	CreateSubjectWithTx(ctx context.Context, tx *database.Transaction, request *models.SubjectEnrollRequest, ownerID int64) (int64, error)
	EnrollWithTx(ctx context.Context, tx *database.Transaction, studyID, subjectID int64, request *models.SubjectEnrollRequest, oid string, ownerID int64) (int64, error)
}

// FormDAO is the database accessor for event CRFs
type FormDAO interface {
	ListByStudySubject(ctx context.Context, studySubjectID int64) ([]models.Form, error)
	GetByID(ctx context.Context, eventCRFID int64) (*models.Form, error)
	GetByIDWithTx(ctx context.Context, tx *database.Transaction, eventCRFID int64) (*models.Form, error)
	UpdateStatusWithTx(ctx context.Context, tx *database.Transaction, eventCRFID int64, statusID int) error
}
