package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/libreclinica/api-gateway/internal/database"
	"github.com/libreclinica/api-gateway/internal/models"
	"github.com/libreclinica/api-gateway/pkg/utils"
)

// StudyService serves study reads through the legacy SOAP endpoint when it
// is healthy and from the database otherwise, and owns the transactional
// write path for study lifecycle changes.
type StudyService struct {
	studyDAO    StudyDAO
	userDAO     UserDAO
	auditDAO    AuditDAO
	soap        SOAPClient
	db          *database.DB
	soapEnabled bool
	logger      *logrus.Logger
}

// NewStudyService creates a new study service instance
func NewStudyService(studyDAO StudyDAO, userDAO UserDAO, auditDAO AuditDAO, soap SOAPClient, db *database.DB, soapEnabled bool, logger *logrus.Logger) *StudyService {
	return &StudyService{
		studyDAO:    studyDAO,
		userDAO:     userDAO,
		auditDAO:    auditDAO,
		soap:        soap,
		db:          db,
		soapEnabled: soapEnabled,
		logger:      logger,
	}
}

// GetStudies lists the studies visible to the caller. SOAP-primary with
// database enrichment: a usable SOAP listing (success and non-empty, since
// every deployment has at least one study a caller can see) is joined with
// per-study enrollment statistics from the database and paginated in
// memory. When the SOAP path is unusable the database serves the listing
// directly, already carrying its statistics.
func (s *StudyService) GetStudies(ctx context.Context, filters *models.StudyFilters, userID int64, username string) (*models.ServiceResult, error) {
	page, limit, offset := normalizePage(filters.Page, filters.Limit)

	if s.soapEnabled {
		result, err := s.soap.ListStudies(ctx, userID, username)
		if err == nil && soapResultUsable(result.Success, len(result.Data), true) {
			records := s.enrichStudies(ctx, result.Data)
			records = filterStudyRecords(records, filters.Status)
			pageItems := pageSlice(records, page, limit)
			return &models.ServiceResult{
				Success:    true,
				Data:       pageItems,
				Pagination: paginationFor(page, limit, len(records)),
			}, nil
		}
		logSOAPFallback(s.logger, "listStudies", "studies", causeOf(err))
	}

	isAdmin, err := s.callerIsAdmin(ctx, userID)
	if err != nil {
		return nil, err
	}

	studies, total, err := s.studyDAO.ListVisible(ctx, userID, isAdmin, filters.Status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list studies: %w", err)
	}
	if studies == nil {
		studies = []models.Study{}
	}

	return &models.ServiceResult{
		Success:    true,
		Data:       studies,
		Pagination: paginationFor(page, limit, total),
	}, nil
}

// enrichStudies joins the legacy listing with enrollment statistics from
// the database in one batch query. A study the database does not know about
// keeps zero statistics rather than failing the listing; a statistics query
// failure degrades the whole listing to zero statistics the same way.
func (s *StudyService) enrichStudies(ctx context.Context, soapStudies []models.SOAPStudy) []models.StudyRecord {
	oids := make([]string, 0, len(soapStudies))
	identifiers := make([]string, 0, len(soapStudies))
	for _, st := range soapStudies {
		if st.OID != "" {
			oids = append(oids, st.OID)
		}
		if st.Identifier != "" {
			identifiers = append(identifiers, st.Identifier)
		}
	}

	stats, err := s.studyDAO.GetStatsByIdentifiers(ctx, oids, identifiers)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load study statistics, returning listing without them")
		stats = nil
	}

	byOID := make(map[string]models.StudyStats, len(stats))
	byIdentifier := make(map[string]models.StudyStats, len(stats))
	for _, st := range stats {
		if st.OID != "" {
			byOID[st.OID] = st
		}
		if st.UniqueIdentifier != "" {
			byIdentifier[st.UniqueIdentifier] = st
		}
	}

	records := make([]models.StudyRecord, 0, len(soapStudies))
	for _, st := range soapStudies {
		record := models.StudyRecord{
			Identifier: st.Identifier,
			OID:        st.OID,
			Name:       st.Name,
			Status:     st.Status,
		}
		// OID is the stronger key; the protocol identifier is only
		// consulted when the OID finds nothing.
		if match, ok := byOID[st.OID]; ok && st.OID != "" {
			record.Stats = match
		} else if match, ok := byIdentifier[st.Identifier]; ok && st.Identifier != "" {
			record.Stats = match
		}
		records = append(records, record)
	}
	return records
}

func filterStudyRecords(records []models.StudyRecord, status string) []models.StudyRecord {
	if status == "" {
		return records
	}
	filtered := make([]models.StudyRecord, 0, len(records))
	for _, r := range records {
		if strings.EqualFold(r.Status, status) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// GetStudyMetadata returns the structural definition of a study: its event
// definitions and form versions. SOAP-primary because the legacy metadata
// endpoint is the canonical ODM source; the database reconstruction serves
// the same logical shape from three queries when the endpoint is unusable.
func (s *StudyService) GetStudyMetadata(ctx context.Context, studyID int64, userID int64, username string) (*models.ServiceResult, error) {
	oid, err := s.studyDAO.GetOID(ctx, studyID)
	if err != nil {
		return &models.ServiceResult{Success: false, Message: "Study not found"}, nil
	}

	resource := fmt.Sprintf("study/%d", studyID)

	if s.soapEnabled {
		result, soapErr := s.soap.GetStudyMetadata(ctx, oid, userID, username)
		if soapErr == nil && result.Success {
			return &models.ServiceResult{Success: true, Data: result.Data}, nil
		}
		logSOAPFallback(s.logger, "getStudyMetadata", resource, causeOf(soapErr))
	}

	study, err := s.studyDAO.GetByID(ctx, studyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get study: %w", err)
	}

	events, err := s.studyDAO.GetEventDefinitions(ctx, studyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event definitions: %w", err)
	}
	crfs, err := s.studyDAO.GetCRFs(ctx, studyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get study CRFs: %w", err)
	}
	if events == nil {
		events = []models.EventDefinition{}
	}
	if crfs == nil {
		crfs = []models.CRFDefinition{}
	}

	metadata := models.StudyMetadata{
		Study: models.SOAPStudy{
			Identifier: study.UniqueIdentifier,
			OID:        study.OID,
			Name:       study.Name,
			Status:     models.StatusName(study.StatusID),
		},
		Events: events,
		CRFs:   crfs,
	}

	return &models.ServiceResult{Success: true, Data: metadata}, nil
}

// CreateStudy creates a study in a single transaction together with its
// default parameter set, the creator's coordinator role and the creation
// audit row. The protocol identifier must be unique across the instance.
func (s *StudyService) CreateStudy(ctx context.Context, req *models.StudyCreateRequest, userID int64, username string) (*models.ServiceResult, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	exists, err := s.studyDAO.ExistsByUniqueIdentifierWithTx(ctx, tx, req.UniqueIdentifier, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check study identifier: %w", err)
	}
	if exists {
		return &models.ServiceResult{Success: false, Message: "Study with this identifier already exists"}, nil
	}

	studyID, err := s.studyDAO.CreateWithTx(ctx, tx, req, userID, utils.GenerateStudyOID(req.UniqueIdentifier))
	if err != nil {
		return nil, fmt.Errorf("failed to create study: %w", err)
	}

	if err := s.studyDAO.InsertDefaultParametersWithTx(ctx, tx, studyID); err != nil {
		return nil, fmt.Errorf("failed to insert default study parameters: %w", err)
	}

	if err := s.studyDAO.InsertOwnerRoleWithTx(ctx, tx, studyID, username); err != nil {
		return nil, fmt.Errorf("failed to assign owner role: %w", err)
	}

	newValue := req.Name
	if _, err := s.auditDAO.CreateWithTx(ctx, tx, &models.AuditEventRecord{
		AuditTable:  "study",
		EntityID:    studyID,
		UserID:      userID,
		Username:    username,
		EventTypeID: models.AuditEventTypeEntityCreated,
		NewValue:    &newValue,
	}); err != nil {
		return nil, fmt.Errorf("failed to record study creation audit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.mirrorStudyChange(ctx, studyID, userID, username, models.AuditEventTypeEntityCreated, nil, &newValue)

	study, err := s.studyDAO.GetByID(ctx, studyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created study: %w", err)
	}

	return &models.ServiceResult{Success: true, Data: study, Message: "Study created successfully"}, nil
}

// UpdateStudy applies a partial update to a study and records the change in
// the same transaction.
func (s *StudyService) UpdateStudy(ctx context.Context, studyID int64, req *models.StudyUpdateRequest, userID int64, username string) (*models.ServiceResult, error) {
	current, err := s.studyDAO.GetByID(ctx, studyID)
	if err != nil {
		return &models.ServiceResult{Success: false, Message: "Study not found"}, nil
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if req.UniqueIdentifier != nil && *req.UniqueIdentifier != current.UniqueIdentifier {
		exists, err := s.studyDAO.ExistsByUniqueIdentifierWithTx(ctx, tx, *req.UniqueIdentifier, studyID)
		if err != nil {
			return nil, fmt.Errorf("failed to check study identifier: %w", err)
		}
		if exists {
			return &models.ServiceResult{Success: false, Message: "Study with this identifier already exists"}, nil
		}
	}

	oldValue := current.Name
	applyStudyUpdate(current, req)
	if err := s.studyDAO.UpdateWithTx(ctx, tx, current); err != nil {
		return nil, fmt.Errorf("failed to update study: %w", err)
	}

	newValue := current.Name
	if _, err := s.auditDAO.CreateWithTx(ctx, tx, &models.AuditEventRecord{
		AuditTable:  "study",
		EntityID:    studyID,
		UserID:      userID,
		Username:    username,
		EventTypeID: models.AuditEventTypeEntityUpdated,
		OldValue:    &oldValue,
		NewValue:    &newValue,
	}); err != nil {
		return nil, fmt.Errorf("failed to record study update audit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.mirrorStudyChange(ctx, studyID, userID, username, models.AuditEventTypeEntityUpdated, &oldValue, &newValue)

	updated, err := s.studyDAO.GetByID(ctx, studyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load updated study: %w", err)
	}

	return &models.ServiceResult{Success: true, Data: updated, Message: "Study updated successfully"}, nil
}

// DeleteStudy soft-deletes a study by moving it to the removed status. A
// study that still has enrolled subjects cannot be removed; the trial data
// under it must stay reachable.
func (s *StudyService) DeleteStudy(ctx context.Context, studyID int64, userID int64, username string) (*models.ServiceResult, error) {
	study, err := s.studyDAO.GetByID(ctx, studyID)
	if err != nil {
		return &models.ServiceResult{Success: false, Message: "Study not found"}, nil
	}

	enrolled, err := s.studyDAO.CountEnrolledSubjects(ctx, studyID)
	if err != nil {
		return nil, fmt.Errorf("failed to count enrolled subjects: %w", err)
	}
	if enrolled > 0 {
		return &models.ServiceResult{
			Success: false,
			Message: fmt.Sprintf("Cannot delete study with enrolled subjects (%d enrolled)", enrolled),
		}, nil
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.studyDAO.UpdateStatusWithTx(ctx, tx, studyID, models.StatusRemoved); err != nil {
		return nil, fmt.Errorf("failed to remove study: %w", err)
	}

	oldValue := models.StatusName(study.StatusID)
	newValue := models.StatusName(models.StatusRemoved)
	if _, err := s.auditDAO.CreateWithTx(ctx, tx, &models.AuditEventRecord{
		AuditTable:  "study",
		EntityID:    studyID,
		UserID:      userID,
		Username:    username,
		EventTypeID: models.AuditEventTypeEntityRemoved,
		OldValue:    &oldValue,
		NewValue:    &newValue,
	}); err != nil {
		return nil, fmt.Errorf("failed to record study removal audit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.mirrorStudyChange(ctx, studyID, userID, username, models.AuditEventTypeEntityRemoved, &oldValue, &newValue)

	return &models.ServiceResult{Success: true, Message: "Study removed successfully"}, nil
}

// mirrorStudyChange sends the best-effort legacy duplicate of a committed
// study change. Runs strictly after commit; any failure here is absorbed.
func (s *StudyService) mirrorStudyChange(ctx context.Context, studyID, userID int64, username string, eventTypeID int, oldValue, newValue *string) {
	if !s.soapEnabled {
		return
	}
	record := &models.AuditEventRecord{
		AuditTable:  "study",
		EntityID:    studyID,
		UserID:      userID,
		Username:    username,
		EventTypeID: eventTypeID,
		OldValue:    oldValue,
		NewValue:    newValue,
	}
	resource := fmt.Sprintf("study/%d", studyID)
	result, err := s.soap.RecordAuditEvent(ctx, record)
	if err != nil {
		logSOAPMirrorFailure(s.logger, "recordAuditEvent", resource, err.Error())
		return
	}
	if !result.Success {
		logSOAPMirrorFailure(s.logger, "recordAuditEvent", resource, "unsuccessful soap result")
	}
}

func applyStudyUpdate(study *models.Study, req *models.StudyUpdateRequest) {
	if req.Name != nil {
		study.Name = *req.Name
	}
	if req.UniqueIdentifier != nil {
		study.UniqueIdentifier = *req.UniqueIdentifier
	}
	if req.Summary != nil {
		study.Summary = req.Summary
	}
	if req.PrincipalInvestigator != nil {
		study.PrincipalInvestigator = req.PrincipalInvestigator
	}
	if req.Sponsor != nil {
		study.Sponsor = req.Sponsor
	}
	if req.StatusID != nil {
		study.StatusID = *req.StatusID
	}
}

func (s *StudyService) callerIsAdmin(ctx context.Context, userID int64) (bool, error) {
	user, err := s.userDAO.GetByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to load caller account: %w", err)
	}
	return user.IsAdministrator(), nil
}
