package dao

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/libreclinica/api-gateway/internal/database"
	"github.com/libreclinica/api-gateway/internal/models"
)

// StudyDAO handles database operations for studies
type StudyDAO struct {
	db *database.DB
}

// NewStudyDAO creates a new StudyDAO instance
func NewStudyDAO(db *database.DB) *StudyDAO {
	return &StudyDAO{db: db}
}

// Statistics are computed by correlated subqueries so a listing stays a
// single round-trip per page.
const studyStatsColumns = `
	(SELECT COUNT(*) FROM study_subject ss
	  WHERE ss.study_id = s.study_id) AS enrolled_subjects,
	(SELECT COUNT(*) FROM study_subject ss
	  WHERE ss.study_id = s.study_id AND ss.status_id = 1) AS active_subjects,
	(SELECT COUNT(*) FROM study_event_definition sed
	  WHERE sed.study_id = s.study_id) AS event_count,
	(SELECT COUNT(*) FROM event_definition_crf edc
	  WHERE edc.study_id = s.study_id) AS form_count,
	(SELECT COUNT(*) FROM study c
	  WHERE c.parent_study_id = s.study_id) AS site_count
`

const studySelectColumns = `
	s.study_id, s.parent_study_id, s.unique_identifier, s.name, s.oc_oid,
	s.status_id, s.owner_id, s.summary, s.principal_investigator, s.sponsor,
	s.date_created::text AS date_created
`

// GetByID retrieves a study with its statistics
func (dao *StudyDAO) GetByID(ctx context.Context, studyID int64) (*models.Study, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM study s
		WHERE s.study_id = $1
	`, studySelectColumns, studyStatsColumns)

	var study models.Study
	err := dao.db.GetContext(ctx, &study, query, studyID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("study not found: %d", studyID)
		}
		return nil, fmt.Errorf("failed to get study: %w", err)
	}

	return &study, nil
}

// GetOID resolves a study's business OID
func (dao *StudyDAO) GetOID(ctx context.Context, studyID int64) (string, error) {
	var oid string
	err := dao.db.GetContext(ctx, &oid, `SELECT oc_oid FROM study WHERE study_id = $1`, studyID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("study not found: %d", studyID)
		}
		return "", fmt.Errorf("failed to resolve study oid: %w", err)
	}

	return oid, nil
}

// ListVisible retrieves top-level studies visible to a user, with identical
// semantics to the legacy listing: administrators see all parent studies;
// other users see studies they own or hold an active role assignment in.
// Child site records are excluded.
func (dao *StudyDAO) ListVisible(ctx context.Context, userID int64, isAdmin bool, statusFilter string, limit, offset int) ([]models.Study, int, error) {
	var conditions []string
	var args []interface{}

	conditions = append(conditions, "s.parent_study_id IS NULL")

	if !isAdmin {
		args = append(args, userID)
		conditions = append(conditions, fmt.Sprintf(`(
			s.owner_id = $%d
			OR EXISTS (
				SELECT 1 FROM study_user_role sur
				JOIN user_account ua ON ua.user_name = sur.user_name
				WHERE sur.study_id = s.study_id
				  AND ua.user_id = $%d
				  AND sur.status_id = %d
			)
		)`, len(args), len(args), models.StatusAvailable))
	}

	if statusFilter != "" {
		args = append(args, statusFilter)
		conditions = append(conditions, fmt.Sprintf(
			"s.status_id = (SELECT status_id FROM status WHERE LOWER(name) = LOWER($%d))", len(args)))
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM study s %s`, where)

	var total int
	if err := dao.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count studies: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM study s
		%s
		ORDER BY s.name
		LIMIT $%d OFFSET $%d
	`, studySelectColumns, studyStatsColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var studies []models.Study
	if err := dao.db.SelectContext(ctx, &studies, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list studies: %w", err)
	}

	return studies, total, nil
}

// GetStatsByIdentifiers batch-loads enrichment statistics for the given
// business identifiers in one query. Rows match on OID or unique identifier;
// the caller applies tie-break precedence.
func (dao *StudyDAO) GetStatsByIdentifiers(ctx context.Context, oids, uniqueIdentifiers []string) ([]models.StudyStats, error) {
	query := fmt.Sprintf(`
		SELECT s.study_id, s.oc_oid, s.unique_identifier, %s
		FROM study s
		WHERE s.oc_oid = ANY($1) OR s.unique_identifier = ANY($2)
	`, studyStatsColumns)

	var stats []models.StudyStats
	err := dao.db.SelectContext(ctx, &stats, query, pq.Array(oids), pq.Array(uniqueIdentifiers))
	if err != nil {
		return nil, fmt.Errorf("failed to load study statistics: %w", err)
	}

	return stats, nil
}

// ExistsByUniqueIdentifierWithTx reports whether a study with the given
// unique identifier already exists, within a transaction
func (dao *StudyDAO) ExistsByUniqueIdentifierWithTx(ctx context.Context, tx *database.Transaction, uniqueIdentifier string, excludeStudyID int64) (bool, error) {
	var count int
	err := tx.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM study WHERE unique_identifier = $1 AND study_id <> $2`,
		uniqueIdentifier, excludeStudyID)
	if err != nil {
		return false, fmt.Errorf("failed to check study identifier: %w", err)
	}

	return count > 0, nil
}

// CreateWithTx inserts a new study and returns its generated id
func (dao *StudyDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, request *models.StudyCreateRequest, ownerID int64, oid string) (int64, error) {
	query := `
		INSERT INTO study (
			name, unique_identifier, oc_oid, status_id, owner_id,
			summary, principal_investigator, sponsor,
			expected_total_enrollment, date_created
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING study_id
	`

	var studyID int64
	err := tx.QueryRowContext(
		ctx,
		query,
		request.Name,
		request.UniqueIdentifier,
		oid,
		models.StatusAvailable,
		ownerID,
		request.Summary,
		request.PrincipalInvestigator,
		request.Sponsor,
		request.ExpectedTotalEnrollment,
	).Scan(&studyID)

	if err != nil {
		return 0, fmt.Errorf("failed to create study: %w", err)
	}

	return studyID, nil
}

// defaultStudyParameters is the parameter set every new study starts with,
// matching the legacy application's study setup defaults.
var defaultStudyParameters = map[string]string{
	"collectDob":              "1",
	"discrepancyManagement":   "true",
	"genderRequired":          "true",
	"subjectPersonIdRequired": "required",
	"interviewerNameRequired": "not_used",
	"interviewDateRequired":   "not_used",
	"subjectIdGeneration":     "manual",
}

// InsertDefaultParametersWithTx seeds the default study_parameter_value set
func (dao *StudyDAO) InsertDefaultParametersWithTx(ctx context.Context, tx *database.Transaction, studyID int64) error {
	query := `
		INSERT INTO study_parameter_value (study_id, parameter, value)
		VALUES ($1, $2, $3)
	`

	for parameter, value := range defaultStudyParameters {
		if _, err := tx.ExecContext(ctx, query, studyID, parameter, value); err != nil {
			return fmt.Errorf("failed to insert study parameter %s: %w", parameter, err)
		}
	}

	return nil
}

// InsertOwnerRoleWithTx grants the creating user the coordinator role on the
// new study
func (dao *StudyDAO) InsertOwnerRoleWithTx(ctx context.Context, tx *database.Transaction, studyID int64, username string) error {
	query := `
		INSERT INTO study_user_role (role_name, study_id, status_id, owner_id, date_created, user_name)
		VALUES ('coordinator', $1, $2, 1, NOW(), $3)
	`

	if _, err := tx.ExecContext(ctx, query, studyID, models.StatusAvailable, username); err != nil {
		return fmt.Errorf("failed to insert owner role: %w", err)
	}

	return nil
}

// UpdateWithTx applies the provided field updates to a study
func (dao *StudyDAO) UpdateWithTx(ctx context.Context, tx *database.Transaction, study *models.Study) error {
	query := `
		UPDATE study
		SET name = $1, unique_identifier = $2, summary = $3,
		    principal_investigator = $4, sponsor = $5, status_id = $6,
		    date_updated = NOW()
		WHERE study_id = $7
	`

	result, err := tx.ExecContext(
		ctx,
		query,
		study.Name,
		study.UniqueIdentifier,
		study.Summary,
		study.PrincipalInvestigator,
		study.Sponsor,
		study.StatusID,
		study.StudyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update study: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("study not found: %d", study.StudyID)
	}

	return nil
}

// UpdateStatusWithTx transitions a study's status. Used for soft delete.
func (dao *StudyDAO) UpdateStatusWithTx(ctx context.Context, tx *database.Transaction, studyID int64, statusID int) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE study SET status_id = $1, date_updated = NOW() WHERE study_id = $2`,
		statusID, studyID)
	if err != nil {
		return fmt.Errorf("failed to update study status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("study not found: %d", studyID)
	}

	return nil
}

// CountEnrolledSubjects counts study_subject rows for a study, including
// its child sites
func (dao *StudyDAO) CountEnrolledSubjects(ctx context.Context, studyID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM study_subject ss
		WHERE ss.study_id = $1
		   OR ss.study_id IN (SELECT c.study_id FROM study c WHERE c.parent_study_id = $1)
	`

	var count int
	if err := dao.db.GetContext(ctx, &count, query, studyID); err != nil {
		return 0, fmt.Errorf("failed to count enrolled subjects: %w", err)
	}

	return count, nil
}

// GetEventDefinitions retrieves a study's event definitions in ordinal order
func (dao *StudyDAO) GetEventDefinitions(ctx context.Context, studyID int64) ([]models.EventDefinition, error) {
	query := `
		SELECT study_event_definition_id, study_id, oc_oid, name, ordinal,
		       repeating, type
		FROM study_event_definition
		WHERE study_id = $1
		ORDER BY ordinal
	`

	var events []models.EventDefinition
	if err := dao.db.SelectContext(ctx, &events, query, studyID); err != nil {
		return nil, fmt.Errorf("failed to get event definitions: %w", err)
	}

	return events, nil
}

// GetCRFs retrieves the CRFs assigned to a study with their current versions
func (dao *StudyDAO) GetCRFs(ctx context.Context, studyID int64) ([]models.CRFDefinition, error) {
	query := `
		SELECT DISTINCT c.crf_id, c.oc_oid, c.name,
		       cv.crf_version_id, cv.oc_oid AS version_oid, cv.name AS version_name
		FROM event_definition_crf edc
		JOIN crf c ON c.crf_id = edc.crf_id
		JOIN crf_version cv ON cv.crf_version_id = edc.default_version_id
		WHERE edc.study_id = $1
		ORDER BY c.name
	`

	var crfs []models.CRFDefinition
	if err := dao.db.SelectContext(ctx, &crfs, query, studyID); err != nil {
		return nil, fmt.Errorf("failed to get study crfs: %w", err)
	}

	return crfs, nil
}
