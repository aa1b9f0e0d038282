package dao

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/libreclinica/api-gateway/internal/database"
	"github.com/libreclinica/api-gateway/internal/models"
)

// SubjectDAO handles database operations for subjects and study enrollment
type SubjectDAO struct {
	db *database.DB
}

// NewSubjectDAO creates a new SubjectDAO instance
func NewSubjectDAO(db *database.DB) *SubjectDAO {
	return &SubjectDAO{db: db}
}

const subjectSelectColumns = `
	ss.study_subject_id, ss.label, ss.secondary_label, ss.subject_id,
	ss.study_id, ss.oc_oid, ss.status_id,
	ss.enrollment_date::text AS enrollment_date,
	sub.gender, sub.date_of_birth::text AS date_of_birth, sub.unique_identifier,
	(SELECT COUNT(*) FROM study_event se
	  WHERE se.study_subject_id = ss.study_subject_id) AS event_count,
	(SELECT COUNT(*) FROM event_crf ec
	  JOIN study_event se2 ON se2.study_event_id = ec.study_event_id
	  WHERE se2.study_subject_id = ss.study_subject_id) AS form_count
`

// List retrieves study subjects for a study with pagination
func (dao *SubjectDAO) List(ctx context.Context, studyID int64, filters *models.SubjectFilters, limit, offset int) ([]models.StudySubject, int, error) {
	var conditions []string
	var args []interface{}

	args = append(args, studyID)
	conditions = append(conditions, "ss.study_id = $1")

	if filters.Status != "" {
		args = append(args, filters.Status)
		conditions = append(conditions, fmt.Sprintf(
			"ss.status_id = (SELECT status_id FROM status WHERE LOWER(name) = LOWER($%d))", len(args)))
	}
	if filters.Label != "" {
		args = append(args, "%"+filters.Label+"%")
		conditions = append(conditions, fmt.Sprintf("ss.label ILIKE $%d", len(args)))
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM study_subject ss %s`, where)

	var total int
	if err := dao.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count study subjects: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM study_subject ss
		JOIN subject sub ON sub.subject_id = ss.subject_id
		%s
		ORDER BY ss.label
		LIMIT $%d OFFSET $%d
	`, subjectSelectColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var subjects []models.StudySubject
	if err := dao.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list study subjects: %w", err)
	}

	return subjects, total, nil
}

// GetByID retrieves a study subject by id
func (dao *SubjectDAO) GetByID(ctx context.Context, studySubjectID int64) (*models.StudySubject, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM study_subject ss
		JOIN subject sub ON sub.subject_id = ss.subject_id
		WHERE ss.study_subject_id = $1
	`, subjectSelectColumns)

	var subject models.StudySubject
	err := dao.db.GetContext(ctx, &subject, query, studySubjectID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("study subject not found: %d", studySubjectID)
		}
		return nil, fmt.Errorf("failed to get study subject: %w", err)
	}

	return &subject, nil
}

// ExistsByLabelWithTx reports whether a label is already assigned within a
// study. Labels carry randomization assignments, so a duplicate is a
// business-rule rejection, not a constraint error.
func (dao *SubjectDAO) ExistsByLabelWithTx(ctx context.Context, tx *database.Transaction, studyID int64, label string) (bool, error) {
	var count int
	err := tx.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM study_subject WHERE study_id = $1 AND label = $2`,
		studyID, label)
	if err != nil {
		return false, fmt.Errorf("failed to check subject label: %w", err)
	}

	return count > 0, nil
}

// ExistsByPersonIDWithTx reports whether a person is already enrolled in a
// study under the given unique person identifier
func (dao *SubjectDAO) ExistsByPersonIDWithTx(ctx context.Context, tx *database.Transaction, studyID int64, personID string) (bool, error) {
	var count int
	err := tx.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM study_subject ss
		JOIN subject sub ON sub.subject_id = ss.subject_id
		WHERE ss.study_id = $1 AND sub.unique_identifier = $2
	`, studyID, personID)
	if err != nil {
		return false, fmt.Errorf("failed to check person identifier: %w", err)
	}

	return count > 0, nil
}

// CreateSubjectWithTx inserts a subject row and returns its generated id
func (dao *SubjectDAO) CreateSubjectWithTx(ctx context.Context, tx *database.Transaction, request *models.SubjectEnrollRequest, ownerID int64) (int64, error) {
	query := `
		INSERT INTO subject (unique_identifier, gender, date_of_birth, status_id, owner_id, date_created)
		VALUES ($1, $2, NULLIF($3, '')::date, $4, $5, NOW())
		RETURNING subject_id
	`

	dateOfBirth := ""
	if request.DateOfBirth != nil {
		dateOfBirth = *request.DateOfBirth
	}

	var subjectID int64
	err := tx.QueryRowContext(
		ctx,
		query,
		request.UniquePersonID,
		request.Gender,
		dateOfBirth,
		models.StatusAvailable,
		ownerID,
	).Scan(&subjectID)

	if err != nil {
		return 0, fmt.Errorf("failed to create subject: %w", err)
	}

	return subjectID, nil
}

// EnrollWithTx inserts the study_subject row linking a subject to a study
// and returns its generated id
func (dao *SubjectDAO) EnrollWithTx(ctx context.Context, tx *database.Transaction, studyID, subjectID int64, request *models.SubjectEnrollRequest, oid string, ownerID int64) (int64, error) {
	query := `
		INSERT INTO study_subject (
			label, secondary_label, subject_id, study_id, oc_oid,
			status_id, enrollment_date, owner_id, date_created
		) VALUES ($1, $2, $3, $4, $5, $6, $7::date, $8, NOW())
		RETURNING study_subject_id
	`

	var studySubjectID int64
	err := tx.QueryRowContext(
		ctx,
		query,
		request.Label,
		request.SecondaryLabel,
		subjectID,
		studyID,
		oid,
		models.StatusAvailable,
		request.EnrollmentDate,
		ownerID,
	).Scan(&studySubjectID)

	if err != nil {
		return 0, fmt.Errorf("failed to enroll subject: %w", err)
	}

	return studySubjectID, nil
}
