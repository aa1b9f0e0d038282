package dao

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/libreclinica/api-gateway/internal/database"
	"github.com/libreclinica/api-gateway/internal/models"
)

// FormDAO handles database operations for event CRFs (form instances)
type FormDAO struct {
	db *database.DB
}

// NewFormDAO creates a new FormDAO instance
func NewFormDAO(db *database.DB) *FormDAO {
	return &FormDAO{db: db}
}

const formSelectColumns = `
	ec.event_crf_id, ec.study_event_id, se.study_subject_id,
	ec.crf_version_id, c.name AS crf_name, cv.name AS crf_version_name,
	ec.status_id, ec.interviewer_name,
	ec.date_interviewed::text AS date_interviewed,
	ec.date_created::text AS date_created
`

const formFromClause = `
	FROM event_crf ec
	JOIN study_event se ON se.study_event_id = ec.study_event_id
	JOIN crf_version cv ON cv.crf_version_id = ec.crf_version_id
	JOIN crf c ON c.crf_id = cv.crf_id
`

// ListByStudySubject retrieves all form instances for a study subject
func (dao *FormDAO) ListByStudySubject(ctx context.Context, studySubjectID int64) ([]models.Form, error) {
	query := fmt.Sprintf(`
		SELECT %s
		%s
		WHERE se.study_subject_id = $1
		ORDER BY ec.date_created DESC
	`, formSelectColumns, formFromClause)

	var forms []models.Form
	if err := dao.db.SelectContext(ctx, &forms, query, studySubjectID); err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}

	return forms, nil
}

// GetByID retrieves a form instance by event_crf id
func (dao *FormDAO) GetByID(ctx context.Context, eventCRFID int64) (*models.Form, error) {
	query := fmt.Sprintf(`
		SELECT %s
		%s
		WHERE ec.event_crf_id = $1
	`, formSelectColumns, formFromClause)

	var form models.Form
	err := dao.db.GetContext(ctx, &form, query, eventCRFID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("form not found: %d", eventCRFID)
		}
		return nil, fmt.Errorf("failed to get form: %w", err)
	}

	return &form, nil
}

// GetByIDWithTx retrieves a form instance by event_crf id within a transaction
func (dao *FormDAO) GetByIDWithTx(ctx context.Context, tx *database.Transaction, eventCRFID int64) (*models.Form, error) {
	query := fmt.Sprintf(`
		SELECT %s
		%s
		WHERE ec.event_crf_id = $1
	`, formSelectColumns, formFromClause)

	var form models.Form
	err := tx.GetContext(ctx, &form, query, eventCRFID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("form not found: %d", eventCRFID)
		}
		return nil, fmt.Errorf("failed to get form: %w", err)
	}

	return &form, nil
}

// UpdateStatusWithTx transitions a form's data-entry status
func (dao *FormDAO) UpdateStatusWithTx(ctx context.Context, tx *database.Transaction, eventCRFID int64, statusID int) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE event_crf SET status_id = $1, date_updated = NOW() WHERE event_crf_id = $2`,
		statusID, eventCRFID)
	if err != nil {
		return fmt.Errorf("failed to update form status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("form not found: %d", eventCRFID)
	}

	return nil
}
