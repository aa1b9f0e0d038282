package dao

import (
	"context"
	"fmt"
	"strings"

	"github.com/libreclinica/api-gateway/internal/database"
	"github.com/libreclinica/api-gateway/internal/models"
)

// AuditDAO handles database operations for the append-only audit_log_event
// table. There are deliberately no update or delete operations.
type AuditDAO struct {
	db *database.DB
}

// NewAuditDAO creates a new AuditDAO instance
func NewAuditDAO(db *database.DB) *AuditDAO {
	return &AuditDAO{db: db}
}

const auditInsertQuery = `
	INSERT INTO audit_log_event (
		audit_date, audit_table, user_id, entity_id, entity_name,
		audit_log_event_type_id, old_value, new_value, reason_for_change,
		event_crf_id, study_event_id
	) VALUES (NOW(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING audit_id
`

// Create inserts a new audit event and returns the generated audit id
func (dao *AuditDAO) Create(ctx context.Context, record *models.AuditEventRecord) (int64, error) {
	var auditID int64
	err := dao.db.QueryRowContext(
		ctx,
		auditInsertQuery,
		record.AuditTable,
		record.UserID,
		record.EntityID,
		record.EntityName,
		record.EventTypeID,
		record.OldValue,
		record.NewValue,
		record.ReasonForChange,
		record.EventCRFID,
		record.StudyEventID,
	).Scan(&auditID)

	if err != nil {
		return 0, fmt.Errorf("failed to create audit event: %w", err)
	}

	return auditID, nil
}

// CreateWithTx inserts a new audit event within a transaction
func (dao *AuditDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, record *models.AuditEventRecord) (int64, error) {
	var auditID int64
	err := tx.QueryRowContext(
		ctx,
		auditInsertQuery,
		record.AuditTable,
		record.UserID,
		record.EntityID,
		record.EntityName,
		record.EventTypeID,
		record.OldValue,
		record.NewValue,
		record.ReasonForChange,
		record.EventCRFID,
		record.StudyEventID,
	).Scan(&auditID)

	if err != nil {
		return 0, fmt.Errorf("failed to create audit event with transaction: %w", err)
	}

	return auditID, nil
}

const auditSelectColumns = `
	a.audit_id, a.audit_date::text AS audit_date, a.audit_table, a.user_id,
	COALESCE(u.user_name, '') AS user_name, a.entity_id, a.entity_name,
	a.audit_log_event_type_id, a.old_value, a.new_value, a.reason_for_change,
	a.event_crf_id, a.study_event_id
`

// Search retrieves audit events matching the given filters with pagination
func (dao *AuditDAO) Search(ctx context.Context, filters *models.AuditLogFilters, limit, offset int) ([]models.AuditEvent, int, error) {
	var conditions []string
	var args []interface{}

	addCondition := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filters.AuditTable != "" {
		addCondition("a.audit_table = $%d", filters.AuditTable)
	}
	if filters.UserID > 0 {
		addCondition("a.user_id = $%d", filters.UserID)
	}
	if filters.From != "" {
		addCondition("a.audit_date >= $%d", filters.From)
	}
	if filters.To != "" {
		addCondition("a.audit_date <= $%d", filters.To)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM audit_log_event a %s`, where)

	var total int
	if err := dao.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit events: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM audit_log_event a
		LEFT JOIN user_account u ON u.user_id = a.user_id
		%s
		ORDER BY a.audit_date DESC, a.audit_id DESC
		LIMIT $%d OFFSET $%d
	`, auditSelectColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var events []models.AuditEvent
	if err := dao.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to search audit events: %w", err)
	}

	return events, total, nil
}

// GetByStudySubject retrieves the audit trail for one study subject: rows
// written against the study_subject itself plus rows written against any of
// its event CRFs.
func (dao *AuditDAO) GetByStudySubject(ctx context.Context, studySubjectID int64) ([]models.AuditEvent, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM audit_log_event a
		LEFT JOIN user_account u ON u.user_id = a.user_id
		WHERE (a.audit_table = 'study_subject' AND a.entity_id = $1)
		   OR a.event_crf_id IN (
		        SELECT ec.event_crf_id
		        FROM event_crf ec
		        JOIN study_event se ON se.study_event_id = ec.study_event_id
		        WHERE se.study_subject_id = $1
		   )
		ORDER BY a.audit_date DESC, a.audit_id DESC
	`, auditSelectColumns)

	var events []models.AuditEvent
	if err := dao.db.SelectContext(ctx, &events, query, studySubjectID); err != nil {
		return nil, fmt.Errorf("failed to get subject audit trail: %w", err)
	}

	return events, nil
}

// GetByEventCRF retrieves the audit trail for one event CRF
func (dao *AuditDAO) GetByEventCRF(ctx context.Context, eventCRFID int64) ([]models.AuditEvent, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM audit_log_event a
		LEFT JOIN user_account u ON u.user_id = a.user_id
		WHERE a.event_crf_id = $1
		   OR (a.audit_table = 'event_crf' AND a.entity_id = $1)
		ORDER BY a.audit_date DESC, a.audit_id DESC
	`, auditSelectColumns)

	var events []models.AuditEvent
	if err := dao.db.SelectContext(ctx, &events, query, eventCRFID); err != nil {
		return nil, fmt.Errorf("failed to get form audit trail: %w", err)
	}

	return events, nil
}

// GetSignatures retrieves electronic signature rows recorded against an
// entity, newest first.
func (dao *AuditDAO) GetSignatures(ctx context.Context, auditTable string, entityID int64) ([]models.AuditEvent, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM audit_log_event a
		LEFT JOIN user_account u ON u.user_id = a.user_id
		WHERE a.audit_table = $1 AND a.entity_id = $2 AND a.audit_log_event_type_id = $3
		ORDER BY a.audit_date DESC, a.audit_id DESC
	`, auditSelectColumns)

	var events []models.AuditEvent
	if err := dao.db.SelectContext(ctx, &events, query, auditTable, entityID, models.AuditEventTypeElectronicSignature); err != nil {
		return nil, fmt.Errorf("failed to get signatures: %w", err)
	}

	return events, nil
}
