package models

// LibreClinica audit_log_event_type codes used by the gateway
const (
	AuditEventTypeEntityCreated       = 1
	AuditEventTypeEntityUpdated       = 2
	AuditEventTypeEntityRemoved       = 3
	AuditEventTypeSubjectCreated      = 4
	AuditEventTypeFormStatusChanged   = 8
	AuditEventTypeElectronicSignature = 12
)

// AuditEvent is a row in audit_log_event. Audited entities span multiple
// unrelated resource types, so the entity reference is a (table, id) pair
// rather than a typed foreign key. Rows are append-only: never updated or
// deleted once written.
type AuditEvent struct {
	AuditID         int64   `db:"audit_id" json:"auditId"`
	AuditDate       string  `db:"audit_date" json:"auditDate"`
	AuditTable      string  `db:"audit_table" json:"auditTable"`
	UserID          int64   `db:"user_id" json:"userId"`
	UserName        string  `db:"user_name" json:"username"`
	EntityID        int64   `db:"entity_id" json:"entityId"`
	EntityName      *string `db:"entity_name" json:"entityName,omitempty"`
	EventTypeID     int     `db:"audit_log_event_type_id" json:"eventTypeId"`
	OldValue        *string `db:"old_value" json:"oldValue,omitempty"`
	NewValue        *string `db:"new_value" json:"newValue,omitempty"`
	ReasonForChange *string `db:"reason_for_change" json:"reasonForChange,omitempty"`
	EventCRFID      *int64  `db:"event_crf_id" json:"eventCrfId,omitempty"`
	StudyEventID    *int64  `db:"study_event_id" json:"studyEventId,omitempty"`
}

// AuditEventRecord is the input for recording a new audit event
type AuditEventRecord struct {
	AuditTable      string  `json:"auditTable" binding:"required"`
	EntityID        int64   `json:"entityId" binding:"required"`
	EntityName      *string `json:"entityName,omitempty"`
	UserID          int64   `json:"userId" binding:"required"`
	Username        string  `json:"username" binding:"required"`
	EventTypeID     int     `json:"eventTypeId" binding:"required"`
	OldValue        *string `json:"oldValue,omitempty"`
	NewValue        *string `json:"newValue,omitempty"`
	ReasonForChange *string `json:"reasonForChange,omitempty"`
	EventCRFID      *int64  `json:"eventCrfId,omitempty"`
	StudyEventID    *int64  `json:"studyEventId,omitempty"`
}

// AuditLogFilters narrows audit log queries. A form or subject scope routes
// the query through the corresponding legacy trail endpoint; unscoped
// queries are served from the database only.
type AuditLogFilters struct {
	AuditTable     string `form:"auditTable"`
	UserID         int64  `form:"userId"`
	StudyID        int64  `form:"studyId"`
	StudySubjectID int64  `form:"studySubjectId"`
	EventCRFID     int64  `form:"eventCrfId"`
	From           string `form:"from"`
	To             string `form:"to"`
	Page           int    `form:"page"`
	Limit          int    `form:"limit"`
}

// ODMAuditRecord is an audit-trail entry as returned by the legacy SOAP
// services in ODM form. It is the richer, canonical representation; callers
// must be prepared to receive either this shape or []AuditEvent from the
// database fallback.
type ODMAuditRecord struct {
	ID              string `json:"id" xml:"ID,attr"`
	UserOID         string `json:"userOid" xml:"UserOID,attr"`
	Username        string `json:"username" xml:"UserName,attr"`
	DateTimeStamp   string `json:"dateTimeStamp" xml:"DateTimeStamp"`
	ReasonForChange string `json:"reasonForChange" xml:"ReasonForChange"`
	SourceID        string `json:"sourceId" xml:"SourceID"`
	Type            string `json:"type" xml:"Type"`
	OldValue        string `json:"oldValue" xml:"OldValue"`
	NewValue        string `json:"newValue" xml:"NewValue"`
}
