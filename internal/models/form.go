package models

// Form data-entry statuses tracked on event_crf rows
const (
	FormStatusNotStarted       = 1
	FormStatusInitialDataEntry = 2
	FormStatusCompleted        = 3
	FormStatusLocked           = 6
)

// IsValidFormStatus reports whether statusID is a known data-entry status
func IsValidFormStatus(statusID int) bool {
	switch statusID {
	case FormStatusNotStarted, FormStatusInitialDataEntry, FormStatusCompleted, FormStatusLocked:
		return true
	}
	return false
}

// FormStatusName maps a data-entry status id to its display name
func FormStatusName(statusID int) string {
	switch statusID {
	case FormStatusNotStarted:
		return "not_started"
	case FormStatusInitialDataEntry:
		return "initial_data_entry"
	case FormStatusCompleted:
		return "completed"
	case FormStatusLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// Form is an event_crf row joined with its CRF version and subject context
type Form struct {
	EventCRFID      int64   `db:"event_crf_id" json:"eventCrfId"`
	StudyEventID    int64   `db:"study_event_id" json:"studyEventId"`
	StudySubjectID  int64   `db:"study_subject_id" json:"studySubjectId"`
	CRFVersionID    int64   `db:"crf_version_id" json:"crfVersionId"`
	CRFName         string  `db:"crf_name" json:"crfName"`
	CRFVersionName  string  `db:"crf_version_name" json:"crfVersionName"`
	StatusID        int     `db:"status_id" json:"statusId"`
	InterviewerName *string `db:"interviewer_name" json:"interviewerName,omitempty"`
	DateInterviewed *string `db:"date_interviewed" json:"dateInterviewed,omitempty"`
	DateCreated     string  `db:"date_created" json:"dateCreated"`
}

// FormStatusUpdateRequest transitions an event_crf's data-entry status.
// Reason is mandated for regulated transitions and lands in the audit row.
type FormStatusUpdateRequest struct {
	StatusID int    `json:"statusId" binding:"required"`
	Reason   string `json:"reason,omitempty"`
}
