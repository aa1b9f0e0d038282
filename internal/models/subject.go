package models

// StudySubject is a study_subject row joined with its subject record and
// participation counts.
type StudySubject struct {
	StudySubjectID int64   `db:"study_subject_id" json:"studySubjectId"`
	Label          string  `db:"label" json:"label"`
	SecondaryLabel *string `db:"secondary_label" json:"secondaryLabel,omitempty"`
	SubjectID      int64   `db:"subject_id" json:"subjectId"`
	StudyID        int64   `db:"study_id" json:"studyId"`
	OID            string  `db:"oc_oid" json:"oid"`
	StatusID       int     `db:"status_id" json:"statusId"`
	EnrollmentDate *string `db:"enrollment_date" json:"enrollmentDate,omitempty"`
	Gender         *string `db:"gender" json:"gender,omitempty"`
	DateOfBirth    *string `db:"date_of_birth" json:"dateOfBirth,omitempty"`
	UniquePersonID *string `db:"unique_identifier" json:"uniquePersonId,omitempty"`

	EventCount int `db:"event_count" json:"eventCount"`
	FormCount  int `db:"form_count" json:"formCount"`
}

// SubjectEnrollRequest is the input for enrolling a subject into a study
type SubjectEnrollRequest struct {
	Label          string  `json:"label" binding:"required"`
	SecondaryLabel *string `json:"secondaryLabel,omitempty"`
	UniquePersonID *string `json:"uniquePersonId,omitempty"`
	Gender         *string `json:"gender,omitempty"`
	DateOfBirth    *string `json:"dateOfBirth,omitempty"`
	EnrollmentDate string  `json:"enrollmentDate" binding:"required"`
}

// SubjectFilters narrows study subject listings
type SubjectFilters struct {
	Status string `form:"status"`
	Label  string `form:"label"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}
