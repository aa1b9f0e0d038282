package models

// Study is a row in the study table, enriched with subject/event/form/site
// counts computed by subqueries in the listing query.
type Study struct {
	StudyID               int64   `db:"study_id" json:"studyId"`
	ParentStudyID         *int64  `db:"parent_study_id" json:"parentStudyId,omitempty"`
	UniqueIdentifier      string  `db:"unique_identifier" json:"uniqueIdentifier"`
	Name                  string  `db:"name" json:"name"`
	OID                   string  `db:"oc_oid" json:"oid"`
	StatusID              int     `db:"status_id" json:"statusId"`
	OwnerID               int64   `db:"owner_id" json:"ownerId"`
	Summary               *string `db:"summary" json:"summary,omitempty"`
	PrincipalInvestigator *string `db:"principal_investigator" json:"principalInvestigator,omitempty"`
	Sponsor               *string `db:"sponsor" json:"sponsor,omitempty"`
	DateCreated           string  `db:"date_created" json:"dateCreated"`

	EnrolledSubjects int `db:"enrolled_subjects" json:"enrolledSubjects"`
	ActiveSubjects   int `db:"active_subjects" json:"activeSubjects"`
	EventCount       int `db:"event_count" json:"eventCount"`
	FormCount        int `db:"form_count" json:"formCount"`
	SiteCount        int `db:"site_count" json:"siteCount"`
}

// SOAPStudy is the study descriptor returned by the legacy listStudies
// operation.
type SOAPStudy struct {
	Identifier string `json:"identifier" xml:"identifier"`
	OID        string `json:"oid" xml:"oid"`
	Name       string `json:"name" xml:"name"`
	Status     string `json:"status" xml:"status"`
}

// StudyStats is the database-origin statistics half of a reconciled study
// record, keyed for enrichment by OID and unique identifier.
type StudyStats struct {
	StudyID          int64  `db:"study_id" json:"studyId"`
	OID              string `db:"oc_oid" json:"-"`
	UniqueIdentifier string `db:"unique_identifier" json:"-"`
	EnrolledSubjects int    `db:"enrolled_subjects" json:"enrolledSubjects"`
	ActiveSubjects   int    `db:"active_subjects" json:"activeSubjects"`
	EventCount       int    `db:"event_count" json:"eventCount"`
	FormCount        int    `db:"form_count" json:"formCount"`
	SiteCount        int    `db:"site_count" json:"siteCount"`
}

// StudyRecord is the reconciled view merging a SOAP-origin descriptor with
// database-origin statistics. The SOAP identifier is the join key; an
// unmatched descriptor keeps zeroed statistics rather than being dropped.
type StudyRecord struct {
	Identifier string     `json:"identifier"`
	OID        string     `json:"oid"`
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	Stats      StudyStats `json:"stats"`
}

// StudyFilters narrows study listings
type StudyFilters struct {
	Status string `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// StudyCreateRequest is the input for creating a study
type StudyCreateRequest struct {
	Name                    string  `json:"name" binding:"required"`
	UniqueIdentifier        string  `json:"uniqueIdentifier" binding:"required"`
	Summary                 *string `json:"summary,omitempty"`
	PrincipalInvestigator   *string `json:"principalInvestigator,omitempty"`
	Sponsor                 *string `json:"sponsor,omitempty"`
	ExpectedTotalEnrollment *int    `json:"expectedTotalEnrollment,omitempty"`
}

// StudyUpdateRequest is the input for updating a study
type StudyUpdateRequest struct {
	Name                  *string `json:"name,omitempty"`
	UniqueIdentifier      *string `json:"uniqueIdentifier,omitempty"`
	Summary               *string `json:"summary,omitempty"`
	PrincipalInvestigator *string `json:"principalInvestigator,omitempty"`
	Sponsor               *string `json:"sponsor,omitempty"`
	StatusID              *int    `json:"statusId,omitempty"`
}

// EventDefinition is a row in study_event_definition, ordered by ordinal
type EventDefinition struct {
	EventDefinitionID int64  `db:"study_event_definition_id" json:"eventDefinitionId"`
	StudyID           int64  `db:"study_id" json:"studyId"`
	OID               string `db:"oc_oid" json:"oid"`
	Name              string `db:"name" json:"name"`
	Ordinal           int    `db:"ordinal" json:"ordinal"`
	Repeating         bool   `db:"repeating" json:"repeating"`
	Type              string `db:"type" json:"type"`
}

// CRFDefinition is a crf row joined with its current version
type CRFDefinition struct {
	CRFID       int64  `db:"crf_id" json:"crfId"`
	OID         string `db:"oc_oid" json:"oid"`
	Name        string `db:"name" json:"name"`
	VersionID   int64  `db:"crf_version_id" json:"versionId"`
	VersionOID  string `db:"version_oid" json:"versionOid"`
	VersionName string `db:"version_name" json:"versionName"`
}

// StudyMetadata is the logical shape shared by the SOAP metadata retrieval
// and its three-query database fallback.
type StudyMetadata struct {
	Study  SOAPStudy         `json:"study"`
	Events []EventDefinition `json:"events"`
	CRFs   []CRFDefinition   `json:"crfs"`
}

// StatusName maps a LibreClinica status_id to its display name
func StatusName(statusID int) string {
	switch statusID {
	case StatusAvailable:
		return "available"
	case StatusPending:
		return "pending"
	case StatusPrivate:
		return "private"
	case StatusUnavailable:
		return "unavailable"
	case StatusRemoved:
		return "removed"
	case StatusLocked:
		return "locked"
	default:
		return "unknown"
	}
}
