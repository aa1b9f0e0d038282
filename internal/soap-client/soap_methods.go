package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/libreclinica/api-gateway/internal/models"
)

// The legacy services report outcome as a <result> element containing
// "Success" or "Fail". Result structs expose that as a boolean alongside the
// typed payload; classification of empty payloads is left to the caller.

// ListStudiesResult is the outcome of the listAll study operation
type ListStudiesResult struct {
	Success bool
	Data    []models.SOAPStudy
}

// StudyMetadataResult is the outcome of the getMetadata study operation
type StudyMetadataResult struct {
	Success bool
	Data    models.StudyMetadata
}

// AuditEventResult is the outcome of the recordAuditEvent operation
type AuditEventResult struct {
	Success bool
	AuditID int64
}

// SignatureCallResult is the outcome of the recordElectronicSignature operation
type SignatureCallResult struct {
	Success     bool
	SignatureID int64
}

// AuditTrailResult is the outcome of the subject/form audit trail operations
type AuditTrailResult struct {
	Success bool
	Data    []models.ODMAuditRecord
}

type listStudiesResponse struct {
	Result  string             `xml:"result"`
	Studies []models.SOAPStudy `xml:"studies>study"`
}

type studyMetadataResponse struct {
	Result string           `xml:"result"`
	Study  models.SOAPStudy `xml:"study"`
	Events []struct {
		OID       string `xml:"oid"`
		Name      string `xml:"name"`
		Ordinal   int    `xml:"ordinal"`
		Repeating bool   `xml:"repeating"`
		Type      string `xml:"type"`
	} `xml:"events>event"`
	CRFs []struct {
		OID         string `xml:"oid"`
		Name        string `xml:"name"`
		VersionOID  string `xml:"versionOid"`
		VersionName string `xml:"versionName"`
	} `xml:"crfs>crf"`
}

type auditEventResponse struct {
	Result  string `xml:"result"`
	AuditID int64  `xml:"auditId"`
}

type signatureResponse struct {
	Result      string `xml:"result"`
	SignatureID int64  `xml:"signatureId"`
}

type auditTrailResponse struct {
	Result  string                  `xml:"result"`
	Records []models.ODMAuditRecord `xml:"auditRecords>auditRecord"`
}

func isSuccess(result string) bool {
	return strings.EqualFold(result, "Success")
}

// ListStudies calls the study listAll operation on behalf of a user
func (c *Client) ListStudies(ctx context.Context, userID int64, username string) (*ListStudiesResult, error) {
	body := fmt.Sprintf(
		`<v1:listAllRequest xmlns:v1="http://openclinica.org/ws/study/v1"><v1:userName>%s</v1:userName></v1:listAllRequest>`,
		xmlEscape(username),
	)

	var resp listStudiesResponse
	if err := c.call(ctx, "study", "listAll", body, &resp); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"username":   username,
		"studyCount": len(resp.Studies),
		"result":     resp.Result,
	}).Debug("SOAP listStudies completed")

	return &ListStudiesResult{
		Success: isSuccess(resp.Result),
		Data:    resp.Studies,
	}, nil
}

// GetStudyMetadata calls the study getMetadata operation for a study OID
func (c *Client) GetStudyMetadata(ctx context.Context, oid string, userID int64, username string) (*StudyMetadataResult, error) {
	body := fmt.Sprintf(
		`<v1:getMetadataRequest xmlns:v1="http://openclinica.org/ws/study/v1"><v1:studyMetadata><v1:identifier>%s</v1:identifier></v1:studyMetadata></v1:getMetadataRequest>`,
		xmlEscape(oid),
	)

	var resp studyMetadataResponse
	if err := c.call(ctx, "study", "getMetadata", body, &resp); err != nil {
		return nil, err
	}

	metadata := models.StudyMetadata{
		Study:  resp.Study,
		Events: make([]models.EventDefinition, 0, len(resp.Events)),
		CRFs:   make([]models.CRFDefinition, 0, len(resp.CRFs)),
	}
	for _, e := range resp.Events {
		metadata.Events = append(metadata.Events, models.EventDefinition{
			OID:       e.OID,
			Name:      e.Name,
			Ordinal:   e.Ordinal,
			Repeating: e.Repeating,
			Type:      e.Type,
		})
	}
	for _, f := range resp.CRFs {
		metadata.CRFs = append(metadata.CRFs, models.CRFDefinition{
			OID:         f.OID,
			Name:        f.Name,
			VersionOID:  f.VersionOID,
			VersionName: f.VersionName,
		})
	}

	return &StudyMetadataResult{
		Success: isSuccess(resp.Result),
		Data:    metadata,
	}, nil
}

// RecordAuditEvent mirrors an audit event into the legacy audit trail
func (c *Client) RecordAuditEvent(ctx context.Context, record *models.AuditEventRecord) (*AuditEventResult, error) {
	var sb strings.Builder
	sb.WriteString(`<v1:recordAuditEventRequest xmlns:v1="http://openclinica.org/ws/audit/v1">`)
	sb.WriteString(`<v1:auditTable>` + xmlEscape(record.AuditTable) + `</v1:auditTable>`)
	sb.WriteString(fmt.Sprintf(`<v1:entityId>%d</v1:entityId>`, record.EntityID))
	if record.EntityName != nil {
		sb.WriteString(`<v1:entityName>` + xmlEscape(*record.EntityName) + `</v1:entityName>`)
	}
	sb.WriteString(fmt.Sprintf(`<v1:userId>%d</v1:userId>`, record.UserID))
	sb.WriteString(`<v1:userName>` + xmlEscape(record.Username) + `</v1:userName>`)
	sb.WriteString(fmt.Sprintf(`<v1:eventTypeId>%d</v1:eventTypeId>`, record.EventTypeID))
	if record.OldValue != nil {
		sb.WriteString(`<v1:oldValue>` + xmlEscape(*record.OldValue) + `</v1:oldValue>`)
	}
	if record.NewValue != nil {
		sb.WriteString(`<v1:newValue>` + xmlEscape(*record.NewValue) + `</v1:newValue>`)
	}
	if record.ReasonForChange != nil {
		sb.WriteString(`<v1:reasonForChange>` + xmlEscape(*record.ReasonForChange) + `</v1:reasonForChange>`)
	}
	sb.WriteString(`</v1:recordAuditEventRequest>`)

	var resp auditEventResponse
	if err := c.call(ctx, "audit", "recordAuditEvent", sb.String(), &resp); err != nil {
		return nil, err
	}

	return &AuditEventResult{
		Success: isSuccess(resp.Result),
		AuditID: resp.AuditID,
	}, nil
}

// RecordElectronicSignature records a Part 11 electronic signature against
// an entity in the legacy system. The signer's password is forwarded for
// verification by the legacy endpoint; it is never logged.
func (c *Client) RecordElectronicSignature(ctx context.Context, entityType string, entityID int64, signature *models.SignatureRequest, userID int64, username string) (*SignatureCallResult, error) {
	var sb strings.Builder
	sb.WriteString(`<v1:recordSignatureRequest xmlns:v1="http://openclinica.org/ws/signature/v1">`)
	sb.WriteString(`<v1:entityType>` + xmlEscape(entityType) + `</v1:entityType>`)
	sb.WriteString(fmt.Sprintf(`<v1:entityId>%d</v1:entityId>`, entityID))
	sb.WriteString(`<v1:signerUserName>` + xmlEscape(signature.Username) + `</v1:signerUserName>`)
	sb.WriteString(`<v1:signerPassword>` + xmlEscape(signature.Password) + `</v1:signerPassword>`)
	sb.WriteString(`<v1:meaning>` + xmlEscape(signature.Meaning) + `</v1:meaning>`)
	if signature.Reason != "" {
		sb.WriteString(`<v1:reason>` + xmlEscape(signature.Reason) + `</v1:reason>`)
	}
	sb.WriteString(`<v1:actingUserName>` + xmlEscape(username) + `</v1:actingUserName>`)
	sb.WriteString(`</v1:recordSignatureRequest>`)

	var resp signatureResponse
	if err := c.call(ctx, "signature", "recordSignature", sb.String(), &resp); err != nil {
		return nil, err
	}

	return &SignatureCallResult{
		Success:     isSuccess(resp.Result),
		SignatureID: resp.SignatureID,
	}, nil
}

// GetSubjectAuditTrail retrieves the ODM audit trail for a study subject
func (c *Client) GetSubjectAuditTrail(ctx context.Context, studyID, subjectID, userID int64, username string) (*AuditTrailResult, error) {
	body := fmt.Sprintf(
		`<v1:subjectAuditRequest xmlns:v1="http://openclinica.org/ws/audit/v1"><v1:studyId>%d</v1:studyId><v1:studySubjectId>%d</v1:studySubjectId><v1:userName>%s</v1:userName></v1:subjectAuditRequest>`,
		studyID, subjectID, xmlEscape(username),
	)

	var resp auditTrailResponse
	if err := c.call(ctx, "audit", "getSubjectAuditTrail", body, &resp); err != nil {
		return nil, err
	}

	return &AuditTrailResult{
		Success: isSuccess(resp.Result),
		Data:    resp.Records,
	}, nil
}

// GetFormAuditTrail retrieves the ODM audit trail for an event CRF
func (c *Client) GetFormAuditTrail(ctx context.Context, eventCRFID, userID int64, username string) (*AuditTrailResult, error) {
	body := fmt.Sprintf(
		`<v1:formAuditRequest xmlns:v1="http://openclinica.org/ws/audit/v1"><v1:eventCrfId>%d</v1:eventCrfId><v1:userName>%s</v1:userName></v1:formAuditRequest>`,
		eventCRFID, xmlEscape(username),
	)

	var resp auditTrailResponse
	if err := c.call(ctx, "audit", "getFormAuditTrail", body, &resp); err != nil {
		return nil, err
	}

	return &AuditTrailResult{
		Success: isSuccess(resp.Result),
		Data:    resp.Records,
	}, nil
}
