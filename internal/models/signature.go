package models

// Signature meanings enumerated by 21 CFR Part 11 workflows. Free-form
// authorization phrases are also accepted.
const (
	SignatureMeaningDataEntry = "Data Entry"
	SignatureMeaningReview    = "Review"
	SignatureMeaningApproval  = "Approval"
)

// SignatureRequest carries the signer's credential and the meaning of the
// signature. The credential is verified before any signature record is
// written; the password never leaves the service layer.
type SignatureRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Meaning  string `json:"meaning" binding:"required"`
	Reason   string `json:"reason,omitempty"`
}

// SignatureResult identifies the durable signature record. When the legacy
// SOAP path is unavailable the id is synthesized from the entity id.
type SignatureResult struct {
	SignatureID int64  `json:"signatureId"`
	EntityType  string `json:"entityType"`
	EntityID    int64  `json:"entityId"`
	Signer      string `json:"signer"`
	Meaning     string `json:"meaning"`
	Timestamp   string `json:"timestamp"`
}
