package utils

import (
	"strings"

	"github.com/google/uuid"
)

const oidMaxLength = 40

// GenerateID generates a new UUID for request tracing and correlation IDs
func GenerateID() string {
	return uuid.New().String()
}

// GenerateStudyOID derives an OC-style OID from a study's protocol
// identifier, e.g. "PHASE2-DM" becomes "S_PHASE2DM". A random suffix keeps
// degenerate identifiers unique.
func GenerateStudyOID(uniqueIdentifier string) string {
	return buildOID("S_", uniqueIdentifier)
}

// GenerateSubjectOID derives an OC-style OID from a study subject's label
func GenerateSubjectOID(label string) string {
	return buildOID("SS_", label)
}

func buildOID(prefix, source string) string {
	cleaned := sanitizeOIDPart(source)
	if cleaned == "" {
		cleaned = strings.ToUpper(strings.ReplaceAll(uuid.New().String()[:8], "-", ""))
	}
	oid := prefix + cleaned
	if len(oid) > oidMaxLength {
		oid = oid[:oidMaxLength]
	}
	return oid
}

func sanitizeOIDPart(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidUUID checks if a string is a valid UUID
func IsValidUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
