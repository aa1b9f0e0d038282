package service

import (
	"github.com/sirupsen/logrus"

	"github.com/libreclinica/api-gateway/internal/models"
)

// Every hybrid operation reconciles two backends: the legacy SOAP services
// (authoritative for Part 11 parity, unreliable) and the database (fast,
// always available). Three policies cover every call site:
//
//   - SOAP-primary, DB-fallback: reads that should reflect the legacy system
//     of record. A SOAP failure switches to the equivalent database query.
//   - DB-primary, SOAP-mirrored: writes whose durability boundary is the
//     database. The SOAP mirror is best-effort and can never fail the
//     operation.
//   - DB-only: operations with no SOAP equivalent.
//
// There is no retry on the SOAP path: the database fallback is assumed
// always available, and a quick failover beats waiting on a possibly-down
// legacy service.

// soapResultUsable classifies a SOAP outcome. A result is usable only when
// the call reported success and, where a payload is semantically expected,
// the payload is non-empty. Endpoints where zero results are a legitimate
// answer (date-range audit queries) pass expectNonEmpty=false; identity
// lookups such as listing all studies pass true, because an empty list
// there means the legacy side is degraded.
func soapResultUsable(success bool, payloadLen int, expectNonEmpty bool) bool {
	if !success {
		return false
	}
	if expectNonEmpty && payloadLen == 0 {
		return false
	}
	return true
}

// logSOAPFallback records a degraded SOAP path. Fallback is a normal,
// expected path, so it logs at warning level, never error.
func logSOAPFallback(logger *logrus.Logger, operation, resource string, cause string) {
	logger.WithFields(logrus.Fields{
		"operation": operation,
		"resource":  resource,
		"cause":     cause,
	}).Warn("SOAP path unavailable, falling back to database")
}

// logSOAPMirrorFailure records a failed best-effort mirror write. The
// primary database write has already succeeded at this point, so the
// outcome of the operation is unaffected.
func logSOAPMirrorFailure(logger *logrus.Logger, operation, resource string, cause string) {
	logger.WithFields(logrus.Fields{
		"operation": operation,
		"resource":  resource,
		"cause":     cause,
	}).Warn("SOAP mirror write failed, database record retained")
}

func causeOf(err error) string {
	if err != nil {
		return err.Error()
	}
	return "unsuccessful soap result"
}

// ComputeServiceStatus derives the process-wide execution mode from the
// soap enabled flag. Pure; never fails.
func ComputeServiceStatus(soapEnabled bool) models.ServiceStatus {
	if !soapEnabled {
		return models.ServiceStatus{
			SOAPEnabled: false,
			Mode:        models.ModeDatabaseOnly,
			Description: "Database only mode (SOAP disabled)",
		}
	}
	return models.ServiceStatus{
		SOAPEnabled: true,
		Mode:        models.ModeSOAPPrimary,
		Description: "SOAP primary mode with database fallback",
	}
}

// normalizePage clamps pagination inputs and returns the SQL offset
func normalizePage(page, limit int) (int, int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit, (page - 1) * limit
}

// paginationFor builds the response pagination block
func paginationFor(page, limit, total int) *models.Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return &models.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// pageSlice applies in-memory pagination over an already-merged list, used
// on the SOAP-primary read path where the full enriched list is assembled
// before paging.
func pageSlice[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
