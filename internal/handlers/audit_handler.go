package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/libreclinica/api-gateway/internal/models"
	"github.com/libreclinica/api-gateway/internal/service"
	"github.com/libreclinica/api-gateway/internal/utils"
)

// AuditHandler exposes the audit trail and electronic signature endpoints
type AuditHandler struct {
	auditService *service.AuditService
	logger       *logrus.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *service.AuditService, logger *logrus.Logger) *AuditHandler {
	return &AuditHandler{auditService: auditService, logger: logger}
}

// RecordAuditEvent handles POST /api/v1/audit
func (h *AuditHandler) RecordAuditEvent(c *gin.Context) {
	var record models.AuditEventRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}
	record.UserID = utils.GetUserIDFromContext(c)
	record.Username = utils.GetUsernameFromContext(c)

	result, err := h.auditService.RecordAuditEvent(c.Request.Context(), &record)
	if err != nil {
		h.logger.WithError(err).Error("Failed to record audit event")
		utils.SendInternalServerError(c, "Failed to record audit event", "")
		return
	}
	utils.SendServiceResult(c, result, http.StatusCreated)
}

// GetAuditLogs handles GET /api/v1/audit
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	var filters models.AuditLogFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	result, err := h.auditService.GetAuditLogs(c.Request.Context(), &filters,
		utils.GetUserIDFromContext(c), utils.GetUsernameFromContext(c))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get audit logs")
		utils.SendInternalServerError(c, "Failed to get audit logs", "")
		return
	}
	utils.SendServiceResult(c, result, http.StatusOK)
}

// GetSubjectAuditTrail handles GET /api/v1/studies/:studyId/subjects/:subjectId/audit
func (h *AuditHandler) GetSubjectAuditTrail(c *gin.Context) {
	studyID, ok := utils.ParseIDParam(c, "studyId")
	if !ok {
		return
	}
	subjectID, ok := utils.ParseIDParam(c, "subjectId")
	if !ok {
		return
	}

	result, err := h.auditService.GetSubjectAuditTrail(c.Request.Context(), studyID, subjectID,
		utils.GetUserIDFromContext(c), utils.GetUsernameFromContext(c))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get subject audit trail")
		utils.SendInternalServerError(c, "Failed to get subject audit trail", "")
		return
	}
	utils.SendServiceResult(c, result, http.StatusOK)
}

// GetFormAuditTrail handles GET /api/v1/forms/:formId/audit
func (h *AuditHandler) GetFormAuditTrail(c *gin.Context) {
	formID, ok := utils.ParseIDParam(c, "formId")
	if !ok {
		return
	}

	result, err := h.auditService.GetFormAuditTrail(c.Request.Context(), formID,
		utils.GetUserIDFromContext(c), utils.GetUsernameFromContext(c))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get form audit trail")
		utils.SendInternalServerError(c, "Failed to get form audit trail", "")
		return
	}
	utils.SendServiceResult(c, result, http.StatusOK)
}

type signatureBody struct {
	EntityType string `json:"entityType" binding:"required"`
	EntityID   int64  `json:"entityId" binding:"required"`
	models.SignatureRequest
}

// RecordElectronicSignature handles POST /api/v1/signatures
func (h *AuditHandler) RecordElectronicSignature(c *gin.Context) {
	var body signatureBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	result, err := h.auditService.RecordElectronicSignature(c.Request.Context(),
		body.EntityType, body.EntityID, &body.SignatureRequest,
		utils.GetUserIDFromContext(c), utils.GetUsernameFromContext(c))
	if err != nil {
		h.logger.WithError(err).Error("Failed to record electronic signature")
		utils.SendInternalServerError(c, "Failed to record electronic signature", "")
		return
	}
	utils.SendServiceResult(c, result, http.StatusCreated)
}

type signatureQuery struct {
	EntityType string `form:"entityType" binding:"required"`
	EntityID   int64  `form:"entityId" binding:"required"`
}

// GetSignatures handles GET /api/v1/signatures
func (h *AuditHandler) GetSignatures(c *gin.Context) {
	var query signatureQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	result, err := h.auditService.GetSignatures(c.Request.Context(), query.EntityType, query.EntityID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get signatures")
		utils.SendInternalServerError(c, "Failed to get signatures", "")
		return
	}
	utils.SendServiceResult(c, result, http.StatusOK)
}

// GetServiceStatus handles GET /api/v1/service-status
func (h *AuditHandler) GetServiceStatus(c *gin.Context) {
	utils.SendOKResponse(c, h.auditService.GetServiceStatus())
}
