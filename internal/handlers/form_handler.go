package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/libreclinica/api-gateway/internal/models"
	"github.com/libreclinica/api-gateway/internal/service"
	"github.com/libreclinica/api-gateway/internal/utils"
)

// FormHandler exposes event CRF listing and workflow endpoints
type FormHandler struct {
	formService *service.FormService
	logger      *logrus.Logger
}

// NewFormHandler creates a new form handler
func NewFormHandler(formService *service.FormService, logger *logrus.Logger) *FormHandler {
	return &FormHandler{formService: formService, logger: logger}
}

// GetForms handles GET /api/v1/subjects/:subjectId/forms
func (h *FormHandler) GetForms(c *gin.Context) {
	subjectID, ok := utils.ParseIDParam(c, "subjectId")
	if !ok {
		return
	}

	result, err := h.formService.GetForms(c.Request.Context(), subjectID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get forms")
		utils.SendInternalServerError(c, "Failed to get forms", "")
		return
	}
	utils.SendServiceResult(c, result, http.StatusOK)
}

// GetForm handles GET /api/v1/forms/:formId
func (h *FormHandler) GetForm(c *gin.Context) {
	formID, ok := utils.ParseIDParam(c, "formId")
	if !ok {
		return
	}

	result, err := h.formService.GetForm(c.Request.Context(), formID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get form")
		utils.SendInternalServerError(c, "Failed to get form", "")
		return
	}
	utils.SendServiceResult(c, result, http.StatusOK)
}

// UpdateFormStatus handles PUT /api/v1/forms/:formId/status
func (h *FormHandler) UpdateFormStatus(c *gin.Context) {
	formID, ok := utils.ParseIDParam(c, "formId")
	if !ok {
		return
	}

	var req models.FormStatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	result, err := h.formService.UpdateFormStatus(c.Request.Context(), formID, &req,
		utils.GetUserIDFromContext(c), utils.GetUsernameFromContext(c))
	if err != nil {
		h.logger.WithError(err).Error("Failed to update form status")
		utils.SendInternalServerError(c, "Failed to update form status", "")
		return
	}
	utils.SendServiceResult(c, result, http.StatusOK)
}
